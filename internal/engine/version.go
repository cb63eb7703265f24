// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// parseVersionTuple splits a dotted/dashed version string ("1.2.3-1") into
// its integer components.
func parseVersionTuple(version string) ([]int, error) {
	parts := strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == '-'
	})
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty version string")
	}
	tuple := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid version component %q in %q", p, version)
		}
		tuple[i] = n
	}
	return tuple, nil
}

// CompareVersions compares two dotted/dashed version strings by their
// integer tuples, lexicographically: -1 when a < b, 0 when equal, +1 when
// a > b. A shorter tuple that is a prefix of the other compares lower.
func CompareVersions(a, b string) (int, error) {
	at, err := parseVersionTuple(a)
	if err != nil {
		return 0, err
	}
	bt, err := parseVersionTuple(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(at) && i < len(bt); i++ {
		switch {
		case at[i] < bt[i]:
			return -1, nil
		case at[i] > bt[i]:
			return 1, nil
		}
	}
	switch {
	case len(at) < len(bt):
		return -1, nil
	case len(at) > len(bt):
		return 1, nil
	}
	return 0, nil
}
