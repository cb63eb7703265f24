// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatBuildEntryPadsRawName(t *testing.T) {
	t.Parallel()

	const pad = 12
	line := formatBuildEntry(1, pad, "base", "1.0.0", "Downloaded")
	if !strings.HasPrefix(line, "001 ") {
		t.Errorf("line = %q, want sequence prefix %q", line, "001 ")
	}
	// The raw name is padded before styling, so the padded cell survives
	// intact inside whatever escapes the style adds around it.
	if cell := fmt.Sprintf("%-*s", pad, "base"); !strings.Contains(line, cell) {
		t.Errorf("line = %q, want padded name cell %q", line, cell)
	}
}

func TestFormatBuildEntryAlignsColumns(t *testing.T) {
	t.Parallel()

	const pad = 12
	short := formatBuildEntry(1, pad, "base", "1.0.0", "Downloaded")
	long := formatBuildEntry(2, pad, "inventory", "2.3.4", "Downloaded")
	if strings.Index(short, "@") != strings.Index(long, "@") {
		t.Errorf("version columns misaligned:\n%q\n%q", short, long)
	}
}
