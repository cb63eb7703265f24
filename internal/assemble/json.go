// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// stepJSON merges the source document into the destination. A missing
// destination is created from the source as-is.
func stepJSON(src, dst string) error {
	srcData, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	var srcDoc any
	if err := json.Unmarshal(srcData, &srcDoc); err != nil {
		return fmt.Errorf("parsing %s: %w", src, err)
	}

	merged := srcDoc
	dstData, err := os.ReadFile(dst)
	switch {
	case err == nil:
		var dstDoc any
		if err := json.Unmarshal(dstData, &dstDoc); err != nil {
			return fmt.Errorf("parsing %s: %w", dst, err)
		}
		merged = mergeValues(dstDoc, srcDoc)
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(merged); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

// mergeValues merges src into dst: objects merge recursively, arrays
// concatenate, anything else is overwritten by src.
func mergeValues(dst, src any) any {
	if dstMap, ok := dst.(map[string]any); ok {
		if srcMap, ok := src.(map[string]any); ok {
			for key, val := range srcMap {
				if cur, exists := dstMap[key]; exists {
					dstMap[key] = mergeValues(cur, val)
				} else {
					dstMap[key] = val
				}
			}
			return dstMap
		}
	}
	if dstArr, ok := dst.([]any); ok {
		if srcArr, ok := src.([]any); ok {
			return append(dstArr, srcArr...)
		}
	}
	return src
}
