// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"polbuild/internal/manifest"
)

var (
	prettyCheck bool

	prettyCmd = &cobra.Command{
		Use:   "pretty [file...]",
		Short: "Reformat the manifest (or other JSON files) canonically",
		Long: `Reformat JSON files with polbuild's canonical style: two-space
indentation, stable key order for the manifest, and a trailing newline.

Without arguments the project manifest is reformatted.`,
		RunE: runPretty,
	}
)

func init() {
	prettyCmd.Flags().BoolVar(&prettyCheck, "check", false, "exit non-zero instead of rewriting files that are not formatted")
}

func runPretty(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{manifest.FileName}
	}
	unformatted := 0
	for _, path := range args {
		changed, err := prettyFile(path)
		if err != nil {
			return err
		}
		if changed {
			unformatted++
			if prettyCheck {
				fmt.Println(WarningStyle.Render(path + " is not formatted"))
			} else {
				fmt.Printf("Reformatted %s\n", path)
			}
		}
	}
	if prettyCheck && unformatted > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

func prettyFile(path string) (bool, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	var formatted []byte
	if path == manifest.FileName {
		f, err := manifest.Load(path)
		if err != nil {
			return false, err
		}
		formatted, err = f.Pretty()
		if err != nil {
			return false, err
		}
	} else {
		var buf bytes.Buffer
		if err := prettyJSON(&buf, original); err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		formatted = buf.Bytes()
	}

	if bytes.Equal(original, formatted) {
		return false, nil
	}
	if prettyCheck {
		return true, nil
	}
	return true, os.WriteFile(path, formatted, 0o644)
}

// prettyJSON reindents an arbitrary JSON document. Object keys end up
// sorted; only the manifest gets domain-specific key order.
func prettyJSON(buf *bytes.Buffer, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
