// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"polbuild/internal/manifest"
	"polbuild/internal/txn"
)

var (
	setInputCmd = &cobra.Command{
		Use:   "set-input <module> <file>",
		Short: "Set a module's input from a JSON file",
		Long: `Set a module's input from a JSON file ("-" reads standard input).

The document must hold the module's declared input entries, each with its
response filled in. It is written to <module>/input.json and committed.`,
		Args: cobra.ExactArgs(2),
		RunE: runSetInput,
	}

	getInputCmd = &cobra.Command{
		Use:   "get-input <module> [file]",
		Short: "Write a module's input to a file",
		Long: `Write a module's input entries as JSON to a file (default standard
output). Responses recorded earlier are included, so the output can be
edited and fed back into set-input.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runGetInput,
	}
)

func runSetInput(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	var r io.Reader = os.Stdin
	if args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	out, err := app.wrapper.Run(
		txn.Message("Set input for module %s", txn.FirstArg),
		args[:1],
		func() (txn.Outcome, error) {
			path, err := setModuleInput(app.file, args[0], r)
			if err != nil {
				return txn.Outcome{}, err
			}
			return txn.Outcome{Changed: true, FilesTouched: []string{path}}, nil
		})
	return finish(out, err)
}

func runGetInput(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if len(args) == 2 && args[1] != "-" {
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return getModuleInput(app.file, args[0], w)
}

// setModuleInput validates entries against the module's declared input and
// writes them to the module's input file.
func setModuleInput(f *manifest.File, name string, r io.Reader) (string, error) {
	m := f.GetModuleFromBuild(name)
	if m == nil {
		return "", fmt.Errorf("module %q is not in the build list", name)
	}
	if len(m.Input) == 0 {
		return "", fmt.Errorf("module %q does not take input", name)
	}

	var entries []inputEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return "", fmt.Errorf("parsing input for module %q: %w", name, err)
	}
	var declared []inputEntry
	if err := json.Unmarshal(m.Input, &declared); err != nil {
		return "", fmt.Errorf("module %q has a malformed input definition: %w", name, err)
	}
	if err := matchDeclaredInput(declared, entries); err != nil {
		return "", fmt.Errorf("input for module %q: %w", name, err)
	}

	path := filepath.Join(".", name, "input.json")
	if err := writeInputFile(path, entries); err != nil {
		return "", err
	}
	return path, nil
}

// matchDeclaredInput checks that the provided entries cover exactly the
// declared variables, in declaration order, with responses filled in.
func matchDeclaredInput(declared, entries []inputEntry) error {
	if len(entries) != len(declared) {
		return fmt.Errorf("got %d entries, the module declares %d", len(entries), len(declared))
	}
	for i, d := range declared {
		e := entries[i]
		if e.Variable != d.Variable {
			return fmt.Errorf("entry %d sets variable %q, the module declares %q", i, e.Variable, d.Variable)
		}
		if e.Type != d.Type {
			return fmt.Errorf("variable %q has type %q, the module declares %q", e.Variable, e.Type, d.Type)
		}
		if e.Response == nil {
			return fmt.Errorf("variable %q has no response", e.Variable)
		}
	}
	return nil
}

// getModuleInput writes the module's input entries: the recorded answers
// when present, else the declaration with empty responses.
func getModuleInput(f *manifest.File, name string, w io.Writer) error {
	m := f.GetModuleFromBuild(name)
	if m == nil {
		return fmt.Errorf("module %q is not in the build list", name)
	}
	if len(m.Input) == 0 {
		return fmt.Errorf("module %q does not take input", name)
	}

	data := []byte(m.Input)
	path := filepath.Join(".", name, "input.json")
	if recorded, err := os.ReadFile(path); err == nil {
		data = recorded
	}
	var entries []inputEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("module %q has a malformed input definition: %w", name, err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(entries)
}
