// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"polbuild/internal/prompt"
	"polbuild/internal/txn"
)

var inputCmd = &cobra.Command{
	Use:   "input <module>...",
	Short: "Enter input for modules that take it",
	Long: `Enter input for modules that take it.

A module's index entry may declare input variables. Answers are written to
<module>/input.json and consumed by the module's build steps.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInput,
}

// inputEntry is one declared input variable of a module.
type inputEntry struct {
	Type     string          `json:"type"`
	Variable string          `json:"variable"`
	Label    string          `json:"label,omitempty"`
	Question string          `json:"question"`
	Subtype  json.RawMessage `json:"subtype,omitempty"`
	Default  string          `json:"default,omitempty"`
	Response any             `json:"response,omitempty"`
}

func runInput(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	out, err := app.wrapper.Run(
		txn.Message("Added input for module%s %s", txn.PluralS, txn.ArgList),
		args,
		func() (txn.Outcome, error) {
			return collectInput(app, args)
		})
	return finish(out, err)
}

func collectInput(app *appContext, names []string) (txn.Outcome, error) {
	var out txn.Outcome
	for _, name := range names {
		m := app.file.GetModuleFromBuild(name)
		if m == nil {
			return out, fmt.Errorf("module %q is not in the build list", name)
		}
		if len(m.Input) == 0 {
			fmt.Printf("Module %q does not take input\n", name)
			continue
		}
		var entries []inputEntry
		if err := json.Unmarshal(m.Input, &entries); err != nil {
			return out, fmt.Errorf("module %q has a malformed input definition: %w", name, err)
		}
		for i := range entries {
			response, err := askInputEntry(app.prompter, &entries[i])
			if err != nil {
				return out, err
			}
			entries[i].Response = response
		}

		path := filepath.Join(".", name, "input.json")
		if err := writeInputFile(path, entries); err != nil {
			return out, err
		}
		out.Changed = true
		out.FilesTouched = append(out.FilesTouched, path)
		out.Message += fmt.Sprintf(" - Added input for module %q\n", name)
	}
	if !out.Changed {
		return txn.NothingToCommit(), nil
	}
	return out, nil
}

// askInputEntry collects one response: a single answer for scalar entries,
// repeated answers for lists (an empty answer ends the list).
func askInputEntry(p prompt.Prompter, entry *inputEntry) (any, error) {
	if entry.Variable == "" || entry.Question == "" {
		return nil, fmt.Errorf("input entry is missing 'variable' or 'question'")
	}
	if entry.Type != "list" {
		return p.Ask(entry.Question, nil, entry.Default)
	}

	var responses []string
	for {
		answer, err := p.Ask(entry.Question+" (empty to finish)", nil, "")
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return responses, nil
		}
		responses = append(responses, answer)
	}
}

func writeInputFile(path string, entries []inputEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
