// SPDX-License-Identifier: MPL-2.0

// Package prompt implements the interactive question boundary. Operations
// never read stdin directly; they go through a Prompter so batch runs
// (non-interactive mode) and tests can answer deterministically.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// YesNoChoices are the accepted answers to confirmation questions.
var YesNoChoices = []string{"yes", "no"}

type (
	// Prompter asks the user a question and returns the chosen answer.
	// In non-interactive mode the default answer is returned unasked.
	Prompter interface {
		Ask(question string, choices []string, defaultAnswer string) (string, error)
	}

	// Terminal is the production Prompter reading line-based answers.
	Terminal struct {
		In             io.Reader
		Out            io.Writer
		NonInteractive bool
	}
)

// NewTerminal creates a Prompter on stdin/stdout.
func NewTerminal(nonInteractive bool) *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stdout, NonInteractive: nonInteractive}
}

// Ask prints the question (with choices and default, if any) and reads one
// line. Empty input selects the default. An answer outside the choices is
// re-asked; EOF falls back to the default.
func (t *Terminal) Ask(question string, choices []string, defaultAnswer string) (string, error) {
	if t.NonInteractive {
		return defaultAnswer, nil
	}

	reader := bufio.NewReader(t.In)
	for {
		fmt.Fprint(t.Out, formatQuestion(question, choices, defaultAnswer))
		line, err := reader.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" {
			answer = defaultAnswer
		}
		if len(choices) == 0 || matchesChoice(answer, choices) {
			return answer, nil
		}
		if err != nil {
			// EOF with no valid answer: behave like non-interactive.
			return defaultAnswer, nil
		}
		fmt.Fprintf(t.Out, "Please answer one of: %s\n", strings.Join(choices, ", "))
	}
}

// IsYes reports whether an answer to a yes/no question is affirmative.
func IsYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "yes", "y":
		return true
	}
	return false
}

// AskYesNo asks a yes/no question and interprets the answer.
func AskYesNo(p Prompter, question, defaultAnswer string) (bool, error) {
	answer, err := p.Ask(question, YesNoChoices, defaultAnswer)
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

func formatQuestion(question string, choices []string, defaultAnswer string) string {
	var sb strings.Builder
	sb.WriteString(question)
	if len(choices) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(choices, "/"))
	}
	if defaultAnswer != "" {
		fmt.Fprintf(&sb, " (default: %s)", defaultAnswer)
	}
	sb.WriteString(" ")
	return sb.String()
}

func matchesChoice(answer string, choices []string) bool {
	lower := strings.ToLower(answer)
	for _, c := range choices {
		if lower == c || (len(lower) == 1 && strings.HasPrefix(c, lower)) {
			return true
		}
	}
	return false
}
