// SPDX-License-Identifier: MPL-2.0

package txn

import (
	"fmt"
	"strings"
)

type (
	// Placeholder produces one value for a commit message template from the
	// operation's own arguments.
	Placeholder func(args []string) string

	// Template is a commit message template: a format string whose verbs are
	// filled by placeholders evaluated against the operation arguments.
	Template struct {
		Format       string
		Placeholders []Placeholder
	}
)

// PluralS renders "s" when the operation had more than one argument.
func PluralS(args []string) string {
	if len(args) > 1 {
		return "s"
	}
	return ""
}

// FirstArg renders the first argument, quoted.
func FirstArg(args []string) string {
	return fmt.Sprintf("'%s'", args[0])
}

// ArgList renders all arguments, quoted and comma-separated.
func ArgList(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = fmt.Sprintf("'%s'", a)
	}
	return strings.Join(quoted, ", ")
}

// Message builds a template.
func Message(format string, placeholders ...Placeholder) Template {
	return Template{Format: format, Placeholders: placeholders}
}

// Render interpolates the template against the operation arguments.
func (t Template) Render(args []string) string {
	values := make([]any, len(t.Placeholders))
	for i, p := range t.Placeholders {
		values[i] = p(args)
	}
	return fmt.Sprintf(t.Format, values...)
}
