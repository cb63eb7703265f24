// SPDX-License-Identifier: MPL-2.0

package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestAsk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		choices []string
		def     string
		want    string
	}{
		{"explicit answer", "no\n", YesNoChoices, "yes", "no"},
		{"empty selects default", "\n", YesNoChoices, "yes", "yes"},
		{"single letter prefix", "y\n", YesNoChoices, "no", "y"},
		{"invalid then valid", "maybe\nno\n", YesNoChoices, "yes", "no"},
		{"eof falls back to default", "", YesNoChoices, "no", "no"},
		{"free-form answer", "my project\n", nil, "x", "my project"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			term := &Terminal{In: strings.NewReader(tc.input), Out: &bytes.Buffer{}}
			got, err := term.Ask("Question?", tc.choices, tc.def)
			if err != nil {
				t.Fatalf("Ask: %v", err)
			}
			if got != tc.want {
				t.Errorf("Ask() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNonInteractiveReturnsDefault(t *testing.T) {
	t.Parallel()

	term := &Terminal{In: strings.NewReader("no\n"), Out: &bytes.Buffer{}, NonInteractive: true}
	got, err := term.Ask("Remove it?", YesNoChoices, "yes")
	if err != nil || got != "yes" {
		t.Errorf("Ask = %q, %v, want the default unasked", got, err)
	}
}

func TestIsYes(t *testing.T) {
	t.Parallel()

	for answer, want := range map[string]bool{
		"yes": true, "y": true, "Yes": true, "Y": true,
		"no": false, "n": false, "": false, "nope": false,
	} {
		if got := IsYes(answer); got != want {
			t.Errorf("IsYes(%q) = %v, want %v", answer, got, want)
		}
	}
}
