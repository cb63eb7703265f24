// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"polbuild/internal/index"
	"polbuild/internal/manifest"
)

const (
	commitOne = "1111111111111111111111111111111111111111"
	commitTwo = "2222222222222222222222222222222222222222"
)

// scriptedPrompter answers questions from a fixed list, falling back to the
// default answer when the list runs out. Questions are recorded for
// assertions.
type scriptedPrompter struct {
	answers   []string
	questions []string
}

func (p *scriptedPrompter) Ask(question string, choices []string, defaultAnswer string) (string, error) {
	p.questions = append(p.questions, question)
	if len(p.answers) == 0 {
		return defaultAnswer, nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func testFile(t *testing.T, build ...*manifest.Module) *manifest.File {
	t.Helper()
	f := manifest.New(filepath.Join(t.TempDir(), manifest.FileName), manifest.Manifest{
		Name:  "test-project",
		Build: build,
	})
	if err := f.Save(); err != nil {
		t.Fatalf("saving manifest: %v", err)
	}
	return f
}

func testIndex(t *testing.T, doc string) *index.Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing index: %v", err)
	}
	idx, err := index.LoadRef(path)
	if err != nil {
		t.Fatalf("loading index: %v", err)
	}
	return idx
}

func testOps(f *manifest.File, idx *index.Index, p *scriptedPrompter) *Ops {
	ops := NewOps(f, idx, p, nil)
	ops.Out = io.Discard
	return ops
}
