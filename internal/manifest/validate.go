// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var manifestSchema string

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
)

func compiledSchema() cue.Value {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		schemaValue = ctx.CompileString(manifestSchema, cue.Filename("schema.cue"))
	})
	return schemaValue
}

// ValidateBytes checks a raw manifest document against the embedded CUE
// schema. It catches structural mistakes (wrong types, malformed commit
// hashes) before the document is decoded into typed records.
func ValidateBytes(data []byte) error {
	schema := compiledSchema()
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal schema error: %w", err)
	}

	expr, err := cuejson.Extract(FileName, data)
	if err != nil {
		return fmt.Errorf("parsing json: %w", err)
	}
	doc := schema.Context().BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("parsing json: %w", err)
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}

// ValidateProject applies the semantic rules a build requires on top of the
// schema: unique names, local modules without commits, and remote modules
// with a source and commit.
func ValidateProject(f *File, emptyBuildOK bool) error {
	if len(f.Build) == 0 && !emptyBuildOK {
		return fmt.Errorf("the build list of %s is empty", f.Path)
	}
	seen := make(map[string]bool, len(f.Build))
	for _, m := range f.Build {
		if m.Name == "" {
			return fmt.Errorf("a module in %s has no name", f.Path)
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate module %q in build list", m.Name)
		}
		seen[m.Name] = true
		if m.IsLocal() {
			if m.Commit != "" {
				return fmt.Errorf("local module %q must not have a commit", m.Name)
			}
			continue
		}
		if m.URL == "" && m.Repo == "" {
			return fmt.Errorf("module %q has neither url nor repo", m.Name)
		}
	}
	return nil
}
