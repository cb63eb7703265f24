// SPDX-License-Identifier: MPL-2.0

// Package assemble turns staged module slots into the final policy tree: it
// walks the build list in order and executes each module's build steps
// against out/policy, so later modules overlay earlier ones.
package assemble

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"polbuild/internal/manifest"
	"polbuild/internal/stage"
)

// PolicyDir is the directory under the build-output root holding the
// assembled policy tree.
const PolicyDir = "policy"

// Options configures one assembly run.
type Options struct {
	// OutDir is the build-output root (default "out").
	OutDir string
	// Out receives per-step progress lines and run-step output; nil
	// discards them.
	Out io.Writer
}

// Run assembles the policy tree from the staged plan. The output directory
// is recreated from scratch, then every module's steps run in build list
// order. A failing step aborts the whole run.
func Run(ctx context.Context, f *manifest.File, plan stage.Plan, opts Options) error {
	if opts.OutDir == "" {
		opts.OutDir = "out"
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	policyDir := filepath.Join(opts.OutDir, PolicyDir)
	if err := os.RemoveAll(policyDir); err != nil {
		return err
	}
	if err := os.MkdirAll(policyDir, 0o755); err != nil {
		return err
	}

	for _, m := range f.Build {
		staged, ok := plan[m.Name]
		if !ok {
			return fmt.Errorf("module %q has not been staged", m.Name)
		}
		fmt.Fprintf(opts.Out, "Building module %q\n", m.Name)
		for _, step := range m.Steps {
			if err := runStep(ctx, m, staged.Dir, policyDir, step, opts.Out); err != nil {
				return fmt.Errorf("module %q step %q: %w", m.Name, step, err)
			}
		}
	}
	fmt.Fprintf(opts.Out, "Generated policy set in %s\n", policyDir)
	return nil
}

// runStep dispatches one build step. Source paths are relative to the staged
// module slot, destination paths to the policy tree.
func runStep(ctx context.Context, m *manifest.Module, moduleDir, policyDir, step string, out io.Writer) error {
	fields := strings.Fields(step)
	if len(fields) == 0 {
		return fmt.Errorf("empty build step")
	}
	kind, args := fields[0], fields[1:]

	switch kind {
	case "copy":
		if len(args) != 2 {
			return fmt.Errorf("copy step takes source and destination")
		}
		return stepCopy(filepath.Join(moduleDir, args[0]), filepath.Join(policyDir, args[1]))
	case "directory":
		if len(args) != 2 {
			return fmt.Errorf("directory step takes source and destination")
		}
		return copyDirMerge(filepath.Join(moduleDir, args[0]), filepath.Join(policyDir, args[1]))
	case "json":
		if len(args) != 2 {
			return fmt.Errorf("json step takes source and destination")
		}
		return stepJSON(filepath.Join(moduleDir, args[0]), filepath.Join(policyDir, args[1]))
	case "append":
		if len(args) != 2 {
			return fmt.Errorf("append step takes source and destination")
		}
		return stepAppend(filepath.Join(moduleDir, args[0]), filepath.Join(policyDir, args[1]))
	case "delete":
		if len(args) == 0 {
			return fmt.Errorf("delete step takes at least one path")
		}
		return stepDelete(policyDir, args)
	case "run":
		if len(args) == 0 {
			return fmt.Errorf("run step takes a command")
		}
		return stepRun(ctx, moduleDir, strings.Join(args, " "), out)
	}
	return fmt.Errorf("unknown step %q", kind)
}
