// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// stepCopy copies a file or directory tree into the policy tree, replacing
// whatever was there.
func stepCopy(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
		return copyDirMerge(src, dst)
	}
	return copyFile(src, dst)
}

// copyDirMerge copies src into dst without removing existing files, so
// several modules can contribute to one directory.
func copyDirMerge(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode()&0o777)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}

// stepAppend appends the source file's content to the destination, creating
// it when absent.
func stepAppend(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// stepDelete removes files from the policy tree. A path outside the tree is
// a configuration error.
func stepDelete(policyDir string, paths []string) error {
	for _, p := range paths {
		target := filepath.Join(policyDir, filepath.Clean(p))
		if !strings.HasPrefix(target, filepath.Clean(policyDir)+string(os.PathSeparator)) {
			return fmt.Errorf("path %q escapes the policy tree", p)
		}
		if err := os.RemoveAll(target); err != nil {
			return err
		}
	}
	return nil
}

// stepRun executes a shell command with the staged module slot as working
// directory.
func stepRun(ctx context.Context, moduleDir, command string, out io.Writer) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "step")
	if err != nil {
		return fmt.Errorf("parsing run step: %w", err)
	}
	runner, err := interp.New(
		interp.Dir(moduleDir),
		interp.StdIO(nil, out, out),
	)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}
