// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// copyTree copies the directory tree at src into dst, creating dst. The
// ".git" directory is skipped so staged slots carry content only.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
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

// safeSlotName converts a module name into a directory-name-safe component
// for the staged slot: the local prefix is dropped and path separators
// become underscores.
func safeSlotName(name string) string {
	name = strings.TrimPrefix(name, "./")
	name = strings.Trim(name, "/")
	return strings.ReplaceAll(name, "/", "_")
}
