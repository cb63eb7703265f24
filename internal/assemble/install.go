// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultInstallDir is where the assembled policy set is installed when no
// destination is given.
const DefaultInstallDir = "/var/lib/polbuild/policy"

// Install copies the assembled policy tree to destination, replacing any
// previous installation.
func Install(outDir, destination string) error {
	if outDir == "" {
		outDir = "out"
	}
	if destination == "" {
		destination = DefaultInstallDir
	}
	policyDir := filepath.Join(outDir, PolicyDir)
	if _, err := os.Stat(policyDir); err != nil {
		return fmt.Errorf("no assembled policy set in %s, run the build first", policyDir)
	}
	if err := os.RemoveAll(destination); err != nil {
		return err
	}
	if err := copyDirMerge(policyDir, destination); err != nil {
		return fmt.Errorf("installing to %s: %w", destination, err)
	}
	return nil
}
