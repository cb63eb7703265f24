// SPDX-License-Identifier: MPL-2.0

// Package stage implements the fetch-and-stage pipeline: each build list
// module is resolved to content (working tree, cache, archive, clone, or
// checksum-verified registry download) and copied into a numbered staging
// slot for the downstream assembler.
//
// The pipeline is strictly sequential: slot names derive from build list
// position, and any failure aborts the whole run with no per-module
// isolation or retry.
package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"polbuild/internal/index"
	"polbuild/internal/manifest"
)

// StagesDir is the directory under the build-output root holding staged
// module slots.
const StagesDir = "stages"

type (
	// Cloner fetches a git source pinned to an exact commit; satisfied by
	// *vcs.Client.
	Cloner interface {
		CloneAt(ctx context.Context, url, commit, dest string) error
	}

	// Options configures one pipeline run.
	Options struct {
		// CacheDir is the cache root; downloads live under
		// <CacheDir>/downloads/<commit>.
		CacheDir string
		// OutDir is the build-output root (default "out").
		OutDir string
		// Redownload wipes a module's cached entry before fetching.
		Redownload bool
		// IgnoreVersions forces clone-based fetching for registry modules.
		IgnoreVersions bool
		// VersionsURL and ModulesURL locate the registry catalogs.
		VersionsURL string
		ModulesURL  string
		// Cloner performs clone-and-checkout fetches.
		Cloner Cloner
		// Out receives per-module progress lines; nil discards them.
		Out io.Writer
	}

	// StagedModule is the transient staging annotation for one module. It is
	// kept in the Plan side table, never written onto the module record, so
	// transient state cannot leak into the persisted manifest.
	StagedModule struct {
		// Dir is the staged slot the assembler consumes.
		Dir string
		// Sequence is the module's 1-based position in the build list.
		Sequence int
	}

	// Plan maps module name to its staging annotation for one pipeline run.
	Plan map[string]StagedModule
)

// DownloadPath returns a module's content-addressed cache location.
func DownloadPath(cacheDir, commit string) string {
	return filepath.Join(cacheDir, "downloads", commit)
}

// SlotPath returns the staged directory for one module: sequence number,
// name, and commit (or "local") joined under <out>/stages.
func SlotPath(outDir string, seq int, m *manifest.Module) string {
	commit := m.Commit
	if m.IsLocal() {
		commit = "local"
	}
	return filepath.Join(outDir, StagesDir, fmt.Sprintf("%03d_%s_%s", seq, safeSlotName(m.Name), commit))
}

// Run stages every module of the build list in order and returns the plan
// for the assembler. Identical build lists and cache state produce identical
// slot names and sequence numbers.
func Run(ctx context.Context, f *manifest.File, opts Options) (Plan, error) {
	if opts.OutDir == "" {
		opts.OutDir = "out"
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.VersionsURL == "" {
		opts.VersionsURL = index.DefaultVersionsURL
	}
	if opts.ModulesURL == "" {
		opts.ModulesURL = index.DefaultModulesURL
	}

	plan := make(Plan, len(f.Build))
	pad := f.LongestModuleName()
	var catalog index.VersionsCatalog

	for i, m := range f.Build {
		seq := i + 1
		slot := SlotPath(opts.OutDir, seq, m)

		if m.IsLocal() {
			if err := stageLocal(m, slot); err != nil {
				return nil, err
			}
			plan[m.Name] = StagedModule{Dir: slot, Sequence: seq}
			fmt.Fprintf(opts.Out, "%03d %-*s @ %s (Copied)\n", seq, pad, m.Name, "local")
			continue
		}

		var err error
		catalog, err = stageRemote(ctx, m, slot, catalog, opts)
		if err != nil {
			return nil, err
		}
		plan[m.Name] = StagedModule{Dir: slot, Sequence: seq}
		fmt.Fprintf(opts.Out, "%03d %-*s @ %s (Downloaded)\n", seq, pad, m.Name, m.Commit)
	}
	return plan, nil
}

// stageLocal copies a working tree module into its slot.
func stageLocal(m *manifest.Module, slot string) error {
	info, err := os.Stat(m.Name)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("local module %q is not a directory in the working tree", m.Name)
	}
	if err := os.RemoveAll(slot); err != nil {
		return err
	}
	if err := copyTree(m.Name, slot); err != nil {
		return fmt.Errorf("staging local module %q: %w", m.Name, err)
	}
	return nil
}

// stageRemote ensures a remote module's content is cached, then copies it
// into its slot. The versions catalog is fetched lazily, at most once per
// run, and threaded back to the caller.
func stageRemote(ctx context.Context, m *manifest.Module, slot string, catalog index.VersionsCatalog, opts Options) (index.VersionsCatalog, error) {
	if m.Commit == "" {
		return catalog, fmt.Errorf("module %q must have a commit property", m.Name)
	}
	if !IsCommitHash(m.Commit) {
		return catalog, fmt.Errorf("%q is not a commit reference", m.Commit)
	}

	src := m.Source()
	if src == "" {
		return catalog, fmt.Errorf("module %q has neither url nor repo", m.Name)
	}

	commitDir := DownloadPath(opts.CacheDir, m.Commit)
	if opts.Redownload {
		if err := os.RemoveAll(commitDir); err != nil {
			return catalog, err
		}
	}
	moduleDir := commitDir
	if m.Subdirectory != "" {
		moduleDir = filepath.Join(commitDir, m.Subdirectory)
	}

	if _, err := os.Stat(moduleDir); err != nil {
		switch {
		case hasArchiveSuffix(src):
			if err := fetchArchive(src, m.Commit, commitDir); err != nil {
				return catalog, err
			}
			if err := checkSubdirectory(m, moduleDir, src, "fetched archive"); err != nil {
				return catalog, err
			}

		case m.Index != "" || m.URL != "" || opts.IgnoreVersions:
			// No registry archive exists for modules on an alternate index
			// or added by URL; fall back to a full clone at the commit.
			if err := opts.Cloner.CloneAt(ctx, src, m.Commit, commitDir); err != nil {
				return catalog, err
			}
			if err := checkSubdirectory(m, moduleDir, src, "cloned repository"); err != nil {
				return catalog, err
			}

		default:
			if catalog == nil {
				catalog, err = index.FetchVersions(opts.VersionsURL)
				if err != nil {
					return catalog, err
				}
			}
			checksum, ok := catalog.Checksum(m.Name, m.Version)
			if !ok {
				return catalog, fmt.Errorf("cannot verify checksum of the %q module", m.Name)
			}
			archiveURL := fmt.Sprintf("%s/%s/%s.tar.gz", opts.ModulesURL, m.Name, m.Commit)
			if err := fetchArchive(archiveURL, checksum, commitDir); err != nil {
				return catalog, err
			}
		}
	}

	if err := os.RemoveAll(slot); err != nil {
		return catalog, err
	}
	if err := copyTree(moduleDir, slot); err != nil {
		return catalog, fmt.Errorf("staging module %q: %w", m.Name, err)
	}
	return catalog, nil
}

func checkSubdirectory(m *manifest.Module, moduleDir, src, what string) error {
	if m.Subdirectory == "" {
		return nil
	}
	if _, err := os.Stat(moduleDir); err != nil {
		return fmt.Errorf("subdirectory %q for module %q was not found in %s %q: please check %s for possible typos",
			m.Subdirectory, m.Name, what, src, manifest.FileName)
	}
	return nil
}
