// SPDX-License-Identifier: MPL-2.0

package index

import (
	"encoding/json"
	"fmt"
)

// DefaultVersionsURL is the registry's version-to-checksum catalog, consulted
// for checksum-verified archive downloads.
const DefaultVersionsURL = "https://archive.polbuild.dev/versions.json"

// DefaultModulesURL is the base URL for registry module archives; the
// canonical archive for a module is <DefaultModulesURL>/<name>/<commit>.tar.gz.
const DefaultModulesURL = "https://archive.polbuild.dev/modules"

type (
	// ArchiveInfo holds the published checksum for one module version.
	ArchiveInfo struct {
		ArchiveSHA256 string `json:"archive_sha256"`
	}

	// VersionsCatalog maps module name -> version -> archive info.
	VersionsCatalog map[string]map[string]ArchiveInfo
)

// FetchVersions retrieves the versions catalog from url (or reads it from a
// local path, for tests).
func FetchVersions(url string) (VersionsCatalog, error) {
	data, err := getOrReadBytes(url)
	if err != nil {
		return nil, fmt.Errorf("downloading module versions catalog failed - check your network settings: %w", err)
	}

	var wrapper struct {
		Versions VersionsCatalog `json:"versions"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Versions != nil {
		return wrapper.Versions, nil
	}

	var catalog VersionsCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing versions catalog: %w", err)
	}
	return catalog, nil
}

// Checksum returns the published archive checksum for a module version.
// Absence is fatal for the caller: an archive without a published checksum
// can never be verified.
func (c VersionsCatalog) Checksum(name, version string) (string, bool) {
	info, ok := c[name][version]
	if !ok || info.ArchiveSHA256 == "" {
		return "", false
	}
	return info.ArchiveSHA256, true
}
