// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"polbuild/internal/manifest"
	"polbuild/internal/stage"
	"polbuild/internal/txn"
)

// uriSchemes are the prefixes that make an identifier a repository URL.
var uriSchemes = []string{"https://", "http://", "ssh://", "git://", "git@"}

func looksLikeURL(identifier string) bool {
	for _, scheme := range uriSchemes {
		if strings.HasPrefix(identifier, scheme) {
			return true
		}
	}
	return false
}

// moduleResolver produces a build list record for a dependency name, with the
// given provenance marker.
type moduleResolver func(name, addedBy string) (*manifest.Module, error)

// Add resolves each identifier (catalog name, name@version pin, local path,
// or repository URL, optionally url@ref) into build list records, appends
// them with the given provenance marker, and expands transitive dependencies
// with added_by set to the dependent's name. Adding an already-present module
// changes nothing.
func (o *Ops) Add(ctx context.Context, identifiers []string, addedBy string) (txn.Outcome, error) {
	var requested []*manifest.Module
	resolvers := []moduleResolver{}

	for _, identifier := range identifiers {
		switch {
		case looksLikeURL(identifier):
			records, provided, err := o.resolveURL(ctx, identifier, addedBy)
			if err != nil {
				return txn.Outcome{}, err
			}
			requested = append(requested, records...)
			resolvers = append(resolvers, provided)

		case strings.HasPrefix(identifier, manifest.LocalPrefix):
			record, err := localModuleRecord(identifier, addedBy)
			if err != nil {
				return txn.Outcome{}, err
			}
			requested = append(requested, record)

		default:
			record, err := o.resolveName(identifier, addedBy)
			if err != nil {
				return txn.Outcome{}, err
			}
			requested = append(requested, record)
		}
	}

	resolvers = append(resolvers, o.indexResolver())
	added, err := o.appendWithDependencies(requested, resolvers)
	if err != nil {
		return txn.Outcome{}, err
	}
	if len(added) == 0 {
		return txn.Outcome{}, nil
	}
	if err := o.File.Save(); err != nil {
		return txn.Outcome{}, err
	}
	for _, name := range added {
		fmt.Fprintf(o.out(), "Added module %q\n", name)
	}
	return txn.Outcome{Changed: true}, nil
}

// resolveName translates an alias or name@version pin into a catalog record.
func (o *Ops) resolveName(identifier, addedBy string) (*manifest.Module, error) {
	name := identifier
	version := ""
	if at := strings.LastIndex(identifier, "@"); at > 0 {
		name, version = identifier[:at], identifier[at+1:]
	}
	name = o.Index.TranslateAlias(name)

	entry := o.Index.Lookup(name)
	if entry == nil {
		return nil, fmt.Errorf("module %q does not exist in the index", name)
	}
	if version != "" && version != entry.Version {
		return nil, fmt.Errorf("version %s of module %q is not available", version, name)
	}
	return o.Index.ModuleRecord(name, addedBy)
}

// resolveURL clones the repository behind a url (optionally url@ref), reads
// its manifest's "provides" map, and returns records for every provided
// module. The returned resolver serves dependency lookups from the same
// provides map before the catalog is consulted.
func (o *Ops) resolveURL(ctx context.Context, identifier, addedBy string) ([]*manifest.Module, moduleResolver, error) {
	url, ref := splitURLRef(identifier)

	tmp, err := os.MkdirTemp("", "polbuild-add-*")
	if err != nil {
		return nil, nil, err
	}
	defer os.RemoveAll(tmp)

	commit := ref
	switch {
	case ref == "":
		commit, err = o.Git.CloneDefault(ctx, url, tmp)
	case stage.IsCommitHash(ref):
		err = o.Git.CloneAt(ctx, url, commit, tmp)
	default:
		commit, err = o.Git.LsRemote(ctx, url, ref)
		if err == nil {
			err = o.Git.CloneAt(ctx, url, commit, tmp)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	remote, err := manifest.Load(filepath.Join(tmp, manifest.FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("reading module definitions from %s: %w", url, err)
	}
	provided := remote.ProvidedNames()
	if len(provided) == 0 {
		return nil, nil, fmt.Errorf("%s does not provide any modules", url)
	}

	var records []*manifest.Module
	for _, name := range provided {
		record, err := remote.ProvidedModule(name, url, commit, addedBy)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}
	resolver := func(name, by string) (*manifest.Module, error) {
		if _, ok := remote.Provides[name]; !ok {
			return nil, errUnresolved
		}
		return remote.ProvidedModule(name, url, commit, by)
	}
	return records, resolver, nil
}

// splitURLRef splits an optional "@ref" suffix off a repository URL. The "@"
// only counts when it follows the last path separator, so ssh user prefixes
// (git@host) survive.
func splitURLRef(identifier string) (url, ref string) {
	at := strings.LastIndex(identifier, "@")
	if at <= strings.LastIndex(identifier, "/") {
		return identifier, ""
	}
	return identifier[:at], identifier[at+1:]
}

// localModuleRecord builds a record for a working tree directory.
func localModuleRecord(path, addedBy string) (*manifest.Module, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("local module %q: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local module %q must be a directory", path)
	}
	name := manifest.LocalPrefix + strings.Trim(strings.TrimPrefix(filepath.ToSlash(path), manifest.LocalPrefix), "/") + "/"
	return &manifest.Module{
		Name:        name,
		Description: "Local directory added using polbuild command line",
		Tags:        []string{"local"},
		Steps:       []string{"directory ./ ./"},
		AddedBy:     addedBy,
	}, nil
}

// errUnresolved lets a resolver decline a name so the next one is tried.
var errUnresolved = fmt.Errorf("not resolvable here")

// indexResolver serves dependency lookups from the project catalog.
func (o *Ops) indexResolver() moduleResolver {
	return func(name, addedBy string) (*manifest.Module, error) {
		name = o.Index.TranslateAlias(name)
		if !o.Index.Exists(name) {
			return nil, errUnresolved
		}
		return o.Index.ModuleRecord(name, addedBy)
	}
}

// appendWithDependencies appends records to the build list in order, then
// walks their dependency names breadth-first, resolving each unseen name
// through the resolvers in turn with added_by set to the dependent module.
// Names already in the build list are skipped. Returns the names added.
func (o *Ops) appendWithDependencies(records []*manifest.Module, resolvers []moduleResolver) ([]string, error) {
	var added []string
	queue := append([]*manifest.Module(nil), records...)
	queued := make(map[string]bool, len(records))
	for _, r := range records {
		queued[r.Name] = true
	}

	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		if o.File.InBuild(m.Name) {
			log.Infof("skipping already added module %q", m.Name)
			continue
		}
		o.File.Build = append(o.File.Build, m)
		added = append(added, m.Name)

		for _, dep := range m.Dependencies {
			if o.File.InBuild(dep) || queued[dep] {
				continue
			}
			record, err := resolveDependency(resolvers, dep, m.Name)
			if err != nil {
				return nil, fmt.Errorf("cannot find dependency %q of module %q: %w", dep, m.Name, err)
			}
			queued[dep] = true
			queue = append(queue, record)
		}
	}
	return added, nil
}

func resolveDependency(resolvers []moduleResolver, name, addedBy string) (*manifest.Module, error) {
	for _, resolve := range resolvers {
		record, err := resolve(name, addedBy)
		if err == errUnresolved {
			continue
		}
		return record, err
	}
	return nil, fmt.Errorf("module does not exist in any applicable index")
}
