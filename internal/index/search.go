// SPDX-License-Identifier: MPL-2.0

package index

import "strings"

// SearchResult groups a catalog module with the aliases that point at it.
type SearchResult struct {
	Name        string
	Description string
	Aliases     []string
}

// Search returns catalog modules whose name, or any alias, contains any of
// the given terms. With no terms, every module is returned. Results follow
// catalog order.
func (i *Index) Search(terms []string) []SearchResult {
	// Gather aliases first so a match on an alias surfaces its target.
	aliases := make(map[string][]string)
	for _, name := range i.names {
		if entry := i.entries[name]; entry.Alias != "" {
			aliases[entry.Alias] = append(aliases[entry.Alias], name)
		}
	}

	var results []SearchResult
	for _, name := range i.names {
		entry := i.entries[name]
		if entry.Alias != "" {
			continue
		}
		if len(terms) > 0 && !matchesAny(name, aliases[name], terms) {
			continue
		}
		results = append(results, SearchResult{
			Name:        name,
			Description: entry.Description,
			Aliases:     aliases[name],
		})
	}
	return results
}

func matchesAny(name string, aliases, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(name, term) {
			return true
		}
		for _, alias := range aliases {
			if strings.Contains(alias, term) {
				return true
			}
		}
	}
	return false
}
