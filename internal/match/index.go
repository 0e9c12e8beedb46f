// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package match resolves extracted text items against the caller-supplied
// device tag set: exact membership, variant-index hits, and fuzzy similarity,
// after cross-reference annotations have been rejected.
package match

import (
	"sort"
	"strings"

	"tagtrace/internal/observability"
)

// TagIndex maps alternate textual renderings of each canonical tag back to
// the canonical form. Built once per call from the immutable tag set.
type TagIndex struct {
	canonical map[string]struct{}
	variants  map[string]string
	dropped   []string
	tags      []string
}

// NewTagIndex expands every canonical tag into its lookup variants. A variant
// string claimed by two or more different canonical tags is dropped from the
// index: ambiguous abbreviations must never silently pick one winner. Drops
// are logged through the observer, not treated as errors.
func NewTagIndex(tags []string, observer *observability.StandardObserver) *TagIndex {
	idx := &TagIndex{
		canonical: make(map[string]struct{}, len(tags)),
		variants:  make(map[string]string),
	}

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, seen := idx.canonical[tag]; seen {
			continue
		}
		idx.canonical[tag] = struct{}{}
		idx.tags = append(idx.tags, tag)
	}
	sort.Strings(idx.tags)

	// variant -> set of claiming canonical tags
	claims := make(map[string]map[string]struct{})
	for _, tag := range idx.tags {
		for _, v := range expandVariants(tag) {
			if claims[v] == nil {
				claims[v] = make(map[string]struct{})
			}
			claims[v][tag] = struct{}{}
		}
	}

	for variant, owners := range claims {
		if _, isCanonical := idx.canonical[variant]; isCanonical {
			// Exact membership already resolves this string; an index entry
			// would only shadow a different tag.
			continue
		}
		if len(owners) > 1 {
			idx.dropped = append(idx.dropped, variant)
			continue
		}
		for owner := range owners {
			idx.variants[variant] = owner
		}
	}
	sort.Strings(idx.dropped)

	for _, variant := range idx.dropped {
		observer.Debugf("tagindex", "ambiguous variant %q dropped (claimed by multiple tags)", variant)
	}

	return idx
}

// expandVariants synthesizes the alternate renderings of one canonical tag:
// stripped leading sign, truncation at the first terminal separator, the
// final dash-delimited segment, and alternate separator characters.
func expandVariants(tag string) []string {
	seen := map[string]struct{}{}
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || v == tag {
			return
		}
		seen[v] = struct{}{}
	}

	// Leading + or - omitted on the drawing label
	if strings.HasPrefix(tag, "+") || strings.HasPrefix(tag, "-") {
		add(tag[1:])
	}

	// Truncated at the first terminal separator
	if i := strings.IndexAny(tag, ":./"); i > 0 {
		add(tag[:i])
	}

	// Final dash-delimited segment (the local device name)
	if parts := strings.Split(tag, "-"); len(parts) > 1 {
		if last := parts[len(parts)-1]; last != "" {
			add(last)
		}
	}

	// Alternate separators seen in exported drawings
	if strings.Contains(tag, "-") {
		add(strings.ReplaceAll(tag, "-", "_"))
		add(strings.ReplaceAll(tag, "-", "."))
	}

	variants := make([]string, 0, len(seen))
	for v := range seen {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}

// Contains reports whether text is a canonical tag.
func (idx *TagIndex) Contains(text string) bool {
	_, ok := idx.canonical[text]
	return ok
}

// Lookup resolves a variant string to its canonical tag.
func (idx *TagIndex) Lookup(text string) (string, bool) {
	canonical, ok := idx.variants[text]
	return canonical, ok
}

// Tags returns the canonical tag set in sorted order.
func (idx *TagIndex) Tags() []string { return idx.tags }

// Dropped returns the variants discarded as ambiguous, sorted.
func (idx *TagIndex) Dropped() []string { return idx.dropped }
