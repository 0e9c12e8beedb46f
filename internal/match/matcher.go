// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package match

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"

	"tagtrace/internal/config"
	"tagtrace/internal/observability"
	"tagtrace/internal/schematic"
)

// exactConfidence is the ceiling of the whole confidence scale.
const exactConfidence = 1.0

// crossRefPattern matches a cross-page annotation of the shape
// TOKEN ":" INTEGER "/" NUMBER, e.g. K2:61/19.9. A genuine terminal
// reference (-K1:13) has no trailing /NUMBER and is not rejected.
var crossRefPattern = regexp.MustCompile(`^[A-Za-z0-9+\-_.]+:\d+/\d+(?:\.\d+)?$`)

// tagCharset is the closed character set a device tag rendering can use.
var tagCharset = regexp.MustCompile(`^[A-Za-z0-9+\-_.:/]+$`)

// Matcher turns extracted text items into match candidates for one tag set.
// Pure mapping from items to candidates; no side effects, safe for
// concurrent use across pages.
type Matcher struct {
	index    *TagIndex
	params   *levenshtein.Params
	observer *observability.StandardObserver

	variantConfidence float64
	fuzzyConfidence   float64
	fuzzyThreshold    float64
}

// NewMatcher creates a matcher over a prebuilt tag index.
func NewMatcher(index *TagIndex, cfg *config.Config, observer *observability.StandardObserver) *Matcher {
	return &Matcher{
		index:             index,
		params:            levenshtein.NewParams(),
		observer:          observer,
		variantConfidence: cfg.Matching.VariantConfidence,
		fuzzyConfidence:   cfg.Matching.FuzzyConfidence,
		fuzzyThreshold:    cfg.Matching.FuzzyThreshold,
	}
}

// Match folds the item stream of one page into candidates. Items that match
// nothing simply produce nothing.
func (m *Matcher) Match(items []schematic.RawTextItem) []schematic.MatchCandidate {
	var candidates []schematic.MatchCandidate
	for _, item := range items {
		if candidate, ok := m.matchItem(item); ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// matchItem applies the match ladder to one item, short-circuiting on the
// first success: cross-reference rejection, shape pre-filter, exact, variant,
// fuzzy.
func (m *Matcher) matchItem(item schematic.RawTextItem) (schematic.MatchCandidate, bool) {
	text := item.Text

	// A cross-page annotation never locates a component, regardless of how
	// tag-like its prefix looks.
	if crossRefPattern.MatchString(text) {
		return schematic.MatchCandidate{}, false
	}

	if !plausibleTagShape(text) {
		return schematic.MatchCandidate{}, false
	}

	if m.index.Contains(text) {
		return m.candidate(item, text, schematic.MatchExact, exactConfidence), true
	}

	if canonical, ok := m.index.Lookup(text); ok {
		return m.candidate(item, canonical, schematic.MatchVariant, m.variantConfidence), true
	}

	if canonical, ok := m.bestFuzzy(text); ok {
		return m.candidate(item, canonical, schematic.MatchFuzzy, m.fuzzyConfidence), true
	}

	return schematic.MatchCandidate{}, false
}

func (m *Matcher) candidate(item schematic.RawTextItem, tag string, kind schematic.MatchKind, confidence float64) schematic.MatchCandidate {
	return schematic.MatchCandidate{
		Tag:        tag,
		Page:       item.Page,
		BBox:       item.BBox,
		Method:     item.Method,
		Kind:       kind,
		Confidence: confidence,
		Hits:       1,
		Methods:    []schematic.ExtractionMethod{item.Method},
	}
}

// bestFuzzy returns the canonical tag with the highest similarity ratio at or
// above the fuzzy threshold. Ties resolve to the lexicographically first tag
// for determinism (the index keeps its tags sorted).
func (m *Matcher) bestFuzzy(text string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, tag := range m.index.Tags() {
		score := levenshtein.Similarity(text, tag, m.params)
		if score >= m.fuzzyThreshold && score > bestScore {
			best = tag
			bestScore = score
		}
	}
	return best, best != ""
}

// plausibleTagShape rejects items that cannot render a device tag before
// any set lookup or fuzzy comparison runs. Stripped-sign variants (K1 for
// -K1) must still pass, so a leading letter is accepted alongside +/-.
func plausibleTagShape(text string) bool {
	if len(text) < 2 || len(text) > 40 {
		return false
	}
	if !tagCharset.MatchString(text) {
		return false
	}

	first := rune(text[0])
	if first != '+' && first != '-' && !unicode.IsLetter(first) {
		return false
	}

	// A tag always carries a digit and a letter; bare numbers are page and
	// coordinate labels, bare words are prose.
	return strings.ContainsFunc(text, unicode.IsDigit) &&
		strings.ContainsFunc(text, unicode.IsLetter)
}
