// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine is the position resolution facade: classify pages once,
// run extraction+matching+dedup per schematic page on a worker pool, then
// reduce all pages' candidates into primary positions with alternates.
package engine

import (
	"context"
	"errors"
	"strings"

	"tagtrace/internal/classifier"
	"tagtrace/internal/config"
	"tagtrace/internal/dedupe"
	"tagtrace/internal/document"
	"tagtrace/internal/extract"
	"tagtrace/internal/match"
	"tagtrace/internal/observability"
	"tagtrace/internal/parallel"
	"tagtrace/internal/resolve"
	"tagtrace/internal/schematic"
)

// Accessor is the document contract the engine consumes. *document.Document
// satisfies it; tests substitute fakes.
type Accessor interface {
	PageCount() int
	PageDimensions(page int) (float64, float64, error)
	ExtractSpans(page int) ([]schematic.RawTextItem, error)
	ExtractBlocks(page int) ([]schematic.RawTextItem, error)
	ExtractRaw(page int) ([]schematic.RawTextItem, error)
}

// Engine resolves device tag positions for one open document. Create one
// engine per document; the page classification cache lives as long as the
// engine and is invalidated by discarding it together with the closed
// document handle.
type Engine struct {
	doc        Accessor
	cfg        *config.Config
	observer   *observability.StandardObserver
	classifier *classifier.Classifier
	extractor  *extract.Extractor
	dedup      *dedupe.Deduplicator
	resolver   *resolve.Resolver
	pool       *parallel.Pool
}

// Result carries the resolved positions plus everything needed to re-score
// them under a different page preference without re-extraction.
type Result struct {
	Positions  *schematic.PositionResult
	Candidates []schematic.MatchCandidate
	Roles      resolve.PageRoles
	Stats      *parallel.ProcessingStats
}

// New creates an engine for one open document.
func New(doc Accessor, cfg *config.Config, observer *observability.StandardObserver) *Engine {
	return &Engine{
		doc:        doc,
		cfg:        cfg,
		observer:   observer,
		classifier: classifier.New(doc, observer),
		extractor:  extract.New(doc, observer),
		dedup:      dedupe.New(cfg),
		resolver:   resolve.New(cfg),
		pool:       parallel.NewPool(cfg.Workers, observer),
	}
}

// FindPositions locates every tag of the given set. preferredPage is 0 when
// the caller has no page context. An empty tag set is a valid no-op, not an
// error; a document access failure aborts the whole call.
func (e *Engine) FindPositions(tags []string, preferredPage int) (*Result, error) {
	finish := e.observer.StartTiming("engine", "find_positions", 0)

	cleaned := cleanTags(tags)
	if len(cleaned) == 0 {
		finish(true, map[string]interface{}{"tags": 0})
		return &Result{
			Positions: schematic.NewPositionResult(),
			Roles:     resolve.PageRoles{},
			Stats:     &parallel.ProcessingStats{},
		}, nil
	}

	index := match.NewTagIndex(cleaned, e.observer)
	matcher := match.NewMatcher(index, e.cfg, e.observer)

	pageCount := e.doc.PageCount()
	pages := make([]int, pageCount)
	for i := range pages {
		pages[i] = i + 1
	}

	results, stats := e.pool.Process(context.Background(), pages, func(ctx context.Context, page int) *parallel.PageResult {
		return e.processPage(page, matcher)
	})

	roles := make(resolve.PageRoles, pageCount)
	var candidates []schematic.MatchCandidate
	for _, pr := range results {
		if pr.Err != nil {
			finish(false, map[string]interface{}{"page": pr.Page, "error": pr.Err.Error()})
			return nil, pr.Err
		}
		roles[pr.Page] = pr.Class.Role
		candidates = append(candidates, pr.Candidates...)
	}

	positions := e.resolver.Resolve(candidates, preferredPage, roles)

	finish(true, map[string]interface{}{
		"tags":       len(cleaned),
		"candidates": len(candidates),
		"resolved":   len(positions.Primary),
	})

	return &Result{
		Positions:  positions,
		Candidates: candidates,
		Roles:      roles,
		Stats:      stats,
	}, nil
}

// Rescore re-ranks a previous result under a different preferred page.
// Pure function of the retained candidate set; no page is re-read.
func (e *Engine) Rescore(result *Result, preferredPage int) *schematic.PositionResult {
	return e.resolver.Rescore(result.Candidates, preferredPage, result.Roles)
}

// ClassifyPages returns the classification verdict for every page.
func (e *Engine) ClassifyPages() (map[int]schematic.PageClass, error) {
	classes := make(map[int]schematic.PageClass)
	for page := 1; page <= e.doc.PageCount(); page++ {
		class, err := e.classifier.Classify(page)
		if err != nil {
			return nil, err
		}
		classes[page] = class
	}
	return classes, nil
}

// processPage runs the full per-page pipeline: classification verdict,
// extraction, matching, within-page dedup.
func (e *Engine) processPage(page int, matcher *match.Matcher) *parallel.PageResult {
	class, err := e.classifier.Classify(page)
	if err != nil {
		return &parallel.PageResult{Page: page, Err: err}
	}
	if !class.Scan {
		return &parallel.PageResult{Page: page, Class: class}
	}

	items, err := e.extractor.Extract(page)
	if err != nil {
		return &parallel.PageResult{Page: page, Class: class, Err: err}
	}

	candidates := e.dedup.Dedupe(matcher.Match(items))

	return &parallel.PageResult{
		Page:       page,
		Class:      class,
		Candidates: candidates,
	}
}

// cleanTags trims and deduplicates the caller-supplied tag set.
func cleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// IsAccessError reports whether err stems from the document collaborator.
func IsAccessError(err error) bool {
	var accessErr *document.AccessError
	return errors.As(err, &accessErr)
}
