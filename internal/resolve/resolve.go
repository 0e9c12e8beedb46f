// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolve reduces each tag's deduplicated candidates, across all
// pages, to one primary position plus an ordered list of alternates.
//
// A tag legitimately recurs across a document: once at its true schematic
// location, and again in block-diagram overviews and multi-instance contact
// listings. Picking the first high-confidence match is wrong by construction
// once more than one page is high-confidence, so every candidate is scored
// with the hybrid rule
//
//	score = confidence × page_weight(role) × preferred_boost × cluster_size_factor
//
// and ties on the top score break to the lowest page index for
// reproducibility.
package resolve

import (
	"sort"

	"tagtrace/internal/config"
	"tagtrace/internal/schematic"
)

// PageRoles maps 1-based page numbers to their classified role.
type PageRoles map[int]schematic.PageRole

// Resolver scores and ranks candidates. Stateless apart from configuration;
// resolving is a pure function of its inputs, so re-scoring the same
// candidate set with a different preferred page needs no re-extraction.
type Resolver struct {
	cfg *config.Config
}

// New creates a resolver from the engine configuration.
func New(cfg *config.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve ranks all deduplicated candidates and returns the primary position
// per tag plus every candidate, score-ordered, as alternates. preferredPage
// is 0 when the caller supplied no page hint. Tags without candidates are
// simply absent from the result.
func (r *Resolver) Resolve(candidates []schematic.MatchCandidate, preferredPage int, roles PageRoles) *schematic.PositionResult {
	result := schematic.NewPositionResult()

	byTag := make(map[string][]schematic.MatchCandidate)
	for _, c := range candidates {
		byTag[c.Tag] = append(byTag[c.Tag], c)
	}

	for tag, tagCandidates := range byTag {
		ranked := r.rank(tagCandidates, preferredPage, roles)

		positions := make([]schematic.ComponentPosition, len(ranked))
		for i, c := range ranked {
			positions[i] = toPosition(c)
		}

		result.Primary[tag] = positions[0]
		result.Alternates[tag] = positions
	}

	return result
}

// Rescore re-ranks an existing candidate set under a different page
// preference. Pure; identical inputs yield identical results.
func (r *Resolver) Rescore(candidates []schematic.MatchCandidate, preferredPage int, roles PageRoles) *schematic.PositionResult {
	return r.Resolve(candidates, preferredPage, roles)
}

// Score computes the hybrid score of one candidate.
func (r *Resolver) Score(c schematic.MatchCandidate, preferredPage int, roles PageRoles) float64 {
	weight := r.cfg.PageWeight(string(roles[c.Page]))

	boost := 1.0
	if preferredPage > 0 && c.Page == preferredPage {
		// The caller's page context is decisive, not merely tie-breaking.
		boost = r.cfg.Resolution.PreferredPageBoost
	}

	extraHits := float64(c.Hits - 1)
	if extraHits < 0 {
		extraHits = 0
	}
	clusterFactor := 1 + r.cfg.ClusterHitReward()*extraHits

	return c.Confidence * weight * boost * clusterFactor
}

// rank sorts candidates by descending score; equal scores break to the
// lowest page index, then to box position, so the ordering is total and
// deterministic.
func (r *Resolver) rank(candidates []schematic.MatchCandidate, preferredPage int, roles PageRoles) []schematic.MatchCandidate {
	ranked := make([]schematic.MatchCandidate, len(candidates))
	copy(ranked, candidates)

	scoreOf := func(c schematic.MatchCandidate) float64 {
		return r.Score(c, preferredPage, roles)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scoreOf(ranked[i]), scoreOf(ranked[j])
		if si != sj {
			return si > sj
		}
		if ranked[i].Page != ranked[j].Page {
			return ranked[i].Page < ranked[j].Page
		}
		if ranked[i].BBox.X0 != ranked[j].BBox.X0 {
			return ranked[i].BBox.X0 < ranked[j].BBox.X0
		}
		return ranked[i].BBox.Y0 < ranked[j].BBox.Y0
	})
	return ranked
}

func toPosition(c schematic.MatchCandidate) schematic.ComponentPosition {
	cx, cy := c.BBox.Center()
	return schematic.ComponentPosition{
		Tag:        c.Tag,
		Page:       c.Page,
		CenterX:    cx,
		CenterY:    cy,
		Width:      c.BBox.Width(),
		Height:     c.BBox.Height(),
		Confidence: c.Confidence,
		Kind:       c.Kind,
	}
}
