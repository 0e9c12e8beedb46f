// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package dedupe collapses same-page, same-tag candidates whose boxes sit
// within a fixed distance of each other: one physical label recovered
// redundantly by multiple extraction methods or split spans.
package dedupe

import (
	"math"
	"sort"

	"tagtrace/internal/config"
	"tagtrace/internal/schematic"
)

// Deduplicator clusters candidates spatially and rewards cross-method
// agreement.
type Deduplicator struct {
	radius                float64
	crossMethodConfidence float64
}

// New creates a deduplicator from the engine configuration.
func New(cfg *config.Config) *Deduplicator {
	return &Deduplicator{
		radius:                cfg.Dedup.ClusterRadius,
		crossMethodConfidence: cfg.Dedup.CrossMethodConfidence,
	}
}

type cluster struct {
	rep     schematic.MatchCandidate
	members []schematic.MatchCandidate
}

// Dedupe reduces one page's candidates to one candidate per physical label.
// Input may span several tags; clustering never crosses tag boundaries. The
// representative of a cluster is its highest-confidence member; agreement of
// two or more extraction methods lifts confidence toward the cross-method
// ceiling, never above the exact ceiling and never below the best member.
func (d *Deduplicator) Dedupe(candidates []schematic.MatchCandidate) []schematic.MatchCandidate {
	if len(candidates) == 0 {
		return nil
	}

	byKey := make(map[string][]schematic.MatchCandidate)
	var keys []string
	for _, c := range candidates {
		key := c.Tag
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], c)
	}
	sort.Strings(keys)

	var out []schematic.MatchCandidate
	for _, key := range keys {
		out = append(out, d.dedupeTag(byKey[key])...)
	}
	return out
}

func (d *Deduplicator) dedupeTag(candidates []schematic.MatchCandidate) []schematic.MatchCandidate {
	// Highest confidence first so each cluster's first member is its
	// representative; box order breaks ties deterministically.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.BBox.X0 != b.BBox.X0 {
			return a.BBox.X0 < b.BBox.X0
		}
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		return a.Method < b.Method
	})

	var clusters []*cluster
	for _, c := range candidates {
		placed := false
		for _, cl := range clusters {
			if centerDistance(cl.rep.BBox, c.BBox) <= d.radius {
				cl.members = append(cl.members, c)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, &cluster{rep: c, members: []schematic.MatchCandidate{c}})
		}
	}

	out := make([]schematic.MatchCandidate, 0, len(clusters))
	for _, cl := range clusters {
		out = append(out, d.collapse(cl))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BBox.X0 != out[j].BBox.X0 {
			return out[i].BBox.X0 < out[j].BBox.X0
		}
		return out[i].BBox.Y0 < out[j].BBox.Y0
	})
	return out
}

func (d *Deduplicator) collapse(cl *cluster) schematic.MatchCandidate {
	rep := cl.rep
	rep.Hits = len(cl.members)
	rep.Methods = distinctMethods(cl.members)

	if len(rep.Methods) >= 2 && rep.Confidence < d.crossMethodConfidence {
		rep.Confidence = d.crossMethodConfidence
	}
	return rep
}

func distinctMethods(members []schematic.MatchCandidate) []schematic.ExtractionMethod {
	seen := make(map[schematic.ExtractionMethod]struct{})
	var methods []schematic.ExtractionMethod
	for _, m := range members {
		for _, method := range m.Methods {
			if _, ok := seen[method]; !ok {
				seen[method] = struct{}{}
				methods = append(methods, method)
			}
		}
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

func centerDistance(a, b schematic.Rect) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(ax-bx, ay-by)
}
