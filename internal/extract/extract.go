// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract normalizes document accessor output into the read-only
// RawTextItem stream the matcher consumes. Two independent structured
// extraction methods run per page; a raw plain-text pass is the last-resort
// fallback when both come back empty.
package extract

import (
	"strings"

	"tagtrace/internal/observability"
	"tagtrace/internal/schematic"
)

// Accessor is the slice of the document contract extraction needs.
type Accessor interface {
	ExtractSpans(page int) ([]schematic.RawTextItem, error)
	ExtractBlocks(page int) ([]schematic.RawTextItem, error)
	ExtractRaw(page int) ([]schematic.RawTextItem, error)
}

// Extractor produces normalized text items for one open document. All
// methods are read-only and safe to call repeatedly in any order.
type Extractor struct {
	doc      Accessor
	observer *observability.StandardObserver
}

// New creates an extractor bound to one open document.
func New(doc Accessor, observer *observability.StandardObserver) *Extractor {
	return &Extractor{doc: doc, observer: observer}
}

// Extract returns the normalized items of a 1-based page across all
// applicable extraction methods. Span and block items are both returned so
// the deduplicator can exploit cross-method agreement; the raw fallback runs
// only when both structured methods yield nothing.
func (e *Extractor) Extract(page int) ([]schematic.RawTextItem, error) {
	finish := e.observer.StartTiming("extract", "extract_page", page)

	spans, err := e.doc.ExtractSpans(page)
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	blocks, err := e.doc.ExtractBlocks(page)
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	items := normalize(spans)
	items = append(items, normalize(blocks)...)

	if len(items) == 0 {
		// Last resort, never silently skipped.
		raw, err := e.doc.ExtractRaw(page)
		if err != nil {
			finish(false, map[string]interface{}{"error": err.Error()})
			return nil, err
		}
		items = splitRaw(raw)
	}

	finish(true, map[string]interface{}{"item_count": len(items)})
	return items, nil
}

// normalize trims and whitespace-collapses item text, dropping items that
// end up empty.
func normalize(items []schematic.RawTextItem) []schematic.RawTextItem {
	var out []schematic.RawTextItem
	for _, item := range items {
		text := strings.Join(strings.Fields(item.Text), " ")
		if text == "" {
			continue
		}
		item.Text = text
		out = append(out, item)
	}
	return out
}

// splitRaw breaks page-sized raw items into one item per whitespace-separated
// token. The tokens inherit the page-sized box: raw extraction carries no
// usable position, only presence.
func splitRaw(items []schematic.RawTextItem) []schematic.RawTextItem {
	var out []schematic.RawTextItem
	for _, item := range items {
		for _, token := range strings.Fields(item.Text) {
			out = append(out, schematic.RawTextItem{
				Text:   token,
				BBox:   item.BBox,
				Page:   item.Page,
				Method: schematic.MethodRaw,
			})
		}
	}
	return out
}
