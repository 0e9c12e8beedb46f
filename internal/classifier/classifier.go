// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package classifier labels each document page as scannable schematic content
// or a known non-schematic page type. Classification is a pure function of
// page content; verdicts are cached per page for the lifetime of the engine
// instance that owns the open document.
package classifier

import (
	"strings"
	"sync"

	"tagtrace/internal/observability"
	"tagtrace/internal/schematic"
)

// Accessor is the slice of the document contract classification needs.
type Accessor interface {
	PageDimensions(page int) (float64, float64, error)
	ExtractBlocks(page int) ([]schematic.RawTextItem, error)
	ExtractRaw(page int) ([]schematic.RawTextItem, error)
}

// Title-block region, relative to page size: the band near the bottom center
// where drawing frames carry the sheet description.
const (
	titleBlockLeft       = 0.30
	titleBlockRight      = 0.95
	titleBlockTop        = 0.12
	fallbackBandTop      = 0.20
	minUsableRegionChars = 3
)

// roleKeyword maps a lowercase keyword to the page role it identifies.
// Checked in order: the first hit wins, so the more specific skip keywords
// come before the broad block-diagram ones.
type roleKeyword struct {
	keyword string
	role    schematic.PageRole
}

var roleKeywords = []roleKeyword{
	{"cover sheet", schematic.RoleCover},
	{"cover page", schematic.RoleCover},
	{"deckblatt", schematic.RoleCover},
	{"titelblatt", schematic.RoleCover},
	{"table of contents", schematic.RoleTableOfContents},
	{"inhaltsverzeichnis", schematic.RoleTableOfContents},
	{"parts list", schematic.RolePartsList},
	{"bill of materials", schematic.RolePartsList},
	{"artikelstückliste", schematic.RolePartsList},
	{"stückliste", schematic.RolePartsList},
	{"device tag list", schematic.RoleDeviceList},
	{"device list", schematic.RoleDeviceList},
	{"betriebsmittelliste", schematic.RoleDeviceList},
	{"cable overview", schematic.RoleCableTable},
	{"cable table", schematic.RoleCableTable},
	{"cable diagram", schematic.RoleCableTable},
	{"kabelübersicht", schematic.RoleCableTable},
	{"kabelplan", schematic.RoleCableTable},
	{"cross-reference list", schematic.RoleCableTable},
	{"cross reference list", schematic.RoleCableTable},
	{"block diagram", schematic.RoleBlockDiagram},
	{"overview diagram", schematic.RoleBlockDiagram},
	{"übersicht", schematic.RoleBlockDiagram},
}

// skipRoles are positively identified non-schematic page types.
var skipRoles = map[schematic.PageRole]bool{
	schematic.RoleCover:           true,
	schematic.RoleTableOfContents: true,
	schematic.RolePartsList:       true,
	schematic.RoleDeviceList:      true,
	schematic.RoleCableTable:      true,
	schematic.RoleEmpty:           true,
}

// Classifier caches per-page classification verdicts for one open document.
type Classifier struct {
	doc      Accessor
	observer *observability.StandardObserver

	mu    sync.Mutex
	cache map[int]schematic.PageClass
}

// New creates a classifier bound to one open document.
func New(doc Accessor, observer *observability.StandardObserver) *Classifier {
	return &Classifier{
		doc:      doc,
		observer: observer,
		cache:    make(map[int]schematic.PageClass),
	}
}

// Classify returns the verdict for a 1-based page, computing and caching it
// on first use. Concurrent callers for the same page may both compute; the
// verdict is a pure function of page content, so duplicate work is wasted,
// not wrong.
func (c *Classifier) Classify(page int) (schematic.PageClass, error) {
	c.mu.Lock()
	if class, ok := c.cache[page]; ok {
		c.mu.Unlock()
		return class, nil
	}
	c.mu.Unlock()

	finish := c.observer.StartTiming("classifier", "classify", page)

	class, err := c.classify(page)
	if err != nil {
		finish(false, map[string]interface{}{"error": err.Error()})
		return schematic.PageClass{}, err
	}

	c.mu.Lock()
	c.cache[page] = class
	c.mu.Unlock()

	finish(true, map[string]interface{}{"role": string(class.Role), "scan": class.Scan})
	return class, nil
}

func (c *Classifier) classify(page int) (schematic.PageClass, error) {
	width, height, err := c.doc.PageDimensions(page)
	if err != nil {
		return schematic.PageClass{}, err
	}

	items, err := c.doc.ExtractBlocks(page)
	if err != nil {
		return schematic.PageClass{}, err
	}
	if len(items) == 0 {
		// No structured text does not mean no text: pages whose content only
		// the raw pass recovers are schematic content, not EMPTY, so the
		// extractor's raw fallback still reaches them.
		raw, err := c.doc.ExtractRaw(page)
		if err != nil {
			return schematic.PageClass{}, err
		}
		if hasText(raw) {
			return schematic.PageClass{Role: schematic.RoleSchematicDetail, Scan: true, Reason: "raw text only"}, nil
		}
		return schematic.PageClass{Role: schematic.RoleEmpty, Scan: false, Reason: "no extractable text"}, nil
	}

	// Read the title-block region first.
	region := regionText(items, width*titleBlockLeft, width*titleBlockRight, height*titleBlockTop)
	if len(region) < minUsableRegionChars {
		// No usable title block: fall back to scanning the whole bottom band.
		region = regionText(items, 0, width, height*fallbackBandTop)
	}

	if role, ok := matchRole(region); ok {
		if skipRoles[role] {
			return schematic.PageClass{Role: role, Scan: false, Reason: "title block identifies " + strings.ToLower(string(role))}, nil
		}
		return schematic.PageClass{Role: role, Scan: true}, nil
	}

	// Unidentified pages default to scannable schematic content.
	return schematic.PageClass{Role: schematic.RoleSchematicDetail, Scan: true}, nil
}

// hasText reports whether any item carries non-whitespace text.
func hasText(items []schematic.RawTextItem) bool {
	for _, item := range items {
		if strings.TrimSpace(item.Text) != "" {
			return true
		}
	}
	return false
}

// regionText collects lowercase text from items whose center lies inside the
// given bottom band.
func regionText(items []schematic.RawTextItem, x0, x1, yMax float64) string {
	var b strings.Builder
	for _, item := range items {
		cx, cy := item.BBox.Center()
		if cy <= yMax && cx >= x0 && cx <= x1 {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(item.Text)
		}
	}
	return strings.ToLower(b.String())
}

// matchRole returns the first keyword-identified role in the text.
func matchRole(text string) (schematic.PageRole, bool) {
	for _, rk := range roleKeywords {
		if strings.Contains(text, rk.keyword) {
			return rk.role, true
		}
	}
	return "", false
}
