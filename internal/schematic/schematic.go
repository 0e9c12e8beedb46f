// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package schematic

import "fmt"

// Rect is an axis-aligned bounding box in page-local document units.
// Coordinates follow the PDF convention: y grows from the bottom of the page.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Center returns the geometric center of the rectangle.
func (r Rect) Center() (float64, float64) {
	return (r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	u := r
	if other.X0 < u.X0 {
		u.X0 = other.X0
	}
	if other.Y0 < u.Y0 {
		u.Y0 = other.Y0
	}
	if other.X1 > u.X1 {
		u.X1 = other.X1
	}
	if other.Y1 > u.Y1 {
		u.Y1 = other.Y1
	}
	return u
}

// ExtractionMethod identifies which extraction pass produced a text item.
type ExtractionMethod string

const (
	// MethodSpan is fine-grained token extraction with tight boxes.
	MethodSpan ExtractionMethod = "SPAN"
	// MethodBlock is line-level extraction, robust to span-splitting artifacts.
	MethodBlock ExtractionMethod = "BLOCK"
	// MethodRaw is the last-resort plain-text fallback with page-sized boxes.
	MethodRaw ExtractionMethod = "RAW"
)

// RawTextItem is one normalized text fragment recovered from a page.
// Items are read-only once produced by the extractor.
type RawTextItem struct {
	Text   string           `json:"text"`
	BBox   Rect             `json:"bbox"`
	Page   int              `json:"page"`
	Method ExtractionMethod `json:"method"`
}

// MatchKind classifies how an extracted text fragment was matched to a tag.
type MatchKind string

const (
	MatchExact   MatchKind = "EXACT"
	MatchVariant MatchKind = "VARIANT"
	MatchFuzzy   MatchKind = "FUZZY"
	// MatchCrossReference marks a TAG:PAGE/COORD annotation. Items of this
	// kind never become candidates; the kind exists so rejection is an
	// explicit classification rather than a silent skip.
	MatchCrossReference MatchKind = "CROSS_REFERENCE"
)

// MatchCandidate is one plausible on-page occurrence of a device tag.
type MatchCandidate struct {
	Tag        string           `json:"tag"`
	Page       int              `json:"page"`
	BBox       Rect             `json:"bbox"`
	Method     ExtractionMethod `json:"method"`
	Kind       MatchKind        `json:"kind"`
	Confidence float64          `json:"confidence"`

	// Hits counts the raw candidates absorbed into this one by spatial
	// deduplication. Raw matcher output always has Hits == 1.
	Hits int `json:"hits"`

	// Methods lists the distinct extraction methods that agreed on this
	// position. Populated by deduplication.
	Methods []ExtractionMethod `json:"methods,omitempty"`
}

// PageRole describes what kind of drawing a page holds. Roles double as
// page-weight keys during disambiguation.
type PageRole string

const (
	RoleSchematicDetail PageRole = "SCHEMATIC_DETAIL"
	RoleBlockDiagram    PageRole = "BLOCK_DIAGRAM"
	RoleCover           PageRole = "COVER"
	RoleTableOfContents PageRole = "TABLE_OF_CONTENTS"
	RolePartsList       PageRole = "PARTS_LIST"
	RoleDeviceList      PageRole = "DEVICE_LIST"
	RoleCableTable      PageRole = "CABLE_TABLE"
	RoleEmpty           PageRole = "EMPTY"
)

// PageClass is the classification verdict for one page.
type PageClass struct {
	Role PageRole `json:"role"`
	// Scan reports whether the page should be searched for tags.
	Scan bool `json:"scan"`
	// Reason explains a skip verdict; empty for scanned pages.
	Reason string `json:"reason,omitempty"`
}

// ComponentPosition is the resolved, screen-agnostic location of one tag
// occurrence.
type ComponentPosition struct {
	Tag        string    `json:"tag"`
	Page       int       `json:"page"`
	CenterX    float64   `json:"center_x"`
	CenterY    float64   `json:"center_y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Confidence float64   `json:"confidence"`
	Kind       MatchKind `json:"kind"`
}

// PositionResult is the outcome of one position resolution call.
// Every primary entry is also the first element of its alternates list; a tag
// with no on-page occurrence is simply absent from both maps.
type PositionResult struct {
	Primary    map[string]ComponentPosition   `json:"primary"`
	Alternates map[string][]ComponentPosition `json:"alternates"`
}

// NewPositionResult returns an empty result with both maps allocated.
func NewPositionResult() *PositionResult {
	return &PositionResult{
		Primary:    make(map[string]ComponentPosition),
		Alternates: make(map[string][]ComponentPosition),
	}
}

func (p ComponentPosition) String() string {
	return fmt.Sprintf("%s@p%d(%.1f,%.1f)", p.Tag, p.Page, p.CenterX, p.CenterY)
}
