// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package classifier

import (
	"errors"
	"testing"

	"tagtrace/internal/schematic"
)

// fakeDoc serves canned page content for classification tests. Pages are
// 595x842 points.
type fakeDoc struct {
	pages map[int][]schematic.RawTextItem
	raw   map[int]string
	calls map[int]int
	fail  bool
}

func (f *fakeDoc) PageDimensions(page int) (float64, float64, error) {
	return 595, 842, nil
}

func (f *fakeDoc) ExtractBlocks(page int) ([]schematic.RawTextItem, error) {
	if f.fail {
		return nil, errors.New("broken page")
	}
	if f.calls != nil {
		f.calls[page]++
	}
	return f.pages[page], nil
}

func (f *fakeDoc) ExtractRaw(page int) ([]schematic.RawTextItem, error) {
	if f.fail {
		return nil, errors.New("broken page")
	}
	text, ok := f.raw[page]
	if !ok {
		return nil, nil
	}
	return []schematic.RawTextItem{{
		Text:   text,
		BBox:   schematic.Rect{X0: 0, Y0: 0, X1: 595, Y1: 842},
		Page:   page,
		Method: schematic.MethodRaw,
	}}, nil
}

// titleItem places text inside the title-block region near the bottom center.
func titleItem(text string) schematic.RawTextItem {
	return schematic.RawTextItem{
		Text: text,
		BBox: schematic.Rect{X0: 250, Y0: 20, X1: 450, Y1: 40},
	}
}

// bodyItem places text in the middle of the page, outside every
// classification band.
func bodyItem(text string) schematic.RawTextItem {
	return schematic.RawTextItem{
		Text: text,
		BBox: schematic.Rect{X0: 100, Y0: 400, X1: 200, Y1: 420},
	}
}

func TestClassify_TitleBlockRoles(t *testing.T) {
	cases := []struct {
		name     string
		title    string
		wantRole schematic.PageRole
		wantScan bool
	}{
		{"cover page", "Cover Sheet Project X", schematic.RoleCover, false},
		{"table of contents", "Table of Contents", schematic.RoleTableOfContents, false},
		{"parts list", "Parts List Sheet 4", schematic.RolePartsList, false},
		{"german parts list", "Artikelstückliste", schematic.RolePartsList, false},
		{"device list", "Betriebsmittelliste", schematic.RoleDeviceList, false},
		{"cable table", "Cable Overview", schematic.RoleCableTable, false},
		{"block diagram scans", "Block Diagram Power Distribution", schematic.RoleBlockDiagram, true},
		{"plain schematic", "Main Circuit 400V", schematic.RoleSchematicDetail, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := &fakeDoc{pages: map[int][]schematic.RawTextItem{
				1: {titleItem(tc.title), bodyItem("-K1")},
			}}
			c := New(doc, nil)

			class, err := c.Classify(1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if class.Role != tc.wantRole {
				t.Errorf("expected role %v, got %v", tc.wantRole, class.Role)
			}
			if class.Scan != tc.wantScan {
				t.Errorf("expected scan=%v, got %v", tc.wantScan, class.Scan)
			}
		})
	}
}

func TestClassify_FallbackBandWhenTitleBlockEmpty(t *testing.T) {
	// Keyword sits in the bottom band but left of the title-block region.
	doc := &fakeDoc{pages: map[int][]schematic.RawTextItem{
		1: {
			{Text: "Inhaltsverzeichnis", BBox: schematic.Rect{X0: 10, Y0: 50, X1: 120, Y1: 70}},
			bodyItem("1.1 Overview of sheets"),
		},
	}}
	c := New(doc, nil)

	class, err := c.Classify(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class.Role != schematic.RoleTableOfContents {
		t.Errorf("expected fallback band to identify the TOC, got %v", class.Role)
	}
	if class.Scan {
		t.Error("TOC pages must not be scanned")
	}
}

func TestClassify_EmptyPageSkipped(t *testing.T) {
	doc := &fakeDoc{pages: map[int][]schematic.RawTextItem{}}
	c := New(doc, nil)

	class, err := c.Classify(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class.Role != schematic.RoleEmpty || class.Scan {
		t.Errorf("expected skipped EMPTY page, got %+v", class)
	}
}

func TestClassify_RawOnlyPageIsScanned(t *testing.T) {
	// Structured extraction yields nothing, but the raw pass recovers text:
	// the page must classify as scannable schematic content, not EMPTY.
	doc := &fakeDoc{
		pages: map[int][]schematic.RawTextItem{},
		raw:   map[int]string{1: "-K1 Relay"},
	}
	c := New(doc, nil)

	class, err := c.Classify(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class.Role != schematic.RoleSchematicDetail {
		t.Errorf("expected SCHEMATIC_DETAIL for a raw-only page, got %v", class.Role)
	}
	if !class.Scan {
		t.Error("raw-only pages must be scanned")
	}
}

func TestClassify_WhitespaceRawStillEmpty(t *testing.T) {
	doc := &fakeDoc{
		pages: map[int][]schematic.RawTextItem{},
		raw:   map[int]string{1: "   \n\t "},
	}
	c := New(doc, nil)

	class, err := c.Classify(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class.Role != schematic.RoleEmpty || class.Scan {
		t.Errorf("expected skipped EMPTY page for whitespace-only raw text, got %+v", class)
	}
}

func TestClassify_OptimisticDefault(t *testing.T) {
	// Unrecognized title text must not cause a skip.
	doc := &fakeDoc{pages: map[int][]schematic.RawTextItem{
		1: {titleItem("=A1+DG Drive Cabinet"), bodyItem("-K1")},
	}}
	c := New(doc, nil)

	class, _ := c.Classify(1)
	if !class.Scan {
		t.Error("pages not positively identified as non-schematic must be scanned")
	}
	if class.Role != schematic.RoleSchematicDetail {
		t.Errorf("expected SCHEMATIC_DETAIL default, got %v", class.Role)
	}
}

func TestClassify_CachesVerdict(t *testing.T) {
	doc := &fakeDoc{
		pages: map[int][]schematic.RawTextItem{1: {titleItem("Main Circuit")}},
		calls: map[int]int{},
	}
	c := New(doc, nil)

	if _, err := c.Classify(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Classify(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.calls[1] != 1 {
		t.Errorf("expected one extraction for two classifications, got %d", doc.calls[1])
	}
}

func TestClassify_PropagatesAccessError(t *testing.T) {
	c := New(&fakeDoc{fail: true}, nil)
	if _, err := c.Classify(1); err == nil {
		t.Error("document access failures must propagate")
	}
}
