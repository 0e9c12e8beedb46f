// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"testing"

	"github.com/ledongthuc/pdf"

	"tagtrace/internal/schematic"
)

// glyphs builds an X-sorted glyph row from (text, x) pairs with uniform
// metrics: 6pt advance per run, 10pt font.
func glyphs(runs ...struct {
	S string
	X float64
}) []pdf.Text {
	var row []pdf.Text
	for _, r := range runs {
		row = append(row, pdf.Text{S: r.S, X: r.X, Y: 100, W: 6, FontSize: 10})
	}
	return row
}

type run = struct {
	S string
	X float64
}

func TestGroupRowTokens_SplitsOnGap(t *testing.T) {
	// "-K" and "1" are adjacent (gap 0), "Relay" starts 30pt later
	row := glyphs(run{"-K", 10}, run{"1", 16}, run{"Relay", 52})

	items := groupRowTokens(row, 3)
	if len(items) != 2 {
		t.Fatalf("expected 2 tokens, got %d: %+v", len(items), items)
	}
	if items[0].Text != "-K1" {
		t.Errorf("expected first token -K1, got %q", items[0].Text)
	}
	if items[1].Text != "Relay" {
		t.Errorf("expected second token Relay, got %q", items[1].Text)
	}
	for _, item := range items {
		if item.Method != schematic.MethodSpan {
			t.Errorf("expected SPAN method, got %v", item.Method)
		}
		if item.Page != 3 {
			t.Errorf("expected page 3, got %d", item.Page)
		}
	}
}

func TestGroupRowTokens_TokenBoxCoversAllGlyphs(t *testing.T) {
	row := glyphs(run{"-K", 10}, run{"1", 16})

	items := groupRowTokens(row, 1)
	if len(items) != 1 {
		t.Fatalf("expected 1 token, got %d", len(items))
	}
	box := items[0].BBox
	if box.X0 != 10 || box.X1 != 22 {
		t.Errorf("expected box x 10..22, got %v..%v", box.X0, box.X1)
	}
	if box.Height() != 10 {
		t.Errorf("expected 10pt token height, got %v", box.Height())
	}
}

func TestJoinRow_SingleLineItem(t *testing.T) {
	row := glyphs(run{"-K1", 10}, run{"Relay", 52}, run{"24V", 120})

	item, ok := joinRow(row, 2)
	if !ok {
		t.Fatal("expected a line item")
	}
	if item.Text != "-K1 Relay 24V" {
		t.Errorf("expected joined line, got %q", item.Text)
	}
	if item.Method != schematic.MethodBlock {
		t.Errorf("expected BLOCK method, got %v", item.Method)
	}
	if item.BBox.X0 != 10 || item.BBox.X1 != 126 {
		t.Errorf("expected line box x 10..126, got %v..%v", item.BBox.X0, item.BBox.X1)
	}
}

func TestJoinRow_EmptyRow(t *testing.T) {
	if _, ok := joinRow(glyphs(run{"   ", 10}), 1); ok {
		t.Error("whitespace-only rows must not produce items")
	}
}

func TestGapThreshold_DefaultFontSize(t *testing.T) {
	if gapThreshold(0) != gapThreshold(defaultFontSize) {
		t.Error("zero font size must fall back to the default")
	}
}
