// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"testing"

	"tagtrace/internal/formatters"
	"tagtrace/internal/schematic"
)

func sampleOutput() formatters.Output {
	result := schematic.NewPositionResult()
	primary := schematic.ComponentPosition{
		Tag: "-K1", Page: 3, CenterX: 120.5, CenterY: 400.0,
		Confidence: 1.0, Kind: schematic.MatchExact,
	}
	alternate := schematic.ComponentPosition{
		Tag: "-K1", Page: 7, CenterX: 80.0, CenterY: 90.0,
		Confidence: 0.85, Kind: schematic.MatchVariant,
	}
	result.Primary["-K1"] = primary
	result.Alternates["-K1"] = []schematic.ComponentPosition{primary, alternate}

	return formatters.Output{
		DocumentPath: "plant.pdf",
		Positions:    result,
		Requested:    []string{"-K1", "-M9"},
	}
}

func TestFormatProducesValidJSON(t *testing.T) {
	formatter := NewFormatter()
	out, err := formatter.Format(sampleOutput(), formatters.FormatterOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if resp.Document != "plant.pdf" {
		t.Errorf("expected document plant.pdf, got %q", resp.Document)
	}
	if len(resp.Tags) != 1 || resp.Tags[0].Tag != "-K1" {
		t.Fatalf("expected one entry for -K1, got %v", resp.Tags)
	}
	if resp.Tags[0].Primary.Page != 3 {
		t.Errorf("expected primary on page 3, got %d", resp.Tags[0].Primary.Page)
	}
	if resp.Tags[0].Level != "high" {
		t.Errorf("expected high confidence level, got %q", resp.Tags[0].Level)
	}
	if len(resp.Tags[0].Alternates) != 0 {
		t.Error("alternates should be omitted without verbose")
	}
	if len(resp.NotFound) != 1 || resp.NotFound[0] != "-M9" {
		t.Errorf("expected -M9 in not_found, got %v", resp.NotFound)
	}
}

func TestFormatVerboseIncludesAlternates(t *testing.T) {
	formatter := NewFormatter()
	out, err := formatter.Format(sampleOutput(), formatters.FormatterOptions{Verbose: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(resp.Tags[0].Alternates) != 2 {
		t.Fatalf("expected 2 alternates, got %d", len(resp.Tags[0].Alternates))
	}
	if resp.Tags[0].Alternates[1].Page != 7 {
		t.Errorf("expected second alternate on page 7, got %d", resp.Tags[0].Alternates[1].Page)
	}
}

func TestFormatConfidenceFilter(t *testing.T) {
	formatter := NewFormatter()
	out, err := formatter.Format(sampleOutput(), formatters.FormatterOptions{
		ConfidenceLevel: formatters.ParseConfidenceLevels("low"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(resp.Tags) != 0 {
		t.Errorf("expected the high-confidence entry filtered out, got %v", resp.Tags)
	}
}
