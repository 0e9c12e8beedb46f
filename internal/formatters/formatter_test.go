// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"testing"

	"tagtrace/internal/schematic"
)

type stubFormatter struct {
	name string
}

func (s *stubFormatter) Format(Output, FormatterOptions) (string, error) { return "", nil }
func (s *stubFormatter) Name() string                                    { return s.name }
func (s *stubFormatter) Description() string                             { return "stub" }
func (s *stubFormatter) FileExtension() string                           { return ".stub" }

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubFormatter{name: "beta"})
	registry.Register(&stubFormatter{name: "alpha"})

	if _, ok := registry.Get("alpha"); !ok {
		t.Error("expected alpha formatter to be registered")
	}
	if _, ok := registry.Get("gamma"); ok {
		t.Error("did not expect gamma formatter")
	}

	names := registry.List()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected sorted [alpha beta], got %v", names)
	}
}

func TestConfidenceLevel(t *testing.T) {
	tests := []struct {
		confidence float64
		expected   string
	}{
		{1.0, "high"},
		{0.95, "high"},
		{0.9, "high"},
		{0.85, "medium"},
		{0.7, "medium"},
		{0.6, "medium"},
		{0.59, "low"},
		{0.0, "low"},
	}

	for _, tt := range tests {
		if got := ConfidenceLevel(tt.confidence); got != tt.expected {
			t.Errorf("ConfidenceLevel(%v) = %q, want %q", tt.confidence, got, tt.expected)
		}
	}
}

func TestParseConfidenceLevels(t *testing.T) {
	all := ParseConfidenceLevels("all")
	for _, level := range []string{"high", "medium", "low"} {
		if !all[level] {
			t.Errorf("expected %q enabled for 'all'", level)
		}
	}

	empty := ParseConfidenceLevels("")
	if !empty["low"] {
		t.Error("expected empty string to enable all levels")
	}

	some := ParseConfidenceLevels("high, Medium")
	if !some["high"] || !some["medium"] {
		t.Errorf("expected high and medium enabled, got %v", some)
	}
	if some["low"] {
		t.Error("did not expect low enabled")
	}

	junk := ParseConfidenceLevels("bogus")
	if junk["high"] || junk["medium"] || junk["low"] {
		t.Errorf("expected nothing enabled for unknown level, got %v", junk)
	}
}

func TestFilterByConfidence(t *testing.T) {
	positions := []schematic.ComponentPosition{
		{Tag: "-K1", Confidence: 1.0},
		{Tag: "-K2", Confidence: 0.7},
		{Tag: "-K3", Confidence: 0.3},
	}

	filtered := FilterByConfidence(positions, FormatterOptions{
		ConfidenceLevel: ParseConfidenceLevels("high,low"),
	})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(filtered))
	}
	if filtered[0].Tag != "-K1" || filtered[1].Tag != "-K3" {
		t.Errorf("unexpected survivors: %v", filtered)
	}

	unfiltered := FilterByConfidence(positions, FormatterOptions{})
	if len(unfiltered) != 3 {
		t.Errorf("nil level map should keep everything, got %d", len(unfiltered))
	}
}

func TestMissingTags(t *testing.T) {
	result := schematic.NewPositionResult()
	result.Primary["-K1"] = schematic.ComponentPosition{Tag: "-K1", Page: 1}

	missing := MissingTags(Output{
		Positions: result,
		Requested: []string{"-K1", "-M9", "-A3"},
	})
	if len(missing) != 2 || missing[0] != "-A3" || missing[1] != "-M9" {
		t.Errorf("expected sorted [-A3 -M9], got %v", missing)
	}
}
