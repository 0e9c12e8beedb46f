// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package validate compares a resolution result against hand-checked ground
// truth. This is what makes the engine's behavior falsifiable rather than
// anecdotal: every ground-truth tag is classified as MATCH, NOT_FOUND,
// WRONG_PAGE, or WRONG_POSITION, and the report aggregates precision, recall
// and F1 over the whole set.
package validate

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tagtrace/internal/schematic"
)

// Outcome classifies one ground-truth tag's verification result.
type Outcome string

const (
	OutcomeMatch         Outcome = "MATCH"
	OutcomeNotFound      Outcome = "NOT_FOUND"
	OutcomeWrongPage     Outcome = "WRONG_PAGE"
	OutcomeWrongPosition Outcome = "WRONG_POSITION"
)

// defaultTolerance is the acceptance radius, in document units, for records
// that do not set one.
const defaultTolerance = 25.0

// GroundTruth is one hand-checked tag location.
type GroundTruth struct {
	Tag       string  `yaml:"tag"`
	Page      int     `yaml:"page"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Tolerance float64 `yaml:"tolerance"`
}

// TagResult is the verification verdict for one ground-truth record.
type TagResult struct {
	Tag      string                       `json:"tag"`
	Outcome  Outcome                      `json:"outcome"`
	Expected GroundTruth                  `json:"expected"`
	Actual   *schematic.ComponentPosition `json:"actual,omitempty"`
	Distance float64                      `json:"distance,omitempty"`
}

// Report aggregates verification over one ground-truth set.
type Report struct {
	Results []TagResult `json:"results"`

	Matched       int `json:"matched"`
	NotFound      int `json:"not_found"`
	WrongPage     int `json:"wrong_page"`
	WrongPosition int `json:"wrong_position"`

	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// LoadGroundTruth reads a yaml list of ground-truth records.
func LoadGroundTruth(path string) ([]GroundTruth, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("error reading ground truth file: %w", err)
	}

	var records []GroundTruth
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error parsing ground truth file: %w", err)
	}

	for i, r := range records {
		if r.Tag == "" {
			return nil, fmt.Errorf("ground truth record %d has no tag", i)
		}
		if r.Page < 1 {
			return nil, fmt.Errorf("ground truth record %d (%s) has invalid page %d", i, r.Tag, r.Page)
		}
	}
	return records, nil
}

// Validate classifies every ground-truth record against the resolved
// primary positions and aggregates the metrics.
func Validate(result *schematic.PositionResult, truth []GroundTruth) *Report {
	report := &Report{}

	for _, record := range truth {
		tr := TagResult{Tag: record.Tag, Expected: record}

		primary, found := result.Primary[record.Tag]
		switch {
		case !found:
			tr.Outcome = OutcomeNotFound
			report.NotFound++
		case primary.Page != record.Page:
			tr.Outcome = OutcomeWrongPage
			tr.Actual = &primary
			report.WrongPage++
		default:
			tolerance := record.Tolerance
			if tolerance <= 0 {
				tolerance = defaultTolerance
			}
			tr.Actual = &primary
			tr.Distance = math.Hypot(primary.CenterX-record.X, primary.CenterY-record.Y)
			if tr.Distance <= tolerance {
				tr.Outcome = OutcomeMatch
				report.Matched++
			} else {
				tr.Outcome = OutcomeWrongPosition
				report.WrongPosition++
			}
		}

		report.Results = append(report.Results, tr)
	}

	// Precision over positions the engine committed to; recall over the
	// whole ground-truth set.
	found := report.Matched + report.WrongPage + report.WrongPosition
	if found > 0 {
		report.Precision = float64(report.Matched) / float64(found)
	}
	if len(truth) > 0 {
		report.Recall = float64(report.Matched) / float64(len(truth))
	}
	if report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}

	return report
}
