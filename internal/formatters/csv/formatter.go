// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"tagtrace/internal/formatters"
	"tagtrace/internal/schematic"
)

// Formatter implements CSV output, one row per resolved position
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "CSV output, one row per resolved position"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(output formatters.Output, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)

	header := []string{"tag", "rank", "page", "center_x", "center_y", "width", "height", "confidence", "level", "kind"}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, tag := range formatters.SortedTags(output.Positions) {
		primary := output.Positions.Primary[tag]
		level := formatters.ConfidenceLevel(primary.Confidence)
		if options.ConfidenceLevel != nil && !options.ConfidenceLevel[level] {
			continue
		}

		rows := []schematic.ComponentPosition{primary}
		if options.Verbose {
			alts := output.Positions.Alternates[tag]
			if len(alts) > 1 {
				rows = append(rows, alts[1:]...)
			}
		}

		for rank, p := range rows {
			record := []string{
				tag,
				strconv.Itoa(rank),
				strconv.Itoa(p.Page),
				strconv.FormatFloat(p.CenterX, 'f', 1, 64),
				strconv.FormatFloat(p.CenterY, 'f', 1, 64),
				strconv.FormatFloat(p.Width, 'f', 1, 64),
				strconv.FormatFloat(p.Height, 'f', 1, 64),
				strconv.FormatFloat(p.Confidence, 'f', 2, 64),
				formatters.ConfidenceLevel(p.Confidence),
				string(p.Kind),
			}
			if err := writer.Write(record); err != nil {
				return "", fmt.Errorf("error writing CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV output: %w", err)
	}

	return builder.String(), nil
}

func init() {
	formatters.Register(NewFormatter())
}
