// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"tagtrace/internal/formatters"
	"tagtrace/internal/schematic"
	"tagtrace/internal/validate"
)

// Formatter implements machine-readable JSON output
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Machine-readable JSON output"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// tagEntry is one resolved tag in the JSON response.
type tagEntry struct {
	Tag        string                        `json:"tag"`
	Primary    schematic.ComponentPosition   `json:"primary"`
	Alternates []schematic.ComponentPosition `json:"alternates,omitempty"`
	Level      string                        `json:"confidence_level"`
}

// response is the top-level JSON document.
type response struct {
	Document      string           `json:"document"`
	PreferredPage int              `json:"preferred_page,omitempty"`
	Tags          []tagEntry       `json:"tags"`
	NotFound      []string         `json:"not_found,omitempty"`
	Report        *validate.Report `json:"validation,omitempty"`
}

func (f *Formatter) Format(output formatters.Output, options formatters.FormatterOptions) (string, error) {
	resp := response{
		Document:      output.DocumentPath,
		PreferredPage: output.PreferredPage,
		Tags:          []tagEntry{},
		NotFound:      formatters.MissingTags(output),
		Report:        output.Report,
	}

	for _, tag := range formatters.SortedTags(output.Positions) {
		primary := output.Positions.Primary[tag]
		level := formatters.ConfidenceLevel(primary.Confidence)
		if options.ConfidenceLevel != nil && !options.ConfidenceLevel[level] {
			continue
		}

		entry := tagEntry{
			Tag:     tag,
			Primary: primary,
			Level:   level,
		}
		if options.Verbose {
			entry.Alternates = output.Positions.Alternates[tag]
		}
		resp.Tags = append(resp.Tags, entry)
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshaling results to JSON: %w", err)
	}

	return string(data), nil
}

func init() {
	formatters.Register(NewFormatter())
}
