// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"tagtrace/internal/formatters"
	"tagtrace/internal/schematic"
)

// Formatter implements human-readable text output with colors
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(output formatters.Output, options formatters.FormatterOptions) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder

	tags := formatters.SortedTags(output.Positions)
	if len(tags) == 0 {
		builder.WriteString("No tag positions found.\n")
	}

	for _, tag := range tags {
		primary := output.Positions.Primary[tag]
		if !f.levelEnabled(primary, options) {
			continue
		}

		f.colors["white"].Fprintf(&builder, "%s", tag)
		fmt.Fprintf(&builder, "  page %d  (%.1f, %.1f)  ", primary.Page, primary.CenterX, primary.CenterY)
		f.writeConfidence(&builder, primary)
		fmt.Fprintf(&builder, "  %s\n", primary.Kind)

		if options.Verbose {
			for i, alt := range output.Positions.Alternates[tag] {
				if i == 0 {
					continue // the primary itself
				}
				fmt.Fprintf(&builder, "    alternate: page %d  (%.1f, %.1f)  %s %s\n",
					alt.Page, alt.CenterX, alt.CenterY, formatters.ConfidenceLevel(alt.Confidence), alt.Kind)
			}
		}
	}

	if missing := formatters.MissingTags(output); len(missing) > 0 {
		f.colors["yellow"].Fprintf(&builder, "Not found: %s\n", strings.Join(missing, ", "))
	}

	if output.Report != nil {
		f.writeReport(&builder, output)
	}

	return builder.String(), nil
}

func (f *Formatter) levelEnabled(p schematic.ComponentPosition, options formatters.FormatterOptions) bool {
	if options.ConfidenceLevel == nil {
		return true
	}
	return options.ConfidenceLevel[formatters.ConfidenceLevel(p.Confidence)]
}

func (f *Formatter) writeConfidence(builder *strings.Builder, p schematic.ComponentPosition) {
	level := formatters.ConfidenceLevel(p.Confidence)
	c := f.colors["red"]
	switch level {
	case "high":
		c = f.colors["green"]
	case "medium":
		c = f.colors["yellow"]
	}
	c.Fprintf(builder, "%s (%.2f)", level, p.Confidence)
}

func (f *Formatter) writeReport(builder *strings.Builder, output formatters.Output) {
	report := output.Report

	builder.WriteString("\nValidation:\n")
	for _, tr := range report.Results {
		line := fmt.Sprintf("  %-14s %s", tr.Outcome, tr.Tag)
		if tr.Actual != nil {
			line += fmt.Sprintf("  got page %d (%.1f, %.1f)", tr.Actual.Page, tr.Actual.CenterX, tr.Actual.CenterY)
		}
		switch tr.Outcome {
		case "MATCH":
			f.colors["green"].Fprintln(builder, line)
		case "NOT_FOUND":
			f.colors["yellow"].Fprintln(builder, line)
		default:
			f.colors["red"].Fprintln(builder, line)
		}
	}
	fmt.Fprintf(builder, "  precision %.3f  recall %.3f  f1 %.3f\n", report.Precision, report.Recall, report.F1)
}

func init() {
	formatters.Register(NewFormatter())
}
