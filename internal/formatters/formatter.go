// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"

	"tagtrace/internal/schematic"
	"tagtrace/internal/validate"
)

// Output bundles everything a formatter may render for one run.
type Output struct {
	DocumentPath  string
	PreferredPage int
	Positions     *schematic.PositionResult
	// Report is non-nil when the caller supplied ground truth.
	Report *validate.Report
	// Requested is the tag set the caller asked for, used to list not-found
	// tags explicitly.
	Requested []string
}

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	ConfidenceLevel map[string]bool // Which confidence levels to display
	Verbose         bool            // Whether to display alternates and details
	NoColor         bool            // Whether to disable colored output
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the output according to the formatter's specific format
	Format(output Output, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format
	FileExtension() string
}

// ConfidenceLevel buckets a confidence value into high/medium/low.
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "high"
	case confidence >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// FilterByConfidence drops positions whose confidence bucket is disabled.
func FilterByConfidence(positions []schematic.ComponentPosition, options FormatterOptions) []schematic.ComponentPosition {
	if options.ConfidenceLevel == nil {
		return positions
	}
	var filtered []schematic.ComponentPosition
	for _, p := range positions {
		if options.ConfidenceLevel[ConfidenceLevel(p.Confidence)] {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// SortedTags returns the primary map's tags in stable order.
func SortedTags(result *schematic.PositionResult) []string {
	tags := make([]string, 0, len(result.Primary))
	for tag := range result.Primary {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// MissingTags lists requested tags that resolved to nothing, sorted.
func MissingTags(output Output) []string {
	var missing []string
	for _, tag := range output.Requested {
		if _, ok := output.Positions.Primary[tag]; !ok {
			missing = append(missing, tag)
		}
	}
	sort.Strings(missing)
	return missing
}

// ParseConfidenceLevels converts a comma-separated confidence level string
// into a map. "all" or empty string enables every level.
func ParseConfidenceLevels(levels string) map[string]bool {
	result := map[string]bool{
		"high":   false,
		"medium": false,
		"low":    false,
	}

	if levels == "all" || levels == "" {
		for key := range result {
			result[key] = true
		}
		return result
	}

	for _, level := range strings.Split(levels, ",") {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "high", "medium", "low":
			result[strings.ToLower(strings.TrimSpace(level))] = true
		}
	}

	return result
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get retrieves a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List returns the default registry's formatter names
func List() []string {
	return DefaultRegistry.List()
}

// ErrUnknownFormat builds the error for an unregistered format name.
func ErrUnknownFormat(name string) error {
	return fmt.Errorf("unknown output format %q (available: %s)", name, strings.Join(List(), ", "))
}
