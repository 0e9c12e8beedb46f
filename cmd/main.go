// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"tagtrace/internal/config"
	"tagtrace/internal/document"
	"tagtrace/internal/engine"
	"tagtrace/internal/observability"
	"tagtrace/internal/validate"
	"tagtrace/internal/version"

	"tagtrace/internal/formatters"
	_ "tagtrace/internal/formatters/csv"
	_ "tagtrace/internal/formatters/json"
	_ "tagtrace/internal/formatters/text"

	"golang.org/x/term"
)

// configFlags holds command line flag values
type configFlags struct {
	file          string
	tags          string
	tagsFile      string
	preferredPage int
	outputFormat  string
	confidence    string
	configFile    string
	groundTruth   string
	outputFile    string
	verbose       bool
	debug         bool
	noColor       bool
	showVersion   bool
	listFormats   bool
}

func parseFlags() *configFlags {
	flags := &configFlags{}

	flag.StringVar(&flags.file, "file", "", "Path to the schematic PDF (required)")
	flag.StringVar(&flags.tags, "tags", "", "Comma-separated device tags to locate (e.g. '-K1,+DG-M1')")
	flag.StringVar(&flags.tagsFile, "tags-file", "", "File with one device tag per line")
	flag.IntVar(&flags.preferredPage, "preferred-page", 0, "Page the caller is viewing; boosts hits there (0 = no preference)")
	flag.StringVar(&flags.outputFormat, "format", "", "Output format: text, json, csv")
	flag.StringVar(&flags.confidence, "confidence", "", "Confidence levels to show: high,medium,low or 'all'")
	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file")
	flag.StringVar(&flags.groundTruth, "validate", "", "Ground truth YAML file to verify results against")
	flag.StringVar(&flags.outputFile, "output", "", "Write output to file instead of stdout")
	flag.BoolVar(&flags.verbose, "verbose", false, "Show alternate positions and details")
	flag.BoolVar(&flags.debug, "debug", false, "Enable debug output")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.showVersion, "version", false, "Show version information")
	flag.BoolVar(&flags.listFormats, "list-formats", false, "List available output formats")
	flag.Parse()

	return flags
}

// resolveOptions merges config file defaults with command line flags.
// Flags win when set.
func resolveOptions(cfg *config.Config, flags *configFlags) (format string, options formatters.FormatterOptions) {
	format = "text"
	if cfg.Defaults.Format != "" {
		format = cfg.Defaults.Format
	}
	if flags.outputFormat != "" {
		format = flags.outputFormat
	}

	levels := cfg.Defaults.ConfidenceLevels
	if flags.confidence != "" {
		levels = flags.confidence
	}

	options = formatters.FormatterOptions{
		ConfidenceLevel: formatters.ParseConfidenceLevels(levels),
		Verbose:         flags.verbose || cfg.Defaults.Verbose,
		NoColor:         flags.noColor || cfg.Defaults.NoColor || !isTerminal(os.Stdout) || flags.outputFile != "",
	}
	return format, options
}

// collectTags merges the -tags list with the contents of -tags-file.
func collectTags(flags *configFlags) ([]string, error) {
	var tags []string

	for _, tag := range strings.Split(flags.tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	if flags.tagsFile != "" {
		data, err := os.ReadFile(flags.tagsFile)
		if err != nil {
			return nil, fmt.Errorf("error reading tags file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
				tags = append(tags, line)
			}
		}
	}

	return tags, nil
}

func observerLevel(debug bool) observability.ObservabilityLevel {
	if debug {
		return observability.ObservabilityDebug
	}
	return observability.ObservabilityOff
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Println(version.Info())
		return
	}

	if flags.listFormats {
		for _, name := range formatters.List() {
			f, _ := formatters.Get(name)
			fmt.Printf("%-6s %s\n", name, f.Description())
		}
		return
	}

	if flags.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfigOrDefault(flags.configFile)
	format, options := resolveOptions(cfg, flags)

	formatter, ok := formatters.Get(format)
	if !ok {
		fatalf("%v", formatters.ErrUnknownFormat(format))
	}

	tags, err := collectTags(flags)
	if err != nil {
		fatalf("%v", err)
	}

	observer := observability.NewStandardObserver(observerLevel(flags.debug || cfg.Defaults.Debug), os.Stderr)

	doc, err := document.Open(flags.file)
	if err != nil {
		fatalf("cannot open %s: %v", flags.file, err)
	}
	defer doc.Close()

	eng := engine.New(doc, cfg, observer)

	result, err := eng.FindPositions(tags, flags.preferredPage)
	if err != nil {
		fatalf("resolution failed: %v", err)
	}

	output := formatters.Output{
		DocumentPath:  flags.file,
		PreferredPage: flags.preferredPage,
		Positions:     result.Positions,
		Requested:     tags,
	}

	if flags.groundTruth != "" {
		truth, err := validate.LoadGroundTruth(flags.groundTruth)
		if err != nil {
			fatalf("%v", err)
		}
		output.Report = validate.Validate(result.Positions, truth)
	}

	rendered, err := formatter.Format(output, options)
	if err != nil {
		fatalf("formatting failed: %v", err)
	}

	if flags.outputFile != "" {
		if err := os.WriteFile(flags.outputFile, []byte(rendered), 0o600); err != nil {
			fatalf("cannot write %s: %v", flags.outputFile, err)
		}
		return
	}
	fmt.Print(rendered)
	if !strings.HasSuffix(rendered, "\n") {
		fmt.Println()
	}
}
