// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"tagtrace/internal/config"
	"tagtrace/internal/document"
	"tagtrace/internal/engine"
	"tagtrace/internal/observability"
)

func main() {
	var (
		file       = flag.String("file", "", "Path to the schematic PDF (required)")
		configFile = flag.String("config", "", "Path to configuration file")
		debug      = flag.Bool("debug", false, "Enable debug output")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		fmt.Fprintln(os.Stderr, "Usage: tagtrace-classify -file <document.pdf>")
		os.Exit(1)
	}

	level := observability.ObservabilityOff
	if *debug {
		level = observability.ObservabilityDebug
	}
	observer := observability.NewStandardObserver(level, os.Stderr)

	doc, err := document.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open %s: %v\n", *file, err)
		os.Exit(1)
	}
	defer doc.Close()

	cfg := config.LoadConfigOrDefault(*configFile)
	eng := engine.New(doc, cfg, observer)

	classes, err := eng.ClassifyPages()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: classification failed: %v\n", err)
		os.Exit(1)
	}

	pages := make([]int, 0, len(classes))
	for page := range classes {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	scanned := 0
	for _, page := range pages {
		class := classes[page]
		action := "skip"
		if class.Scan {
			action = "scan"
			scanned++
		}
		fmt.Printf("page %3d  %-18s %-5s weight %.1f  (%s)\n",
			page, class.Role, action, cfg.PageWeight(string(class.Role)), class.Reason)
	}
	fmt.Printf("\n%d of %d pages selected for scanning\n", scanned, len(pages))
}
