// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel runs the per-page pipeline on a fixed worker pool.
// Per-page work is embarrassingly parallel: each job reads only its own
// page's content plus the shared immutable tag index, so workers never
// contend on anything but the document handle mutex.
package parallel

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"tagtrace/internal/observability"
	"tagtrace/internal/schematic"
)

// maxWorkers caps the pool to avoid resource exhaustion on large machines.
const maxWorkers = 8

// PageResult carries one page's pipeline output back to the reduction.
type PageResult struct {
	Page       int
	Class      schematic.PageClass
	Candidates []schematic.MatchCandidate
	Err        error
	Duration   time.Duration
}

// ProcessFunc runs the classify/extract/match/dedup pipeline for one page.
type ProcessFunc func(ctx context.Context, page int) *PageResult

// ProcessingStats tracks pool statistics for one run.
type ProcessingStats struct {
	TotalPages      int           `json:"total_pages"`
	ScannedPages    int           `json:"scanned_pages"`
	SkippedPages    int           `json:"skipped_pages"`
	TotalCandidates int           `json:"total_candidates"`
	TotalDuration   time.Duration `json:"total_duration_ms"`
	WorkerCount     int           `json:"worker_count"`
}

// Pool is a fixed-size worker pool for page jobs.
type Pool struct {
	workers  int
	observer *observability.StandardObserver
}

// NewPool creates a pool with the given worker count; workers <= 0 selects
// NumCPU capped at maxWorkers.
func NewPool(workers int, observer *observability.StandardObserver) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > maxWorkers {
			workers = maxWorkers
		}
	}
	return &Pool{workers: workers, observer: observer}
}

// Process runs fn for every page and returns all results ordered by page
// index. It blocks until every page job has finished: the cross-page
// reduction needs the full candidate set before it can rank anything.
func (p *Pool) Process(ctx context.Context, pages []int, fn ProcessFunc) ([]*PageResult, *ProcessingStats) {
	start := time.Now()

	jobs := make(chan int, len(pages))
	results := make(chan *PageResult, len(pages))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				select {
				case <-ctx.Done():
					results <- &PageResult{Page: page, Err: ctx.Err()}
					continue
				default:
				}
				results <- fn(ctx, page)
			}
		}()
	}

	for _, page := range pages {
		jobs <- page
	}
	close(jobs)

	wg.Wait()
	close(results)

	collected := make([]*PageResult, 0, len(pages))
	for result := range results {
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Page < collected[j].Page })

	stats := &ProcessingStats{
		TotalPages:    len(pages),
		TotalDuration: time.Since(start),
		WorkerCount:   p.workers,
	}
	for _, result := range collected {
		if result.Err != nil {
			continue
		}
		if result.Class.Scan {
			stats.ScannedPages++
		} else {
			stats.SkippedPages++
		}
		stats.TotalCandidates += len(result.Candidates)
	}

	p.observer.LogOperation(observability.StandardObservabilityData{
		Component:  "parallel",
		Operation:  "process_pages",
		Success:    true,
		DurationMs: stats.TotalDuration.Milliseconds(),
		MatchCount: stats.TotalCandidates,
		Metadata: map[string]interface{}{
			"worker_count":  stats.WorkerCount,
			"scanned_pages": stats.ScannedPages,
			"skipped_pages": stats.SkippedPages,
		},
	})

	return collected, stats
}
