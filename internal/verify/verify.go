// Package verify recomputes the statistics of each block from its raw samples
// and reports values that disagree with what the harness logged.
package verify

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"freqlog/internal/logparse"

	"github.com/montanaflynn/stats"
)

// DefaultTolerance is the relative difference allowed between a logged and a
// recomputed statistic. The harness prints six significant digits.
const DefaultTolerance = 1e-3

// Issue is one logged statistic that does not match its samples.
type Issue struct {
	Line      int // line number of the block's announcement
	Section   int
	Mode      string
	Series    string
	Statistic string
	Logged    float64
	Computed  float64
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: section %d %s %s %s logged %g, computed %g", i.Line, i.Section, i.Mode, i.Series, i.Statistic, i.Logged, i.Computed)
}

type statFunc func(values []float64) (float64, error)

var statFuncs = map[string]statFunc{
	"Average": func(values []float64) (float64, error) { return stats.Mean(values) },
	"Stdev":   func(values []float64) (float64, error) { return stats.StandardDeviationSample(values) },
	"Max":     func(values []float64) (float64, error) { return stats.Max(values) },
	"Min":     func(values []float64) (float64, error) { return stats.Min(values) },
	"Median":  harnessMedian,
}

// harnessMedian is the element at the middle index of the samples in the order
// they were collected. The harness does not sort before picking it.
func harnessMedian(values []float64) (float64, error) {
	if len(values) == 0 {
		return math.NaN(), stats.ErrEmptyInput
	}
	return values[len(values)/2], nil
}

// ParseSamples splits the raw text of a sample list into numbers. Tokens that
// are not numbers are skipped.
func ParseSamples(text string) []float64 {
	fields := strings.Fields(text)
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseFloat(strings.Trim(field, ","), 64)
		if err != nil {
			slog.Debug("skipping sample", slog.String("token", field))
			continue
		}
		values = append(values, value)
	}
	return values
}

// Check compares every logged statistic against the value computed from the
// block's samples. Blocks without usable samples are skipped.
func Check(res *logparse.Result, tolerance float64) (issues []Issue) {
	for _, block := range res.Blocks {
		values := ParseSamples(block.Samples)
		if len(values) == 0 {
			slog.Debug("no samples to check", slog.Int("line", block.Line), slog.String("series", block.Series))
			continue
		}
		for _, name := range logparse.Statistics {
			logged, ok := block.Stats[name]
			if !ok {
				continue
			}
			computed, err := statFuncs[name](values)
			if err != nil || math.IsNaN(computed) {
				// e.g., the sample standard deviation of a single value
				continue
			}
			if !withinTolerance(logged, computed, tolerance) {
				issues = append(issues, Issue{
					Line:      block.Line,
					Section:   block.Section,
					Mode:      block.Mode,
					Series:    block.Series,
					Statistic: name,
					Logged:    logged,
					Computed:  computed,
				})
			}
		}
	}
	return
}

func withinTolerance(logged, computed, tolerance float64) bool {
	return math.Abs(logged-computed) <= tolerance*max(math.Abs(logged), math.Abs(computed))
}
