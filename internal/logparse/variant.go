// Package logparse extracts per-section measurements from the text log written by
// the GPU frequency-scaling benchmark harness.
package logparse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	VariantFrequency = "frequency"
	VariantIteration = "iteration"
)

// VariantNames lists the accepted values for VariantByName.
var VariantNames = []string{VariantFrequency, VariantIteration}

// Metric is a labelled value printed by the harness, e.g., "device-time[ms]".
type Metric struct {
	Label string
	Unit  string
}

// FieldName is the label with dashes replaced by underscores, used in column names.
func (m Metric) FieldName() string {
	return strings.ReplaceAll(m.Label, "-", "_")
}

// unitPattern returns the regular expression for the metric's unit. The harness
// prints joules as "j" while older logs use "J", so both are accepted.
func (m Metric) unitPattern() string {
	if strings.EqualFold(m.Unit, "J") {
		return "[Jj]"
	}
	return regexp.QuoteMeta(m.Unit)
}

// Variant is the line vocabulary of one family of benchmark logs.
type Variant struct {
	Name      string
	KeyColumn string   // name of the column that carries the section key
	Section   string   // regular expression with one integer capture group
	Scalars   []Metric // single-line values
	Series    []Metric // values followed by a five-line statistic block
}

var energySampleScalars = []Metric{
	{"energy-sample-before", "J"},
	{"energy-sample-after", "J"},
	{"energy-sample-delta", "J"},
	{"energy-sample-time", "ms"},
}

var frequencyVariant = &Variant{
	Name:      VariantFrequency,
	KeyColumn: "freq",
	Section:   `^\[\*\] Running benchmark for frequency (\d+)`,
	Scalars:   energySampleScalars,
	Series: []Metric{
		{"device-time", "ms"},
		{"device-energy", "J"},
		{"host-energy", "J"},
	},
}

var iterationVariant = &Variant{
	Name:      VariantIteration,
	KeyColumn: "n_kernels",
	Section:   `^\[\*\] Running benchmark with (\d+) kernels`,
	Scalars:   energySampleScalars,
	Series: []Metric{
		{"total-time", "ms"},
		{"kernel-time", "ms"},
		{"freq-change-time-overhead", "ms"},
		{"freq-change-device-energy-overhead", "J"},
		{"freq-change-host-energy-overhead", "J"},
		{"device-energy", "J"},
		{"host-energy", "J"},
	},
}

// VariantByName returns the vocabulary registered under name.
func VariantByName(name string) (*Variant, error) {
	switch strings.ToLower(name) {
	case VariantFrequency:
		return frequencyVariant, nil
	case VariantIteration:
		return iterationVariant, nil
	}
	return nil, fmt.Errorf("unknown log variant %q, expected one of %s", name, strings.Join(VariantNames, ", "))
}

// Modes are the frequency-setting policies announced in the log, lower-cased.
var Modes = []string{"app", "kernel", "phase"}

var modePattern = regexp.MustCompile(`^(App|Kernel|Phase) frequency setting\.\.\.`)

// statistic is one line of a statistic block.
type statistic struct {
	name string // column suffix
	re   *regexp.Regexp
}

// Statistics are the summary statistics, in the order the harness prints them.
var Statistics = []string{"Average", "Stdev", "Max", "Min", "Median"}

// The series part of a statistic line is not checked against the announcement.
var statistics = []statistic{
	{"Average", regexp.MustCompile(`^(.+)-avg\[(ms|J|j)\]: ([\d.]+)`)},
	{"Stdev", regexp.MustCompile(`^(.+)-stdev\[(ms|J|j)\]: ([\d.]+)`)},
	{"Max", regexp.MustCompile(`^(.+)-max\[(ms|J|j)\]: ([\d.]+)`)},
	{"Min", regexp.MustCompile(`^(.+)-min\[(ms|J|j)\]: ([\d.]+)`)},
	{"Median", regexp.MustCompile(`^(.+)-median\[(ms|J|j)\]: ([\d.]+)`)},
}

func scalarPattern(m Metric) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(m.Label) + `\[` + m.unitPattern() + `\]: ([\d.]+)`)
}

func seriesPattern(m Metric) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(m.Label) + `\[` + m.unitPattern() + `\]: \[ (.+) \]`)
}
