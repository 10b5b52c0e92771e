package logparse

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frequencyLog = `[*] Running benchmark for frequency 800
App frequency setting...
energy-sample-before[J]: 12.5
energy-sample-after[J]: 20.0
energy-sample-delta[J]: 7.5
energy-sample-time[ms]: 105
device-time[ms]: [ 3 3.5 2.5 4 3.1 ]
device-time-avg[ms]: 3.2
device-time-stdev[ms]: 0.1
device-time-max[ms]: 4.0
device-time-min[ms]: 2.5
device-time-median[ms]: 3.1
Kernel frequency setting...
host-energy[J]: [ 1.5 1.5 ]
host-energy-avg[J]: 1.5
host-energy-stdev[J]: 0
host-energy-max[J]: 1.5
host-energy-min[J]: 1.5
host-energy-median[J]: 1.5
[*] Running benchmark for frequency 1200
App frequency setting...
energy-sample-delta[J]: 9.25
`

func parseString(t *testing.T, text string, variant string) (*Result, error) {
	t.Helper()
	v, err := VariantByName(variant)
	require.NoError(t, err)
	return Parse(strings.NewReader(text), "test.log", v)
}

func TestParseScalarAndBlocks(t *testing.T) {
	res, err := parseString(t, frequencyLog, VariantFrequency)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	rec := res.Records[0]
	assert.Equal(t, 800, rec.Key)
	expected := map[string]float64{
		"freq":                       800,
		"app_energy_sample_before":   12.5,
		"app_energy_sample_after":    20.0,
		"app_energy_sample_delta":    7.5,
		"app_energy_sample_time":     105,
		"app_device_time_Average":    3.2,
		"app_device_time_Stdev":      0.1,
		"app_device_time_Max":        4.0,
		"app_device_time_Min":        2.5,
		"app_device_time_Median":     3.1,
		"kernel_host_energy_Average": 1.5,
		"kernel_host_energy_Stdev":   0,
		"kernel_host_energy_Max":     1.5,
		"kernel_host_energy_Min":     1.5,
		"kernel_host_energy_Median":  1.5,
	}
	assert.Equal(t, expected, rec.Values())
	assert.Equal(t, "freq", rec.Fields()[0])

	rec = res.Records[1]
	assert.Equal(t, 1200, rec.Key)
	assert.Equal(t, map[string]float64{"freq": 1200, "app_energy_sample_delta": 9.25}, rec.Values())

	require.Len(t, res.Blocks, 2)
	assert.Equal(t, Block{
		Line:    7,
		Section: 800,
		Mode:    "app",
		Series:  "device_time",
		Samples: "3 3.5 2.5 4 3.1",
		Stats:   map[string]float64{"Average": 3.2, "Stdev": 0.1, "Max": 4.0, "Min": 2.5, "Median": 3.1},
	}, res.Blocks[0])
	assert.Equal(t, 22, res.Lines)
}

func TestParseSections(t *testing.T) {
	tests := []struct {
		name     string
		log      string
		wantKeys []int
	}{
		{
			name:     "no sections",
			log:      "App frequency setting...\nenergy-sample-before[J]: 1.0\n",
			wantKeys: nil,
		},
		{
			name:     "first seen order",
			log:      "[*] Running benchmark for frequency 1500\n[*] Running benchmark for frequency 300\n[*] Running benchmark for frequency 900\n",
			wantKeys: []int{1500, 300, 900},
		},
		{
			name:     "repeated key merges",
			log:      "[*] Running benchmark for frequency 800\n[*] Running benchmark for frequency 800\n",
			wantKeys: []int{800},
		},
		{
			name:     "revisited key merges",
			log:      "[*] Running benchmark for frequency 800\n[*] Running benchmark for frequency 900\n[*] Running benchmark for frequency 800\n",
			wantKeys: []int{800, 900},
		},
		{
			name:     "section must start the line",
			log:      "  [*] Running benchmark for frequency 800\n",
			wantKeys: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseString(t, tt.log, VariantFrequency)
			require.NoError(t, err)
			var keys []int
			for _, rec := range res.Records {
				keys = append(keys, rec.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestParseRepeatedSectionAccumulates(t *testing.T) {
	log := `[*] Running benchmark for frequency 800
App frequency setting...
energy-sample-before[J]: 1.0
[*] Running benchmark for frequency 800
Phase frequency setting...
energy-sample-before[J]: 2.0
App frequency setting...
energy-sample-before[J]: 3.0
`
	res, err := parseString(t, log, VariantFrequency)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, []string{"freq", "app_energy_sample_before", "phase_energy_sample_before"}, res.Records[0].Fields())
	v, ok := res.Records[0].Get("app_energy_sample_before")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v, "later value overwrites")
}

func TestParseMetricBeforeSectionIgnored(t *testing.T) {
	log := `App frequency setting...
energy-sample-before[J]: 1.0
device-time[ms]: [ 1 ]
[*] Running benchmark for frequency 800
energy-sample-after[J]: 2.0
`
	res, err := parseString(t, log, VariantFrequency)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, map[string]float64{"freq": 800, "app_energy_sample_after": 2.0}, res.Records[0].Values())
	assert.Empty(t, res.Blocks)
}

func TestParseModeCarriesAcrossSections(t *testing.T) {
	log := `Phase frequency setting...
[*] Running benchmark for frequency 800
energy-sample-time[ms]: 4
`
	res, err := parseString(t, log, VariantFrequency)
	require.NoError(t, err)
	_, ok := res.Record(800).Get("phase_energy_sample_time")
	assert.True(t, ok)
}

func TestParseBlockConsumesFiveLines(t *testing.T) {
	// the section-start and scalar lines inside the window are swallowed
	log := `[*] Running benchmark for frequency 800
App frequency setting...
device-energy[j]: [ 7 8 ]
device-energy-avg[j]: 7.5
[*] Running benchmark for frequency 900
energy-sample-before[J]: 99
device-energy-max[j]: 8
device-energy-median[j]: 8
energy-sample-after[J]: 1
`
	res, err := parseString(t, log, VariantFrequency)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, map[string]float64{
		"freq":                      800,
		"app_device_energy_Average": 7.5,
		"app_device_energy_Max":     8,
		"app_device_energy_Median":  8,
		"app_energy_sample_after":   1,
	}, res.Records[0].Values())
}

func TestParseStatisticSeriesNotChecked(t *testing.T) {
	// statistic lines are attributed to the announced series whatever their label
	log := `[*] Running benchmark for frequency 800
App frequency setting...
host-energy[J]: [ 1 ]
device-time-avg[ms]: 1
x
x
x
x
`
	res, err := parseString(t, log, VariantFrequency)
	require.NoError(t, err)
	v, ok := res.Record(800).Get("app_host_energy_Average")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	_, ok = res.Record(800).Get("app_device_time_Average")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		log      string
		wantErr  error
		wantLine int
	}{
		{
			name: "truncated block",
			log: `[*] Running benchmark for frequency 800
App frequency setting...
device-time[ms]: [ 1 2 ]
device-time-avg[ms]: 1.5
device-time-stdev[ms]: 0.7
device-time-max[ms]: 2
device-time-min[ms]: 1
`,
			wantErr:  ErrTruncatedBlock,
			wantLine: 3,
		},
		{
			name:     "block on last line",
			log:      "[*] Running benchmark for frequency 800\nApp frequency setting...\ndevice-time[ms]: [ 1 2 ]",
			wantErr:  ErrTruncatedBlock,
			wantLine: 3,
		},
		{
			name:     "metric before mode",
			log:      "[*] Running benchmark for frequency 800\nenergy-sample-before[J]: 1\n",
			wantErr:  ErrNoMode,
			wantLine: 2,
		},
		{
			name:     "malformed scalar",
			log:      "[*] Running benchmark for frequency 800\nApp frequency setting...\nenergy-sample-before[J]: 1.2.3\n",
			wantErr:  strconv.ErrSyntax,
			wantLine: 3,
		},
		{
			name:     "malformed statistic",
			log:      "[*] Running benchmark for frequency 800\nApp frequency setting...\ndevice-time[ms]: [ 1 ]\ndevice-time-avg[ms]: 1\ndevice-time-stdev[ms]: .\nx\nx\nx\n",
			wantErr:  strconv.ErrSyntax,
			wantLine: 5,
		},
		{
			name:     "section key overflow",
			log:      "[*] Running benchmark for frequency 99999999999999999999999\n",
			wantErr:  strconv.ErrRange,
			wantLine: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseString(t, tt.log, VariantFrequency)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, "test.log", syntaxErr.FileName)
			assert.Equal(t, tt.wantLine, syntaxErr.Line)
		})
	}
}

func TestParseIterationVariant(t *testing.T) {
	log := `[*] Running benchmark with 4 kernels
Phase frequency setting...
kernel-time[ms]: [ 10 12 ]
kernel-time-avg[ms]: 11
kernel-time-stdev[ms]: 1.41421
kernel-time-max[ms]: 12
kernel-time-min[ms]: 10
kernel-time-median[ms]: 12
freq-change-time-overhead[ms]: [ 0.5 0.7 ]
freq-change-time-overhead-avg[ms]: 0.6
freq-change-time-overhead-stdev[ms]: 0.141421
freq-change-time-overhead-max[ms]: 0.7
freq-change-time-overhead-min[ms]: 0.5
freq-change-time-overhead-median[ms]: 0.7
[*] Running benchmark for frequency 800
`
	res, err := parseString(t, log, VariantIteration)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, 4, rec.Key)
	assert.Equal(t, "n_kernels", res.Variant.KeyColumn)
	v, ok := rec.Get("phase_kernel_time_Average")
	require.True(t, ok)
	assert.Equal(t, 11.0, v)
	v, ok = rec.Get("phase_freq_change_time_overhead_Stdev")
	require.True(t, ok)
	assert.Equal(t, 0.141421, v)
	assert.Len(t, rec.Fields(), 11)
}

func TestParseFile(t *testing.T) {
	v, err := VariantByName(VariantFrequency)
	require.NoError(t, err)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.log"), v)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bench.log")
	require.NoError(t, os.WriteFile(path, []byte(frequencyLog), 0600))
	res, err := ParseFile(path, v)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
}

func TestVariantByName(t *testing.T) {
	v, err := VariantByName("Iteration")
	require.NoError(t, err)
	assert.Equal(t, VariantIteration, v.Name)
	_, err = VariantByName("phase")
	assert.Error(t, err)
}

func TestResultColumns(t *testing.T) {
	res, err := parseString(t, frequencyLog, VariantFrequency)
	require.NoError(t, err)
	columns := res.Columns()
	assert.Equal(t, "freq", columns[0])
	assert.Len(t, columns, 15)
	assert.Equal(t, "kernel_host_energy_Median", columns[len(columns)-1])
}
