package verify

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"strings"
	"testing"

	"freqlog/internal/logparse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, log string) *logparse.Result {
	t.Helper()
	v, err := logparse.VariantByName(logparse.VariantFrequency)
	require.NoError(t, err)
	res, err := logparse.Parse(strings.NewReader(log), "check.log", v)
	require.NoError(t, err)
	return res
}

func TestParseSamples(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{name: "spaces", in: "1 2.5 3", want: []float64{1, 2.5, 3}},
		{name: "commas", in: "1, 2, 3", want: []float64{1, 2, 3}},
		{name: "junk skipped", in: "1 x 3", want: []float64{1, 3}},
		{name: "empty", in: "  ", want: []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSamples(tt.in))
		})
	}
}

func TestCheckConsistentBlock(t *testing.T) {
	res := parse(t, `[*] Running benchmark for frequency 900
Kernel frequency setting...
device-time[ms]: [ 3 1 2 ]
device-time-avg[ms]: 2
device-time-stdev[ms]: 1
device-time-max[ms]: 3
device-time-min[ms]: 1
device-time-median[ms]: 1
`)
	assert.Empty(t, Check(res, DefaultTolerance))
}

func TestCheckReportsMismatch(t *testing.T) {
	res := parse(t, `[*] Running benchmark for frequency 900
Kernel frequency setting...
device-energy[J]: [ 1 2 3 ]
device-energy-avg[j]: 2.0001
device-energy-stdev[j]: 1
device-energy-max[j]: 4
device-energy-min[j]: 1
device-energy-median[j]: 3
`)
	issues := Check(res, DefaultTolerance)
	require.Len(t, issues, 2)
	assert.Equal(t, Issue{Line: 3, Section: 900, Mode: "kernel", Series: "device_energy", Statistic: "Max", Logged: 4, Computed: 3}, issues[0])
	assert.Equal(t, "Median", issues[1].Statistic)
	assert.Equal(t, 2.0, issues[1].Computed)
	assert.Contains(t, issues[0].String(), "section 900 kernel device_energy Max")

	// a looser tolerance accepts the max but not the median
	issues = Check(res, 0.3)
	require.Len(t, issues, 1)
	assert.Equal(t, "Median", issues[0].Statistic)
}

func TestCheckSkipsUnusableBlocks(t *testing.T) {
	res := parse(t, `[*] Running benchmark for frequency 900
App frequency setting...
device-time[ms]: [ n/a ]
device-time-avg[ms]: 7
device-time-stdev[ms]: 7
device-time-max[ms]: 7
device-time-min[ms]: 7
device-time-median[ms]: 7
host-energy[J]: [ 5 ]
host-energy-avg[J]: 5
host-energy-stdev[J]: 0
host-energy-max[J]: 5
host-energy-min[J]: 5
host-energy-median[J]: 5
`)
	assert.Empty(t, Check(res, DefaultTolerance))
}
