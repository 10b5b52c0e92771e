package promfile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"freqlog/internal/logparse"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iterationLog = `[*] Running benchmark with 4 kernels
Phase frequency setting...
energy-sample-delta[j]: 0.75
[*] Running benchmark with 8 kernels
Phase frequency setting...
energy-sample-delta[j]: 1.5
energy-sample-time[ms]: 20
`

func parse(t *testing.T) *logparse.Result {
	t.Helper()
	v, err := logparse.VariantByName(logparse.VariantIteration)
	require.NoError(t, err)
	res, err := logparse.Parse(strings.NewReader(iterationLog), "iter.log", v)
	require.NoError(t, err)
	return res
}

func TestGauges(t *testing.T) {
	_, gauges, err := Gauges(parse(t))
	require.NoError(t, err)
	// the n_kernels column is carried by the section label
	assert.Equal(t, 3, testutil.CollectAndCount(gauges, metricName))
	assert.Equal(t, 0.75, testutil.ToFloat64(gauges.WithLabelValues("iteration", "4", "phase_energy_sample_delta")))
	assert.Equal(t, 1.5, testutil.ToFloat64(gauges.WithLabelValues("iteration", "8", "phase_energy_sample_delta")))
	assert.Equal(t, 20.0, testutil.ToFloat64(gauges.WithLabelValues("iteration", "8", "phase_energy_sample_time")))
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freqlog.prom")
	require.NoError(t, WriteTextfile(path, parse(t)))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "# TYPE freqlog_measurement gauge\n")
	assert.Contains(t, text, `freqlog_measurement{field="phase_energy_sample_time",section="8",variant="iteration"} 20`+"\n")
	assert.NotContains(t, text, "n_kernels")
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "freqlog.prom"), parse(t))
	assert.Error(t, err)
}
