// Package promfile exports parsed benchmark records in the Prometheus text
// format, for the node exporter's textfile collector.
package promfile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"freqlog/internal/logparse"

	"github.com/prometheus/client_golang/prometheus"
)

const metricName = "freqlog_measurement"

func newMeasurementGaugeVec() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricName,
			Help: "Benchmark measurement parsed from a frequency-scaling log",
		},
		[]string{"variant", "section", "field"},
	)
}

// Gauges registers a gauge vector on a new registry and sets one sample per
// record field. The section key column is not exported, it is the section label.
func Gauges(res *logparse.Result) (*prometheus.Registry, *prometheus.GaugeVec, error) {
	registry := prometheus.NewRegistry()
	gauges := newMeasurementGaugeVec()
	if err := registry.Register(gauges); err != nil {
		return nil, nil, err
	}
	for _, rec := range res.Records {
		section := strconv.Itoa(rec.Key)
		for _, field := range rec.Fields() {
			if field == res.Variant.KeyColumn {
				continue
			}
			value, _ := rec.Get(field)
			if math.IsNaN(value) {
				continue
			}
			gauges.WithLabelValues(res.Variant.Name, section, field).Set(value)
		}
	}
	return registry, gauges, nil
}

// WriteTextfile writes the records of res to path in the Prometheus text format.
func WriteTextfile(path string, res *logparse.Result) error {
	registry, _, err := Gauges(res)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write prometheus textfile: %w", err)
	}
	slog.Debug("wrote prometheus textfile", slog.String("path", path))
	return nil
}
