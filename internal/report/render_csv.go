package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"freqlog/internal/table"
)

// createCsvReport writes the header row followed by one row per record. There
// is no index column.
func createCsvReport(allTableValues []table.TableValues) (out []byte, err error) {
	if len(allTableValues) != 1 {
		return nil, fmt.Errorf("csv report holds exactly one table, got %d", len(allTableValues))
	}
	tableValues := allTableValues[0]
	if len(tableValues.Fields) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, len(tableValues.Fields))
	for i, field := range tableValues.Fields {
		header[i] = field.Name
	}
	if err = w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(tableValues.Fields))
	for row := range tableValues.NumRows() {
		for i, field := range tableValues.Fields {
			record[i] = field.Values[row]
		}
		if err = w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row %d: %w", row+1, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv report: %w", err)
	}
	return buf.Bytes(), nil
}
