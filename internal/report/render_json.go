package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"

	"freqlog/internal/table"
)

// createJsonReport emits, per table, an array with one object per row. Empty
// cells are left out of the row's object and numeric cells are emitted as numbers.
func createJsonReport(allTableValues []table.TableValues) (out []byte, err error) {
	type outRecord map[string]any
	type outTable []outRecord
	type outReport map[string]outTable
	oReport := make(outReport)
	for _, tableValues := range allTableValues {
		oTable := outTable{}
		for recordIdx := range tableValues.NumRows() {
			oRecord := make(outRecord)
			for _, field := range tableValues.Fields {
				value := field.Values[recordIdx]
				if value == "" {
					continue
				}
				oRecord[field.Name] = jsonValue(value)
			}
			oTable = append(oTable, oRecord)
		}
		oReport[tableValues.Name] = oTable
	}
	return json.MarshalIndent(oReport, "", " ")
}

func jsonValue(value string) any {
	if _, ok := getValueForCell(value).(string); ok {
		return value
	}
	return json.Number(value)
}
