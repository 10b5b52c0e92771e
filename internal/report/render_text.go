package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"freqlog/internal/table"
)

const columnSpacing = 3

func createTextReport(allTableValues []table.TableValues) (out []byte, err error) {
	var sb strings.Builder
	for _, tableValues := range allTableValues {
		fmt.Fprintf(&sb, "%s\n%s\n", tableValues.Name, strings.Repeat("=", len(tableValues.Name)))
		if tableValues.NumRows() == 0 {
			msg := noDataFound
			if tableValues.NoDataFound != "" {
				msg = tableValues.NoDataFound
			}
			sb.WriteString(msg + "\n\n")
			continue
		}
		sb.WriteString(DefaultTextTableRendererFunc(tableValues))
		sb.WriteString("\n")
	}
	out = []byte(sb.String())
	return
}

// DefaultTextTableRendererFunc renders row-form tables with the field names as
// column headings, and other tables as "name: value" lines.
func DefaultTextTableRendererFunc(tableValues table.TableValues) string {
	var sb strings.Builder
	if !tableValues.HasRows {
		maxFieldNameLen := 0
		for _, field := range tableValues.Fields {
			maxFieldNameLen = max(maxFieldNameLen, len(field.Name))
		}
		for _, field := range tableValues.Fields {
			var value string
			if len(field.Values) > 0 {
				value = field.Values[0]
			}
			fmt.Fprintf(&sb, "%s%-*s %s\n", field.Name, maxFieldNameLen-len(field.Name)+1, ":", value)
		}
		return sb.String()
	}
	// a column is as wide as its heading or its longest value, the last one is not padded
	widths := make([]int, len(tableValues.Fields))
	for i, field := range tableValues.Fields {
		if i == len(tableValues.Fields)-1 {
			break
		}
		widths[i] = len(field.Name)
		for _, val := range field.Values {
			widths[i] = max(widths[i], len(val))
		}
		widths[i] += columnSpacing
	}
	writeRow := func(cell func(int) string) {
		var line strings.Builder
		for i := range tableValues.Fields {
			fmt.Fprintf(&line, "%-*s", widths[i], cell(i))
		}
		sb.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}
	writeRow(func(i int) string { return tableValues.Fields[i].Name })
	writeRow(func(i int) string { return strings.Repeat("-", len(tableValues.Fields[i].Name)) })
	for row := range tableValues.NumRows() {
		writeRow(func(i int) string { return tableValues.Fields[i].Values[row] })
	}
	return sb.String()
}
