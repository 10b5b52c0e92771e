// Package report renders parsed benchmark tables in various formats such as csv, txt, json, xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"path/filepath"
	"strings"

	"freqlog/internal/table"
)

const (
	FormatCsv  = "csv"
	FormatTxt  = "txt"
	FormatJson = "json"
	FormatXlsx = "xlsx"
	FormatAll  = "all"
)

const noDataFound = "No data found."

var FormatOptions = []string{FormatCsv, FormatTxt, FormatJson, FormatXlsx}

// Create generates a report in the specified format from the provided tables.
// The function ensures that all fields of a table have the same number of values
// before generating the report.
func Create(format string, allTableValues []table.TableValues) (out []byte, err error) {
	for _, tableValues := range allTableValues {
		if err = table.Validate(tableValues); err != nil {
			return nil, err
		}
	}
	switch format {
	case FormatCsv:
		return createCsvReport(allTableValues)
	case FormatTxt:
		return createTextReport(allTableValues)
	case FormatJson:
		return createJsonReport(allTableValues)
	case FormatXlsx:
		return createXlsxReport(allTableValues)
	}
	return nil, fmt.Errorf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format)
}

// ExpandFormats resolves "all" and removes duplicates. CSV is always included
// and always first.
func ExpandFormats(formats []string) ([]string, error) {
	expanded := []string{FormatCsv}
	for _, format := range formats {
		format = strings.ToLower(strings.TrimSpace(format))
		switch {
		case format == FormatAll:
			return append([]string(nil), FormatOptions...), nil
		case !isFormat(format):
			return nil, fmt.Errorf("format options are: %s", strings.Join(append([]string{FormatAll}, FormatOptions...), ", "))
		case !contains(expanded, format):
			expanded = append(expanded, format)
		}
	}
	return expanded, nil
}

// OutputPath returns where a report of the given format is written. CSV goes to
// csvPath itself, other formats replace its extension.
func OutputPath(csvPath string, format string) string {
	if format == FormatCsv {
		return csvPath
	}
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + "." + format
}

func isFormat(format string) bool {
	return contains(FormatOptions, format)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
