// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package table converts parsed benchmark logs into the field/value form used by the report renderers.
package table

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"freqlog/internal/logparse"
)

// Field represents the values for a field (column) in a table
type Field struct {
	Name   string
	Values []string
}

// TableValues is a named table stored column by column
type TableValues struct {
	Name        string
	Fields      []Field
	HasRows     bool   // table is meant to be displayed in row form, i.e., a field may have multiple values
	NoDataFound string // message to display when no data is found
}

// NumRows returns the number of values held by each field.
func (tv TableValues) NumRows() int {
	if len(tv.Fields) == 0 {
		return 0
	}
	return len(tv.Fields[0].Values)
}

// FormatValue renders a measurement the way the downstream CSV readers expect:
// plain decimal notation with at least one fractional digit.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FromResult builds a row-form table from a parse result. The key column comes
// first, then every other field in order of first appearance. Cells for fields a
// record never observed are empty.
func FromResult(name string, res *logparse.Result) TableValues {
	tv := TableValues{
		Name:        name,
		HasRows:     true,
		NoDataFound: "No benchmark sections found.",
	}
	keyColumn := res.Variant.KeyColumn
	for _, column := range res.Columns() {
		field := Field{Name: column, Values: make([]string, len(res.Records))}
		for i, rec := range res.Records {
			if column == keyColumn {
				field.Values[i] = strconv.Itoa(rec.Key)
				continue
			}
			if v, ok := rec.Get(column); ok {
				field.Values[i] = FormatValue(v)
			}
		}
		tv.Fields = append(tv.Fields, field)
	}
	if err := validateTableValues(tv); err != nil {
		slog.Error("table validation failed", slog.String("table", name), slog.String("error", err.Error()))
	}
	return tv
}

// Validate checks that a table has a name, named fields and the same number of
// values in every field.
func Validate(tableValues TableValues) error {
	return validateTableValues(tableValues)
}

func validateTableValues(tableValues TableValues) error {
	if tableValues.Name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	// no field values is a valid state
	if len(tableValues.Fields) == 0 {
		return nil
	}
	// field names cannot be empty
	for i, field := range tableValues.Fields {
		if field.Name == "" {
			return fmt.Errorf("table %s, field %d, name cannot be empty", tableValues.Name, i)
		}
	}
	// the number of entries in each field must be the same
	numEntries := len(tableValues.Fields[0].Values)
	for i, field := range tableValues.Fields {
		if len(field.Values) != numEntries {
			return fmt.Errorf("table %s, field %d, %s, number of entries must be the same for all fields, expected %d, got %d", tableValues.Name, i, field.Name, numEntries, len(field.Values))
		}
	}
	return nil
}
