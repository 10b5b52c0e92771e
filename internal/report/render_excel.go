package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"freqlog/internal/table"

	"github.com/xuri/excelize/v2"
)

// excel limits sheet names to 31 characters
const maxSheetNameLen = 31

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

func sheetName(tableName string, idx int) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, tableName)
	if name == "" {
		name = fmt.Sprintf("Table%d", idx+1)
	}
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}
	return name
}

// DefaultXlsxTableRendererFunc writes the field names as a bold header on row 1
// and one row per record below it. Empty cells are left blank.
func DefaultXlsxTableRendererFunc(tableValues table.TableValues, f *excelize.File, sheet string) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	if err != nil {
		return err
	}
	if tableValues.NumRows() == 0 {
		msg := noDataFound
		if tableValues.NoDataFound != "" {
			msg = tableValues.NoDataFound
		}
		return f.SetCellValue(sheet, cellName(1, 1), msg)
	}
	for col, field := range tableValues.Fields {
		if err := f.SetCellValue(sheet, cellName(col+1, 1), field.Name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cellName(col+1, 1), cellName(col+1, 1), headerStyle); err != nil {
			return err
		}
		for row, value := range field.Values {
			if value == "" {
				continue
			}
			if err := f.SetCellValue(sheet, cellName(col+1, row+2), getValueForCell(value)); err != nil {
				return err
			}
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(tableValues.Fields))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 25)
}

func createXlsxReport(allTableValues []table.TableValues) (out []byte, err error) {
	f := excelize.NewFile()
	defer f.Close()
	for idx, tableValues := range allTableValues {
		sheet := sheetName(tableValues.Name, idx)
		if idx == 0 {
			err = f.SetSheetName("Sheet1", sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create xlsx sheet %s: %w", sheet, err)
		}
		if err = DefaultXlsxTableRendererFunc(tableValues, f, sheet); err != nil {
			return nil, fmt.Errorf("failed to render table %s to xlsx: %w", tableValues.Name, err)
		}
	}
	var buf bytes.Buffer
	if _, err = f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx report to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func getValueForCell(value string) (val any) {
	intValue, err := strconv.Atoi(value)
	if err == nil {
		val = intValue
		return
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err == nil {
		val = floatValue
		return
	}
	val = value
	return
}
