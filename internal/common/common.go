// Package common defines data structures and functions that are used by multiple
// application commands, e.g., the root command and batch.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"freqlog/internal/derive"
	"freqlog/internal/logparse"
	"freqlog/internal/promfile"
	"freqlog/internal/report"
	"freqlog/internal/table"
	"freqlog/internal/util"
	"freqlog/internal/verify"

	"github.com/spf13/cobra"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	Timestamp   string // Timestamp is the application startup time.
	LogFilePath string // LogFilePath is the path to the log file, empty when logging elsewhere.
	Version     string // Version is the version of the application.
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

// ParseOptions are the flags that control how a log is converted.
type ParseOptions struct {
	Variant    string
	Formats    []string
	Derive     bool
	DeriveFile string
	Check      bool
	PromFile   string
}

const (
	FlagVariantName    = "variant"
	FlagFormatName     = "format"
	FlagDeriveName     = "derive"
	FlagDeriveFileName = "derive-file"
	FlagCheckName      = "check"
	FlagPromFileName   = "prom-file"
)

// AddParseFlags registers the conversion flags on cmd. The flags' help is
// printed by the commands' usage functions, see GetParseFlagGroup.
func AddParseFlags(cmd *cobra.Command, opts *ParseOptions) {
	cmd.Flags().StringVar(&opts.Variant, FlagVariantName, logparse.VariantFrequency, "")
	cmd.Flags().StringSliceVar(&opts.Formats, FlagFormatName, []string{report.FormatCsv}, "")
	cmd.Flags().BoolVar(&opts.Derive, FlagDeriveName, false, "")
	cmd.Flags().StringVar(&opts.DeriveFile, FlagDeriveFileName, "", "")
	cmd.Flags().BoolVar(&opts.Check, FlagCheckName, false, "")
	cmd.Flags().StringVar(&opts.PromFile, FlagPromFileName, "", "")
}

// GetParseFlagGroup returns the help for the flags added by AddParseFlags
func GetParseFlagGroup() FlagGroup {
	return FlagGroup{
		GroupName: "Parse Options",
		Flags: []Flag{
			{
				Name: FlagVariantName,
				Help: fmt.Sprintf("log vocabulary, one of: %s", strings.Join(logparse.VariantNames, ", ")),
			},
			{
				Name: FlagFormatName,
				Help: fmt.Sprintf("additional output format(s) from: %s, csv is always written", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
			},
			{
				Name: FlagDeriveName,
				Help: "add derived columns, e.g., average device power",
			},
			{
				Name: FlagDeriveFileName,
				Help: "YAML file with derived column definitions, implies --" + FlagDeriveName,
			},
			{
				Name: FlagCheckName,
				Help: "recompute statistics from the raw samples and report mismatches",
			},
			{
				Name: FlagPromFileName,
				Help: "also write the measurements to this Prometheus textfile",
			},
		},
	}
}

// Validate checks the option values before any input is read
func (opts *ParseOptions) Validate() error {
	if _, err := logparse.VariantByName(opts.Variant); err != nil {
		return err
	}
	if _, err := report.ExpandFormats(opts.Formats); err != nil {
		return err
	}
	if opts.DeriveFile != "" {
		exists, err := util.FileExists(opts.DeriveFile)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("derived column definition file not found: %s", opts.DeriveFile)
		}
	}
	return nil
}

// Conversion describes one converted log
type Conversion struct {
	InputPath string
	Outputs   []string // files written, the CSV first
	Lines     int
	Sections  int
	Columns   int
	Derived   int
	Issues    []verify.Issue
}

// Convert parses the log at inputPath and writes the CSV to csvPath, plus any
// other requested formats next to it. All outputs are rendered before the
// first file is written, so nothing is written when parsing fails.
func Convert(inputPath string, csvPath string, opts ParseOptions) (conv Conversion, err error) {
	conv.InputPath = inputPath
	variant, err := logparse.VariantByName(opts.Variant)
	if err != nil {
		return
	}
	formats, err := report.ExpandFormats(opts.Formats)
	if err != nil {
		return
	}
	res, err := logparse.ParseFile(inputPath, variant)
	if err != nil {
		return
	}
	conv.Lines = res.Lines
	conv.Sections = len(res.Records)
	if opts.Derive || opts.DeriveFile != "" {
		var defs []derive.Definition
		if defs, err = derive.LoadDefinitions(opts.DeriveFile); err != nil {
			return
		}
		if conv.Derived, err = derive.Apply(res, defs); err != nil {
			return
		}
	}
	if opts.Check {
		conv.Issues = verify.Check(res, verify.DefaultTolerance)
		for _, issue := range conv.Issues {
			slog.Warn("logged statistic does not match samples", slog.String("file", inputPath), slog.Int("line", issue.Line), slog.Int("section", issue.Section), slog.String("mode", issue.Mode), slog.String("series", issue.Series), slog.String("statistic", issue.Statistic), slog.Float64("logged", issue.Logged), slog.Float64("computed", issue.Computed))
		}
	}
	tableValues := table.FromResult(util.StemName(inputPath), res)
	conv.Columns = len(tableValues.Fields)
	rendered := make([][]byte, len(formats))
	for i, format := range formats {
		if rendered[i], err = report.Create(format, []table.TableValues{tableValues}); err != nil {
			err = fmt.Errorf("failed to create %s output: %w", format, err)
			return
		}
	}
	for i, format := range formats {
		outputPath := report.OutputPath(csvPath, format)
		if err = os.WriteFile(outputPath, rendered[i], 0644); err != nil { // #nosec G306
			err = fmt.Errorf("failed to write output file: %w", err)
			return
		}
		slog.Debug("wrote output file", slog.String("path", outputPath), slog.String("format", format))
		conv.Outputs = append(conv.Outputs, outputPath)
	}
	if opts.PromFile != "" {
		if err = promfile.WriteTextfile(opts.PromFile, res); err != nil {
			return
		}
		conv.Outputs = append(conv.Outputs, opts.PromFile)
	}
	slog.Info("converted benchmark log", slog.String("input", inputPath), slog.String("output", csvPath), slog.Int("sections", conv.Sections), slog.Int("columns", conv.Columns))
	return
}
