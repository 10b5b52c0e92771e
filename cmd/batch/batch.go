// Package batch is a subcommand of the root command. It converts several benchmark logs into one output directory.
package batch

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"freqlog/internal/common"
	"freqlog/internal/progress"
	"freqlog/internal/util"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const cmdName = "batch"

var examples = []string{
	fmt.Sprintf("  Convert all logs in a directory:          $ %s %s --output-dir out logs/*.log", common.AppName, cmdName),
	fmt.Sprintf("  Convert kernel-count logs to xlsx too:    $ %s %s --output-dir out --variant iteration --format xlsx iter1.log iter2.log", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName + " [flags] LOG...",
	Short:         "Convert several benchmark logs into one output directory",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
}

var (
	flagOutputDir string
	parseOptions  common.ParseOptions
)

const (
	flagOutputDirName = "output-dir"
)

func init() {
	Cmd.Flags().StringVar(&flagOutputDir, flagOutputDirName, "", "")
	common.AddParseFlags(Cmd, &parseOptions)
	Cmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s\n\n", cmd.UseLine())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, flag := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(flag.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
		}
	}
	cmd.Println("\nGlobal Flags:")
	cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		flagDefault := ""
		if pf.DefValue != "" {
			flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
		}
		cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
	})
	return nil
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	groups = append(groups, common.FlagGroup{
		GroupName: "Output Options",
		Flags: []common.Flag{
			{
				Name: flagOutputDirName,
				Help: "directory for the converted files, created if needed (required)",
			},
		},
	})
	groups = append(groups, common.GetParseFlagGroup())
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagOutputDir == "" {
		err := fmt.Errorf("--%s is required", flagOutputDirName)
		slog.Error(err.Error())
		return err
	}
	if _, err := util.DirectoryExists(util.ExpandUser(flagOutputDir)); err != nil {
		err = fmt.Errorf("--%s: %w", flagOutputDirName, err)
		slog.Error(err.Error())
		return err
	}
	if err := parseOptions.Validate(); err != nil {
		slog.Error(err.Error())
		return err
	}
	if parseOptions.PromFile != "" {
		err := fmt.Errorf("--%s holds one log's measurements, convert the logs one at a time to use it", common.FlagPromFileName)
		slog.Error(err.Error())
		return err
	}
	// each log gets its own output name
	stems := make(map[string]string)
	for _, logPath := range args {
		stem := util.StemName(logPath)
		if other, ok := stems[stem]; ok && other != logPath {
			err := fmt.Errorf("%s and %s would both be written to %s.csv", other, logPath, stem)
			slog.Error(err.Error())
			return err
		}
		stems[stem] = logPath
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext, _ := cmd.Root().Context().Value(common.AppContext{}).(common.AppContext)
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	outputDir, err := util.AbsPath(flagOutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output dir: %w", err)
	}
	if err := util.CreateDirectoryIfNotExists(outputDir, 0755); err != nil {
		slog.Error(err.Error())
		return err
	}
	var logPaths []string
	for _, logPath := range args {
		logPaths = util.UniqueAppend(logPaths, logPath)
	}
	multiSpinner := progress.NewMultiSpinner()
	for _, logPath := range logPaths {
		if err := multiSpinner.AddSpinner(logPath); err != nil {
			slog.Error(err.Error())
			return err
		}
	}
	slog.Info("converting benchmark logs", slog.String("version", appContext.Version), slog.String("started", appContext.Timestamp), slog.Int("logs", len(logPaths)), slog.String("outputDir", outputDir))
	multiSpinner.Start()
	conversions, err := convertLogs(ctx, logPaths, outputDir, multiSpinner.Status)
	multiSpinner.Finish()
	printSummary(cmd, conversions, outputDir, appContext)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	return nil
}

// convertLogs converts the logs in order and stops at the first failure
func convertLogs(ctx context.Context, logPaths []string, outputDir string, statusUpdate func(string, string) error) (conversions []common.Conversion, err error) {
	for _, logPath := range logPaths {
		if err = ctx.Err(); err != nil {
			err = fmt.Errorf("batch interrupted: %w", err)
			return
		}
		_ = statusUpdate(logPath, "converting")
		csvPath := filepath.Join(outputDir, util.StemName(logPath)+".csv")
		var conv common.Conversion
		if conv, err = common.Convert(logPath, csvPath, parseOptions); err != nil {
			_ = statusUpdate(logPath, "failed")
			err = fmt.Errorf("%s: %w", logPath, err)
			return
		}
		status := fmt.Sprintf("%d sections, %d columns", conv.Sections, conv.Columns)
		if len(conv.Issues) > 0 {
			status += fmt.Sprintf(", %d mismatched statistics", len(conv.Issues))
		}
		_ = statusUpdate(logPath, status)
		conversions = append(conversions, conv)
	}
	return
}

func printSummary(cmd *cobra.Command, conversions []common.Conversion, outputDir string, appContext common.AppContext) {
	var lines, sections, files, issues int
	for _, conv := range conversions {
		lines += conv.Lines
		sections += conv.Sections
		files += len(conv.Outputs)
		issues += len(conv.Issues)
	}
	p := message.NewPrinter(language.English)
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out)
	p.Fprintf(out, "Converted %d log(s): %d lines, %d sections, %d file(s) written to %s\n", len(conversions), lines, sections, files, outputDir)
	if issues > 0 {
		p.Fprintf(out, "%d logged statistic(s) do not match their samples\n", issues)
		for _, conv := range conversions {
			for _, issue := range conv.Issues {
				fmt.Fprintf(out, "  %s: %s\n", conv.InputPath, issue)
			}
		}
	}
	if appContext.LogFilePath != "" {
		fmt.Fprintf(out, "Log: %s\n", appContext.LogFilePath)
	}
}
