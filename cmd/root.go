// Package cmd provides the command line interface for the application.
package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"freqlog/cmd/batch"
	"freqlog/internal/common"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var gLogFile *os.File
var gVersion = "9.9.9" // overwritten by ldflags at build time

const (
	// LongAppName is the name of the application
	LongAppName = "Frequency Log Converter"
)

var examples = []string{
	fmt.Sprintf("  Convert a frequency sweep log to CSV:           $ %s bench.log bench.csv", common.AppName),
	fmt.Sprintf("  Convert a kernel-count sweep log:               $ %s --variant iteration iter.log iter.csv", common.AppName),
	fmt.Sprintf("  Also write a spreadsheet and derived columns:   $ %s --format xlsx --derive bench.log bench.csv", common.AppName),
	fmt.Sprintf("  Convert many logs into one directory:           $ %s batch --output-dir out logs/*.log", common.AppName),
}

// rootCmd represents the base command, it converts a single log
var rootCmd = &cobra.Command{
	Use:                common.AppName + " [flags] <input_log_path> <output_csv_path>",
	Short:              common.AppName,
	Long:               fmt.Sprintf(`%s (%s) converts the text log of a GPU frequency-scaling benchmark into a CSV table with one row per benchmark section.`, LongAppName, common.AppName),
	Example:            strings.Join(examples, "\n"),
	Args:               validateArgs,
	PreRunE:            validateFlags,
	RunE:               runCmd,
	PersistentPreRunE:  initializeApplication, // will only be run if command has a 'Run' function
	PersistentPostRunE: terminateApplication,  // ...
	Version:            gVersion,
	SilenceErrors:      true,
	SilenceUsage:       true,
}

var (
	// logging
	flagDebug     bool
	flagSyslog    bool
	flagLogStdOut bool
	// conversion
	parseOptions common.ParseOptions
)

const (
	flagDebugName     = "debug"
	flagSyslogName    = "syslog"
	flagLogStdOutName = "log-stdout"
)

// errUsage is returned when the positional arguments are wrong
var errUsage = errors.New("wrong number of arguments")

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{}) // block the help command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.AddGroup([]*cobra.Group{{ID: "primary", Title: "Commands:"}}...)
	rootCmd.AddCommand(batch.Cmd)
	// Global (persistent) flags
	rootCmd.PersistentFlags().BoolVar(&flagDebug, flagDebugName, false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagSyslog, flagSyslogName, false, "write logs to syslog instead of a file")
	rootCmd.PersistentFlags().BoolVar(&flagLogStdOut, flagLogStdOutName, false, "write logs to stdout")
	common.AddParseFlags(rootCmd, &parseOptions)
	rootCmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s\n", cmd.UseLine())
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			cmd.Printf("       %s\n", sub.UseLine())
		}
	}
	cmd.Printf("\n%s\n\n", cmd.Long)
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
	cmd.PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		flagDefault := ""
		if pf.DefValue != "" {
			flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
		}
		cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
	})
	return nil
}

func getFlagGroups() []common.FlagGroup {
	return []common.FlagGroup{common.GetParseFlagGroup()}
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	return nil
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := parseOptions.Validate(); err != nil {
		slog.Error(err.Error())
		return err
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	conv, err := common.Convert(args[0], args[1], parseOptions)
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	if len(conv.Issues) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d logged statistic(s) do not match their samples\n", len(conv.Issues))
		for _, issue := range conv.Issues {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", issue)
		}
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.EnableCommandSorting = false
	cobra.EnableCaseInsensitive = true
	if exitCode := execute(os.Args[1:], os.Stdout, os.Stderr); exitCode != 0 {
		os.Exit(exitCode)
	}
}

// execute runs the command line and returns the process exit code
func execute(args []string, stdout io.Writer, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stdout, "Usage: %s <input_file_path> <output_file_path>\n", common.AppName)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if terminateErr := terminateApplication(cmd, args); terminateErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", terminateErr)
	}
	return 1
}

func initializeApplication(cmd *cobra.Command, args []string) error {
	timestamp := time.Now().Local().Format("2006-01-02_15-04-05") // app startup time
	// configure logging
	var logOpts slog.HandlerOptions
	if flagDebug {
		logOpts.Level = slog.LevelDebug
		logOpts.AddSource = true
	} else {
		logOpts.Level = slog.LevelInfo
		logOpts.AddSource = false
	}
	if flagSyslog && flagLogStdOut {
		return fmt.Errorf("both syslog handler and stdout output specified, please pick one only")
	} else if flagSyslog { // log to syslog
		handler, err := NewSyslogHandler(&logOpts)
		if err != nil {
			return fmt.Errorf("failed to create syslog handler: %w", err)
		}
		slog.SetDefault(slog.New(handler))
	} else if flagLogStdOut {
		handler := slog.NewJSONHandler(os.Stdout, &logOpts)
		slog.SetDefault(slog.New(handler))
	} else { // log to file
		// open log file in current directory
		var err error
		gLogFile, err = os.OpenFile(common.AppName+".log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644) // #nosec G302
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(gLogFile, &logOpts)))
	}
	slog.Info("Starting up", slog.String("app", common.AppName), slog.String("version", gVersion), slog.Int("PID", os.Getpid()), slog.String("arguments", strings.Join(os.Args, " ")))
	var logFilePath string
	if gLogFile != nil {
		logFilePath = gLogFile.Name()
	}
	// set app context
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	cmd.Root().SetContext(
		context.WithValue(
			parent,
			common.AppContext{},
			common.AppContext{
				Timestamp:   timestamp,
				LogFilePath: logFilePath,
				Version:     gVersion},
		),
	)
	return nil
}

// terminateApplication logs the shutdown and closes the log file
func terminateApplication(cmd *cobra.Command, args []string) error {
	if cmd == nil {
		return nil
	}
	ctx := cmd.Root().Context()
	if ctx == nil {
		return nil
	}
	if _, ok := ctx.Value(common.AppContext{}).(common.AppContext); !ok {
		return nil
	}
	slog.Info("Shutting down", slog.String("app", common.AppName), slog.String("version", gVersion), slog.Int("PID", os.Getpid()), slog.String("arguments", strings.Join(os.Args, " ")))
	if gLogFile != nil {
		logFile := gLogFile
		gLogFile = nil
		// later log records go to stderr
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
		if err := logFile.Close(); err != nil {
			slog.Error("error closing log file", slog.String("logFile", logFile.Name()), slog.String("error", err.Error()))
			return err
		}
	}
	return nil
}

// SyslogHandler is a slog.Handler that logs to syslog.
type SyslogHandler struct {
	writer     *syslog.Writer
	logLeveler slog.Leveler
	addSource  bool
	attrs      string // preformatted attributes from WithAttrs
	group      string // key prefix from WithGroup
}

func NewSyslogHandler(logOpts *slog.HandlerOptions) (*SyslogHandler, error) {
	writer, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, filepath.Base(os.Args[0]))
	if err != nil {
		return nil, err
	}
	return &SyslogHandler{writer: writer, logLeveler: logOpts.Level, addSource: logOpts.AddSource}, nil
}

func (h *SyslogHandler) Handle(ctx context.Context, r slog.Record) error {
	var msg string
	if r.PC != 0 && h.addSource {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		// path relative to the working directory, prefixed with the working directory's last element
		filePath := f.File
		if strings.HasPrefix(filePath, "/") {
			wd, err := os.Getwd()
			if err == nil {
				filePath, err = filepath.Rel(wd, filePath)
				if err == nil {
					_, lastWd := filepath.Split(wd)
					filePath = filepath.Join(lastWd, filePath)
				} else {
					filePath = f.File
				}
			}
		}
		msg = fmt.Sprintf("level=%s source=%s:%d msg=\"%s\"", r.Level.String(), filePath, f.Line, r.Message)
	} else {
		msg = fmt.Sprintf("level=%s msg=\"%s\"", r.Level.String(), r.Message)
	}
	msg += h.attrs
	r.Attrs(func(attr slog.Attr) bool {
		msg += formatSyslogAttr(h.group, attr)
		return true
	})
	switch r.Level {
	case slog.LevelDebug:
		return h.writer.Debug(msg)
	case slog.LevelInfo:
		return h.writer.Info(msg)
	case slog.LevelWarn:
		return h.writer.Warning(msg)
	case slog.LevelError:
		return h.writer.Err(msg)
	default:
		return h.writer.Info(msg)
	}
}

func (h *SyslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	for _, attr := range attrs {
		h2.attrs += formatSyslogAttr(h.group, attr)
	}
	return &h2
}

func (h *SyslogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group += name + "."
	return &h2
}

// formatSyslogAttr renders attr as ` key="value"`, flattening groups into dotted keys
func formatSyslogAttr(prefix string, attr slog.Attr) string {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return ""
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		var sb strings.Builder
		for _, member := range attr.Value.Group() {
			sb.WriteString(formatSyslogAttr(prefix, member))
		}
		return sb.String()
	}
	return fmt.Sprintf(" %s%s=\"%s\"", prefix, attr.Key, attr.Value)
}

func (h *SyslogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.logLeveler.Level()
}
