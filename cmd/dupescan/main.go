package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/soyunomas/dupescan/internal/config"
	"github.com/soyunomas/dupescan/internal/engine"
	"github.com/soyunomas/dupescan/internal/hasher"
	"github.com/soyunomas/dupescan/internal/logging"
	"github.com/soyunomas/dupescan/internal/progress"
	"github.com/soyunomas/dupescan/internal/report"
	"github.com/soyunomas/dupescan/internal/scanner"
	"github.com/soyunomas/dupescan/internal/source"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dupescan <input_folder>",
		Short: "Find duplicate files by content",
		Long: `dupescan reads a listing of file paths (a file, a directory of listing parts
or s3://bucket/prefix), hashes every file above the minimum size and writes the
duplicate groups ranked by wasted space.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}

	root.PersistentFlags().StringP("config", "c", "", "Config file path")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "console", "Log format: console, json")

	f := root.Flags()
	f.StringP("output_file", "o", config.DefaultOutputFile, "Report path")
	f.Int64P("min_size", "s", config.DefaultMinSize, "Min file size in bytes")
	f.IntP("workers", "w", 0, "Parallel workers (default: number of CPUs)")
	f.Int("partitions", config.DefaultPartitions, "Reduce partitions for grouping")
	f.String("hash-algorithm", hasher.SHA256, "Content hash: sha256, blake3")
	f.Int("buffer-size", config.DefaultBufferSize, "Read buffer size in bytes")
	f.Duration("read-timeout", 0, "Per-file read deadline, 0 disables it")
	f.String("keep", "shortest", "Representative member: shortest, longest, oldest, newest")
	f.String("format", string(report.CSV), "Report format: csv, json, yaml")
	f.BoolP("quiet", "q", false, "No progress bar or summary")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newListCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dupescan %s\n", version)
			fmt.Printf("Commit: %s\n", commit)
			fmt.Printf("Built: %s\n", buildDate)
		},
	}
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <root>...",
		Short: "Walk directories and write a path listing",
		Long: `Walk the given directories and write one regular file path per line.
The listing is gzip or zstd compressed when the output ends in .gz or .zst.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runList,
	}
	cmd.Flags().StringP("output", "o", "", "Listing path (default: stdout)")
	cmd.Flags().Int64("min-size", 0, "Only list files larger than this")
	cmd.Flags().StringSlice("exclude", scanner.DefaultExcludes, "Directory names to skip")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// flagKeys maps viper keys to the flags that override them.
var flagKeys = map[string]string{
	"output_file":    "output_file",
	"min_size":       "min_size",
	"workers":        "workers",
	"partitions":     "partitions",
	"hash_algorithm": "hash-algorithm",
	"buffer_size":    "buffer-size",
	"read_timeout":   "read-timeout",
	"keep":           "keep",
	"format":         "format",
	"quiet":          "quiet",
	"log_level":      "log-level",
	"log_format":     "log-format",
}

func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	v := viper.New()
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flag(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		cfg.InputFolder = args[0]
	}
	return cfg, cfg.Validate()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	strategy, err := engine.ParseKeepStrategy(cfg.Keep)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	runID := uuid.NewString()
	log := logging.New(cfg.LogFormat, cfg.LogLevel).With(zap.String(logging.KeyRunID, runID))
	defer func() { _ = log.Sync() }()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	started := time.Now()
	listing, err := source.NewReader(log).Read(ctx, cfg.InputFolder)
	if err != nil {
		return fmt.Errorf("read listing %s: %w", cfg.InputFolder, err)
	}

	sess, err := engine.NewSession(engine.SessionConfig{
		Workers:    cfg.Workers,
		Partitions: cfg.Partitions,
		Hasher: hasher.Options{
			Algorithm:   cfg.HashAlgorithm,
			BufferSize:  cfg.BufferSize,
			ReadTimeout: cfg.ReadTimeout,
		},
		Log: log,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	bar := progress.New(len(listing.Paths), "hashing", progress.Options{Quiet: cfg.Quiet})
	stats, err := engine.New(engine.Options{MinSize: cfg.MinSize, Strategy: strategy, Deduped: true}).
		WithProgress(bar).
		Run(ctx, sess, listing.Paths)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("scan interrupted")
		}
		return err
	}

	rep := report.Build(report.Metadata{
		RunID:     runID,
		Input:     cfg.InputFolder,
		Algorithm: cfg.HashAlgorithm,
		MinSize:   cfg.MinSize,
		Keep:      strategy.String(),
		Timestamp: started,
	}, stats)
	if err := report.WriteFile(cfg.OutputFile, format, rep, report.Options{}); err != nil {
		return err
	}
	log.Info("report written", zap.String(logging.KeyPath, cfg.OutputFile), zap.String("format", string(format)))

	if !cfg.Quiet {
		printSummary(os.Stdout, rep, listing, cfg.OutputFile)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("output")
	minSize, _ := cmd.Flags().GetInt64("min-size")
	excludes, _ := cmd.Flags().GetStringSlice("exclude")
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	cmd.SilenceUsage = true

	log := logging.New(format, level)
	defer func() { _ = log.Sync() }()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	s := scanner.New(scanner.Config{MinSize: minSize, Excludes: excludes}, log)
	if out == "" || out == "-" {
		_, err := s.Walk(ctx, args, os.Stdout)
		return err
	}
	_, err := s.WriteFile(ctx, args, out)
	return err
}
