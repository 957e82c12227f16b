package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/screa/powbench/internal/affinity"
	"github.com/screa/powbench/internal/config"
	"github.com/screa/powbench/internal/crypto"
	logpkg "github.com/screa/powbench/internal/logger"
	"github.com/screa/powbench/internal/metrics"
	"github.com/screa/powbench/internal/report"
	minerpkg "github.com/screa/powbench/pkg/miner"
	"github.com/screa/powbench/pkg/types"
)

// errNotFound signals that at least one run timed out; it maps to exit code 2
var errNotFound = errors.New("no satisfying nonce found before the timeout")

var (
	cfg     = config.NewConfig()
	logger  *logpkg.Logger
	logFile *os.File

	summaryIn  string
	summaryOut string
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	closeLogging()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNotFound):
		return 2
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

func newRootCmd() *cobra.Command {
	cfg = config.NewConfig()

	var rootCmd = &cobra.Command{
		Use:   "powbench",
		Short: "Proof-of-work mining benchmark",
		Long: `Searches for a nonce whose digest of "block_<seed>_nonce_<nonce>" has at least
the requested number of leading zero bits, using a sequential, parallel or
single-core concurrent strategy, and writes timing and throughput metrics as CSV.`,
		SilenceErrors: true,
		RunE:          runMiner,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.Mode, "mode", "m", "", "Execution mode: sequential, concurrent or parallel (required)")
	flags.IntVarP(&cfg.Difficulty, "difficulty", "d", cfg.Difficulty, "Number of leading zero bits (required)")
	flags.IntVarP(&cfg.Threads, "threads", "t", cfg.Threads, "Number of worker goroutines (required)")
	flags.IntVarP(&cfg.Timeout, "timeout", "T", cfg.Timeout, "Timeout in seconds (required)")
	flags.Uint64VarP(&cfg.Seed, "seed", "s", 0, "Seed mixed into the block data, also the first nonce")
	flags.StringVarP(&cfg.Affinity, "affinity", "a", cfg.Affinity, "Pin concurrent workers to the current core (true|false)")
	flags.StringVarP(&cfg.MetricsOut, "metrics-out", "o", "", "Output CSV file path (required)")
	flags.StringVar(&cfg.Hash, "hash", cfg.Hash, "Digest algorithm: "+strings.Join(crypto.Algorithms(), ", "))
	flags.StringVar(&cfg.ExperimentID, "experiment-id", cfg.ExperimentID, "Experiment label written to the report (empty for a random UUID)")
	flags.IntVar(&cfg.Runs, "runs", cfg.Runs, "Number of independent runs, one report row each")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output with periodic progress")
	flags.StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stdout)")
	flags.IntVarP(&cfg.LogInterval, "log-interval", "i", cfg.LogInterval, "Progress logging interval in seconds")

	rootCmd.AddCommand(newSummarizeCmd())
	return rootCmd
}

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Aggregate CSV reports by experiment, mode and thread count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return err
			}
			cmd.SilenceUsage = true
			groups, err := report.Summarize(summaryIn, summaryOut, logger)
			if err != nil {
				return err
			}
			logger.Printf("Wrote %d groups to %s", len(groups), summaryOut)
			return nil
		},
	}
	cmd.Flags().StringVar(&summaryIn, "in", "results/raw", "Directory holding run reports")
	cmd.Flags().StringVar(&summaryOut, "out", "results/processed/summary.csv", "Summary output path")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	return cmd
}

func runMiner(cmd *cobra.Command, args []string) error {
	// Validate configuration
	miningCfg, err := cfg.MiningConfig()
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	// Setup logging
	if err := setupLogging(); err != nil {
		return err
	}
	logger.Println("Starting miner with configuration:")
	for _, line := range cfg.GetDescription() {
		logger.Printf("  %s", line)
	}

	opts := []minerpkg.Option{
		minerpkg.WithLogger(logger),
		minerpkg.WithAffinity(affinity.New()),
	}
	if probe, err := metrics.NewProcessProbe(); err != nil {
		logger.Warnf("Resource metrics disabled: %v", err)
	} else {
		opts = append(opts, minerpkg.WithProbe(probe))
	}
	if cfg.Verbose {
		opts = append(opts, minerpkg.WithProgress(time.Duration(cfg.LogInterval)*time.Second))
	}

	// Create miner; a digest engine failure aborts before anything is measured
	miner, err := minerpkg.New(miningCfg, opts...)
	if err != nil {
		return err
	}

	rows := make([]report.Row, 0, cfg.Runs)
	allFound := true
	for i := 0; i < cfg.Runs; i++ {
		if cfg.Runs > 1 {
			logger.Printf("Run %d of %d", i+1, cfg.Runs)
		}
		result := miner.Mine()
		logResult(result)
		rows = append(rows, report.Row{Config: miningCfg, Result: result})
		allFound = allFound && result.Found
	}

	path := cfg.MetricsPath()
	if err := report.Write(path, rows); err != nil {
		logger.Warnf("Failed to write metrics file: %v", err)
	} else {
		logger.Printf("Metrics written to %s", path)
	}

	if !allFound {
		return errNotFound
	}
	return nil
}

func logResult(result *types.MiningResult) {
	logger.Println("Mining completed:")
	if result.Found {
		logger.Printf("  Found: yes")
		logger.Printf("  Nonce: %d", result.Nonce)
		logger.Printf("  Hash: %s", result.Digest)
	} else {
		logger.Printf("  Found: no")
	}
	logger.Printf("  Total hashes: %d", result.TotalHashes)
	for id, n := range result.WorkerHashes {
		logger.Debugf("    Worker %d: %d hashes", id, n)
	}
	logger.Printf("  Elapsed time: %.6f s", result.Elapsed.Seconds())
	logger.Printf("  CPU time: %.6f s", result.CPUTime.Seconds())
	logger.Printf("  Memory: %.2f MB", result.MemoryMB)
	logger.Printf("  Throughput: %.2f hashes/s", result.HashesPerSecond())
}

func setupLogging() error {
	opts := logpkg.Options{Verbose: cfg.Verbose}
	if cfg.LogFile != "" {
		// Log to file
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		opts.Microseconds = true
		logFile = file
		logger = logpkg.NewWriter(file, opts)
	} else {
		// Log to stdout
		logger = logpkg.NewWriter(os.Stdout, opts)
	}
	return nil
}

// closeLogging flushes the logger and closes the log file, if any
func closeLogging() {
	if logger != nil {
		_ = logger.Close()
		logger = nil
	}
	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
		}
		logFile = nil
	}
}
