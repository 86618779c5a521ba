package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/arena/alloc"
	"github.com/joshuapare/heapkit/arena/dirty"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	policyName string
	arenaLimit int
	arenaFile  string
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect the heapkit block allocator",
	Long: `heapctl runs allocation workloads against the heapkit block allocator.
It can replay allocation traces, run randomized workloads with content checks,
and report allocator statistics. The arena lives in memory unless --file
names a backing file.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.Init(logger.Options{Enabled: true, Level: slog.LevelDebug})
		} else {
			logger.FromEnv()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and allocator debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&policyName, "policy", "lifo", "Free-list policy: lifo or address")
	rootCmd.PersistentFlags().IntVar(&arenaLimit, "limit", 0, "Arena size limit in bytes (0 = no limit)")
	rootCmd.PersistentFlags().StringVar(&arenaFile, "file", "", "Back the arena with a memory-mapped file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is one allocator plus the arena resources it owns.
type session struct {
	al   *alloc.Allocator
	file *arena.File
	dt   dirty.FlushableTracker
}

// openSession builds an allocator from the global flags.
func openSession() (*session, error) {
	policy, err := alloc.ParsePolicy(policyName)
	if err != nil {
		return nil, err
	}
	cfg := alloc.ConfigFor(policy)

	if arenaFile == "" {
		al, err := alloc.New(arena.NewMemory(arenaLimit), nil, &cfg)
		if err != nil {
			return nil, err
		}
		return &session{al: al}, nil
	}

	printVerbose("Creating arena file: %s\n", arenaFile)
	f, err := arena.CreateFile(arenaFile, arenaLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create arena file: %w", err)
	}
	dt := dirty.NewTracker(f)
	al, err := alloc.New(f, dt, &cfg)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &session{al: al, file: f, dt: dt}, nil
}

// Close flushes a file-backed arena and releases it.
func (s *session) Close(ctx context.Context) error {
	if s.file == nil {
		return nil
	}
	flushErr := s.dt.Flush(ctx, dirty.FlushAuto)
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush arena file: %w", flushErr)
	}
	return closeErr
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printStats reports allocator statistics in the selected format.
func printStats(al *alloc.Allocator) error {
	if jsonOut {
		return printJSON(al.Stats())
	}
	if !quiet {
		al.PrintStats(os.Stdout)
	}
	return nil
}
