package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	cachebench "github.com/Furetur/l1-cache-benchmark"
)

var (
	cfg     = cachebench.DefaultConfig()
	log     = logrus.New()
	verbose bool
	dbPath  string
	random  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "cachebench",
	Short: "cachebench infers cache line size, cache size and associativity " +
		"by timing pointer-chasing memory accesses.",
	Long: `cachebench infers physical cache hierarchy parameters without ` +
		`consulting OS or CPU metadata. It builds pointer chains over a large ` +
		`backing arena, times their traversal until the latency estimate ` +
		`converges, and detects the latency spikes that mark cache boundaries.`,
	// Execute reports failures through the log; cobra must not print them
	// a second time.
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		if random {
			cfg.Mode = cachebench.ChainRandom
		}
	},
}

func init() {
	// Wrapper-driven runs configure through a .env file next to the binary;
	// a missing file is not an error.
	_ = godotenv.Load()

	cfg.ArenaLength = envUint64("CACHEBENCH_ARENA_BYTES", cfg.ArenaLength)
	cfg.NAccesses = envUint64("CACHEBENCH_N_ACCESSES", cfg.NAccesses)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false,
		"log per-trial convergence progress")
	pf.StringVar(&dbPath, "db", "",
		"also record sweep points into this SQLite database")
	pf.BoolVar(&random, "random", false,
		"use the randomized chain layout instead of the strided cycle")
	pf.Int64Var(&cfg.Seed, "seed", 0,
		"seed for the randomized chain layout (0 seeds from the clock)")

	pf.Uint64Var(&cfg.ArenaLength, "arena-bytes", cfg.ArenaLength,
		"backing arena length in bytes")
	pf.Uint64Var(&cfg.NAccesses, "accesses", cfg.NAccesses,
		"pointer dereferences per timed traversal")
	pf.Float64Var(&cfg.Precision, "precision", cfg.Precision,
		"convergence tolerance between successive running means, in percent")
	pf.IntVar(&cfg.RequiredConvergedRuns, "converged-runs", cfg.RequiredConvergedRuns,
		"consecutive in-tolerance trials required for convergence")
	pf.IntVar(&cfg.TotalRunsThreshold, "max-runs", cfg.TotalRunsThreshold,
		"trial budget per measurement point")

	pf.Uint64Var(&cfg.MinLineSize, "min-line", cfg.MinLineSize,
		"smallest stride of the line size probe, in bytes")
	pf.Uint64Var(&cfg.MaxLineSize, "max-line", cfg.MaxLineSize,
		"largest stride of the line size probe, in bytes")
	pf.Uint64Var(&cfg.MinCacheSize, "min-size", cfg.MinCacheSize,
		"smallest footprint of the cache size probe, in bytes")
	pf.Uint64Var(&cfg.MaxCacheSize, "max-size", cfg.MaxCacheSize,
		"largest footprint of the cache size probe, in bytes")
	pf.Uint64Var(&cfg.CacheSizeStep, "size-step", cfg.CacheSizeStep,
		"footprint step of the cache size probe, in bytes")
	pf.Uint64Var(&cfg.MaxNSets, "max-sets", cfg.MaxNSets,
		"assumed upper bound on the cache set count (power of two)")
}

// Execute runs the CLI and exits through atexit so registered flushes run.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Error(err)
	}
	atexit.Exit(cachebench.ExitCode(err))
}

func envUint64(key string, fallback uint64) uint64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
