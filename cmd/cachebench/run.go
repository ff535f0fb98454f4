package main

import (
	"os"

	"github.com/spf13/cobra"

	cachebench "github.com/Furetur/l1-cache-benchmark"
)

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Probe the cache hierarchy of this machine",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHardware()
	},
}

func init() {
	runCmd.Flags().BoolVar(&cfg.UseTSC, "tsc", false,
		"time traversals in TSC cycles instead of wall-clock nanoseconds")
	runCmd.Flags().BoolVar(&cfg.EnablePerf, "perf", false,
		"log LLC miss rates via perf events (Linux only)")
	runCmd.Flags().BoolVar(&cfg.Verify, "verify", false,
		"compare results against CPUID-reported cache geometry")
	runCmd.Flags().Float64Var(&cfg.CacheSizeJumpThreshold, "size-jump",
		cfg.CacheSizeJumpThreshold,
		"absolute latency jump marking the cache size boundary")
	runCmd.Flags().Float64Var(&cfg.AssociativityJumpThreshold, "assoc-jump",
		cfg.AssociativityJumpThreshold,
		"absolute latency jump marking the associativity boundary")

	rootCmd.AddCommand(runCmd)
}

func runHardware() error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	clock := cachebench.Clock(cachebench.NewWallClock())
	if cfg.UseTSC {
		tsc, err := cachebench.NewTSCClock()
		if err != nil {
			return err
		}
		clock = tsc
	}
	log.Infof("timing traversals in %s", clock.Unit())

	arena, err := cachebench.NewArena(cfg.ArenaLength)
	if err != nil {
		return err
	}
	defer arena.Close()
	log.Infof("allocated arena of %d bytes (page size %d)",
		arena.Len(), arena.PageSize())

	csv := cachebench.NewCSVWriter(os.Stdout)
	csv.Init()
	sink := cachebench.ResultSink(csv)
	if dbPath != "" {
		recorder, err := cachebench.NewSQLiteRecorder(dbPath)
		if err != nil {
			return err
		}
		defer recorder.Close()
		log.Infof("recording sweep points to %s as run %s", dbPath, recorder.RunID())
		sink = cachebench.MultiSink{csv, recorder}
	}

	bench := cachebench.NewHardwareBench(arena, cfg, clock, log)
	defer bench.Close()

	props, err := cachebench.NewProber(cfg, bench, sink, log).Run()
	if err != nil {
		return err
	}
	sink.Flush()

	log.Infof("cache line size: %d", props.CacheLineSize)
	log.Infof("cache size:      %d", props.CacheSize)
	log.Infof("associativity:   %d", props.Associativity)
	if cfg.Verify {
		cachebench.LogVerification(log, props)
	}
	return nil
}
