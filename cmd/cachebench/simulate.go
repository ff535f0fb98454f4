package main

import (
	"os"

	"github.com/spf13/cobra"

	cachebench "github.com/Furetur/l1-cache-benchmark"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the probes against a modeled cache hierarchy",
	Long: `simulate runs the full probe pipeline against an in-process model of a
three-level cache hierarchy instead of hardware timing. The model's
parameters are known exactly, which makes it the reference workload for
validating search ranges and detection thresholds.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulated()
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

// simulateConfig adapts the search ranges and thresholds to the modeled
// hierarchy: a 128KB L1 with 128-byte lines, penalties of 1 per L1 hit and
// 10000 per L1 miss.
func simulateConfig() cachebench.Config {
	c := cfg
	c.ArenaLength = 64 * cachebench.Megabyte
	c.MinLineSize = 16
	c.MaxLineSize = 1024
	c.MinCacheSize = 64 * cachebench.Kilobyte
	c.MaxCacheSize = 256 * cachebench.Kilobyte
	c.CacheSizeStep = 32 * cachebench.Kilobyte
	c.NAccesses = 1_000_000
	c.CacheSizeJumpThreshold = 1e9
	c.AssociativityJumpThreshold = 1e9
	return c
}

func runSimulated() error {
	simCfg := simulateConfig()
	if err := simCfg.Validate(); err != nil {
		return err
	}

	bench := &cachebench.ModelBench{
		Build:     cachebench.DefaultModelHierarchy,
		NAccesses: simCfg.NAccesses,
		MaxTrace:  200_000,
		Seed:      simCfg.Seed,
		Opts: cachebench.ConvergeOptions{
			Precision: simCfg.Precision,
			Required:  simCfg.RequiredConvergedRuns,
			MaxTrials: simCfg.TotalRunsThreshold,
			Log:       log,
		},
	}

	csv := cachebench.NewCSVWriter(os.Stdout)
	csv.Init()

	props, err := cachebench.NewProber(simCfg, bench, csv, log).Run()
	if err != nil {
		return err
	}
	csv.Flush()

	log.Infof("modeled cache line size: %d", props.CacheLineSize)
	log.Infof("modeled cache size:      %d", props.CacheSize)
	log.Infof("modeled associativity:   %d", props.Associativity)
	return nil
}
