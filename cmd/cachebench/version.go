package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	cachebench "github.com/Furetur/l1-cache-benchmark"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		version, sum := cachebench.Version()
		if version == "" {
			version = "(devel)"
		}
		fmt.Printf("cachebench %s %s\n", version, sum)
		fmt.Printf("%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
