package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/bidscout/internal/procurement"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the scoring model version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (scoring model %s)\n", app, version, procurement.ModelVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
