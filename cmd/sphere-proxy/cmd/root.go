// Package cmd implements the sphere-proxy command-line interface: config
// loading, the long-running serve command, and a diagnostic ping command,
// all built on Cobra.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags; "dev" otherwise.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "sphere-proxy",
	Short:         "Sharding proxy execution fan-out engine",
	Long:          "sphere-proxy runs the execution fan-out engine and backend response state machine described by the sharding-sphere core against a set of configured data sources.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "sphere.ini", "path to the data source configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(versionCmd)
}
