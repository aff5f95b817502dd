package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sphere-proxy version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("sphere-proxy " + Version)
		return nil
	},
}
