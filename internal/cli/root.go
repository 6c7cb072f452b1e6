// Package cli implements the nwctl command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/nodewatch-systems/nodewatch/internal/client"
	"github.com/nodewatch-systems/nodewatch/pkg/color"
)

var (
	apiURL       string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "nwctl",
	Short: "NodeWatch CLI",
	Long: `nwctl is the command-line interface for NodeWatch.

Inspect the latest sensor reading, browse history, flip the relay and
LED actuators, and run a live terminal dashboard against a NodeWatch
server.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if outputFormat == "json" {
			color.Disable()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8090", "NodeWatch server base URL")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table, json")
}

func apiClient() *client.Client {
	return client.New(apiURL)
}
