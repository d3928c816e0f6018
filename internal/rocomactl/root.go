// Package rocomactl implements the operator CLI's subcommands: switch,
// status, estop, and estop-clear against a running rocoma server.
package rocomactl

import (
	"github.com/spf13/cobra"

	"github.com/matthewgan/rocoma/internal/cliclient"
)

var serverAddr string

// RootCmd builds the rocomactl root command and its subcommands.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rocomactl",
		Short: "Operator CLI for the rocoma controller-manager",
		Long:  `rocomactl switches controllers, triggers and clears emergency stops, and queries manager status over HTTP.`,
	}
	cmd.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8090", "rocoma server base URL")

	cmd.AddCommand(switchCmd())
	cmd.AddCommand(statusCmd())
	cmd.AddCommand(estopCmd())
	cmd.AddCommand(estopClearCmd())
	return cmd
}

func client() *cliclient.Client {
	return cliclient.New(serverAddr)
}
