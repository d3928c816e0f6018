package rocomactl

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func switchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name>",
		Short: "Switch the active controller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().Switch(args[0])
			if err != nil {
				return err
			}
			fmt.Println(statusColor(resp.Status).Sprint(resp.Status))
			return nil
		},
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case "SWITCHED", "RUNNING":
		return color.New(color.FgHiGreen)
	case "NOTFOUND":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
