package rocomactl

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func estopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estop",
		Short: "Trigger an emergency stop",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().Estop()
			if err != nil {
				return err
			}
			printEstopResult(resp.Success, resp.Message)
			return nil
		},
	}
}

func estopClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estop-clear",
		Short: "Clear a latched emergency stop",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().ClearEstop()
			if err != nil {
				return err
			}
			printEstopResult(resp.Success, resp.Message)
			return nil
		},
	}
}

func printEstopResult(success bool, message string) {
	if success {
		fmt.Println(color.New(color.FgHiGreen).Sprint("ok"), "-", message)
		return
	}
	fmt.Println(color.New(color.FgRed, color.Bold).Sprint("failed"), "-", message)
}
