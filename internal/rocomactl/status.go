package rocomactl

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active controller and the list of available ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()

			active, err := c.Active()
			if err != nil {
				return err
			}
			available, err := c.Available()
			if err != nil {
				return err
			}

			fmt.Printf("Active: %s\n", color.New(color.FgHiGreen, color.Bold).Sprint(active))
			fmt.Println("Available controllers:")
			for _, name := range available {
				marker := "  "
				if name == active {
					marker = color.New(color.FgHiMagenta).Sprint(" *")
				}
				fmt.Printf("%s %s\n", marker, name)
			}
			return nil
		},
	}
}
