package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pawlette/pawlette/internal/config"
)

func generateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-config",
		Short: "Write the default pawlette.json config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Generate(); err != nil {
				return err
			}
			fmt.Println("wrote default config")
			return nil
		},
	}
}
