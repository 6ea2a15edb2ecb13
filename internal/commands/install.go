package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pawlette/pawlette/internal/orchestrator"
)

func installThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install-theme <name|url|path>",
		Short: "Install a theme from the remote catalog, a URL, or a local archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			name, err := o.Installer.InstallFrom(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("installed %s\n", name)
			return nil
		},
	}
}

func updateThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-theme <name>",
		Short: "Update an installed theme if a newer version is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			return o.Installer.Update(args[0])
		},
	}
}

func updateAllThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-all-themes",
		Short: "Update every installed theme with a newer catalog version",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			return o.Installer.UpdateAll()
		},
	}
}

func uninstallThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall-theme <name>",
		Short: "Remove an installed theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			if err := o.UninstallTheme(args[0]); err != nil {
				return err
			}
			fmt.Printf("uninstalled %s\n", args[0])
			return nil
		},
	}
}
