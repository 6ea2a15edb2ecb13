package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pawlette/pawlette/internal/catalog"
	"github.com/pawlette/pawlette/internal/orchestrator"
)

func getThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-themes",
		Short: "Print installed theme names, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			names := o.InstalledThemeNames()
			sort.Strings(names)
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}

func getAvailableThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-available-themes",
		Short: "Print a JSON map of remote theme name to URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			remotes := catalog.FetchRemoteThemes()
			urls := catalog.AsURLMap(remotes)
			data, err := json.MarshalIndent(urls, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func getThemesInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-themes-info",
		Short: "Print a JSON map of installed theme metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			info := o.ThemesInfo()
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func currentThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current-theme",
		Short: "Print the currently applied theme name",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			name, err := o.CurrentTheme()
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Println("(none)")
				return nil
			}
			fmt.Println(name)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current theme and work-tree dirty state",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			st, err := o.GetStatus()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
