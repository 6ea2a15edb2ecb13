package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pawlette/pawlette/internal/orchestrator"
)

func setThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set-theme <name>",
		Aliases: []string{"apply"},
		Short:   "Apply a theme to the live configuration tree",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			if err := o.Apply(args[0]); err != nil {
				return err
			}
			fmt.Printf("applied %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Return to the base (main) configuration, outside any theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			return o.Restore()
		},
	}
}

func resetThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-theme <name>",
		Short: "Restore a theme's owned files to the branch's last applied state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			return o.ResetTheme(args[0])
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "Print the applied-theme commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			entries, err := o.History(name, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				hash := e[0]
				if len(hash) > 8 {
					hash = hash[:8]
				}
				fmt.Printf("%s %s\n", hash, e[1])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "limit the number of entries printed")
	return cmd
}

func userChangesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user-changes [name]",
		Short: "Print commits representing captured user edits",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			entries, err := o.UserChanges(name)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s %s\n", e[0], e[1])
			}
			return nil
		},
	}
}

func restoreCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore-commit <hash> [name]",
		Short: "Restore the work-tree to a specific commit's content",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.New()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			return o.RestoreCommit(args[0], name)
		},
	}
}
