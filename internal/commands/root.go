// Package commands assembles pawlette's cobra command tree.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pawlette/pawlette/internal/config"
	"github.com/pawlette/pawlette/internal/logger"
	"github.com/pawlette/pawlette/internal/paths"
)

var (
	verbose bool
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "pawlette",
	Short: "A Linux desktop theme manager",
	Long:  "pawlette applies named themes to your XDG configuration tree, tracking user edits and permitting clean rollback.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			logger.SetDebug()
		}
		cfg := config.Load(paths.AppConfigFile)
		opts := logger.DefaultOptions(paths.DefaultLogFile)
		opts.EnableConsole = cfg.Logging.EnableConsole
		opts.ConsoleLevel = cfg.Logging.ConsoleLevel
		opts.FileLevel = cfg.Logging.FileLevel
		opts.JournalLevel = cfg.Logging.JournalLevel
		opts.EnableColors = cfg.Logging.EnableColors
		if debug {
			opts.ConsoleLevel = "debug"
		}
		return logger.Setup(opts)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	addCommands()
}

func addCommands() {
	rootCmd.AddCommand(
		generateConfigCmd(),
		getThemesCmd(),
		getAvailableThemesCmd(),
		getThemesInfoCmd(),
		installThemeCmd(),
		updateThemeCmd(),
		updateAllThemesCmd(),
		setThemeCmd(),
		restoreCmd(),
		resetThemeCmd(),
		currentThemeCmd(),
		statusCmd(),
		historyCmd(),
		userChangesCmd(),
		restoreCommitCmd(),
		uninstallThemeCmd(),
	)
}

// Execute runs the root command. Unknown subcommands emit a warning and
// exit 0, per the external CLI contract.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if strings.Contains(err.Error(), "unknown command") {
			fmt.Fprintln(os.Stderr, "warning:", err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
