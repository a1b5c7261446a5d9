package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sadopc/nudge/internal/logging"
	"github.com/sadopc/nudge/internal/store"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "nudge",
	Short: "nudge – an interval-based activity tracker",
	Long: `nudge periodically asks what you are working on and turns the answers
into per-category time reports. Running nudge without a subcommand opens
the interactive terminal UI.`,
	RunE: runApp,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default ~/.config/nudge/nudge.db)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loginCmd)
}

func openStore() (*store.Store, error) {
	path := dbPath
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.New(path)
}

func newLogger() *log.Logger {
	path, err := logging.DefaultPath()
	if err != nil {
		return logging.Discard()
	}
	logger, err := logging.New(path)
	if err != nil {
		return logging.Discard()
	}
	return logger
}
