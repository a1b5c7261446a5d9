package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/nudge/internal/schedule"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Turn tracking on or off",
	Args:  cobra.NoArgs,
	RunE:  runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	sched := schedule.New(st, newLogger(), nil)
	if sched.Toggle() {
		fmt.Println("Tracking is now ON")
	} else {
		fmt.Println("Tracking is now OFF")
	}
	return nil
}
