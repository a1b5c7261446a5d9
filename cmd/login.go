package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/nudge/internal/calendar"
)

var (
	loginClientID string
	loginTenantID string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Microsoft 365 for calendar-aware prompting",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginClientID, "client-id", calendar.DefaultClientID, "Azure application (client) ID")
	loginCmd.Flags().StringVar(&loginTenantID, "tenant", calendar.DefaultTenantID, "Azure tenant ID")
}

func runLogin(cmd *cobra.Command, args []string) error {
	tokenPath, err := calendar.DefaultTokenPath()
	if err != nil {
		return fmt.Errorf("resolving token path: %w", err)
	}

	source := calendar.NewGraphSource(loginClientID, loginTenantID, tokenPath, newLogger())
	if err := source.Login(context.Background(), os.Stdout); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("Signed in. Calendar busy blocks will now inform prompting.")
	return nil
}
