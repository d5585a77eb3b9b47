// ABOUTME: CLI commands for linking a Garmin Connect account.
// ABOUTME: login prints the consent URL or completes the code exchange; refresh renews tokens.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/coach/internal/config"
	"github.com/spf13/cobra"
)

var authCode string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Link and manage your Garmin Connect account",
	Long: `Link a Garmin Connect account with OAuth2.

SETUP:

  export GARMIN_CLIENT_ID=...
  export GARMIN_CLIENT_SECRET=...
  export GARMIN_OAUTH_AUTHORIZE_URL=...
  export GARMIN_OAUTH_TOKEN_URL=...
  export GARMIN_USERINFO_URL=...
  export GARMIN_REDIRECT_URI=...

WORKFLOW:

  1. coach auth login              # open the printed URL and approve
  2. coach auth login --code XYZ   # paste the code from the redirect
  3. coach sync`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start or complete Garmin login",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authCode == "" {
			url, err := svc.AuthorizeURL()
			if err != nil {
				return hinted(err)
			}
			fmt.Println("Open this URL to authorize coach:")
			fmt.Println()
			fmt.Println("  " + url)
			fmt.Println()
			fmt.Println("Then run: coach auth login --code <code>")
			return nil
		}

		u, err := svc.CompleteLogin(cmd.Context(), authCode)
		if err != nil {
			return hinted(err)
		}
		if err := config.SaveDefaultUser(u.ID.String()); err != nil {
			color.Yellow("⚠ Could not save default user: %v", err)
		}
		color.Green("✓ Linked Garmin account %s", u.GarminUserID)
		fmt.Printf("  User: %s\n", u.ID)
		fmt.Printf("  Token expires: %s\n", u.TokenExpiresAt.Local().Format(time.RFC1123))
		return nil
	},
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the stored Garmin tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		u, err = svc.RefreshUser(cmd.Context(), u.ID.String())
		if err != nil {
			return hinted(err)
		}
		color.Green("✓ Tokens refreshed")
		fmt.Printf("  Expires: %s\n", u.TokenExpiresAt.Local().Format(time.RFC1123))
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Garmin link status",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("User:      %s\n", u.ID)
		fmt.Printf("Garmin ID: %s\n", u.GarminUserID)
		switch {
		case u.AccessToken == "" && u.RefreshToken == "":
			fmt.Println("Status:    " + color.YellowString("not linked"))
		case u.TokenExpired(svc.Now()):
			fmt.Println("Status:    " + color.YellowString("token expired (refreshed on next sync)"))
		default:
			fmt.Println("Status:    " + color.GreenString("linked"))
			fmt.Printf("Expires:   %s\n", u.TokenExpiresAt.Local().Format(time.RFC1123))
		}
		if u.LastSyncAt != nil {
			fmt.Printf("Last sync: %s\n", u.LastSyncAt.Local().Format(time.RFC1123))
		}
		if cfg.Garmin.ClientID == "" {
			color.Yellow("⚠ GARMIN_CLIENT_ID is not set; sync and upload are disabled")
		}
		return nil
	},
}

func init() {
	authLoginCmd.Flags().StringVar(&authCode, "code", "", "authorization code from the redirect")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRefreshCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
