package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"runcohorts/internal/auth"
	"runcohorts/internal/store"
)

func newLoginCommand() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Connect runcohorts to your Strava account",
		Long: `Open Strava's authorization page and wait for the redirect on a local
callback server. With --code, exchange an authorization code copied from the
redirect URL instead (useful when the browser runs on another machine).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			oauthCfg, err := e.oauthConfig()
			if err != nil {
				return err
			}

			var grant *auth.Grant
			if code != "" {
				grant, err = auth.Exchange(cmd.Context(), oauthCfg, code)
			} else {
				grant, err = auth.Login(cmd.Context(), oauthCfg, e.callbackPort(), cmd.OutOrStdout())
			}
			if err != nil {
				return fmt.Errorf("authentication: %w", err)
			}

			if err := e.db.SaveAuth(&store.Auth{
				AthleteID:    grant.AthleteID,
				AccessToken:  grant.Token.AccessToken,
				RefreshToken: grant.Token.RefreshToken,
				ExpiresAt:    grant.Token.Expiry,
			}); err != nil {
				return fmt.Errorf("saving auth: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nSuccessfully authenticated as athlete %d!\n", grant.AthleteID)
			fmt.Fprintln(cmd.OutOrStdout(), "Run 'runcohorts sync' to fetch your workouts.")
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the Strava redirect URL")

	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored Strava tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.db.DeleteAuth(); err != nil {
				return fmt.Errorf("deleting auth: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out. Synced workouts are kept.")
			return nil
		},
	}
}
