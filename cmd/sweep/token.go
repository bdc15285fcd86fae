package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bookfeed/internal/config"
	"bookfeed/internal/platform/crypto"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the internal job endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnvFiles()
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, jti, err := crypto.GenerateToken(secret, subject, role, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{
				"token":      token,
				"jti":        jti,
				"expires_at": time.Now().Add(ttl).UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cron", "token subject")
	cmd.Flags().StringVar(&role, "role", crypto.RoleAdmin, "token role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
