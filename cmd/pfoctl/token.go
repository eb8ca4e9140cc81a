package main

import (
	"fmt"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for local development",
	Long: `Signs an access token with the configured jwt.secret and issuer.

Production tokens come from the identity provider; this command exists so
the API can be exercised locally and in smoke tests.`,
	Example: `  pfoctl token --roles admin
  pfoctl token --user 6f1c... --username clerk --ttl 8h`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("user", "", "User ID (default: random)")
	tokenCmd.Flags().String("username", "dev", "Username claim")
	tokenCmd.Flags().StringSlice("roles", []string{"staff"}, "Role claims")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to mint tokens in production")
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is not configured")
	}

	userID := uuid.New()
	if raw, _ := cmd.Flags().GetString("user"); raw != "" {
		if userID, err = uuid.Parse(raw); err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
	}
	username, _ := cmd.Flags().GetString("username")
	roles, _ := cmd.Flags().GetStringSlice("roles")
	if ttl, _ := cmd.Flags().GetDuration("ttl"); ttl > 0 {
		cfg.JWT.AccessTokenExpiration = ttl
	}

	token, expiresAt, err := auth.NewJWTService(cfg.JWT).GenerateAccessToken(auth.GenerateTokenInput{
		UserID:   userID,
		Username: username,
		Roles:    roles,
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintf(cmd.ErrOrStderr(), "user %s, roles %v, expires %s\n", userID, roles, expiresAt.Format(time.RFC3339))
	return nil
}
