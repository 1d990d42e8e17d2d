package cmd

import (
	"FamilyTime/middlewares"
	"FamilyTime/models"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <firebase-uid>",
	Short: "Issue a signed session token for local testing (AUTH_MODE=jwt)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		role, _ := cmd.Flags().GetString("role")
		switch role {
		case models.RoleParent, models.RoleChild, models.RoleVerifier:
		default:
			return fmt.Errorf("unknown role %q", role)
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := middlewares.IssueToken([]byte(cfg.JWTSecret), args[0], role, ttl, time.Now())
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("role", models.RoleParent, "Session role: parent, child or verifier")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
