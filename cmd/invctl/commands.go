package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go-inventory-ledger/internal/app"
	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := load()
		if err != nil {
			return err
		}
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the system actor and the first admin",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := start(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "system actor: %s (%s)\n", a.Actors.System.Email, a.Actors.System.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "admin:        %s (%s)\n", a.Actors.Admin.Email, a.Actors.Admin.ID)
		return nil
	},
}

var tokenEmail string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an existing user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenEmail == "" {
			return errors.New("--email is required")
		}
		a, err := start(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.Config.JWTSecret == "" {
			return errors.New("JWT_SECRET is required")
		}

		user, err := a.UserRepo.FindByEmail(cmd.Context(), strings.ToLower(tokenEmail))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s not found", tokenEmail)
		}
		if err != nil {
			return err
		}
		if !user.IsActive {
			return fmt.Errorf("user %s is inactive", tokenEmail)
		}

		token, err := a.Tokens.GenerateToken(user.ID, user.Email, string(user.Role))
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Build the stock digest and send it to the configured channels",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := start(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		digest, err := a.Digest.Run(cmd.Context(), a.Actors.System.Actor())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), digest.Message().Body)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email of the user to issue the token for")
}

func load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

func start(ctx context.Context) (*app.App, error) {
	cfg, log, err := load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, log)
}
