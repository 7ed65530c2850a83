package main

import (
	"fmt"

	"github.com/sangkips/billing-api/internal/infrastructure/database"
	"github.com/sangkips/billing-api/internal/logger"
	"github.com/sangkips/billing-api/pkg/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.WithComponent("migrate").Info().Msg("schema is up to date")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default service catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			created, err := database.SeedServices(db)
			if err != nil {
				return err
			}
			cmd.Printf("%d services created\n", created)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var subject, email string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an administrator access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours).GenerateToken(subject, email)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "admin", "Token subject")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Administrator email")
	return cmd
}

func openDatabase() (*gorm.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return database.Open(&cfg.Database, cfg.App.Debug)
}
