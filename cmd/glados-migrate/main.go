package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/ethereum/glados/pkg/repository/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "glados-migrate",
	Short: "Apply or inspect the Glados repository schema",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := open(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.Up(db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		fmt.Println("migrations applied")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the applied/pending state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := open(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		return migrations.Status(db)
	},
}

func open(cmd *cobra.Command) (*sql.DB, error) {
	databaseURL, _ := cmd.Flags().GetString("database-url")
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required (--database-url or $DATABASE_URL)")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "repository connection string (falls back to $DATABASE_URL)")
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(statusCmd)
}
