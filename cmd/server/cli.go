package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"civicdesk/internal/conf"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "civicdesk",
	Short: "CivicDesk audit trail and notification service",
	Long:  `The main entry point for the CivicDesk audit trail and real-time notification service.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*conf.AppConfig, error) {
	confFile, _ := cmd.Flags().GetString("config")
	appConfig, err := conf.NewConfig(confFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	port, _ := cmd.Flags().GetInt("port")
	if port > 0 {
		appConfig.Port = port
	}

	return appConfig, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP, WebSocket and health server",
	Long:  `Starts the admin API, the WebSocket fan-out, the gRPC health endpoint and the background workers.`,
	Run: func(cmd *cobra.Command, args []string) {
		appConfig, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		app, cleanup, err := InitializeServer(appConfig)
		if err != nil {
			log.Fatalf("failed to init server: %v", err)
		}
		defer cleanup()

		if err := app.Run(); err != nil {
			cleanup()
			log.Fatalf("failed to run server: %v", err)
		}
	},
}

var purgeCmd = &cobra.Command{
	Use:   "audit:purge",
	Short: "Deletes audit logs older than a number of days",
	Long:  `Runs one retention purge. Without --days the configured retention horizon is used.`,
	Run: func(cmd *cobra.Command, args []string) {
		appConfig, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 && appConfig.AuditConfig != nil {
			days = appConfig.AuditConfig.RetentionDays
		}

		auditLogic, cleanup, err := InitializeAuditQueryLogic(appConfig)
		if err != nil {
			log.Fatalf("failed to init audit logic: %v", err)
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		deleted, err := auditLogic.PurgeOlderThan(ctx, days)
		if err != nil {
			cleanup()
			log.Fatalf("purge failed: %v", err)
		}
		fmt.Printf("deleted %d audit logs\n", deleted)
	},
}

func init() {
	purgeCmd.Flags().Int("days", 0, "Delete records older than this many days")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.PersistentFlags().IntP("port", "p", 0, "Port for the server to listen on, overrides the value in the config file")
	rootCmd.PersistentFlags().StringP("config", "c", "internal/conf/config.yaml", "path to config file")
}
