// Package cmd provides CLI commands for densho-reconcile.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/config"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/db"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/pathutil"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "densho-reconcile",
	Short: "Check that every taxed journal entry has a retained document",
	Long: `densho-reconcile is a CLI tool that reconciles a Money Forward
journal export (仕訳帳 CSV) against captured invoices and receipts.

It supports:
- Importing Shift-JIS journal exports
- Matching taxed transactions to invoices by amount or counterparty
- Managing the local invoice database
- Saving monthly reconciliation reports and database backups
- Generating the 事務処理規程 (internal retention rules) document

Example:
  densho-reconcile reconcile --journal 仕訳帳_202504.csv --save
  densho-reconcile invoice add --date 2025-04-02 --amount 5000 --counterparty Acme
  densho-reconcile stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(regulationCmd)
}

// loadConfig loads and validates configuration.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	err = cfg.Validate([]string{"storage", "root"})
	exitOnError(err, "invalid configuration")

	if cfg.Debug && !debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	return cfg
}

// newPathResolver builds the path resolver from the storage configuration.
func newPathResolver(cfg *config.Config) *pathutil.PathResolver {
	return pathutil.New(pathutil.Config{
		Root:         cfg.Storage.Root,
		DatabasePath: cfg.Storage.DBPath,
		ReportsDir:   cfg.Storage.ReportsDir,
	})
}

// openDatabase resolves paths and opens the invoice database.
func openDatabase(cfg *config.Config) (*pathutil.PathResolver, *db.Connection) {
	pathResolver := newPathResolver(cfg)

	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")

	return pathResolver, conn
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
