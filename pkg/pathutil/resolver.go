// Package pathutil provides centralized path management for the invoice
// database, reconciliation reports and backups.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PathResolver manages paths for the database, reports and backups.
type PathResolver struct {
	root         string
	databasePath string
	reportsDir   string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// Root is the working directory for all data (e.g., ~/densho)
	Root string
	// DatabasePath is the path to the SQLite invoice database
	DatabasePath string
	// ReportsDir is the directory reconciliation reports are written to
	ReportsDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {Root}/.data/invoices.db
// If ReportsDir is empty, it defaults to {Root}/reports
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.Root, ".data", "invoices.db")
	}

	reportsDir := config.ReportsDir
	if reportsDir == "" {
		reportsDir = filepath.Join(config.Root, "reports")
	}

	return &PathResolver{
		root:         config.Root,
		databasePath: dbPath,
		reportsDir:   reportsDir,
	}
}

// GetRoot returns the working root directory.
func (p *PathResolver) GetRoot() string {
	return p.root
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetReportsDir returns the reports directory.
func (p *PathResolver) GetReportsDir() string {
	return p.reportsDir
}

// GetReportPath returns the reconciliation report path for a month.
// yearMonth should be in YYYY-MM format.
// Example: reports/2025/2025-04-reconcile.csv
func (p *PathResolver) GetReportPath(yearMonth string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}

	filename := fmt.Sprintf("%s-reconcile.csv", yearMonth)
	return filepath.Join(p.reportsDir, parts[0], filename), nil
}

// GetBackupPath returns the path of a database snapshot taken at t.
// Example: backups/invoices-20250401-093000.db
func (p *PathResolver) GetBackupPath(t time.Time) string {
	filename := fmt.Sprintf("invoices-%s.db", t.Format("20060102-150405"))
	return filepath.Join(p.root, "backups", filename)
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
