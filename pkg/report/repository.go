package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/pathutil"
	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/reconcile"
)

// Repository defines the interface for report file operations.
type Repository interface {
	// Save writes the month's report, replacing any earlier one, and returns its path
	Save(yearMonth string, results []reconcile.Result) (string, error)

	// Read reads a month's report; a missing report yields ""
	Read(yearMonth string) (string, error)

	// Exists checks if a month's report exists
	Exists(yearMonth string) bool
}

// FileSystemRepository is a file system implementation of Repository.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
}

// NewFileSystemRepository creates a new FileSystemRepository.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
	}
}

// Save writes the month's report as CSV.
func (r *FileSystemRepository) Save(yearMonth string, results []reconcile.Result) (string, error) {
	filePath, err := r.pathResolver.GetReportPath(yearMonth)
	if err != nil {
		return "", fmt.Errorf("failed to get report path: %w", err)
	}

	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return "", fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, results); err != nil {
		return "", err
	}

	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// Read reads the content of a month's report.
func (r *FileSystemRepository) Read(yearMonth string) (string, error) {
	filePath, err := r.pathResolver.GetReportPath(yearMonth)
	if err != nil {
		return "", fmt.Errorf("failed to get report path: %w", err)
	}

	if !r.pathResolver.FileExists(filePath) {
		return "", nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return string(data), nil
}

// Exists checks if a month's report exists.
func (r *FileSystemRepository) Exists(yearMonth string) bool {
	filePath, err := r.pathResolver.GetReportPath(yearMonth)
	if err != nil {
		return false
	}

	return r.pathResolver.FileExists(filePath)
}
