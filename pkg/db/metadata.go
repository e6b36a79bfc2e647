package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Metadata keys.
const (
	MetaLastReconcileAt = "last_reconcile_at"
	MetaLastBackupAt    = "last_backup_at"
)

// GetMetadata retrieves a metadata value. A missing key yields "".
func (c *Connection) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (c *Connection) SetMetadata(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO metadata (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := c.db.ExecContext(ctx, query, key, value, now()); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}

// now is the timestamp format stored in TEXT columns.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
