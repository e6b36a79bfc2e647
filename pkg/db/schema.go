// Package db provides SQLite storage for captured invoice records.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Captured source documents (請求書・領収書 etc.)
CREATE TABLE IF NOT EXISTS invoices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_date TEXT NOT NULL,    -- YYYY-MM-DD
    amount INTEGER NOT NULL,           -- tax inclusive
    currency TEXT NOT NULL DEFAULT 'JPY',
    counterparty TEXT NOT NULL,
    document_type TEXT NOT NULL,       -- invoice, receipt, quotation, ...
    drive_file_id TEXT NOT NULL DEFAULT '',
    drive_file_name TEXT NOT NULL DEFAULT '',
    drive_folder TEXT NOT NULL DEFAULT '',
    extracted_data TEXT NOT NULL DEFAULT '',
    gmail_message_id TEXT UNIQUE,      -- NULL for manual entries
    source_type TEXT NOT NULL DEFAULT 'manual',
    memo TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,          -- RFC3339
    updated_at TEXT NOT NULL           -- RFC3339
);

CREATE INDEX IF NOT EXISTS idx_invoices_date
    ON invoices(transaction_date);

CREATE INDEX IF NOT EXISTS idx_invoices_amount
    ON invoices(amount);

CREATE INDEX IF NOT EXISTS idx_invoices_counterparty
    ON invoices(counterparty);

-- Key-value metadata (last reconcile / backup timestamps)
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.db.Exec(Schema); err != nil {
		return err
	}
	return nil
}
