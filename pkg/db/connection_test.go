package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	boom := errors.New("boom")
	err := conn.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO metadata (key, value, updated_at) VALUES ('k', 'v', 'now')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction() error = %v, expected boom", err)
	}

	value, err := conn.GetMetadata(ctx, "k")
	if err != nil || value != "" {
		t.Errorf("rolled back write is visible: %q, %v", value, err)
	}
}

func TestMetadata(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	if err := conn.SetMetadata(ctx, MetaLastBackupAt, "first"); err != nil {
		t.Fatal(err)
	}
	if err := conn.SetMetadata(ctx, MetaLastBackupAt, "second"); err != nil {
		t.Fatal(err)
	}

	value, err := conn.GetMetadata(ctx, MetaLastBackupAt)
	if err != nil || value != "second" {
		t.Errorf("GetMetadata() = %q, %v; expected %q", value, err, "second")
	}
}

func TestBackup(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := NewInvoiceStore(conn)

	if _, err := store.Add(ctx, sample("2025-04-02", 5000, "Acme")); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "backups", "snapshot.db")
	if err := conn.Backup(ctx, dest); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if err := conn.Backup(ctx, dest); err == nil {
		t.Errorf("Backup() over an existing file should fail")
	}

	snapshot, err := Open(dest)
	if err != nil {
		t.Fatalf("Open(snapshot) error = %v", err)
	}
	defer snapshot.Close()

	invoices, err := NewInvoiceStore(snapshot).Search(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 1 || invoices[0].Counterparty != "Acme" {
		t.Errorf("snapshot contents = %+v", invoices)
	}
}
