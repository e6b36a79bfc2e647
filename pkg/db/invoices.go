package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/densho-reconcile/pkg/invoice"
)

// ErrNotFound is returned when an invoice does not exist.
var ErrNotFound = errors.New("invoice not found")

const invoiceColumns = `id, transaction_date, amount, currency, counterparty, document_type,
	drive_file_id, drive_file_name, drive_folder, extracted_data, gmail_message_id,
	source_type, memo, created_at, updated_at`

// Filter narrows Search. Zero values are ignored.
// Transaction date, amount and counterparty are the search keys required for
// retained electronic transaction records.
type Filter struct {
	DateFrom     string // inclusive, YYYY-MM-DD
	DateTo       string // inclusive, YYYY-MM-DD
	AmountMin    *int64
	AmountMax    *int64
	Counterparty string // substring, case-insensitive for ASCII
	DocumentType invoice.DocumentType
	Limit        int
}

// Stats represents invoice store statistics.
type Stats struct {
	TotalInvoices   int
	ByDocumentType  map[invoice.DocumentType]int
	EarliestDate    sql.NullString
	LatestDate      sql.NullString
	LastReconcileAt string
	LastBackupAt    string
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// InvoiceStore manages invoice records.
type InvoiceStore struct {
	conn *Connection
	q    querier
}

// NewInvoiceStore creates a new InvoiceStore instance.
func NewInvoiceStore(conn *Connection) *InvoiceStore {
	return &InvoiceStore{conn: conn, q: conn.db}
}

func (s *InvoiceStore) withTx(tx *sql.Tx) *InvoiceStore {
	return &InvoiceStore{conn: s.conn, q: tx}
}

// Add validates and inserts an invoice, returning its ID.
func (s *InvoiceStore) Add(ctx context.Context, inv invoice.Invoice) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO invoices (transaction_date, amount, currency, counterparty, document_type,
			drive_file_id, drive_file_name, drive_folder, extracted_data, gmail_message_id,
			source_type, memo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	ts := now()
	result, err := s.q.ExecContext(ctx, query,
		inv.TransactionDate,
		inv.Amount,
		inv.CurrencyOrDefault(),
		inv.Counterparty,
		string(inv.DocumentType),
		inv.DriveFileID,
		inv.DriveFileName,
		inv.DriveFolder,
		inv.ExtractedData,
		nullString(inv.GmailMessageID),
		string(sourceOrDefault(inv.SourceType)),
		inv.Memo,
		ts,
		ts,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get invoice ID: %w", err)
	}

	return id, nil
}

// AddUnlessImported adds an invoice captured from a Gmail message unless that
// message was already imported. The check and the insert share one
// transaction. added is false when the message was skipped.
func (s *InvoiceStore) AddUnlessImported(ctx context.Context, inv invoice.Invoice) (id int64, added bool, err error) {
	if inv.GmailMessageID == "" {
		return 0, false, fmt.Errorf("%w: gmail message ID is required", invoice.ErrInvalid)
	}

	err = s.conn.Transaction(ctx, func(tx *sql.Tx) error {
		store := s.withTx(tx)

		exists, err := store.ExistsGmailMessage(ctx, inv.GmailMessageID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		id, err = store.Add(ctx, inv)
		if err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	return id, added, nil
}

// Get retrieves an invoice by ID.
func (s *InvoiceStore) Get(ctx context.Context, id int64) (*invoice.Invoice, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)

	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return inv, nil
}

// Update overwrites an existing invoice.
func (s *InvoiceStore) Update(ctx context.Context, inv invoice.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE invoices SET
			transaction_date = ?, amount = ?, currency = ?, counterparty = ?, document_type = ?,
			drive_file_id = ?, drive_file_name = ?, drive_folder = ?, extracted_data = ?,
			gmail_message_id = ?, source_type = ?, memo = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.q.ExecContext(ctx, query,
		inv.TransactionDate,
		inv.Amount,
		inv.CurrencyOrDefault(),
		inv.Counterparty,
		string(inv.DocumentType),
		inv.DriveFileID,
		inv.DriveFileName,
		inv.DriveFolder,
		inv.ExtractedData,
		nullString(inv.GmailMessageID),
		string(sourceOrDefault(inv.SourceType)),
		inv.Memo,
		now(),
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	return requireAffected(result, inv.ID)
}

// Delete deletes an invoice.
func (s *InvoiceStore) Delete(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	return requireAffected(result, id)
}

// Search returns the invoices matching f ordered by transaction date, then ID.
func (s *InvoiceStore) Search(ctx context.Context, f Filter) ([]invoice.Invoice, error) {
	var (
		where []string
		args  []interface{}
	)

	if f.DateFrom != "" {
		where = append(where, "transaction_date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		where = append(where, "transaction_date <= ?")
		args = append(args, f.DateTo)
	}
	if f.AmountMin != nil {
		where = append(where, "amount >= ?")
		args = append(args, *f.AmountMin)
	}
	if f.AmountMax != nil {
		where = append(where, "amount <= ?")
		args = append(args, *f.AmountMax)
	}
	if f.Counterparty != "" {
		where = append(where, "counterparty LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Counterparty)+"%")
	}
	if f.DocumentType != "" {
		where = append(where, "document_type = ?")
		args = append(args, string(f.DocumentType))
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY transaction_date, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search invoices: %w", err)
	}
	defer rows.Close()

	var invoices []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return invoices, nil
}

// ExistsGmailMessage checks if a Gmail message has already been imported.
func (s *InvoiceStore) ExistsGmailMessage(ctx context.Context, messageID string) (bool, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices WHERE gmail_message_id = ?`, messageID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check gmail message: %w", err)
	}

	return count > 0, nil
}

// Stats retrieves invoice statistics.
func (s *InvoiceStore) Stats(ctx context.Context) (*Stats, error) {
	stats := Stats{ByDocumentType: make(map[invoice.DocumentType]int)}

	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(transaction_date), MAX(transaction_date) FROM invoices`,
	).Scan(&stats.TotalInvoices, &stats.EarliestDate, &stats.LatestDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice count: %w", err)
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT document_type, COUNT(*) FROM invoices GROUP BY document_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count document types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var docType string
		var count int
		if err := rows.Scan(&docType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan document type count: %w", err)
		}
		stats.ByDocumentType[invoice.DocumentType(docType)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document types: %w", err)
	}

	if stats.LastReconcileAt, err = s.conn.GetMetadata(ctx, MetaLastReconcileAt); err != nil {
		return nil, err
	}
	if stats.LastBackupAt, err = s.conn.GetMetadata(ctx, MetaLastBackupAt); err != nil {
		return nil, err
	}

	return &stats, nil
}

// MonthlyTotal sums the amounts of invoices dated within yearMonth (YYYY-MM)
// and returns the sum with the number of invoices counted.
func (s *InvoiceStore) MonthlyTotal(ctx context.Context, yearMonth string) (total int64, count int, err error) {
	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		return 0, 0, fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}

	err = s.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM invoices
		WHERE transaction_date >= ? AND transaction_date <= ?`,
		yearMonth+"-01", yearMonth+"-31",
	).Scan(&total, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get monthly total: %w", err)
	}

	return total, count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*invoice.Invoice, error) {
	var (
		inv                  invoice.Invoice
		docType, sourceType  string
		gmailID              sql.NullString
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&inv.ID,
		&inv.TransactionDate,
		&inv.Amount,
		&inv.Currency,
		&inv.Counterparty,
		&docType,
		&inv.DriveFileID,
		&inv.DriveFileName,
		&inv.DriveFolder,
		&inv.ExtractedData,
		&gmailID,
		&sourceType,
		&inv.Memo,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	inv.DocumentType = invoice.DocumentType(docType)
	inv.SourceType = invoice.SourceType(sourceType)
	inv.GmailMessageID = gmailID.String
	inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	inv.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &inv, nil
}

func requireAffected(result sql.Result, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func sourceOrDefault(s invoice.SourceType) invoice.SourceType {
	if s == "" {
		return invoice.SourceManual
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
