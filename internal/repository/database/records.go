package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedamineameur/renderback/internal/apperror"
	"github.com/mohamedamineameur/renderback/internal/model"
	"github.com/mohamedamineameur/renderback/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// If *RecordTable ever stops satisfying either contract, the build breaks here
// rather than at the call site in server wiring.
var (
	_ repository.RecordRepository = (*RecordTable)(nil)
	_ repository.SeedRepository   = (*RecordTable)(nil)
)

const recordColumnList = `id, name, "createdAt", "updatedAt"`

// RecordTable is the repository for one collection. Livre and Couleur share
// the implementation; only the table name and the entity label differ.
type RecordTable struct {
	db   *DB
	kind model.Kind
}

// Records returns the repository for kind.
func (db *DB) Records(kind model.Kind) *RecordTable {
	return &RecordTable{db: db, kind: kind}
}

// Livres returns the Livre repository.
func (db *DB) Livres() *RecordTable {
	return db.Records(model.Livre)
}

// Couleurs returns the Couleur repository.
func (db *DB) Couleurs() *RecordTable {
	return db.Records(model.Couleur)
}

// query fills the table name into format and rewrites placeholders for the dialect.
func (t *RecordTable) query(format string) string {
	return t.db.dialect.rebind(fmt.Sprintf(format, quoteIdent(t.kind.Table)))
}

func (t *RecordTable) label() string {
	return strings.ToLower(t.kind.Name)
}

// Create inserts a new record. The ID is a random UUID generated here, not by
// the database, and the timestamps are set to now. Both are written back into
// the caller's struct.
func (t *RecordTable) Create(ctx context.Context, record *model.Record) error {
	record.ID = uuid.NewString()
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := t.db.conn.ExecContext(ctx,
		t.query(`INSERT INTO %s (`+recordColumnList+`) VALUES (?, ?, ?, ?)`),
		record.ID, record.Name, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating %s: %w", t.label(), apperror.StoreFailed(err))
	}
	return nil
}

// CreateBatch inserts all records in a single multi-row INSERT.
func (t *RecordTable) CreateBatch(ctx context.Context, records []*model.Record) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	tuples := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*4)
	for _, r := range records {
		r.ID = uuid.NewString()
		r.CreatedAt = now
		r.UpdatedAt = now
		tuples = append(tuples, "(?, ?, ?, ?)")
		args = append(args, r.ID, r.Name, r.CreatedAt, r.UpdatedAt)
	}

	_, err := t.db.conn.ExecContext(ctx,
		t.query(`INSERT INTO %s (`+recordColumnList+`) VALUES `+strings.Join(tuples, ", ")),
		args...,
	)
	if err != nil {
		return fmt.Errorf("creating %s batch: %w", t.label(), apperror.StoreFailed(err))
	}
	return nil
}

// GetByID retrieves a single record. sql.ErrNoRows becomes apperror.NotFound.
func (t *RecordTable) GetByID(ctx context.Context, id string) (*model.Record, error) {
	var r model.Record
	err := t.db.conn.QueryRowContext(ctx,
		t.query(`SELECT `+recordColumnList+` FROM %s WHERE id = ?`),
		id,
	).Scan(&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(t.kind.Name)
		}
		return nil, fmt.Errorf("getting %s %s: %w", t.label(), id, apperror.StoreFailed(err))
	}
	return &r, nil
}

// List returns every record in the order the store yields them.
// The result is never nil, so it encodes as [] rather than null.
func (t *RecordTable) List(ctx context.Context) ([]model.Record, error) {
	rows, err := t.db.conn.QueryContext(ctx, t.query(`SELECT `+recordColumnList+` FROM %s`))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.label(), apperror.StoreFailed(err))
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", t.label(), apperror.StoreFailed(err))
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", t.label(), apperror.StoreFailed(err))
	}

	return records, nil
}

// Update writes the record's name and bumps updatedAt. There is no version
// check: concurrent updates to the same row are last-write-wins.
// Zero affected rows means the id does not exist.
func (t *RecordTable) Update(ctx context.Context, record *model.Record) error {
	record.UpdatedAt = time.Now().UTC()

	result, err := t.db.conn.ExecContext(ctx,
		t.query(`UPDATE %s SET name = ?, "updatedAt" = ? WHERE id = ?`),
		record.Name, record.UpdatedAt, record.ID,
	)
	if err != nil {
		return fmt.Errorf("updating %s %s: %w", t.label(), record.ID, apperror.StoreFailed(err))
	}
	return t.requireAffected(result)
}

// Delete removes a record permanently.
func (t *RecordTable) Delete(ctx context.Context, id string) error {
	result, err := t.db.conn.ExecContext(ctx, t.query(`DELETE FROM %s WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", t.label(), id, apperror.StoreFailed(err))
	}
	return t.requireAffected(result)
}

// Count returns the number of rows in the collection.
func (t *RecordTable) Count(ctx context.Context) (int, error) {
	var n int
	if err := t.db.conn.QueryRowContext(ctx, t.query(`SELECT COUNT(*) FROM %s`)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", t.label(), apperror.StoreFailed(err))
	}
	return n, nil
}

func (t *RecordTable) requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", apperror.StoreFailed(err))
	}
	if n == 0 {
		return apperror.NotFound(t.kind.Name)
	}
	return nil
}
