package database

import (
	"context"
	"fmt"

	"github.com/mohamedamineameur/renderback/internal/model"
)

// epoch backfills timestamp columns added to tables that already hold rows.
// SQLite refuses non-constant defaults in ALTER TABLE, so this is a literal.
const epoch = "'1970-01-01 00:00:00'"

// column is one non-key column of a record table, with the definition used
// when it has to be added to an existing table.
type column struct {
	name string
	add  func(d dialect) string
}

var recordColumns = []column{
	{name: "name", add: func(d dialect) string { return d.nameType + " NOT NULL DEFAULT ''" }},
	{name: "createdAt", add: func(d dialect) string { return d.timeType + " NOT NULL DEFAULT " + epoch }},
	{name: "updatedAt", add: func(d dialect) string { return d.timeType + " NOT NULL DEFAULT " + epoch }},
}

// Sync brings the live schema in line with the declared record shape.
//
// It is additive only: missing tables are created and missing columns are
// added, but nothing is dropped or retyped, so existing rows survive.
// Running it any number of times leaves the schema unchanged after the first.
func (db *DB) Sync(ctx context.Context) error {
	for _, kind := range model.Kinds {
		if err := db.syncTable(ctx, kind); err != nil {
			return fmt.Errorf("database: syncing %s: %w", kind.Table, err)
		}
	}
	return nil
}

func (db *DB) syncTable(ctx context.Context, kind model.Kind) error {
	d := db.dialect
	_, err := db.conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          %s PRIMARY KEY,
			name        %s NOT NULL,
			"createdAt" %s NOT NULL,
			"updatedAt" %s NOT NULL
		)`,
		quoteIdent(kind.Table), d.idType, d.nameType, d.timeType, d.timeType,
	))
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	for _, col := range recordColumns {
		if err := db.addColumnIfNotExists(ctx, kind.Table, col.name, col.add(d)); err != nil {
			return fmt.Errorf("adding column %s: %w", col.name, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
func (db *DB) addColumnIfNotExists(ctx context.Context, table, column, definition string) error {
	exists, err := db.columnExists(ctx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = db.conn.ExecContext(ctx, fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, quoteIdent(table), quoteIdent(column), definition,
	))
	return err
}

func (db *DB) columnExists(ctx context.Context, table, column string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, db.dialect.rebind(db.dialect.columnExists), table, column).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}
