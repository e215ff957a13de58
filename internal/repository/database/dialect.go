package database

import (
	"strconv"
	"strings"
)

// dialect holds the few places where postgres and sqlite SQL differ.
type dialect struct {
	name       Driver
	driverName string // name registered with database/sql

	idType   string
	nameType string
	timeType string

	// columnExists counts rows for (table, column). Written with ? placeholders.
	columnExists string

	numberedParams bool // $1, $2 … instead of ?
}

var dialects = map[Driver]dialect{
	Postgres: {
		name:       Postgres,
		driverName: "postgres",
		idType:     "UUID",
		nameType:   "VARCHAR(255)",
		timeType:   "TIMESTAMPTZ",
		columnExists: `SELECT COUNT(*) FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`,
		numberedParams: true,
	},
	SQLite: {
		name:         SQLite,
		driverName:   "sqlite",
		idType:       "TEXT",
		nameType:     "TEXT",
		timeType:     "DATETIME",
		columnExists: `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
	},
}

// rebind rewrites ? placeholders into the dialect's form.
func (d dialect) rebind(query string) string {
	if !d.numberedParams {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// quoteIdent double-quotes an identifier. Table and timestamp column names
// are mixed-case, and postgres folds unquoted identifiers to lower case.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
