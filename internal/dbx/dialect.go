package dbx

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect names a database/sql driver the repositories know how to talk to.
// The value doubles as the driver name passed to sql.Open and goose.
type Dialect string

const (
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite"
)

var pgPlaceholder = regexp.MustCompile(`\$(\d+)`)

// ParseDialect validates a configured driver name.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(name)); d {
	case Postgres, SQLite:
		return d, nil
	case "postgres", "postgresql":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", name)
}

// Rebind rewrites PostgreSQL-style $N placeholders for the dialect.
// SQLite understands ?N, so argument order is kept as is.
func (d Dialect) Rebind(query string) string {
	if d != SQLite {
		return query
	}
	return pgPlaceholder.ReplaceAllString(query, "?$1")
}

// UniqueViolation reports whether err is a unique-constraint failure and, if
// so, names what was violated: the constraint name on PostgreSQL, the
// "table.column" list on SQLite. Offending values are never included.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		code := sqErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqErr.Error(), "UNIQUE")) {
			return sqliteUniqueColumns(sqErr.Error()), true
		}
	}

	return "", false
}

// sqliteUniqueColumns extracts "t.a, t.b" from messages shaped like
// "... UNIQUE constraint failed: t.a, t.b (2067)".
func sqliteUniqueColumns(msg string) string {
	const marker = "UNIQUE constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	cols := msg[i+len(marker):]
	if j := strings.LastIndex(cols, " ("); j >= 0 && strings.HasSuffix(cols, ")") {
		cols = cols[:j]
	}
	return strings.TrimSpace(cols)
}
