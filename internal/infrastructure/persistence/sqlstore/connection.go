// Package sqlstore implements the relational persistence layer for the
// gradebook journal. It speaks to PostgreSQL through the pgx stdlib driver and
// to embedded SQLite through modernc.org/sqlite; the backend is selected from
// the connection string alone.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMigrationFailed indicates a migration failure.
	ErrMigrationFailed = errors.New("sqlstore: migration failed")

	// ErrTransactionFailed indicates a transaction could not be started.
	ErrTransactionFailed = errors.New("sqlstore: transaction failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// DIALECTS
// ══════════════════════════════════════════════════════════════════════════════

// Dialect captures the few per-backend differences the store has to know
// about: placeholder style, date rendering, and how generated ids come back.
type Dialect int

const (
	// DialectSQLite is the embedded default backend.
	DialectSQLite Dialect = iota
	// DialectPostgres is the server backend.
	DialectPostgres
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// rebind rewrites ? placeholders to $1..$N for PostgreSQL. Queries are
// package constants and never carry a literal question mark.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// dateExpr renders a date column as an ISO-8601 string. SQLite already stores
// dates as TEXT; PostgreSQL needs an explicit conversion so the scan target
// can stay a plain string on both backends.
func (d Dialect) dateExpr(col string) string {
	if d == DialectPostgres {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col)
	}
	return col
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a relational database handle with its resolved dialect. It is
// acquired per invocation and released on return; nothing here is global.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the backing store described by dsn.
//
// postgres:// and postgresql:// URLs select PostgreSQL; anything else is
// treated as a SQLite database path (":memory:" included). An empty dsn
// falls back to the embedded default file.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source, dialect := resolveDSN(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", dialect, err)
	}

	if dialect == DialectSQLite && isMemoryDSN(source) {
		// A second pool connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s store: %w", dialect, err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

func resolveDSN(dsn string) (driver, source string, dialect Dialect) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dsn, DialectPostgres
	}

	if dsn == "" {
		dsn = "gradebook.db"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	// Referential integrity is off by default in SQLite.
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	return "sqlite", dsn, DialectSQLite
}

func isMemoryDSN(source string) bool {
	return strings.Contains(source, ":memory:") || strings.Contains(source, "mode=memory")
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the resolved backend dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// Transactions
// ─────────────────────────────────────────────────────────────────────────────

// WithTx executes fn within a transaction. The transaction is committed when
// fn returns nil, rolled back otherwise; on rollback the store is left exactly
// as it was before the call.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit error: %w", err)
	}

	return nil
}
