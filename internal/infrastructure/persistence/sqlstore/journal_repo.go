package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gradebook-hub/gradebook/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOURNAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// JournalRepository implements journal.Repository for both backends. All SQL
// is built from the kinds' static column sets; there is no reflection.
type JournalRepository struct {
	store *Store
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(store *Store) *JournalRepository {
	return &JournalRepository{store: store}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Insert persists a new row and returns its generated id.
func (r *JournalRepository) Insert(ctx context.Context, kind journal.Kind, fields journal.FieldBag) (int64, error) {
	cols, vals := r.splitBag(kind, fields)
	if len(cols) == 0 {
		return 0, fmt.Errorf("%w: no fields supplied", journal.ErrValidation)
	}

	var id int64
	err := r.store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = r.insertRow(ctx, tx, kind, cols, vals)
		return err
	})
	if err != nil {
		return 0, mapWriteError(err, journal.ErrValidation, fmt.Sprintf("failed to create %s", kind))
	}
	return id, nil
}

func (r *JournalRepository) insertRow(ctx context.Context, tx *sql.Tx, kind journal.Kind, cols []string, vals []any) (int64, error) {
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		tableRef(kind),
		strings.Join(cols, ", "),
		placeholders(len(cols)),
	)

	if r.store.dialect == DialectPostgres {
		var id int64
		err := tx.QueryRowContext(ctx, r.store.dialect.rebind(query+" RETURNING id"), vals...).Scan(&id)
		return id, err
	}

	res, err := tx.ExecContext(ctx, query, vals...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetByID returns one row as a field map.
func (r *JournalRepository) GetByID(ctx context.Context, kind journal.Kind, id int64) (journal.Record, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = ?",
		r.selectList(kind),
		tableRef(kind),
	)

	row := r.store.db.QueryRowContext(ctx, r.store.dialect.rebind(query), id)
	rec, err := scanRecord(kind, row)
	if IsNoRows(err) {
		return nil, fmt.Errorf("%w: %s with id %d", journal.ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s by id: %w", kind, err)
	}
	return rec, nil
}

// List returns every row of the kind in insertion order.
func (r *JournalRepository) List(ctx context.Context, kind journal.Kind) ([]journal.Record, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY id",
		r.selectList(kind),
		tableRef(kind),
	)

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer rows.Close()

	var records []journal.Record
	for rows.Next() {
		rec, err := scanRecord(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateFields applies only the supplied fields to the row.
func (r *JournalRepository) UpdateFields(ctx context.Context, kind journal.Kind, id int64, fields journal.FieldBag) error {
	cols, vals := r.splitBag(kind, fields)
	if len(cols) == 0 {
		return fmt.Errorf("%w: no fields supplied", journal.ErrValidation)
	}

	set := make([]string, len(cols))
	for i, col := range cols {
		set[i] = col + " = ?"
	}
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = ?",
		tableRef(kind),
		strings.Join(set, ", "),
	)

	err := r.store.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.store.dialect.rebind(query), append(vals, id)...)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s with id %d", journal.ErrNotFound, kind, id)
		}
		return nil
	})
	if err != nil {
		return mapWriteError(err, journal.ErrValidation, fmt.Sprintf("failed to update %s", kind))
	}
	return nil
}

// Delete removes the row. Deletes with dependents are blocked by the schema's
// foreign keys and surface as journal.ErrConstraint.
func (r *JournalRepository) Delete(ctx context.Context, kind journal.Kind, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", tableRef(kind))

	err := r.store.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.store.dialect.rebind(query), id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s with id %d", journal.ErrNotFound, kind, id)
		}
		return nil
	})
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s with id %d still has dependent records", journal.ErrConstraint, kind, id)
		}
		return mapWriteError(err, journal.ErrConstraint, fmt.Sprintf("failed to delete %s", kind))
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// tableRef quotes the relation name; "groups" collides with a window-frame
// keyword on both backends.
func tableRef(kind journal.Kind) string {
	return `"` + kind.Table() + `"`
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// splitBag flattens a field bag into parallel column and value slices in the
// kind's declaration order, encoding values for the active dialect.
func (r *JournalRepository) splitBag(kind journal.Kind, fields journal.FieldBag) ([]string, []any) {
	var cols []string
	var vals []any
	for _, col := range kind.Columns() {
		if col.Type == journal.ColID {
			continue
		}
		value, ok := fields[col.Name]
		if !ok {
			continue
		}
		cols = append(cols, col.Name)
		vals = append(vals, r.encodeValue(col, value))
	}
	return cols, vals
}

// encodeValue converts a bag value for the active backend. PostgreSQL needs a
// real time.Time for DATE columns; SQLite keeps the ISO string.
func (r *JournalRepository) encodeValue(col journal.Column, value any) any {
	if col.Type != journal.ColDate || r.store.dialect != DialectPostgres {
		return value
	}
	s, ok := value.(string)
	if !ok {
		return value
	}
	t, err := time.Parse(journal.DateFormat, s)
	if err != nil {
		return value
	}
	return t
}

// selectList renders the kind's columns, with date columns forced to ISO
// strings.
func (r *JournalRepository) selectList(kind journal.Kind) string {
	cols := kind.Columns()
	parts := make([]string, len(cols))
	for i, col := range cols {
		if col.Type == journal.ColDate {
			parts[i] = r.store.dialect.dateExpr(col.Name)
			continue
		}
		parts[i] = col.Name
	}
	return strings.Join(parts, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans one row into a field map using the kind's static column
// types.
func scanRecord(kind journal.Kind, row rowScanner) (journal.Record, error) {
	cols := kind.Columns()
	ints := make([]int64, len(cols))
	texts := make([]string, len(cols))
	targets := make([]any, len(cols))
	for i, col := range cols {
		switch col.Type {
		case journal.ColID, journal.ColInt:
			targets[i] = &ints[i]
		default:
			targets[i] = &texts[i]
		}
	}

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}

	rec := make(journal.Record, len(cols))
	for i, col := range cols {
		switch col.Type {
		case journal.ColID, journal.ColInt:
			rec[col.Name] = ints[i]
		default:
			rec[col.Name] = texts[i]
		}
	}
	return rec, nil
}

// mapWriteError converts backend constraint failures to domain errors; raw
// driver errors never leave the persistence layer unclassified.
func mapWriteError(err error, integrityErr error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errorsIsDomain(err):
		return err
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: referenced record does not exist", integrityErr)
	case IsCheckViolation(err):
		return fmt.Errorf("%w: value rejected by schema constraint", journal.ErrValidation)
	case IsNotNullViolation(err):
		return fmt.Errorf("%w: required field missing", journal.ErrValidation)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func errorsIsDomain(err error) bool {
	for _, domainErr := range []error{
		journal.ErrNotFound,
		journal.ErrValidation,
		journal.ErrConstraint,
	} {
		if errors.Is(err, domainErr) {
			return true
		}
	}
	return false
}

// Ensure interfaces are implemented.
var _ journal.Repository = (*JournalRepository)(nil)
