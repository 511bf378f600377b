package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE JOURNAL
// ══════════════════════════════════════════════════════════════════════════════

// "groups" is quoted everywhere: it became a window-frame keyword in both
// backends.

var sqliteJournalUp = []string{
	`CREATE TABLE IF NOT EXISTS teachers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS "groups" (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS students (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    group_id INTEGER NOT NULL REFERENCES "groups"(id)
)`,
	`CREATE TABLE IF NOT EXISTS subjects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    teacher_id INTEGER NOT NULL REFERENCES teachers(id)
)`,
	`CREATE TABLE IF NOT EXISTS grades (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    student_id INTEGER NOT NULL REFERENCES students(id),
    subject_id INTEGER NOT NULL REFERENCES subjects(id),
    grade INTEGER NOT NULL CHECK (grade BETWEEN 0 AND 100),
    date_of TEXT NOT NULL
)`,
}

var postgresJournalUp = []string{
	`CREATE TABLE IF NOT EXISTS teachers (
    id SERIAL PRIMARY KEY,
    name VARCHAR(120) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS "groups" (
    id SERIAL PRIMARY KEY,
    name VARCHAR(120) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS students (
    id SERIAL PRIMARY KEY,
    name VARCHAR(120) NOT NULL,
    group_id INTEGER NOT NULL REFERENCES "groups"(id)
)`,
	`CREATE TABLE IF NOT EXISTS subjects (
    id SERIAL PRIMARY KEY,
    name VARCHAR(120) NOT NULL,
    teacher_id INTEGER NOT NULL REFERENCES teachers(id)
)`,
	`CREATE TABLE IF NOT EXISTS grades (
    id SERIAL PRIMARY KEY,
    student_id INTEGER NOT NULL REFERENCES students(id),
    subject_id INTEGER NOT NULL REFERENCES subjects(id),
    grade INTEGER NOT NULL CHECK (grade BETWEEN 0 AND 100),
    date_of DATE NOT NULL
)`,
}

// Dependents first.
var journalDown = []string{
	`DROP TABLE IF EXISTS grades`,
	`DROP TABLE IF EXISTS subjects`,
	`DROP TABLE IF EXISTS students`,
	`DROP TABLE IF EXISTS "groups"`,
	`DROP TABLE IF EXISTS teachers`,
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE INDEXES
// ══════════════════════════════════════════════════════════════════════════════

var journalIndexesUp = []string{
	`CREATE INDEX IF NOT EXISTS idx_students_group_id ON students(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_subjects_teacher_id ON subjects(teacher_id)`,
	`CREATE INDEX IF NOT EXISTS idx_grades_student_id ON grades(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_grades_subject_id ON grades(subject_id)`,
	// Covers the last-lesson anti-join.
	`CREATE INDEX IF NOT EXISTS idx_grades_student_subject_date ON grades(student_id, subject_id, date_of)`,
}

var journalIndexesDown = []string{
	`DROP INDEX IF EXISTS idx_grades_student_subject_date`,
	`DROP INDEX IF EXISTS idx_grades_subject_id`,
	`DROP INDEX IF EXISTS idx_grades_student_id`,
	`DROP INDEX IF EXISTS idx_subjects_teacher_id`,
	`DROP INDEX IF EXISTS idx_students_group_id`,
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents one versioned schema change as a list of statements,
// kept statement-by-statement because the postgres driver rejects
// multi-statement Exec calls.
type Migration struct {
	Version   int
	Name      string
	Up        []string
	Down      []string
	IsApplied bool
}

// GetMigrations returns the embedded migrations for a dialect.
func GetMigrations(d Dialect) []Migration {
	journalUp := sqliteJournalUp
	if d == DialectPostgres {
		journalUp = postgresJournalUp
	}
	return []Migration{
		{
			Version: 1,
			Name:    "create_journal",
			Up:      journalUp,
			Down:    journalDown,
		},
		{
			Version: 2,
			Name:    "create_indexes",
			Up:      journalIndexesUp,
			Down:    journalIndexesDown,
		},
	}
}

// Migrator applies and rolls back schema migrations.
type Migrator struct {
	store      *Store
	migrations []Migration
	tableName  string
}

// NewMigrator creates a migrator with the embedded migrations for the store's
// dialect.
func NewMigrator(store *Store) *Migrator {
	return &Migrator{
		store:      store,
		migrations: GetMigrations(store.dialect),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if missing.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL
)`, m.tableName)

	if _, err := m.store.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: create tracking table: %v", ErrMigrationFailed, err)
	}
	return nil
}

// GetAppliedMigrations returns the set of applied migration versions.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]bool, error) {
	query := fmt.Sprintf("SELECT version FROM %s", m.tableName)

	rows, err := m.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: read tracking table: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("%w: scan version: %v", ErrMigrationFailed, err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations in order, each in its own
// transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if applied[mig.Version] {
			continue
		}
		if len(mig.Up) == 0 {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.store.WithTx(ctx, func(tx *sql.Tx) error {
			for _, stmt := range mig.Up {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
				}
			}
			insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES (?, ?)", m.tableName)
			_, err := tx.ExecContext(ctx, m.store.dialect.rebind(insert), mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

// Rollback rolls back the last applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var lastVersion int
	for v := range applied {
		if v > lastVersion {
			lastVersion = v
		}
	}
	if lastVersion == 0 {
		return nil // nothing to roll back
	}

	var migration *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == lastVersion {
			migration = &m.migrations[i]
			break
		}
	}
	if migration == nil || len(migration.Down) == 0 {
		return fmt.Errorf("%w: missing down SQL for migration %d", ErrMigrationFailed, lastVersion)
	}

	return m.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range migration.Down {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to rollback migration %d: %w", lastVersion, err)
			}
		}
		del := fmt.Sprintf("DELETE FROM %s WHERE version = ?", m.tableName)
		_, err := tx.ExecContext(ctx, m.store.dialect.rebind(del), lastVersion)
		return err
	})
}

// Status returns every migration annotated with whether it is applied.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)
	for i := range result {
		result[i].IsApplied = applied[result[i].Version]
	}
	return result, nil
}
