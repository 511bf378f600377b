// Package cli implements the command-line surface of the gradebook: CRUD
// verbs over the journal entities, the report catalog, migrations, and the
// fixture seeder.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gradebook-hub/gradebook/internal/application/command"
	"github.com/gradebook-hub/gradebook/internal/application/query"
	"github.com/gradebook-hub/gradebook/internal/domain/journal"
	"github.com/gradebook-hub/gradebook/internal/domain/report"
	"github.com/gradebook-hub/gradebook/internal/infrastructure/persistence/sqlstore"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// App wires the application services to the terminal.
type App struct {
	commands *command.Service
	queries  *query.Service
	migrator *sqlstore.Migrator
	out      io.Writer
	logger   *slog.Logger
}

// NewApp creates the CLI application.
func NewApp(commands *command.Service, queries *query.Service, migrator *sqlstore.Migrator, out io.Writer, logger *slog.Logger) *App {
	return &App{
		commands: commands,
		queries:  queries,
		migrator: migrator,
		out:      out,
		logger:   logger,
	}
}

// Run dispatches one invocation. args is the argument vector without the
// program name. Returned errors are already user-readable; main only has to
// print them and exit non-zero.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return errors.New("no command given")
	}

	verb, rest := args[0], args[1:]
	switch verb {
	case "create", "list", "update", "remove":
		action, err := command.ParseAction(verb)
		if err != nil {
			return err
		}
		return a.runCrud(ctx, action, rest)
	case "report":
		return a.runReport(ctx, rest)
	case "migrate":
		return a.runMigrate(ctx, rest)
	case "seed":
		return a.runSeed(ctx, rest)
	case "help", "-h", "--help":
		a.printUsage()
		return nil
	default:
		a.printUsage()
		return fmt.Errorf("%w: %q", journal.ErrUnknownAction, verb)
	}
}

func (a *App) printUsage() {
	fmt.Fprint(a.out, `Usage:
  gradebook <create|list|update|remove> <teacher|student|group|subject|grade> [flags]
  gradebook report <number> [flags]
  gradebook report --list
  gradebook migrate [--rollback|--status]
  gradebook seed [flags]

Record flags:
  --id          record id (update, remove)
  --name        name (teacher, student, group, subject)
  --group_id    group id (student)
  --teacher_id  teacher id (subject)
  --student_id  student id (grade)
  --subject_id  subject id (grade)
  --grade       grade value, 0..100 (grade)
  --date_of     grade date, YYYY-MM-DD (grade)

Report flags:
  --teacher_id --group_id --student_id --subject_id as each report requires
`)
}

// ─────────────────────────────────────────────────────────────────────────────
// Shared helpers
// ─────────────────────────────────────────────────────────────────────────────

// userError converts a domain failure to its terminal message. Errors outside
// the domain taxonomy pass through unchanged.
func userError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, journal.ErrUnknownEntity),
		errors.Is(err, journal.ErrUnknownAction),
		errors.Is(err, journal.ErrNotFound),
		errors.Is(err, journal.ErrValidation),
		errors.Is(err, journal.ErrConstraint),
		errors.Is(err, report.ErrUnknownReport),
		errors.Is(err, report.ErrMissingArgument):
		return err
	default:
		return fmt.Errorf("command failed: %w", err)
	}
}
