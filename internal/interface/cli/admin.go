package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/gradebook-hub/gradebook/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATE AND SEED COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func (a *App) runMigrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rollback := fs.Bool("rollback", false, "roll back the last migration")
	status := fs.Bool("status", false, "show migration status")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse migrate flags: %w", err)
	}

	switch {
	case *status:
		migrations, err := a.migrator.Status(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(migrations))
		for _, m := range migrations {
			state := "pending"
			if m.IsApplied {
				state = "applied"
			}
			rows = append(rows, []string{strconv.Itoa(m.Version), m.Name, state})
		}
		renderTable(a.out, []string{"version", "name", "state"}, rows)
		return nil

	case *rollback:
		if err := a.migrator.Rollback(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Rolled back the last migration.")
		return nil

	default:
		if err := a.migrator.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Schema is up to date.")
		return nil
	}
}

func (a *App) runSeed(ctx context.Context, args []string) error {
	cfg := command.DefaultSeedConfig()

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&cfg.Groups, "groups", cfg.Groups, "groups to create")
	fs.IntVar(&cfg.Teachers, "teachers", cfg.Teachers, "teachers to create")
	fs.IntVar(&cfg.Subjects, "subjects", cfg.Subjects, "subjects to create")
	fs.IntVar(&cfg.Students, "students", cfg.Students, "students to create")
	fs.IntVar(&cfg.GradesPerStudent, "grades", cfg.GradesPerStudent, "grades per student")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "random seed (0 for nondeterministic)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse seed flags: %w", err)
	}

	a.logger.Info("seeding journal",
		"groups", cfg.Groups,
		"teachers", cfg.Teachers,
		"subjects", cfg.Subjects,
		"students", cfg.Students,
		"grades_per_student", cfg.GradesPerStudent,
	)

	result, err := a.commands.Seed(ctx, cfg)
	if err != nil {
		return userError(err)
	}

	fmt.Fprintf(a.out, "Seeded %d groups, %d teachers, %d subjects, %d students, %d grades.\n",
		result.Groups, result.Teachers, result.Subjects, result.Students, result.Grades)
	return nil
}
