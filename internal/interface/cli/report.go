package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/gradebook-hub/gradebook/internal/application/query"
	"github.com/gradebook-hub/gradebook/internal/domain/report"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

func (a *App) runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	list := fs.Bool("list", false, "list the report catalog")
	var qargs query.Args
	fs.Int64Var(&qargs.TeacherID, "teacher_id", 0, "teacher id")
	fs.Int64Var(&qargs.GroupID, "group_id", 0, "group id")
	fs.Int64Var(&qargs.StudentID, "student_id", 0, "student id")
	fs.Int64Var(&qargs.SubjectID, "subject_id", 0, "subject id")

	// The report number precedes the flags: report 7 --group_id 1 ...
	var number int
	rest := args
	if len(rest) > 0 && rest[0] != "" && rest[0][0] != '-' {
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: %q is not a report number", report.ErrUnknownReport, rest[0])
		}
		number = n
		rest = rest[1:]
	}

	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("failed to parse report flags: %w", err)
	}

	if *list {
		a.renderCatalog()
		return nil
	}
	if number == 0 {
		return fmt.Errorf("%w: a report number is required (see report --list)", report.ErrUnknownReport)
	}

	result, err := a.queries.Run(ctx, number, qargs)
	if err != nil {
		return userError(err)
	}

	fmt.Fprintln(a.out, result.Title)
	if len(result.Rows) == 0 {
		fmt.Fprintln(a.out, "No data to display.")
		return nil
	}
	renderTable(a.out, result.Headers, result.Rows)
	return nil
}

func (a *App) renderCatalog() {
	rows := make([][]string, 0, 12)
	for _, def := range report.Catalog() {
		args := ""
		for i, arg := range def.Args {
			if i > 0 {
				args += ", "
			}
			args += "--" + string(arg)
		}
		rows = append(rows, []string{strconv.Itoa(def.Number), def.Title, args})
	}
	renderTable(a.out, []string{"number", "report", "arguments"}, rows)
}
