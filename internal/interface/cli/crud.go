package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/gradebook-hub/gradebook/internal/application/command"
	"github.com/gradebook-hub/gradebook/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// CRUD COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// recordFlags holds one flag per settable journal field plus the record id.
// Only flags the caller explicitly set end up in the field bag, so an update
// never clobbers fields with flag defaults.
type recordFlags struct {
	fs *flag.FlagSet

	id        int64
	name      string
	groupID   int64
	teacherID int64
	studentID int64
	subjectID int64
	grade     int64
	dateOf    string
}

func newRecordFlags(name string) *recordFlags {
	rf := &recordFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	rf.fs.SetOutput(io.Discard)
	rf.fs.Int64Var(&rf.id, "id", 0, "record id")
	rf.fs.StringVar(&rf.name, "name", "", "name")
	rf.fs.Int64Var(&rf.groupID, "group_id", 0, "group id")
	rf.fs.Int64Var(&rf.teacherID, "teacher_id", 0, "teacher id")
	rf.fs.Int64Var(&rf.studentID, "student_id", 0, "student id")
	rf.fs.Int64Var(&rf.subjectID, "subject_id", 0, "subject id")
	rf.fs.Int64Var(&rf.grade, "grade", -1, "grade value")
	rf.fs.StringVar(&rf.dateOf, "date_of", "", "grade date (YYYY-MM-DD)")
	return rf
}

// bag collects the explicitly set field flags into a field bag.
func (rf *recordFlags) bag() journal.FieldBag {
	bag := journal.FieldBag{}
	rf.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			bag["name"] = rf.name
		case "group_id":
			bag["group_id"] = rf.groupID
		case "teacher_id":
			bag["teacher_id"] = rf.teacherID
		case "student_id":
			bag["student_id"] = rf.studentID
		case "subject_id":
			bag["subject_id"] = rf.subjectID
		case "grade":
			bag["grade"] = rf.grade
		case "date_of":
			bag["date_of"] = rf.dateOf
		}
	})
	return bag
}

func (a *App) runCrud(ctx context.Context, action command.Action, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s needs an entity (teacher, student, group, subject, grade)", journal.ErrUnknownEntity, action)
	}

	kind, err := journal.ParseKind(args[0])
	if err != nil {
		return err
	}

	rf := newRecordFlags(string(action) + " " + string(kind))
	if err := rf.fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", journal.ErrValidation, err)
	}

	switch action {
	case command.ActionCreate:
		rec, err := a.commands.Create(ctx, kind, rf.bag())
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(a.out, "Created %s with id %d.\n", kind, rec["id"])
		a.renderRecords(kind, []journal.Record{rec})
		return nil

	case command.ActionList:
		recs, err := a.commands.List(ctx, kind)
		if err != nil {
			return userError(err)
		}
		if len(recs) == 0 {
			fmt.Fprintf(a.out, "No records found for model %s.\n", kind)
			return nil
		}
		a.renderRecords(kind, recs)
		return nil

	case command.ActionUpdate:
		if rf.id <= 0 {
			return fmt.Errorf("%w: --id is required to update a %s", journal.ErrValidation, kind)
		}
		rec, err := a.commands.Update(ctx, kind, rf.id, rf.bag())
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(a.out, "Updated %s with id %d.\n", kind, rf.id)
		a.renderRecords(kind, []journal.Record{rec})
		return nil

	case command.ActionRemove:
		if rf.id <= 0 {
			return fmt.Errorf("%w: --id is required to remove a %s", journal.ErrValidation, kind)
		}
		if err := a.commands.Remove(ctx, kind, rf.id); err != nil {
			return userError(err)
		}
		fmt.Fprintf(a.out, "Removed %s with id %d.\n", kind, rf.id)
		return nil
	}

	return fmt.Errorf("%w: %q", journal.ErrUnknownAction, action)
}

// renderRecords prints records as a table in the kind's column order.
func (a *App) renderRecords(kind journal.Kind, recs []journal.Record) {
	headers := kind.ColumnNames()
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(headers))
		for i, name := range headers {
			row[i] = formatField(rec[name])
		}
		rows = append(rows, row)
	}
	renderTable(a.out, headers, rows)
}

func formatField(v any) string {
	switch value := v.(type) {
	case int64:
		return strconv.FormatInt(value, 10)
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}
