// Package query implements the read side of the journal: the catalog of
// canned analytical reports rendered as titled string tables.
package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gradebook-hub/gradebook/internal/domain/report"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUERY SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// Args carries the optional id parameters a report may require. Zero means
// not supplied.
type Args struct {
	TeacherID int64
	GroupID   int64
	StudentID int64
	SubjectID int64
}

func (a Args) get(name report.Arg) int64 {
	switch name {
	case report.ArgTeacherID:
		return a.TeacherID
	case report.ArgGroupID:
		return a.GroupID
	case report.ArgStudentID:
		return a.StudentID
	case report.ArgSubjectID:
		return a.SubjectID
	default:
		return 0
	}
}

// Result is one executed report, ready for table rendering. Rows is empty
// when the report matched nothing.
type Result struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Service executes catalog reports against a Reporter.
type Service struct {
	reporter report.Reporter
}

// NewService creates a new query service.
func NewService(reporter report.Reporter) *Service {
	return &Service{reporter: reporter}
}

// Run executes report number with the supplied args. Unknown numbers fail
// with report.ErrUnknownReport; a required arg left at zero fails with
// report.ErrMissingArgument before the store is touched.
func (s *Service) Run(ctx context.Context, number int, args Args) (*Result, error) {
	def, ok := report.Lookup(number)
	if !ok {
		return nil, fmt.Errorf("%w: %d is not in the catalog", report.ErrUnknownReport, number)
	}

	for _, arg := range def.Args {
		if args.get(arg) <= 0 {
			return nil, fmt.Errorf("%w: report %d requires --%s", report.ErrMissingArgument, number, arg)
		}
	}

	result := &Result{Title: def.Title, Headers: def.Headers}

	var err error
	switch number {
	case 1:
		var rows []report.StudentAverage
		rows, err = s.reporter.TopStudents(ctx)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Student, formatAverage(r.Average)})
		}
	case 2:
		var rows []report.SubjectLeader
		rows, err = s.reporter.SubjectLeader(ctx, args.SubjectID)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Student, formatAverage(r.Average), r.Subject})
		}
	case 3:
		var rows []report.GroupAverage
		rows, err = s.reporter.GroupAverages(ctx, args.SubjectID)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Group, formatAverage(r.Average), r.Subject})
		}
	case 4:
		var avg float64
		var hasData bool
		avg, hasData, err = s.reporter.IntakeAverage(ctx)
		if hasData {
			result.Rows = append(result.Rows, []string{formatAverage(avg)})
		}
	case 5:
		var rows []report.Course
		rows, err = s.reporter.TeacherCourses(ctx, args.TeacherID)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Teacher, r.Subject})
		}
	case 6:
		var rows []report.GroupStudent
		rows, err = s.reporter.GroupRoster(ctx, args.GroupID)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Group, r.Student})
		}
	case 7:
		var rows []report.GradeRow
		rows, err = s.reporter.GroupSubjectGrades(ctx, args.GroupID, args.SubjectID)
		result.Rows = appendGradeRows(result.Rows, rows)
	case 8:
		var rows []report.SubjectAverage
		rows, err = s.reporter.TeacherSubjectAverages(ctx, args.TeacherID)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Teacher, r.Subject, formatAverage(r.Average)})
		}
	case 9:
		var rows []report.StudentCourse
		rows, err = s.reporter.StudentCourses(ctx, args.StudentID)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Student, r.Subject})
		}
	case 10:
		var rows []report.TeacherStudentCourse
		rows, err = s.reporter.TeacherStudentCourses(ctx, args.TeacherID, args.StudentID)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Teacher, r.Student, r.Subject})
		}
	case 11:
		var rows []report.TeacherStudentAverage
		rows, err = s.reporter.TeacherStudentAverage(ctx, args.TeacherID, args.StudentID)
		for _, r := range rows {
			result.Rows = append(result.Rows, []string{r.Teacher, r.Student, formatAverage(r.Average)})
		}
	case 12:
		var rows []report.GradeRow
		rows, err = s.reporter.LastLessonGrades(ctx, args.GroupID, args.SubjectID)
		result.Rows = appendGradeRows(result.Rows, rows)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func appendGradeRows(dst [][]string, rows []report.GradeRow) [][]string {
	for _, r := range rows {
		dst = append(dst, []string{
			r.Group,
			r.Student,
			r.Subject,
			strconv.FormatInt(r.Grade, 10),
			r.DateOf,
		})
	}
	return dst
}

// formatAverage renders a mean grade with two decimal places.
func formatAverage(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
