// Package report defines the analytical query surface: twelve fixed read-only
// reports over the journal schema, identified by a numeric index, plus the
// catalog describing each report's title, arguments, and table headers.
package report

import (
	"context"
	"errors"
)

var (
	// ErrUnknownReport - the requested report number is outside 1..12.
	ErrUnknownReport = errors.New("unknown report")

	// ErrMissingArgument - a report was invoked without a required id.
	ErrMissingArgument = errors.New("missing report argument")
)

// ══════════════════════════════════════════════════════════════════════════════
// ROW TYPES
// ══════════════════════════════════════════════════════════════════════════════

// StudentAverage is one row of the top-performers report.
type StudentAverage struct {
	Student string
	Average float64
}

// SubjectLeader is the best-performing student within one subject.
type SubjectLeader struct {
	Student string
	Average float64
	Subject string
}

// GroupAverage is a per-group mean grade within one subject.
type GroupAverage struct {
	Group   string
	Average float64
	Subject string
}

// Course pairs a teacher with one subject they teach.
type Course struct {
	Teacher string
	Subject string
}

// GroupStudent is one student listed under their group.
type GroupStudent struct {
	Group   string
	Student string
}

// GradeRow is a single grade with its full join context.
type GradeRow struct {
	Group   string
	Student string
	Subject string
	Grade   int64
	DateOf  string
}

// SubjectAverage is the mean grade a teacher gives in one subject.
type SubjectAverage struct {
	Teacher string
	Subject string
	Average float64
}

// StudentCourse pairs a student with one subject they attend.
type StudentCourse struct {
	Student string
	Subject string
}

// TeacherStudentCourse is a subject a teacher teaches to one student.
type TeacherStudentCourse struct {
	Teacher string
	Student string
	Subject string
}

// TeacherStudentAverage is the mean grade a teacher gives one student.
type TeacherStudentAverage struct {
	Teacher string
	Student string
	Average float64
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORTER CONTRACT
// ══════════════════════════════════════════════════════════════════════════════

// Reporter executes the twelve analytical queries. Every method is a pure
// read; unmatched ids yield an empty result, never an error.
type Reporter interface {
	// TopStudents returns up to five students with the highest mean grade
	// across all subjects, best first. Students with no grades are absent.
	TopStudents(ctx context.Context) ([]StudentAverage, error)

	// SubjectLeader returns at most one row: the student with the highest
	// mean grade in the subject.
	SubjectLeader(ctx context.Context, subjectID int64) ([]SubjectLeader, error)

	// GroupAverages returns the mean grade per group in one subject,
	// ordered by group name.
	GroupAverages(ctx context.Context, subjectID int64) ([]GroupAverage, error)

	// IntakeAverage returns the mean of every grade in the journal.
	// ok is false when the grade relation is empty.
	IntakeAverage(ctx context.Context) (avg float64, ok bool, err error)

	// TeacherCourses returns the subjects a teacher teaches, by subject name.
	TeacherCourses(ctx context.Context, teacherID int64) ([]Course, error)

	// GroupRoster returns the students of a group, by student name.
	GroupRoster(ctx context.Context, groupID int64) ([]GroupStudent, error)

	// GroupSubjectGrades returns every grade in a group for a subject.
	GroupSubjectGrades(ctx context.Context, groupID, subjectID int64) ([]GradeRow, error)

	// TeacherSubjectAverages returns the mean grade a teacher gives per
	// subject, ordered by subject name.
	TeacherSubjectAverages(ctx context.Context, teacherID int64) ([]SubjectAverage, error)

	// StudentCourses returns the distinct subjects a student attends.
	StudentCourses(ctx context.Context, studentID int64) ([]StudentCourse, error)

	// TeacherStudentCourses returns the distinct subjects a teacher teaches
	// to one student.
	TeacherStudentCourses(ctx context.Context, teacherID, studentID int64) ([]TeacherStudentCourse, error)

	// TeacherStudentAverage returns at most one row: the mean grade a
	// teacher gives one student across all their subjects.
	TeacherStudentAverage(ctx context.Context, teacherID, studentID int64) ([]TeacherStudentAverage, error)

	// LastLessonGrades returns, per student of the group, the grades of the
	// most recent lesson in the subject. A grade is included unless the same
	// student has a strictly later grade in the subject, so several grades
	// sharing the maximum date all appear.
	LastLessonGrades(ctx context.Context, groupID, subjectID int64) ([]GradeRow, error)
}
