package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook-hub/gradebook/internal/domain/report"
)

// stubReporter returns canned rows and records which method ran.
type stubReporter struct {
	called string

	topStudents   []report.StudentAverage
	intakeAverage float64
	intakeHasData bool
	lastLesson    []report.GradeRow
}

func (s *stubReporter) TopStudents(context.Context) ([]report.StudentAverage, error) {
	s.called = "TopStudents"
	return s.topStudents, nil
}

func (s *stubReporter) SubjectLeader(context.Context, int64) ([]report.SubjectLeader, error) {
	s.called = "SubjectLeader"
	return nil, nil
}

func (s *stubReporter) GroupAverages(context.Context, int64) ([]report.GroupAverage, error) {
	s.called = "GroupAverages"
	return nil, nil
}

func (s *stubReporter) IntakeAverage(context.Context) (float64, bool, error) {
	s.called = "IntakeAverage"
	return s.intakeAverage, s.intakeHasData, nil
}

func (s *stubReporter) TeacherCourses(context.Context, int64) ([]report.Course, error) {
	s.called = "TeacherCourses"
	return nil, nil
}

func (s *stubReporter) GroupRoster(context.Context, int64) ([]report.GroupStudent, error) {
	s.called = "GroupRoster"
	return nil, nil
}

func (s *stubReporter) GroupSubjectGrades(context.Context, int64, int64) ([]report.GradeRow, error) {
	s.called = "GroupSubjectGrades"
	return nil, nil
}

func (s *stubReporter) TeacherSubjectAverages(context.Context, int64) ([]report.SubjectAverage, error) {
	s.called = "TeacherSubjectAverages"
	return nil, nil
}

func (s *stubReporter) StudentCourses(context.Context, int64) ([]report.StudentCourse, error) {
	s.called = "StudentCourses"
	return nil, nil
}

func (s *stubReporter) TeacherStudentCourses(context.Context, int64, int64) ([]report.TeacherStudentCourse, error) {
	s.called = "TeacherStudentCourses"
	return nil, nil
}

func (s *stubReporter) TeacherStudentAverage(context.Context, int64, int64) ([]report.TeacherStudentAverage, error) {
	s.called = "TeacherStudentAverage"
	return nil, nil
}

func (s *stubReporter) LastLessonGrades(context.Context, int64, int64) ([]report.GradeRow, error) {
	s.called = "LastLessonGrades"
	return s.lastLesson, nil
}

var _ report.Reporter = (*stubReporter)(nil)

func TestService_Run_UnknownReport(t *testing.T) {
	svc := NewService(&stubReporter{})

	_, err := svc.Run(context.Background(), 0, Args{})
	assert.ErrorIs(t, err, report.ErrUnknownReport)

	_, err = svc.Run(context.Background(), 13, Args{})
	assert.ErrorIs(t, err, report.ErrUnknownReport)
}

func TestService_Run_MissingArgument(t *testing.T) {
	stub := &stubReporter{}
	svc := NewService(stub)

	_, err := svc.Run(context.Background(), 2, Args{})
	assert.ErrorIs(t, err, report.ErrMissingArgument)
	assert.Contains(t, err.Error(), "--subject_id")
	assert.Empty(t, stub.called, "missing args must not reach the reporter")

	// Report 7 needs both ids; only one is supplied.
	_, err = svc.Run(context.Background(), 7, Args{GroupID: 1})
	assert.ErrorIs(t, err, report.ErrMissingArgument)
	assert.Contains(t, err.Error(), "--subject_id")
}

func TestService_Run_FormatsAverages(t *testing.T) {
	stub := &stubReporter{
		topStudents: []report.StudentAverage{
			{Student: "Alice", Average: 90.5},
			{Student: "Bob", Average: 70},
		},
	}
	svc := NewService(stub)

	result, err := svc.Run(context.Background(), 1, Args{})
	require.NoError(t, err)
	assert.Equal(t, "Top 5 students with the highest average grade", result.Title)
	assert.Equal(t, []string{"student", "average_grade"}, result.Headers)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, []string{"Alice", "90.50"}, result.Rows[0])
	assert.Equal(t, []string{"Bob", "70.00"}, result.Rows[1])
}

func TestService_Run_IntakeAverage(t *testing.T) {
	stub := &stubReporter{intakeAverage: 80.714285, intakeHasData: true}
	svc := NewService(stub)

	result, err := svc.Run(context.Background(), 4, Args{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, []string{"80.71"}, result.Rows[0])

	// An empty journal yields an empty result, not a zero row.
	stub.intakeHasData = false
	result, err = svc.Run(context.Background(), 4, Args{})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestService_Run_GradeRows(t *testing.T) {
	stub := &stubReporter{
		lastLesson: []report.GradeRow{
			{Group: "G-1", Student: "Alice", Subject: "Math", Grade: 100, DateOf: "2026-03-10"},
		},
	}
	svc := NewService(stub)

	result, err := svc.Run(context.Background(), 12, Args{GroupID: 1, SubjectID: 2})
	require.NoError(t, err)
	assert.Equal(t, "LastLessonGrades", stub.called)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, []string{"G-1", "Alice", "Math", "100", "2026-03-10"}, result.Rows[0])
}

func TestService_Run_DispatchesEveryReport(t *testing.T) {
	args := Args{TeacherID: 1, GroupID: 1, StudentID: 1, SubjectID: 1}
	expected := map[int]string{
		1:  "TopStudents",
		2:  "SubjectLeader",
		3:  "GroupAverages",
		4:  "IntakeAverage",
		5:  "TeacherCourses",
		6:  "GroupRoster",
		7:  "GroupSubjectGrades",
		8:  "TeacherSubjectAverages",
		9:  "StudentCourses",
		10: "TeacherStudentCourses",
		11: "TeacherStudentAverage",
		12: "LastLessonGrades",
	}

	for number, method := range expected {
		stub := &stubReporter{}
		_, err := NewService(stub).Run(context.Background(), number, args)
		require.NoError(t, err)
		assert.Equal(t, method, stub.called, "report %d", number)
	}
}
