package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook-hub/gradebook/internal/domain/journal"
	"github.com/gradebook-hub/gradebook/internal/domain/report"
)

// fixture is a small journal with known averages.
type fixture struct {
	repo *JournalRepository

	g1, g2        int64
	smith, jones  int64
	math, physics int64
	alice, bob    int64
	carol, dave   int64
}

func (f *fixture) insert(t *testing.T, kind journal.Kind, bag journal.FieldBag) int64 {
	t.Helper()
	id, err := f.repo.Insert(context.Background(), kind, bag)
	require.NoError(t, err)
	return id
}

func (f *fixture) grade(t *testing.T, studentID, subjectID, grade int64, date string) {
	t.Helper()
	f.insert(t, journal.KindGrade, journal.FieldBag{
		"student_id": studentID,
		"subject_id": subjectID,
		"grade":      grade,
		"date_of":    date,
	})
}

// newFixture seeds two groups, two teachers, two subjects, and four students.
// Dave has no grades at all.
func newFixture(t *testing.T, store *Store) *fixture {
	t.Helper()
	f := &fixture{repo: NewJournalRepository(store)}

	f.g1 = f.insert(t, journal.KindGroup, journal.FieldBag{"name": "G-1"})
	f.g2 = f.insert(t, journal.KindGroup, journal.FieldBag{"name": "G-2"})

	f.smith = f.insert(t, journal.KindTeacher, journal.FieldBag{"name": "Dr. Smith"})
	f.jones = f.insert(t, journal.KindTeacher, journal.FieldBag{"name": "Dr. Jones"})

	f.math = f.insert(t, journal.KindSubject, journal.FieldBag{"name": "Math", "teacher_id": f.smith})
	f.physics = f.insert(t, journal.KindSubject, journal.FieldBag{"name": "Physics", "teacher_id": f.jones})

	f.alice = f.insert(t, journal.KindStudent, journal.FieldBag{"name": "Alice", "group_id": f.g1})
	f.bob = f.insert(t, journal.KindStudent, journal.FieldBag{"name": "Bob", "group_id": f.g1})
	f.carol = f.insert(t, journal.KindStudent, journal.FieldBag{"name": "Carol", "group_id": f.g2})
	f.dave = f.insert(t, journal.KindStudent, journal.FieldBag{"name": "Dave", "group_id": f.g1})

	f.grade(t, f.alice, f.math, 90, "2026-03-01")
	f.grade(t, f.alice, f.math, 100, "2026-03-10")
	f.grade(t, f.alice, f.physics, 80, "2026-03-05")
	f.grade(t, f.bob, f.math, 70, "2026-03-01")
	f.grade(t, f.bob, f.math, 80, "2026-03-10")
	f.grade(t, f.bob, f.physics, 60, "2026-03-05")
	f.grade(t, f.carol, f.math, 85, "2026-03-08")

	return f
}

func TestReportRepository_TopStudents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	newFixture(t, store)
	reporter := NewReportRepository(store)

	rows, err := reporter.TopStudents(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3, "students without grades are excluded")

	assert.Equal(t, "Alice", rows[0].Student)
	assert.InDelta(t, 90.0, rows[0].Average, 0.001)
	assert.Equal(t, "Carol", rows[1].Student)
	assert.InDelta(t, 85.0, rows[1].Average, 0.001)
	assert.Equal(t, "Bob", rows[2].Student)
	assert.InDelta(t, 70.0, rows[2].Average, 0.001)
}

func TestReportRepository_TopStudents_LimitsToFive(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	// Three more graded students push the roster past five.
	for i, name := range []string{"Eve", "Frank", "Grace"} {
		id := f.insert(t, journal.KindStudent, journal.FieldBag{"name": name, "group_id": f.g2})
		f.grade(t, id, f.math, int64(50+i), "2026-03-09")
	}

	rows, err := NewReportRepository(store).TopStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestReportRepository_TopStudents_StableTieBreak(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	// Dave matches Carol's average exactly; the earlier id wins the tie.
	f.grade(t, f.dave, f.math, 85, "2026-03-09")

	rows, err := NewReportRepository(store).TopStudents(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Carol", rows[1].Student)
	assert.Equal(t, "Dave", rows[2].Student)
	assert.InDelta(t, rows[1].Average, rows[2].Average, 0.001)
}

func TestReportRepository_SubjectLeader(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)
	reporter := NewReportRepository(store)

	rows, err := reporter.SubjectLeader(ctx, f.math)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0].Student)
	assert.InDelta(t, 95.0, rows[0].Average, 0.001)
	assert.Equal(t, "Math", rows[0].Subject)

	rows, err = reporter.SubjectLeader(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReportRepository_GroupAverages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).GroupAverages(ctx, f.math)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "G-1", rows[0].Group)
	assert.InDelta(t, 85.0, rows[0].Average, 0.001)
	assert.Equal(t, "G-2", rows[1].Group)
	assert.InDelta(t, 85.0, rows[1].Average, 0.001)
}

func TestReportRepository_IntakeAverage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	reporter := NewReportRepository(store)

	// Empty journal has no average.
	_, ok, err := reporter.IntakeAverage(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	newFixture(t, store)

	avg, ok, err := reporter.IntakeAverage(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 565.0/7.0, avg, 0.001)
}

func TestReportRepository_TeacherCourses(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).TeacherCourses(ctx, f.smith)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dr. Smith", rows[0].Teacher)
	assert.Equal(t, "Math", rows[0].Subject)
}

func TestReportRepository_GroupRoster(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).GroupRoster(ctx, f.g1)
	require.NoError(t, err)
	require.Len(t, rows, 3, "roster includes students without grades")
	assert.Equal(t, "Alice", rows[0].Student)
	assert.Equal(t, "Bob", rows[1].Student)
	assert.Equal(t, "Dave", rows[2].Student)
}

func TestReportRepository_GroupSubjectGrades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).GroupSubjectGrades(ctx, f.g1, f.math)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, report.GradeRow{
		Group: "G-1", Student: "Alice", Subject: "Math", Grade: 90, DateOf: "2026-03-01",
	}, rows[0])
	assert.Equal(t, report.GradeRow{
		Group: "G-1", Student: "Alice", Subject: "Math", Grade: 100, DateOf: "2026-03-10",
	}, rows[1])
	assert.Equal(t, "Bob", rows[2].Student)
	assert.Equal(t, "Bob", rows[3].Student)
}

func TestReportRepository_TeacherSubjectAverages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).TeacherSubjectAverages(ctx, f.smith)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dr. Smith", rows[0].Teacher)
	assert.Equal(t, "Math", rows[0].Subject)
	assert.InDelta(t, 85.0, rows[0].Average, 0.001)
}

func TestReportRepository_StudentCourses(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).StudentCourses(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, rows, 2, "repeated grades collapse to one course row")
	assert.Equal(t, "Math", rows[0].Subject)
	assert.Equal(t, "Physics", rows[1].Subject)
}

func TestReportRepository_TeacherStudentCourses(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).TeacherStudentCourses(ctx, f.smith, f.alice)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dr. Smith", rows[0].Teacher)
	assert.Equal(t, "Alice", rows[0].Student)
	assert.Equal(t, "Math", rows[0].Subject)

	rows, err = NewReportRepository(store).TeacherStudentCourses(ctx, f.jones, f.dave)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReportRepository_TeacherStudentAverage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).TeacherStudentAverage(ctx, f.smith, f.alice)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dr. Smith", rows[0].Teacher)
	assert.Equal(t, "Alice", rows[0].Student)
	assert.InDelta(t, 95.0, rows[0].Average, 0.001)

	rows, err = NewReportRepository(store).TeacherStudentAverage(ctx, f.smith, f.dave)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReportRepository_LastLessonGrades(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	rows, err := NewReportRepository(store).LastLessonGrades(ctx, f.g1, f.math)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Alice", rows[0].Student)
	assert.Equal(t, int64(100), rows[0].Grade)
	assert.Equal(t, "2026-03-10", rows[0].DateOf)
	assert.Equal(t, "Bob", rows[1].Student)
	assert.Equal(t, int64(80), rows[1].Grade)
}

func TestReportRepository_LastLessonGrades_DateTies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	f := newFixture(t, store)

	// A second grade on Alice's latest lesson day must also appear.
	f.grade(t, f.alice, f.math, 55, "2026-03-10")

	rows, err := NewReportRepository(store).LastLessonGrades(ctx, f.g1, f.math)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	grades := []int64{rows[0].Grade, rows[1].Grade}
	assert.ElementsMatch(t, []int64{100, 55}, grades)
	assert.Equal(t, "Bob", rows[2].Student)
}
