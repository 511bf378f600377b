package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gradebook-hub/gradebook/internal/domain/report"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ReportRepository implements report.Reporter. Every query is a pure read;
// ids that match nothing produce empty results, never errors. Averages are
// cast to REAL so both backends hand back a float64.
//
// Ordering tie-breaks always end on a surrogate key so result order is stable
// across backends.
type ReportRepository struct {
	store *Store
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(store *Store) *ReportRepository {
	return &ReportRepository{store: store}
}

// ─────────────────────────────────────────────────────────────────────────────
// Ranking reports
// ─────────────────────────────────────────────────────────────────────────────

// TopStudents returns up to five students with the highest mean grade.
// Students without grades never enter the grouping and are thus excluded.
func (r *ReportRepository) TopStudents(ctx context.Context) ([]report.StudentAverage, error) {
	query := `
		SELECT s.name, CAST(AVG(g.grade) AS REAL) AS average_grade
		FROM grades g
		JOIN students s ON s.id = g.student_id
		GROUP BY s.id, s.name
		ORDER BY average_grade DESC, s.id ASC
		LIMIT 5
	`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query top students: %w", err)
	}
	defer rows.Close()

	var result []report.StudentAverage
	for rows.Next() {
		var row report.StudentAverage
		if err := rows.Scan(&row.Student, &row.Average); err != nil {
			return nil, fmt.Errorf("failed to scan top student: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// SubjectLeader returns the student with the highest mean grade in a subject.
func (r *ReportRepository) SubjectLeader(ctx context.Context, subjectID int64) ([]report.SubjectLeader, error) {
	query := r.store.dialect.rebind(`
		SELECT s.name, CAST(AVG(g.grade) AS REAL) AS average_grade, sub.name
		FROM grades g
		JOIN students s ON s.id = g.student_id
		JOIN subjects sub ON sub.id = g.subject_id
		WHERE g.subject_id = ?
		GROUP BY s.id, s.name, sub.name
		ORDER BY average_grade DESC, s.id ASC
		LIMIT 1
	`)

	var row report.SubjectLeader
	err := r.store.db.QueryRowContext(ctx, query, subjectID).Scan(&row.Student, &row.Average, &row.Subject)
	if IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subject leader: %w", err)
	}
	return []report.SubjectLeader{row}, nil
}

// GroupAverages returns the mean grade per group in one subject.
func (r *ReportRepository) GroupAverages(ctx context.Context, subjectID int64) ([]report.GroupAverage, error) {
	query := r.store.dialect.rebind(`
		SELECT gr.name, CAST(AVG(g.grade) AS REAL) AS average_grade, sub.name
		FROM grades g
		JOIN students s ON s.id = g.student_id
		JOIN "groups" gr ON gr.id = s.group_id
		JOIN subjects sub ON sub.id = g.subject_id
		WHERE g.subject_id = ?
		GROUP BY gr.id, gr.name, sub.name
		ORDER BY gr.name ASC, gr.id ASC
	`)

	rows, err := r.store.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group averages: %w", err)
	}
	defer rows.Close()

	var result []report.GroupAverage
	for rows.Next() {
		var row report.GroupAverage
		if err := rows.Scan(&row.Group, &row.Average, &row.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan group average: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// IntakeAverage returns the mean of every grade in the journal. AVG over an
// empty relation is NULL, reported as ok == false rather than NaN.
func (r *ReportRepository) IntakeAverage(ctx context.Context) (float64, bool, error) {
	var avg sql.NullFloat64
	err := r.store.db.QueryRowContext(ctx, `SELECT CAST(AVG(grade) AS REAL) FROM grades`).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to query intake average: %w", err)
	}
	return avg.Float64, avg.Valid, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Roster reports
// ─────────────────────────────────────────────────────────────────────────────

// TeacherCourses returns the subjects a teacher teaches.
func (r *ReportRepository) TeacherCourses(ctx context.Context, teacherID int64) ([]report.Course, error) {
	query := r.store.dialect.rebind(`
		SELECT t.name, sub.name
		FROM subjects sub
		JOIN teachers t ON t.id = sub.teacher_id
		WHERE t.id = ?
		ORDER BY sub.name ASC, sub.id ASC
	`)

	rows, err := r.store.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teacher courses: %w", err)
	}
	defer rows.Close()

	var result []report.Course
	for rows.Next() {
		var row report.Course
		if err := rows.Scan(&row.Teacher, &row.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan teacher course: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GroupRoster returns the students of a group.
func (r *ReportRepository) GroupRoster(ctx context.Context, groupID int64) ([]report.GroupStudent, error) {
	query := r.store.dialect.rebind(`
		SELECT gr.name, s.name
		FROM students s
		JOIN "groups" gr ON gr.id = s.group_id
		WHERE gr.id = ?
		ORDER BY s.name ASC, s.id ASC
	`)

	rows, err := r.store.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group roster: %w", err)
	}
	defer rows.Close()

	var result []report.GroupStudent
	for rows.Next() {
		var row report.GroupStudent
		if err := rows.Scan(&row.Group, &row.Student); err != nil {
			return nil, fmt.Errorf("failed to scan group student: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// GroupSubjectGrades returns every grade in a group for a subject.
func (r *ReportRepository) GroupSubjectGrades(ctx context.Context, groupID, subjectID int64) ([]report.GradeRow, error) {
	query := r.store.dialect.rebind(fmt.Sprintf(`
		SELECT gr.name, s.name, sub.name, g.grade, %s
		FROM grades g
		JOIN students s ON s.id = g.student_id
		JOIN "groups" gr ON gr.id = s.group_id
		JOIN subjects sub ON sub.id = g.subject_id
		WHERE gr.id = ? AND sub.id = ?
		ORDER BY s.name ASC, g.date_of ASC, g.id ASC
	`, r.store.dialect.dateExpr("g.date_of")))

	return r.queryGradeRows(ctx, query, "group subject grades", groupID, subjectID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation reports
// ─────────────────────────────────────────────────────────────────────────────

// TeacherSubjectAverages returns the mean grade a teacher gives per subject.
func (r *ReportRepository) TeacherSubjectAverages(ctx context.Context, teacherID int64) ([]report.SubjectAverage, error) {
	query := r.store.dialect.rebind(`
		SELECT t.name, sub.name, CAST(AVG(g.grade) AS REAL) AS average_grade
		FROM teachers t
		JOIN subjects sub ON sub.teacher_id = t.id
		JOIN grades g ON g.subject_id = sub.id
		WHERE t.id = ?
		GROUP BY sub.id, sub.name, t.name
		ORDER BY sub.name ASC, sub.id ASC
	`)

	rows, err := r.store.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teacher subject averages: %w", err)
	}
	defer rows.Close()

	var result []report.SubjectAverage
	for rows.Next() {
		var row report.SubjectAverage
		if err := rows.Scan(&row.Teacher, &row.Subject, &row.Average); err != nil {
			return nil, fmt.Errorf("failed to scan subject average: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// StudentCourses returns the distinct subjects a student attends. A student
// graded many times in one subject still yields a single row.
func (r *ReportRepository) StudentCourses(ctx context.Context, studentID int64) ([]report.StudentCourse, error) {
	query := r.store.dialect.rebind(`
		SELECT DISTINCT s.name, sub.name
		FROM students s
		JOIN grades g ON g.student_id = s.id
		JOIN subjects sub ON sub.id = g.subject_id
		WHERE s.id = ?
		ORDER BY sub.name ASC
	`)

	rows, err := r.store.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query student courses: %w", err)
	}
	defer rows.Close()

	var result []report.StudentCourse
	for rows.Next() {
		var row report.StudentCourse
		if err := rows.Scan(&row.Student, &row.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan student course: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// TeacherStudentCourses returns the distinct subjects a teacher teaches to
// one student.
func (r *ReportRepository) TeacherStudentCourses(ctx context.Context, teacherID, studentID int64) ([]report.TeacherStudentCourse, error) {
	query := r.store.dialect.rebind(`
		SELECT DISTINCT t.name, s.name, sub.name
		FROM teachers t
		JOIN subjects sub ON sub.teacher_id = t.id
		JOIN grades g ON g.subject_id = sub.id
		JOIN students s ON s.id = g.student_id
		WHERE t.id = ? AND s.id = ?
		ORDER BY sub.name ASC
	`)

	rows, err := r.store.db.QueryContext(ctx, query, teacherID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teacher student courses: %w", err)
	}
	defer rows.Close()

	var result []report.TeacherStudentCourse
	for rows.Next() {
		var row report.TeacherStudentCourse
		if err := rows.Scan(&row.Teacher, &row.Student, &row.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan teacher student course: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// TeacherStudentAverage returns the mean grade a teacher gives one student.
func (r *ReportRepository) TeacherStudentAverage(ctx context.Context, teacherID, studentID int64) ([]report.TeacherStudentAverage, error) {
	query := r.store.dialect.rebind(`
		SELECT t.name, s.name, CAST(AVG(g.grade) AS REAL) AS average_grade
		FROM teachers t
		JOIN subjects sub ON sub.teacher_id = t.id
		JOIN grades g ON g.subject_id = sub.id
		JOIN students s ON s.id = g.student_id
		WHERE t.id = ? AND s.id = ?
		GROUP BY t.name, s.name
		LIMIT 1
	`)

	var row report.TeacherStudentAverage
	err := r.store.db.QueryRowContext(ctx, query, teacherID, studentID).Scan(&row.Teacher, &row.Student, &row.Average)
	if IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query teacher student average: %w", err)
	}
	return []report.TeacherStudentAverage{row}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Last lesson
// ─────────────────────────────────────────────────────────────────────────────

// LastLessonGrades returns the grades of the most recent lesson per student
// in a group for a subject. The self-anti-join excludes a grade only when the
// same student has a strictly later one in the subject, so grades sharing the
// maximum date all survive.
func (r *ReportRepository) LastLessonGrades(ctx context.Context, groupID, subjectID int64) ([]report.GradeRow, error) {
	query := r.store.dialect.rebind(fmt.Sprintf(`
		SELECT gr.name, s.name, sub.name, g.grade, %s
		FROM grades g
		JOIN students s ON s.id = g.student_id
		JOIN "groups" gr ON gr.id = s.group_id
		JOIN subjects sub ON sub.id = g.subject_id
		LEFT JOIN grades later
			ON later.student_id = g.student_id
			AND later.subject_id = g.subject_id
			AND later.date_of > g.date_of
		WHERE later.id IS NULL AND gr.id = ? AND sub.id = ?
		ORDER BY s.name ASC, g.id ASC
	`, r.store.dialect.dateExpr("g.date_of")))

	return r.queryGradeRows(ctx, query, "last lesson grades", groupID, subjectID)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (r *ReportRepository) queryGradeRows(ctx context.Context, query, name string, args ...any) ([]report.GradeRow, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	var result []report.GradeRow
	for rows.Next() {
		var row report.GradeRow
		if err := rows.Scan(&row.Group, &row.Student, &row.Subject, &row.Grade, &row.DateOf); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", name, err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Ensure interfaces are implemented.
var _ report.Reporter = (*ReportRepository)(nil)
