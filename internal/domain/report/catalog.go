package report

// Arg names a report parameter. The values double as CLI flag names.
type Arg string

const (
	ArgTeacherID Arg = "teacher_id"
	ArgGroupID   Arg = "group_id"
	ArgStudentID Arg = "student_id"
	ArgSubjectID Arg = "subject_id"
)

// Definition describes one catalog entry.
type Definition struct {
	Number  int
	Title   string
	Headers []string
	Args    []Arg
}

// catalog lists all twelve reports in order.
var catalog = []Definition{
	{1, "Top 5 students with the highest average grade", []string{"student", "average_grade"}, nil},
	{2, "Student with the highest average grade in a subject", []string{"student", "average_grade", "subject"}, []Arg{ArgSubjectID}},
	{3, "Average grade per group in a subject", []string{"group", "average_grade", "subject"}, []Arg{ArgSubjectID}},
	{4, "Average grade across the whole intake", []string{"average_grade"}, nil},
	{5, "Courses taught by a teacher", []string{"teacher", "subject"}, []Arg{ArgTeacherID}},
	{6, "Students in a group", []string{"group", "student"}, []Arg{ArgGroupID}},
	{7, "Grades in a group for a subject", []string{"group", "student", "subject", "grade", "date"}, []Arg{ArgGroupID, ArgSubjectID}},
	{8, "Average grade a teacher gives per subject", []string{"teacher", "subject", "average_grade"}, []Arg{ArgTeacherID}},
	{9, "Courses a student attends", []string{"student", "subject"}, []Arg{ArgStudentID}},
	{10, "Courses a teacher teaches to a student", []string{"teacher", "student", "subject"}, []Arg{ArgTeacherID, ArgStudentID}},
	{11, "Average grade a teacher gives a student", []string{"teacher", "student", "average_grade"}, []Arg{ArgTeacherID, ArgStudentID}},
	{12, "Grades in a group for a subject on the last lesson", []string{"group", "student", "subject", "grade", "date"}, []Arg{ArgGroupID, ArgSubjectID}},
}

// Catalog returns all report definitions in numeric order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the definition of report n.
func Lookup(n int) (Definition, bool) {
	if n < 1 || n > len(catalog) {
		return Definition{}, false
	}
	return catalog[n-1], true
}
