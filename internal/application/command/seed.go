package command

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/gradebook-hub/gradebook/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEEDER
// ══════════════════════════════════════════════════════════════════════════════

// SeedConfig controls the volume of generated fixture data.
type SeedConfig struct {
	Groups           int
	Teachers         int
	Subjects         int
	Students         int
	GradesPerStudent int
	Seed             uint64
}

// DefaultSeedConfig returns the standard fixture volume.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Groups:           3,
		Teachers:         5,
		Subjects:         8,
		Students:         50,
		GradesPerStudent: 20,
	}
}

// SeedResult reports how many records the seeder created per kind.
type SeedResult struct {
	Groups   int
	Teachers int
	Subjects int
	Students int
	Grades   int
}

// validate rejects count combinations that would leave a child kind without
// parent rows to reference.
func (cfg SeedConfig) validate() error {
	if cfg.Subjects > 0 && cfg.Teachers <= 0 {
		return fmt.Errorf("%w: subjects need at least one teacher to seed", journal.ErrValidation)
	}
	if cfg.Students > 0 && cfg.Groups <= 0 {
		return fmt.Errorf("%w: students need at least one group to seed", journal.ErrValidation)
	}
	if cfg.Students > 0 && cfg.GradesPerStudent > 0 && cfg.Subjects <= 0 {
		return fmt.Errorf("%w: grades need at least one subject to seed", journal.ErrValidation)
	}
	return nil
}

var seedSubjectNames = []string{
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"History",
	"Literature",
	"Computer Science",
	"Economics",
	"Philosophy",
	"Geography",
}

// Seed fills the journal with generated fixture data. Records are inserted
// through the repository in referential order so foreign keys always resolve.
// A fixed cfg.Seed makes the data set reproducible.
func (s *Service) Seed(ctx context.Context, cfg SeedConfig) (*SeedResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	faker := gofakeit.New(cfg.Seed)
	result := &SeedResult{}

	if cfg.Subjects > len(seedSubjectNames) {
		cfg.Subjects = len(seedSubjectNames)
	}

	groupIDs := make([]int64, 0, cfg.Groups)
	for i := 0; i < cfg.Groups; i++ {
		id, err := s.repo.Insert(ctx, journal.KindGroup, journal.FieldBag{
			"name": fmt.Sprintf("Group %c-%d", 'A'+rune(i%26), i/26+1),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed group: %w", err)
		}
		groupIDs = append(groupIDs, id)
		result.Groups++
	}

	teacherIDs := make([]int64, 0, cfg.Teachers)
	for i := 0; i < cfg.Teachers; i++ {
		id, err := s.repo.Insert(ctx, journal.KindTeacher, journal.FieldBag{
			"name": faker.Name(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed teacher: %w", err)
		}
		teacherIDs = append(teacherIDs, id)
		result.Teachers++
	}

	subjectIDs := make([]int64, 0, cfg.Subjects)
	for i := 0; i < cfg.Subjects; i++ {
		id, err := s.repo.Insert(ctx, journal.KindSubject, journal.FieldBag{
			"name":       seedSubjectNames[i],
			"teacher_id": teacherIDs[faker.IntRange(0, len(teacherIDs)-1)],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed subject: %w", err)
		}
		subjectIDs = append(subjectIDs, id)
		result.Subjects++
	}

	studentIDs := make([]int64, 0, cfg.Students)
	for i := 0; i < cfg.Students; i++ {
		id, err := s.repo.Insert(ctx, journal.KindStudent, journal.FieldBag{
			"name":     faker.Name(),
			"group_id": groupIDs[faker.IntRange(0, len(groupIDs)-1)],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed student: %w", err)
		}
		studentIDs = append(studentIDs, id)
		result.Students++
	}

	// Grades land inside the last school year.
	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	for _, studentID := range studentIDs {
		for i := 0; i < cfg.GradesPerStudent; i++ {
			_, err := s.repo.Insert(ctx, journal.KindGrade, journal.FieldBag{
				"student_id": studentID,
				"subject_id": subjectIDs[faker.IntRange(0, len(subjectIDs)-1)],
				"grade":      int64(faker.IntRange(journal.GradeMin, journal.GradeMax)),
				"date_of":    faker.DateRange(start, end).Format(journal.DateFormat),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to seed grade: %w", err)
			}
			result.Grades++
		}
	}

	return result, nil
}
