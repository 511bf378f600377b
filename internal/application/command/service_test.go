package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook-hub/gradebook/internal/domain/journal"
)

// memRepo is an in-memory journal.Repository for service tests.
type memRepo struct {
	nextID  int64
	rows    map[journal.Kind]map[int64]journal.Record
	inserts []journal.Kind
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[journal.Kind]map[int64]journal.Record)}
}

func (m *memRepo) Insert(_ context.Context, kind journal.Kind, fields journal.FieldBag) (int64, error) {
	m.nextID++
	rec := journal.Record{"id": m.nextID}
	for k, v := range fields {
		rec[k] = v
	}
	if m.rows[kind] == nil {
		m.rows[kind] = make(map[int64]journal.Record)
	}
	m.rows[kind][m.nextID] = rec
	m.inserts = append(m.inserts, kind)
	return m.nextID, nil
}

func (m *memRepo) GetByID(_ context.Context, kind journal.Kind, id int64) (journal.Record, error) {
	rec, ok := m.rows[kind][id]
	if !ok {
		return nil, journal.ErrNotFound
	}
	return rec, nil
}

func (m *memRepo) List(_ context.Context, kind journal.Kind) ([]journal.Record, error) {
	var out []journal.Record
	for id := int64(1); id <= m.nextID; id++ {
		if rec, ok := m.rows[kind][id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateFields(_ context.Context, kind journal.Kind, id int64, fields journal.FieldBag) error {
	rec, ok := m.rows[kind][id]
	if !ok {
		return journal.ErrNotFound
	}
	for k, v := range fields {
		rec[k] = v
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, kind journal.Kind, id int64) error {
	if _, ok := m.rows[kind][id]; !ok {
		return journal.ErrNotFound
	}
	delete(m.rows[kind], id)
	return nil
}

var _ journal.Repository = (*memRepo)(nil)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	rec, err := svc.Create(ctx, journal.KindTeacher, journal.FieldBag{"name": "Dr. Smith"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec["id"])
	assert.Equal(t, "Dr. Smith", rec["name"])
}

func TestService_Create_ValidatesBeforeStore(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	_, err := svc.Create(ctx, journal.KindTeacher, journal.FieldBag{})
	assert.ErrorIs(t, err, journal.ErrValidation)
	assert.Empty(t, repo.inserts, "invalid create must not reach the store")
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	rec, err := svc.Create(ctx, journal.KindTeacher, journal.FieldBag{"name": "Dr. Smith"})
	require.NoError(t, err)
	id := rec["id"].(int64)

	rec, err = svc.Update(ctx, journal.KindTeacher, id, journal.FieldBag{"name": "Dr. Jones"})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Jones", rec["name"])

	_, err = svc.Update(ctx, journal.KindTeacher, id, journal.FieldBag{})
	assert.ErrorIs(t, err, journal.ErrValidation)

	_, err = svc.Update(ctx, journal.KindTeacher, 42, journal.FieldBag{"name": "Nobody"})
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestService_Remove(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	rec, err := svc.Create(ctx, journal.KindGroup, journal.FieldBag{"name": "G-1"})
	require.NoError(t, err)
	id := rec["id"].(int64)

	require.NoError(t, svc.Remove(ctx, journal.KindGroup, id))
	assert.ErrorIs(t, svc.Remove(ctx, journal.KindGroup, id), journal.ErrNotFound)
}

func TestParseAction(t *testing.T) {
	for _, verb := range []string{"create", "list", "update", "remove"} {
		action, err := ParseAction(verb)
		require.NoError(t, err)
		assert.Equal(t, Action(verb), action)
	}

	_, err := ParseAction("upsert")
	assert.ErrorIs(t, err, journal.ErrUnknownAction)
}

func TestService_Seed_RejectsOrphanedCounts(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	cases := []SeedConfig{
		{Teachers: 0, Subjects: 1},
		{Groups: 0, Students: 1},
		{Groups: 1, Students: 1, Subjects: 0, GradesPerStudent: 1},
	}
	for _, cfg := range cases {
		_, err := svc.Seed(ctx, cfg)
		assert.ErrorIs(t, err, journal.ErrValidation, "%+v", cfg)
		assert.Empty(t, repo.inserts, "rejected config must not reach the store")
	}

	// Parent-only configs stay legal.
	result, err := svc.Seed(ctx, SeedConfig{Groups: 1, Teachers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Groups)
	assert.Equal(t, 1, result.Teachers)
	assert.Zero(t, result.Grades)
}

func TestService_Seed(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)

	cfg := SeedConfig{
		Groups:           2,
		Teachers:         3,
		Subjects:         4,
		Students:         5,
		GradesPerStudent: 6,
		Seed:             1,
	}

	result, err := svc.Seed(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Groups)
	assert.Equal(t, 3, result.Teachers)
	assert.Equal(t, 4, result.Subjects)
	assert.Equal(t, 5, result.Students)
	assert.Equal(t, 30, result.Grades)

	// Referential order: every parent kind is fully inserted before the
	// first child that references it.
	firstStudent := -1
	lastGroup := -1
	for i, kind := range repo.inserts {
		if kind == journal.KindGroup {
			lastGroup = i
		}
		if kind == journal.KindStudent && firstStudent == -1 {
			firstStudent = i
		}
	}
	require.NotEqual(t, -1, firstStudent)
	assert.Less(t, lastGroup, firstStudent)

	// Generated grades respect the domain bounds.
	grades, err := repo.List(ctx, journal.KindGrade)
	require.NoError(t, err)
	for _, rec := range grades {
		g := rec["grade"].(int64)
		assert.GreaterOrEqual(t, g, int64(journal.GradeMin))
		assert.LessOrEqual(t, g, int64(journal.GradeMax))
	}
}
