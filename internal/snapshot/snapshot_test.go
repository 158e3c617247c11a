package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflow/internal/model"
	"formflow/internal/store"
)

func testSnapshot() Snapshot {
	v := 4
	text := "free-form note"
	iso := "2026-03-01T10:00:00Z"
	return Snapshot{
		Name:           "Alex",
		Email:          "alex@example.com",
		Role:           model.RoleStaff,
		CurrentSection: 1,
		Answers: []store.Entry{
			{QuestionID: "q1", Answer: model.Answer{QuestionID: "q1", Likert: &v, Comment: "good"}},
			{QuestionID: "q2", Answer: model.Answer{QuestionID: "q2", Text: &text}},
			{QuestionID: "q3", Answer: model.Answer{QuestionID: "q3", Selections: []string{"a", "c"}}},
			{QuestionID: "q4", Answer: model.Answer{QuestionID: "q4", DateTime: &iso}},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), nil)

	require.NoError(t, m.Save(ctx, "f1", testSnapshot()))

	snap, err := m.Load(ctx, "f1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Alex", snap.Name)
	assert.Equal(t, 1, snap.CurrentSection)
	require.Len(t, snap.Answers, 4)

	likert := snap.Answers[0].Answer
	assert.Equal(t, "q1", snap.Answers[0].QuestionID)
	require.NotNil(t, likert.Likert)
	assert.Equal(t, 4, *likert.Likert)
	assert.Equal(t, "good", likert.Comment)

	text := snap.Answers[1].Answer
	require.NotNil(t, text.Text)
	assert.Equal(t, "free-form note", *text.Text)

	assert.Equal(t, []string{"a", "c"}, snap.Answers[2].Answer.Selections)

	date := snap.Answers[3].Answer
	require.NotNil(t, date.DateTime)
	assert.Equal(t, "2026-03-01T10:00:00Z", *date.DateTime)

	assert.False(t, snap.SavedAt.IsZero())
}

func TestLoadMissingReturnsNil(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	snap, err := m.Load(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestDoubleSaveKeepsLatest(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), nil)

	first := testSnapshot()
	require.NoError(t, m.Save(ctx, "f1", first))

	second := first
	second.CurrentSection = 2
	require.NoError(t, m.Save(ctx, "f1", second))

	snap, err := m.Load(ctx, "f1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.CurrentSection)
}

func TestStaleSnapshotClearedOnLoad(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	m := NewManager(backend, nil)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return base })
	require.NoError(t, m.Save(ctx, "f1", testSnapshot()))

	// Just inside the window it still loads.
	m.SetClock(func() time.Time { return base.Add(23 * time.Hour) })
	snap, err := m.Load(ctx, "f1")
	require.NoError(t, err)
	assert.NotNil(t, snap)

	// Past the window it is treated as absent and removed from storage.
	m.SetClock(func() time.Time { return base.Add(25 * time.Hour) })
	snap, err = m.Load(ctx, "f1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	_, err = backend.Get(ctx, "f1")
	assert.ErrorIs(t, err, ErrNotFound, "stale snapshot must be cleared, not just skipped")
}

func TestCorruptSnapshotDiscarded(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	m := NewManager(backend, nil)

	require.NoError(t, backend.Put(ctx, "f1", []byte(`{not json`)))

	snap, err := m.Load(ctx, "f1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	_, err = backend.Get(ctx, "f1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), nil)

	require.NoError(t, m.Save(ctx, "f1", testSnapshot()))
	require.NoError(t, m.Clear(ctx, "f1"))

	snap, err := m.Load(ctx, "f1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestHasContent(t *testing.T) {
	empty := Snapshot{CurrentSection: -1}
	assert.False(t, empty.HasContent())

	assert.True(t, (&Snapshot{Email: "a@example.com"}).HasContent())
	assert.True(t, (&Snapshot{Answers: []store.Entry{{QuestionID: "q1"}}}).HasContent())
}
