package services

import (
	"context"
	"testing"

	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItem(id, subject string) models.LibraryItem {
	return models.LibraryItem{
		ID:       id,
		Title:    "Lesson " + id,
		Subject:  subject,
		Summary:  "summary",
		KeyTerms: []models.KeyTerm{{Term: "cell", Definition: "unit of life"}},
		Paragraphs: []models.LessonParagraph{
			{Content: "p1", Importance: models.ImportanceHigh, ImportanceLabel: "key", Reason: "core idea"},
		},
		Quiz:         []models.QuizQuestion{{Question: "q?", Options: []string{"a", "b"}, CorrectAnswer: 1}},
		OverallLevel: "medium",
		CreatedAt:    "2025-03-14T09:26:53Z",
	}
}

func TestLibrary_AddPrependsAndIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	lib := NewLibraryService(kv.NewMemoryStore())

	added, err := lib.Add(ctx, "sara@test.com", sampleItem("1", "math"))
	require.NoError(t, err)
	assert.True(t, added)
	added, err = lib.Add(ctx, "sara@test.com", sampleItem("2", "bio"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = lib.Add(ctx, "sara@test.com", sampleItem("1", "math"))
	require.NoError(t, err)
	assert.False(t, added)

	items, err := lib.List(ctx, "sara@test.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ID)
	assert.Equal(t, "1", items[1].ID)
}

func TestLibrary_ToggleRemovesExistingAndPrependsFresh(t *testing.T) {
	ctx := context.Background()
	lib := NewLibraryService(kv.NewMemoryStore())

	saved, err := lib.Toggle(ctx, "sara@test.com", sampleItem("1", "math"))
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = lib.Toggle(ctx, "sara@test.com", sampleItem("2", "math"))
	require.NoError(t, err)
	assert.True(t, saved)

	items, err := lib.List(ctx, "sara@test.com")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	saved, err = lib.Toggle(ctx, "sara@test.com", sampleItem("1", "math"))
	require.NoError(t, err)
	assert.False(t, saved)

	items, err = lib.List(ctx, "sara@test.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)
}

func TestLibrary_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	lib := NewLibraryService(kv.NewMemoryStore())

	removed, err := lib.Remove(ctx, "sara@test.com", "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = lib.Add(ctx, "sara@test.com", sampleItem("1", "math"))
	require.NoError(t, err)
	removed, err = lib.Remove(ctx, "sara@test.com", "1")
	require.NoError(t, err)
	assert.True(t, removed)

	ok, err := lib.Contains(ctx, "sara@test.com", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLibrary_IsolatedPerAccountAndNormalized(t *testing.T) {
	ctx := context.Background()
	lib := NewLibraryService(kv.NewMemoryStore())

	_, err := lib.Add(ctx, " Sara@Test.com", sampleItem("1", "math"))
	require.NoError(t, err)

	items, err := lib.List(ctx, "sara@test.com")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = lib.List(ctx, "ali@test.com")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLibrary_SubjectsAndFilter(t *testing.T) {
	ctx := context.Background()
	lib := NewLibraryService(kv.NewMemoryStore())

	for _, it := range []models.LibraryItem{sampleItem("1", "math"), sampleItem("2", "bio"), sampleItem("3", "math")} {
		_, err := lib.Add(ctx, "sara@test.com", it)
		require.NoError(t, err)
	}

	subjects, err := lib.Subjects(ctx, "sara@test.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"math", "bio"}, subjects)

	math, err := lib.ListBySubject(ctx, "sara@test.com", "math")
	require.NoError(t, err)
	assert.Len(t, math, 2)

	all, err := lib.ListBySubject(ctx, "sara@test.com", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLibrary_AddRequiresID(t *testing.T) {
	_, err := NewLibraryService(kv.NewMemoryStore()).Add(context.Background(), "a@b.c", models.LibraryItem{})
	require.ErrorIs(t, err, ErrValidation)
}
