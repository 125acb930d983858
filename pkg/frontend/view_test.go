package frontend_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/poppy/pkg/frontend"
	"github.com/Ramsey-B/poppy/pkg/models"
)

func TestNewResultView(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 7, 0, 0, time.UTC)
	items := []models.ResultItem{
		{ItemType: "movies", Properties: []models.Property{{Name: "titolo", Value: "Matrix"}, {Name: "anno", Value: "1999"}}},
		{ItemType: "movies", Properties: []models.Property{{Name: "anno", Value: "1995"}, {Name: "titolo", Value: "Heat"}}},
	}

	t.Run("should build columns rows and blocks for valid results", func(t *testing.T) {
		view := frontend.NewResultView(frontend.ModeSQL, "SELECT titolo, anno FROM movies", models.ClassificationValid, items, now)

		assert.Equal(t, "09:07", view.When)
		assert.Equal(t, []string{"titolo", "anno"}, view.Columns)
		assert.Equal(t, [][]string{{"Matrix", "1999"}, {"Heat", "1995"}}, view.Rows)
		assert.Len(t, view.KVBlocks, 2)
		assert.Equal(t, frontend.KV{Name: "anno", Value: "1995"}, view.KVBlocks[1][0])
	})

	t.Run("should drop rows for other classifications", func(t *testing.T) {
		view := frontend.NewResultView(frontend.ModeLLM, "", models.ClassificationError, items, now)

		assert.Empty(t, view.Columns)
		assert.Empty(t, view.Rows)
		assert.Empty(t, view.KVBlocks)
	})
}

func TestBadgeClass(t *testing.T) {
	assert.Equal(t, "valid", frontend.BadgeClass(models.ClassificationValid))
	assert.Equal(t, "invalid", frontend.BadgeClass(models.ClassificationUnsafe))
}
