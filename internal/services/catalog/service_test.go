package catalog_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogrepo "github.com/Ramsey-B/poppy/internal/repositories/catalog"
	"github.com/Ramsey-B/poppy/internal/services/catalog"
	"github.com/Ramsey-B/poppy/internal/testdb"
	"github.com/Ramsey-B/poppy/pkg/models"
)

func newService(t *testing.T) *catalog.Service {
	db := testdb.New(t)
	return catalog.NewService(catalogrepo.NewRepository(db, testdb.Logger()), testdb.Logger())
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist a valid line", func(t *testing.T) {
		svc := newService(t)

		require.NoError(t, svc.Add(ctx, "Heat, Michael Mann, 81, 1995, Crime, Netflix, netflix"))

		movie, err := svc.GetMovie(ctx, "Heat")
		require.NoError(t, err)
		assert.Equal(t, models.Movie{
			Title:     "Heat",
			Director:  "Michael Mann",
			Age:       81,
			Year:      1995,
			Genre:     "Crime",
			Platforms: []string{"Netflix"},
		}, movie)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		svc := newService(t)
		line := "Heat,Michael Mann,81,1995,Crime,Netflix,Prime"

		require.NoError(t, svc.Add(ctx, line))
		first, err := svc.GetMovie(ctx, "Heat")
		require.NoError(t, err)

		require.NoError(t, svc.Add(ctx, line))
		second, err := svc.GetMovie(ctx, "Heat")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("should reject invalid lines with 422 naming the field", func(t *testing.T) {
		svc := newService(t)

		err := svc.Add(ctx, "Heat,Michael Mann,old,1995,Crime,,")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, httperror.GetStatusCode(err))
		assert.Equal(t, "'eta' must be an integer", httperror.ToHTTPError(err).Message)
		assert.Equal(t, "eta", httperror.ToHTTPError(err).Meta["field"])

		_, err = svc.GetMovie(ctx, "Heat")
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})

	t.Run("should require a title for lookups", func(t *testing.T) {
		_, err := newService(t).GetMovie(ctx, " ")
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})
}
