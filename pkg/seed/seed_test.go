package seed_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogrepo "github.com/Ramsey-B/poppy/internal/repositories/catalog"
	"github.com/Ramsey-B/poppy/internal/services/catalog"
	"github.com/Ramsey-B/poppy/internal/testdb"
	"github.com/Ramsey-B/poppy/pkg/seed"
)

const seedPath = "/seed/data.tsv"

const withHeader = "titolo\tregista\teta\tanno\tgenere\tp1\tp2\n" +
	"Matrix\tWachowski\t55\t1999\tSciFi\tNetflix\tPrime\n" +
	"Heat\tMichael Mann\t81\t1995\tCrime\n" +
	"Broken\tNobody\n" +
	"Bad Age\tSomeone\told\t2000\tDrama\t\t\n"

type fixture struct {
	seeder *seed.Seeder
	repo   *catalogrepo.Repository
	fs     afero.Fs
}

func newFixture(t *testing.T, pinger seed.Pinger) *fixture {
	logger := testdb.Logger()
	db := testdb.New(t)
	repo := catalogrepo.NewRepository(db, logger)
	fs := afero.NewMemMapFs()
	if pinger == nil {
		pinger = db
	}

	cfg := seed.Config{Path: seedPath, WaitAttempts: 3, WaitDelay: time.Millisecond}
	return &fixture{
		seeder: seed.NewSeeder(cfg, fs, pinger, repo, catalog.NewService(repo, logger), logger),
		repo:   repo,
		fs:     fs,
	}
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("should do nothing without a seed file", func(t *testing.T) {
		f := newFixture(t, nil)

		res, err := f.seeder.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, seed.Result{}, res)
	})

	t.Run("should load rows and count failures", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, afero.WriteFile(f.fs, seedPath, []byte(withHeader), 0o644))

		res, err := f.seeder.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, seed.Result{Inserted: 2, Errors: 2}, res)

		movie, err := f.repo.GetMovie(ctx, "Heat")
		require.NoError(t, err)
		assert.Equal(t, "Michael Mann", movie.Director)
		assert.Empty(t, movie.Platforms)
	})

	t.Run("should skip a populated catalog", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, afero.WriteFile(f.fs, seedPath, []byte(withHeader), 0o644))

		_, err := f.seeder.Run(ctx)
		require.NoError(t, err)

		res, err := f.seeder.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, seed.Result{}, res)
	})

	t.Run("should fail when the database never answers", func(t *testing.T) {
		f := newFixture(t, failingPinger{})
		require.NoError(t, afero.WriteFile(f.fs, seedPath, []byte(withHeader), 0o644))

		_, err := f.seeder.Run(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempts")
	})
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error { return errors.New("connection refused") }

func TestSeeder_Load(t *testing.T) {
	t.Run("should treat the first row as data when it has numbers", func(t *testing.T) {
		f := newFixture(t, nil)

		res, err := f.seeder.Load(context.Background(), strings.NewReader("Matrix\tWachowski\t55\t1999\tSciFi\n"))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Inserted)
	})
}

func TestToLine(t *testing.T) {
	assert.Equal(t, "Heat,Michael Mann,81,1995,Crime,,", seed.ToLine([]string{" Heat ", "Michael Mann", "81", "1995", "Crime"}))
	assert.Equal(t, "a,b,1,2,c,d,e", seed.ToLine([]string{"a", "b", "1", "2", "c", "d", "e", "extra"}))
}
