package catalog

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/dataline"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

type CatalogRepository interface {
	Upsert(ctx context.Context, movie models.Movie) error
	GetMovie(ctx context.Context, title string) (models.Movie, error)
	CountMovies(ctx context.Context) (int, error)
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the director, the movie and its platform links in one
// transaction. Any store failure rolls the whole line back and is returned
// as a 422 carrying the driver message.
func (r *Repository) Upsert(ctx context.Context, movie models.Movie) error {
	ctx, span := tracing.StartSpan(ctx, "CatalogRepository.Upsert")
	defer span.End()

	fields := map[string]any{
		"titolo":      movie.Title,
		"nome":        movie.Director,
		"piattaforme": movie.Platforms,
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return storeError(err)
	}
	defer tx.Rollback(ctx)

	r.logger.WithContext(ctx).WithFields(fields).Info("Upserting movie")

	err = r.upsert(ctx, tx, movie)
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		tracing.RecordError(span, err)
		r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("error upserting movie")
		return storeError(err)
	}

	return nil
}

func (r *Repository) upsert(ctx context.Context, tx database.Tx, movie models.Movie) error {
	directorID, err := r.upsertDirector(ctx, tx, movie.Director, movie.Age)
	if err != nil {
		return err
	}

	movieID, err := r.upsertMovie(ctx, tx, movie, directorID)
	if err != nil {
		return err
	}

	return r.replacePlatforms(ctx, tx, movieID, movie.Platforms)
}

func (r *Repository) findID(ctx context.Context, tx database.Tx, idColumn, table, keyColumn string, key any) (int64, bool, error) {
	sb := r.db.Dialect().NewSelectBuilder()
	sb.Select(idColumn).From(table).Where(sb.Equal(keyColumn, key))
	query, args := sb.Build()

	var id int64
	err := tx.GetContext(ctx, &id, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *Repository) exec(ctx context.Context, tx database.Tx, query string, args []any) error {
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// upsertDirector resolves the director by name, overwriting the age.
func (r *Repository) upsertDirector(ctx context.Context, tx database.Tx, name string, age int) (int64, error) {
	id, found, err := r.findID(ctx, tx, "idR", directorTable, "nome", name)
	if err != nil {
		return 0, err
	}

	dialect := r.db.Dialect()
	if found {
		ub := dialect.NewUpdateBuilder()
		ub.Update(directorTable).Set(ub.Assign("eta", age)).Where(ub.Equal("idR", id))
		query, args := ub.Build()
		return id, r.exec(ctx, tx, query, args)
	}

	ib := dialect.NewInsertBuilder()
	ib.InsertInto(directorTable).Cols("nome", "eta").Values(name, age)
	return database.InsertReturningID(ctx, tx, dialect, ib, "idR")
}

// upsertMovie resolves the movie by title, overwriting director, year and genre.
func (r *Repository) upsertMovie(ctx context.Context, tx database.Tx, movie models.Movie, directorID int64) (int64, error) {
	id, found, err := r.findID(ctx, tx, "idF", movieTable, "titolo", movie.Title)
	if err != nil {
		return 0, err
	}

	dialect := r.db.Dialect()
	if found {
		ub := dialect.NewUpdateBuilder()
		ub.Update(movieTable).Set(
			ub.Assign("idR", directorID),
			ub.Assign("anno", movie.Year),
			ub.Assign("genere", movie.Genre),
		).Where(ub.Equal("idF", id))
		query, args := ub.Build()
		return id, r.exec(ctx, tx, query, args)
	}

	ib := dialect.NewInsertBuilder()
	ib.InsertInto(movieTable).Cols("titolo", "idR", "anno", "genere").Values(movie.Title, directorID, movie.Year, movie.Genre)
	return database.InsertReturningID(ctx, tx, dialect, ib, "idF")
}

// platformID resolves a platform by name, creating it on first use. Existing
// platforms are never modified.
func (r *Repository) platformID(ctx context.Context, tx database.Tx, name string) (int64, error) {
	id, found, err := r.findID(ctx, tx, "idP", platformTable, "nome", name)
	if err != nil || found {
		return id, err
	}

	dialect := r.db.Dialect()
	ib := dialect.NewInsertBuilder()
	ib.InsertInto(platformTable).Cols("nome").Values(name)
	return database.InsertReturningID(ctx, tx, dialect, ib, "idP")
}

// replacePlatforms clears both links and writes at most two new ones.
func (r *Repository) replacePlatforms(ctx context.Context, tx database.Tx, movieID int64, platforms []string) error {
	dialect := r.db.Dialect()

	_, found, err := r.findID(ctx, tx, "idF", availabilityTable, "idF", movieID)
	if err != nil {
		return err
	}
	if !found {
		ib := dialect.NewInsertBuilder()
		ib.InsertInto(availabilityTable).Cols("idF", "idP1", "idP2").Values(movieID, nil, nil)
		query, args := ib.Build()
		if err := r.exec(ctx, tx, query, args); err != nil {
			return err
		}
	}

	ub := dialect.NewUpdateBuilder()
	ub.Update(availabilityTable).Set(
		ub.Assign("idP1", nil),
		ub.Assign("idP2", nil),
	).Where(ub.Equal("idF", movieID))
	query, args := ub.Build()
	if err := r.exec(ctx, tx, query, args); err != nil {
		return err
	}

	platforms = dataline.NormalizePlatforms(platforms...)
	for i, name := range platforms {
		platformID, err := r.platformID(ctx, tx, name)
		if err != nil {
			return err
		}

		column := "idP1"
		if i == 1 {
			column = "idP2"
		}
		ub := dialect.NewUpdateBuilder()
		ub.Update(availabilityTable).Set(ub.Assign(column, platformID)).Where(ub.Equal("idF", movieID))
		query, args := ub.Build()
		if err := r.exec(ctx, tx, query, args); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) GetMovie(ctx context.Context, title string) (models.Movie, error) {
	ctx, span := tracing.StartSpan(ctx, "CatalogRepository.GetMovie")
	defer span.End()

	query, args := movieByTitle(r.db.Dialect(), title)

	var row MovieRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.WithContext(ctx).WithField("titolo", title).Warn("Movie not found")
		return models.Movie{}, httperror.NewHTTPError(http.StatusNotFound, "movie not found")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("titolo", title).Error("error getting movie")
		return models.Movie{}, httperror.NewHTTPError(http.StatusInternalServerError, "error getting movie")
	}

	return row.ToMovie(), nil
}

func (r *Repository) CountMovies(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "CatalogRepository.CountMovies")
	defer span.End()

	sb := r.db.Dialect().NewSelectBuilder()
	sb.Select("COUNT(*)").From(movieTable)
	query, args := sb.Build()

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func storeError(err error) error {
	return httperror.NewHTTPErrorf(http.StatusUnprocessableEntity, "DB error: %s", err.Error())
}
