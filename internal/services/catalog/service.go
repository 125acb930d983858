package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/internal/repositories/catalog"
	"github.com/Ramsey-B/poppy/pkg/dataline"
	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

type CatalogService interface {
	Add(ctx context.Context, line string) error
	GetMovie(ctx context.Context, title string) (models.Movie, error)
}

type Service struct {
	logger ectologger.Logger
	repo   catalog.CatalogRepository
}

func NewService(repo catalog.CatalogRepository, logger ectologger.Logger) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
	}
}

// Add validates one data line and persists it. Both validation and store
// failures surface as 422.
func (s *Service) Add(ctx context.Context, line string) error {
	ctx, span := tracing.StartSpan(ctx, "catalog.Add")
	defer span.End()

	movie, err := dataline.Parse(line)
	if err != nil {
		metrics.RecordUpsert("invalid")
		s.logger.WithContext(ctx).WithError(err).Info("rejecting data line")
		if fieldErr, ok := dataline.AsFieldError(err); ok {
			return fieldErr.ToHTTPError()
		}
		return httperror.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := s.repo.Upsert(ctx, movie); err != nil {
		metrics.RecordUpsert("error")
		return err
	}

	metrics.RecordUpsert("ok")
	return nil
}

func (s *Service) GetMovie(ctx context.Context, title string) (models.Movie, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.GetMovie")
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return models.Movie{}, httperror.NewHTTPError(http.StatusBadRequest, "titolo is required")
	}

	return s.repo.GetMovie(ctx, title)
}
