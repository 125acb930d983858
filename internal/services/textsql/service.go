package textsql

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

type SQLGenerator interface {
	GenerateSQL(ctx context.Context, question, model string) (string, error)
}

type SQLExecutor interface {
	Execute(ctx context.Context, statement string) (models.SqlResponse, error)
}

type Service struct {
	logger    ectologger.Logger
	generator SQLGenerator
	executor  SQLExecutor
}

func NewService(generator SQLGenerator, executor SQLExecutor, logger ectologger.Logger) *Service {
	return &Service{
		logger:    logger,
		generator: generator,
		executor:  executor,
	}
}

// Search generates a statement for question and runs it. It never fails: any
// error collapses into the uniform error outcome.
func (s *Service) Search(ctx context.Context, question, model string) models.SearchResponse {
	ctx, span := tracing.StartSpan(ctx, "textsql.Search")
	defer span.End()

	sql, err := s.generator.GenerateSQL(ctx, question, model)
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"question": question,
			"model":    model,
		}).Error("sql generation failed")
		metrics.RecordSearch(models.ClassificationError)
		return models.SearchFailed()
	}

	res, err := s.executor.Execute(ctx, sql)
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.WithContext(ctx).WithError(err).WithField("sql", sql).Error("sql execution failed")
		metrics.RecordSearch(models.ClassificationError)
		return models.SearchFailed()
	}

	metrics.RecordSearch(res.SqlValidation)
	return models.SearchResponse{
		SQL:           sql,
		SqlValidation: res.SqlValidation,
		Results:       res.Results,
	}
}
