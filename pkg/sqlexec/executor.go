// Package sqlexec runs a single read-only statement and shapes its rows.
package sqlexec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// DefaultItemType labels rows whose statement has no recognisable FROM table.
const DefaultItemType = "result"

var (
	selectPattern = regexp.MustCompile(`(?i)^select\b`)
	fromPattern   = regexp.MustCompile("(?i)\\bfrom\\s+[`\"\\[]?([A-Za-z_][A-Za-z0-9_]*)")
)

type Executor struct {
	db     database.DB
	logger ectologger.Logger
}

func NewExecutor(db database.DB, logger ectologger.Logger) *Executor {
	return &Executor{
		db:     db,
		logger: logger,
	}
}

// IsSelect reports whether the trimmed statement starts with the SELECT keyword.
func IsSelect(statement string) bool {
	return selectPattern.MatchString(strings.TrimSpace(statement))
}

// ItemType derives the result label from the first table after FROM.
func ItemType(statement string) string {
	match := fromPattern.FindStringSubmatch(statement)
	if len(match) < 2 {
		return DefaultItemType
	}
	return match[1]
}

// Execute classifies and runs one statement. Anything that is not a single
// SELECT is reported unsafe without touching the store; a statement the store
// rejects is invalid. The statement runs in a read-only transaction that is
// always rolled back. The returned error is reserved for failing to reach the
// store.
func (e *Executor) Execute(ctx context.Context, statement string) (models.SqlResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "sqlexec.Execute")
	defer span.End()

	statement = strings.TrimSpace(statement)
	if !IsSelect(statement) || !SingleStatement(statement) {
		e.logger.WithContext(ctx).WithField("statement", statement).Warn("rejecting unsafe statement")
		metrics.RecordClassification(models.ClassificationUnsafe)
		return models.NewSqlResponse(models.ClassificationUnsafe), nil
	}

	conn, err := e.db.Connx(ctx)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("failed to acquire a store connection")
		tracing.RecordError(span, err)
		return models.SqlResponse{}, fmt.Errorf("failed to acquire a store connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("failed to open a read-only transaction")
		tracing.RecordError(span, err)
		return models.SqlResponse{}, fmt.Errorf("failed to open a read-only transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			e.logger.WithContext(ctx).WithError(err).Warn("failed to roll back read-only transaction")
		}
	}()

	start := time.Now()
	items, err := e.query(ctx, tx, statement)
	metrics.RecordQueryDuration(time.Since(start))
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("statement", statement).Info("store rejected statement")
		metrics.RecordClassification(models.ClassificationInvalid)
		return models.NewSqlResponse(models.ClassificationInvalid), nil
	}

	metrics.RecordClassification(models.ClassificationValid)
	return models.SqlResponse{
		SqlValidation: models.ClassificationValid,
		Results:       items,
	}, nil
}

func (e *Executor) query(ctx context.Context, conn database.Querier, statement string) ([]models.ResultItem, error) {
	rows, err := conn.QueryxContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	items := []models.ResultItem{}
	if len(columns) == 0 {
		return items, nil
	}

	itemType := ItemType(statement)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}

		props := make([]models.Property, len(columns))
		for i, column := range columns {
			props[i] = models.Property{Name: column, Value: Stringify(values[i])}
		}
		items = append(items, models.ResultItem{ItemType: itemType, Properties: props})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Stringify renders a scanned value as text. NULL becomes the empty string.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.DateTime)
	default:
		return fmt.Sprint(v)
	}
}
