// Package schema reads the live table/column layout of the store.
package schema

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

var summaryQueries = map[database.Dialect]string{
	database.DialectMySQL: `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = DATABASE()
ORDER BY table_name, ordinal_position`,
	database.DialectPostgres: `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = current_schema()
ORDER BY table_name, ordinal_position`,
	database.DialectSQLite: `SELECT m.name AS table_name, p.name AS column_name, p.type AS data_type
FROM sqlite_master m
JOIN pragma_table_info(m.name) p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%'
ORDER BY m.name, p.cid`,
}

var databaseQueries = map[database.Dialect]string{
	database.DialectMySQL:    `SHOW DATABASES`,
	database.DialectPostgres: `SELECT datname FROM pg_database WHERE NOT datistemplate ORDER BY datname`,
	database.DialectSQLite:   `SELECT name FROM pragma_database_list ORDER BY seq`,
}

type Reader struct {
	db     database.DB
	logger ectologger.Logger
}

func NewReader(db database.DB, logger ectologger.Logger) *Reader {
	return &Reader{
		db:     db,
		logger: logger,
	}
}

// Summary lists every column of the current database ordered by table name
// and column position.
func (r *Reader) Summary(ctx context.Context) ([]models.SchemaColumn, error) {
	ctx, span := tracing.StartSpan(ctx, "SchemaReader.Summary")
	defer span.End()

	conn, err := r.db.Connx(ctx)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to acquire a store connection")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read schema summary")
	}
	defer conn.Close()

	rows, err := conn.QueryxContext(ctx, summaryQueries[r.db.Dialect()])
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to read schema summary")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read schema summary")
	}
	defer rows.Close()

	// positional scan, information_schema column case differs between servers
	columns := []models.SchemaColumn{}
	for rows.Next() {
		var col models.SchemaColumn
		if err := rows.Scan(&col.TableName, &col.ColumnName, &col.DataType); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("failed to scan schema row")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read schema summary")
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to iterate schema rows")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read schema summary")
	}

	return columns, nil
}

// Databases lists the catalogs visible to the connection, minus system ones.
func (r *Reader) Databases(ctx context.Context) ([]models.DatabaseInfo, error) {
	ctx, span := tracing.StartSpan(ctx, "SchemaReader.Databases")
	defer span.End()

	var names []string
	if err := r.db.SelectContext(ctx, &names, databaseQueries[r.db.Dialect()]); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list databases")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list databases")
	}

	system := r.db.Dialect().SystemDatabases()
	out := []models.DatabaseInfo{}
	for _, name := range names {
		if system[strings.ToLower(name)] {
			continue
		}
		out = append(out, models.DatabaseInfo{Name: name})
	}
	return out, nil
}

// Describe renders the summary as one line per table for prompting:
//
//	movies: idF (int), titolo (varchar)
func Describe(columns []models.SchemaColumn) string {
	var sb strings.Builder
	current := ""
	for _, col := range columns {
		if col.TableName != current {
			if current != "" {
				sb.WriteString("\n")
			}
			current = col.TableName
			sb.WriteString(current)
			sb.WriteString(": ")
		} else {
			sb.WriteString(", ")
		}

		if col.DataType == "" {
			sb.WriteString(col.ColumnName)
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (%s)", col.ColumnName, strings.ToLower(col.DataType)))
	}
	return sb.String()
}
