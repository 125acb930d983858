package database

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
)

func (d Dialect) NewSelectBuilder() *sqlbuilder.SelectBuilder {
	return d.Flavor().NewSelectBuilder()
}

func (d Dialect) NewInsertBuilder() *sqlbuilder.InsertBuilder {
	return d.Flavor().NewInsertBuilder()
}

func (d Dialect) NewUpdateBuilder() *sqlbuilder.UpdateBuilder {
	return d.Flavor().NewUpdateBuilder()
}

// InsertReturningID runs the insert and returns the generated key. Postgres
// reports it through RETURNING, the other dialects through LastInsertId.
func InsertReturningID(ctx context.Context, q Querier, dialect Dialect, ib *sqlbuilder.InsertBuilder, idColumn string) (int64, error) {
	if dialect == DialectPostgres {
		ib.Returning(idColumn)
		query, args := ib.Build()

		var id int64
		if err := q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args := ib.Build()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read generated id: %w", err)
	}
	return id, nil
}
