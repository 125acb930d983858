package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

type TxContextKey string

const txKey = TxContextKey("tx-context-key")

type Tx interface {
	Querier
	IsOpen() bool
	// IsOwner reports whether this handle began the transaction and is
	// responsible for ending it.
	IsOwner() bool
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type txState struct {
	closed bool
}

// Transaction wraps sqlx.Tx. Handles that join a transaction already on the
// context share its state but never commit or roll it back.
type Transaction struct {
	*sqlx.Tx
	logger ectologger.Logger
	state  *txState
	owner  bool
}

func NewTx(tx *sqlx.Tx, logger ectologger.Logger) Tx {
	return &Transaction{
		Tx:     tx,
		logger: logger,
		state:  &txState{},
		owner:  true,
	}
}

// GetTx joins the open transaction carried by ctx or begins a new one.
func GetTx(ctx context.Context, logger ectologger.Logger, db txBeginner, opts *sql.TxOptions) (context.Context, Tx, error) {
	if parent, ok := ctx.Value(txKey).(*Transaction); ok && parent != nil && parent.IsOpen() {
		return ctx, &Transaction{
			Tx:     parent.Tx,
			logger: logger,
			state:  parent.state,
			owner:  false,
		}, nil
	}

	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Errorf("error while beginning transaction")
		return ctx, nil, fmt.Errorf("error while beginning transaction: %w", err)
	}

	newTx := NewTx(tx, logger)
	ctx = context.WithValue(ctx, txKey, newTx)
	return ctx, newTx, nil
}

func (t *Transaction) IsOpen() bool {
	return !t.state.closed
}

func (t *Transaction) IsOwner() bool {
	return t.owner
}

// Rollback is safe to defer: it is a no-op after Commit or on a joined handle.
func (t *Transaction) Rollback(ctx context.Context) error {
	if !t.owner || t.state.closed {
		return nil
	}

	t.state.closed = true
	if err := t.Tx.Rollback(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while rolling back transaction")
		return fmt.Errorf("error while rolling back transaction: %w", err)
	}

	return nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if !t.owner || t.state.closed {
		return nil
	}

	t.state.closed = true
	if err := t.Tx.Commit(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while committing transaction")
		return fmt.Errorf("error while committing transaction: %w", err)
	}

	return nil
}
