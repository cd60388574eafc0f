package dbpkg

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// Transactor executes functions within a single database transaction so that
// row locks acquired inside the function are held until it returns.
type Transactor struct {
	conn *sql.DB
}

// NewTransactor returns a Transactor over the given connection.
func NewTransactor(conn *sql.DB) *Transactor {
	return &Transactor{conn: conn}
}

// Within executes fn within a repeatable read transaction.
//
// The transaction handle travels in the context; repositories pick it up with
// FromContext. The transaction is committed when fn returns nil and rolled
// back otherwise.
func (t *Transactor) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}

		return err
	}

	return tx.Commit()
}

// FromContext returns the transaction carried by ctx or db when there is none.
func FromContext(ctx context.Context, db SQLInterface) SQLInterface {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}

	return db
}
