// Package transactionrepo manages repository layer of transaction audit records.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/pkg/dbpkg"
	"github.com/walletcore/wallet-engine/pkg/errorspkg"
)

// RepoPGS facilitates transaction repository layer logic.
//
// It is pure bookkeeping: it enforces the PENDING -> IN_PROGRESS ->
// {COMPLETED | FAILED} state machine and never talks to the external ledger.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const transactionColumns = `
	id, external_id, source_wallet_id, target_wallet_id, amount, currency,
	type, status, description, error_reason, created_by, created_at, updated_at
`

func scanTransaction(row *sql.Row) (domain.Transaction, error) {
	var (
		t           domain.Transaction
		externalID  sql.NullString
		sourceID    sql.NullInt64
		targetID    sql.NullInt64
		errorReason sql.NullString
	)

	err := row.Scan(
		&t.ID,
		&externalID,
		&sourceID,
		&targetID,
		&t.Amount,
		&t.Currency,
		&t.Type,
		&t.Status,
		&t.Description,
		&errorReason,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}

	t.ExternalID = externalID.String
	t.SourceWalletID = sourceID.Int64
	t.TargetWalletID = targetID.Int64
	t.ErrorReason = errorReason.String

	return t, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

const createQuery = `
INSERT INTO
    transactions (source_wallet_id, target_wallet_id, amount, currency, type, status, description, created_by)
VALUES
    ($1, $2, $3, $4, $5, 'PENDING', $6, $7)
RETURNING` + transactionColumns

// Create creates the PENDING audit record before any external call is made.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	row := db.QueryRowContext(ctx, createQuery,
		nullableID(arg.SourceWalletID),
		nullableID(arg.TargetWalletID),
		arg.Amount,
		arg.Currency,
		arg.Type,
		arg.Description,
		arg.CreatedBy,
	)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_source_wallet_id_fkey", "transactions_target_wallet_id_fkey":
				return t, domain.ErrWalletNotFound
			case "transactions_amount_check":
				return t, domain.ErrInvalidAmount
			case "transactions_wallet_pair_check":
				return t, domain.ErrInvalidAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const markInProgressQuery = `
UPDATE transactions
SET status = 'IN_PROGRESS', updated_at = now()
WHERE id = $1 AND status = 'PENDING'
RETURNING` + transactionColumns

// MarkInProgress moves a PENDING transaction to IN_PROGRESS.
func (r *RepoPGS) MarkInProgress(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	t, err := scanTransaction(db.QueryRowContext(ctx, markInProgressQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionState
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const completeQuery = `
UPDATE transactions
SET status = 'COMPLETED', external_id = $2, updated_at = now()
WHERE id = $1 AND status = 'IN_PROGRESS'
RETURNING` + transactionColumns

// Complete moves an IN_PROGRESS transaction to its COMPLETED terminal state.
// The external id must be the one returned by the external ledger.
func (r *RepoPGS) Complete(ctx context.Context, id int64, externalID string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	t, err := scanTransaction(db.QueryRowContext(ctx, completeQuery, id, externalID))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionState
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const failQuery = `
UPDATE transactions
SET status = 'FAILED', error_reason = $2, updated_at = now()
WHERE id = $1 AND status = 'IN_PROGRESS'
RETURNING` + transactionColumns

// Fail moves an IN_PROGRESS transaction to its FAILED terminal state with
// the captured error reason.
func (r *RepoPGS) Fail(ctx context.Context, id int64, reason string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	t, err := scanTransaction(db.QueryRowContext(ctx, failQuery, id, reason))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionState
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT` + transactionColumns + `
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	t, err := scanTransaction(db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listByWalletQuery = `
SELECT` + transactionColumns + `
FROM transactions
WHERE source_wallet_id = $1 OR target_wallet_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

const listByOwnerQuery = `
SELECT` + transactionColumns + `
FROM transactions t
WHERE EXISTS (
    SELECT 1 FROM wallets w
    WHERE w.owner = $1 AND (w.id = t.source_wallet_id OR w.id = t.target_wallet_id)
)
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// List returns a page of transactions touching the given wallet or any
// wallet of the given owner.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	var (
		rows *sql.Rows
		err  error
	)

	if arg.WalletID != 0 {
		rows, err = db.QueryContext(ctx, listByWalletQuery, arg.WalletID, arg.Limit, arg.Offset)
	} else {
		rows, err = db.QueryContext(ctx, listByOwnerQuery, arg.Owner, arg.Limit, arg.Offset)
	}

	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var (
			t           domain.Transaction
			externalID  sql.NullString
			sourceID    sql.NullInt64
			targetID    sql.NullInt64
			errorReason sql.NullString
		)

		if err := rows.Scan(
			&t.ID,
			&externalID,
			&sourceID,
			&targetID,
			&t.Amount,
			&t.Currency,
			&t.Type,
			&t.Status,
			&t.Description,
			&errorReason,
			&t.CreatedBy,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		t.ExternalID = externalID.String
		t.SourceWalletID = sourceID.Int64
		t.TargetWalletID = targetID.Int64
		t.ErrorReason = errorReason.String

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
