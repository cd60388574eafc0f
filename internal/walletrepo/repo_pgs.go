// Package walletrepo manages repository layer of wallets.
package walletrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/pkg/dbpkg"
	"github.com/walletcore/wallet-engine/pkg/errorspkg"
)

// RepoPGS facilitates wallet repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns wallet RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const walletColumns = `
	id, external_id, owner, wallet_type, account_type, currency, balance, status,
	created_by, created_at, updated_by, updated_at
`

func scanWallet(row *sql.Row) (domain.Wallet, error) {
	var w domain.Wallet

	err := row.Scan(
		&w.ID,
		&w.ExternalID,
		&w.Owner,
		&w.WalletType,
		&w.AccountType,
		&w.Currency,
		&w.Balance,
		&w.Status,
		&w.CreatedBy,
		&w.CreatedAt,
		&w.UpdatedBy,
		&w.UpdatedAt,
	)

	return w, err
}

const createQuery = `
INSERT INTO
    wallets (external_id, owner, wallet_type, account_type, currency, balance, status, created_by, updated_by)
VALUES
    ($1, $2, $3, $4, $5, 0, 'ACTIVE', $6, $6)
RETURNING` + walletColumns

// Create creates the wallet and then returns it. The external account must
// already be provisioned.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateWalletParams, externalID, createdBy string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	row := db.QueryRowContext(ctx, createQuery,
		externalID, arg.Owner, arg.WalletType, arg.AccountType, arg.Currency, createdBy)

	w, err := scanWallet(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "wallets_owner_currency_key" {
				return w, domain.ErrWalletAlreadyExists
			}
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const getQuery = `
SELECT` + walletColumns + `
FROM wallets
WHERE id = $1
`

// Get returns the wallet with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	w, err := scanWallet(db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const getForUpdateQuery = `
SELECT` + walletColumns + `
FROM wallets
WHERE id = $1
FOR UPDATE
`

// GetForUpdate returns the wallet with the given id under an exclusive row
// lock. It must run inside a transaction carried by the context; the lock is
// held until that transaction ends.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id int64) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	w, err := scanWallet(db.QueryRowContext(ctx, getForUpdateQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const getByOwnerAndCurrencyQuery = `
SELECT` + walletColumns + `
FROM wallets
WHERE owner = $1 AND currency = $2
`

// GetByOwnerAndCurrency returns the owner's wallet for the given currency.
func (r *RepoPGS) GetByOwnerAndCurrency(ctx context.Context, owner, currency string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	w, err := scanWallet(db.QueryRowContext(ctx, getByOwnerAndCurrencyQuery, owner, currency))
	if err != nil {
		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		l.Error().Err(err).Send()

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const listByOwnerQuery = `
SELECT` + walletColumns + `
FROM wallets
WHERE owner = $1
ORDER BY id
`

// ListByOwner returns all wallets of the given owner.
func (r *RepoPGS) ListByOwner(ctx context.Context, owner string) ([]domain.Wallet, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	rows, err := db.QueryContext(ctx, listByOwnerQuery, owner)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Wallet{}

	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(
			&w.ID,
			&w.ExternalID,
			&w.Owner,
			&w.WalletType,
			&w.AccountType,
			&w.Currency,
			&w.Balance,
			&w.Status,
			&w.CreatedBy,
			&w.CreatedAt,
			&w.UpdatedBy,
			&w.UpdatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, w)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const setBalanceQuery = `
UPDATE wallets
SET balance = $1, updated_by = $2, updated_at = now()
WHERE id = $3
RETURNING` + walletColumns

// SetBalance overwrites the cached balance with a value read from the
// external ledger. Reconciliation is the only caller; the balance is never
// derived by local arithmetic.
func (r *RepoPGS) SetBalance(ctx context.Context, id int64, balance, updatedBy string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	w, err := scanWallet(db.QueryRowContext(ctx, setBalanceQuery, balance, updatedBy, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}

const setStatusQuery = `
UPDATE wallets
SET status = $1, updated_by = $2, updated_at = now()
WHERE id = $3
RETURNING` + walletColumns

// SetStatus moves the wallet to the given status. Callers validate the
// transition against the wallet state machine first.
func (r *RepoPGS) SetStatus(ctx context.Context, id int64, status, updatedBy string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)
	db := dbpkg.FromContext(ctx, r.db)

	w, err := scanWallet(db.QueryRowContext(ctx, setStatusQuery, status, updatedBy, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return w, domain.ErrWalletNotFound
		}

		return w, errorspkg.ErrInternal
	}

	return w, nil
}
