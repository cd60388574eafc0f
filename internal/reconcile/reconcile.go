// Package reconcile refreshes cached wallet balances from the external ledger.
package reconcile

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/internal/extledger"
	"github.com/walletcore/wallet-engine/pkg/errorspkg"
)

// BalanceStore provides the only write path for cached balances.
//
//go:generate mockgen -source reconcile.go -destination reconcile_mock.go -package reconcile
type BalanceStore interface {
	SetBalance(ctx context.Context, id int64, balance, updatedBy string) (domain.Wallet, error)
}

// Reconciler overwrites local cached balances with fresh reads from the
// external ledger.
type Reconciler struct {
	ledger  extledger.Ledger
	store   BalanceStore
	workers int
}

// New returns a Reconciler with the given fan-out limit for batch refreshes.
func New(ledger extledger.Ledger, store BalanceStore, workers int) *Reconciler {
	if workers <= 0 {
		workers = 8
	}

	return &Reconciler{
		ledger:  ledger,
		store:   store,
		workers: workers,
	}
}

// Refresh reads the authoritative balance and persists it when it differs
// from the cached value. The returned wallet carries the fresh balance.
func (r *Reconciler) Refresh(ctx context.Context, wallet domain.Wallet, actor string) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	fresh, err := r.ledger.GetBalance(ctx, wallet.ExternalID)
	if err != nil {
		l.Error().Err(err).Int64("wallet_id", wallet.ID).Send()

		if errors.Is(err, extledger.ErrUnavailable) {
			return wallet, domain.ErrServiceCommunication
		}

		return wallet, err
	}

	freshDecimal, err := decimal.NewFromString(fresh)
	if err != nil {
		l.Error().Err(err).Int64("wallet_id", wallet.ID).Send()
		return wallet, errorspkg.ErrInternal
	}

	cachedDecimal, err := decimal.NewFromString(wallet.Balance)
	if err == nil && cachedDecimal.Equal(freshDecimal) {
		return wallet, nil
	}

	return r.store.SetBalance(ctx, wallet.ID, fresh, actor)
}

// RefreshAll refreshes the given wallets with a bounded worker pool.
// A failed refresh keeps that wallet's cached balance; one failure never
// aborts the batch.
func (r *Reconciler) RefreshAll(ctx context.Context, wallets []domain.Wallet, actor string) []domain.Wallet {
	l := zerolog.Ctx(ctx)

	out := make([]domain.Wallet, len(wallets))
	copy(out, wallets)

	g := &errgroup.Group{}
	g.SetLimit(r.workers)

	for i := range wallets {
		i := i

		g.Go(func() error {
			refreshed, err := r.Refresh(ctx, wallets[i], actor)
			if err != nil {
				l.Warn().Err(err).Int64("wallet_id", wallets[i].ID).Msg("balance refresh failed")
				return nil
			}

			out[i] = refreshed

			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes the pool.
	_ = g.Wait()

	return out
}
