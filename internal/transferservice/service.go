// Package transferservice coordinates money movement between wallets and the
// external ledger.
package transferservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/internal/extledger"
	"github.com/walletcore/wallet-engine/pkg/currencypkg"
)

// Transactor executes a function within one database transaction. Row locks
// acquired inside the function are held until it returns.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Transactor interface {
	Within(ctx context.Context, fn func(ctx context.Context) error) error
}

// WalletStore provides wallet data access needed by the coordinator.
type WalletStore interface {
	GetForUpdate(ctx context.Context, id int64) (domain.Wallet, error)
}

// TransactionStore provides the transaction audit state machine.
type TransactionStore interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	MarkInProgress(ctx context.Context, id int64) (domain.Transaction, error)
	Complete(ctx context.Context, id int64, externalID string) (domain.Transaction, error)
	Fail(ctx context.Context, id int64, reason string) (domain.Transaction, error)
}

// Reconciler refreshes a wallet's cached balance from the source of truth.
type Reconciler interface {
	Refresh(ctx context.Context, wallet domain.Wallet, actor string) (domain.Wallet, error)
}

// Emitter publishes wallet domain events.
type Emitter interface {
	Emit(ctx context.Context, event domain.Event) error
}

// Service facilitates deposit, withdrawal and transfer orchestration.
type Service struct {
	tx           Transactor
	wallets      WalletStore
	transactions TransactionStore
	ledger       extledger.Ledger
	reconciler   Reconciler
	emitter      Emitter
}

// New returns the transfer coordinator.
func New(tx Transactor, ws WalletStore, ts TransactionStore, ledger extledger.Ledger, rc Reconciler, em Emitter) *Service {
	return &Service{
		tx:           tx,
		wallets:      ws,
		transactions: ts,
		ledger:       ledger,
		reconciler:   rc,
		emitter:      em,
	}
}

// parseAmount validates that the amount is a positive decimal.
func parseAmount(amount string) (decimal.Decimal, error) {
	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, domain.ErrNegativeAmount
	}

	return amountDecimal, nil
}

// checkScale rejects amounts more precise than the currency is settled in.
func checkScale(amount decimal.Decimal, currency string) error {
	if amount.Exponent() < -currencypkg.Scale(currency) {
		return domain.ErrInvalidAmount
	}

	return nil
}

// classify maps an external ledger failure to the caller-facing taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, extledger.ErrInsufficientFunds):
		return domain.ErrInsufficientBalance
	case errors.Is(err, extledger.ErrUnavailable):
		return domain.ErrServiceCommunication
	default:
		return domain.ErrTransactionFailed
	}
}

// Deposit credits the wallet through the external ledger.
//
// Deposits are permitted while the wallet is frozen.
func (s *Service) Deposit(ctx context.Context, actor string, walletID int64, amount, description string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if _, err := parseAmount(amount); err != nil {
		l.Info().Err(err).Send()
		return domain.Transaction{}, err
	}

	var (
		result domain.Transaction
		opErr  error
		events []domain.Event
	)

	err := s.tx.Within(ctx, func(ctx context.Context) error {
		wallet, err := s.wallets.GetForUpdate(ctx, walletID)
		if err != nil {
			return err
		}

		if !wallet.AcceptsDeposits() {
			return domain.ErrWalletNotActive
		}

		amountDecimal, _ := parseAmount(amount)
		if err := checkScale(amountDecimal, wallet.Currency); err != nil {
			return err
		}

		txn, err := s.transactions.Create(ctx, domain.CreateTransactionParams{
			TargetWalletID: wallet.ID,
			Amount:         amount,
			Currency:       wallet.Currency,
			Type:           domain.TypeDeposit,
			Description:    description,
			CreatedBy:      actor,
		})
		if err != nil {
			return err
		}

		txn, err = s.transactions.MarkInProgress(ctx, txn.ID)
		if err != nil {
			return err
		}

		externalTxID, err := s.ledger.Deposit(ctx, wallet.ExternalID, amount)
		if err != nil {
			// The FAILED audit must survive, so the enclosing transaction
			// still commits; only a persistence error aborts it.
			failed, failErr := s.transactions.Fail(ctx, txn.ID, err.Error())
			if failErr != nil {
				return failErr
			}

			result, opErr = failed, classify(err)

			return nil
		}

		s.refreshAfterMutation(ctx, wallet, actor)

		result, err = s.transactions.Complete(ctx, txn.ID, externalTxID)
		if err != nil {
			return err
		}

		events = append(events, domain.Event{
			Owner:         wallet.Owner,
			WalletID:      wallet.ID,
			EventType:     domain.EventDeposit,
			Amount:        amount,
			Currency:      wallet.Currency,
			TransactionID: result.ID,
		})

		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if opErr != nil {
		return result, opErr
	}

	s.emit(ctx, events)

	return result, nil
}

// Withdraw debits the wallet through the external ledger.
//
// The wallet must be ACTIVE. When the cached balance looks insufficient the
// coordinator reconciles once against the source of truth and rechecks before
// rejecting, so no external side effect is ever issued for a doomed request.
func (s *Service) Withdraw(ctx context.Context, actor string, walletID int64, amount, description string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if _, err := parseAmount(amount); err != nil {
		l.Info().Err(err).Send()
		return domain.Transaction{}, err
	}

	var (
		result domain.Transaction
		opErr  error
		events []domain.Event
	)

	err := s.tx.Within(ctx, func(ctx context.Context) error {
		wallet, err := s.wallets.GetForUpdate(ctx, walletID)
		if err != nil {
			return err
		}

		if !wallet.AcceptsWithdrawals() {
			return domain.ErrWalletNotActive
		}

		amountDecimal, _ := parseAmount(amount)
		if err := checkScale(amountDecimal, wallet.Currency); err != nil {
			return err
		}

		txn, err := s.transactions.Create(ctx, domain.CreateTransactionParams{
			SourceWalletID: wallet.ID,
			Amount:         amount,
			Currency:       wallet.Currency,
			Type:           domain.TypeWithdrawal,
			Description:    description,
			CreatedBy:      actor,
		})
		if err != nil {
			return err
		}

		txn, err = s.transactions.MarkInProgress(ctx, txn.ID)
		if err != nil {
			return err
		}

		wallet, ok, err := s.ensureBalance(ctx, wallet, amountDecimal, actor)
		if err != nil {
			return err
		}

		if !ok {
			failed, failErr := s.transactions.Fail(ctx, txn.ID, domain.ErrInsufficientBalance.Error())
			if failErr != nil {
				return failErr
			}

			result, opErr = failed, domain.ErrInsufficientBalance

			return nil
		}

		externalTxID, err := s.ledger.Withdraw(ctx, wallet.ExternalID, amount)
		if err != nil {
			failed, failErr := s.transactions.Fail(ctx, txn.ID, err.Error())
			if failErr != nil {
				return failErr
			}

			result, opErr = failed, classify(err)

			return nil
		}

		s.refreshAfterMutation(ctx, wallet, actor)

		result, err = s.transactions.Complete(ctx, txn.ID, externalTxID)
		if err != nil {
			return err
		}

		events = append(events, domain.Event{
			Owner:         wallet.Owner,
			WalletID:      wallet.ID,
			EventType:     domain.EventWithdrawal,
			Amount:        amount,
			Currency:      wallet.Currency,
			TransactionID: result.ID,
		})

		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if opErr != nil {
		return result, opErr
	}

	s.emit(ctx, events)

	return result, nil
}

// Transfer moves funds between two wallets through the external ledger.
func (s *Service) Transfer(ctx context.Context, actor string, sourceID, targetID int64, amount, description string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if _, err := parseAmount(amount); err != nil {
		l.Info().Err(err).Send()
		return domain.Transaction{}, err
	}

	if sourceID == targetID {
		return domain.Transaction{}, domain.ErrSameWallet
	}

	var (
		result domain.Transaction
		opErr  error
		events []domain.Event
	)

	err := s.tx.Within(ctx, func(ctx context.Context) error {
		// Locks are always acquired in ascending wallet id order, independent
		// of the source/target roles, to rule out deadlocks between opposite
		// concurrent transfers.
		firstID, secondID := sourceID, targetID
		if targetID < sourceID {
			firstID, secondID = targetID, sourceID
		}

		first, err := s.wallets.GetForUpdate(ctx, firstID)
		if err != nil {
			return err
		}

		second, err := s.wallets.GetForUpdate(ctx, secondID)
		if err != nil {
			return err
		}

		source, target := first, second
		if first.ID != sourceID {
			source, target = second, first
		}

		if !source.AcceptsWithdrawals() || target.Status != domain.StatusActive {
			return domain.ErrWalletNotActive
		}

		if source.Currency != target.Currency {
			return domain.ErrCurrencyMismatch
		}

		amountDecimal, _ := parseAmount(amount)
		if err := checkScale(amountDecimal, source.Currency); err != nil {
			return err
		}

		txn, err := s.transactions.Create(ctx, domain.CreateTransactionParams{
			SourceWalletID: source.ID,
			TargetWalletID: target.ID,
			Amount:         amount,
			Currency:       source.Currency,
			Type:           domain.TypeTransfer,
			Description:    description,
			CreatedBy:      actor,
		})
		if err != nil {
			return err
		}

		txn, err = s.transactions.MarkInProgress(ctx, txn.ID)
		if err != nil {
			return err
		}

		source, ok, err := s.ensureBalance(ctx, source, amountDecimal, actor)
		if err != nil {
			return err
		}

		if !ok {
			failed, failErr := s.transactions.Fail(ctx, txn.ID, domain.ErrInsufficientBalance.Error())
			if failErr != nil {
				return failErr
			}

			result, opErr = failed, domain.ErrInsufficientBalance

			return nil
		}

		externalTxID, err := s.ledger.Transfer(ctx, source.ExternalID, target.ExternalID, amount)
		if err != nil {
			failed, failErr := s.transactions.Fail(ctx, txn.ID, err.Error())
			if failErr != nil {
				return failErr
			}

			result, opErr = failed, classify(err)

			return nil
		}

		// Both balances are re-read from the source of truth independently;
		// the target is never derived as old + amount, so externally applied
		// fees or rounding are absorbed.
		s.refreshAfterMutation(ctx, source, actor)
		s.refreshAfterMutation(ctx, target, actor)

		result, err = s.transactions.Complete(ctx, txn.ID, externalTxID)
		if err != nil {
			return err
		}

		events = append(events,
			domain.Event{
				Owner:         source.Owner,
				WalletID:      source.ID,
				EventType:     domain.EventTransferOut,
				Amount:        amount,
				Currency:      source.Currency,
				TransactionID: result.ID,
			},
			domain.Event{
				Owner:         target.Owner,
				WalletID:      target.ID,
				EventType:     domain.EventTransferIn,
				Amount:        amount,
				Currency:      target.Currency,
				TransactionID: result.ID,
			},
		)

		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if opErr != nil {
		return result, opErr
	}

	s.emit(ctx, events)

	return result, nil
}

// ensureBalance reports whether the wallet covers the amount, reconciling
// once from the external ledger when the cache looks insufficient.
func (s *Service) ensureBalance(ctx context.Context, wallet domain.Wallet, amount decimal.Decimal, actor string) (domain.Wallet, bool, error) {
	l := zerolog.Ctx(ctx)

	balance, err := decimal.NewFromString(wallet.Balance)
	if err != nil {
		l.Error().Err(err).Int64("wallet_id", wallet.ID).Send()
		return wallet, false, err
	}

	if balance.GreaterThanOrEqual(amount) {
		return wallet, true, nil
	}

	refreshed, err := s.reconciler.Refresh(ctx, wallet, actor)
	if err != nil {
		l.Warn().Err(err).Int64("wallet_id", wallet.ID).Msg("reconciliation before rejection failed")
		return wallet, false, nil
	}

	balance, err = decimal.NewFromString(refreshed.Balance)
	if err != nil {
		l.Error().Err(err).Int64("wallet_id", wallet.ID).Send()
		return refreshed, false, err
	}

	return refreshed, balance.GreaterThanOrEqual(amount), nil
}

// refreshAfterMutation performs the mandatory post-mutation reconciliation.
// A failed refresh keeps the last known cached value; the transaction still
// completes because the external side effect already happened.
func (s *Service) refreshAfterMutation(ctx context.Context, wallet domain.Wallet, actor string) {
	if _, err := s.reconciler.Refresh(ctx, wallet, actor); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("wallet_id", wallet.ID).Msg("post-mutation reconciliation failed")
	}
}

// emit publishes events after the enclosing transaction committed. Emission
// is best effort and never fails the operation.
func (s *Service) emit(ctx context.Context, events []domain.Event) {
	l := zerolog.Ctx(ctx)

	for _, event := range events {
		if err := s.emitter.Emit(ctx, event); err != nil {
			l.Warn().Err(err).Str("event_type", event.EventType).Msg("event emission failed")
		}
	}
}
