// Package walletservice manages business logic layer of wallets.
package walletservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/internal/extledger"
)

// Repo provides data access layer interface needed by wallet service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package walletservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateWalletParams, externalID, createdBy string) (domain.Wallet, error)
	Get(ctx context.Context, id int64) (domain.Wallet, error)
	GetForUpdate(ctx context.Context, id int64) (domain.Wallet, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Wallet, error)
	SetStatus(ctx context.Context, id int64, status, updatedBy string) (domain.Wallet, error)
}

// Transactor executes a function within one database transaction.
type Transactor interface {
	Within(ctx context.Context, fn func(ctx context.Context) error) error
}

// Reconciler refreshes cached balances from the source of truth.
type Reconciler interface {
	Refresh(ctx context.Context, wallet domain.Wallet, actor string) (domain.Wallet, error)
	RefreshAll(ctx context.Context, wallets []domain.Wallet, actor string) []domain.Wallet
}

// Emitter publishes wallet domain events.
type Emitter interface {
	Emit(ctx context.Context, event domain.Event) error
}

// Service facilitates wallet service layer logic.
type Service struct {
	repo       Repo
	tx         Transactor
	ledger     extledger.Ledger
	reconciler Reconciler
	emitter    Emitter
}

// New returns wallet service struct to manage wallet business logic.
func New(wr Repo, tx Transactor, ledger extledger.Ledger, rc Reconciler, em Emitter) *Service {
	return &Service{
		repo:       wr,
		tx:         tx,
		ledger:     ledger,
		reconciler: rc,
		emitter:    em,
	}
}

// Create provisions an account in the external ledger first and then records
// the wallet locally. A wallet row never exists without its external account.
func (s *Service) Create(ctx context.Context, actor string, arg domain.CreateWalletParams) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	externalID, err := s.ledger.CreateAccount(ctx, arg.Owner, arg.WalletType, arg.AccountType, arg.Currency)
	if err != nil {
		l.Error().Err(err).Str("owner", arg.Owner).Msg("external account provisioning failed")
		return domain.Wallet{}, domain.ErrServiceCommunication
	}

	wallet, err := s.repo.Create(ctx, arg, externalID, actor)
	if err != nil {
		// The provisioned external account is left unreferenced; it carries a
		// zero balance and is harmless.
		l.Warn().Str("external_id", externalID).Msg("wallet creation failed after external provisioning")
		return wallet, err
	}

	s.emit(ctx, domain.Event{
		Owner:     wallet.Owner,
		WalletID:  wallet.ID,
		EventType: domain.EventWalletCreated,
		Currency:  wallet.Currency,
	})

	return wallet, nil
}

// Get returns the wallet, opportunistically reconciling its cached balance.
// When the external ledger is unreachable the cached value is served as is.
func (s *Service) Get(ctx context.Context, actor string, id int64) (domain.Wallet, error) {
	l := zerolog.Ctx(ctx)

	wallet, err := s.repo.Get(ctx, id)
	if err != nil {
		return wallet, err
	}

	refreshed, err := s.reconciler.Refresh(ctx, wallet, actor)
	if err != nil {
		l.Warn().Err(err).Int64("wallet_id", wallet.ID).Msg("serving cached balance")
		return wallet, nil
	}

	return refreshed, nil
}

// ListByOwner returns the owner's wallets with balances refreshed through the
// bounded reconciliation fan-out. Wallets whose refresh fails keep their
// cached balance.
func (s *Service) ListByOwner(ctx context.Context, actor, owner string) ([]domain.Wallet, error) {
	wallets, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	return s.reconciler.RefreshAll(ctx, wallets, actor), nil
}

// Freeze suspends withdrawals and outgoing transfers from the wallet.
func (s *Service) Freeze(ctx context.Context, actor string, id int64, reason string) (domain.Wallet, error) {
	return s.setStatus(ctx, actor, id, reason, domain.StatusFrozen, domain.EventWalletFrozen)
}

// Unfreeze returns a frozen wallet to full service.
func (s *Service) Unfreeze(ctx context.Context, actor string, id int64, reason string) (domain.Wallet, error) {
	return s.setStatus(ctx, actor, id, reason, domain.StatusActive, domain.EventWalletUnfrozen)
}

// Close retires the wallet permanently.
func (s *Service) Close(ctx context.Context, actor string, id int64, reason string) (domain.Wallet, error) {
	return s.setStatus(ctx, actor, id, reason, domain.StatusClosed, domain.EventWalletClosed)
}

// setStatus moves the wallet through its status state machine under a row
// lock, so concurrent transitions serialize.
func (s *Service) setStatus(ctx context.Context, actor string, id int64, reason, status, eventType string) (domain.Wallet, error) {
	var (
		result domain.Wallet
		event  domain.Event
	)

	err := s.tx.Within(ctx, func(ctx context.Context) error {
		wallet, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if wallet.Status == domain.StatusClosed {
			return domain.ErrWalletClosed
		}

		if !domain.ValidStatusTransition(wallet.Status, status) {
			return domain.ErrInvalidStatusTransition
		}

		result, err = s.repo.SetStatus(ctx, id, status, actor)
		if err != nil {
			return err
		}

		event = domain.Event{
			Owner:     result.Owner,
			WalletID:  result.ID,
			EventType: eventType,
			Currency:  result.Currency,
		}

		return nil
	})
	if err != nil {
		return domain.Wallet{}, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("wallet_id", result.ID).
		Str("status", result.Status).
		Str("reason", reason).
		Str("actor", actor).
		Msg("wallet status changed")

	s.emit(ctx, event)

	return result, nil
}

// emit publishes the event after the enclosing work committed. Emission is
// best effort and never fails the operation.
func (s *Service) emit(ctx context.Context, event domain.Event) {
	if err := s.emitter.Emit(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event_type", event.EventType).Msg("event emission failed")
	}
}
