// Package transactionservice manages business logic layer of the transaction
// audit trail.
package transactionservice

import (
	"context"

	"github.com/walletcore/wallet-engine/internal/domain"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo Repo
}

// New returns transaction service struct to browse the audit trail.
func New(tr Repo) *Service {
	return &Service{repo: tr}
}

// Get returns the transaction with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of transactions for the given wallet or owner.
func (s *Service) List(ctx context.Context, walletID int64, owner string, pageSize, pageID int32) ([]domain.Transaction, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	transactions, err := s.repo.List(ctx, domain.ListTransactionsParams{
		WalletID: walletID,
		Owner:    owner,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
