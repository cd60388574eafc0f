// Package extledger defines the port to the external authoritative ledger.
//
// The external ledger is the single arbiter of balance truth. Every call is
// treated as potentially slow or failing and is issued synchronously; retry
// and backoff policy belongs to the implementation, never to the callers.
package extledger

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates that the external ledger is unreachable or timed out.
	ErrUnavailable = errors.New("external ledger unavailable")
	// ErrInsufficientFunds indicates that the external ledger rejected the operation
	// because the source account lacks funds.
	ErrInsufficientFunds = errors.New("external ledger: insufficient funds")
	// ErrAccountNotFound indicates that the external account does not exist.
	ErrAccountNotFound = errors.New("external ledger: account not found")
)

// Ledger is the narrow interface to the authoritative external system.
//
//go:generate mockgen -source ledger.go -destination ledger_mock.go -package extledger
type Ledger interface {
	// CreateAccount provisions an account and returns its external id.
	CreateAccount(ctx context.Context, owner, walletType, accountType, currency string) (string, error)
	// GetBalance returns the authoritative balance of the given external account.
	GetBalance(ctx context.Context, externalID string) (string, error)
	// Deposit credits the account and returns the external transaction id.
	Deposit(ctx context.Context, externalID, amount string) (string, error)
	// Withdraw debits the account and returns the external transaction id.
	Withdraw(ctx context.Context, externalID, amount string) (string, error)
	// Transfer moves funds between two external accounts and returns the
	// external transaction id.
	Transfer(ctx context.Context, sourceExternalID, targetExternalID, amount string) (string, error)
}
