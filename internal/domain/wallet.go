// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrWalletNotFound indicates that the wallet is not found.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletAlreadyExists indicates that the owner already has a wallet with the given currency.
	ErrWalletAlreadyExists = errors.New("wallet with the given currency already exists")
	// ErrWalletNotActive indicates that the wallet status forbids the requested operation.
	ErrWalletNotActive = errors.New("wallet is not active")
	// ErrWalletClosed indicates that the wallet is closed and cannot change state anymore.
	ErrWalletClosed = errors.New("wallet is closed")
	// ErrInvalidStatusTransition indicates a forbidden wallet status transition.
	ErrInvalidStatusTransition = errors.New("invalid wallet status transition")
)

// Wallet statuses.
const (
	StatusActive = "ACTIVE"
	StatusFrozen = "FROZEN"
	StatusClosed = "CLOSED"
)

// Wallet holds an owner's balance for a specific currency.
//
// Balance is a cache of the external ledger, never a source of truth. It is
// written only by the reconciliation step.
type Wallet struct {
	ID          int64     `json:"id"`
	ExternalID  string    `json:"external_id"`
	Owner       string    `json:"owner"`
	WalletType  string    `json:"wallet_type"`
	AccountType string    `json:"account_type"`
	Currency    string    `json:"currency"`
	Balance     string    `json:"balance"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedBy   string    `json:"updated_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AcceptsDeposits reports whether the wallet status permits deposits.
// Deposits are permitted even while the wallet is frozen.
func (w Wallet) AcceptsDeposits() bool {
	return w.Status == StatusActive || w.Status == StatusFrozen
}

// AcceptsWithdrawals reports whether the wallet status permits withdrawals
// and outgoing transfers.
func (w Wallet) AcceptsWithdrawals() bool {
	return w.Status == StatusActive
}

// ValidStatusTransition reports whether a wallet may move from one status to
// another. CLOSED is terminal; ACTIVE and FROZEN convert freely.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case StatusActive:
		return to == StatusFrozen || to == StatusClosed
	case StatusFrozen:
		return to == StatusActive || to == StatusClosed
	}

	return false
}

// CreateWalletParams is the input data to create a wallet.
type CreateWalletParams struct {
	Owner       string `json:"owner"`
	WalletType  string `json:"wallet_type"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}
