package domain

import (
	"errors"
	"time"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrCurrencyMismatch indicates that transfer wallets have different currencies.
	ErrCurrencyMismatch = errors.New("wallets currency mismatch")
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrInsufficientBalance indicates that the wallet does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrTransactionFailed wraps an external ledger failure of a started transaction.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrServiceCommunication indicates that the external ledger is unreachable.
	ErrServiceCommunication = errors.New("external ledger communication failed")
	// ErrTransactionState indicates a transaction state transition that must never happen.
	ErrTransactionState = errors.New("illegal transaction state transition")
	// ErrSameWallet indicates a transfer whose source and target wallets are identical.
	ErrSameWallet = errors.New("transfer source and target wallets are identical")
)

// Transaction types.
const (
	TypeDeposit    = "DEPOSIT"
	TypeWithdrawal = "WITHDRAWAL"
	TypeTransfer   = "TRANSFER"
)

// Transaction statuses. Transitions are strictly
// PENDING -> IN_PROGRESS -> {COMPLETED | FAILED}.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Transaction is the audited record of one deposit, withdrawal or transfer
// attempt and its terminal outcome.
//
// A zero SourceWalletID denotes a deposit, a zero TargetWalletID a
// withdrawal; both set denotes a transfer. ExternalID is populated only when
// the external ledger accepted the operation.
type Transaction struct {
	ID             int64     `json:"id"`
	ExternalID     string    `json:"external_id,omitempty"`
	SourceWalletID int64     `json:"source_wallet_id,omitempty"`
	TargetWalletID int64     `json:"target_wallet_id,omitempty"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Description    string    `json:"description,omitempty"`
	ErrorReason    string    `json:"error_reason,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateTransactionParams is the input data for the transaction audit record.
type CreateTransactionParams struct {
	SourceWalletID int64  `json:"source_wallet_id"`
	TargetWalletID int64  `json:"target_wallet_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	CreatedBy      string `json:"created_by"`
}

// ListTransactionsParams is the input data to page through transactions.
type ListTransactionsParams struct {
	WalletID int64  `json:"wallet_id"`
	Owner    string `json:"owner"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}
