package extledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InMemory is a concurrency-safe in-memory ledger used in tests and local
// development wiring.
type InMemory struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

// NewInMemory returns an empty in-memory ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		balances: make(map[string]decimal.Decimal),
	}
}

// CreateAccount provisions an account with a zero balance.
func (l *InMemory) CreateAccount(_ context.Context, owner, walletType, accountType, currency string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	externalID := uuid.NewString()
	l.balances[externalID] = decimal.Zero

	return externalID, nil
}

// GetBalance returns the authoritative balance of the account.
func (l *InMemory) GetBalance(_ context.Context, externalID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[externalID]
	if !ok {
		return "", ErrAccountNotFound
	}

	return balance.String(), nil
}

// Deposit credits the account.
func (l *InMemory) Deposit(_ context.Context, externalID, amount string) (string, error) {
	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[externalID]
	if !ok {
		return "", ErrAccountNotFound
	}

	l.balances[externalID] = balance.Add(amountDecimal)

	return uuid.NewString(), nil
}

// Withdraw debits the account.
func (l *InMemory) Withdraw(_ context.Context, externalID, amount string) (string, error) {
	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[externalID]
	if !ok {
		return "", ErrAccountNotFound
	}

	if balance.LessThan(amountDecimal) {
		return "", ErrInsufficientFunds
	}

	l.balances[externalID] = balance.Sub(amountDecimal)

	return uuid.NewString(), nil
}

// Transfer moves funds between two accounts.
func (l *InMemory) Transfer(_ context.Context, sourceExternalID, targetExternalID, amount string) (string, error) {
	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sourceBalance, ok := l.balances[sourceExternalID]
	if !ok {
		return "", ErrAccountNotFound
	}

	targetBalance, ok := l.balances[targetExternalID]
	if !ok {
		return "", ErrAccountNotFound
	}

	if sourceBalance.LessThan(amountDecimal) {
		return "", ErrInsufficientFunds
	}

	l.balances[sourceExternalID] = sourceBalance.Sub(amountDecimal)
	l.balances[targetExternalID] = targetBalance.Add(amountDecimal)

	return uuid.NewString(), nil
}

// SetBalance overrides an account balance. Test helper.
func (l *InMemory) SetBalance(externalID, balance string) error {
	balanceDecimal, err := decimal.NewFromString(balance)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[externalID] = balanceDecimal

	return nil
}
