package extledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Error codes returned by the external ledger API.
const (
	codeInsufficientFunds = "INSUFFICIENT_FUNDS"
	codeAccountNotFound   = "ACCOUNT_NOT_FOUND"
)

// Client calls the external ledger over its REST API. It performs no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the ledger reachable at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type createAccountRequest struct {
	Owner       string `json:"owner"`
	WalletType  string `json:"wallet_type"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}

type accountResponse struct {
	AccountID string `json:"account_id"`
}

// CreateAccount provisions an account and returns its external id.
func (c *Client) CreateAccount(ctx context.Context, owner, walletType, accountType, currency string) (string, error) {
	req := createAccountRequest{
		Owner:       owner,
		WalletType:  walletType,
		AccountType: accountType,
		Currency:    currency,
	}

	var res accountResponse
	if err := c.do(ctx, http.MethodPost, "/accounts", req, &res); err != nil {
		return "", err
	}

	return res.AccountID, nil
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

// GetBalance returns the authoritative balance of the given external account.
func (c *Client) GetBalance(ctx context.Context, externalID string) (string, error) {
	var res balanceResponse
	if err := c.do(ctx, http.MethodGet, "/accounts/"+externalID+"/balance", nil, &res); err != nil {
		return "", err
	}

	return res.Balance, nil
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type transactionResponse struct {
	TransactionID string `json:"transaction_id"`
}

// Deposit credits the account and returns the external transaction id.
func (c *Client) Deposit(ctx context.Context, externalID, amount string) (string, error) {
	var res transactionResponse
	if err := c.do(ctx, http.MethodPost, "/accounts/"+externalID+"/deposits", amountRequest{Amount: amount}, &res); err != nil {
		return "", err
	}

	return res.TransactionID, nil
}

// Withdraw debits the account and returns the external transaction id.
func (c *Client) Withdraw(ctx context.Context, externalID, amount string) (string, error) {
	var res transactionResponse
	if err := c.do(ctx, http.MethodPost, "/accounts/"+externalID+"/withdrawals", amountRequest{Amount: amount}, &res); err != nil {
		return "", err
	}

	return res.TransactionID, nil
}

type transferRequest struct {
	SourceAccountID string `json:"source_account_id"`
	TargetAccountID string `json:"target_account_id"`
	Amount          string `json:"amount"`
}

// Transfer moves funds between two external accounts.
func (c *Client) Transfer(ctx context.Context, sourceExternalID, targetExternalID, amount string) (string, error) {
	req := transferRequest{
		SourceAccountID: sourceExternalID,
		TargetAccountID: targetExternalID,
		Amount:          amount,
	}

	var res transactionResponse
	if err := c.do(ctx, http.MethodPost, "/transfers", req, &res); err != nil {
		return "", err
	}

	return res.TransactionID, nil
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}

		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	if res.StatusCode >= 400 {
		var errRes errorResponse
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return fmt.Errorf("external ledger: status %d", res.StatusCode)
		}

		switch errRes.Code {
		case codeInsufficientFunds:
			return ErrInsufficientFunds
		case codeAccountNotFound:
			return ErrAccountNotFound
		}

		return fmt.Errorf("external ledger: %s", errRes.Error)
	}

	return json.NewDecoder(res.Body).Decode(out)
}
