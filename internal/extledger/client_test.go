package extledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientDeposit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/accounts/ext-1/deposits", r.URL.Path)

		var req amountRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "100.00", req.Amount)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(transactionResponse{TransactionID: "tx-42"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	txID, err := client.Deposit(context.Background(), "ext-1", "100.00")
	require.NoError(t, err)
	require.Equal(t, "tx-42", txID)
}

func TestClientGetBalance(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/ext-1/balance", r.URL.Path)
		json.NewEncoder(w).Encode(balanceResponse{Balance: "950.50"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	balance, err := client.GetBalance(context.Background(), "ext-1")
	require.NoError(t, err)
	require.Equal(t, "950.50", balance)
}

func TestClientErrorClassification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		status  int
		body    errorResponse
		wantErr error
	}{
		{
			name:    "Insufficient funds",
			status:  http.StatusUnprocessableEntity,
			body:    errorResponse{Code: codeInsufficientFunds, Error: "insufficient funds"},
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "Account not found",
			status:  http.StatusNotFound,
			body:    errorResponse{Code: codeAccountNotFound, Error: "no such account"},
			wantErr: ErrAccountNotFound,
		},
		{
			name:    "Server error",
			status:  http.StatusInternalServerError,
			wantErr: ErrUnavailable,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(tc.body)
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second)

			_, err := client.Withdraw(context.Background(), "ext-1", "10.00")
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	t.Parallel()

	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)

	_, err := client.GetBalance(context.Background(), "ext-1")
	require.ErrorIs(t, err, ErrUnavailable)
}
