package reconcile

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/internal/extledger"
)

const testActor = "tester"

func testWallet(id int64, externalID, balance string) domain.Wallet {
	return domain.Wallet{
		ID:         id,
		ExternalID: externalID,
		Owner:      "alice",
		Currency:   "USD",
		Balance:    balance,
		Status:     domain.StatusActive,
	}
}

func TestRefresh(t *testing.T) {
	testCases := []struct {
		name          string
		wallet        domain.Wallet
		buildStubs    func(ledger *extledger.MockLedger, store *MockBalanceStore)
		checkResponse func(t *testing.T, wallet domain.Wallet, err error)
	}{
		{
			name:   "Persists the fresh balance when it differs",
			wallet: testWallet(1, "ext-1", "1000.00"),
			buildStubs: func(ledger *extledger.MockLedger, store *MockBalanceStore) {
				ledger.EXPECT().GetBalance(gomock.Any(), gomock.Eq("ext-1")).
					Times(1).
					Return("900.00", nil)
				store.EXPECT().SetBalance(gomock.Any(), gomock.Eq(int64(1)), gomock.Eq("900.00"), gomock.Eq(testActor)).
					Times(1).
					Return(testWallet(1, "ext-1", "900.00"), nil)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.NoError(t, err)
				require.Equal(t, "900.00", wallet.Balance)
			},
		},
		{
			name:   "Skips the write when the cache matches",
			wallet: testWallet(1, "ext-1", "1000.00"),
			buildStubs: func(ledger *extledger.MockLedger, store *MockBalanceStore) {
				ledger.EXPECT().GetBalance(gomock.Any(), gomock.Eq("ext-1")).
					Times(1).
					Return("1000", nil)
				store.EXPECT().SetBalance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.NoError(t, err)
				require.Equal(t, "1000.00", wallet.Balance)
			},
		},
		{
			name:   "Ledger unreachable",
			wallet: testWallet(1, "ext-1", "1000.00"),
			buildStubs: func(ledger *extledger.MockLedger, store *MockBalanceStore) {
				ledger.EXPECT().GetBalance(gomock.Any(), gomock.Eq("ext-1")).
					Times(1).
					Return("", extledger.ErrUnavailable)
				store.EXPECT().SetBalance(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.ErrorIs(t, err, domain.ErrServiceCommunication)
				require.Equal(t, "1000.00", wallet.Balance)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ledger := extledger.NewMockLedger(ctrl)
			store := NewMockBalanceStore(ctrl)
			reconciler := New(ledger, store, 4)

			tc.buildStubs(ledger, store)

			wallet, err := reconciler.Refresh(context.Background(), tc.wallet, testActor)
			tc.checkResponse(t, wallet, err)
		})
	}
}

func TestRefreshAllIsolatesFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := extledger.NewMockLedger(ctrl)
	store := NewMockBalanceStore(ctrl)
	reconciler := New(ledger, store, 2)

	wallets := []domain.Wallet{
		testWallet(1, "ext-1", "100.00"),
		testWallet(2, "ext-2", "200.00"),
		testWallet(3, "ext-3", "300.00"),
	}

	ledger.EXPECT().GetBalance(gomock.Any(), gomock.Eq("ext-1")).Return("150.00", nil)
	ledger.EXPECT().GetBalance(gomock.Any(), gomock.Eq("ext-2")).Return("", extledger.ErrUnavailable)
	ledger.EXPECT().GetBalance(gomock.Any(), gomock.Eq("ext-3")).Return("300.00", nil)

	store.EXPECT().SetBalance(gomock.Any(), gomock.Eq(int64(1)), gomock.Eq("150.00"), gomock.Eq(testActor)).
		Return(testWallet(1, "ext-1", "150.00"), nil)

	out := reconciler.RefreshAll(context.Background(), wallets, testActor)

	require.Len(t, out, 3)
	require.Equal(t, "150.00", out[0].Balance)
	require.Equal(t, "200.00", out[1].Balance)
	require.Equal(t, "300.00", out[2].Balance)
}
