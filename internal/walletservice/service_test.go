package walletservice

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/internal/extledger"
	"github.com/walletcore/wallet-engine/pkg/currencypkg"
	"github.com/walletcore/wallet-engine/pkg/randompkg"
)

const testActor = "tester"

func testWallet(id int64, status string) domain.Wallet {
	return domain.Wallet{
		ID:         id,
		ExternalID: "ext-" + randompkg.String(6),
		Owner:      randompkg.Owner(),
		Currency:   currencypkg.USD,
		Balance:    "1000.00",
		Status:     status,
	}
}

type mocks struct {
	repo       *MockRepo
	tx         *MockTransactor
	ledger     *extledger.MockLedger
	reconciler *MockReconciler
	emitter    *MockEmitter
}

func newService(ctrl *gomock.Controller) (*Service, mocks) {
	m := mocks{
		repo:       NewMockRepo(ctrl),
		tx:         NewMockTransactor(ctrl),
		ledger:     extledger.NewMockLedger(ctrl),
		reconciler: NewMockReconciler(ctrl),
		emitter:    NewMockEmitter(ctrl),
	}

	return New(m.repo, m.tx, m.ledger, m.reconciler, m.emitter), m
}

func passthrough(tx *MockTransactor) {
	tx.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()
}

func TestCreate(t *testing.T) {
	arg := domain.CreateWalletParams{
		Owner:       "alice",
		WalletType:  "PERSONAL",
		AccountType: "CHECKING",
		Currency:    currencypkg.USD,
	}

	testCases := []struct {
		name          string
		buildStubs    func(m mocks)
		checkResponse func(t *testing.T, wallet domain.Wallet, err error)
	}{
		{
			name: "OK",
			buildStubs: func(m mocks) {
				created := testWallet(1, domain.StatusActive)
				created.Owner = arg.Owner

				gomock.InOrder(
					m.ledger.EXPECT().
						CreateAccount(gomock.Any(), gomock.Eq(arg.Owner), gomock.Eq(arg.WalletType), gomock.Eq(arg.AccountType), gomock.Eq(arg.Currency)).
						Return("ext-new", nil),
					m.repo.EXPECT().
						Create(gomock.Any(), gomock.Eq(arg), gomock.Eq("ext-new"), gomock.Eq(testActor)).
						Return(created, nil),
				)

				m.emitter.EXPECT().Emit(gomock.Any(), gomock.Eq(domain.Event{
					Owner:     created.Owner,
					WalletID:  created.ID,
					EventType: domain.EventWalletCreated,
					Currency:  created.Currency,
				})).Return(nil)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.NoError(t, err)
				require.Equal(t, arg.Owner, wallet.Owner)
				require.Equal(t, domain.StatusActive, wallet.Status)
			},
		},
		{
			name: "External provisioning fails before any local write",
			buildStubs: func(m mocks) {
				m.ledger.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", extledger.ErrUnavailable)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				m.emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.ErrorIs(t, err, domain.ErrServiceCommunication)
				require.Empty(t, wallet)
			},
		},
		{
			name: "Duplicate currency for the owner",
			buildStubs: func(m mocks) {
				m.ledger.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("ext-new", nil)
				m.repo.EXPECT().
					Create(gomock.Any(), gomock.Eq(arg), gomock.Eq("ext-new"), gomock.Eq(testActor)).
					Return(domain.Wallet{}, domain.ErrWalletAlreadyExists)
				m.emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.ErrorIs(t, err, domain.ErrWalletAlreadyExists)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, m := newService(ctrl)
			tc.buildStubs(m)

			wallet, err := service.Create(context.Background(), testActor, arg)
			tc.checkResponse(t, wallet, err)
		})
	}
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name          string
		buildStubs    func(m mocks, wallet domain.Wallet)
		checkResponse func(t *testing.T, wallet domain.Wallet, err error)
	}{
		{
			name: "Serves the reconciled balance",
			buildStubs: func(m mocks, wallet domain.Wallet) {
				refreshed := wallet
				refreshed.Balance = "900.00"

				m.repo.EXPECT().Get(gomock.Any(), gomock.Eq(wallet.ID)).Return(wallet, nil)
				m.reconciler.EXPECT().Refresh(gomock.Any(), gomock.Eq(wallet), gomock.Eq(testActor)).
					Return(refreshed, nil)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.NoError(t, err)
				require.Equal(t, "900.00", wallet.Balance)
			},
		},
		{
			name: "Serves the cache when the ledger is unreachable",
			buildStubs: func(m mocks, wallet domain.Wallet) {
				m.repo.EXPECT().Get(gomock.Any(), gomock.Eq(wallet.ID)).Return(wallet, nil)
				m.reconciler.EXPECT().Refresh(gomock.Any(), gomock.Eq(wallet), gomock.Eq(testActor)).
					Return(domain.Wallet{}, domain.ErrServiceCommunication)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.NoError(t, err)
				require.Equal(t, "1000.00", wallet.Balance)
			},
		},
		{
			name: "Not found",
			buildStubs: func(m mocks, wallet domain.Wallet) {
				m.repo.EXPECT().Get(gomock.Any(), gomock.Eq(wallet.ID)).
					Return(domain.Wallet{}, domain.ErrWalletNotFound)
				m.reconciler.EXPECT().Refresh(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, wallet domain.Wallet, err error) {
				require.ErrorIs(t, err, domain.ErrWalletNotFound)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, m := newService(ctrl)
			wallet := testWallet(1, domain.StatusActive)
			tc.buildStubs(m, wallet)

			got, err := service.Get(context.Background(), testActor, wallet.ID)
			tc.checkResponse(t, got, err)
		})
	}
}

func TestListByOwner(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, m := newService(ctrl)

	wallets := []domain.Wallet{testWallet(1, domain.StatusActive), testWallet(2, domain.StatusFrozen)}
	refreshed := make([]domain.Wallet, len(wallets))
	copy(refreshed, wallets)
	refreshed[0].Balance = "1500.00"

	m.repo.EXPECT().ListByOwner(gomock.Any(), gomock.Eq("alice")).Return(wallets, nil)
	m.reconciler.EXPECT().RefreshAll(gomock.Any(), gomock.Eq(wallets), gomock.Eq(testActor)).Return(refreshed)

	got, err := service.ListByOwner(context.Background(), testActor, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "1500.00", got[0].Balance)
}

func TestSetStatus(t *testing.T) {
	testCases := []struct {
		name          string
		wallet        domain.Wallet
		run           func(s *Service, id int64) (domain.Wallet, error)
		target        string
		eventType     string
		wantErr       error
	}{
		{
			name:      "Freeze active wallet",
			wallet:    testWallet(1, domain.StatusActive),
			run:       func(s *Service, id int64) (domain.Wallet, error) { return s.Freeze(context.Background(), testActor, id, "fraud review") },
			target:    domain.StatusFrozen,
			eventType: domain.EventWalletFrozen,
		},
		{
			name:      "Unfreeze frozen wallet",
			wallet:    testWallet(1, domain.StatusFrozen),
			run:       func(s *Service, id int64) (domain.Wallet, error) { return s.Unfreeze(context.Background(), testActor, id, "review cleared") },
			target:    domain.StatusActive,
			eventType: domain.EventWalletUnfrozen,
		},
		{
			name:      "Close frozen wallet",
			wallet:    testWallet(1, domain.StatusFrozen),
			run:       func(s *Service, id int64) (domain.Wallet, error) { return s.Close(context.Background(), testActor, id, "customer request") },
			target:    domain.StatusClosed,
			eventType: domain.EventWalletClosed,
		},
		{
			name:    "Closed wallet is terminal",
			wallet:  testWallet(1, domain.StatusClosed),
			run:     func(s *Service, id int64) (domain.Wallet, error) { return s.Unfreeze(context.Background(), testActor, id, "review cleared") },
			target:  domain.StatusActive,
			wantErr: domain.ErrWalletClosed,
		},
		{
			name:    "Unfreezing an active wallet is rejected",
			wallet:  testWallet(1, domain.StatusActive),
			run:     func(s *Service, id int64) (domain.Wallet, error) { return s.Unfreeze(context.Background(), testActor, id, "review cleared") },
			target:  domain.StatusActive,
			wantErr: domain.ErrInvalidStatusTransition,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, m := newService(ctrl)
			passthrough(m.tx)

			m.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Eq(tc.wallet.ID)).Return(tc.wallet, nil)

			if tc.wantErr != nil {
				m.repo.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				m.emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(0)
			} else {
				updated := tc.wallet
				updated.Status = tc.target

				m.repo.EXPECT().SetStatus(gomock.Any(), gomock.Eq(tc.wallet.ID), gomock.Eq(tc.target), gomock.Eq(testActor)).
					Return(updated, nil)
				m.emitter.EXPECT().Emit(gomock.Any(), gomock.Eq(domain.Event{
					Owner:     updated.Owner,
					WalletID:  updated.ID,
					EventType: tc.eventType,
					Currency:  updated.Currency,
				})).Return(nil)
			}

			wallet, err := tc.run(service, tc.wallet.ID)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.target, wallet.Status)
		})
	}
}
