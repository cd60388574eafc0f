package walletrepo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/pkg/configpkg"
	"github.com/walletcore/wallet-engine/pkg/dbpkg"
	"github.com/walletcore/wallet-engine/pkg/randompkg"
)

var (
	testDB   *sql.DB
	testRepo *RepoPGS
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err = sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	testRepo = NewRepoPGS(testDB)

	os.Exit(m.Run())
}

func createRandomWallet(t *testing.T) domain.Wallet {
	t.Helper()

	arg := domain.CreateWalletParams{
		Owner:       randompkg.Owner(),
		WalletType:  "PERSONAL",
		AccountType: "CHECKING",
		Currency:    randompkg.Currency(),
	}
	externalID := uuid.NewString()

	wallet, err := testRepo.Create(context.Background(), arg, externalID, "tester")
	require.NoError(t, err)
	require.NotEmpty(t, wallet)

	require.Equal(t, arg.Owner, wallet.Owner)
	require.Equal(t, arg.Currency, wallet.Currency)
	require.Equal(t, externalID, wallet.ExternalID)
	require.Equal(t, domain.StatusActive, wallet.Status)
	require.Equal(t, "0", wallet.Balance)
	require.Equal(t, "tester", wallet.CreatedBy)

	require.NotZero(t, wallet.ID)
	require.NotZero(t, wallet.CreatedAt)

	return wallet
}

func TestCreate(t *testing.T) {
	createRandomWallet(t)
}

func TestCreateDuplicateCurrency(t *testing.T) {
	wallet := createRandomWallet(t)

	arg := domain.CreateWalletParams{
		Owner:       wallet.Owner,
		WalletType:  wallet.WalletType,
		AccountType: wallet.AccountType,
		Currency:    wallet.Currency,
	}

	duplicate, err := testRepo.Create(context.Background(), arg, uuid.NewString(), "tester")
	require.EqualError(t, err, domain.ErrWalletAlreadyExists.Error())
	require.Empty(t, duplicate)
}

func TestGet(t *testing.T) {
	wallet := createRandomWallet(t)

	got, err := testRepo.Get(context.Background(), wallet.ID)
	require.NoError(t, err)
	require.Equal(t, wallet, got)
}

func TestGetNotFound(t *testing.T) {
	_, err := testRepo.Get(context.Background(), -1)
	require.EqualError(t, err, domain.ErrWalletNotFound.Error())
}

func TestGetForUpdate(t *testing.T) {
	wallet := createRandomWallet(t)

	transactor := dbpkg.NewTransactor(testDB)

	err := transactor.Within(context.Background(), func(ctx context.Context) error {
		got, err := testRepo.GetForUpdate(ctx, wallet.ID)
		require.NoError(t, err)
		require.Equal(t, wallet.ID, got.ID)

		return nil
	})
	require.NoError(t, err)
}

func TestGetByOwnerAndCurrency(t *testing.T) {
	wallet := createRandomWallet(t)

	got, err := testRepo.GetByOwnerAndCurrency(context.Background(), wallet.Owner, wallet.Currency)
	require.NoError(t, err)
	require.Equal(t, wallet.ID, got.ID)

	_, err = testRepo.GetByOwnerAndCurrency(context.Background(), wallet.Owner, "XXX")
	require.EqualError(t, err, domain.ErrWalletNotFound.Error())
}

func TestListByOwner(t *testing.T) {
	wallet := createRandomWallet(t)

	wallets, err := testRepo.ListByOwner(context.Background(), wallet.Owner)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	require.Equal(t, wallet.ID, wallets[0].ID)
}

func TestSetBalance(t *testing.T) {
	wallet := createRandomWallet(t)

	updated, err := testRepo.SetBalance(context.Background(), wallet.ID, "1234.56", "reconciler")
	require.NoError(t, err)
	require.Equal(t, "1234.56", updated.Balance)
	require.Equal(t, "reconciler", updated.UpdatedBy)
	require.True(t, updated.UpdatedAt.After(wallet.UpdatedAt))

	_, err = testRepo.SetBalance(context.Background(), -1, "1.00", "reconciler")
	require.EqualError(t, err, domain.ErrWalletNotFound.Error())
}

func TestSetStatus(t *testing.T) {
	wallet := createRandomWallet(t)

	frozen, err := testRepo.SetStatus(context.Background(), wallet.ID, domain.StatusFrozen, "ops")
	require.NoError(t, err)
	require.Equal(t, domain.StatusFrozen, frozen.Status)
	require.Equal(t, "ops", frozen.UpdatedBy)

	closed, err := testRepo.SetStatus(context.Background(), wallet.ID, domain.StatusClosed, "ops")
	require.NoError(t, err)
	require.Equal(t, domain.StatusClosed, closed.Status)
}
