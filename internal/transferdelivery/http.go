// Package transferdelivery manages delivery layer of money movement.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/internal/middleware"
	"github.com/walletcore/wallet-engine/pkg/errorspkg"
	"github.com/walletcore/wallet-engine/pkg/jsonresponse"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Deposit(ctx context.Context, actor string, walletID int64, amount, description string) (domain.Transaction, error)
	Withdraw(ctx context.Context, actor string, walletID int64, amount, description string) (domain.Transaction, error)
	Transfer(ctx context.Context, actor string, sourceID, targetID int64, amount, description string) (domain.Transaction, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func bindingError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx)

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(errors.New(field.Field()+jsonresponse.GetErrorMsg(field))))

		return
	}

	l.Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
}

func writeDomainError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrWalletNotFound:
		gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
	case domain.ErrInvalidAmount, domain.ErrNegativeAmount,
		domain.ErrCurrencyMismatch, domain.ErrSameWallet:
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
	case domain.ErrWalletNotActive:
		gctx.JSON(http.StatusConflict, jsonresponse.Error(err))
	case domain.ErrInsufficientBalance:
		gctx.JSON(http.StatusUnprocessableEntity, jsonresponse.Error(err))
	case domain.ErrServiceCommunication, domain.ErrTransactionFailed:
		gctx.JSON(http.StatusBadGateway, jsonresponse.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
	}
}

type moveRequest struct {
	WalletID    int64  `json:"wallet_id" binding:"required,min=1"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

// Deposit handles http request to credit a wallet.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req moveRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	actor := middleware.ActorFromContext(gctx)

	txn, err := h.service.Deposit(ctx, actor, req.WalletID, req.Amount, req.Description)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{txn}})
}

// Withdraw handles http request to debit a wallet.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req moveRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	actor := middleware.ActorFromContext(gctx)

	txn, err := h.service.Withdraw(ctx, actor, req.WalletID, req.Amount, req.Description)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{txn}})
}

type transferRequest struct {
	SourceWalletID int64  `json:"source_wallet_id" binding:"required,min=1"`
	TargetWalletID int64  `json:"target_wallet_id" binding:"required,min=1"`
	Amount         string `json:"amount" binding:"required"`
	Description    string `json:"description"`
}

// Transfer handles http request to move funds between wallets.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	actor := middleware.ActorFromContext(gctx)

	txn, err := h.service.Transfer(ctx, actor, req.SourceWalletID, req.TargetWalletID, req.Amount, req.Description)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{txn}})
}
