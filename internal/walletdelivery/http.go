// Package walletdelivery manages delivery layer of wallets.
package walletdelivery

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

// Service provides service layer interface needed by wallet delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package walletdelivery
type Service interface {
	Create(ctx context.Context, actor string, arg domain.CreateWalletParams) (domain.Wallet, error)
	Get(ctx context.Context, actor string, id int64) (domain.Wallet, error)
	ListByOwner(ctx context.Context, actor, owner string) ([]domain.Wallet, error)
	Freeze(ctx context.Context, actor string, id int64, reason string) (domain.Wallet, error)
	Unfreeze(ctx context.Context, actor string, id int64, reason string) (domain.Wallet, error)
	Close(ctx context.Context, actor string, id int64, reason string) (domain.Wallet, error)
}

// Handler facilitates wallet delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns wallet handler.
func NewHandler(ws Service) Handler {
	return Handler{service: ws}
}

type data struct {
	Wallet domain.Wallet `json:"wallet"`
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

type createRequest struct {
	Owner       string `json:"owner" binding:"required"`
	WalletType  string `json:"wallet_type" binding:"required"`
	AccountType string `json:"account_type" binding:"required"`
	Currency    string `json:"currency" binding:"required,currency"`
}

// Create handles http request to create a wallet.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	actor := middleware.ActorFromContext(gctx)

	wallet, err := h.service.Create(ctx, actor, domain.CreateWalletParams{
		Owner:       req.Owner,
		WalletType:  req.WalletType,
		AccountType: req.AccountType,
		Currency:    req.Currency,
	})
	if err != nil {
		switch err {
		case domain.ErrWalletAlreadyExists:
			gctx.JSON(http.StatusConflict, jsonresponse.Error(err))
			return
		case domain.ErrServiceCommunication:
			gctx.JSON(http.StatusBadGateway, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{wallet}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get a wallet with a reconciled balance.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	wallet, err := h.service.Get(ctx, middleware.ActorFromContext(gctx), req.ID)
	if err != nil {
		if err == domain.ErrWalletNotFound {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{wallet}})
}

type listRequest struct {
	Owner string `form:"owner" binding:"required"`
}

type dataWallets struct {
	Wallets []domain.Wallet `json:"wallets"`
}
type responseWallets struct {
	Data dataWallets `json:"data,omitempty"`
}

// List handles http request to list an owner's wallets.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	wallets, err := h.service.ListByOwner(ctx, middleware.ActorFromContext(gctx), req.Owner)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseWallets{Data: dataWallets{wallets}})
}

// Freeze handles http request to freeze a wallet.
func (h *Handler) Freeze(gctx *gin.Context) {
	h.setStatus(gctx, h.service.Freeze)
}

// Unfreeze handles http request to unfreeze a wallet.
func (h *Handler) Unfreeze(gctx *gin.Context) {
	h.setStatus(gctx, h.service.Unfreeze)
}

// Close handles http request to close a wallet.
func (h *Handler) Close(gctx *gin.Context) {
	h.setStatus(gctx, h.service.Close)
}

type statusRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) setStatus(gctx *gin.Context, op func(ctx context.Context, actor string, id int64, reason string) (domain.Wallet, error)) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	var body statusRequest
	if err := gctx.ShouldBindJSON(&body); err != nil {
		bindingError(gctx, err)
		return
	}

	wallet, err := op(ctx, middleware.ActorFromContext(gctx), req.ID, body.Reason)
	if err != nil {
		switch err {
		case domain.ErrWalletNotFound:
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		case domain.ErrWalletClosed, domain.ErrInvalidStatusTransition:
			gctx.JSON(http.StatusConflict, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{wallet}})
}
