// Package transactiondelivery manages delivery layer of the transaction audit
// trail.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/walletcore/wallet-engine/internal/domain"
	"github.com/walletcore/wallet-engine/pkg/errorspkg"
	"github.com/walletcore/wallet-engine/pkg/jsonresponse"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context, walletID int64, owner string, pageSize, pageID int32) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
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

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

// Get handles http request to get a transaction.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	txn, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if err == domain.ErrTransactionNotFound {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{txn}})
}

// Either a wallet id or an owner scopes the listing; requiring one of the two
// keeps an unbounded full-table walk off the API.
type listRequest struct {
	WalletID int64  `form:"wallet_id" binding:"required_without=Owner,omitempty,min=1"`
	Owner    string `form:"owner" binding:"required_without=WalletID"`
	PageID   int32  `form:"page_id" binding:"required,min=1"`
	PageSize int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to page through transactions.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	transactions, err := h.service.List(ctx, req.WalletID, req.Owner, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}
