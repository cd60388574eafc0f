package transactiondelivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/walletcore/wallet-engine/internal/domain"
)

func newTestServer(h Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	server := gin.New()
	server.GET("/transactions", h.List)
	server.GET("/transactions/:id", h.Get)

	return server
}

func TestGetAPI(t *testing.T) {
	testCases := []struct {
		name           string
		path           string
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			path: "/transactions/7",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(int64(7))).
					Times(1).
					Return(domain.Transaction{ID: 7, Status: domain.StatusCompleted}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "NotFound",
			path: "/transactions/42",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(int64(42))).
					Times(1).
					Return(domain.Transaction{}, domain.ErrTransactionNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "InvalidID",
			path: "/transactions/0",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newTestServer(NewHandler(service))

			request := httptest.NewRequest(http.MethodGet, tc.path, nil)
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatusCode, recorder.Code)
		})
	}
}

func TestListAPI(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantCount      int
	}{
		{
			name:  "ByWallet",
			query: "/transactions?wallet_id=3&page_id=1&page_size=5",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(int64(3)), gomock.Eq(""), gomock.Eq(int32(5)), gomock.Eq(int32(1))).
					Times(1).
					Return([]domain.Transaction{{ID: 1}, {ID: 2}}, nil)
			},
			wantStatusCode: http.StatusOK,
			wantCount:      2,
		},
		{
			name:  "ByOwner",
			query: "/transactions?owner=alice&page_id=2&page_size=10",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(int64(0)), gomock.Eq("alice"), gomock.Eq(int32(10)), gomock.Eq(int32(2))).
					Times(1).
					Return([]domain.Transaction{{ID: 11}}, nil)
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name:  "NoScope",
			query: "/transactions?page_id=1&page_size=5",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:  "PageSizeTooLarge",
			query: "/transactions?wallet_id=3&page_id=1&page_size=500",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newTestServer(NewHandler(service))

			request := httptest.NewRequest(http.MethodGet, tc.query, nil)
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantStatusCode == http.StatusOK {
				var got struct {
					Data struct {
						Transactions []domain.Transaction `json:"transactions"`
					} `json:"data"`
				}
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
				require.Len(t, got.Data.Transactions, tc.wantCount)
			}
		})
	}
}
