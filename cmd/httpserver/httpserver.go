// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/walletcore/wallet-engine/internal/eventpub"
	"github.com/walletcore/wallet-engine/internal/extledger"
	"github.com/walletcore/wallet-engine/internal/middleware"
	"github.com/walletcore/wallet-engine/internal/reconcile"
	"github.com/walletcore/wallet-engine/internal/transactiondelivery"
	"github.com/walletcore/wallet-engine/internal/transactionrepo"
	"github.com/walletcore/wallet-engine/internal/transactionservice"
	"github.com/walletcore/wallet-engine/internal/transferdelivery"
	"github.com/walletcore/wallet-engine/internal/transferservice"
	"github.com/walletcore/wallet-engine/internal/walletdelivery"
	"github.com/walletcore/wallet-engine/internal/walletrepo"
	"github.com/walletcore/wallet-engine/internal/walletservice"
	"github.com/walletcore/wallet-engine/pkg/configpkg"
	"github.com/walletcore/wallet-engine/pkg/dbpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, ledger extledger.Ledger, redisClient *redis.Client, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	walletRepo := walletrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)

	transactor := dbpkg.NewTransactor(conn)
	reconciler := reconcile.New(ledger, walletRepo, config.ReconcileWorkers)
	publisher := eventpub.New(redisClient, config.EventChannel)

	walletService := walletservice.New(walletRepo, transactor, ledger, reconciler, publisher)
	transferService := transferservice.New(transactor, walletRepo, transactionRepo, ledger, reconciler, publisher)
	transactionService := transactionservice.New(transactionRepo)

	walletHandler := walletdelivery.NewHandler(walletService)
	transferHandler := transferdelivery.NewHandler(transferService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/wallets", walletHandler.List)
	engine.GET("/wallets/:id", walletHandler.Get)
	engine.GET("/transactions", transactionHandler.List)
	engine.GET("/transactions/:id", transactionHandler.Get)

	// Every mutation is attributed to an explicit actor.
	mutations := engine.Group("/").Use(middleware.Actor())

	mutations.POST("/wallets", walletHandler.Create)
	mutations.POST("/wallets/:id/freeze", walletHandler.Freeze)
	mutations.POST("/wallets/:id/unfreeze", walletHandler.Unfreeze)
	mutations.POST("/wallets/:id/close", walletHandler.Close)

	mutations.POST("/deposits", transferHandler.Deposit)
	mutations.POST("/withdrawals", transferHandler.Withdraw)
	mutations.POST("/transfers", transferHandler.Transfer)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", walletdelivery.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
