// Package main provides the API to manage wallets, deposits, withdrawals and
// transfers against the external ledger of record.
package main

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/walletcore/wallet-engine/cmd/httpserver"
	"github.com/walletcore/wallet-engine/internal/extledger"
	"github.com/walletcore/wallet-engine/internal/middleware"
	"github.com/walletcore/wallet-engine/pkg/configpkg"
	"github.com/walletcore/wallet-engine/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	var ledger extledger.Ledger
	if config.LedgerBaseURL != "" {
		ledger = extledger.NewClient(config.LedgerBaseURL, config.LedgerTimeout)
	} else {
		logger.Warn().Msg("LEDGER_BASE_URL is not set, using the in-memory ledger")
		ledger = extledger.NewInMemory()
	}

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddress})

	server, err := httpserver.New(db, ledger, redisClient, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Msg("WALLET ENGINE SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
