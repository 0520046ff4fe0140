package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/api"
	"github.com/rryowa/govintel_gateway/internal/backend"
	"github.com/rryowa/govintel_gateway/internal/controller"
	"github.com/rryowa/govintel_gateway/internal/migrations"
	"github.com/rryowa/govintel_gateway/internal/service"
	"github.com/rryowa/govintel_gateway/internal/storage"
	"github.com/rryowa/govintel_gateway/internal/storage/memory"
	"github.com/rryowa/govintel_gateway/internal/storage/postgres"
	"github.com/rryowa/govintel_gateway/internal/storage/redis"
	"github.com/rryowa/govintel_gateway/internal/util"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()
	defer func() { _ = logger.Sync() }()

	dbCfg := util.NewDBConfig()
	db, dbCleanup, err := util.NewDBConnection(logger, dbCfg)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger, dbCfg.GooseDialect()); err != nil {
		logger.Fatal(zap.Error(err))
	}

	auditStorage := postgres.NewStorage(db, dbCfg.Driver)
	cleanupFuncs := []func(){dbCleanup}

	var (
		revocations storage.RevocationStore
		apiKeyRepo  storage.APIKeyRepository
	)
	if redisCfg := util.NewRedisConfig(); redisCfg.Addr != "" {
		redisClient, redisCleanup, err := util.NewRedisClient(logger, redisCfg)
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		cleanupFuncs = append(cleanupFuncs, redisCleanup)

		revocations = redis.NewTokenStorage(redisClient)
		apiKeyRepo = redis.NewAPIKeyStorage(redisClient)
	} else {
		logger.Warn("REDIS_ADDR is not set; revocation list and operator key are kept in memory.")
		revocations = memory.NewTokenStorage()
		apiKeyRepo = memory.NewAPIKeyRepository()
	}

	apiKeyService := service.NewAPIKeyService(apiKeyRepo, logger)
	if key := util.GetOperatorAPIKey(); key != "" {
		if err := apiKeyService.SyncAPIKey(ctx, key); err != nil {
			logger.Fatal(zap.Error(err))
		}
	} else {
		logger.Warn("OPERATOR_API_KEY is not set; /internal routes reject every request.")
	}

	cookieCfg := util.NewCookieConfig()
	sealer, err := util.NewCookieSealer(cookieCfg.Secret)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	backendClient := backend.NewClient(util.NewBackendConfig())
	logger.Infow("Proxying to backend", "base_url", backendClient.BaseURL())

	webhookService := service.NewWebhookService(logger, util.GetWebhookURL())
	auditService := service.NewAuditService(auditStorage, webhookService, logger)
	tokenService := service.NewTokenService(backendClient, revocations, auditService, logger)
	authService := service.NewAuthService(backendClient, tokenService, auditService, logger)
	fetcher := service.NewFetcher(backendClient, tokenService, logger)

	ctrl := controller.NewController(logger, fetcher, authService, tokenService, auditService, cookieCfg, sealer)

	limiter := api.NewRateLimiter(util.NewRateLimiterConfig())
	apiServer := api.NewAPI(ctrl, logger, util.NewServerConfig(), apiKeyService, limiter, cleanupFuncs)
	apiServer.Run(ctx)
}
