package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/banclabs/cajero/config"
	"github.com/banclabs/cajero/internal/ledger"
	"github.com/banclabs/cajero/pkg/helpers"
	"github.com/banclabs/cajero/pkg/mailer"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-ledgerd", cfg.Env)
	gin.SetMode(cfg.GinMode)

	store := ledger.NewStore()
	if cfg.SeedDemo && cfg.Env == "development" {
		acc, err := store.Seed("Ana", "García", "demo@cajero.dev", "1234", 500000)
		if err != nil {
			logger.WithError(err).Fatal("seed demo account")
		}
		logger.WithField("accountNumber", acc.Number).Info("demo account seeded (PIN 1234)")
	}

	var codes ledger.CodeStore
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		codes = ledger.NewRedisCodes(rdb)
		logger.WithField("addr", cfg.RedisAddr).Info("verification codes in redis")
	} else {
		codes = ledger.NewMemoryCodes()
		logger.Info("verification codes in memory")
	}

	var mail ledger.CodeSender
	if cfg.MailSendEnabled && cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		mail = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		logger.WithField("domain", cfg.MailgunDomain).Info("verification emails via mailgun")
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	server := ledger.NewServer(store, codes, jwtManager, logger, mail, cfg.CodeTTL)
	if rdb != nil {
		server.EnableRateLimit(rdb, 20, time.Minute)
		logger.Info("credential endpoints rate limited")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(cfg.CORSOrigins(), cfg.HTTPLogEnabled),
	}
	go func() {
		logger.Infof("ledger listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down ledger")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("forced shutdown: %v", err)
	}
	logger.Info("ledger exited properly")
}
