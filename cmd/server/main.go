package main

import (
	"context"
	"log"
	"net/http"

	"gc-invoice-driver/internal/api"
	"gc-invoice-driver/internal/config"
	"gc-invoice-driver/internal/db"
	"gc-invoice-driver/internal/driver"
	"gc-invoice-driver/internal/gocardless"
	"gc-invoice-driver/internal/logger"
	"gc-invoice-driver/internal/mandate"
	"gc-invoice-driver/internal/session"
	"gc-invoice-driver/internal/settings"
	"gc-invoice-driver/internal/webhook"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	sessions, err := session.NewStore(cfg.SessionDBPath)
	if err != nil {
		logger.L().Fatal("Failed to open session store", zap.Error(err))
	}
	defer sessions.Close()

	settingsStore := settings.NewStore(database)
	creds, err := settings.ResolveCredentials(context.Background(), settingsStore, cfg.IsProduction())
	if err != nil {
		logger.L().Fatal("GoCardless credentials not configured", zap.Error(err))
	}

	gateway := gocardless.NewClient(creds.AccessToken, creds.Environment)
	mandateRepo := mandate.NewRepository(database)
	gcDriver := driver.New(gateway, mandateRepo, sessions)

	webhookRepo := webhook.NewRepository(database)
	webhookHandler := webhook.NewHandler(cfg.WebhookSecret, webhookRepo, webhook.LogSink{}, gateway)

	handlers := api.NewHandlers(gcDriver, settingsStore, mandateRepo)
	router := api.NewRouter(handlers, webhookHandler)

	logger.L().Info("GoCardless driver listening",
		zap.String("port", cfg.AppPort),
		zap.String("environment", string(creds.Environment)),
	)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
