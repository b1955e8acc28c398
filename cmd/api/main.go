package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/danielcasamentos/priceus-sub002/internal/category"
	categoryStore "github.com/danielcasamentos/priceus-sub002/internal/category/store"
	"github.com/danielcasamentos/priceus-sub002/internal/config"
	"github.com/danielcasamentos/priceus-sub002/internal/contract"
	"github.com/danielcasamentos/priceus-sub002/internal/contract/render"
	contractStore "github.com/danielcasamentos/priceus-sub002/internal/contract/store"
	"github.com/danielcasamentos/priceus-sub002/internal/database"
	priceusHttp "github.com/danielcasamentos/priceus-sub002/internal/http"
	categoryHandler "github.com/danielcasamentos/priceus-sub002/internal/http/category"
	contractHandler "github.com/danielcasamentos/priceus-sub002/internal/http/contract"
	metricsHandler "github.com/danielcasamentos/priceus-sub002/internal/http/metrics"
	profileHandler "github.com/danielcasamentos/priceus-sub002/internal/http/profile"
	txHandler "github.com/danielcasamentos/priceus-sub002/internal/http/transaction"
	"github.com/danielcasamentos/priceus-sub002/internal/profile"
	profileStore "github.com/danielcasamentos/priceus-sub002/internal/profile/store"
	"github.com/danielcasamentos/priceus-sub002/internal/storage"
	"github.com/danielcasamentos/priceus-sub002/internal/transaction"
	txStore "github.com/danielcasamentos/priceus-sub002/internal/transaction/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var uploader contract.Uploader

	if cfg.StorageEnabled() {
		client, err := storage.New(storage.Config{
			ProjectURL: cfg.Storage.ProjectURL,
			APIKey:     cfg.Storage.APIKey,
			Bucket:     cfg.Storage.Bucket,
		})
		if err != nil {
			slog.Error("failed to configure storage", "error", err)
			os.Exit(1)
		}

		uploader = client
	} else {
		slog.Warn("contract archival disabled, signed pdfs are download-only")
	}

	var (
		transactionService = transaction.NewService(txStore.New(db))
		categoryService    = category.NewService(categoryStore.New(db))
		profileService     = profile.NewService(profileStore.New(db))
		contractService    = contract.NewService(contractStore.New(db), contract.ServiceOptions{
			Renderer:     render.New(),
			Uploader:     uploader,
			DraftSecret:  []byte(cfg.Signing.DraftSecret),
			DraftTTL:     cfg.Signing.DraftTTL,
			PublicOrigin: cfg.App.Origin,
		})
	)

	router := priceusHttp.New(priceusHttp.Handlers{
		Transactions: txHandler.NewHandler(transactionService),
		Categories:   categoryHandler.NewHandler(categoryService),
		Metrics:      metricsHandler.NewHandler(transactionService, categoryService),
		Profile:      profileHandler.NewHandler(profileService),
		Contracts:    contractHandler.NewHandler(contractService),
		Public:       contractHandler.NewPublicHandler(contractService),
	}, priceusHttp.Options{
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		AllowedOrigins: strings.Split(cfg.App.Origins, ","),
	})

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	server := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
