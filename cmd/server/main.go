package main

import (
	"MyPass/internal/config"
	"MyPass/internal/crypto"
	"MyPass/internal/events"
	"MyPass/internal/handlers"
	"MyPass/internal/hasher"
	"MyPass/internal/middleware"
	"MyPass/internal/repo"
	"MyPass/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	key, err := crypto.LoadKey(crypto.KeySource{
		Key:        cfg.VaultKey,
		Passphrase: cfg.VaultKeyPassphrase,
		Salt:       cfg.VaultKeySalt,
		File:       cfg.VaultKeyFile,
	})
	if err != nil {
		sugar.Fatalw("failed to load vault key", "error", err)
	}
	box, err := crypto.New(key)
	if err != nil {
		sugar.Fatalw("failed to init cipher", "error", err)
	}

	h := hasher.New(cfg.BcryptCost)
	store := repo.NewCredentialStore(gormDB, box, h, sugar, cfg.RequiredQuestions)
	grants := service.NewGrantIssuer(cfg.AuthSecret, cfg.RecoveryTTL)
	vault := service.NewVaultService(store, store, h, grants, sugar)

	bus := events.NewMemoryBus()
	bus.Subscribe(events.LogSubscriber(sugar))
	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL, sugar)
		if err != nil {
			sugar.Fatalw("failed to connect to NATS", "error", err)
		}
		defer nc.Close()
		bus.Subscribe(events.NATSForwarder(nc, cfg.NATSSubject, sugar))
	}

	handler := handlers.NewHandler(vault, bus, sugar, cfg)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"Postgres", repo.IsPostgresDSN(cfg.DatabaseDSN),
		"CSRF", cfg.CSRFKey != "",
		"RequiredQuestions", cfg.RequiredQuestions,
	)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           handler.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	sugar.Infow("Starting server", "addr", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
