package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"operator-panel/internal/config"
	"operator-panel/internal/db"
	"operator-panel/internal/httpserver"
	authstaterepo "operator-panel/internal/repository/authstate"
	sessionrepo "operator-panel/internal/repository/session"
	customizationsvc "operator-panel/internal/service/customization"
	importersvc "operator-panel/internal/service/importer"
	searchsvc "operator-panel/internal/service/search"
	"operator-panel/internal/shopify"

	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	sessions := sessionrepo.NewPostgres(dbpool, logger)
	authStates := authstaterepo.NewPostgres(dbpool)

	// A configured token wins; otherwise the token installed through the
	// OAuth flow is looked up per call.
	var tokens shopify.TokenSource
	if cfg.AccessToken != "" {
		tokens = shopify.StaticToken(cfg.AccessToken)
	} else {
		tokens = sessionrepo.TokenSource{Repo: sessions, Shop: cfg.ShopDomain}
	}

	admin := shopify.NewClient(cfg.ShopDomain, cfg.APIVersion, tokens, logger)

	searchService := searchsvc.New(admin, logger)
	importService := importersvc.New(admin, logger)
	customizationService := customizationsvc.New(admin, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Cfg:              cfg,
		SearchSvc:        searchService,
		ImportSvc:        importService,
		CustomizationSvc: customizationService,
		Sessions:         sessions,
		AuthStates:       authStates,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
