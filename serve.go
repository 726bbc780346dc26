package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/everforgeworks/togore-tuna-hunt/internal/api"
	"github.com/everforgeworks/togore-tuna-hunt/internal/appraisal"
	"github.com/everforgeworks/togore-tuna-hunt/internal/game"
	"github.com/everforgeworks/togore-tuna-hunt/internal/store"
)

const (
	shutdownTimeout = 5 * time.Second
	catalogDebounce = 250 * time.Millisecond
)

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load the static catalog (yaml file or the embedded default)
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	src := game.NewCatalogSource(catalog)

	// 2. Open the save store and load the session
	st, err := store.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	ledger := game.OpenLedger(ctx, src, game.LedgerOptions{
		SaveID: cfg.SaveID,
		Store:  st,
		Logger: logger,
	})
	reel := game.NewReel(ledger, src, game.ReelOptions{Logger: logger})
	defer reel.Stop()

	// 3. Togore's appraisals: Gemini when a key is configured, fallback otherwise
	var remote appraisal.Appraiser
	if cfg.GeminiAPIKey != "" {
		g, err := appraisal.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AppraisalRPS)
		if err != nil {
			logger.Warn("gemini unavailable, using fallback appraisals", zap.Error(err))
		} else {
			remote = g
		}
	}
	tracker := appraisal.NewTracker(ctx, appraisal.NewService(remote, cfg.AppraisalTimeout, logger))
	defer tracker.Wait()

	// 4. Real-time hub and REST surface
	hub := api.NewHub(cfg.AllowedOrigin, logger)
	srv := api.NewServer(ledger, reel, tracker, hub, logger)
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.CORS(cfg.AllowedOrigin, srv.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return hub.Run(ctx) })

	// 5. THE INCOME HEARTBEAT
	g.Go(func() error { return game.RunPassiveIncome(ctx, ledger, cfg.IncomeInterval, logger) })

	// 6. Hot-reload: SIGHUP, and file changes when watching is enabled
	if cfg.Catalog != "" {
		g.Go(func() error { return reloadOnHangup(ctx, src) })
		if cfg.WatchCatalog {
			g.Go(func() error { return game.WatchCatalog(ctx, src, cfg.Catalog, catalogDebounce, logger) })
		}
	}

	// 7. Start the Server
	g.Go(func() error {
		logger.Info("togore's tuna hunt live",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.Store),
			zap.String("save_id", cfg.SaveID),
			zap.Bool("gemini", remote != nil))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

func runReset(ctx context.Context) error {
	st, err := store.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(ctx, cfg.SaveID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info("no save to reset", zap.String("save_id", cfg.SaveID))
			return nil
		}
		return fmt.Errorf("delete save: %w", err)
	}
	logger.Info("save deleted", zap.String("save_id", cfg.SaveID))
	return nil
}

func loadCatalog() (*game.Catalog, error) {
	if cfg.Catalog == "" {
		return game.DefaultCatalog()
	}
	return game.LoadCatalogFile(cfg.Catalog)
}

// reloadOnHangup re-reads the catalog file on every SIGHUP.
func reloadOnHangup(ctx context.Context, src *game.CatalogSource) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigChan:
			logger.Info("SIGHUP: reloading catalog", zap.String("path", cfg.Catalog))
			_ = game.ReloadCatalog(src, cfg.Catalog, logger)
		}
	}
}
