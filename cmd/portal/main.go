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

	"github.com/nurpe/licitaciones-portal/internal/config"
	"github.com/nurpe/licitaciones-portal/internal/db"
	"github.com/nurpe/licitaciones-portal/internal/detail"
	"github.com/nurpe/licitaciones-portal/internal/export"
	httphandler "github.com/nurpe/licitaciones-portal/internal/http"
	"github.com/nurpe/licitaciones-portal/internal/listing"
	"github.com/nurpe/licitaciones-portal/internal/logger"
	"github.com/nurpe/licitaciones-portal/internal/mapview"
	"github.com/nurpe/licitaciones-portal/internal/repository"
	"github.com/nurpe/licitaciones-portal/internal/service"
	"github.com/nurpe/licitaciones-portal/internal/session"
	"github.com/nurpe/licitaciones-portal/internal/tenderapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	client := tenderapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)

	handlerOpts := httphandler.HandlerOptions{
		MapRenderer: cfg.Map.Renderer,
		MapOptions: mapview.Options{
			ProviderAPIKey: cfg.Map.APIKey,
			RasterScale:    cfg.Map.RasterScale,
		},
		PageSize: cfg.Listing.PageSize,
	}

	var loader *detail.Loader
	if database != nil {
		snapshots := repository.NewSnapshotRepository(database)
		loader = detail.NewLoader(client, snapshots, log)
		handlerOpts.Snapshots = snapshots
	} else {
		loader = detail.NewLoader(client, nil, log)
	}

	portal := service.NewPortalService(client, loader, export.NewExcelGenerator(), export.NewPDFGenerator(), cfg, log)

	handler, err := httphandler.NewHandler(portal, handlerOpts, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init handler")
	}

	sessions := session.NewStore(cfg.Session.Secret, cfg.Session.TTL, func() *listing.Controller {
		return listing.NewController(client, cfg.Listing.PageSize, log)
	}, session.WithMaxSessions(cfg.Session.MaxSessions))
	router := httphandler.NewRouter(handler, sessions, httphandler.RouterOptions{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("api", cfg.API.BaseURL).Str("map", cfg.Map.Renderer).Msg("starting licitaciones portal")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
