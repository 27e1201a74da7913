package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/wifi-access-backend/internal/bootstrap"
	"github.com/GregMSThompson/wifi-access-backend/internal/config"
	"github.com/GregMSThompson/wifi-access-backend/internal/crypto"
	"github.com/GregMSThompson/wifi-access-backend/internal/handlers"
	"github.com/GregMSThompson/wifi-access-backend/internal/middleware"
	"github.com/GregMSThompson/wifi-access-backend/internal/response"
	"github.com/GregMSThompson/wifi-access-backend/internal/router"
	"github.com/GregMSThompson/wifi-access-backend/internal/services"
	"github.com/GregMSThompson/wifi-access-backend/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// helpers
	cipher := crypto.New(bs.KMS, cfg.KMSKeyName)

	// stores
	var (
		tstore store.TransactionStore
		sstore store.SaleStore
	)
	if cfg.StoreBackend == config.StoreFirestore {
		tstore, sstore = store.NewFirestore(bs.Firestore)
	} else {
		tstore, sstore = store.NewPostgres(bs.Postgres)
	}

	// services
	ingserv := services.NewIngestService(tstore)
	saleserv := services.NewSaleService(sstore, cipher)
	tickserv := services.NewTicketService(sstore)
	dashserv := services.NewDashboardService(sstore, cipher, cfg.Location())

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.IngestSvc = ingserv
	deps.SaleSvc = saleserv
	deps.TicketSvc = tickserv
	deps.DashboardSvc = dashserv
	deps.Auth = middleware.NewMiddleware(bs.Firebase)
	deps.RouterSecret = bs.RouterSecret

	// router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server listening", "addr", srv.Addr)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	exitOnError("server start failed", err, bs.Log)
}
