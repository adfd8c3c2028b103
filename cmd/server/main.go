package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warehouse/app/allocation"
	"warehouse/app/materials"
	"warehouse/app/orders"
	"warehouse/app/products"
	"warehouse/internal/config"
	"warehouse/internal/db"
	applog "warehouse/internal/log"
	"warehouse/models"
)

func main() {
	ctx := context.Background()

	// Missing .env is fine; the environment itself may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		applog.Error(ctx, "invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.Error(ctx, "invalid log level", "err", err)
		os.Exit(1)
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		applog.Error(ctx, "database setup failed", "err", err)
		os.Exit(1)
	}
	applog.Info(ctx, "database ready")

	productsRepo := models.NewProductsRepository(database)
	materialsRepo := models.NewMaterialsRepository(database)
	ordersRepo := models.NewOrdersRepository(database)
	allocationsRepo := models.NewAllocationsRepository(database)

	engine := allocation.NewEngine(ordersRepo, productsRepo, materialsRepo, allocationsRepo)

	mux := newRouter(
		products.NewHandler(productsRepo),
		orders.NewHandler(ordersRepo),
		materials.NewHandler(materialsRepo),
		allocation.NewHandler(engine, ordersRepo, allocationsRepo),
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		applog.Info(ctx, "http server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "http server error", "err", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	applog.Info(ctx, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "err", err)
		os.Exit(1)
	}
}

func newRouter(
	productsHandler *products.Handler,
	ordersHandler *orders.Handler,
	materialsHandler *materials.Handler,
	allocationHandler *allocation.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", productsHandler.HandleGet)
	mux.HandleFunc("POST /products", productsHandler.HandleCreate)
	mux.HandleFunc("GET /products/{id}", productsHandler.HandleGetProduct)

	mux.HandleFunc("POST /orders", ordersHandler.HandleCreate)
	mux.HandleFunc("GET /orders", ordersHandler.HandleList)
	mux.HandleFunc("POST /orders/{id}/materials", allocationHandler.HandleRecompute)
	mux.HandleFunc("GET /orders/{id}/materials", allocationHandler.HandleGetMaterials)

	mux.HandleFunc("GET /materials", materialsHandler.HandleGetAll)
	mux.HandleFunc("POST /materials", materialsHandler.HandleCreate)
	mux.HandleFunc("PATCH /materials/{id}", materialsHandler.HandleUpdateUnit)
	mux.HandleFunc("GET /materials/{id}/batches", materialsHandler.HandleGetBatches)
	mux.HandleFunc("POST /materials/{id}/batches", materialsHandler.HandleCreateBatch)
	mux.HandleFunc("POST /batches/{id}/adjust", materialsHandler.HandleAdjustBatch)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
