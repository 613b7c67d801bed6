package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"shakehouse/internal/config"
	"shakehouse/internal/handler"
	"shakehouse/internal/mw"
	"shakehouse/internal/service"
	"shakehouse/internal/store"
	"shakehouse/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.New()

	orderStore, err := store.New(cfg.DataDir)
	if err != nil {
		slog.Error("failed to init order store", "error", err)
		os.Exit(1)
	}
	auditLog := store.NewAuditLog(cfg.DataDir)

	// Services
	authSvc, err := service.NewAuthService(cfg.AdminPassword, cfg.StaffPassword)
	if err != nil {
		slog.Error("failed to init auth service", "error", err)
		os.Exit(1)
	}
	notifier := service.NewNotifier(cfg.Notifications)

	// Worker
	notifyWorker := worker.NewNotifyWorker(notifier, 64)
	orderSvc := service.NewOrderService(orderStore, auditLog, notifyWorker)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/ping", handler.PingHandler())
	r.Post("/login", handler.LoginHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/pedidos/get-orders", handler.SubmitOrderHandler(orderSvc))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/api/session", handler.SessionHandler())
		r.Get("/api/pedidos/get-orders", handler.ListOrdersHandler(orderSvc))
		r.Post("/api/pedidos/update-status", handler.UpdateStatusHandler(orderSvc))

		r.With(mw.RequireAdmin).Delete("/api/pedidos/{orderID}", handler.DeleteOrderHandler(orderSvc))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go notifyWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress, "data_dir", cfg.DataDir)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	cancel() // stop worker
	notifyWorker.Wait()

	slog.Info("server stopped")
}
