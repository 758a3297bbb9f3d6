package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"tenpo_transactions/internal/api/handlers/transactions"
	mw "tenpo_transactions/internal/api/middlewares"
	"tenpo_transactions/internal/api/routers"
	"tenpo_transactions/internal/cache"
	"tenpo_transactions/internal/config"
	"tenpo_transactions/internal/page"
	"tenpo_transactions/internal/services"
	"tenpo_transactions/pkg/cron"
	"tenpo_transactions/pkg/utils"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Logger.Fatal("Failed to load configuration: ", err)
	}

	utils.InitLogger(cfg.AppEnv, cfg.LogLevel, cfg.LogDir)

	gateway := services.NewBackendClient(cfg.BackendBaseURL, cfg.ClientID, &http.Client{Timeout: cfg.BackendTimeout})

	service := services.NewTransactionService(gateway, cache.Options{
		StaleTime:  cfg.CacheStaleTime,
		Retry:      cfg.CacheRetry,
		RetryDelay: cfg.CacheRetryDelay,
	})

	sessions := page.NewSessions(service, time.Now, time.Local)

	scheduler, err := cron.StartCronJob(cfg.RevalidateSchedule, service, sessions)
	if err != nil {
		utils.Logger.Fatal("Failed to start cron jobs: ", err)
	}

	handler := transactions.NewHandler(sessions)
	handler.RequestTimeout = 30 * time.Second
	handler.SecureCookie = cfg.TLSEnabled()

	router := routers.MainRouter(handler)
	secureMux := mw.RequestLogger(mw.SecurityHeaders(router))

	server := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           secureMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.TLSEnabled() {
		server.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	go func() {
		utils.Logger.Infof("Server is running on port %s (backend %s)", cfg.ServerPort, cfg.BackendBaseURL)

		var err error
		if cfg.TLSEnabled() {
			err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Error starting the server: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down server")
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		utils.Logger.Errorf("Server shutdown failed: %v", err)
	}
}
