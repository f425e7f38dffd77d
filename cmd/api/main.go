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

	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/logging"
	"github.com/pefman/fleet-sim/internal/server"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	log, err := logging.New(getenv("LOG_LEVEL", "info"), "json")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	d, err := defs.LoadOrDefault(os.Getenv("DEFS_PATH"))
	if err != nil {
		log.Fatal("load definitions", zap.Error(err))
	}
	simTimeout, err := time.ParseDuration(getenv("SIM_TIMEOUT", server.DefaultSimTimeout.String()))
	if err != nil {
		log.Fatal("SIM_TIMEOUT", zap.Error(err))
	}

	srv := server.New(server.Config{Defs: d, Logger: log, SimTimeout: simTimeout})

	// Prefer Cloud Run's PORT env var when present
	port := os.Getenv("PORT")
	if port == "" {
		port = getenv("API_PORT", "8080")
	}
	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdown)
	}()

	log.Info("fleet-sim API listening", zap.String("addr", httpSrv.Addr), zap.Bool("custom_defs", os.Getenv("DEFS_PATH") != ""))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("serve", zap.Error(err))
	}
	log.Info("stopped")
}
