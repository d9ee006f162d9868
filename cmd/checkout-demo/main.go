// Command checkout-demo is a minimal web shop wired to the gateway: it
// registers payments, redirects the consumer to the hosted payment page
// and processes the status callbacks.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	cardgate "github.com/cardgate/cardgate-go"
	"github.com/cardgate/cardgate-go/internal/checkout/config"
	"github.com/cardgate/cardgate-go/internal/checkout/server"
	"github.com/cardgate/cardgate-go/internal/checkout/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("cannot load configuration", "error", err)
		os.Exit(1)
	}

	orders, err := store.New(cfg.OrderDBPath)
	if err != nil {
		logger.Error("cannot open order store", "error", err)
		os.Exit(1)
	}
	defer orders.Close()

	client := cardgate.NewClient(cfg.MerchantID, cfg.APIKey, cfg.Testmode)
	client.SetLogger(logger)
	if err := client.SetDebugLevel(cfg.DebugLevel); err != nil {
		logger.Error("invalid debug level", "error", err)
		os.Exit(1)
	}
	if cfg.Language != "" {
		if err := client.SetLanguage(cfg.Language); err != nil {
			logger.Error("invalid language", "error", err)
			os.Exit(1)
		}
	}
	version := client.Version()
	_ = version.SetPlatformName("Go")
	_ = version.SetPlatformVersion(runtime.Version())
	_ = version.SetPluginName("checkout-demo")
	_ = version.SetPluginVersion(cardgate.ClientVersion)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(cfg, logger, orders, client).Handler(),
	}

	go func() {
		logger.Info("checkout demo listening", "addr", cfg.ListenAddr, "testmode", cfg.Testmode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
