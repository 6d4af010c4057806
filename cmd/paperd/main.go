package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zappabad/tradedesk/internal/config"
	"github.com/zappabad/tradedesk/internal/desk"
	marketservice "github.com/zappabad/tradedesk/internal/market/service"
	"github.com/zappabad/tradedesk/internal/paperserver"
	"github.com/zappabad/tradedesk/pkg/logger"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("TRADEDESK_CONFIG"), "config yaml path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.WithComponent("paperd")

	markets := marketservice.NewMarketService(cfg.Market.Pairs, desk.NewFeed(cfg.Market), marketservice.DefaultConfig())
	defer markets.Close()

	ledger, engine, err := desk.OpenVenue(cfg, markets)
	if err != nil {
		log.WithError(err).Fatal("open paper venue")
	}
	defer ledger.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           paperserver.New(engine, markets, paperserver.DefaultConfig()).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Server.Listen).Info("paper venue listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
	log.Info("paper venue stopped")
}
