package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vijay-papanaboina/LGTM-stack/client"
	"github.com/Vijay-papanaboina/LGTM-stack/health"
	"github.com/Vijay-papanaboina/LGTM-stack/internal/app"
	"github.com/Vijay-papanaboina/LGTM-stack/internal/config"
	"github.com/Vijay-papanaboina/LGTM-stack/internal/order"
	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

func main() {
	cfg, cfgErr := config.Load(config.Defaults{
		ServiceName:   "order",
		Port:          8081,
		DownstreamURL: "http://payment:8082",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observe.NewObserver(ctx, app.ObserverConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	log := obs.Logger()
	if cfgErr != nil {
		log.Warn(ctx, "invalid environment, using defaults",
			observe.Field{Key: "error", Value: cfgErr.Error()},
		)
	}

	r, err := app.NewRouter(obs, health.NewHTTPChecker("payment", cfg.DownstreamURL+"/healthz"))
	if err != nil {
		log.Error(ctx, "failed to build router", observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	metrics, err := order.NewMetrics(obs.Meter())
	if err != nil {
		log.Error(ctx, "failed to create order metrics", observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	h := order.NewHandler(
		client.New(cfg.DownstreamURL, obs),
		metrics,
		time.Duration(cfg.WorkMinMS)*time.Millisecond,
		time.Duration(cfg.WorkMaxMS)*time.Millisecond,
	)
	r.Post("/orders", h.CreateOrder)

	srv := app.NewServer(fmt.Sprintf(":%d", cfg.Port), r)
	if err := app.Serve(ctx, obs, srv); err != nil {
		log.Error(ctx, "server stopped with error", observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
