package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vijay-papanaboina/LGTM-stack/internal/app"
	"github.com/Vijay-papanaboina/LGTM-stack/internal/config"
	"github.com/Vijay-papanaboina/LGTM-stack/internal/payment"
	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

func main() {
	cfg, cfgErr := config.Load(config.Defaults{
		ServiceName: "payment",
		Port:        8082,
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

	// Leaf service: no downstream dependency to check.
	r, err := app.NewRouter(obs, nil)
	if err != nil {
		log.Error(ctx, "failed to build router", observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	metrics, err := payment.NewMetrics(obs.Meter())
	if err != nil {
		log.Error(ctx, "failed to create payment metrics", observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	h := payment.NewHandler(
		metrics,
		cfg.DeclineRate,
		time.Duration(cfg.WorkMinMS)*time.Millisecond,
		time.Duration(cfg.WorkMaxMS)*time.Millisecond,
	)
	r.Post("/payments", h.ProcessPayment)

	srv := app.NewServer(fmt.Sprintf(":%d", cfg.Port), r)
	if err := app.Serve(ctx, obs, srv); err != nil {
		log.Error(ctx, "server stopped with error", observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
