package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/EzhovAndrew/zulu/internal/configuration"
	"github.com/EzhovAndrew/zulu/internal/initialization"
	"github.com/EzhovAndrew/zulu/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listen := flag.String("listen", "", "Address to listen on, overrides simulator.address")
	flag.Parse()

	cfg, err := configuration.NewConfig()
	if errors.Is(err, configuration.ErrConfigFileMissing) {
		cfg, err = configuration.DefaultConfig(), nil
		cfg.Logging.Level = "info"
	}
	if err != nil {
		log.Fatal(err)
	}
	if *listen != "" {
		cfg.Simulator.Address = *listen
	}
	logging.Init(&cfg.Logging)
	defer logging.Sync()
	logging.Info("Parse config")

	initializer, err := initialization.NewInitializer(cfg)
	if err != nil {
		logging.Fatal(err.Error())
	}

	logging.Info("Start simulator")
	if err := initializer.StartSimulator(ctx); err != nil {
		logging.Fatal(err.Error())
	}
}
