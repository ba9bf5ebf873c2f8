package initialization

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/EzhovAndrew/zulu/internal/configuration"
	"github.com/EzhovAndrew/zulu/internal/logging"
	"github.com/EzhovAndrew/zulu/internal/network"
	"github.com/EzhovAndrew/zulu/internal/simulator"
)

var ErrConfigIsNil = errors.New("config is nil")

type TCPServer interface {
	HandleRequests(ctx context.Context, newHandler network.HandlerFactory)
}

type Device interface {
	NewHandler() network.TCPHandler
}

type Initializer struct {
	server TCPServer
	device Device
}

func NewInitializer(cfg *configuration.Config) (*Initializer, error) {
	if cfg == nil {
		return nil, ErrConfigIsNil
	}
	device := simulator.NewPrinter(cfg.Simulator.Variables)
	logging.Info("Simulated printer configured", zap.Int("variables", len(cfg.Simulator.Variables)))
	server, err := network.NewTCPServer(&cfg.Simulator)
	if err != nil {
		return nil, err
	}
	logging.Info("Server configured", zap.String("address", server.Addr().String()))
	return &Initializer{
		server: server,
		device: device,
	}, nil
}

// StartSimulator blocks serving printer connections until ctx is cancelled.
func (i *Initializer) StartSimulator(ctx context.Context) error {
	logging.Info("Simulator started")
	i.server.HandleRequests(ctx, i.device.NewHandler)
	logging.Info("Simulator stopped")
	return nil
}
