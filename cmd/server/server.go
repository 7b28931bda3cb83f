package main

import (
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LuizAugustoFH-77/Trivion/internal/bus"
	"github.com/LuizAugustoFH-77/Trivion/internal/config"
	"github.com/LuizAugustoFH-77/Trivion/internal/game"
	"github.com/LuizAugustoFH-77/Trivion/internal/handlers"
	"github.com/LuizAugustoFH-77/Trivion/internal/store"
	"github.com/LuizAugustoFH-77/Trivion/internal/ws"
)

// Application is the fully wired service. Tests assemble one against a
// shrunk configuration and drive the router directly.
type Application struct {
	Config   *config.Config
	Log      *zap.Logger
	Registry *store.Registry
	Bus      *bus.Bus
	Fabric   *bus.Fabric
	Service  *game.Service
	Router   *chi.Mux
}

// NewApplication wires every component against one configuration. The
// fabric is only dialed when a pubsub URL is configured.
func NewApplication(cfg *config.Config, log *zap.Logger, opts *handlers.RouterOptions) (*Application, error) {
	registry := store.NewRegistry(log)
	b := bus.New(log)

	var fabric *bus.Fabric
	if cfg.PubSub.URL != "" {
		f, err := bus.ConnectFabric(cfg.PubSub.URL, b, log)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		fabric = f
	}

	svc := game.NewService(registry, b, log, game.Timings{
		Countdown:       time.Duration(cfg.Game.CountdownSeconds) * time.Second,
		PodiumStep:      cfg.Game.PodiumStepDelay,
		PodiumFinal:     cfg.Game.PodiumFinalDelay,
		ReconnectWindow: cfg.Game.ReconnectWindow,
	})

	socket := ws.NewHandler(svc, registry, b, ws.Options{
		QueueSize:     cfg.Game.SendQueueSize,
		MaxFrameBytes: cfg.Game.MaxFrameBytes,
		PingInterval:  cfg.Game.HeartbeatInterval,
		PongTimeout:   cfg.Game.HeartbeatTimeout,
	}, log)

	api := handlers.NewAPI(svc, registry, cfg.Server.PublicURL, log)
	router := handlers.SetupRouter(api, socket, cfg, opts)

	return &Application{
		Config:   cfg,
		Log:      log,
		Registry: registry,
		Bus:      b,
		Fabric:   fabric,
		Service:  svc,
		Router:   router,
	}, nil
}

// Close releases external resources.
func (a *Application) Close() {
	if a.Fabric != nil {
		a.Fabric.Close()
	}
}
