package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-trip-keeper/internal/adapter"
	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/connectivity"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/queue"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/internal/tui"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/internal/workers"
)

type App struct {
	storages  *store.ClientStorages
	prober    *connectivity.Prober
	services  *service.ClientServices
	scheduler *workers.TickerScheduler
	workers   *workers.Workers
	ui        *tui.TUI

	logger *logger.Logger
}

var _ Client = (*App)(nil)

// NewApp opens the local store and builds every client component. Nothing
// is started until Run.
func NewApp(ctx context.Context, cfg *config.ClientConfig, info tui.BuildInfo, log *logger.Logger) (*App, error) {
	if cfg.App.Token == "" {
		log.Warn().Str("func", "NewApp").Msg("no token configured, the remote store will reject sync")
	} else if userID, err := utils.ParseUserIDFromJWT(cfg.App.Token); err != nil {
		log.Warn().Err(err).Str("func", "NewApp").Msg("token subject cannot be read")
	} else {
		log.Info().Int64("user_id", userID).Msg("client token loaded")
	}

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("create remote store adapter: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	prober := connectivity.NewProber(remote, cfg.Workers.ProbeInterval, log)

	q, err := queue.New(ctx, storages.Local, prober, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("load mutation queue: %w", err)
	}

	services := service.NewClientServices(storages.Local, q, remote, prober, cfg.Workers.SyncDebounce, log)

	scheduler := workers.NewTickerScheduler(log)
	agent := workers.NewBackgroundAgent(scheduler, services.Engine, prober, cfg.Workers.BackgroundInterval, log)

	ui, err := tui.New(services, info, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create status screen: %w", err)
	}

	return &App{
		storages:  storages,
		prober:    prober,
		services:  services,
		scheduler: scheduler,
		workers:   workers.NewWorkers(agent),
		ui:        ui,
		logger:    log,
	}, nil
}

// Run starts background work, shows the status screen and shuts
// everything down when the screen closes.
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	if err := a.start(ctx); err != nil {
		return err
	}

	if err := a.ui.Run(ctx); err != nil && !errors.Is(err, tui.ErrUserQuit) {
		return fmt.Errorf("status screen: %w", err)
	}
	return nil
}

// start subscribes the engine before probing begins, so the first
// successful probe is seen as an online edge.
func (a *App) start(ctx context.Context) error {
	if err := a.services.Engine.Start(ctx); err != nil {
		return fmt.Errorf("start sync engine: %w", err)
	}
	if err := a.prober.Start(ctx); err != nil {
		return fmt.Errorf("start connectivity prober: %w", err)
	}
	a.workers.Run()
	return nil
}

func (a *App) shutdown() {
	a.workers.Stop()
	a.scheduler.Stop()
	a.services.Engine.Stop()
	a.prober.Stop()

	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Str("func", "App.shutdown").Msg("error closing local storage")
	}
	a.logger.Info().Str("func", "App.shutdown").Msg("client stopped")
}
