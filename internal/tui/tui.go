package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/models"
)

var ErrUserQuit = errors.New("user quit")

// Engine is the part of the sync engine the status screen drives.
type Engine interface {
	Push(ctx context.Context) (models.SyncResult, error)
	Pull(ctx context.Context) (models.SyncResult, error)
	FullSync(ctx context.Context) (models.SyncResult, error)
	Status(ctx context.Context) models.SyncStatus
}

// Lister reads local collections for the record counts.
type Lister interface {
	List(ctx context.Context, c models.Collection) ([]models.Record, error)
}

// BuildInfo is shown on the about overlay.
type BuildInfo struct {
	Version string
	Date    string
	Commit  string
}

type TUI struct {
	engine Engine
	data   Lister
	info   BuildInfo
	poll   time.Duration
	logger *logger.Logger
}

func New(services *service.ClientServices, info BuildInfo, log *logger.Logger) (*TUI, error) {
	if services == nil || services.Engine == nil || services.Data == nil {
		return nil, errNoServices
	}
	return &TUI{
		engine: services.Engine,
		data:   services.Data,
		info:   info,
		poll:   defaultPollInterval,
		logger: log,
	}, nil
}

// Run shows the status screen until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	model := newStatusModel(ctx, t.engine, t.data, t.info, t.poll)
	finalModel, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}

	result, ok := finalModel.(statusModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.quit {
		t.logger.Info().Str("func", "TUI.Run").Msg("status screen closed by user")
		return ErrUserQuit
	}
	return nil
}
