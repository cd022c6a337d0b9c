package app

import (
	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/config"
	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/gateway"
	"github.com/abhisek/coderush/internal/loop"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/poll"
	"github.com/abhisek/coderush/internal/screen"
	"github.com/abhisek/coderush/internal/screens/ingame"
	"github.com/abhisek/coderush/internal/screens/loading"
	"github.com/abhisek/coderush/internal/screens/lobby"
	"github.com/abhisek/coderush/internal/screens/result"
	"github.com/abhisek/coderush/internal/screens/title"
)

// New wires the client, gateway, scheduler, phase controller and
// orchestrator, with every callback delivered through d.
func New(opts Options, d loop.Dispatcher) (*AppModel, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger

	client := api.NewClient(cfg.Server.URL, api.Options{
		Timeout: cfg.Server.RequestTimeout,
		Logger:  logger.With().Str("component", "api").Logger(),
		Metrics: opts.Metrics,
	})
	gw := gateway.NewAsync(client, d, gateway.Options{
		Timeout: cfg.Server.RequestTimeout,
		Logger:  logger.With().Str("component", "gateway").Logger(),
	})

	m := &AppModel{gateway: gw, logger: logger}
	if opts.AutoStart {
		m.autoStart = cfg.Game.Nickname
	}

	var history title.HistoryFunc
	var recorder game.Recorder
	if opts.History != nil {
		history = opts.History.RecentSessions
		recorder = game.RecorderFunc(opts.History.AppendSession)
	}

	m.phases = phase.NewController(map[phase.Phase]phase.Factory{
		phase.Title: screen.Factory(func() *title.TitleScreen {
			return title.New(m.game, history)
		}),
		phase.Lobby: screen.Factory(func() *lobby.LobbyScreen {
			return lobby.New(m.game, cfg.Game.Nickname)
		}),
		phase.Loading: screen.Factory(func() *loading.LoadingScreen {
			return loading.New(m.game)
		}),
		phase.InGame: screen.Factory(func() *ingame.InGameScreen {
			return ingame.New(m.game)
		}),
		phase.Result: screen.Factory(func() *result.ResultScreen {
			return result.New(m.game)
		}),
	}, logger.With().Str("component", "phase").Logger())

	m.game = game.New(game.Deps{
		Gateway:   gw,
		Scheduler: loop.NewTimers(d),
		Phases:    m.phases,
		Recorder:  recorder,
		Logger:    logger.With().Str("component", "game").Logger(),
		Metrics:   opts.Metrics,
	}, game.Config{
		SettleDelay:   cfg.Game.SettleDelay,
		UseGeneration: cfg.Game.UseGeneration,
		Poll: poll.Config{
			Interval: cfg.Game.PollInterval,
			MaxPolls: cfg.Game.MaxPolls,
		},
	})

	return m, nil
}
