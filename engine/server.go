package engine

import (
	"context"
	"glyco/engine/defs"
	"glyco/engine/pkg/http"
	"glyco/engine/pkg/mg"
	"glyco/engine/pkg/rewards"
	"time"

	"go.uber.org/zap"
)

const setupTimeout = 2 * time.Second

// Server wires the engine together; the embedded components jointly
// implement the API surface.
type Server struct {
	*Ingester
	*Querier
	*TrendReporter

	Store    *mg.MongoStore
	Logger   *zap.Logger
	Location *time.Location
}

func New(config defs.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	var err error

	loc := time.Local
	if config.Timezone != "" {
		loc, err = time.LoadLocation(config.Timezone)
		if err != nil {
			return nil, err
		}
	}

	ms, err := mg.New(ctx, config.Mongo, defs.DefaultDB, config.Logger)
	if err != nil {
		return nil, err
	}

	var notifier rewards.Notifier
	if config.Rewards.Addr != "" {
		notifier = rewards.New(config.Rewards.Addr, config.Logger)
	}

	pipeline := &Pipeline{Store: ms, Logger: config.Logger, Location: loc}

	config.Logger.Debug("finished server setup", zap.String("timezone", loc.String()))

	return &Server{
		Ingester: &Ingester{
			Store:    ms,
			Pipeline: pipeline,
			Notifier: notifier,
			Logger:   config.Logger,
			Location: loc,
		},
		Querier:       &Querier{Store: ms, Logger: config.Logger, Location: loc},
		TrendReporter: &TrendReporter{Store: ms, Logger: config.Logger},
		Store:         ms,
		Logger:        config.Logger,
		Location:      loc,
	}, nil
}

// Run blocks serving the API.
func Run(config defs.Config) error {
	s, err := New(config)
	if err != nil {
		return err
	}

	addr := config.Server.Addr
	if addr == "" {
		addr = ":4242"
	}

	s.Logger.Info("serving glucose analytics engine", zap.String("addr", addr))
	return http.New(s).Serve(addr)
}
