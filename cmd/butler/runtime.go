package main

import (
	"fmt"
	"path/filepath"

	"github.com/nats-io/nats.go"

	"github.com/vinayprograms/butler/internal/capability"
	"github.com/vinayprograms/butler/internal/config"
	"github.com/vinayprograms/butler/internal/dispatch"
	"github.com/vinayprograms/butler/internal/events"
	"github.com/vinayprograms/butler/internal/fastpath"
	"github.com/vinayprograms/butler/internal/logging"
	"github.com/vinayprograms/butler/internal/planner"
	"github.com/vinayprograms/butler/internal/session"
)

// runtime is the composition root: everything a command needs, wired from
// config.
type runtime struct {
	cfg        *config.Config
	logger     *logging.Logger
	store      session.Store
	dispatcher *dispatch.Dispatcher
	nc         *nats.Conn
	closers    []func()
}

// newRuntime builds the runtime. needNATS makes a missing NATS URL a hard
// error instead of a degraded mode.
func newRuntime(configPath string, needNATS bool) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New()
	logger.SetLevel(logging.Level(cfg.Logging.Level))

	r := &runtime{cfg: cfg, logger: logger}

	registry := capability.NewRegistry()
	capability.RegisterBuiltins(registry)

	router := fastpath.NewRouter()
	if cfg.FastPath.Rules != "" {
		entries, err := fastpath.LoadRules(cfg.FastPath.Rules)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			router.Register(e)
		}
	}

	switch cfg.Storage.Backend {
	case "sqlite":
		store, err := session.NewSQLiteStore(filepath.Join(cfg.Storage.Path, "sessions.db"))
		if err != nil {
			return nil, err
		}
		r.store = store
		r.closers = append(r.closers, func() { store.Close() })
	default:
		store, err := session.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		r.store = store
	}

	sink := events.Multi{&events.LogSink{Logger: logger}}
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(cfg.Agent.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		r.nc = nc
		r.closers = append(r.closers, func() { nc.Drain() })
		sink = append(sink, events.NewNATSSink(nc, cfg.NATS.SubjectPrefix, logger))
	} else if needNATS {
		return nil, fmt.Errorf("serve requires nats.url in config")
	}

	var pln planner.Planner
	if key := cfg.LLM.APIKey(); key != "" {
		pln = planner.NewOpenAIPlanner(key, cfg.LLM.Model, cfg.LLM.BaseURL)
	}

	r.dispatcher = dispatch.New(dispatch.Config{
		Registry: registry,
		Router:   router,
		Planner:  pln,
		Sessions: session.NewProvider(r.store),
		Sink:     sink,
		Logger:   logger,
	})
	return r, nil
}

// Close releases runtime resources in reverse order of acquisition.
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}
