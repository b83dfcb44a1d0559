package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/deskagent/agent"
	"github.com/tailored-agentic-units/deskagent/core/config"
	"github.com/tailored-agentic-units/deskagent/desktop"
	"github.com/tailored-agentic-units/deskagent/expert"
	"github.com/tailored-agentic-units/deskagent/kernel"
	"github.com/tailored-agentic-units/deskagent/memory"
	"github.com/tailored-agentic-units/deskagent/tools"
	"github.com/tailored-agentic-units/deskagent/tools/filesystem"
	"github.com/tailored-agentic-units/deskagent/tools/input"
	"github.com/tailored-agentic-units/deskagent/tools/reference"
	"github.com/tailored-agentic-units/deskagent/tools/screen"
	"github.com/tailored-agentic-units/deskagent/tools/system"
	"github.com/tailored-agentic-units/deskagent/vision"
)

// app holds everything the subcommands share.
type app struct {
	cfg    *kernel.Config
	level  *slog.LevelVar
	logger *slog.Logger
	store  memory.Store
	cache  *memory.Cache
	agents *agent.Registry
}

func newApp(cmd *cobra.Command, driver desktop.Driver, opts *options) (*app, error) {
	cfg, err := kernel.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	if opts.debug {
		level.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	a := &app{cfg: cfg, level: level, logger: logger}

	store, err := memory.NewStore(&cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}
	if store != nil {
		a.store = store
		a.cache = memory.NewCache(store)
		if err := a.cache.Bootstrap(cmd.Context()); err != nil {
			return nil, fmt.Errorf("failed to index %s: %w", cfg.Memory.Path, err)
		}
	}

	if err := installTools(driver, cfg, a.cache); err != nil {
		return nil, err
	}

	def := expert.Definition()
	a.agents = agent.NewRegistry(agent.WithToolCheck(func(names []string) error {
		_, err := tools.Subset(names)
		return err
	}))
	if err := a.agents.Register(def, cfg.Agent); err != nil {
		return nil, err
	}

	logger.Debug("deskagent ready",
		"provider", cfg.Agent.Provider.Name,
		"model", cfg.Agent.Model.Name,
		"tools", len(def.Tools),
		"memory", cfg.Memory.Path,
	)

	return a, nil
}

// kernel instantiates the expert agent and the kernel hosting it.
func (a *app) kernel() (*kernel.Kernel, error) {
	ag, err := a.agents.Get(expert.Name)
	if err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			return nil, fmt.Errorf("%w (set QIANWEN_API_KEY and QIANWEN_API_BASE, or DESKAGENT_API_KEY and DESKAGENT_API_BASE)", err)
		}
		return nil, err
	}

	def, err := a.agents.Definition(expert.Name)
	if err != nil {
		return nil, err
	}

	return kernel.New(a.cfg,
		kernel.WithAgent(ag),
		kernel.WithDefinition(def),
		kernel.WithMemoryStore(a.store),
	)
}

// installTools binds every tool family to driver and the knowledge cache and
// installs it, replacing earlier installs.
func installTools(driver desktop.Driver, cfg *kernel.Config, cache *memory.Cache) error {
	matcher := vision.New(cfg.Vision)

	var entries []tools.Entry
	entries = append(entries, system.New().Entries()...)
	entries = append(entries, filesystem.New().Entries()...)
	entries = append(entries, reference.New(cache).Entries()...)
	entries = append(entries, input.New(driver).Entries()...)
	entries = append(entries, screen.New(driver, matcher).Entries()...)

	return tools.Install(entries...)
}
