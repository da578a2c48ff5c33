// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leseb/openresponses-cli/pkg/core/api"
	"github.com/leseb/openresponses-cli/pkg/core/config"
	"github.com/leseb/openresponses-cli/pkg/core/state"
	"github.com/leseb/openresponses-cli/pkg/observability/logging"
	"github.com/leseb/openresponses-cli/pkg/render"
	"github.com/leseb/openresponses-cli/pkg/storage"

	// Conversation store backends register themselves on import.
	_ "github.com/leseb/openresponses-cli/pkg/storage/file"
	_ "github.com/leseb/openresponses-cli/pkg/storage/memory"
	_ "github.com/leseb/openresponses-cli/pkg/storage/postgres"
	_ "github.com/leseb/openresponses-cli/pkg/storage/sqlite"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	flagConfig   string
	flagModel    string
	flagRenderer string
	flagVerbose  bool
	flagNoColor  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "orc",
	Short: "Terminal client for an Open Responses API backend",
	Long: `orc is a terminal client for an Open Responses API backend such as the
Open Responses Gateway.

Examples:
  orc chat                       # interactive conversation
  orc ask "what is a monad?"     # one-shot question
  orc resume conv_1234           # continue a saved conversation
  orc conversations              # list saved conversations
  orc models                     # list models the backend serves`,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "model to use")
	rootCmd.PersistentFlags().StringVarP(&flagRenderer, "renderer", "r", "", "renderer: rich, json, plain")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show usage counters and debug logs")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("orc %s (built %s)\n", Version, BuildTime)
	},
}

// app bundles everything a command needs after setup.
type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	client     *api.Client
	models     *api.ModelsClient
	renderer   render.Renderer
	renderOpts render.Options
	store      state.ConversationStore
}

// setup loads config and builds the shared dependencies.
func setup(ctx context.Context) (*app, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		// Missing config file is fine; defaults plus env vars suffice.
		cfg = config.Default()
	}
	if flagModel != "" {
		cfg.Defaults.Model = flagModel
	}
	if flagRenderer != "" {
		cfg.Defaults.Renderer = flagRenderer
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}

	renderOpts := render.Options{
		Verbose: flagVerbose,
		NoColor: flagNoColor,
	}
	renderer, err := render.New(cfg.Defaults.Renderer, renderOpts)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, cfg.Storage.Backend, cfg.Storage.Params)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		client:     api.NewClient(cfg.Server.BaseURL, cfg.Server.APIKey, cfg.Server.Timeout),
		models:     api.NewModelsClient(cfg.Server.BaseURL, cfg.Server.APIKey),
		renderer:   renderer,
		renderOpts: renderOpts,
		store:      store,
	}, nil
}

// requireModel guards the commands that send requests. Listing commands
// work without a model.
func (a *app) requireModel() error {
	if a.cfg.Defaults.Model == "" {
		return fmt.Errorf("no model configured (set defaults.model in the config file, OPENRESPONSES_MODEL, or --model)")
	}
	return nil
}

func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	lcfg := logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if flagVerbose {
		lcfg.Level = "debug"
	}
	if cfg.Logging.File != "" && !flagVerbose {
		return logging.NewFile(lcfg, cfg.Logging.File)
	}
	return logging.New(lcfg), nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.logger != nil {
		a.logger.Close()
	}
}
