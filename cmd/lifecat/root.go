package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifecat/internal/catalog"
	"lifecat/internal/config"
	"lifecat/internal/fixtures"
	"lifecat/internal/logging"
	"lifecat/internal/render"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	cfg *config.Config
	svc *catalog.Service
	rn  *render.Renderer

	fixtures  string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "lifecat",
		Short: "Life-category taxonomy service",
		Long:  "lifecat loads the life-category taxonomy and answers hierarchy and search\nqueries over HTTP, MCP and the command line.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.Version = version

	f := root.PersistentFlags()
	f.StringVar(&a.fixtures, "fixtures", "", "fixture directory (default: embedded data, or LIFECAT_FIXTURES_DIR)")
	f.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newServeCmd(a),
		newSearchCmd(a),
		newTreeCmd(a),
		newMainCmd(a),
		newPathCmd(a),
		newDescendantsCmd(a),
		newSyncCmd(a),
		newMCPCmd(a),
	)
	return root
}

// setup initializes logging, configuration and the catalog service.
// Logs go to stderr so that stdout stays clean for command output and
// the MCP stdio transport.
func (a *app) setup(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	logging.Init(level, a.logFormat, cmd.ErrOrStderr())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if a.fixtures != "" {
		cfg.FixturesDir = a.fixtures
	}
	a.cfg = cfg

	var src fixtures.Source = fixtures.Embedded()
	if cfg.FixturesDir != "" {
		src = fixtures.NewDirSource(cfg.FixturesDir)
	}
	a.svc = catalog.New(src)

	a.rn, err = render.New()
	if err != nil {
		return err
	}
	return nil
}
