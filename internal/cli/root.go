// Package cli implements the catalog command line: schema migration,
// seeding and interactive-style paging through search results.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/course-catalog/internal/app"
	"github.com/heartmarshall/course-catalog/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the catalog command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Query and maintain the course catalog",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newSearchCommand(opts),
		newShowCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// load reads the configuration and installs the default logger.
func (o *rootOptions) load(overrides ...config.Override) (*config.Config, *slog.Logger, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if o.logLevel != "" {
		overrides = append(overrides, func(c *config.Config) { c.Log.Level = o.logLevel })
	}

	cfg, err := config.LoadFrom(path, overrides...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

// openCatalog loads the configuration and wires the catalog.
func (o *rootOptions) openCatalog(ctx context.Context, overrides ...config.Override) (*app.Catalog, error) {
	cfg, logger, err := o.load(overrides...)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger)
}

func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}
