package cli

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/course-catalog/internal/app"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg.Database, logger)
		},
	}
}
