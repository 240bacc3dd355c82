package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/course-catalog/internal/config"
)

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var (
		dryRun    bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load courses from a YAML file into the store",
		Long: `Load courses from a YAML file into the store.

Missing ids are derived from title, instructor and term, so re-seeding the
same file updates records in place. Search tokens are computed on the way in.

Examples:
  catalog seed configs/courses.sample.yaml
  catalog seed --dry-run courses.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.openCatalog(cmd.Context(), func(c *config.Config) {
				if batchSize > 0 {
					c.Ingest.BatchSize = batchSize
				}
			})
			if err != nil {
				return err
			}
			defer cat.Close()

			res, err := cat.Ingest(cmd.Context(), args[0], dryRun)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "written: %d, skipped: %d, took %s\n",
				res.Written, res.Skipped, res.Duration.Round(time.Millisecond))
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and prepare without writing")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "courses per upsert batch (default from config)")
	return cmd
}
