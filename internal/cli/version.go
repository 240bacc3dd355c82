package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/course-catalog/internal/app"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "catalog", app.BuildVersion())
			return err
		},
	}
}
