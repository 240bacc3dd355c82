package cli

import (
	"github.com/spf13/cobra"
)

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one stored course as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer cat.Close()

			c, err := cat.Course(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return newEncoder(cmd.OutOrStdout()).Encode(c)
		},
	}
}
