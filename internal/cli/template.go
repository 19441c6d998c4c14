package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hdf2mic/pkg/config"
	"github.com/matzehuels/hdf2mic/pkg/errors"
)

// newTemplateCmd creates the template command. It writes an annotated
// config template to the given path, or to stdout when no path is given.
func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template [path]",
		Short: "Write an annotated config template",
		Long: `Write an annotated config template showing every recognized key.

Examples:
  hdf2mic template                  # to stdout
  hdf2mic template conversion.toml  # to a file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return config.Template(cmd.OutOrStdout())
			}

			path := args[0]
			f, err := os.Create(path)
			if err != nil {
				return errors.Wrap(errors.ErrCodeIOFailure, err, "cannot create %s", path)
			}
			if err := config.Template(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(errors.ErrCodeIOFailure, err, "cannot finalize %s", path)
			}

			printSuccess("wrote config template")
			printFile(path)
			return nil
		},
	}
}
