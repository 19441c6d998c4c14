package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hdf2mic/pkg/config"
	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/pipeline"
	"github.com/matzehuels/hdf2mic/pkg/source/hdf5"
)

// newConvertCmd creates the convert command. It runs the full conversion
// described by a TOML config: build the microstructure, then write the
// grain-property listing, the grid, and the driving file.
func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <config.toml>",
		Short: "Convert an HDF5 microstructure into MICRESS inputs",
		Long: `Convert an HDF5 microstructure into MICRESS inputs.

The config names the input file, the dataset paths inside it, the outputs
to produce, and per-output settings.

Examples:
  hdf2mic convert conversion.toml
  hdf2mic convert -v conversion.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0])
		},
	}
}

func runConvert(cmd *cobra.Command, configPath string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	src, err := hdf5.Open(cfg.Files.Input.HDF5)
	if err != nil {
		return err
	}
	defer src.Close()

	track := newProgress(logger)
	spinner := newSpinner(ctx, fmt.Sprintf("converting %s", cfg.Files.Input.HDF5))
	spinner.Start()

	runner := pipeline.NewRunner(src, logger)
	result, err := runner.Execute(ctx, pipeline.Options{Config: cfg})
	if err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		if result != nil {
			// Outputs written before the failure stay on disk.
			for _, f := range result.Files {
				printFile(f)
			}
		}
		return err
	}

	spinner.StopWithSuccess(fmt.Sprintf("converted %s", cfg.Files.Input.HDF5))
	for _, f := range result.Files {
		printFile(f)
	}
	track.done(fmt.Sprintf("wrote %d output file(s)", len(result.Files)))
	return nil
}
