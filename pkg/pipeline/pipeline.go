// Package pipeline runs the complete conversion: build the canonical
// microstructure from the input file, then write the grain-property
// listing, the structured grid, and the driving file.
//
// By centralizing this logic the CLI stays a thin argument layer and the
// conversion can be driven programmatically with the same behavior.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: read and validate the configured datasets into a Microstructure
//  2. Txt: write the grain-property listing
//  3. VTK: write the structured-points grid
//  4. Driving: substitute tags into the driving-file template
//
// Output stages whose output path is unset are skipped. A stage failure
// aborts the stages after it; outputs already written stay on disk.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Config: cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.Files {
//	    fmt.Println(f)
//	}
package pipeline

import (
	"context"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/matzehuels/hdf2mic/pkg/config"
	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/micro"
	"github.com/matzehuels/hdf2mic/pkg/render/dri"
	"github.com/matzehuels/hdf2mic/pkg/render/txt"
	"github.com/matzehuels/hdf2mic/pkg/render/vtk"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

// Options configures one pipeline run.
type Options struct {
	// Config is the validated conversion parameter set.
	Config *config.Config

	// Logger overrides the runner's logger for this run.
	Logger *charmlog.Logger
}

// Result records what a run produced.
type Result struct {
	// Model is the built microstructure.
	Model *micro.Microstructure

	// Files lists the output paths written, in stage order.
	Files []string

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BuildTime   time.Duration
	TxtTime     time.Duration
	VTKTime     time.Duration
	DrivingTime time.Duration
}

// Runner executes conversions against one dataset source. It is stateless
// apart from the source and logger; concurrent runs with different options
// are safe as long as the source is.
type Runner struct {
	Source source.Source
	Logger *charmlog.Logger
}

// NewRunner creates a runner for the given source.
// If logger is nil, the default logger is used.
func NewRunner(src source.Source, logger *charmlog.Logger) *Runner {
	if logger == nil {
		logger = charmlog.Default()
	}
	return &Runner{Source: src, Logger: logger}
}

// Execute runs build → txt → vtk → driving. On a stage failure the partial
// Result is returned alongside the error so callers can report what was
// written before the failure.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "pipeline options carry no config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	result := &Result{}

	buildStart := time.Now()
	builder := &micro.Builder{Source: r.Source, Logger: logger}
	m, err := builder.Build(opts.Config.Spec())
	if err != nil {
		return result, err
	}
	result.Model = m
	result.Stats.BuildTime = time.Since(buildStart)
	logger.Info("built microstructure",
		"dim", m.Dim,
		"grains", m.Grains.Count(),
		"cells", m.CellCount,
		"duration", result.Stats.BuildTime)

	out := opts.Config.Files.Output

	if out.Txt != "" {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		start := time.Now()
		if err := writeFile(out.Txt, func(f *os.File) error { return txt.Write(f, m) }); err != nil {
			return result, err
		}
		result.Files = append(result.Files, out.Txt)
		result.Stats.TxtTime = time.Since(start)
		logger.Info("wrote grain properties", "path", out.Txt, "duration", result.Stats.TxtTime)
	}

	if out.VTK != "" {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		start := time.Now()
		vtkOpts := []vtk.Option{
			vtk.WithVersion(opts.Config.Settings.VTK.Version),
			vtk.WithColumns(opts.Config.Settings.VTK.Columns),
		}
		if err := writeFile(out.VTK, func(f *os.File) error { return vtk.Write(f, m, vtkOpts...) }); err != nil {
			return result, err
		}
		result.Files = append(result.Files, out.VTK)
		result.Stats.VTKTime = time.Since(start)
		logger.Info("wrote grid", "path", out.VTK, "duration", result.Stats.VTKTime)
	}

	if out.Driving != "" {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		start := time.Now()
		text, err := dri.Substitute(opts.Config.Files.Input.Template, m, dri.Options{
			AbsolutePaths: opts.Config.Settings.Driving.AbsolutePaths,
			GrainFile:     out.Txt,
			GridFile:      out.VTK,
			Logger:        logger,
		})
		if err != nil {
			return result, err
		}
		if err := os.WriteFile(out.Driving, []byte(text), 0o644); err != nil {
			return result, errors.Wrap(errors.ErrCodeIOFailure, err, "cannot write driving file %s", out.Driving)
		}
		result.Files = append(result.Files, out.Driving)
		result.Stats.DrivingTime = time.Since(start)
		logger.Info("wrote driving file", "path", out.Driving, "duration", result.Stats.DrivingTime)
	}

	return result, nil
}

// writeFile creates path and hands it to write, closing on all paths.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "cannot create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "cannot finalize %s", path)
	}
	return nil
}
