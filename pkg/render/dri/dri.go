// Package dri produces the solver driving file by tag substitution over a
// user-supplied template.
//
// Tags of the form <mytagname> are replaced with values derived from the
// microstructure (cell counts, spacing) or with references into the other
// output files (grain-property listing, grid file). Unrecognized template
// text passes through verbatim; tags missing from the template are warnings,
// not failures.
package dri

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/micro"
)

// Implicit tags always substituted when present in the template.
var (
	// TagCells maps the first Dim axes to their cell-count tags.
	TagCells = [3]string{"<cellsX>", "<cellsY>", "<cellsZ>"}

	// TagSpacing is replaced with the uniform cell spacing.
	TagSpacing = "<spacing>"

	// TagGrainProperties is replaced with the grain-property file path.
	TagGrainProperties = "<grain-properties>"
)

// Options configures the substitution pass.
type Options struct {
	// AbsolutePaths rewrites output-file references as absolute paths.
	AbsolutePaths bool

	// GrainFile is the grain-property output path, empty if that output is
	// not configured. Must exist on disk at substitution time when set.
	GrainFile string

	// GridFile is the grid output path, empty if not configured. Must
	// exist on disk at substitution time when set.
	GridFile string

	Logger *charmlog.Logger
}

// engine carries one substitution pass over a template.
type engine struct {
	text   string
	opts   Options
	logger *charmlog.Logger
}

// Substitute reads the template, replaces all recognized tags with values
// derived from m, and returns the resulting document.
func Substitute(templatePath string, m *micro.Microstructure, opts Options) (string, error) {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIOFailure, err, "cannot read driving template %s", templatePath)
	}
	if len(raw) == 0 {
		return "", errors.New(errors.ErrCodeTemplateEmpty, "driving template %s is empty", templatePath)
	}

	e := &engine{text: string(raw), opts: opts, logger: opts.Logger}
	if e.logger == nil {
		e.logger = charmlog.Default()
	}

	// Implicit tags: the solver wants cell counts, not point counts, so
	// each axis dimension is decremented by one.
	for i := 0; i < m.Dim; i++ {
		e.replace(TagCells[i], strconv.Itoa(m.Geometry.Dims[i]-1))
	}
	e.replace(TagSpacing, m.Geometry.Spacing.Component(0))

	if opts.GrainFile != "" {
		path, err := e.outputPath(opts.GrainFile)
		if err != nil {
			return "", err
		}
		e.replace(TagGrainProperties, path)
	}

	if opts.GridFile != "" {
		path, err := e.outputPath(opts.GridFile)
		if err != nil {
			return "", err
		}
		for _, attr := range m.CellData {
			if attr.Tag == "" {
				continue
			}
			replacement := path + " " + attr.Name
			if attr.Array != "" {
				replacement += " " + attr.Array
			}
			e.replace(attr.Tag, replacement)
		}
	}

	return e.text, nil
}

// outputPath verifies that a referenced output file exists and optionally
// makes its path absolute. The driving file points the solver at the other
// outputs, so a dangling reference would fail much later and far less
// legibly than failing here.
func (e *engine) outputPath(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", errors.New(errors.ErrCodeMissingOutputFile,
			"driving template requires output file %s, but it was not found", path)
	}
	if e.opts.AbsolutePaths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeIOFailure, err, "cannot resolve absolute path of %s", path)
		}
		return abs, nil
	}
	return path, nil
}

// replace substitutes every occurrence of tag with value. A malformed tag is
// warned about but still attempted; a tag absent from the template is a
// warning only.
func (e *engine) replace(tag, value string) {
	if !errors.ValidTag(tag) {
		e.logger.Warnf("tag %q does not comply with the recommended form <mytagname> (replacement %q)", tag, value)
	}
	if !strings.Contains(e.text, tag) {
		e.logger.Warnf("driving template is missing tag %s", tag)
		return
	}
	e.text = strings.ReplaceAll(e.text, tag, value)
}
