// Package config loads and validates the TOML conversion-parameter file.
//
// A config names the input file, the output files, the dataset paths inside
// the input, the per-cell attribute declarations, and per-output settings.
// Validation happens entirely up front: list lengths, kind and type
// vocabularies, and tag shapes are all checked before any dataset is read.
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/micro"
)

// Config is the full conversion parameter set.
type Config struct {
	Files    Files    `toml:"files"`
	Data     Data     `toml:"data"`
	Settings Settings `toml:"settings"`
}

// Files names the input artifacts and the outputs to produce. An empty
// output path skips that output.
type Files struct {
	Input  Input  `toml:"input"`
	Output Output `toml:"output"`
}

// Input names the source file and the driving-file template.
type Input struct {
	HDF5     string `toml:"hdf5"`
	Template string `toml:"template"`
}

// Output names the files to write.
type Output struct {
	Txt     string `toml:"txt"`
	VTK     string `toml:"vtk"`
	Driving string `toml:"driving"`
}

// Data locates the datasets inside the input file.
type Data struct {
	// Dim is the dataset dimensionality: 1, 2 or 3.
	Dim int `toml:"dim"`

	// Time is a literal numeral, a dataset path (leading "/"), or empty.
	Time string `toml:"time"`

	Geometry Geometry `toml:"geometry"`
	Grains   Grains   `toml:"grains"`
	CellData CellData `toml:"celldata"`
}

// Geometry names the three mandatory geometry datasets.
type Geometry struct {
	Dimensions string `toml:"dimensions"`
	Origin     string `toml:"origin"`
	Spacing    string `toml:"spacing"`
}

// Grains names the optional per-grain tables.
type Grains struct {
	Angles string `toml:"angles"`
	Phases string `toml:"phases"`
}

// CellData declares the per-cell attributes as parallel lists. Paths,
// Names, Types and Kinds must be equally long; Fields holds one
// "name count" token per FIELD-kind declaration; Tags may be shorter than
// the other lists.
type CellData struct {
	Paths  []string `toml:"paths"`
	Names  []string `toml:"names"`
	Types  []string `toml:"types"`
	Kinds  []string `toml:"kinds"`
	Fields []string `toml:"fields"`
	Tags   []string `toml:"tags"`
}

// Settings carries per-stage behaviour options.
type Settings struct {
	Input   InputSettings   `toml:"input"`
	VTK     VTKSettings     `toml:"vtk"`
	Driving DrivingSettings `toml:"driving"`
}

// InputSettings controls how datasets are interpreted after reading.
type InputSettings struct {
	// ClipFirstRow drops the placeholder leading row of the grain tables.
	ClipFirstRow bool `toml:"clip_first_row"`

	// Rotate applies the axis-convention rotation to orientation data.
	Rotate bool `toml:"rotate"`

	// RotateValues selects per-cell attributes for value rotation, each
	// entry a declaration index or an attribute name.
	RotateValues []string `toml:"rotate_values"`
}

// VTKSettings controls the grid serializer.
type VTKSettings struct {
	Version float64 `toml:"version"`
	Columns int     `toml:"columns"`
}

// DrivingSettings controls the driving-file tag substitution.
type DrivingSettings struct {
	AbsolutePaths bool `toml:"absolute_paths"`
}

// Load reads, parses and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "cannot read config %s", path)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot parse config %s", path)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Settings.VTK.Version == 0 {
		c.Settings.VTK.Version = 2.0
	}
	if c.Settings.VTK.Columns == 0 {
		c.Settings.VTK.Columns = 9
	}
}

// validate checks everything that can be checked without opening the input
// file.
func (c *Config) validate() error {
	if c.Files.Input.HDF5 == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "files.input.hdf5 is required")
	}
	if c.Data.Dim < 1 || c.Data.Dim > 3 {
		return errors.New(errors.ErrCodeInvalidDimension, "data.dim is %d and not 1, 2 or 3", c.Data.Dim)
	}
	if c.Files.Output.Driving != "" && c.Files.Input.Template == "" {
		return errors.New(errors.ErrCodeInvalidConfig,
			"files.output.driving is set but files.input.template is empty")
	}

	required := []struct{ key, path string }{
		{"data.geometry.dimensions", c.Data.Geometry.Dimensions},
		{"data.geometry.origin", c.Data.Geometry.Origin},
		{"data.geometry.spacing", c.Data.Geometry.Spacing},
	}
	for _, r := range required {
		if strings.TrimSpace(r.path) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s is required", r.key)
		}
		if err := errors.ValidateDatasetPath(r.path); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", r.key)
		}
	}
	optional := []struct{ key, path string }{
		{"data.grains.angles", c.Data.Grains.Angles},
		{"data.grains.phases", c.Data.Grains.Phases},
	}
	for _, o := range optional {
		if o.path == "" {
			continue
		}
		if err := errors.ValidateDatasetPath(o.path); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", o.key)
		}
	}

	return c.validateCellData()
}

func (c *Config) validateCellData() error {
	cd := c.Data.CellData
	n := len(cd.Paths)
	if len(cd.Names) != n || len(cd.Types) != n || len(cd.Kinds) != n {
		return errors.New(errors.ErrCodeInvalidCellData,
			"data.celldata lists disagree: %d paths, %d names, %d types, %d kinds",
			n, len(cd.Names), len(cd.Types), len(cd.Kinds))
	}
	if len(cd.Tags) > n {
		return errors.New(errors.ErrCodeInvalidCellData,
			"data.celldata.tags has %d entries for %d declarations", len(cd.Tags), n)
	}
	for i, tag := range cd.Tags {
		if tag != "" && !errors.ValidTag(tag) {
			return errors.New(errors.ErrCodeInvalidCellData,
				"data.celldata.tags[%d] %q does not match the form <mytagname>", i, tag)
		}
	}

	fieldCount := 0
	for i := 0; i < n; i++ {
		if err := errors.ValidateDatasetPath(cd.Paths[i]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCellData, err, "data.celldata.paths[%d]", i)
		}
		if err := errors.ValidateDataName(cd.Names[i]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCellData, err, "data.celldata.names[%d]", i)
		}
		if _, err := micro.ParseDataType(cd.Types[i]); err != nil {
			return err
		}
		kind, err := micro.ParseKind(cd.Kinds[i])
		if err != nil {
			return err
		}
		if kind == micro.KindField {
			fieldCount++
		}
	}
	if fieldCount > len(cd.Fields) {
		return errors.New(errors.ErrCodeFieldArrays,
			"%d FIELD declarations but only %d data.celldata.fields entries",
			fieldCount, len(cd.Fields))
	}
	return nil
}

// Spec translates the config into the builder's input.
func (c *Config) Spec() micro.Spec {
	return micro.Spec{
		Dim:            c.Data.Dim,
		Time:           c.Data.Time,
		AnglesPath:     c.Data.Grains.Angles,
		PhasesPath:     c.Data.Grains.Phases,
		DimensionsPath: c.Data.Geometry.Dimensions,
		OriginPath:     c.Data.Geometry.Origin,
		SpacingPath:    c.Data.Geometry.Spacing,
		CellPaths:      c.Data.CellData.Paths,
		CellNames:      c.Data.CellData.Names,
		CellTypes:      c.Data.CellData.Types,
		CellKinds:      c.Data.CellData.Kinds,
		FieldSpecs:     c.Data.CellData.Fields,
		Tags:           c.Data.CellData.Tags,
		ClipFirstRow:   c.Settings.Input.ClipFirstRow,
		Rotate:         c.Settings.Input.Rotate,
		RotateValues:   c.Settings.Input.RotateValues,
	}
}
