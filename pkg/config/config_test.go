package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/hdf2mic/pkg/errors"
)

const validConfig = `
[files.input]
hdf5 = "microstructure.h5"
template = "template.dri"

[files.output]
txt = "grains.txt"
vtk = "grid.vtk"
driving = "run.dri"

[data]
dim = 3
time = "/time"

[data.geometry]
dimensions = "/geometry/dimensions"
origin = "/geometry/origin"
spacing = "/geometry/spacing"

[data.grains]
angles = "/grains/angles"
phases = "/grains/phases"

[data.celldata]
paths = ["/celldata/korn"]
names = ["korn"]
types = ["int"]
kinds = ["SCALARS"]
fields = []
tags = ["<korn>"]

[settings.input]
clip_first_row = true
rotate = false
rotate_values = []

[settings.driving]
absolute_paths = true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversion.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Files.Input.HDF5 != "microstructure.h5" {
		t.Errorf("hdf5 = %q", cfg.Files.Input.HDF5)
	}
	if cfg.Data.Dim != 3 {
		t.Errorf("dim = %d", cfg.Data.Dim)
	}
	if !cfg.Settings.Input.ClipFirstRow {
		t.Error("clip_first_row not parsed")
	}
	if !cfg.Settings.Driving.AbsolutePaths {
		t.Error("absolute_paths not parsed")
	}
}

func TestLoadAppliesVTKDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Settings.VTK.Version != 2.0 {
		t.Errorf("default version = %v, want 2.0", cfg.Settings.VTK.Version)
	}
	if cfg.Settings.VTK.Columns != 9 {
		t.Errorf("default columns = %d, want 9", cfg.Settings.VTK.Columns)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeIOFailure) {
		t.Errorf("error = %v, want IO_FAILURE", err)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[files.input\nhdf5 ="))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadValidationTable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
		code   errors.Code
	}{
		{
			"missing input file",
			func(s string) string { return strings.Replace(s, `hdf5 = "microstructure.h5"`, `hdf5 = ""`, 1) },
			errors.ErrCodeInvalidConfig,
		},
		{
			"bad dim",
			func(s string) string { return strings.Replace(s, "dim = 3", "dim = 5", 1) },
			errors.ErrCodeInvalidDimension,
		},
		{
			"driving without template",
			func(s string) string { return strings.Replace(s, `template = "template.dri"`, `template = ""`, 1) },
			errors.ErrCodeInvalidConfig,
		},
		{
			"missing geometry path",
			func(s string) string {
				return strings.Replace(s, `spacing = "/geometry/spacing"`, `spacing = ""`, 1)
			},
			errors.ErrCodeInvalidConfig,
		},
		{
			"traversal in dataset path",
			func(s string) string {
				return strings.Replace(s, `angles = "/grains/angles"`, `angles = "/grains/../angles"`, 1)
			},
			errors.ErrCodeInvalidConfig,
		},
		{
			"celldata list mismatch",
			func(s string) string { return strings.Replace(s, `names = ["korn"]`, `names = []`, 1) },
			errors.ErrCodeInvalidCellData,
		},
		{
			"more tags than declarations",
			func(s string) string {
				return strings.Replace(s, `tags = ["<korn>"]`, `tags = ["<korn>", "<extra>"]`, 1)
			},
			errors.ErrCodeInvalidCellData,
		},
		{
			"unknown type",
			func(s string) string { return strings.Replace(s, `types = ["int"]`, `types = ["int32"]`, 1) },
			errors.ErrCodeUnknownDataType,
		},
		{
			"unknown kind",
			func(s string) string { return strings.Replace(s, `kinds = ["SCALARS"]`, `kinds = ["CELLS"]`, 1) },
			errors.ErrCodeUnknownKind,
		},
		{
			"name with whitespace",
			func(s string) string { return strings.Replace(s, `names = ["korn"]`, `names = ["k orn"]`, 1) },
			errors.ErrCodeInvalidCellData,
		},
		{
			"malformed tag",
			func(s string) string { return strings.Replace(s, `tags = ["<korn>"]`, `tags = ["korn"]`, 1) },
			errors.ErrCodeInvalidCellData,
		},
		{
			"FIELD without field spec",
			func(s string) string { return strings.Replace(s, `kinds = ["SCALARS"]`, `kinds = ["FIELD"]`, 1) },
			errors.ErrCodeFieldArrays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.mutate(validConfig)))
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSpecTranslation(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	spec := cfg.Spec()
	if spec.Dim != 3 || spec.Time != "/time" {
		t.Errorf("spec dim/time = %d/%q", spec.Dim, spec.Time)
	}
	if spec.AnglesPath != "/grains/angles" || spec.SpacingPath != "/geometry/spacing" {
		t.Errorf("spec paths = %q, %q", spec.AnglesPath, spec.SpacingPath)
	}
	if len(spec.CellPaths) != 1 || spec.CellNames[0] != "korn" {
		t.Errorf("spec celldata = %v/%v", spec.CellPaths, spec.CellNames)
	}
	if !spec.ClipFirstRow {
		t.Error("spec should carry clip_first_row")
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Template(&buf); err != nil {
		t.Fatalf("Template() error = %v", err)
	}

	// The emitted template must itself load.
	if _, err := Load(writeConfig(t, buf.String())); err != nil {
		t.Errorf("template config does not load: %v", err)
	}
}
