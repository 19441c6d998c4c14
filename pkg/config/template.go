package config

import (
	"io"

	"github.com/matzehuels/hdf2mic/pkg/errors"
)

// configTemplate is the annotated starting point written by Template. It
// shows every recognized key with a workable example value.
const configTemplate = `# hdf2mic conversion parameters

[files.input]
hdf5 = "microstructure.h5"
# Driving-file template with <mytagname> placeholders. Required when
# files.output.driving is set.
template = "template.dri"

[files.output]
# Leave a path empty to skip that output.
txt = "grain_properties.txt"
vtk = "grid.vtk"
driving = "run.dri"

[data]
# Dataset dimensionality: 1, 2 or 3.
dim = 3
# Elapsed time: a literal numeral ("0.005"), a dataset path ("/time"),
# or empty.
time = ""

[data.geometry]
dimensions = "/geometry/dimensions"
origin = "/geometry/origin"
spacing = "/geometry/spacing"

[data.grains]
# Optional per-grain tables. Angles: one row per grain, one or three
# columns. Phases: one column.
angles = "/grains/angles"
phases = "/grains/phases"

[data.celldata]
# Parallel lists: paths, names, types and kinds must be equally long.
paths = ["/celldata/korn"]
names = ["korn"]
# One of: bit, unsigned_char, char, unsigned_short, short, unsigned_int,
# int, unsigned_long, long, float, double.
types = ["int"]
# One of: SCALARS, VECTORS, NORMALS, TENSORS, FIELD.
kinds = ["SCALARS"]
# One "arrayName componentCount" entry per FIELD kind above.
fields = []
# Driving-template tags, one per declaration; may be shorter than the
# other lists.
tags = ["<korn>"]

[settings.input]
# Drop the placeholder leading row of the grain tables.
clip_first_row = false
# Apply the axis-convention rotation to orientation data.
rotate = false
# Attributes whose cell values are rotated individually, by declaration
# index or name.
rotate_values = []

[settings.vtk]
version = 2.0
columns = 9

[settings.driving]
# Reference the other outputs by absolute path.
absolute_paths = false
`

// Template writes an annotated example config to w.
func Template(w io.Writer) error {
	if _, err := io.WriteString(w, configTemplate); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "cannot write config template")
	}
	return nil
}
