package micro

import (
	"regexp"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/micro/rotate"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

// Spec is the raw input to a build: dataset paths, declared per-cell
// attribute lists, and behaviour options. It mirrors the conversion config
// but carries no file-format knowledge.
type Spec struct {
	// Dim is the dataset dimensionality: 1, 2 or 3.
	Dim int

	// Time is a literal numeral, a dataset path (leading "/"), or empty.
	Time string

	// Grain-level dataset paths. Either may be absent ("" or "/").
	AnglesPath string
	PhasesPath string

	// Geometry dataset paths, all mandatory.
	DimensionsPath string
	OriginPath     string
	SpacingPath    string

	// Parallel per-cell attribute declarations. The first four lists must
	// be equally long. FieldSpecs holds one "name count" token per
	// FIELD-kind declaration; Tags may be shorter and is padded.
	CellPaths  []string
	CellNames  []string
	CellTypes  []string
	CellKinds  []string
	FieldSpecs []string
	Tags       []string

	// ClipFirstRow drops the placeholder leading row of every multi-row
	// grain-level table (angle and phase inputs that pad row zero).
	ClipFirstRow bool

	// Rotate applies the axis-convention rotation to orientation data.
	Rotate bool

	// RotateValues selects per-cell attributes whose cell values are
	// rotated individually during the grid reorder; each entry is either a
	// declaration index or an attribute name.
	RotateValues []string
}

// Builder assembles one validated Microstructure from a dataset source.
// All invariants are checked eagerly; the first violation aborts the build.
type Builder struct {
	Source source.Source
	Logger *charmlog.Logger
}

// fieldSpecPattern matches one "name count" field-array token.
var fieldSpecPattern = regexp.MustCompile(`^(\S+)\s+(\d+)$`)

// orientationAttr is the per-cell attribute name whose values are Euler
// angles and therefore subject to the axis-convention rotation.
const orientationAttr = "euler"

// Build reads, validates and assembles the canonical model.
func (b *Builder) Build(spec Spec) (*Microstructure, error) {
	if spec.Dim < 1 || spec.Dim > 3 {
		return nil, errors.New(errors.ErrCodeInvalidDimension, "dim is %d and not 1, 2 or 3", spec.Dim)
	}

	m := &Microstructure{Dim: spec.Dim}

	if err := b.buildTime(spec, m); err != nil {
		return nil, err
	}
	if err := b.buildGrains(spec, m); err != nil {
		return nil, err
	}
	if err := b.buildGeometry(spec, m); err != nil {
		return nil, err
	}
	if err := b.buildCellData(spec, m); err != nil {
		return nil, err
	}

	return m, nil
}

// buildTime resolves the optional elapsed time: literal numeral first, then
// dataset path. A missing time dataset degrades to a warning.
func (b *Builder) buildTime(spec Spec, m *Microstructure) error {
	s := strings.TrimSpace(spec.Time)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		m.Time = &v
		return nil
	}
	if !strings.HasPrefix(s, "/") || source.Absent(s) {
		return nil
	}

	arr, err := b.Source.Get(s)
	if err != nil || arr.Size() == 0 {
		b.logger().Warnf("could not find time value at dataset path %s", s)
		return nil
	}
	v := arr.Values[0]
	m.Time = &v
	return nil
}

// buildGrains reads the orientation and phase tables and checks that they
// agree on the grain count.
func (b *Builder) buildGrains(spec Spec, m *Microstructure) error {
	if !source.Absent(spec.AnglesPath) {
		arr, err := b.Source.Get(spec.AnglesPath)
		if err != nil {
			return err
		}
		angles := arr.AsColumn()
		if spec.Dim < 3 {
			// 1-D and 2-D runs keep only the first component per grain;
			// for all three, run with dim=3 and let the rotation map
			// [x,0,0] into the target convention.
			angles = firstComponent(angles)
		}
		if spec.ClipFirstRow {
			angles = angles.ClipFirstRow()
		}
		if spec.Rotate && spec.Dim == axisSwapGateDim {
			angles = RotateGrainAngles(angles)
		}
		m.Grains.Angles = angles
	}

	if !source.Absent(spec.PhasesPath) {
		arr, err := b.Source.Get(spec.PhasesPath)
		if err != nil {
			return err
		}
		phases := arr.AsColumn()
		if spec.ClipFirstRow {
			phases = phases.ClipFirstRow()
		}
		m.Grains.Phases = phases
	}

	return m.Grains.validate()
}

// firstComponent reduces a grain table to its first column.
func firstComponent(a *source.Array) *source.Array {
	cols := a.Shape[len(a.Shape)-1]
	rows := a.Size() / cols
	flat := a.Reshape(rows, cols)
	out := &source.Array{Shape: []int{rows, 1}, Dtype: a.Dtype, Values: flat.Column(0)}
	return out
}

// buildGeometry reads cell counts, spacing and origin. Stored dimensions are
// grid-point counts (cells + 1); the cell count is the product of the raw
// per-axis cell counts.
func (b *Builder) buildGeometry(spec Spec, m *Microstructure) error {
	dims, err := b.Source.Get(spec.DimensionsPath)
	if err != nil {
		return err
	}
	if dims.Size() != 3 {
		return errors.New(errors.ErrCodeDimensionMismatch,
			"geometry dimensions dataset %s has %d entries, want 3", spec.DimensionsPath, dims.Size())
	}

	cells := [3]int{int(dims.Values[0]), int(dims.Values[1]), int(dims.Values[2])}
	m.CellCount = cells[0] * cells[1] * cells[2]

	points := [3]int{cells[0] + 1, cells[1] + 1, cells[2] + 1}
	if spec.Rotate && spec.Dim == 3 {
		// Axis swap for the target coordinate system: exchange y and z.
		points = [3]int{points[0], points[2], points[1]}
	}
	m.Geometry.Dims = points

	origin, err := b.Source.Get(spec.OriginPath)
	if err != nil {
		return err
	}
	if origin.Size() != 3 {
		return errors.New(errors.ErrCodeDimensionMismatch,
			"geometry origin dataset %s has %d entries, want 3", spec.OriginPath, origin.Size())
	}
	m.Geometry.Origin = NewTriple(origin.Values[0], origin.Values[1], origin.Values[2])

	spacing, err := b.Source.Get(spec.SpacingPath)
	if err != nil {
		return err
	}
	if spacing.Size() != 3 {
		return errors.New(errors.ErrCodeDimensionMismatch,
			"geometry spacing dataset %s has %d entries, want 3", spec.SpacingPath, spacing.Size())
	}
	if err := checkSpacing(spacing.Values); err != nil {
		return err
	}
	m.Geometry.Spacing = NewTriple(spacing.Values[0], spacing.Values[1], spacing.Values[2])

	return nil
}

// buildCellData validates the attribute declarations, reads every array, and
// stores the classifier-ordered sequence with field specs bound to the FIELD
// suffix.
func (b *Builder) buildCellData(spec Spec, m *Microstructure) error {
	n := len(spec.CellPaths)
	if len(spec.CellNames) != n || len(spec.CellTypes) != n || len(spec.CellKinds) != n {
		return errors.New(errors.ErrCodeInvalidCellData,
			"cellData lists must be equally long: %d paths, %d names, %d types, %d kinds",
			n, len(spec.CellNames), len(spec.CellTypes), len(spec.CellKinds))
	}

	tags := append([]string(nil), spec.Tags...)
	for len(tags) < n {
		tags = append(tags, "")
	}
	for _, tag := range tags {
		if tag != "" && !errors.ValidTag(tag) {
			return errors.New(errors.ErrCodeInvalidCellData,
				"tag %q does not match the required form <mytagname>", tag)
		}
	}

	fieldCount := 0
	attrs := make([]CellAttribute, 0, n)
	for i := 0; i < n; i++ {
		dt, err := ParseDataType(spec.CellTypes[i])
		if err != nil {
			return err
		}
		kind, err := ParseKind(spec.CellKinds[i])
		if err != nil {
			return err
		}
		if kind == KindField {
			fieldCount++
		}

		b.logger().Debugf("reading cellData %s from %s", spec.CellNames[i], spec.CellPaths[i])
		arr, err := b.Source.Get(spec.CellPaths[i])
		if err != nil {
			return err
		}
		arr = arr.AsColumn()

		if spec.Rotate && spec.CellNames[i] == orientationAttr {
			arr = rotateCellValues(arr)
		}
		if spec.Rotate && spec.Dim == axisSwapGateDim && spec.CellNames[i] == orientationAttr {
			arr = ReorderGrid(arr, MatchesSelector(spec.RotateValues, i, spec.CellNames[i]))
		}

		attrs = append(attrs, CellAttribute{
			Data: arr,
			Name: spec.CellNames[i],
			Type: dt,
			Kind: kind,
			Tag:  tags[i],
		})
	}

	if fieldCount > len(spec.FieldSpecs) {
		return errors.New(errors.ErrCodeFieldArrays,
			"number of FIELD declarations %d exceeds number of field specs %d", fieldCount, len(spec.FieldSpecs))
	}

	attrs = SortCellData(attrs)

	// Field specs pair with the FIELD suffix positionally after ordering.
	start := FieldStart(attrs)
	for i := start; i < len(attrs); i++ {
		tok := spec.FieldSpecs[i-start]
		match := fieldSpecPattern.FindStringSubmatch(strings.TrimSpace(tok))
		if match == nil {
			return errors.New(errors.ErrCodeFieldArrays,
				"field spec %q is not of the form \"arrayName numComponents\"", tok)
		}
		comps, _ := strconv.Atoi(match[2])
		attrs[i].Array = match[1]
		attrs[i].Components = comps
	}

	m.CellData = attrs
	return nil
}

// rotateCellValues applies the axis-convention rotation to every
// 3-component cell value of an orientation-valued attribute. Arrays whose
// innermost axis is not 3 are returned unchanged.
func rotateCellValues(a *source.Array) *source.Array {
	last := a.Shape[len(a.Shape)-1]
	if last != 3 {
		return a
	}
	out := &source.Array{Shape: a.Shape, Dtype: a.Dtype, Values: make([]float64, len(a.Values))}
	for i := 0; i+2 < len(a.Values); i += 3 {
		r := rotate.Rotate([3]float64{a.Values[i], a.Values[i+1], a.Values[i+2]}, true)
		out.Values[i], out.Values[i+1], out.Values[i+2] = r[0], r[1], r[2]
	}
	return out
}

func (b *Builder) logger() *charmlog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return charmlog.Default()
}
