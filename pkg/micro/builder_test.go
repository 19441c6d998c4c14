package micro

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/micro/rotate"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

// testSource returns a memory source holding a small 3x3x1 microstructure.
func testSource() *source.Memory {
	return &source.Memory{
		Label: "test.h5",
		Sets: map[string]*source.Array{
			"/geometry/dimensions": {Shape: []int{3}, Values: []float64{3, 3, 1}},
			"/geometry/origin":     {Shape: []int{3}, Values: []float64{0, 0, 0}},
			"/geometry/spacing":    {Shape: []int{3}, Values: []float64{0.5, 0.5, 0.5}},
			"/grains/angles": {Shape: []int{3, 3}, Values: []float64{
				10, 20, 30,
				40, 50, 60,
				70, 80, 90,
			}},
			"/grains/phases": {Shape: []int{3, 1}, Values: []float64{1, 1, 2}},
			"/celldata/korn": {Shape: []int{9}, Values: []float64{1, 1, 2, 2, 3, 3, 1, 2, 3}},
			"/time":          {Shape: []int{1}, Values: []float64{0.005}},
		},
	}
}

// testSpec returns a spec matching testSource.
func testSpec() Spec {
	return Spec{
		Dim:            3,
		AnglesPath:     "/grains/angles",
		PhasesPath:     "/grains/phases",
		DimensionsPath: "/geometry/dimensions",
		OriginPath:     "/geometry/origin",
		SpacingPath:    "/geometry/spacing",
		CellPaths:      []string{"/celldata/korn"},
		CellNames:      []string{"korn"},
		CellTypes:      []string{"int"},
		CellKinds:      []string{"SCALARS"},
	}
}

func build(t *testing.T, src source.Source, spec Spec) *Microstructure {
	t.Helper()
	b := &Builder{Source: src}
	m, err := b.Build(spec)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

func TestBuildValid(t *testing.T) {
	m := build(t, testSource(), testSpec())

	if m.Dim != 3 {
		t.Errorf("Dim = %d, want 3", m.Dim)
	}
	if m.CellCount != 9 {
		t.Errorf("CellCount = %d, want 9", m.CellCount)
	}
	// Grid dimensions are point counts: cells + 1 per axis.
	if m.Geometry.Dims != [3]int{4, 4, 2} {
		t.Errorf("Dims = %v, want [4 4 2]", m.Geometry.Dims)
	}
	if m.Grains.Count() != 3 {
		t.Errorf("grain count = %d, want 3", m.Grains.Count())
	}
	if m.Time != nil {
		t.Errorf("Time = %v, want nil for empty spec", *m.Time)
	}
	if len(m.CellData) != 1 || m.CellData[0].Name != "korn" {
		t.Fatalf("CellData = %+v", m.CellData)
	}
}

func TestBuildInvalidDim(t *testing.T) {
	b := &Builder{Source: testSource()}
	for _, dim := range []int{0, 4, -1, 30} {
		spec := testSpec()
		spec.Dim = dim
		_, err := b.Build(spec)
		if !errors.Is(err, errors.ErrCodeInvalidDimension) {
			t.Errorf("dim %d: error = %v, want INVALID_DIMENSION", dim, err)
		}
	}
}

func TestBuildTime(t *testing.T) {
	t.Run("literal", func(t *testing.T) {
		spec := testSpec()
		spec.Time = "0.25"
		m := build(t, testSource(), spec)
		if m.Time == nil || *m.Time != 0.25 {
			t.Errorf("Time = %v, want 0.25", m.Time)
		}
	})

	t.Run("dataset path", func(t *testing.T) {
		spec := testSpec()
		spec.Time = "/time"
		m := build(t, testSource(), spec)
		if m.Time == nil || *m.Time != 0.005 {
			t.Errorf("Time = %v, want 0.005", m.Time)
		}
	})

	t.Run("missing dataset is a warning", func(t *testing.T) {
		spec := testSpec()
		spec.Time = "/no/such/time"
		m := build(t, testSource(), spec)
		if m.Time != nil {
			t.Errorf("Time = %v, want nil", *m.Time)
		}
	})

	t.Run("non-path non-numeral is ignored", func(t *testing.T) {
		spec := testSpec()
		spec.Time = "soon"
		m := build(t, testSource(), spec)
		if m.Time != nil {
			t.Errorf("Time = %v, want nil", *m.Time)
		}
	})
}

func TestBuildGrainCountMismatch(t *testing.T) {
	src := testSource()
	src.Sets["/grains/phases"] = &source.Array{Shape: []int{2, 1}, Values: []float64{1, 2}}

	b := &Builder{Source: src}
	_, err := b.Build(testSpec())
	if !errors.Is(err, errors.ErrCodeDimensionMismatch) {
		t.Errorf("error = %v, want DIMENSION_MISMATCH", err)
	}
}

func TestBuildNonUniformSpacing(t *testing.T) {
	src := testSource()
	src.Sets["/geometry/spacing"] = &source.Array{Shape: []int{3}, Values: []float64{0.5, 0.5, 1.0}}

	b := &Builder{Source: src}
	_, err := b.Build(testSpec())
	if !errors.Is(err, errors.ErrCodeInvalidSpacing) {
		t.Errorf("error = %v, want INVALID_SPACING", err)
	}
}

func TestBuildGeometryWrongEntryCount(t *testing.T) {
	src := testSource()
	src.Sets["/geometry/dimensions"] = &source.Array{Shape: []int{2}, Values: []float64{3, 3}}

	b := &Builder{Source: src}
	_, err := b.Build(testSpec())
	if !errors.Is(err, errors.ErrCodeDimensionMismatch) {
		t.Errorf("error = %v, want DIMENSION_MISMATCH", err)
	}
}

func TestBuildMissingDataset(t *testing.T) {
	spec := testSpec()
	spec.AnglesPath = "/grains/elsewhere"

	b := &Builder{Source: testSource()}
	_, err := b.Build(spec)
	if !errors.Is(err, errors.ErrCodeDatasetNotFound) {
		t.Errorf("error = %v, want DATASET_NOT_FOUND", err)
	}
}

func TestBuildCellDataValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		code   errors.Code
	}{
		{
			"list length mismatch",
			func(s *Spec) { s.CellNames = []string{"a", "b"} },
			errors.ErrCodeInvalidCellData,
		},
		{
			"unknown type",
			func(s *Spec) { s.CellTypes = []string{"integer"} },
			errors.ErrCodeUnknownDataType,
		},
		{
			"unknown kind",
			func(s *Spec) { s.CellKinds = []string{"POINTS"} },
			errors.ErrCodeUnknownKind,
		},
		{
			"malformed tag",
			func(s *Spec) { s.Tags = []string{"korn"} },
			errors.ErrCodeInvalidCellData,
		},
		{
			"FIELD without spec",
			func(s *Spec) { s.CellKinds = []string{"FIELD"} },
			errors.ErrCodeFieldArrays,
		},
		{
			"malformed field spec",
			func(s *Spec) {
				s.CellKinds = []string{"FIELD"}
				s.FieldSpecs = []string{"nameonly"}
			},
			errors.ErrCodeFieldArrays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec()
			tt.mutate(&spec)
			b := &Builder{Source: testSource()}
			_, err := b.Build(spec)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildFieldSpecBinding(t *testing.T) {
	src := testSource()
	src.Sets["/celldata/fa"] = &source.Array{Shape: []int{9}, Values: make([]float64, 9)}
	src.Sets["/celldata/fz"] = &source.Array{Shape: []int{9}, Values: make([]float64, 9)}

	spec := testSpec()
	spec.CellPaths = []string{"/celldata/fz", "/celldata/korn", "/celldata/fa"}
	spec.CellNames = []string{"zgroup", "korn", "agroup"}
	spec.CellTypes = []string{"float", "int", "float"}
	spec.CellKinds = []string{"FIELD", "SCALARS", "FIELD"}
	spec.FieldSpecs = []string{"alpha 3", "zeta 1"}

	m := build(t, src, spec)

	got := make([]string, len(m.CellData))
	for i, a := range m.CellData {
		got[i] = a.Name
	}
	if !reflect.DeepEqual(got, []string{"korn", "agroup", "zgroup"}) {
		t.Fatalf("attribute order = %v", got)
	}

	// Specs pair with the sorted FIELD suffix in order.
	if m.CellData[1].Array != "alpha" || m.CellData[1].Components != 3 {
		t.Errorf("agroup spec = %q/%d, want alpha/3", m.CellData[1].Array, m.CellData[1].Components)
	}
	if m.CellData[2].Array != "zeta" || m.CellData[2].Components != 1 {
		t.Errorf("zgroup spec = %q/%d, want zeta/1", m.CellData[2].Array, m.CellData[2].Components)
	}
}

func TestBuildFirstComponentFor2D(t *testing.T) {
	spec := testSpec()
	spec.Dim = 2

	m := build(t, testSource(), spec)
	if !reflect.DeepEqual(m.Grains.Angles.Shape, []int{3, 1}) {
		t.Fatalf("angles shape = %v, want [3 1]", m.Grains.Angles.Shape)
	}
	if !reflect.DeepEqual(m.Grains.Angles.Values, []float64{10, 40, 70}) {
		t.Errorf("angles values = %v, want first column", m.Grains.Angles.Values)
	}
}

func TestBuildClipFirstRow(t *testing.T) {
	spec := testSpec()
	spec.ClipFirstRow = true

	m := build(t, testSource(), spec)
	if m.Grains.Count() != 2 {
		t.Errorf("grain count = %d, want 2 after clipping", m.Grains.Count())
	}
	if m.Grains.Angles.Values[0] != 40 {
		t.Errorf("first angle row = %v, want the former second row", m.Grains.Angles.Values[:3])
	}
}

func TestBuildRotateSwapsGeometryAxes(t *testing.T) {
	src := testSource()
	src.Sets["/geometry/dimensions"] = &source.Array{Shape: []int{3}, Values: []float64{2, 3, 4}}
	src.Sets["/celldata/korn"] = &source.Array{Shape: []int{24}, Values: make([]float64, 24)}

	spec := testSpec()
	spec.Rotate = true

	m := build(t, src, spec)
	// Points per axis are cells+1, with y and z exchanged.
	if m.Geometry.Dims != [3]int{3, 5, 4} {
		t.Errorf("Dims = %v, want [3 5 4]", m.Geometry.Dims)
	}
	if m.CellCount != 24 {
		t.Errorf("CellCount = %d, want 24", m.CellCount)
	}
}

func TestBuildRotateOrientationValues(t *testing.T) {
	src := testSource()
	src.Sets["/celldata/euler"] = &source.Array{Shape: []int{9, 3}, Values: func() []float64 {
		v := make([]float64, 27)
		for i := range v {
			v[i] = float64(i * 10)
		}
		return v
	}()}

	spec := testSpec()
	spec.Rotate = true
	spec.CellPaths = append(spec.CellPaths, "/celldata/euler")
	spec.CellNames = append(spec.CellNames, "euler")
	spec.CellTypes = append(spec.CellTypes, "float")
	spec.CellKinds = append(spec.CellKinds, "VECTORS")

	m := build(t, src, spec)

	var euler *source.Array
	for _, a := range m.CellData {
		if a.Name == "euler" {
			euler = a.Data
		}
	}
	if euler == nil {
		t.Fatal("euler attribute missing")
	}

	want := rotate.Rotate([3]float64{0, 10, 20}, true)
	for i := 0; i < 3; i++ {
		if math.Abs(euler.Values[i]-want[i]) > 1e-9 {
			t.Errorf("rotated first cell = %v, want %v", euler.Values[:3], want)
			break
		}
	}
}
