package micro

import (
	"testing"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

func TestTripleRendering(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		y    float64
		z    float64
		want string
	}{
		{"integral", 0, 0, 0, "0 0 0"},
		{"integral mixed magnitude", 10, 20, 1, "10 20 1"},
		{"fractional", 0.5, 0.5, 0.5, "0.5 0.5 0.5"},
		{"one fractional component", 1, 2, 0.5, "1 2 0.5"},
		{"negative integral", -1, 0, 3, "-1 0 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTriple(tt.x, tt.y, tt.z).String()
			if got != tt.want {
				t.Errorf("NewTriple(%v, %v, %v).String() = %q, want %q", tt.x, tt.y, tt.z, got, tt.want)
			}
		})
	}
}

func TestTripleComponent(t *testing.T) {
	tr := NewTriple(0.5, 1.5, 2.5)
	if got := tr.Component(0); got != "0.5" {
		t.Errorf("Component(0) = %q, want 0.5", got)
	}

	whole := NewTriple(3, 4, 5)
	if got := whole.Component(2); got != "5" {
		t.Errorf("Component(2) = %q, want 5", got)
	}
}

func TestCheckSpacing(t *testing.T) {
	if err := checkSpacing([]float64{0.5, 0.5, 0.5}); err != nil {
		t.Errorf("uniform spacing: unexpected error %v", err)
	}

	err := checkSpacing([]float64{0.5, 0.5, 1.0})
	if !errors.Is(err, errors.ErrCodeInvalidSpacing) {
		t.Errorf("non-uniform spacing: error = %v, want INVALID_SPACING", err)
	}
}

func TestGrainSetCount(t *testing.T) {
	angles := &source.Array{Shape: []int{4, 3}, Values: make([]float64, 12)}
	phases := &source.Array{Shape: []int{4, 1}, Values: make([]float64, 4)}

	tests := []struct {
		name string
		g    GrainSet
		want int
	}{
		{"both", GrainSet{Angles: angles, Phases: phases}, 4},
		{"angles only", GrainSet{Angles: angles}, 4},
		{"phases only", GrainSet{Phases: phases}, 4},
		{"empty", GrainSet{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g.Count(); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGrainSetValidate(t *testing.T) {
	angles := &source.Array{Shape: []int{4, 3}, Values: make([]float64, 12)}
	phases := &source.Array{Shape: []int{3, 1}, Values: make([]float64, 3)}

	err := GrainSet{Angles: angles, Phases: phases}.validate()
	if !errors.Is(err, errors.ErrCodeDimensionMismatch) {
		t.Errorf("mismatched tables: error = %v, want DIMENSION_MISMATCH", err)
	}

	if err := (GrainSet{Angles: angles}).validate(); err != nil {
		t.Errorf("single table: unexpected error %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("SCALARS"); err != nil {
		t.Errorf("ParseKind(SCALARS) error = %v", err)
	}
	_, err := ParseKind("scalars")
	if !errors.Is(err, errors.ErrCodeUnknownKind) {
		t.Errorf("ParseKind(scalars) error = %v, want UNKNOWN_KIND", err)
	}
}

func TestParseDataType(t *testing.T) {
	dt, err := ParseDataType("unsigned_int")
	if err != nil {
		t.Fatalf("ParseDataType(unsigned_int) error = %v", err)
	}
	if !dt.Integer() {
		t.Error("unsigned_int should be in the integer family")
	}

	dt, err = ParseDataType("double")
	if err != nil {
		t.Fatalf("ParseDataType(double) error = %v", err)
	}
	if dt.Integer() {
		t.Error("double should be in the floating family")
	}

	_, err = ParseDataType("float32")
	if !errors.Is(err, errors.ErrCodeUnknownDataType) {
		t.Errorf("ParseDataType(float32) error = %v, want UNKNOWN_DATA_TYPE", err)
	}
}
