// Package micro holds the canonical in-memory microstructure model and the
// builder that assembles it from a dataset source.
//
// The model is constructed once per conversion, validated eagerly, and then
// treated as immutable: the serializers in pkg/render only read it. All
// cross-field invariants (cubic cells, grain-count agreement, kind and type
// vocabulary, field-spec pairing) are enforced here, not in the writers.
//
// # Building
//
//	b := micro.Builder{Source: src, Logger: logger}
//	m, err := b.Build(spec)
//
// # Ordering
//
// SortCellData orders per-cell attributes by kind precedence with the FIELD
// entries as a name-sorted suffix; the grid serializer depends on exactly
// that ordering.
package micro

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

// Triple is a 3-vector of reals with a display hint: triples whose
// components are all whole numbers render with integer numerals.
type Triple struct {
	V        [3]float64
	Integral bool
}

// NewTriple builds a Triple, detecting integral components.
func NewTriple(x, y, z float64) Triple {
	t := Triple{V: [3]float64{x, y, z}}
	t.Integral = isWhole(x) && isWhole(y) && isWhole(z)
	return t
}

func isWhole(v float64) bool {
	return math.Mod(v, 1) == 0
}

// Component renders one component with the triple's numeral family.
func (t Triple) Component(i int) string {
	if t.Integral {
		return strconv.FormatInt(int64(t.V[i]), 10)
	}
	return strconv.FormatFloat(t.V[i], 'g', -1, 64)
}

// String renders the triple space-joined, e.g. "0 0 0" or "0.5 0.5 0.5".
func (t Triple) String() string {
	parts := make([]string, 3)
	for i := range parts {
		parts[i] = t.Component(i)
	}
	return strings.Join(parts, " ")
}

// Geometry describes the structured grid: point counts per axis, cell
// spacing, and origin. Dims carries grid-POINT counts (cell counts + 1);
// the cell count lives on the Microstructure.
type Geometry struct {
	Dims    [3]int
	Spacing Triple
	Origin  Triple
}

// checkSpacing enforces the cubic-cell invariant: all spacing components
// pairwise equal. The downstream solver only supports cubic cells.
func checkSpacing(s []float64) error {
	for _, v := range s[1:] {
		if v != s[0] {
			return errors.New(errors.ErrCodeInvalidSpacing, "spacing %v implies non-cubic cells; only cubic cells are supported", s)
		}
	}
	return nil
}

// GrainSet carries the per-grain tables: orientation angles (one row per
// grain, one or three columns) and phase labels (single column).
type GrainSet struct {
	Angles *source.Array
	Phases *source.Array
}

// Count returns the number of grains.
func (g GrainSet) Count() int {
	if g.Angles != nil {
		return g.Angles.Shape[0]
	}
	if g.Phases != nil {
		return g.Phases.Shape[0]
	}
	return 0
}

// validate checks that angles and phases agree on the grain count.
func (g GrainSet) validate() error {
	if g.Angles == nil || g.Phases == nil {
		return nil
	}
	if g.Angles.Shape[0] != g.Phases.Shape[0] {
		return errors.New(errors.ErrCodeDimensionMismatch,
			"grain count mismatch between angles %v and phases %v", g.Angles.Shape, g.Phases.Shape)
	}
	return nil
}

// CellAttribute is one per-cell dataset destined for the grid output.
//
// For FIELD entries, Name is the field group name shared by all member
// arrays, and Array/Components describe this member. For all other kinds,
// Array is empty and Components zero.
type CellAttribute struct {
	Data       *source.Array
	Name       string
	Type       DataType
	Kind       Kind
	Array      string
	Components int
	Tag        string
}

// Microstructure is the aggregate root: everything the serializers and the
// tag engine need, validated and immutable after Build returns.
type Microstructure struct {
	Dim       int      // 1, 2 or 3
	Time      *float64 // elapsed time, nil if unknown
	Geometry  Geometry
	Grains    GrainSet
	CellData  []CellAttribute // classifier order, FIELD suffix
	CellCount int             // product of per-axis cell counts
}
