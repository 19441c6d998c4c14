// Package source defines the dataset adapter consumed by the model builder.
//
// A Source resolves hierarchical dataset paths (e.g. "/DataContainers/.../EulerAngles")
// to shaped numeric arrays. The builder never touches a file format directly;
// it only sees this interface. The HDF5-backed implementation lives in the
// hdf5 subpackage, and Memory provides a map-backed implementation for tests.
package source

import (
	"fmt"
	"sort"

	"github.com/matzehuels/hdf2mic/pkg/errors"
)

// Array is a shaped numeric dataset, flattened row-major.
//
// Values are carried as float64 regardless of the on-disk type; the declared
// VTK data type of the consuming attribute decides integer or floating
// rendering later. Dtype records the source element type for diagnostics.
type Array struct {
	Shape  []int
	Dtype  string
	Values []float64
}

// Size returns the total element count (product of the shape).
func (a *Array) Size() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Rank returns the number of axes.
func (a *Array) Rank() int { return len(a.Shape) }

// At returns the value at the given multi-axis index.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("source: index rank %d does not match array rank %d", len(idx), len(a.Shape)))
	}
	flat := 0
	for i, ix := range idx {
		flat = flat*a.Shape[i] + ix
	}
	return a.Values[flat]
}

// Column returns a copy of column c of a rank-2 array.
func (a *Array) Column(c int) []float64 {
	rows, cols := a.Shape[0], a.Shape[1]
	out := make([]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = a.Values[r*cols+c]
	}
	return out
}

// Reshape returns an array sharing the value slice with a new shape.
// The element count must be unchanged.
func (a *Array) Reshape(shape ...int) *Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != a.Size() {
		panic(fmt.Sprintf("source: cannot reshape %v to %v", a.Shape, shape))
	}
	return &Array{Shape: shape, Dtype: a.Dtype, Values: a.Values}
}

// AsColumn reshapes a rank-1 array into a single-column table.
// Arrays of higher rank are returned unchanged.
func (a *Array) AsColumn() *Array {
	if a.Rank() != 1 {
		return a
	}
	return a.Reshape(len(a.Values), 1)
}

// ClipFirstRow returns the array without its first row. Rank must be >= 2.
// Used for inputs whose grain-level tables carry a placeholder leading row.
func (a *Array) ClipFirstRow() *Array {
	if a.Rank() < 2 || a.Shape[0] < 1 {
		return a
	}
	rowLen := a.Size() / a.Shape[0]
	shape := append([]int{a.Shape[0] - 1}, a.Shape[1:]...)
	return &Array{Shape: shape, Dtype: a.Dtype, Values: a.Values[rowLen:]}
}

// Source resolves dataset paths to arrays.
//
// Get must return an error with code DATASET_NOT_FOUND when the path has no
// dataset. Callers check Absent before calling Get; a Source never sees the
// empty or root path.
type Source interface {
	// Get returns the dataset at path.
	Get(path string) (*Array, error)

	// Name identifies the backing store (file path) for diagnostics.
	Name() string
}

// Absent reports whether a configured path means "no dataset". The empty
// string and the bare root are placeholders, never queried.
func Absent(path string) bool {
	return path == "" || path == "/"
}

// Memory is a map-backed Source for tests and dry runs.
type Memory struct {
	Sets  map[string]*Array
	Label string
}

// Get implements Source.
func (m *Memory) Get(path string) (*Array, error) {
	if a, ok := m.Sets[path]; ok {
		return a, nil
	}
	return nil, errors.New(errors.ErrCodeDatasetNotFound, "%s has no dataset at %s", m.Name(), path)
}

// Name implements Source.
func (m *Memory) Name() string {
	if m.Label == "" {
		return "memory"
	}
	return m.Label
}

// Paths returns the sorted dataset paths, for probing and inspection.
func (m *Memory) Paths() []string {
	out := make([]string, 0, len(m.Sets))
	for p := range m.Sets {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
