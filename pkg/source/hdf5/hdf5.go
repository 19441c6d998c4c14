// Package hdf5 provides the HDF5-backed dataset source.
//
// It wraps the pure-Go github.com/scigolib/hdf5 reader behind the
// source.Source interface so the rest of the converter never depends on the
// file format. Datasets are copied into memory as float64 arrays on Get;
// the files this tool handles (synthetic microstructures) fit comfortably.
package hdf5

import (
	"strings"

	"github.com/scigolib/hdf5"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

// File is a read-only HDF5 file exposed as a source.Source.
type File struct {
	path string
	f    *hdf5.File
}

// Open opens an HDF5 file for reading.
func Open(path string) (*File, error) {
	f, err := hdf5.OpenForRead(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "cannot open HDF5 file %s", path)
	}
	return &File{path: path, f: f}, nil
}

// Close releases the underlying file handle.
func (h *File) Close() error {
	return h.f.Close()
}

// Name implements source.Source.
func (h *File) Name() string { return h.path }

// Get implements source.Source. The dataset is read whole and widened to
// float64; the element type is preserved in Dtype for diagnostics.
func (h *File) Get(path string) (*source.Array, error) {
	ds, err := h.f.OpenDataset(path)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, errors.New(errors.ErrCodeDatasetNotFound, "%s has no dataset at %s", h.path, path)
		}
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "reading dataset %s from %s", path, h.path)
	}

	dims := ds.Dims()
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}

	raw, err := ds.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIOFailure, err, "reading dataset %s from %s", path, h.path)
	}

	values, dtype, ok := widen(raw)
	if !ok {
		return nil, errors.New(errors.ErrCodeIOFailure, "dataset %s in %s has non-numeric element type %T", path, h.path, raw)
	}

	return &source.Array{Shape: shape, Dtype: dtype, Values: values}, nil
}

// widen copies any numeric slice into a float64 slice.
func widen(raw any) ([]float64, string, bool) {
	switch v := raw.(type) {
	case []float64:
		return append([]float64(nil), v...), "float64", true
	case []float32:
		return convert(v), "float32", true
	case []int8:
		return convert(v), "int8", true
	case []uint8:
		return convert(v), "uint8", true
	case []int16:
		return convert(v), "int16", true
	case []uint16:
		return convert(v), "uint16", true
	case []int32:
		return convert(v), "int32", true
	case []uint32:
		return convert(v), "uint32", true
	case []int64:
		return convert(v), "int64", true
	case []uint64:
		return convert(v), "uint64", true
	case []int:
		return convert(v), "int", true
	default:
		return nil, "", false
	}
}

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32
}

func convert[T number](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
