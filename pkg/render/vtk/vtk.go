// Package vtk serializes a microstructure to the ASCII structured-points
// grid format consumed by the solver.
//
// The layout is line-exact: header block, then one block per cell attribute
// in classifier order, with values wrapped at a fixed column count. FIELD
// attributes are grouped under one FIELD header per group name.
package vtk

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/micro"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

// Defaults for the formatting options.
const (
	DefaultVersion = 2.0
	DefaultColumns = 9
)

// Option configures the serializer.
type Option func(*writer)

// WithVersion sets the format version written in the first header line.
func WithVersion(v float64) Option { return func(w *writer) { w.version = v } }

// WithColumns sets the number of values per wrapped data line.
func WithColumns(n int) Option { return func(w *writer) { w.columns = n } }

type writer struct {
	out     *bufio.Writer
	version float64
	columns int
}

// blockHeaders maps each attribute kind to its header line(s). The key set
// must stay in lockstep with micro.KindOrder; Write checks the symmetry.
var blockHeaders = map[micro.Kind][]string{
	micro.KindScalars: {"SCALARS %s %s", "LOOKUP_TABLE default"},
	micro.KindVectors: {"VECTORS %s %s"},
	micro.KindNormals: {"NORMALS %s %s"},
	micro.KindTensors: {"TENSORS %s %s"},
	micro.KindField:   {"FIELD %s %d"},
}

// Write renders the grid document for m to w.
func Write(out io.Writer, m *micro.Microstructure, opts ...Option) error {
	w := &writer{out: bufio.NewWriter(out), version: DefaultVersion, columns: DefaultColumns}
	for _, opt := range opts {
		opt(w)
	}
	if w.columns < 1 {
		w.columns = DefaultColumns
	}

	if err := checkKinds(); err != nil {
		return err
	}
	if err := w.writeHeader(m); err != nil {
		return err
	}
	if err := w.writeAttributes(m); err != nil {
		return err
	}
	return w.out.Flush()
}

// checkKinds verifies that the writer's header vocabulary and the model's
// kind vocabulary have not diverged.
func checkKinds() error {
	if len(blockHeaders) != len(micro.KindOrder) {
		return errors.New(errors.ErrCodeKindMismatch,
			"writer supports %d attribute kinds, model declares %d", len(blockHeaders), len(micro.KindOrder))
	}
	for k := range micro.KindOrder {
		if _, ok := blockHeaders[k]; !ok {
			return errors.New(errors.ErrCodeKindMismatch, "writer has no header for attribute kind %s", k)
		}
	}
	return nil
}

func (w *writer) writeHeader(m *micro.Microstructure) error {
	title := "t=? s"
	if m.Time != nil {
		title = fmt.Sprintf("t=%.5f s", *m.Time)
	}

	fmt.Fprintf(w.out, "# vtk DataFile Version %.1f\n", w.version)
	fmt.Fprintln(w.out, title)
	fmt.Fprintln(w.out, "ASCII")
	fmt.Fprintln(w.out, "DATASET STRUCTURED_POINTS")
	fmt.Fprintf(w.out, "DIMENSIONS %d %d %d\n", m.Geometry.Dims[0], m.Geometry.Dims[1], m.Geometry.Dims[2])
	fmt.Fprintf(w.out, "SPACING %s\n", m.Geometry.Spacing)
	fmt.Fprintf(w.out, "ORIGIN %s\n", m.Geometry.Origin)
	_, err := fmt.Fprintf(w.out, "CELL_DATA %d\n", m.CellCount)
	return err
}

// writeAttributes renders the non-FIELD blocks, then one FIELD block per
// group. It relies on the classifier contract: FIELD entries are a
// name-sorted suffix of m.CellData.
func (w *writer) writeAttributes(m *micro.Microstructure) error {
	start := micro.FieldStart(m.CellData)

	for _, attr := range m.CellData[:start] {
		headers := blockHeaders[attr.Kind]
		header := fmt.Sprintf(headers[0], attr.Name, attr.Type)
		for _, extra := range headers[1:] {
			header += "\n" + extra
		}
		if err := w.writeArray(header, attr.Type, attr.Data); err != nil {
			return err
		}
	}

	fields := m.CellData[start:]
	for _, f := range fields {
		if f.Kind != micro.KindField {
			return errors.New(errors.ErrCodeKindMismatch,
				"attribute %s of kind %s after the FIELD suffix start", f.Name, f.Kind)
		}
	}

	for _, group := range micro.FieldGroups(m.CellData) {
		var members []micro.CellAttribute
		for _, f := range fields {
			if f.Name == group {
				members = append(members, f)
			}
		}

		fmt.Fprintf(w.out, blockHeaders[micro.KindField][0], group, len(members))
		fmt.Fprintln(w.out)

		for _, f := range members {
			if f.Components < 1 {
				return errors.New(errors.ErrCodeFieldArrays,
					"field array %s of group %s has component count %d", f.Array, group, f.Components)
			}
			header := fmt.Sprintf("%s %d %d %s", f.Array, f.Components, f.Data.Size()/f.Components, f.Type)
			if err := w.writeArray(header, f.Type, f.Data); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeArray emits the header line(s) followed by the flattened values,
// wrapped at the configured column count; a partial last row is written
// space-terminated on one trailing line.
func (w *writer) writeArray(header string, dt micro.DataType, arr *source.Array) error {
	fmt.Fprintln(w.out, header)

	size := arr.Size()
	full := size - size%w.columns

	for i := 0; i < full; i += w.columns {
		for j := 0; j < w.columns; j++ {
			if j > 0 {
				w.out.WriteByte(' ')
			}
			w.out.WriteString(formatValue(arr.Values[i+j], dt))
		}
		w.out.WriteByte('\n')
	}

	if full < size {
		for _, v := range arr.Values[full:size] {
			w.out.WriteString(formatValue(v, dt))
			w.out.WriteByte(' ')
		}
		w.out.WriteByte('\n')
	}

	return nil
}

// formatValue renders one value with the numeral family of the declared
// type: integer types as decimal integers, floating types with six decimal
// places.
func formatValue(v float64, dt micro.DataType) string {
	if dt.Integer() {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
