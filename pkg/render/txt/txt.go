// Package txt writes the grain-property listing consumed by the solver.
//
// The format is a flat sequence of numbered grain blocks:
//
//	# 1
//	<phase>
//	<angle component>
//	...
//	# 2
//	...
//
// Phase and angle lines appear only when the corresponding table was read
// from the input file.
package txt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/micro"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

// Write serializes the grain tables of m to out, one block per grain.
func Write(out io.Writer, m *micro.Microstructure) error {
	w := bufio.NewWriter(out)
	grains := m.Grains
	for i := 0; i < grains.Count(); i++ {
		fmt.Fprintf(w, "# %d\n", i+1)
		if grains.Phases != nil {
			w.WriteString(formatValue(grains.Phases, grains.Phases.At(i, 0)))
			w.WriteByte('\n')
		}
		if grains.Angles != nil {
			for c := 0; c < grains.Angles.Shape[1]; c++ {
				w.WriteString(formatValue(grains.Angles, grains.Angles.At(i, c)))
				w.WriteByte('\n')
			}
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "cannot write grain properties")
	}
	return nil
}

// formatValue renders v in the array's native family: integer-typed tables
// print without a fractional part, float-typed tables print with the
// shortest exact decimal form.
func formatValue(a *source.Array, v float64) string {
	if dt, err := micro.ParseDataType(a.Dtype); err == nil && dt.Integer() {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
