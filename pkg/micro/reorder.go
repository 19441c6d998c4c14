package micro

import (
	"strconv"

	"github.com/matzehuels/hdf2mic/pkg/micro/rotate"
	"github.com/matzehuels/hdf2mic/pkg/source"
)

// axisSwapGateDim is the dimensionality value that enables the whole-array
// axis-swap operations below. Dim is validated to 1, 2 or 3, so the gate can
// never fire for legal input. The axis-swap semantics have not been
// confirmed against the solver, and widening the gate would silently change
// every rotated conversion. Do not merge these operations with the per-value
// rotation in pkg/micro/rotate.
const axisSwapGateDim = 30

// RotateGrainAngles applies the axis-convention rotation to every grain
// orientation row of a 3-column table. Tables with any other column count
// are returned unchanged.
//
// Reachable only behind the axisSwapGateDim gate; kept as a named operation
// rather than folded into the builder so its behaviour stays inspectable.
func RotateGrainAngles(angles *source.Array) *source.Array {
	if angles == nil || angles.Rank() != 2 || angles.Shape[1] != 3 {
		return angles
	}
	rows := angles.Shape[0]
	out := &source.Array{Shape: angles.Shape, Dtype: angles.Dtype, Values: make([]float64, len(angles.Values))}
	for r := 0; r < rows; r++ {
		v := rotate.Rotate([3]float64{
			angles.Values[r*3], angles.Values[r*3+1], angles.Values[r*3+2],
		}, true)
		out.Values[r*3], out.Values[r*3+1], out.Values[r*3+2] = v[0], v[1], v[2]
	}
	return out
}

// ReorderGrid rearranges a (z, y, x, c) cell array into (y, z, x, c) with the
// y axis mirrored: out[yMax-y][z][x] = in[z][y][x]. When rotateCells is true
// each 3-component cell value is additionally passed through the
// axis-convention rotation.
//
// This is the whole-array counterpart to the per-value rotation: it moves
// cells between axes instead of rotating values in place. Reachable only
// behind the axisSwapGateDim gate.
func ReorderGrid(a *source.Array, rotateCells bool) *source.Array {
	if a == nil || a.Rank() != 4 {
		return a
	}
	dimZ, dimY, dimX, c := a.Shape[0], a.Shape[1], a.Shape[2], a.Shape[3]
	out := &source.Array{
		Shape:  []int{dimY, dimZ, dimX, c},
		Dtype:  a.Dtype,
		Values: make([]float64, len(a.Values)),
	}

	cell := make([]float64, c)
	for z := 0; z < dimZ; z++ {
		for y := 0; y < dimY; y++ {
			for x := 0; x < dimX; x++ {
				src := ((z*dimY+y)*dimX + x) * c
				copy(cell, a.Values[src:src+c])

				if rotateCells && c == 3 {
					r := rotate.Rotate([3]float64{cell[0], cell[1], cell[2]}, true)
					cell[0], cell[1], cell[2] = r[0], r[1], r[2]
				}

				dst := (((dimY-y-1)*dimZ+z)*dimX + x) * c
				copy(out.Values[dst:dst+c], cell)
			}
		}
	}
	return out
}

// MatchesSelector reports whether an attribute is selected by an
// index-or-name entry list: each entry is either the attribute's declaration
// index (decimal) or its name. Both representations are accepted on purpose.
func MatchesSelector(selectors []string, index int, name string) bool {
	for _, sel := range selectors {
		if sel == name {
			return true
		}
		if i, err := strconv.Atoi(sel); err == nil && i == index {
			return true
		}
	}
	return false
}
