package micro

import "github.com/matzehuels/hdf2mic/pkg/errors"

// Kind classifies a per-cell attribute in the grid output.
type Kind string

// The attribute kinds of the structured-grid format. KindOrder below fixes
// their serialization precedence.
const (
	KindScalars Kind = "SCALARS"
	KindVectors Kind = "VECTORS"
	KindNormals Kind = "NORMALS"
	KindTensors Kind = "TENSORS"
	KindField   Kind = "FIELD"
)

// KindOrder is the fixed sort precedence for attribute kinds. The serializer
// relies on this ordering: all FIELD entries must form a suffix of the sorted
// attribute sequence.
var KindOrder = map[Kind]int{
	KindScalars: 0,
	KindVectors: 1,
	KindNormals: 2,
	KindTensors: 3,
	KindField:   4,
}

// ParseKind validates a declared attribute kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := KindOrder[k]; !ok {
		return "", errors.New(errors.ErrCodeUnknownKind, "unknown attribute kind %q (accepted: SCALARS, VECTORS, NORMALS, TENSORS, FIELD)", s)
	}
	return k, nil
}
