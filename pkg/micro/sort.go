package micro

import "sort"

// SortCellData orders attributes for serialization: by kind precedence
// (SCALARS < VECTORS < NORMALS < TENSORS < FIELD), ties broken by
// declaration order, except that FIELD entries are additionally ordered by
// group name so every field group's member arrays are contiguous.
//
// The ordering is a hard contract for the grid serializer, which assumes the
// FIELD entries form a name-sorted suffix. The sort is stable and
// idempotent; the input slice is not modified.
func SortCellData(attrs []CellAttribute) []CellAttribute {
	out := append([]CellAttribute(nil), attrs...)
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := KindOrder[out[i].Kind], KindOrder[out[j].Kind]
		if oi != oj {
			return oi < oj
		}
		if out[i].Kind == KindField {
			return out[i].Name < out[j].Name
		}
		return false
	})
	return out
}

// FieldStart returns the index of the first FIELD attribute in a
// classifier-ordered sequence, or len(attrs) if there is none.
func FieldStart(attrs []CellAttribute) int {
	for i, a := range attrs {
		if a.Kind == KindField {
			return i
		}
	}
	return len(attrs)
}

// FieldGroups returns the distinct FIELD group names of a classifier-ordered
// sequence, in their serialized order.
func FieldGroups(attrs []CellAttribute) []string {
	var names []string
	seen := map[string]bool{}
	for _, a := range attrs[FieldStart(attrs):] {
		if !seen[a.Name] {
			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}
	return names
}
