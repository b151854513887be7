package linktable

// DeleteRows returns a new slice holding the elements of rows whose indices
// are not in drop, in their original relative order. Out-of-range and
// repeated indices in drop are ignored. rows is not modified.
func DeleteRows[T any](rows []T, drop []int) []T {
	skip := indexSet(drop, len(rows))
	out := make([]T, 0, len(rows)-len(skip))
	for i, r := range rows {
		if _, ok := skip[i]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// DeleteCols returns a copy of the matrix m without the given columns.
// Rows may be ragged; each row drops only the indices it has.
func DeleteCols[T any](m [][]T, drop []int) [][]T {
	out := make([][]T, len(m))
	for i, row := range m {
		out[i] = DeleteRows(row, drop)
	}
	return out
}

// DeleteRowsCols drops both rows and columns from m.
func DeleteRowsCols[T any](m [][]T, dropRows, dropCols []int) [][]T {
	return DeleteCols(DeleteRows(m, dropRows), dropCols)
}

func indexSet(idx []int, n int) map[int]struct{} {
	set := make(map[int]struct{}, len(idx))
	for _, i := range idx {
		if i >= 0 && i < n {
			set[i] = struct{}{}
		}
	}
	return set
}
