package raster

// PositiveValue is the class code that denotes the positive class (e.g.,
// flood). Every other value, including the no-data sentinel and NaN, is
// treated as negative.
const PositiveValue = 1.0

// Binarize maps each cell of g to 1 if it is exactly PositiveValue and to 0
// otherwise. The no-data sentinel is not special cased.
func Binarize(g Grid) BinaryGrid {
	out := BinaryGrid{
		shape: g.shape,
		cells: make([]uint8, len(g.values)),
	}

	for k, v := range g.values {
		if v == PositiveValue {
			out.cells[k] = 1
		}
	}

	return out
}
