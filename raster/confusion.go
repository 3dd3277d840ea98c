package raster

// ConfusionMatrix tallies the four agreement outcomes over the cells of an
// AlignedPair. The reference grid is treated as truth.
type ConfusionMatrix struct {
	TruePositive  int64 // positive in both
	FalsePositive int64 // predicted positive, reference negative
	FalseNegative int64 // predicted negative, reference positive
	TrueNegative  int64 // negative in both
}

// Accumulate counts every cell of p into exactly one of the four outcomes.
func Accumulate(p AlignedPair) ConfusionMatrix {
	var out ConfusionMatrix

	ref, pred := p.reference.cells, p.predicted.cells
	for k := range ref {
		switch {
		case ref[k] == 1 && pred[k] == 1:
			out.TruePositive++
		case ref[k] == 0 && pred[k] == 1:
			out.FalsePositive++
		case ref[k] == 1 && pred[k] == 0:
			out.FalseNegative++
		default:
			out.TrueNegative++
		}
	}

	return out
}

// Intersection is the number of cells positive in both grids.
func (c ConfusionMatrix) Intersection() int64 {
	return c.TruePositive
}

// Union is the number of cells positive in at least one grid.
func (c ConfusionMatrix) Union() int64 {
	return c.TruePositive + c.FalsePositive + c.FalseNegative
}

// Total is the number of cells in the aligned grids.
func (c ConfusionMatrix) Total() int64 {
	return c.TruePositive + c.FalsePositive + c.FalseNegative + c.TrueNegative
}

// Transpose returns the matrix that results from swapping the roles of the
// reference and predicted grids.
func (c ConfusionMatrix) Transpose() ConfusionMatrix {
	c.FalsePositive, c.FalseNegative = c.FalseNegative, c.FalsePositive
	return c
}
