package raster

// AlignedPair is a reference and predicted BinaryGrid that are guaranteed to
// share the same shape. Only Reconcile can produce a non-empty pair.
type AlignedPair struct {
	reference BinaryGrid
	predicted BinaryGrid
}

func (p AlignedPair) Shape() Shape {
	return p.reference.shape
}

func (p AlignedPair) Reference() BinaryGrid {
	return p.reference
}

func (p AlignedPair) Predicted() BinaryGrid {
	return p.predicted
}

// Reconcile aligns ref and pred. Grids of equal shape pass through untouched.
// Otherwise both are cropped to the top-left min(rows) x min(cols) rectangle
// and a ShapeMismatchWarning is returned. If either minimum is zero the
// resulting pair is empty.
func Reconcile(ref, pred BinaryGrid) (AlignedPair, []Warning) {
	if ref.shape == pred.shape {
		return AlignedPair{reference: ref, predicted: pred}, nil
	}

	aligned := Shape{
		Rows: minInt(ref.shape.Rows, pred.shape.Rows),
		Cols: minInt(ref.shape.Cols, pred.shape.Cols),
	}

	pair := AlignedPair{
		reference: ref.crop(aligned),
		predicted: pred.crop(aligned),
	}

	return pair, []Warning{ShapeMismatchWarning{
		Reference: ref.shape,
		Predicted: pred.shape,
		Aligned:   aligned,
	}}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
