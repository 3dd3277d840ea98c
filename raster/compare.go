package raster

import "errors"

// Result is everything produced by one comparison of a reference grid
// against a predicted grid.
type Result struct {
	ReferenceShape Shape
	PredictedShape Shape
	AlignedShape   Shape

	Matrix  ConfusionMatrix
	Metrics MetricsReport

	// Positive cell counts of each binarized grid within the aligned region.
	ReferencePositive int64
	PredictedPositive int64

	// Non-fatal observations, in the order the stages produced them.
	Warnings []Warning
}

// Compare binarizes both grids, aligns them, and computes the confusion matrix
// and metrics. The only error it returns is *EmptyInputError, when the aligned
// region has no cells.
func Compare(reference, predicted Grid) (Result, error) {
	out := Result{
		ReferenceShape: reference.Shape(),
		PredictedShape: predicted.Shape(),
	}

	pair, warnings := Reconcile(Binarize(reference), Binarize(predicted))
	out.Warnings = append(out.Warnings, warnings...)
	out.AlignedShape = pair.Shape()

	out.ReferencePositive = pair.Reference().Sum()
	out.PredictedPositive = pair.Predicted().Sum()
	out.Matrix = Accumulate(pair)

	metrics, warnings, err := Compute(out.Matrix)
	if err != nil {
		var empty *EmptyInputError
		if errors.As(err, &empty) {
			empty.Shape = out.AlignedShape
		}
		return out, err
	}
	out.Metrics = metrics
	out.Warnings = append(out.Warnings, warnings...)

	return out, nil
}
