package raster

import "fmt"

// A Warning is a non-fatal observation made while comparing two grids.
// Processing continues after a Warning; callers decide whether and how to
// surface it.
type Warning interface {
	Kind() string
	Warning() string
}

// ShapeMismatchWarning is emitted when the two grids differ in shape and both
// were cropped to their common top-left extent.
type ShapeMismatchWarning struct {
	Reference Shape
	Predicted Shape
	Aligned   Shape
}

func (w ShapeMismatchWarning) Kind() string {
	return "shape_mismatch"
}

func (w ShapeMismatchWarning) Warning() string {
	return fmt.Sprintf("Grid shapes differ (reference %s, predicted %s); both were cropped to %s", w.Reference, w.Predicted, w.Aligned)
}

// EmptyUnionWarning is emitted when neither grid contains a positive cell. IoU
// is reported as 0 in that case.
type EmptyUnionWarning struct{}

func (w EmptyUnionWarning) Kind() string {
	return "empty_union"
}

func (w EmptyUnionWarning) Warning() string {
	return "Both grids are entirely negative (union = 0); IoU is reported as 0"
}

// EmptyInputError is returned when the aligned grids contain no cells, so
// overall accuracy cannot be computed.
type EmptyInputError struct {
	Shape Shape
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("Aligned grids have no cells (%s); metrics are undefined", e.Shape)
}
