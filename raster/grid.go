// Package raster compares a predicted binary classification grid against a
// reference grid. Raw cell values are binarized, the two grids are cropped to
// a common extent, outcomes are tallied into a confusion matrix, and agreement
// metrics are derived from that matrix.
package raster

import (
	"fmt"
)

// Shape is the number of rows and columns in a grid.
type Shape struct {
	Rows int
	Cols int
}

// Size is the number of cells covered by the shape.
func (s Shape) Size() int {
	return s.Rows * s.Cols
}

func (s Shape) String() string {
	return fmt.Sprintf("%d x %d", s.Rows, s.Cols)
}

// Grid holds raw numeric cell values in row-major order, along with the
// no-data sentinel declared by whatever produced it. A Grid is not modified
// after construction.
type Grid struct {
	shape  Shape
	values []float64

	NoData    float64
	HasNoData bool
}

// NewGrid copies values, which must contain exactly rows*cols entries in
// row-major order.
func NewGrid(rows, cols int, values []float64) (Grid, error) {
	if rows < 0 || cols < 0 {
		return Grid{}, fmt.Errorf("Grid dimensions must be non-negative, got %d x %d", rows, cols)
	}
	if len(values) != rows*cols {
		return Grid{}, fmt.Errorf("Grid of %d x %d needs %d values, got %d", rows, cols, rows*cols, len(values))
	}

	g := Grid{
		shape:  Shape{Rows: rows, Cols: cols},
		values: make([]float64, len(values)),
	}
	copy(g.values, values)

	return g, nil
}

// GridFromRows builds a Grid from a slice of rows. Every row must have the same
// length. An empty slice produces a 0 x 0 grid.
func GridFromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}

	cols := len(rows[0])
	values := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return Grid{}, fmt.Errorf("Row %d has %d columns, but row 0 has %d", i, len(row), cols)
		}
		values = append(values, row...)
	}

	return Grid{
		shape:  Shape{Rows: len(rows), Cols: cols},
		values: values,
	}, nil
}

// WithNoData returns a copy of g that declares v as its no-data sentinel. The
// underlying values are shared, which is safe because neither copy can modify
// them.
func (g Grid) WithNoData(v float64) Grid {
	g.NoData = v
	g.HasNoData = true
	return g
}

func (g Grid) Shape() Shape {
	return g.shape
}

// At returns the value at row i, column j.
func (g Grid) At(i, j int) float64 {
	return g.values[i*g.shape.Cols+j]
}

// BinaryGrid holds 0/1 cells in row-major order. It can only be produced by
// Binarize or by cropping another BinaryGrid.
type BinaryGrid struct {
	shape Shape
	cells []uint8
}

func (b BinaryGrid) Shape() Shape {
	return b.shape
}

// At returns the cell (0 or 1) at row i, column j.
func (b BinaryGrid) At(i, j int) uint8 {
	return b.cells[i*b.shape.Cols+j]
}

// Sum counts the positive cells.
func (b BinaryGrid) Sum() int64 {
	var n int64
	for _, c := range b.cells {
		n += int64(c)
	}
	return n
}

// crop returns the top-left rows x cols sub-rectangle of b. The caller must
// ensure that the requested shape fits inside b.
func (b BinaryGrid) crop(s Shape) BinaryGrid {
	if s == b.shape {
		return b
	}

	out := BinaryGrid{
		shape: s,
		cells: make([]uint8, 0, s.Size()),
	}
	for i := 0; i < s.Rows; i++ {
		start := i * b.shape.Cols
		out.cells = append(out.cells, b.cells[start:start+s.Cols]...)
	}

	return out
}
