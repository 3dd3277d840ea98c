package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/carbocation/gridiou/raster"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Row is the flat, one-line form of a comparison. Failed comparisons keep
// their identifiers and carry the failure in Error, with zero counts.
type Row struct {
	ID        string `csv:"id" bigquery:"id"`
	Reference string `csv:"reference" bigquery:"reference"`
	Predicted string `csv:"predicted" bigquery:"predicted"`

	ReferenceRows int `csv:"reference_rows" bigquery:"reference_rows"`
	ReferenceCols int `csv:"reference_cols" bigquery:"reference_cols"`
	PredictedRows int `csv:"predicted_rows" bigquery:"predicted_rows"`
	PredictedCols int `csv:"predicted_cols" bigquery:"predicted_cols"`
	AlignedRows   int `csv:"aligned_rows" bigquery:"aligned_rows"`
	AlignedCols   int `csv:"aligned_cols" bigquery:"aligned_cols"`

	TotalPixels   int64 `csv:"total_pixels" bigquery:"total_pixels"`
	TruePositive  int64 `csv:"tp" bigquery:"tp"`
	FalsePositive int64 `csv:"fp" bigquery:"fp"`
	FalseNegative int64 `csv:"fn" bigquery:"fn"`
	TrueNegative  int64 `csv:"tn" bigquery:"tn"`

	ReferencePositive int64 `csv:"reference_positive" bigquery:"reference_positive"`
	PredictedPositive int64 `csv:"predicted_positive" bigquery:"predicted_positive"`
	Intersection      int64 `csv:"intersection" bigquery:"intersection"`
	Union             int64 `csv:"union" bigquery:"union"`

	IoU             float64 `csv:"iou" bigquery:"iou"`
	Precision       float64 `csv:"precision" bigquery:"precision"`
	Recall          float64 `csv:"recall" bigquery:"recall"`
	F1              float64 `csv:"f1" bigquery:"f1"`
	OverallAccuracy float64 `csv:"overall_accuracy" bigquery:"overall_accuracy"`
	Kappa           float64 `csv:"kappa" bigquery:"kappa"`

	// Pipe-delimited warning kinds, e.g. "empty_union|shape_mismatch"
	Warnings string `csv:"warnings" bigquery:"warnings"`
	Error    string `csv:"error" bigquery:"error"`
}

// NewRow flattens res. If err is non-nil, it is recorded and whatever part
// of res was computed is kept.
func NewRow(id string, labels Labels, res raster.Result, err error) Row {
	labels = labels.WithDefaults()

	row := Row{
		ID:        id,
		Reference: labels.Reference,
		Predicted: labels.Predicted,

		ReferenceRows: res.ReferenceShape.Rows,
		ReferenceCols: res.ReferenceShape.Cols,
		PredictedRows: res.PredictedShape.Rows,
		PredictedCols: res.PredictedShape.Cols,
		AlignedRows:   res.AlignedShape.Rows,
		AlignedCols:   res.AlignedShape.Cols,

		TotalPixels:   res.Matrix.Total(),
		TruePositive:  res.Matrix.TruePositive,
		FalsePositive: res.Matrix.FalsePositive,
		FalseNegative: res.Matrix.FalseNegative,
		TrueNegative:  res.Matrix.TrueNegative,

		ReferencePositive: res.ReferencePositive,
		PredictedPositive: res.PredictedPositive,
		Intersection:      res.Matrix.Intersection(),
		Union:             res.Matrix.Union(),

		IoU:             res.Metrics.IoU,
		Precision:       res.Metrics.Precision,
		Recall:          res.Metrics.Recall,
		F1:              res.Metrics.F1,
		OverallAccuracy: res.Metrics.OverallAccuracy,
		Kappa:           res.Metrics.Kappa,

		Warnings: warningKinds(res.Warnings),
	}

	if err != nil {
		row.Error = err.Error()
	}

	return row
}

func warningKinds(warnings []raster.Warning) string {
	set := make(map[string]struct{})
	for _, w := range warnings {
		set[w.Kind()] = struct{}{}
	}

	kinds := make([]string, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	return strings.Join(kinds, "|")
}

// Failed reports whether the comparison behind the row did not complete.
func (r Row) Failed() bool {
	return r.Error != ""
}

// WriteRows writes a header followed by one line per row, separated by delim.
func WriteRows(w io.Writer, rows []Row, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return pfx.Err(err)
	}

	cw.Flush()
	return pfx.Err(cw.Error())
}
