// Package report renders comparison results for people (text) and for
// machines (delimited rows and BigQuery), and persists them.
package report

import (
	"bytes"
	"io"
	"strings"

	"github.com/carbocation/gridiou/raster"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Labels are the human-readable names of the two grids.
type Labels struct {
	Reference string
	Predicted string
}

// WithDefaults fills in blank names.
func (l Labels) WithDefaults() Labels {
	if l.Reference == "" {
		l.Reference = "reference"
	}
	if l.Predicted == "" {
		l.Predicted = "predicted"
	}
	return l
}

const ruleWidth = 60

// WriteText renders res as a plain text report. Counts use thousands
// separators; ratio metrics are shown both as fractions and as percentages.
func WriteText(w io.Writer, res raster.Result, labels Labels) error {
	labels = labels.WithDefaults()
	rule := strings.Repeat("=", ruleWidth)
	p := message.NewPrinter(language.English)

	// Build in memory so a partial report is never written
	var b bytes.Buffer

	p.Fprintf(&b, "%s\n", rule)
	p.Fprintf(&b, "BINARY MAP ACCURACY ANALYSIS\n")
	p.Fprintf(&b, "%s\n\n", rule)

	p.Fprintf(&b, "Reference: %s\n", labels.Reference)
	p.Fprintf(&b, "Predicted: %s\n\n", labels.Predicted)

	p.Fprintf(&b, "Reference shape: %s\n", res.ReferenceShape)
	p.Fprintf(&b, "Predicted shape: %s\n", res.PredictedShape)
	p.Fprintf(&b, "Compared shape:  %s\n", res.AlignedShape)
	p.Fprintf(&b, "Total pixels:    %d\n", res.Matrix.Total())

	p.Fprintf(&b, "\n--- Confusion Matrix ---\n")
	p.Fprintf(&b, "True Positive  (TP): %d\n", res.Matrix.TruePositive)
	p.Fprintf(&b, "False Positive (FP): %d\n", res.Matrix.FalsePositive)
	p.Fprintf(&b, "False Negative (FN): %d\n", res.Matrix.FalseNegative)
	p.Fprintf(&b, "True Negative  (TN): %d\n", res.Matrix.TrueNegative)

	p.Fprintf(&b, "\n--- Accuracy Metrics ---\n")
	for _, m := range []struct {
		Name  string
		Value float64
	}{
		{"IoU (Intersection over Union):", res.Metrics.IoU},
		{"Precision:", res.Metrics.Precision},
		{"Recall:", res.Metrics.Recall},
		{"F1-Score:", res.Metrics.F1},
		{"Overall Accuracy:", res.Metrics.OverallAccuracy},
	} {
		p.Fprintf(&b, "%-31s%.4f (%.2f%%)\n", m.Name, m.Value, 100*m.Value)
	}
	p.Fprintf(&b, "%-31s%.4f\n", "Cohen's Kappa:", res.Metrics.Kappa)

	p.Fprintf(&b, "\n--- Area Analysis ---\n")
	p.Fprintf(&b, "%s positive pixels: %d\n", labels.Reference, res.ReferencePositive)
	p.Fprintf(&b, "%s positive pixels: %d\n", labels.Predicted, res.PredictedPositive)
	p.Fprintf(&b, "Intersection: %d\n", res.Matrix.Intersection())
	p.Fprintf(&b, "Union:        %d\n", res.Matrix.Union())

	if len(res.Warnings) > 0 {
		p.Fprintf(&b, "\n--- Warnings ---\n")
		for _, warning := range res.Warnings {
			p.Fprintf(&b, "!!! %s\n", warning.Warning())
		}
	}

	p.Fprintf(&b, "%s\n", rule)

	_, err := w.Write(b.Bytes())
	return err
}
