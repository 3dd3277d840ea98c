package report

import (
	"io"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

// Distribution describes one metric across a batch of comparisons.
type Distribution struct {
	Mean   float64
	SD     float64
	Median float64
	Min    float64
	Max    float64
}

// Summary aggregates a batch. Failed rows are counted but excluded from the
// distributions.
type Summary struct {
	Compared int
	Failed   int
	Warned   int

	IoU             Distribution
	F1              Distribution
	OverallAccuracy Distribution
	Kappa           Distribution

	// Pooled metrics, computed from the confusion matrices summed over all
	// successful rows rather than averaged per row
	PooledIoU float64
}

func Summarize(rows []Row) Summary {
	var out Summary
	var iou, f1, acc, kappa []float64
	var intersection, union int64

	for _, row := range rows {
		if row.Failed() {
			out.Failed++
			continue
		}

		out.Compared++
		if row.Warnings != "" {
			out.Warned++
		}

		iou = append(iou, row.IoU)
		f1 = append(f1, row.F1)
		acc = append(acc, row.OverallAccuracy)
		kappa = append(kappa, row.Kappa)

		intersection += row.Intersection
		union += row.Union
	}

	out.IoU = describe(iou)
	out.F1 = describe(f1)
	out.OverallAccuracy = describe(acc)
	out.Kappa = describe(kappa)

	if union > 0 {
		out.PooledIoU = float64(intersection) / float64(union)
	}

	return out
}

func describe(x []float64) Distribution {
	var out Distribution
	if len(x) == 0 {
		return out
	}

	out.Mean, out.SD = stat.MeanStdDev(x, nil)
	if len(x) < 2 {
		// gonum reports NaN for the SD of a single observation
		out.SD = 0
	}

	// These only fail on empty input, which is excluded above
	out.Median, _ = stats.Median(x)
	out.Min, _ = stats.Min(x)
	out.Max, _ = stats.Max(x)

	return out
}

// WriteSummary renders s as a short text table.
func WriteSummary(w io.Writer, s Summary) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "Compared: %d\tFailed: %d\tWith warnings: %d\n", s.Compared, s.Failed, s.Warned); err != nil {
		return err
	}
	if _, err := p.Fprintf(w, "%-18s%8s%8s%8s%8s%8s\n", "Metric", "Mean", "SD", "Median", "Min", "Max"); err != nil {
		return err
	}

	for _, m := range []struct {
		Name string
		D    Distribution
	}{
		{"IoU", s.IoU},
		{"F1", s.F1},
		{"Overall accuracy", s.OverallAccuracy},
		{"Kappa", s.Kappa},
	} {
		if _, err := p.Fprintf(w, "%-18s%8.4f%8.4f%8.4f%8.4f%8.4f\n", m.Name, m.D.Mean, m.D.SD, m.D.Median, m.D.Min, m.D.Max); err != nil {
			return err
		}
	}

	_, err := p.Fprintf(w, "Pooled IoU: %.4f\n", s.PooledIoU)
	return err
}
