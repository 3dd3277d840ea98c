package raster

// MetricsReport holds the agreement metrics derived from a ConfusionMatrix.
// All values lie in [0, 1] except Kappa, which lies in [-1, 1].
type MetricsReport struct {
	IoU             float64
	Precision       float64
	Recall          float64
	F1              float64
	OverallAccuracy float64
	Kappa           float64
}

// Compute derives the metrics from c. Zero denominators for IoU, precision,
// recall and F1 produce 0; a zero union additionally yields an
// EmptyUnionWarning. A matrix with no cells at all yields an *EmptyInputError.
func Compute(c ConfusionMatrix) (MetricsReport, []Warning, error) {
	total := c.Total()
	if total == 0 {
		return MetricsReport{}, nil, &EmptyInputError{}
	}

	var out MetricsReport
	var warnings []Warning

	if union := c.Union(); union > 0 {
		out.IoU = ratio(c.Intersection(), union)
	} else {
		warnings = append(warnings, EmptyUnionWarning{})
	}

	out.Precision = ratio(c.TruePositive, c.TruePositive+c.FalsePositive)
	out.Recall = ratio(c.TruePositive, c.TruePositive+c.FalseNegative)

	if sum := out.Precision + out.Recall; sum > 0 {
		out.F1 = 2 * out.Precision * out.Recall / sum
	}

	out.OverallAccuracy = ratio(c.TruePositive+c.TrueNegative, total)
	out.Kappa = kappa(c)

	return out, warnings, nil
}

// kappa is Cohen's kappa: observed agreement corrected for the agreement
// expected by chance given each grid's positive rate.
func kappa(c ConfusionMatrix) float64 {
	total := float64(c.Total())

	po := float64(c.TruePositive+c.TrueNegative) / total

	pRef := float64(c.TruePositive+c.FalseNegative) / total
	pPred := float64(c.TruePositive+c.FalsePositive) / total
	pe := pRef*pPred + (1-pRef)*(1-pPred)

	if pe == 1 {
		return 0
	}

	return (po - pe) / (1 - pe)
}

// ratio returns num/denom, or 0 when denom is 0.
func ratio(num, denom int64) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
