// Package metrics provides classification metrics over predicted and gold
// category indices.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/melisabok/factorie/pkg/errors"
)

// Accuracy returns the fraction of predictions equal to the gold indices.
func Accuracy(yTrue, yPred []int) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "Accuracy")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("Accuracy", n, len(yPred), 0)
	}

	correct := 0
	for i, t := range yTrue {
		if yPred[i] == t {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix returns a numLabels x numLabels matrix whose (t, p) entry
// counts instances with gold index t predicted as p.
func ConfusionMatrix(yTrue, yPred []int, numLabels int) (*mat.Dense, error) {
	n := len(yTrue)
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "ConfusionMatrix")
	}
	if len(yPred) != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, len(yPred), 0)
	}
	if numLabels <= 0 {
		return nil, errors.NewValidationError("numLabels", "must be positive", numLabels)
	}

	cm := mat.NewDense(numLabels, numLabels, nil)
	for i, t := range yTrue {
		p := yPred[i]
		if t < 0 || t >= numLabels {
			return nil, errors.NewValueError("ConfusionMatrix",
				fmt.Sprintf("gold index %d out of range for %d labels", t, numLabels))
		}
		if p < 0 || p >= numLabels {
			return nil, errors.NewValueError("ConfusionMatrix",
				fmt.Sprintf("predicted index %d out of range for %d labels", p, numLabels))
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, nil
}

// PrecisionRecall returns the precision and recall of one category treated
// as the positive class. When the category is never predicted (or never
// occurs), the undefined ratio is reported as an UndefinedMetricWarning and
// set to zero.
func PrecisionRecall(yTrue, yPred []int, label int) (precision, recall float64, err error) {
	n := len(yTrue)
	if n == 0 {
		return 0, 0, errors.Wrap(errors.ErrEmptyData, "PrecisionRecall")
	}
	if len(yPred) != n {
		return 0, 0, errors.NewDimensionError("PrecisionRecall", n, len(yPred), 0)
	}

	var tp, fp, fn float64
	for i, t := range yTrue {
		p := yPred[i]
		switch {
		case p == label && t == label:
			tp++
		case p == label && t != label:
			fp++
		case p != label && t == label:
			fn++
		}
	}

	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted positives", 0))
		precision = 0
	} else {
		precision = tp / (tp + fp)
	}
	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no gold positives", 0))
		recall = 0
	} else {
		recall = tp / (tp + fn)
	}
	return precision, recall, nil
}
