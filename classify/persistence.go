package classify

import (
	"gonum.org/v1/gonum/mat"

	"github.com/melisabok/factorie/core/model"
	"github.com/melisabok/factorie/pkg/errors"
)

// linearSnapshot is the gob-encodable form of a trained linear classifier.
// The feature mapping is code, not data, so the caller resupplies it on load.
type linearSnapshot struct {
	LabelValues []string
	NumFeatures int
	Weights     []float64
}

// SaveLinearClassifier writes a linear classifier's domains and weight
// matrix to a file.
func SaveLinearClassifier(c *LinearClassifier, filename string) error {
	numLabels := c.labelDomain.Size()
	values := make([]string, numLabels)
	for i := range values {
		values[i] = c.labelDomain.Value(i)
	}

	raw := c.weights.RawMatrix()
	weights := make([]float64, len(raw.Data))
	copy(weights, raw.Data)

	snap := linearSnapshot{
		LabelValues: values,
		NumFeatures: c.featureDomain.Size(),
		Weights:     weights,
	}
	return model.SaveModel(&snap, filename)
}

// LoadLinearClassifier reads a classifier written by SaveLinearClassifier,
// reattaching the given feature mapping.
func LoadLinearClassifier(filename string, features FeatureFunc) (*LinearClassifier, error) {
	var snap linearSnapshot
	if err := model.LoadModel(&snap, filename); err != nil {
		return nil, err
	}
	if len(snap.LabelValues) == 0 || snap.NumFeatures <= 0 {
		return nil, errors.NewValueError("LoadLinearClassifier", "snapshot has empty domains")
	}
	if want := len(snap.LabelValues) * snap.NumFeatures; len(snap.Weights) != want {
		return nil, errors.NewDimensionError("LoadLinearClassifier", want, len(snap.Weights), 1)
	}

	labelDomain := NewCategoricalDomain(snap.LabelValues...)
	featureDomain := NewVectorDomain(snap.NumFeatures)
	weights := mat.NewDense(labelDomain.Size(), featureDomain.Size(), snap.Weights)
	return NewSharedLinearClassifier(labelDomain, featureDomain, features, weights)
}
