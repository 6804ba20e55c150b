package classify

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/melisabok/factorie/core/parallel"
	"github.com/melisabok/factorie/pkg/errors"
)

// parallelThreshold is the batch size below which Classifications scores
// sequentially instead of spinning up workers.
const parallelThreshold = 64

// Classifier scores categorical variables from their features. All four
// trainer families produce values satisfying this contract, so accuracy
// measurement and batch classification work uniformly.
//
// Classification is safe to call concurrently for disjoint variables.
// Classify mutates its argument and must not be called concurrently on the
// same variable. Scoring while a trainer is writing the underlying model is
// not synchronized internally; callers must serialize training and scoring.
type Classifier interface {
	// Classification computes a score vector for v without mutating it.
	Classification(v LabelVariable) (*Classification, error)

	// Classifications scores each variable; the result order matches the
	// input order even though elements may be computed in parallel.
	Classifications(vs []LabelVariable) ([]*Classification, error)

	// Classify computes the classification and sets v's current value to
	// its BestIndex.
	Classify(v MutableLabelVariable) (*Classification, error)

	// Accuracy returns the fraction of labeled variables whose BestIndex
	// equals their TargetIndex. For an empty input it returns NaN together
	// with ErrEmptyData.
	Accuracy(labels []LabeledVariable) (float64, error)
}

// scoreFunc is the per-variable scoring primitive the shared batch helpers
// are built on.
type scoreFunc func(v LabelVariable) (*Classification, error)

// batchClassifications applies score to each variable, in parallel for
// large batches, preserving input order in the output.
func batchClassifications(score scoreFunc, vs []LabelVariable) ([]*Classification, error) {
	results := make([]*Classification, len(vs))
	errs := make([]error, len(vs))

	parallel.ParallelizeWithThreshold(len(vs), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			results[i], errs[i] = score(vs[i])
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// batchAccuracy computes the fraction of labeled variables scored to their
// target index.
func batchAccuracy(score scoreFunc, labels []LabeledVariable) (float64, error) {
	if len(labels) == 0 {
		return math.NaN(), errors.Wrap(errors.ErrEmptyData, "accuracy over zero labeled instances is undefined")
	}

	correct := 0
	for _, l := range labels {
		c, err := score(l)
		if err != nil {
			return math.NaN(), err
		}
		if c.BestIndex() == l.TargetIndex() {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}

// LinearClassifier scores a variable as the matrix-vector product of its
// weight matrix with the variable's feature vector, one score per category.
type LinearClassifier struct {
	labelDomain   *CategoricalDomain
	featureDomain *VectorDomain
	features      FeatureFunc

	// weights has shape numLabels x numFeatures. It is created
	// zero-initialized, populated in place by trainers, and read by scoring.
	// Sharing one matrix between classifiers is legal and uncopied.
	weights *mat.Dense
}

// NewLinearClassifier creates a linear classifier with a zero-initialized
// weight matrix of shape labelDomain.Size() x featureDomain.Size().
func NewLinearClassifier(labelDomain *CategoricalDomain, featureDomain *VectorDomain, features FeatureFunc) *LinearClassifier {
	return &LinearClassifier{
		labelDomain:   labelDomain,
		featureDomain: featureDomain,
		features:      features,
		weights:       mat.NewDense(labelDomain.Size(), featureDomain.Size(), nil),
	}
}

// NewSharedLinearClassifier creates a classifier reading and training the
// given weight matrix in place. Classifiers sharing a matrix are trained and
// scored identically.
func NewSharedLinearClassifier(labelDomain *CategoricalDomain, featureDomain *VectorDomain, features FeatureFunc, weights *mat.Dense) (*LinearClassifier, error) {
	r, c := weights.Dims()
	if r != labelDomain.Size() {
		return nil, errors.NewDimensionError("NewSharedLinearClassifier", labelDomain.Size(), r, 0)
	}
	if c != featureDomain.Size() {
		return nil, errors.NewDimensionError("NewSharedLinearClassifier", featureDomain.Size(), c, 1)
	}
	return &LinearClassifier{
		labelDomain:   labelDomain,
		featureDomain: featureDomain,
		features:      features,
		weights:       weights,
	}, nil
}

// LabelDomain returns the categorical domain scores are computed over.
func (c *LinearClassifier) LabelDomain() *CategoricalDomain { return c.labelDomain }

// FeatureDomain returns the feature domain the weight columns span.
func (c *LinearClassifier) FeatureDomain() *VectorDomain { return c.featureDomain }

// Features returns the label-to-features mapping.
func (c *LinearClassifier) Features() FeatureFunc { return c.features }

// Weights returns the weight matrix. Trainers mutate it in place; scoring
// reads it. The caller must serialize training against scoring.
func (c *LinearClassifier) Weights() *mat.Dense { return c.weights }

// featuresOf maps v to its feature vector and fails fast on any shape
// disagreement with the weight matrix.
func (c *LinearClassifier) featuresOf(op string, v LabelVariable) (*FeatureVector, error) {
	if got := v.Domain().Size(); got != c.labelDomain.Size() {
		return nil, errors.NewDimensionError(op, c.labelDomain.Size(), got, 0)
	}
	fv := c.features(v)
	if fv == nil {
		return nil, errors.NewValueError(op, "feature mapping returned nil")
	}
	if got := fv.Len(); got != c.featureDomain.Size() {
		return nil, errors.NewDimensionError(op, c.featureDomain.Size(), got, 1)
	}
	return fv, nil
}

// scoreVector computes weights · fv, one entry per label.
func (c *LinearClassifier) scoreVector(fv *FeatureVector) []float64 {
	n := c.labelDomain.Size()
	scores := make([]float64, n)
	for l := 0; l < n; l++ {
		scores[l] = fv.Dot(c.weights.RawRowView(l))
	}
	return scores
}

// bestIndex is the fast path used by trainers for accuracy checks: the
// argmax of the product without materializing a Classification.
func (c *LinearClassifier) bestIndex(fv *FeatureVector) int {
	return argmax(c.scoreVector(fv))
}

// Classification computes a Classification for v without mutating it.
func (c *LinearClassifier) Classification(v LabelVariable) (*Classification, error) {
	fv, err := c.featuresOf("Classification", v)
	if err != nil {
		return nil, err
	}
	return newClassification(v, c.scoreVector(fv)), nil
}

// Classifications scores a batch of variables, preserving input order.
func (c *LinearClassifier) Classifications(vs []LabelVariable) ([]*Classification, error) {
	return batchClassifications(c.Classification, vs)
}

// Classify scores v and sets its current value to the best index.
func (c *LinearClassifier) Classify(v MutableLabelVariable) (*Classification, error) {
	cl, err := c.Classification(v)
	if err != nil {
		return nil, err
	}
	v.SetValueIndex(cl.BestIndex())
	return cl, nil
}

// Accuracy returns the fraction of labels classified to their target index.
func (c *LinearClassifier) Accuracy(labels []LabeledVariable) (float64, error) {
	return batchAccuracy(c.Classification, labels)
}

var _ Classifier = (*LinearClassifier)(nil)
