package classify

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/melisabok/factorie/pkg/errors"
	"github.com/melisabok/factorie/pkg/log"
)

// DefaultPseudoCount is the smoothing constant added to every
// feature-category count before normalization.
const DefaultPseudoCount = 0.1

// NaiveBayesTrainer fits a LinearClassifier's weight matrix in a single
// smoothed counting pass, without iteration or an optimizer. The weights are
// log conditional probabilities, so the Naive Bayes decision rule reduces to
// the linear dot-product-and-argmax contract. No class-prior term is
// modeled; callers wanting one inject a constant-valued feature.
type NaiveBayesTrainer struct {
	pseudoCount float64
}

// NaiveBayesOption configures a NaiveBayesTrainer.
type NaiveBayesOption func(*NaiveBayesTrainer)

// NewNaiveBayesTrainer creates a Naive Bayes trainer with the default
// pseudo-count smoothing.
func NewNaiveBayesTrainer(opts ...NaiveBayesOption) *NaiveBayesTrainer {
	t := &NaiveBayesTrainer{
		pseudoCount: DefaultPseudoCount,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithPseudoCount sets the smoothing constant. It must be strictly positive
// so every count stays positive and every log weight finite.
func WithPseudoCount(pseudoCount float64) NaiveBayesOption {
	return func(t *NaiveBayesTrainer) {
		t.pseudoCount = pseudoCount
	}
}

// Train populates the classifier's weight matrix with
// log p(feature | category) estimated from the labeled instances.
func (t *NaiveBayesTrainer) Train(c *LinearClassifier, labels []LabeledVariable) error {
	if t.pseudoCount <= 0 || math.IsNaN(t.pseudoCount) {
		return errors.NewValidationError("pseudoCount", "must be positive", t.pseudoCount)
	}
	if len(labels) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "naive bayes training requires at least one instance")
	}

	numLabels := c.labelDomain.Size()
	numFeatures := c.featureDomain.Size()

	// Per-category evidence, seeded with the pseudo-count on every feature.
	evidence := make([][]float64, numLabels)
	for l := range evidence {
		row := make([]float64, numFeatures)
		for j := range row {
			row[j] = t.pseudoCount
		}
		evidence[l] = row
	}

	for _, label := range labels {
		fv, err := c.featuresOf("NaiveBayesTrainer.Train", label)
		if err != nil {
			return err
		}
		target := label.TargetIndex()
		if target < 0 || target >= numLabels {
			return errors.NewValueError("NaiveBayesTrainer.Train",
				fmt.Sprintf("target index %d out of range for %d labels", target, numLabels))
		}
		fv.AddTo(evidence[target], 1)
	}

	// Normalize each category into a distribution over features and store
	// its log. Rows are disjoint, so trainers never contend on the matrix.
	for l, row := range evidence {
		total := 0.0
		for _, v := range row {
			total += v
		}
		weights := c.weights.RawRowView(l)
		for j, v := range row {
			weights[j] = math.Log(v / total)
		}
	}

	slog.Debug("naive bayes training finished",
		log.TrainerKey, "NaiveBayesTrainer",
		log.InstancesKey, len(labels),
		log.LabelsKey, numLabels,
		log.FeaturesKey, numFeatures,
	)
	return nil
}
