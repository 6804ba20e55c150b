package classify

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/melisabok/factorie/core/parallel"
	"github.com/melisabok/factorie/pkg/errors"
	"github.com/melisabok/factorie/pkg/log"
)

// example is one training instance materialized for optimization: the
// feature vector and the gold category index it should score highest.
type example struct {
	features *FeatureVector
	target   int
}

// GradientTrainer fits a LinearClassifier's weight matrix by minimizing a
// multiclass objective with iterative first-order optimization. The update
// rule and the convergence criterion belong to the Optimizer collaborator;
// the trainer only drives passes, accumulates gradients and invokes
// diagnostic callbacks.
type GradientTrainer struct {
	optimizer Optimizer
	objective Objective

	maxIterations int
	online        bool
	miniBatch     int // negative = all instances per step
	parallelAcc   bool
	workers       int
	seed          int64
	callbacks     *CallbackList
}

// GradientTrainerOption configures a GradientTrainer.
type GradientTrainerOption func(*GradientTrainer)

// NewGradientTrainer creates a gradient trainer around the given optimizer
// and objective. By default it runs 100 batch passes, sequentially.
func NewGradientTrainer(optimizer Optimizer, objective Objective, opts ...GradientTrainerOption) *GradientTrainer {
	t := &GradientTrainer{
		optimizer:     optimizer,
		objective:     objective,
		maxIterations: 100,
		online:        false,
		miniBatch:     1,
		workers:       0,
		seed:          1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithMaxIterations caps the number of full passes. Zero passes leave the
// weight matrix untouched.
func WithMaxIterations(maxIterations int) GradientTrainerOption {
	return func(t *GradientTrainer) {
		t.maxIterations = maxIterations
	}
}

// WithOnline switches between online (one optimizer step per example or
// mini-batch) and batch (one step per full pass) training.
func WithOnline(online bool) GradientTrainerOption {
	return func(t *GradientTrainer) {
		t.online = online
	}
}

// WithMiniBatchSize sets the online mini-batch size. A negative size means
// all instances per step.
func WithMiniBatchSize(size int) GradientTrainerOption {
	return func(t *GradientTrainer) {
		t.miniBatch = size
	}
}

// WithParallelAccumulation sums the batch gradient across worker chunks.
// Partial sums are merged in ascending worker order, so the outcome is
// deterministic for a fixed worker count and commutative up to
// floating-point rounding otherwise.
func WithParallelAccumulation(on bool) GradientTrainerOption {
	return func(t *GradientTrainer) {
		t.parallelAcc = on
	}
}

// WithWorkers sets the worker count for parallel accumulation. Zero or
// negative means one worker per CPU core.
func WithWorkers(workers int) GradientTrainerOption {
	return func(t *GradientTrainer) {
		t.workers = workers
	}
}

// WithSeed sets the seed for mini-batch shuffling.
func WithSeed(seed int64) GradientTrainerOption {
	return func(t *GradientTrainer) {
		t.seed = seed
	}
}

// WithCallbacks installs diagnostic callbacks invoked after each full pass.
func WithCallbacks(callbacks ...Callback) GradientTrainerOption {
	return func(t *GradientTrainer) {
		t.callbacks = NewCallbackList(callbacks...)
	}
}

// Train fits the classifier's weight matrix in place over the labeled
// instances. Training may be invoked repeatedly for continued training; the
// matrix is never reset here.
func (t *GradientTrainer) Train(c *LinearClassifier, labels []LabeledVariable) error {
	if t.optimizer == nil {
		return errors.NewValidationError("optimizer", "must not be nil", nil)
	}
	if t.objective == nil {
		return errors.NewValidationError("objective", "must not be nil", nil)
	}
	if t.maxIterations < 0 {
		return errors.NewValidationError("maxIterations", "must be non-negative", t.maxIterations)
	}
	if len(labels) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "gradient training requires at least one instance")
	}

	examples, err := t.materialize(c, labels)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(t.seed))
	started := time.Now()
	slog.Debug("gradient training started",
		log.TrainerKey, "GradientTrainer",
		log.InstancesKey, len(examples),
		log.LabelsKey, c.labelDomain.Size(),
		log.FeaturesKey, c.featureDomain.Size(),
	)

	for iter := 0; iter < t.maxIterations; iter++ {
		var totalLoss float64
		var passErr error
		if t.online {
			totalLoss, passErr = t.onlinePass(c, examples, rng)
		} else {
			totalLoss, passErr = t.batchPass(c, examples)
		}
		if passErr != nil {
			return passErr
		}

		avgLoss := totalLoss / float64(len(examples))
		if err := errors.CheckScalar("loss", avgLoss, iter); err != nil {
			return err
		}

		if t.callbacks != nil {
			if err := t.callbacks.AfterIteration(iter, c, map[string]float64{"loss": avgLoss}); err != nil {
				return err
			}
			if t.callbacks.ShouldStop() {
				slog.Debug("training stopped by callback", log.IterationKey, iter)
				break
			}
		}

		if t.optimizer.Converged() {
			slog.Debug("optimizer converged", log.IterationKey, iter, log.LossKey, avgLoss)
			break
		}
	}

	slog.Debug("gradient training finished",
		log.TrainerKey, "GradientTrainer",
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
	return nil
}

// materialize converts labeled variables into training examples, failing
// fast on any dimension disagreement with the classifier.
func (t *GradientTrainer) materialize(c *LinearClassifier, labels []LabeledVariable) ([]example, error) {
	examples := make([]example, len(labels))
	numLabels := c.labelDomain.Size()
	for i, l := range labels {
		fv, err := c.featuresOf("GradientTrainer.Train", l)
		if err != nil {
			return nil, err
		}
		target := l.TargetIndex()
		if target < 0 || target >= numLabels {
			return nil, errors.NewValueError("GradientTrainer.Train",
				fmt.Sprintf("target index %d out of range for %d labels", target, numLabels))
		}
		examples[i] = example{features: fv, target: target}
	}
	return examples, nil
}

// accumulate adds one example's loss gradient into grad and returns its loss.
func (t *GradientTrainer) accumulate(c *LinearClassifier, grad *mat.Dense, ex example) float64 {
	scores := c.scoreVector(ex.features)
	loss, gs := t.objective.LossAndGradient(scores, ex.target)
	for l, g := range gs {
		if g != 0 {
			ex.features.AddTo(grad.RawRowView(l), g)
		}
	}
	return loss
}

// batchPass computes the average gradient over all examples and applies one
// optimizer step.
func (t *GradientTrainer) batchPass(c *LinearClassifier, examples []example) (float64, error) {
	numLabels := c.labelDomain.Size()
	numFeatures := c.featureDomain.Size()
	grad := mat.NewDense(numLabels, numFeatures, nil)
	totalLoss := 0.0

	if t.parallelAcc {
		workers := t.workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		partials := make([]*mat.Dense, workers)
		losses := make([]float64, workers)

		parallel.ParallelizeWorkers(len(examples), workers, func(worker, start, end int) {
			local := mat.NewDense(numLabels, numFeatures, nil)
			for i := start; i < end; i++ {
				losses[worker] += t.accumulate(c, local, examples[i])
			}
			partials[worker] = local
		})

		// Merge in ascending worker order: the reduction is a sum, so the
		// result is order-independent up to floating-point rounding.
		for worker, partial := range partials {
			if partial == nil {
				continue
			}
			grad.Add(grad, partial)
			totalLoss += losses[worker]
		}
	} else {
		for _, ex := range examples {
			totalLoss += t.accumulate(c, grad, ex)
		}
	}

	grad.Scale(1/float64(len(examples)), grad)
	if err := t.optimizer.Step(c.weights, grad); err != nil {
		return 0, err
	}
	return totalLoss, nil
}

// onlinePass shuffles the examples and applies one optimizer step per
// mini-batch (per example when the batch size is one; over all instances
// when the configured size is negative).
func (t *GradientTrainer) onlinePass(c *LinearClassifier, examples []example, rng *rand.Rand) (float64, error) {
	n := len(examples)
	batch := t.miniBatch
	if batch < 0 || batch > n {
		batch = n
	}
	if batch == 0 {
		batch = 1
	}

	numLabels := c.labelDomain.Size()
	numFeatures := c.featureDomain.Size()
	perm := rng.Perm(n)
	totalLoss := 0.0

	grad := mat.NewDense(numLabels, numFeatures, nil)
	for start := 0; start < n; start += batch {
		end := start + batch
		if end > n {
			end = n
		}

		grad.Zero()
		for _, idx := range perm[start:end] {
			totalLoss += t.accumulate(c, grad, examples[idx])
		}
		grad.Scale(1/float64(end-start), grad)
		if err := t.optimizer.Step(c.weights, grad); err != nil {
			return 0, err
		}
	}
	return totalLoss, nil
}
