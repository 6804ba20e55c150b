package classify

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/melisabok/factorie/core/parallel"
	"github.com/melisabok/factorie/pkg/errors"
	"github.com/melisabok/factorie/pkg/log"
)

// SVMTrainer fits a LinearClassifier's weight matrix as numLabels
// independent binary L2-loss linear SVMs in a one-vs-rest scheme. Labels are
// trained in parallel; each label writes only its own weight-matrix row, so
// the workers share no mutable state. A label whose sub-solver fails to
// converge is reported as a per-label ConvergenceWarning in the returned
// error; its row still holds the best weights found, never a silent zero
// column.
type SVMTrainer struct {
	cost      float64
	tolerance float64
	maxIter   int
	workers   int
	seed      int64
}

// SVMOption configures an SVMTrainer.
type SVMOption func(*SVMTrainer)

// NewSVMTrainer creates a one-vs-rest SVM trainer with liblinear-style
// defaults: cost 1.0, tolerance 0.1, at most 1000 dual iterations per label.
func NewSVMTrainer(opts ...SVMOption) *SVMTrainer {
	t := &SVMTrainer{
		cost:      1.0,
		tolerance: 0.1,
		maxIter:   1000,
		workers:   0,
		seed:      1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithSVMCost sets the misclassification cost C.
func WithSVMCost(cost float64) SVMOption {
	return func(t *SVMTrainer) {
		t.cost = cost
	}
}

// WithSVMTolerance sets the dual stopping tolerance.
func WithSVMTolerance(tolerance float64) SVMOption {
	return func(t *SVMTrainer) {
		t.tolerance = tolerance
	}
}

// WithSVMMaxIterations caps the dual coordinate descent iterations per label.
func WithSVMMaxIterations(maxIter int) SVMOption {
	return func(t *SVMTrainer) {
		t.maxIter = maxIter
	}
}

// WithSVMWorkers sets the per-label training worker count. Zero or negative
// means one worker per CPU core.
func WithSVMWorkers(workers int) SVMOption {
	return func(t *SVMTrainer) {
		t.workers = workers
	}
}

// WithSVMSeed sets the base seed for the per-label coordinate shuffles.
func WithSVMSeed(seed int64) SVMOption {
	return func(t *SVMTrainer) {
		t.seed = seed
	}
}

// Train fits one binary SVM per category and assembles the weight vectors
// as weight-matrix rows. The returned error combines every per-label
// convergence failure with its label index; configuration and dimension
// errors abort immediately instead.
func (t *SVMTrainer) Train(c *LinearClassifier, labels []LabeledVariable) error {
	if t.cost <= 0 || math.IsNaN(t.cost) {
		return errors.NewValidationError("cost", "must be positive", t.cost)
	}
	if t.tolerance <= 0 || math.IsNaN(t.tolerance) {
		return errors.NewValidationError("tolerance", "must be positive", t.tolerance)
	}
	if t.maxIter <= 0 {
		return errors.NewValidationError("maxIter", "must be positive", t.maxIter)
	}
	if len(labels) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "svm training requires at least one instance")
	}

	numLabels := c.labelDomain.Size()

	// Materialize all instances once as parallel arrays.
	targets := make([]int, len(labels))
	vectors := make([]*FeatureVector, len(labels))
	for i, label := range labels {
		fv, err := c.featuresOf("SVMTrainer.Train", label)
		if err != nil {
			return err
		}
		target := label.TargetIndex()
		if target < 0 || target >= numLabels {
			return errors.NewValueError("SVMTrainer.Train",
				fmt.Sprintf("target index %d out of range for %d labels", target, numLabels))
		}
		targets[i] = target
		vectors[i] = fv
	}

	// One-vs-rest over disjoint weight-matrix rows; no locking needed.
	labelErrs := make([]error, numLabels)
	parallel.ParallelizeWorkers(numLabels, t.workers, func(_, start, end int) {
		for l := start; l < end; l++ {
			y := make([]int8, len(targets))
			for i, target := range targets {
				if target == l {
					y[i] = 1
				} else {
					y[i] = -1
				}
			}

			rng := rand.New(rand.NewSource(t.seed + int64(l)))
			w := c.weights.RawRowView(l)
			iters, converged := solveBinarySVM(vectors, y, w, t.cost, t.tolerance, t.maxIter, rng)
			if !converged {
				labelErrs[l] = errors.WithStack(
					errors.NewLabelConvergenceWarning("SVMTrainer", l, iters, "dual gap above tolerance"))
			}
		}
	})

	var combined error
	for _, err := range labelErrs {
		if err != nil {
			errors.Warn(err)
			combined = errors.CombineErrors(combined, err)
		}
	}

	slog.Debug("svm training finished",
		log.TrainerKey, "SVMTrainer",
		log.InstancesKey, len(labels),
		log.LabelsKey, numLabels,
	)
	return combined
}

// solveBinarySVM fits a binary L2-loss linear SVM by dual coordinate
// descent. The weight vector w is overwritten with the solution. It returns
// the number of outer iterations and whether the projected-gradient range
// fell within eps before maxIter.
func solveBinarySVM(x []*FeatureVector, y []int8, w []float64, cost, eps float64, maxIter int, rng *rand.Rand) (int, bool) {
	l := len(x)
	diag := 0.5 / cost

	for j := range w {
		w[j] = 0
	}

	alpha := make([]float64, l)
	qd := make([]float64, l)
	index := make([]int, l)
	for i := 0; i < l; i++ {
		qd[i] = diag + x[i].Norm2Sq()
		index[i] = i
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		pgMax := math.Inf(-1)
		pgMin := math.Inf(1)

		for i := 0; i < l; i++ {
			j := i + rng.Intn(l-i)
			index[i], index[j] = index[j], index[i]
		}

		for _, i := range index {
			yi := float64(y[i])
			g := yi*x[i].Dot(w) - 1 + alpha[i]*diag

			// L2 loss: alpha is unbounded above, so the projected gradient
			// only clips at zero.
			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			}
			pgMax = math.Max(pgMax, pg)
			pgMin = math.Min(pgMin, pg)

			if math.Abs(pg) > 1.0e-12 {
				alphaOld := alpha[i]
				alpha[i] = math.Max(alpha[i]-g/qd[i], 0.0)
				x[i].AddTo(w, (alpha[i]-alphaOld)*yi)
			}
		}

		if pgMax-pgMin <= eps {
			return iter + 1, true
		}
	}

	return iter, false
}
