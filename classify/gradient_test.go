package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/melisabok/factorie/pkg/errors"
)

// separableProblem builds a linearly separable two-category dataset: "pos"
// instances activate feature 0, "neg" instances feature 1.
func separableProblem(t *testing.T, perClass int) (*testProblem, []*GoldLabel) {
	t.Helper()
	p := newTestProblem(2, "pos", "neg")
	var gs []*GoldLabel
	for i := 0; i < perClass; i++ {
		gs = append(gs, p.add(t, 0, 1, 0))
		gs = append(gs, p.add(t, 1, 0, 1))
	}
	return p, gs
}

func TestGradientTrainerBatchSoftmax(t *testing.T) {
	p, gs := separableProblem(t, 2)
	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)

	trainer := NewGradientTrainer(NewSGD(0.5), NewSoftmaxObjective(),
		WithMaxIterations(100))
	require.NoError(t, trainer.Train(c, asLabeled(gs)))

	acc, err := c.Accuracy(asLabeled(gs))
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestGradientTrainerOnlineHinge(t *testing.T) {
	p, gs := separableProblem(t, 3)
	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)

	trainer := NewGradientTrainer(NewAdaGrad(0.5), NewHingeObjective(),
		WithOnline(true),
		WithMiniBatchSize(1),
		WithMaxIterations(50),
		WithSeed(7))
	require.NoError(t, trainer.Train(c, asLabeled(gs)))

	acc, err := c.Accuracy(asLabeled(gs))
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestGradientTrainerZeroIterations(t *testing.T) {
	p, gs := separableProblem(t, 1)
	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)

	trainer := NewGradientTrainer(NewSGD(0.5), NewSoftmaxObjective(),
		WithMaxIterations(0))
	require.NoError(t, trainer.Train(c, asLabeled(gs)))

	raw := c.Weights().RawMatrix()
	for i, w := range raw.Data {
		assert.Zero(t, w, "weight %d should stay untouched", i)
	}
}

func TestGradientTrainerContinuedTraining(t *testing.T) {
	p, gs := separableProblem(t, 2)
	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)
	c.Weights().Set(0, 0, 0.3)

	// Training never resets the matrix, so a second invocation continues
	// from the weights the first one left.
	trainer := NewGradientTrainer(NewSGD(0.1), NewSoftmaxObjective(),
		WithMaxIterations(1))
	require.NoError(t, trainer.Train(c, asLabeled(gs)))
	after1 := c.Weights().At(0, 0)
	require.NoError(t, trainer.Train(c, asLabeled(gs)))
	after2 := c.Weights().At(0, 0)

	assert.NotEqual(t, 0.3, after1)
	assert.NotEqual(t, after1, after2)
}

func TestGradientTrainerParallelMatchesSequential(t *testing.T) {
	// Hinge gradients are small integers, so the chunked partial sums merge
	// to exactly the sequential total and the runs agree bitwise.
	build := func(parallelAcc bool) *mat.Dense {
		p, gs := separableProblem(t, 8)
		c := NewLinearClassifier(p.labels, p.features, p.featureFunc)
		trainer := NewGradientTrainer(NewSGD(0.5), NewHingeObjective(),
			WithMaxIterations(10),
			WithParallelAccumulation(parallelAcc),
			WithWorkers(4))
		require.NoError(t, trainer.Train(c, asLabeled(gs)))
		return c.Weights()
	}

	sequential := build(false)
	parallel := build(true)
	assert.True(t, mat.Equal(sequential, parallel),
		"parallel accumulation diverged:\nseq  %v\npar  %v",
		mat.Formatted(sequential), mat.Formatted(parallel))
}

func TestGradientTrainerValidation(t *testing.T) {
	p, gs := separableProblem(t, 1)
	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)

	var valErr *errors.ValidationError

	err := NewGradientTrainer(nil, NewSoftmaxObjective()).Train(c, asLabeled(gs))
	require.True(t, errors.As(err, &valErr), "nil optimizer: got %v", err)

	err = NewGradientTrainer(NewSGD(0.1), nil).Train(c, asLabeled(gs))
	require.True(t, errors.As(err, &valErr), "nil objective: got %v", err)

	err = NewGradientTrainer(NewSGD(0.1), NewSoftmaxObjective(),
		WithMaxIterations(-1)).Train(c, asLabeled(gs))
	require.True(t, errors.As(err, &valErr), "negative iterations: got %v", err)

	err = NewGradientTrainer(NewSGD(0.1), NewSoftmaxObjective()).Train(c, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData), "empty data: got %v", err)
}

func TestGradientTrainerTargetOutOfRange(t *testing.T) {
	p := newTestProblem(2, "a", "b")
	g := &GoldLabel{Label: Label{domain: p.labels, value: 0}, target: 5}
	p.vectors[g] = NewFeatureVector(p.features)

	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)
	err := NewGradientTrainer(NewSGD(0.1), NewSoftmaxObjective()).
		Train(c, []LabeledVariable{g})
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr), "got %v", err)
}

func TestGradientTrainerCallbackStops(t *testing.T) {
	p, gs := separableProblem(t, 2)
	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)

	calls := 0
	stopAtOnce := func(env *CallbackEnv) error {
		calls++
		env.StopTraining = true
		return nil
	}

	trainer := NewGradientTrainer(NewSGD(0.1), NewSoftmaxObjective(),
		WithMaxIterations(100),
		WithCallbacks(stopAtOnce))
	require.NoError(t, trainer.Train(c, asLabeled(gs)))
	assert.Equal(t, 1, calls, "training should stop after the first pass")
}

func TestGradientTrainerReportsDecreasingLoss(t *testing.T) {
	p, gs := separableProblem(t, 2)
	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)

	var history map[string][]float64
	trainer := NewGradientTrainer(NewSGD(0.5), NewSoftmaxObjective(),
		WithMaxIterations(20),
		WithCallbacks(RecordEvaluation(&history)))
	require.NoError(t, trainer.Train(c, asLabeled(gs)))

	losses := history["loss"]
	require.Len(t, losses, 20)
	assert.Less(t, losses[len(losses)-1], losses[0],
		"loss should decrease over training")
}
