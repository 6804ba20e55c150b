package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melisabok/factorie/pkg/errors"
)

// thresholdProblem builds a one-feature dataset split cleanly at 0.5.
func thresholdProblem(t *testing.T) (*testProblem, []*GoldLabel) {
	t.Helper()
	p := newTestProblem(1, "low", "high")
	gs := []*GoldLabel{
		p.add(t, 0, 0.1),
		p.add(t, 0, 0.2),
		p.add(t, 0, 0.3),
		p.add(t, 1, 0.7),
		p.add(t, 1, 0.8),
		p.add(t, 1, 0.9),
	}
	return p, gs
}

func TestDecisionTreeSeparable(t *testing.T) {
	p, gs := thresholdProblem(t)

	c, err := NewDecisionTreeTrainer().Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	require.NoError(t, err)

	acc, err := c.Accuracy(asLabeled(gs))
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	root := c.Root()
	require.False(t, root.IsLeaf(), "separable data should induce a split")
	assert.Equal(t, 0, root.Feature)
	assert.InDelta(t, 0.5, root.Threshold, 0.21) // midpoint of 0.3 and 0.7
	assert.Equal(t, 2, root.NumLeaves())
}

func TestDecisionTreeMulticlass(t *testing.T) {
	p := newTestProblem(1, "a", "b", "c")
	var gs []*GoldLabel
	for i := 0; i < 2; i++ {
		gs = append(gs, p.add(t, 0, 1))
		gs = append(gs, p.add(t, 1, 2))
		gs = append(gs, p.add(t, 2, 3))
	}

	c, err := NewDecisionTreeTrainer().Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	require.NoError(t, err)

	acc, err := c.Accuracy(asLabeled(gs))
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
	assert.Equal(t, 3, c.Root().NumLeaves())
}

func TestDecisionTreeEntropyCriterion(t *testing.T) {
	p, gs := thresholdProblem(t)

	c, err := NewDecisionTreeTrainer(WithCriterion("entropy")).
		Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	require.NoError(t, err)

	acc, err := c.Accuracy(asLabeled(gs))
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestDecisionTreeInvalidCriterion(t *testing.T) {
	p, gs := thresholdProblem(t)

	_, err := NewDecisionTreeTrainer(WithCriterion("chi2")).
		Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr), "got %v", err)
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	// Two features needed for a perfect fit; depth 1 allows only one split.
	p := newTestProblem(2, "a", "b")
	gs := []*GoldLabel{
		p.add(t, 0, 0, 0),
		p.add(t, 1, 0, 1),
		p.add(t, 1, 1, 0),
		p.add(t, 0, 1, 1),
	}

	c, err := NewDecisionTreeTrainer(WithMaxDepth(1)).
		Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	require.NoError(t, err)
	assert.LessOrEqual(t, c.Root().Depth(), 1)
}

func TestDecisionTreeMinSamplesSplit(t *testing.T) {
	p, gs := thresholdProblem(t)

	// The floor exceeds the dataset, so induction stops at the root.
	c, err := NewDecisionTreeTrainer(WithMinSamplesSplit(100)).
		Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	require.NoError(t, err)
	assert.True(t, c.Root().IsLeaf())
}

func TestDecisionTreeCustomInducer(t *testing.T) {
	p, gs := thresholdProblem(t)

	c, err := NewDecisionTreeTrainer(WithInducer(stumpInducer{})).
		Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	require.NoError(t, err)

	cl, err := c.Classification(gs[0])
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, cl.Scores())
}

// stumpInducer ignores the data and returns a fixed single leaf.
type stumpInducer struct{}

func (stumpInducer) Induce(instances []TreeInstance, numLabels int) (*DecisionNode, error) {
	return &DecisionNode{Distribution: []float64{1, 2}}, nil
}

func TestDecisionTreeEmptyData(t *testing.T) {
	p := newTestProblem(1, "a", "b")
	_, err := NewDecisionTreeTrainer().Train(p.labels, p.features, p.featureFunc, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData), "got %v", err)
}

func TestTreeClassifierNotFitted(t *testing.T) {
	p := newTestProblem(1, "a", "b")
	l := p.add(t, 0, 1)

	c := NewTreeClassifier(p.labels, p.features, p.featureFunc, nil)
	_, err := c.Classification(l)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf), "got %v", err)
}

func TestTreeClassifierCopiesLeafDistribution(t *testing.T) {
	p, gs := thresholdProblem(t)
	c, err := NewDecisionTreeTrainer().Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	require.NoError(t, err)

	cl, err := c.Classification(gs[0])
	require.NoError(t, err)
	cl.Scores()[0] = -999

	again, err := c.Classification(gs[0])
	require.NoError(t, err)
	assert.NotEqual(t, -999.0, again.Scores()[0],
		"mutating one result must not corrupt the tree")
}

func TestTreeClassifierClassifyMutates(t *testing.T) {
	p, gs := thresholdProblem(t)
	c, err := NewDecisionTreeTrainer().Train(p.labels, p.features, p.featureFunc, asLabeled(gs))
	require.NoError(t, err)

	l := gs[3] // "high" instance
	l.SetValueIndex(0)
	_, err = c.Classify(l)
	require.NoError(t, err)
	assert.Equal(t, 1, l.ValueIndex())
}
