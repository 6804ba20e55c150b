package classify

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/melisabok/factorie/core/model"
	"github.com/melisabok/factorie/pkg/errors"
	"github.com/melisabok/factorie/pkg/log"
)

// TreeInstance is one weighted training instance for tree induction: a
// feature vector and a target distribution (one-hot for labeled data).
type TreeInstance struct {
	Features *FeatureVector
	Target   []float64
	Weight   float64
}

// DecisionNode is a node of an induced decision tree. Internal nodes route
// on a feature-value threshold; leaves store the weighted category counts of
// the instances that reached them.
type DecisionNode struct {
	Feature   int
	Threshold float64
	Left      *DecisionNode
	Right     *DecisionNode

	// Distribution is the leaf's category count vector; nil on internal
	// nodes.
	Distribution []float64
}

// IsLeaf reports whether the node has no children.
func (n *DecisionNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Score walks the tree along the feature values to a leaf and returns its
// stored distribution.
func (n *DecisionNode) Score(fv *FeatureVector) []float64 {
	node := n
	for !node.IsLeaf() {
		if fv.At(node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Distribution
}

// Depth returns the length of the longest root-to-leaf path, zero for a
// single leaf.
func (n *DecisionNode) Depth() int {
	if n.IsLeaf() {
		return 0
	}
	left := n.Left.Depth()
	right := n.Right.Depth()
	if right > left {
		left = right
	}
	return left + 1
}

// NumLeaves returns the number of leaves under the node.
func (n *DecisionNode) NumLeaves() int {
	if n.IsLeaf() {
		return 1
	}
	return n.Left.NumLeaves() + n.Right.NumLeaves()
}

// TreeInducer recursively partitions weighted instances into a decision
// tree. The splitting criterion is the inducer's own concern; the trainer
// treats it as a black box.
type TreeInducer interface {
	Induce(instances []TreeInstance, numLabels int) (*DecisionNode, error)
}

// CARTInducer selects, at each node, the feature/threshold split with the
// largest impurity decrease, stopping on purity, depth, or instance-count
// floors.
type CARTInducer struct {
	Criterion       string // "gini" or "entropy"
	MaxDepth        int    // 0 means unbounded
	MinSamplesSplit int
	MinSamplesLeaf  int
}

// NewCARTInducer creates an inducer with gini impurity and sklearn-style
// stopping defaults.
func NewCARTInducer() *CARTInducer {
	return &CARTInducer{
		Criterion:       "gini",
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

// Induce builds a decision tree over the weighted instances.
func (ind *CARTInducer) Induce(instances []TreeInstance, numLabels int) (*DecisionNode, error) {
	if ind.Criterion != "gini" && ind.Criterion != "entropy" {
		return nil, errors.NewValidationError("criterion", "must be 'gini' or 'entropy'", ind.Criterion)
	}
	if len(instances) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "tree induction requires at least one instance")
	}
	return ind.build(instances, numLabels, 0), nil
}

func (ind *CARTInducer) build(instances []TreeInstance, numLabels, depth int) *DecisionNode {
	dist, total := targetDistribution(instances, numLabels)

	if ind.shouldStop(instances, dist, total, depth) {
		return &DecisionNode{Distribution: dist}
	}

	feature, threshold, ok := ind.bestSplit(instances, numLabels, dist, total)
	if !ok {
		return &DecisionNode{Distribution: dist}
	}

	var left, right []TreeInstance
	for _, inst := range instances {
		if inst.Features.At(feature) <= threshold {
			left = append(left, inst)
		} else {
			right = append(right, inst)
		}
	}

	return &DecisionNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      ind.build(left, numLabels, depth+1),
		Right:     ind.build(right, numLabels, depth+1),
	}
}

func (ind *CARTInducer) shouldStop(instances []TreeInstance, dist []float64, total float64, depth int) bool {
	if ind.MaxDepth > 0 && depth >= ind.MaxDepth {
		return true
	}
	if len(instances) < ind.MinSamplesSplit {
		return true
	}
	// Purity floor: a single category holds all the weight.
	for _, w := range dist {
		if w == total && w > 0 {
			return true
		}
	}
	return false
}

// bestSplit scans every feature and midpoint threshold for the split with
// the largest impurity decrease that leaves at least MinSamplesLeaf
// instances on each side.
func (ind *CARTInducer) bestSplit(instances []TreeInstance, numLabels int, dist []float64, total float64) (int, float64, bool) {
	numFeatures := instances[0].Features.Len()
	parentImpurity := ind.impurity(dist, total)

	bestGain := 1e-12
	bestFeature := -1
	bestThreshold := 0.0

	values := make([]float64, 0, len(instances))
	leftDist := make([]float64, numLabels)
	rightDist := make([]float64, numLabels)

	for f := 0; f < numFeatures; f++ {
		values = values[:0]
		for _, inst := range instances {
			values = append(values, inst.Features.At(f))
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			threshold := (values[i] + values[i-1]) / 2

			for l := 0; l < numLabels; l++ {
				leftDist[l] = 0
				rightDist[l] = 0
			}
			leftTotal, rightTotal := 0.0, 0.0
			leftCount, rightCount := 0, 0
			for _, inst := range instances {
				if inst.Features.At(f) <= threshold {
					addScaled(leftDist, inst.Target, inst.Weight)
					leftTotal += inst.Weight
					leftCount++
				} else {
					addScaled(rightDist, inst.Target, inst.Weight)
					rightTotal += inst.Weight
					rightCount++
				}
			}
			if leftCount < ind.MinSamplesLeaf || rightCount < ind.MinSamplesLeaf {
				continue
			}

			weighted := (leftTotal*ind.impurity(leftDist, leftTotal) +
				rightTotal*ind.impurity(rightDist, rightTotal)) / total
			gain := parentImpurity - weighted
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func (ind *CARTInducer) impurity(dist []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	if ind.Criterion == "entropy" {
		e := 0.0
		for _, w := range dist {
			if w > 0 {
				p := w / total
				e -= p * math.Log2(p)
			}
		}
		return e
	}
	g := 1.0
	for _, w := range dist {
		p := w / total
		g -= p * p
	}
	return g
}

func targetDistribution(instances []TreeInstance, numLabels int) ([]float64, float64) {
	dist := make([]float64, numLabels)
	total := 0.0
	for _, inst := range instances {
		addScaled(dist, inst.Target, inst.Weight)
		total += inst.Weight
	}
	return dist, total
}

func addScaled(dst, src []float64, scale float64) {
	for i, v := range src {
		dst[i] += scale * v
	}
}

// DecisionTreeTrainer induces a tree-structured alternative to a weight
// matrix: a TreeClassifier satisfying the same Classifier contract.
type DecisionTreeTrainer struct {
	inducer         TreeInducer
	criterion       string
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

// DecisionTreeOption configures a DecisionTreeTrainer.
type DecisionTreeOption func(*DecisionTreeTrainer)

// NewDecisionTreeTrainer creates a decision tree trainer with gini impurity
// and no depth bound.
func NewDecisionTreeTrainer(opts ...DecisionTreeOption) *DecisionTreeTrainer {
	t := &DecisionTreeTrainer{
		criterion:       "gini",
		maxDepth:        0,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithCriterion sets the impurity criterion: "gini" or "entropy".
func WithCriterion(criterion string) DecisionTreeOption {
	return func(t *DecisionTreeTrainer) {
		t.criterion = criterion
	}
}

// WithMaxDepth bounds the tree depth. Zero means unbounded.
func WithMaxDepth(maxDepth int) DecisionTreeOption {
	return func(t *DecisionTreeTrainer) {
		t.maxDepth = maxDepth
	}
}

// WithMinSamplesSplit sets the minimum instance count required to split a
// node.
func WithMinSamplesSplit(minSamplesSplit int) DecisionTreeOption {
	return func(t *DecisionTreeTrainer) {
		t.minSamplesSplit = minSamplesSplit
	}
}

// WithMinSamplesLeaf sets the minimum instance count per leaf.
func WithMinSamplesLeaf(minSamplesLeaf int) DecisionTreeOption {
	return func(t *DecisionTreeTrainer) {
		t.minSamplesLeaf = minSamplesLeaf
	}
}

// WithInducer replaces the default CART inducer with a custom collaborator.
func WithInducer(inducer TreeInducer) DecisionTreeOption {
	return func(t *DecisionTreeTrainer) {
		t.inducer = inducer
	}
}

// Train induces a tree over the labeled instances and returns a classifier
// walking it.
func (t *DecisionTreeTrainer) Train(labelDomain *CategoricalDomain, featureDomain *VectorDomain, features FeatureFunc, labels []LabeledVariable) (*TreeClassifier, error) {
	if len(labels) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "tree training requires at least one instance")
	}

	numLabels := labelDomain.Size()
	instances := make([]TreeInstance, len(labels))
	for i, label := range labels {
		fv := features(label)
		if fv == nil {
			return nil, errors.NewValueError("DecisionTreeTrainer.Train", "feature mapping returned nil")
		}
		if got := fv.Len(); got != featureDomain.Size() {
			return nil, errors.NewDimensionError("DecisionTreeTrainer.Train", featureDomain.Size(), got, 1)
		}
		target := label.TargetIndex()
		if target < 0 || target >= numLabels {
			return nil, errors.NewValueError("DecisionTreeTrainer.Train",
				fmt.Sprintf("target index %d out of range for %d labels", target, numLabels))
		}
		oneHot := make([]float64, numLabels)
		oneHot[target] = 1
		instances[i] = TreeInstance{Features: fv, Target: oneHot, Weight: 1.0}
	}

	inducer := t.inducer
	if inducer == nil {
		inducer = &CARTInducer{
			Criterion:       t.criterion,
			MaxDepth:        t.maxDepth,
			MinSamplesSplit: t.minSamplesSplit,
			MinSamplesLeaf:  t.minSamplesLeaf,
		}
	}

	root, err := inducer.Induce(instances, numLabels)
	if err != nil {
		return nil, errors.Wrap(err, "tree induction failed")
	}

	slog.Debug("decision tree training finished",
		log.TrainerKey, "DecisionTreeTrainer",
		log.InstancesKey, len(labels),
		log.LabelsKey, numLabels,
	)
	return NewTreeClassifier(labelDomain, featureDomain, features, root), nil
}

// TreeClassifier scores a variable by walking an induced decision tree
// along its feature values to a leaf and returning the leaf's stored
// distribution, satisfying the same contract as linear models.
type TreeClassifier struct {
	labelDomain   *CategoricalDomain
	featureDomain *VectorDomain
	features      FeatureFunc
	root          *DecisionNode
	state         *model.StateManager
}

// NewTreeClassifier wraps an induced tree as a classifier.
func NewTreeClassifier(labelDomain *CategoricalDomain, featureDomain *VectorDomain, features FeatureFunc, root *DecisionNode) *TreeClassifier {
	c := &TreeClassifier{
		labelDomain:   labelDomain,
		featureDomain: featureDomain,
		features:      features,
		root:          root,
		state:         model.NewStateManager(),
	}
	if root != nil {
		c.state.SetFitted()
	}
	return c
}

// Root returns the induced tree.
func (c *TreeClassifier) Root() *DecisionNode { return c.root }

// LabelDomain returns the categorical domain scores are computed over.
func (c *TreeClassifier) LabelDomain() *CategoricalDomain { return c.labelDomain }

// Classification computes a Classification for v without mutating it.
func (c *TreeClassifier) Classification(v LabelVariable) (*Classification, error) {
	if err := c.state.RequireFitted("TreeClassifier", "Classification"); err != nil {
		return nil, err
	}
	if got := v.Domain().Size(); got != c.labelDomain.Size() {
		return nil, errors.NewDimensionError("Classification", c.labelDomain.Size(), got, 0)
	}
	fv := c.features(v)
	if fv == nil {
		return nil, errors.NewValueError("Classification", "feature mapping returned nil")
	}
	if got := fv.Len(); got != c.featureDomain.Size() {
		return nil, errors.NewDimensionError("Classification", c.featureDomain.Size(), got, 1)
	}

	leaf := c.root.Score(fv)
	scores := make([]float64, len(leaf))
	copy(scores, leaf)
	return newClassification(v, scores), nil
}

// Classifications scores a batch of variables, preserving input order.
func (c *TreeClassifier) Classifications(vs []LabelVariable) ([]*Classification, error) {
	return batchClassifications(c.Classification, vs)
}

// Classify scores v and sets its current value to the best index.
func (c *TreeClassifier) Classify(v MutableLabelVariable) (*Classification, error) {
	cl, err := c.Classification(v)
	if err != nil {
		return nil, err
	}
	v.SetValueIndex(cl.BestIndex())
	return cl, nil
}

// Accuracy returns the fraction of labels classified to their target index.
func (c *TreeClassifier) Accuracy(labels []LabeledVariable) (float64, error) {
	return batchAccuracy(c.Classification, labels)
}

var _ Classifier = (*TreeClassifier)(nil)
