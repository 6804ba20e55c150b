package classify

import (
	"math"
)

// Objective is a multiclass loss: given a score vector and the target
// category index it produces the loss value and the gradient of the loss
// with respect to each score.
type Objective interface {
	// LossAndGradient returns the loss and dLoss/dScore for each category.
	LossAndGradient(scores []float64, target int) (loss float64, grad []float64)

	// Name returns the objective's name.
	Name() string
}

// SoftmaxObjective is the multiclass log loss (cross entropy over a softmax
// of the scores).
type SoftmaxObjective struct{}

// NewSoftmaxObjective creates a multiclass log-loss objective.
func NewSoftmaxObjective() *SoftmaxObjective {
	return &SoftmaxObjective{}
}

// LossAndGradient computes -log p(target) and grad[i] = p(i) - 1{i==target}.
// Scores are max-shifted before exponentiation for stability.
func (o *SoftmaxObjective) LossAndGradient(scores []float64, target int) (float64, []float64) {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	grad := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		grad[i] = math.Exp(s - maxScore)
		sum += grad[i]
	}

	loss := -(scores[target] - maxScore - math.Log(sum))
	for i := range grad {
		grad[i] /= sum
	}
	grad[target] -= 1.0

	return loss, grad
}

// Name returns "softmax".
func (o *SoftmaxObjective) Name() string { return "softmax" }

// HingeObjective is the multiclass hinge loss with unit margin: the target
// score must exceed the best wrong score by at least one.
type HingeObjective struct{}

// NewHingeObjective creates a multiclass hinge objective.
func NewHingeObjective() *HingeObjective {
	return &HingeObjective{}
}

// LossAndGradient computes max(0, 1 - (score[target] - bestWrong)) with the
// subgradient pushing the target score up and the best wrong score down.
func (o *HingeObjective) LossAndGradient(scores []float64, target int) (float64, []float64) {
	grad := make([]float64, len(scores))

	bestWrong := -1
	for i, s := range scores {
		if i == target {
			continue
		}
		if bestWrong < 0 || s > scores[bestWrong] {
			bestWrong = i
		}
	}
	if bestWrong < 0 {
		// Single-category domain: nothing to separate.
		return 0, grad
	}

	margin := scores[target] - scores[bestWrong]
	if margin >= 1 {
		return 0, grad
	}

	grad[target] = -1
	grad[bestWrong] = 1
	return 1 - margin, grad
}

// Name returns "hinge".
func (o *HingeObjective) Name() string { return "hinge" }

var (
	_ Objective = (*SoftmaxObjective)(nil)
	_ Objective = (*HingeObjective)(nil)
)
