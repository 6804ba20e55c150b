package classify

// Classification is the immutable result of scoring one label variable: a
// reference to the variable and one real-valued score per category in its
// domain. Callers must not modify the score slice.
type Classification struct {
	variable LabelVariable
	scores   []float64
}

func newClassification(v LabelVariable, scores []float64) *Classification {
	return &Classification{variable: v, scores: scores}
}

// Variable returns the scored label variable.
func (c *Classification) Variable() LabelVariable {
	return c.variable
}

// Scores returns the score vector. Its length equals the variable's domain
// size.
func (c *Classification) Scores() []float64 {
	return c.scores
}

// BestIndex returns the index of the maximum score. Ties break toward the
// lowest index.
func (c *Classification) BestIndex() int {
	return argmax(c.scores)
}

// BestValue maps BestIndex back through the variable's categorical domain.
func (c *Classification) BestValue() string {
	return c.variable.Domain().Value(c.BestIndex())
}

// argmax returns the first index attaining the maximum when scanned in
// ascending order.
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
