package classify

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/melisabok/factorie/pkg/errors"
)

// Optimizer consumes loss gradients and updates a weight matrix in place. An
// optimizer may hold state across steps (step counts, running averages) and
// may signal convergence; the gradient trainer delegates its stopping rule
// entirely to this signal and to the iteration cap.
type Optimizer interface {
	// Step applies one update to weights given the loss gradient. Both
	// matrices have the same shape; a mismatch is a DimensionError.
	Step(weights, gradient *mat.Dense) error

	// Converged reports whether the last step met the optimizer's own
	// convergence criterion.
	Converged() bool

	// Reset clears accumulated state so the optimizer can be reused.
	Reset()
}

// maxAbs returns the largest absolute entry of m.
func maxAbs(m *mat.Dense) float64 {
	raw := m.RawMatrix()
	maxG := 0.0
	for _, v := range raw.Data {
		if a := math.Abs(v); a > maxG {
			maxG = a
		}
	}
	return maxG
}

func checkStepDims(op string, weights, gradient *mat.Dense) error {
	wr, wc := weights.Dims()
	gr, gc := gradient.Dims()
	if wr != gr {
		return errors.NewDimensionError(op, wr, gr, 0)
	}
	if wc != gc {
		return errors.NewDimensionError(op, wc, gc, 1)
	}
	return nil
}

// SGD is plain gradient descent with a decaying step size:
// rate_t = LearningRate / (1 + Decay*t). It reports convergence when the
// largest absolute gradient entry falls below Tol; with Tol zero it never
// converges on its own and training runs to the iteration cap.
type SGD struct {
	LearningRate float64
	Decay        float64
	Tol          float64

	step      int
	converged bool
}

// NewSGD creates a decaying-rate gradient descent optimizer.
func NewSGD(learningRate float64) *SGD {
	return &SGD{
		LearningRate: learningRate,
		Decay:        0.1,
		Tol:          0,
	}
}

// Step applies weights -= rate_t * gradient.
func (o *SGD) Step(weights, gradient *mat.Dense) error {
	if err := checkStepDims("SGD.Step", weights, gradient); err != nil {
		return err
	}

	rate := o.LearningRate / (1.0 + o.Decay*float64(o.step))
	o.step++

	w := weights.RawMatrix()
	g := gradient.RawMatrix()
	for i := range w.Data {
		w.Data[i] -= rate * g.Data[i]
	}

	o.converged = o.Tol > 0 && maxAbs(gradient) < o.Tol
	return nil
}

// Converged reports whether the last gradient was within tolerance.
func (o *SGD) Converged() bool { return o.converged }

// Reset clears the step counter and convergence flag.
func (o *SGD) Reset() {
	o.step = 0
	o.converged = false
}

// AdaGrad keeps a per-weight sum of squared gradients and scales each update
// by Rate / (sqrt(sum) + Delta), so frequently updated weights take smaller
// steps. Convergence signaling matches SGD: max absolute gradient below Tol.
type AdaGrad struct {
	Rate  float64
	Delta float64
	Tol   float64

	sumSq     *mat.Dense
	converged bool
}

// NewAdaGrad creates an AdaGrad optimizer with the given base rate.
func NewAdaGrad(rate float64) *AdaGrad {
	return &AdaGrad{
		Rate:  rate,
		Delta: 1e-8,
		Tol:   0,
	}
}

// Step applies the per-weight adaptive update.
func (o *AdaGrad) Step(weights, gradient *mat.Dense) error {
	if err := checkStepDims("AdaGrad.Step", weights, gradient); err != nil {
		return err
	}

	r, c := gradient.Dims()
	if o.sumSq == nil {
		o.sumSq = mat.NewDense(r, c, nil)
	} else if sr, sc := o.sumSq.Dims(); sr != r || sc != c {
		return errors.NewDimensionError("AdaGrad.Step", sr, r, 0)
	}

	w := weights.RawMatrix()
	g := gradient.RawMatrix()
	s := o.sumSq.RawMatrix()
	for i := range g.Data {
		s.Data[i] += g.Data[i] * g.Data[i]
		w.Data[i] -= o.Rate / (math.Sqrt(s.Data[i]) + o.Delta) * g.Data[i]
	}

	o.converged = o.Tol > 0 && maxAbs(gradient) < o.Tol
	return nil
}

// Converged reports whether the last gradient was within tolerance.
func (o *AdaGrad) Converged() bool { return o.converged }

// Reset drops the accumulated squared gradients.
func (o *AdaGrad) Reset() {
	o.sumSq = nil
	o.converged = false
}

var (
	_ Optimizer = (*SGD)(nil)
	_ Optimizer = (*AdaGrad)(nil)
)
