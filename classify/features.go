package classify

import (
	"fmt"
	"sort"

	"github.com/melisabok/factorie/pkg/errors"
)

// VectorDomain fixes the dimension of feature vectors. Every vector built
// over the same domain has the same length, which must match the weight
// matrix column count of any classifier it is scored against.
type VectorDomain struct {
	size int
}

// NewVectorDomain creates a feature domain of the given dimension.
func NewVectorDomain(size int) *VectorDomain {
	return &VectorDomain{size: size}
}

// Size returns the feature-vector dimension.
func (d *VectorDomain) Size() int {
	return d.size
}

// FeatureVector is a sparse numeric vector over a fixed-size feature domain.
// Active entries are kept sorted by index so iteration order, and therefore
// floating-point accumulation order, is deterministic.
type FeatureVector struct {
	domain  *VectorDomain
	indices []int
	values  []float64
}

// NewFeatureVector creates an empty (all-zero) vector over the domain.
func NewFeatureVector(domain *VectorDomain) *FeatureVector {
	return &FeatureVector{domain: domain}
}

// Domain returns the vector's feature domain.
func (f *FeatureVector) Domain() *VectorDomain {
	return f.domain
}

// Len returns the vector dimension (not the number of active entries).
func (f *FeatureVector) Len() int {
	return f.domain.size
}

// Set assigns value v to feature index i. Setting an index outside the
// domain is a ValueError.
func (f *FeatureVector) Set(i int, v float64) error {
	if i < 0 || i >= f.domain.size {
		return errors.NewValueError("FeatureVector.Set",
			fmt.Sprintf("index %d out of range for dimension %d", i, f.domain.size))
	}
	pos := sort.SearchInts(f.indices, i)
	if pos < len(f.indices) && f.indices[pos] == i {
		f.values[pos] = v
		return nil
	}
	f.indices = append(f.indices, 0)
	f.values = append(f.values, 0)
	copy(f.indices[pos+1:], f.indices[pos:])
	copy(f.values[pos+1:], f.values[pos:])
	f.indices[pos] = i
	f.values[pos] = v
	return nil
}

// At returns the value at feature index i, zero when inactive.
func (f *FeatureVector) At(i int) float64 {
	pos := sort.SearchInts(f.indices, i)
	if pos < len(f.indices) && f.indices[pos] == i {
		return f.values[pos]
	}
	return 0
}

// Active calls fn for every active entry in ascending index order.
func (f *FeatureVector) Active(fn func(i int, v float64)) {
	for pos, i := range f.indices {
		fn(i, f.values[pos])
	}
}

// NumActive returns the number of active entries.
func (f *FeatureVector) NumActive() int {
	return len(f.indices)
}

// Dot computes the dot product with a dense row of the same dimension.
func (f *FeatureVector) Dot(row []float64) float64 {
	var sum float64
	for pos, i := range f.indices {
		sum += f.values[pos] * row[i]
	}
	return sum
}

// AddTo accumulates scale times this vector into a dense row.
func (f *FeatureVector) AddTo(row []float64, scale float64) {
	for pos, i := range f.indices {
		row[i] += scale * f.values[pos]
	}
}

// Norm2Sq returns the squared Euclidean norm.
func (f *FeatureVector) Norm2Sq() float64 {
	var sum float64
	for _, v := range f.values {
		sum += v * v
	}
	return sum
}

// Dense materializes the vector as a dense slice.
func (f *FeatureVector) Dense() []float64 {
	out := make([]float64, f.domain.size)
	for pos, i := range f.indices {
		out[i] = f.values[pos]
	}
	return out
}

// FeatureFunc maps a label variable to its feature vector. The mapping must
// be deterministic and always produce vectors of the same dimension.
type FeatureFunc func(v LabelVariable) *FeatureVector
