package classify

// CategoricalDomain is an ordered, indexed set of category values. Its size
// is fixed once constructed. Several variables may share one domain.
type CategoricalDomain struct {
	values []string
	index  map[string]int
}

// NewCategoricalDomain creates a domain over the given category values, in
// order. Duplicate values keep their first index.
func NewCategoricalDomain(values ...string) *CategoricalDomain {
	d := &CategoricalDomain{
		values: make([]string, len(values)),
		index:  make(map[string]int, len(values)),
	}
	copy(d.values, values)
	for i, v := range values {
		if _, ok := d.index[v]; !ok {
			d.index[v] = i
		}
	}
	return d
}

// Size returns the number of categories.
func (d *CategoricalDomain) Size() int {
	return len(d.values)
}

// Value returns the category at index i.
func (d *CategoricalDomain) Value(i int) string {
	return d.values[i]
}

// Index returns the index of a category value.
func (d *CategoricalDomain) Index(value string) (int, bool) {
	i, ok := d.index[value]
	return i, ok
}

// LabelVariable is a categorical variable whose current value is an index
// into a CategoricalDomain.
type LabelVariable interface {
	// Domain returns the categorical domain the value indexes into.
	Domain() *CategoricalDomain

	// ValueIndex returns the current value as a domain index.
	ValueIndex() int
}

// MutableLabelVariable is a label variable whose current value can be set,
// as Classify does after scoring.
type MutableLabelVariable interface {
	LabelVariable

	// SetValueIndex sets the current value to the given domain index.
	SetValueIndex(i int)
}

// LabeledVariable is a label variable that additionally carries a gold
// target index, used for training and accuracy measurement. The current
// value and the target may differ until Classify is invoked.
type LabeledVariable interface {
	LabelVariable

	// TargetIndex returns the gold category index.
	TargetIndex() int
}

// Label is a mutable label variable without a gold target.
type Label struct {
	domain *CategoricalDomain
	value  int
}

// NewLabel creates a label over the given domain with value index 0.
func NewLabel(domain *CategoricalDomain) *Label {
	return &Label{domain: domain}
}

// Domain returns the label's categorical domain.
func (l *Label) Domain() *CategoricalDomain { return l.domain }

// ValueIndex returns the current value index.
func (l *Label) ValueIndex() int { return l.value }

// SetValueIndex sets the current value index.
func (l *Label) SetValueIndex(i int) { l.value = i }

// GoldLabel is a mutable label variable carrying a gold target index.
type GoldLabel struct {
	Label
	target int
}

// NewGoldLabel creates a labeled variable whose current value starts at the
// target index.
func NewGoldLabel(domain *CategoricalDomain, target int) *GoldLabel {
	return &GoldLabel{
		Label:  Label{domain: domain, value: target},
		target: target,
	}
}

// TargetIndex returns the gold category index.
func (l *GoldLabel) TargetIndex() int { return l.target }

var (
	_ MutableLabelVariable = (*Label)(nil)
	_ LabeledVariable      = (*GoldLabel)(nil)
	_ MutableLabelVariable = (*GoldLabel)(nil)
)
