package classify

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/melisabok/factorie/pkg/errors"
)

// CallbackEnv is the environment passed to diagnostic callbacks after each
// full training pass. Callbacks are observational: the classifier must be
// treated as read-only. Setting StopTraining is the supported way to impose
// external limits (wall clock, external signals) on gradient training.
type CallbackEnv struct {
	Classifier   Classifier
	Iteration    int
	EvalResults  map[string]float64
	StopTraining bool
}

// Callback is invoked after each full training pass.
type Callback func(env *CallbackEnv) error

// CallbackList manages the callbacks of one training run.
type CallbackList struct {
	callbacks []Callback
	env       *CallbackEnv
}

// NewCallbackList creates a callback list.
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return &CallbackList{
		callbacks: callbacks,
		env: &CallbackEnv{
			EvalResults: make(map[string]float64),
		},
	}
}

// AfterIteration runs all callbacks with the given training state.
func (cl *CallbackList) AfterIteration(iteration int, classifier Classifier, evalResults map[string]float64) error {
	cl.env.Iteration = iteration
	cl.env.Classifier = classifier
	cl.env.EvalResults = evalResults

	for _, cb := range cl.callbacks {
		if err := cb(cl.env); err != nil {
			return err
		}
	}
	return nil
}

// ShouldStop reports whether a callback requested a stop.
func (cl *CallbackList) ShouldStop() bool {
	return cl.env.StopTraining
}

// PrintEvaluation prints the evaluation results every period iterations.
func PrintEvaluation(period int) Callback {
	return func(env *CallbackEnv) error {
		if period <= 0 || env.Iteration%period != 0 {
			return nil
		}
		fmt.Printf("[%d] ", env.Iteration)
		names := make([]string, 0, len(env.EvalResults))
		for name := range env.EvalResults {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %.6f ", name, env.EvalResults[name])
		}
		fmt.Println()
		return nil
	}
}

// RecordEvaluation appends each pass's evaluation results to history, for
// later inspection or plotting.
func RecordEvaluation(history *map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		if *history == nil {
			*history = make(map[string][]float64)
		}
		for name, value := range env.EvalResults {
			(*history)[name] = append((*history)[name], value)
		}
		return nil
	}
}

// ReportAccuracy measures the classifier's accuracy on the given labeled
// set after each pass and publishes it under the given name (for example
// "train_accuracy" or "test_accuracy").
func ReportAccuracy(name string, labels []LabeledVariable) Callback {
	return func(env *CallbackEnv) error {
		acc, err := env.Classifier.Accuracy(labels)
		if err != nil {
			return err
		}
		env.EvalResults[name] = acc
		return nil
	}
}

// StopAfter requests a training stop once the wall-clock budget is spent.
// Gradient training has no other cancellation channel.
func StopAfter(maxDuration time.Duration) Callback {
	startTime := time.Now()
	return func(env *CallbackEnv) error {
		if time.Since(startTime) > maxDuration {
			env.StopTraining = true
		}
		return nil
	}
}

// PlotLearningCurve renders the recorded evaluation history (one line per
// metric, iteration on the x axis) to an image file. The format follows the
// filename extension (png, pdf, svg).
func PlotLearningCurve(history map[string][]float64, title, filename string) error {
	if len(history) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "no evaluation history to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "value"

	names := make([]string, 0, len(history))
	for name := range history {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := history[name]
		pts := make(plotter.XYs, len(values))
		for i, v := range values {
			pts[i].X = float64(i)
			pts[i].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrapf(err, "failed to build line for %s", name)
		}
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrap(err, "failed to save learning curve")
	}
	return nil
}
