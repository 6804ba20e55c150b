package classify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/melisabok/factorie/pkg/errors"
)

func TestRecordEvaluation(t *testing.T) {
	var history map[string][]float64
	cl := NewCallbackList(RecordEvaluation(&history))

	for iter := 0; iter < 3; iter++ {
		err := cl.AfterIteration(iter, nil, map[string]float64{"loss": float64(10 - iter)})
		if err != nil {
			t.Fatalf("AfterIteration failed: %v", err)
		}
	}

	if len(history["loss"]) != 3 {
		t.Fatalf("len(history[loss]) = %d, want 3", len(history["loss"]))
	}
	if history["loss"][0] != 10 || history["loss"][2] != 8 {
		t.Errorf("history[loss] = %v", history["loss"])
	}
}

func TestReportAccuracy(t *testing.T) {
	p := newTestProblem(2, "a", "b")
	gs := []*GoldLabel{
		p.add(t, 0, 1, 0),
		p.add(t, 1, 0, 1),
	}
	c := NewLinearClassifier(p.labels, p.features, p.featureFunc)
	if err := NewNaiveBayesTrainer().Train(c, asLabeled(gs)); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	results := map[string]float64{}
	cl := NewCallbackList(ReportAccuracy("train_accuracy", asLabeled(gs)))
	if err := cl.AfterIteration(0, c, results); err != nil {
		t.Fatalf("AfterIteration failed: %v", err)
	}
	if results["train_accuracy"] != 1.0 {
		t.Errorf("train_accuracy = %v, want 1.0", results["train_accuracy"])
	}
}

func TestStopAfter(t *testing.T) {
	cl := NewCallbackList(StopAfter(time.Nanosecond))
	time.Sleep(time.Millisecond)

	if err := cl.AfterIteration(0, nil, nil); err != nil {
		t.Fatalf("AfterIteration failed: %v", err)
	}
	if !cl.ShouldStop() {
		t.Error("spent budget should request a stop")
	}
}

func TestStopAfterBudgetRemaining(t *testing.T) {
	cl := NewCallbackList(StopAfter(time.Hour))
	if err := cl.AfterIteration(0, nil, nil); err != nil {
		t.Fatalf("AfterIteration failed: %v", err)
	}
	if cl.ShouldStop() {
		t.Error("unspent budget should not request a stop")
	}
}

func TestCallbackErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	cl := NewCallbackList(func(*CallbackEnv) error { return boom })
	if err := cl.AfterIteration(0, nil, nil); !errors.Is(err, boom) {
		t.Errorf("AfterIteration = %v, want boom", err)
	}
}

func TestPlotLearningCurve(t *testing.T) {
	history := map[string][]float64{
		"loss":           {1.0, 0.6, 0.4, 0.3},
		"train_accuracy": {0.5, 0.7, 0.9, 1.0},
	}

	filename := filepath.Join(t.TempDir(), "curve.png")
	if err := PlotLearningCurve(history, "training", filename); err != nil {
		t.Fatalf("PlotLearningCurve failed: %v", err)
	}

	info, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("plot file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestPlotLearningCurveEmptyHistory(t *testing.T) {
	err := PlotLearningCurve(nil, "empty", "unused.png")
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("empty history should be ErrEmptyData, got %v", err)
	}
}
