package model

import (
	"path/filepath"
	"testing"

	"github.com/melisabok/factorie/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	if s.IsFitted() {
		t.Error("new state manager should not be fitted")
	}

	s.SetDimensions(3, 10, 100)
	s.SetFitted()
	if !s.IsFitted() {
		t.Error("SetFitted should mark the model trained")
	}
	nLabels, nFeatures, nSamples := s.GetDimensions()
	if nLabels != 3 || nFeatures != 10 || nSamples != 100 {
		t.Errorf("GetDimensions = (%d, %d, %d), want (3, 10, 100)", nLabels, nFeatures, nSamples)
	}

	s.Reset()
	if s.IsFitted() {
		t.Error("Reset should clear the fitted flag")
	}
}

func TestRequireFitted(t *testing.T) {
	s := NewStateManager()

	err := s.RequireFitted("TreeClassifier", "Classification")
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
	if nf.ModelName != "TreeClassifier" || nf.Method != "Classification" {
		t.Errorf("NotFittedError = %+v", nf)
	}

	s.SetFitted()
	if err := s.RequireFitted("TreeClassifier", "Classification"); err != nil {
		t.Errorf("fitted model should pass, got %v", err)
	}
}

func TestSaveLoadModel(t *testing.T) {
	type snapshot struct {
		Values  []string
		Weights []float64
	}

	in := snapshot{Values: []string{"a", "b"}, Weights: []float64{0.5, -1.5}}
	filename := filepath.Join(t.TempDir(), "model.gob")
	if err := SaveModel(&in, filename); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	var out snapshot
	if err := LoadModel(&out, filename); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if len(out.Values) != 2 || out.Values[1] != "b" {
		t.Errorf("Values = %v", out.Values)
	}
	if out.Weights[0] != 0.5 || out.Weights[1] != -1.5 {
		t.Errorf("Weights = %v", out.Weights)
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	var out struct{ X int }
	if err := LoadModel(&out, filepath.Join(t.TempDir(), "absent.gob")); err == nil {
		t.Error("loading a missing file should fail")
	}
}
