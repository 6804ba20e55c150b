// Package model provides shared training-state management and persistence
// helpers for classifier models.
package model

import (
	"sync"

	"github.com/melisabok/factorie/pkg/errors"
)

// StateManager tracks whether a model has been trained, in a thread-safe
// manner, along with the dimensions it was trained with.
type StateManager struct {
	Fitted bool // Public for gob encoding
	mu     sync.RWMutex

	// Dimensions seen during training - public for gob encoding.
	NLabels   int
	NFeatures int
	NSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{
		Fitted: false,
	}
}

// IsFitted returns whether the model has been trained.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as trained.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the trained state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NLabels = 0
	s.NFeatures = 0
	s.NSamples = 0
}

// SetDimensions records the shape of the training data.
func (s *StateManager) SetDimensions(nLabels, nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NLabels = nLabels
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// GetDimensions returns the shape recorded during training.
func (s *StateManager) GetDimensions() (nLabels, nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NLabels, s.NFeatures, s.NSamples
}

// RequireFitted returns a NotFittedError naming the model and method when
// the model has not been trained yet.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
