package operations

import (
	"context"
	"sync"
	"time"
)

// Step represents a single step of the pipeline
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Execute runs the Step with the given context and operation state
	Execute(ctx context.Context, state *OperationState) error

	// Validate checks if the Step can be executed with the current state
	Validate(state *OperationState) error

	// GetDependencies returns the IDs of steps that must complete before this Step
	GetDependencies() []string
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    StepStatus     `json:"status"`
	StartTime *time.Time     `json:"start_time,omitempty"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Message   string         `json:"message"`
	Error     error          `json:"-"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewStepState creates a new Step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]any),
	}
}

// Start marks the Step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the Step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the Step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the Step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// SetMetadata records a value reported by the step, e.g. pages written.
func (s *StepState) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metadata[key] = value
}

// GetMetadata returns a value recorded with SetMetadata.
func (s *StepState) GetMetadata(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.Metadata[key]
	return v, ok
}

// Duration returns the duration of the Step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// BaseStep provides common functionality for Step implementations
type BaseStep struct {
	id           string
	name         string
	dependencies []string
}

// NewBaseStep creates a new base Step
func NewBaseStep(id, name string, dependencies ...string) BaseStep {
	if dependencies == nil {
		dependencies = []string{}
	}
	return BaseStep{
		id:           id,
		name:         name,
		dependencies: dependencies,
	}
}

// ID returns the Step ID
func (b *BaseStep) ID() string {
	return b.id
}

// Name returns the Step name
func (b *BaseStep) Name() string {
	return b.name
}

// GetDependencies returns the Step dependencies
func (b *BaseStep) GetDependencies() []string {
	return b.dependencies
}

// Validate provides a default validation that always passes
func (b *BaseStep) Validate(state *OperationState) error {
	return nil
}
