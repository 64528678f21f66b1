package operations

import (
	"sort"
	"sync"
	"time"

	"github.com/CayleighSitchon/water-quality-analysis/internal/dataprocessing"
	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState represents the complete state of one pipeline run. Steps
// hand data to each other through its typed slots.
type OperationState struct {
	mu sync.RWMutex

	ID        string                `json:"id"`
	Status    OperationStatusValue  `json:"status"`
	StartTime time.Time             `json:"start_time"`
	EndTime   *time.Time            `json:"end_time,omitempty"`
	Steps     map[string]*StepState `json:"steps"`
	Error     error                 `json:"-"`

	parsed   map[string]*dataprocessing.ParseResult
	datasets []domain.MonthDataset
	outputs  []string
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		parsed:    make(map[string]*dataprocessing.ParseResult),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current operation status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStep returns the state of a specific Step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStep updates the state of a specific Step
func (p *OperationState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stepID] = state
}

// SetParsed stores the raw workbook content of a month.
func (p *OperationState) SetParsed(monthKey string, result *dataprocessing.ParseResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parsed[monthKey] = result
}

// Parsed returns the raw workbook content of a month.
func (p *OperationState) Parsed(monthKey string) (*dataprocessing.ParseResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.parsed[monthKey]
	return r, ok
}

// SetDatasets stores the cleaned months in table order.
func (p *OperationState) SetDatasets(datasets []domain.MonthDataset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.datasets = datasets
}

// Datasets returns the cleaned months in table order.
func (p *OperationState) Datasets() []domain.MonthDataset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.datasets
}

// HasDatasets reports whether cleaning has run.
func (p *OperationState) HasDatasets() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.datasets != nil
}

// AllReadings concatenates the readings of every month.
func (p *OperationState) AllReadings() []domain.Reading {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var n int
	for _, ds := range p.datasets {
		n += len(ds.Readings)
	}
	out := make([]domain.Reading, 0, n)
	for _, ds := range p.datasets {
		out = append(out, ds.Readings...)
	}
	return out
}

// AddOutput records a file written by a step.
func (p *OperationState) AddOutput(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outputs = append(p.outputs, path)
}

// Outputs returns the written files sorted by path.
func (p *OperationState) Outputs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.outputs))
	copy(out, p.outputs)
	sort.Strings(out)
	return out
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// GetFailedSteps returns all failed steps
func (p *OperationState) GetFailedSteps() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var failed []*StepState
	for _, step := range p.Steps {
		if step.GetStatus() == StepStatusFailed {
			failed = append(failed, step)
		}
	}
	return failed
}

// IsComplete returns true if no step is pending or active
func (p *OperationState) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, step := range p.Steps {
		if s := step.GetStatus(); s == StepStatusPending || s == StepStatusActive {
			return false
		}
	}
	return true
}
