package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CayleighSitchon/water-quality-analysis/internal/infrastructure"
)

// Manager runs pipeline steps one after another. Each step reads the output
// of earlier steps from the shared OperationState, so there is no parallel
// execution mode.
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger,
	}
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs the requested steps and their dependencies. The returned
// error is an *OperationError for every failure.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.GenerateTraceID()
	}
	ctx = infrastructure.WithTraceID(ctx, req.ID)

	state := NewOperationState(req.ID)

	steps, err := m.registry.Plan(req.Steps)
	if err != nil {
		opErr := WrapError(err, "", "")
		if opErr.Type == ErrorTypeExecution {
			opErr = NewFatalError("failed to plan steps", err)
		}
		m.logOperationError(ctx, req.ID, opErr)
		state.Fail(opErr)
		return m.createResponse(state), opErr
	}

	ids := make([]string, len(steps))
	for i, step := range steps {
		ids[i] = step.ID()
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperation(ctx, req.ID, ids)
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", req.ID),
		slog.Any("steps", ids))

	state.Start()
	err = m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(span, state.GetStatus(), state.Duration(), err)
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", req.ID),
		slog.String("status", string(state.GetStatus())),
		slog.Duration("duration", state.Duration()),
		slog.Int("outputs", len(state.Outputs())))

	return m.createResponse(state), err
}

// executeSequential executes steps one by one. Without ContinueOnError the
// first failure stops the run; with it, only dependents of the failed step
// are skipped and the first error is returned at the end.
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	var firstErr error
	for i, step := range steps {
		if ctx.Err() != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID())
		}

		stepState := state.GetStep(step.ID())
		if stepState.GetStatus() == StepStatusSkipped {
			continue
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.logStepError(ctx, state.ID, step.ID(), err)
			if firstErr == nil {
				firstErr = err
			}
			if !m.config.ContinueOnError || GetErrorType(err) == ErrorTypeCancellation {
				m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
				return err
			}
			m.skipDependentSteps(state, step.ID())
		}
	}
	return firstErr
}

// executeStep checks dependencies, validates and runs a single Step
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Skip(err.Error())
		return err
	}

	if err := step.Validate(state); err != nil {
		m.logger.WarnContext(ctx, "validation_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		opErr := NewValidationError(step.ID(), err)
		stepState.Fail(opErr)
		m.tracer.metrics.RecordStep(ctx, step.ID(), 0, opErr)
		return opErr
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepCtx, span := m.tracer.TraceStep(stepCtx, state.ID, step.ID())
	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	// A step that gives up on its own deadline may return an unrelated error.
	if err != nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}

	m.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, err)

	if err != nil {
		opErr := WrapError(err, step.ID(), timeout.String())
		stepState.Fail(opErr)
		return opErr
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

// checkDependencies verifies that all dependencies completed in this run
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStep(dep)
		if depState == nil {
			return NewDependencyError(step.ID(), dep, StepStatusPending)
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep, status)
		}
	}
	return nil
}

// skipDependentSteps marks every pending step that depends on the failed
// step, directly or transitively, as skipped
func (m *Manager) skipDependentSteps(state *OperationState, failedID string) {
	for _, id := range m.registry.GetDependents(failedID) {
		stepState := state.GetStep(id)
		if stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(fmt.Sprintf("dependency %s failed", failedID))
			m.skipDependentSteps(state, id)
		}
	}
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if stepState := state.GetStep(step.ID()); stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
		}
	}
}

// createResponse creates an operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	state.mu.RLock()
	steps := make(map[string]*StepState, len(state.Steps))
	for k, v := range state.Steps {
		steps[k] = v
	}
	state.mu.RUnlock()

	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Duration: state.Duration(),
		Steps:    steps,
		Outputs:  state.Outputs(),
	}
	state.mu.RLock()
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	state.mu.RUnlock()
	return resp
}

// logOperationError logs an operation error
func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	m.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", operationID),
		slog.String("error", err.Error()))
}

// logStepError logs a Step error
func (m *Manager) logStepError(ctx context.Context, operationID, stepID string, err error) {
	m.logger.ErrorContext(ctx, "step_error",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", err.Error()))
}
