// Package operations runs the water-quality pipeline as a sequence of steps.
//
// A Step reads from and writes to a shared OperationState: LoadStep parses
// the monthly workbooks, CleanStep turns them into datasets, and the chart,
// report, export and describe steps consume those datasets. The Registry
// orders steps by their dependencies, so asking for a single product plans
// the steps it needs as well.
//
// Manager executes a plan sequentially. It checks for cancellation between
// steps, applies a per-step timeout and wraps every failure in an
// OperationError whose Type tells validation, dependency, execution,
// timeout and cancellation failures apart. Each step gets its own span and
// its duration is recorded in the pipeline metrics.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	if err := registry.Register(operations.DefaultSteps(opts)...); err != nil {
//		return err
//	}
//	manager := operations.NewManager(registry, operations.NewConfig(), tracer, logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{
//		Steps: []string{operations.StepIDHeatmaps, operations.StepIDReport},
//	})
package operations
