package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.ID()
	}
	return out
}

func pipelineRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(DefaultSteps(&StepOptions{})...))
	return r
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFakeStep("a")))

	assert.Error(t, r.Register(newFakeStep("a")), "duplicate ID")
	assert.Error(t, r.Register(newFakeStep("")), "empty ID")
	assert.Error(t, r.Register(nil))
	assert.Equal(t, []string{"a"}, r.ListIDs())
}

func TestRegistry_GetDependencyOrder(t *testing.T) {
	steps, err := pipelineRegistry(t).GetDependencyOrder()
	require.NoError(t, err)

	assert.Equal(t, []string{
		StepIDLoad, StepIDClean, StepIDDescribe, StepIDBars,
		StepIDHeatmaps, StepIDCombined, StepIDReport, StepIDExport,
	}, ids(steps))
}

func TestRegistry_Plan(t *testing.T) {
	r := pipelineRegistry(t)

	tests := []struct {
		name    string
		request []string
		want    []string
	}{
		{"bars pulls in loading and cleaning", []string{StepIDBars}, []string{StepIDLoad, StepIDClean, StepIDBars}},
		{"report needs heatmaps", []string{StepIDReport}, []string{StepIDLoad, StepIDClean, StepIDHeatmaps, StepIDReport}},
		{"request order does not matter", []string{StepIDReport, StepIDBars}, []string{StepIDLoad, StepIDClean, StepIDBars, StepIDHeatmaps, StepIDReport}},
		{"duplicates collapse", []string{StepIDClean, StepIDClean}, []string{StepIDLoad, StepIDClean}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := r.Plan(tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(steps))
		})
	}
}

func TestRegistry_PlanUnknownStep(t *testing.T) {
	_, err := pipelineRegistry(t).Plan([]string{"charts"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(err))
}

func TestRegistry_Cycle(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFakeStep("a", "b"), newFakeStep("b", "a")))

	_, err := r.GetDependencyOrder()
	assert.ErrorContains(t, err, "cycle")
}

func TestRegistry_MissingDependency(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFakeStep("a", "ghost")))

	_, err := r.GetDependencyOrder()
	assert.ErrorContains(t, err, "non-existent step ghost")
}
