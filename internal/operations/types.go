package operations

import (
	"time"
)

// Pipeline step identifiers
const (
	StepIDLoad     = "load"
	StepIDClean    = "clean"
	StepIDDescribe = "describe"
	StepIDBars     = "bars"
	StepIDHeatmaps = "heatmaps"
	StepIDCombined = "combined"
	StepIDReport   = "report"
	StepIDExport   = "export"
)

// Pipeline step names
const (
	StepNameLoad     = "Workbook Loading"
	StepNameClean    = "Reading Cleaning"
	StepNameDescribe = "Dataset Summary"
	StepNameBars     = "Monthly Bar Charts"
	StepNameHeatmaps = "Monthly Heatmaps"
	StepNameCombined = "Combined Charts"
	StepNameReport   = "PDF Report"
	StepNameExport   = "Data Export"
)

// Default timeouts
const (
	DefaultStepTimeout   = 10 * time.Minute
	DefaultLoadTimeout   = 5 * time.Minute
	DefaultReportTimeout = 2 * time.Minute
)

// Combined chart file names
const (
	TopSamplesFile    = "TopSamplesbyLocation.png"
	DistributionFile  = "DistributionofElement.png"
	FocusLocationFile = "TlLocation.png"
	FocusMonthlyFile  = "thallium_plot.png"
)

// Chart kinds used as the metrics label
const (
	ChartKindBar     = "bar"
	ChartKindHeatmap = "heatmap"
	ChartKindBox     = "box"
)

// OperationRequest selects the steps of one run. An empty step list runs
// every registered step.
type OperationRequest struct {
	ID    string   `json:"id"`
	Steps []string `json:"steps,omitempty"`
}

// OperationResponse summarises a finished run
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Outputs  []string              `json:"outputs"`
	Error    string                `json:"error,omitempty"`
}
