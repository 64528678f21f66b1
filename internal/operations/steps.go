package operations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"

	"github.com/CayleighSitchon/water-quality-analysis/internal/charts"
	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
	"github.com/CayleighSitchon/water-quality-analysis/internal/dataprocessing"
	"github.com/CayleighSitchon/water-quality-analysis/internal/exporter"
	"github.com/CayleighSitchon/water-quality-analysis/internal/files"
	"github.com/CayleighSitchon/water-quality-analysis/internal/infrastructure"
	"github.com/CayleighSitchon/water-quality-analysis/internal/report"
	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

// StepOptions carries what every step needs: the configuration, the selected
// months and the output plumbing.
type StepOptions struct {
	Analysis config.AnalysisConfig
	Months   []config.MonthConfig
	Paths    *config.Paths
	Files    *files.Manager
	Metrics  *infrastructure.PipelineMetrics
	Logger   *slog.Logger
	// Out receives the describe summaries. Defaults to stdout.
	Out io.Writer
}

func (o *StepOptions) logger(stepID string) *slog.Logger {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", stepID))
}

// render writes p as a PNG through the file manager and records it.
func (o *StepOptions) render(ctx context.Context, state *OperationState, name string, p *plot.Plot, style charts.Style, kind string) error {
	path := o.Files.ResolvePath(name)
	err := o.Files.WriteAtomic(path, func(w io.Writer) error {
		return charts.WritePNG(w, p, style)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	o.Metrics.RecordChart(ctx, kind)
	state.AddOutput(path)
	return nil
}

// DefaultSteps returns every pipeline step in registration order.
func DefaultSteps(opts *StepOptions) []Step {
	return []Step{
		NewLoadStep(opts),
		NewCleanStep(opts),
		NewDescribeStep(opts),
		NewMonthlyBarsStep(opts),
		NewHeatmapsStep(opts),
		NewCombinedStep(opts),
		NewReportStep(opts),
		NewExportStep(opts),
	}
}

// requireDatasets is the Validate of every step that consumes cleaned data.
func requireDatasets(state *OperationState) error {
	if !state.HasDatasets() {
		return errors.New("no cleaned datasets in state")
	}
	return nil
}

// monthlyMeans groups one month's readings and tags the rows with the month.
func monthlyMeans(ds domain.MonthDataset, key dataprocessing.KeyFunc) []domain.MeanRow {
	rows := dataprocessing.GroupMean(ds.Readings, key)
	for i := range rows {
		rows[i].Month = ds.Label
	}
	return rows
}

// LoadStep parses the workbook of every selected month. Workbooks are read
// concurrently, bounded by the configured worker count.
type LoadStep struct {
	BaseStep
	opts      *StepOptions
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewLoadStep creates the workbook loading step
func NewLoadStep(opts *StepOptions) *LoadStep {
	return &LoadStep{
		BaseStep:  NewBaseStep(StepIDLoad, StepNameLoad),
		opts:      opts,
		discovery: files.NewDiscovery(""),
		logger:    opts.logger(StepIDLoad),
	}
}

// Validate requires at least one month
func (s *LoadStep) Validate(state *OperationState) error {
	if len(s.opts.Months) == 0 {
		return errors.New("no months selected")
	}
	return nil
}

// Execute parses all workbooks. Any missing file or column fails the step;
// a run never continues with a partial set of months.
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	workers := s.opts.Analysis.LoadWorkers
	if workers < 1 {
		workers = 1
	}

	results := make([]*dataprocessing.ParseResult, len(s.opts.Months))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, month := range s.opts.Months {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := s.discovery.ResolveMonthFile(s.opts.Paths.DataDir, month)
			if err != nil {
				return err
			}
			res, err := dataprocessing.ParseWorkbook(path, dataprocessing.ParseOptions{
				SheetName: s.opts.Analysis.SheetName,
			})
			if err != nil {
				return fmt.Errorf("month %s: %w", month.Key, err)
			}
			results[i] = res

			s.logger.InfoContext(gctx, "Workbook loaded",
				slog.String("month", month.Key),
				slog.String("path", path),
				slog.String("sheet", res.Sheet),
				slog.Int("rows", len(res.Rows)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rows := 0
	for i, month := range s.opts.Months {
		state.SetParsed(month.Key, results[i])
		rows += len(results[i].Rows)
	}
	state.GetStep(s.ID()).SetMetadata("rows", rows)
	return nil
}

// CleanStep applies each month's cleaning profile.
type CleanStep struct {
	BaseStep
	opts   *StepOptions
	logger *slog.Logger
}

// NewCleanStep creates the cleaning step
func NewCleanStep(opts *StepOptions) *CleanStep {
	return &CleanStep{
		BaseStep: NewBaseStep(StepIDClean, StepNameClean, StepIDLoad),
		opts:     opts,
		logger:   opts.logger(StepIDClean),
	}
}

// Validate requires the parsed workbook of every month
func (s *CleanStep) Validate(state *OperationState) error {
	for _, m := range s.opts.Months {
		if _, ok := state.Parsed(m.Key); !ok {
			return fmt.Errorf("month %s has not been loaded", m.Key)
		}
	}
	return nil
}

// Execute cleans every month and stores the datasets in table order
func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	datasets := make([]domain.MonthDataset, 0, len(s.opts.Months))
	kept := 0
	for _, m := range s.opts.Months {
		parsed, _ := state.Parsed(m.Key)

		profile := dataprocessing.ProfileFor(m, s.opts.Analysis)
		if profile.DropStandards && !parsed.HasType {
			s.logger.WarnContext(ctx, "Workbook has no Type column, standards cannot be removed",
				slog.String("month", m.Key))
		}

		readings, stats := dataprocessing.NewCleaner(profile, s.logger).Clean(m.Label, parsed.Rows)
		datasets = append(datasets, domain.MonthDataset{
			Key:      m.Key,
			Label:    m.Label,
			Source:   parsed.Path,
			Readings: readings,
			Stats:    stats,
		})
		kept += stats.Kept

		dropped := make(map[string]int, len(stats.Dropped))
		for reason, n := range stats.Dropped {
			dropped[string(reason)] = n
		}
		s.opts.Metrics.RecordCleaning(ctx, m.Key, stats.Total, dropped)

		if stats.Kept == 0 {
			s.logger.WarnContext(ctx, "No readings retained",
				slog.String("month", m.Key),
				slog.Int("total", stats.Total))
		}
	}

	state.SetDatasets(datasets)
	state.GetStep(s.ID()).SetMetadata("kept", kept)
	return nil
}

// DescribeStep prints a summary of every cleaned month.
type DescribeStep struct {
	BaseStep
	opts *StepOptions
}

// NewDescribeStep creates the summary step
func NewDescribeStep(opts *StepOptions) *DescribeStep {
	return &DescribeStep{
		BaseStep: NewBaseStep(StepIDDescribe, StepNameDescribe, StepIDClean),
		opts:     opts,
	}
}

// Validate requires cleaned datasets
func (s *DescribeStep) Validate(state *OperationState) error {
	return requireDatasets(state)
}

// Execute writes the summaries
func (s *DescribeStep) Execute(ctx context.Context, state *OperationState) error {
	out := s.opts.Out
	if out == nil {
		out = os.Stdout
	}
	for _, ds := range state.Datasets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := dataprocessing.Describe(out, ds); err != nil {
			return err
		}
	}
	return nil
}

// MonthlyBarsStep draws one grouped bar chart per month: average
// concentration per sample, one bar per element.
type MonthlyBarsStep struct {
	BaseStep
	opts   *StepOptions
	logger *slog.Logger
}

// NewMonthlyBarsStep creates the monthly bar chart step
func NewMonthlyBarsStep(opts *StepOptions) *MonthlyBarsStep {
	return &MonthlyBarsStep{
		BaseStep: NewBaseStep(StepIDBars, StepNameBars, StepIDClean),
		opts:     opts,
		logger:   opts.logger(StepIDBars),
	}
}

// Validate requires cleaned datasets
func (s *MonthlyBarsStep) Validate(state *OperationState) error {
	return requireDatasets(state)
}

// Execute renders the charts. Months without readings are skipped.
func (s *MonthlyBarsStep) Execute(ctx context.Context, state *OperationState) error {
	months := make(map[string]config.MonthConfig, len(s.opts.Months))
	for _, m := range s.opts.Months {
		months[m.Key] = m
	}

	for _, ds := range state.Datasets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		month := months[ds.Key]

		rows := dataprocessing.GroupMean(ds.Readings, dataprocessing.BySampleElement)
		bars := make([]charts.Bar, len(rows))
		for i, r := range rows {
			bars[i] = charts.Bar{Group: r.Group, Series: r.Element, Value: r.Mean}
		}

		title := month.Title
		if title == "" {
			title = ds.Label + " Average Element Concentration by Location"
		}
		style := charts.Figure(20, 8, s.opts.Analysis.DPI).Rotated(45)
		p, err := charts.GroupedBar(bars, charts.BarOptions{
			Title:  title,
			XLabel: "Sample",
			YLabel: "Average Concentration (ppm)",
			Style:  style,
		})
		if errors.Is(err, charts.ErrNoData) {
			s.logger.WarnContext(ctx, "Skipping bar chart, no data", slog.String("month", ds.Key))
			continue
		}
		if err != nil {
			return fmt.Errorf("month %s: %w", ds.Key, err)
		}

		if err := s.opts.render(ctx, state, month.BarChartFile(), p, style, ChartKindBar); err != nil {
			return err
		}
	}
	return nil
}

// HeatmapsStep draws, per month, the mean concentration of the top
// elements at each location.
type HeatmapsStep struct {
	BaseStep
	opts   *StepOptions
	logger *slog.Logger
}

// NewHeatmapsStep creates the monthly heatmap step
func NewHeatmapsStep(opts *StepOptions) *HeatmapsStep {
	return &HeatmapsStep{
		BaseStep: NewBaseStep(StepIDHeatmaps, StepNameHeatmaps, StepIDClean),
		opts:     opts,
		logger:   opts.logger(StepIDHeatmaps),
	}
}

// Validate requires cleaned datasets
func (s *HeatmapsStep) Validate(state *OperationState) error {
	return requireDatasets(state)
}

// Execute renders one heatmap per month into the plots directory
func (s *HeatmapsStep) Execute(ctx context.Context, state *OperationState) error {
	months := make(map[string]config.MonthConfig, len(s.opts.Months))
	for _, m := range s.opts.Months {
		months[m.Key] = m
	}

	for _, ds := range state.Datasets() {
		if err := ctx.Err(); err != nil {
			return err
		}

		matrix := topElementMatrix(ds.Readings, s.opts.Analysis.TopN)
		p, err := charts.Heatmap(matrix, heatmapTitle(ds.Key), "Location", "Element")
		if errors.Is(err, charts.ErrNoData) {
			s.logger.WarnContext(ctx, "Skipping heatmap, no data", slog.String("month", ds.Key))
			continue
		}
		if err != nil {
			return fmt.Errorf("month %s: %w", ds.Key, err)
		}

		name := "plots/" + months[ds.Key].HeatmapFile()
		if err := s.opts.render(ctx, state, name, p, charts.Figure(12, 8, s.opts.Analysis.DPI), ChartKindHeatmap); err != nil {
			return err
		}
	}
	return nil
}

// heatmapTitle names the month by its key, as the heatmap file name does.
func heatmapTitle(monthKey string) string {
	return fmt.Sprintf("Average Concentration of Top Elements by Location (%s)", monthKey)
}

// topElementMatrix pivots the location means of the n highest elements.
func topElementMatrix(readings []domain.Reading, n int) domain.Matrix {
	top := dataprocessing.TopElements(readings, n)
	rows := dataprocessing.GroupMean(dataprocessing.FilterElements(readings, top), dataprocessing.ByElementLocation)
	return dataprocessing.Pivot(rows)
}

// CombinedStep draws the charts over all selected months: the top element
// heatmap, the concentration distribution and the two focus element charts.
type CombinedStep struct {
	BaseStep
	opts   *StepOptions
	logger *slog.Logger
}

// NewCombinedStep creates the combined chart step
func NewCombinedStep(opts *StepOptions) *CombinedStep {
	return &CombinedStep{
		BaseStep: NewBaseStep(StepIDCombined, StepNameCombined, StepIDClean),
		opts:     opts,
		logger:   opts.logger(StepIDCombined),
	}
}

// Validate requires cleaned datasets
func (s *CombinedStep) Validate(state *OperationState) error {
	return requireDatasets(state)
}

// Execute renders the four combined charts. The focus element charts are
// skipped with a warning when no month has readings for the element.
func (s *CombinedStep) Execute(ctx context.Context, state *OperationState) error {
	readings := state.AllReadings()
	if len(readings) == 0 {
		s.logger.WarnContext(ctx, "Skipping combined charts, no readings")
		return nil
	}
	a := s.opts.Analysis

	top := dataprocessing.TopElements(readings, a.TopN)

	heat, err := charts.Heatmap(topElementMatrix(readings, a.TopN),
		"Average Concentration of Top Elements by Location", "Location", "Element")
	switch {
	case errors.Is(err, charts.ErrNoData):
		s.logger.WarnContext(ctx, "Skipping top samples heatmap, no reading has a location")
	case err != nil:
		return fmt.Errorf("top samples heatmap: %w", err)
	default:
		if err := s.opts.render(ctx, state, TopSamplesFile, heat, charts.Figure(12, 8, a.DPI), ChartKindHeatmap); err != nil {
			return err
		}
	}

	values := dataprocessing.Concentrations(readings)
	groups := make([]charts.BoxGroup, len(top))
	for i, e := range top {
		groups[i] = charts.BoxGroup{Name: e, Values: values[e]}
	}
	box, err := charts.BoxPlot(groups, true,
		fmt.Sprintf("Variation in Element Concentrations Across All Locations and Months (Top %d Elements)", len(top)),
		"Element", "Concentration (ppm)")
	if err != nil {
		return fmt.Errorf("distribution box plot: %w", err)
	}
	if box.DroppedNonPositive > 0 {
		s.logger.InfoContext(ctx, "Non-positive values left off the log scale",
			slog.Int("count", box.DroppedNonPositive))
	}
	if err := s.opts.render(ctx, state, DistributionFile, box.Plot, charts.Figure(14, 6, a.DPI), ChartKindBox); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	focus := dataprocessing.FilterElements(readings, []string{a.FocusElement})
	if len(focus) == 0 {
		s.logger.WarnContext(ctx, "Skipping focus element charts, no readings",
			slog.String("element", a.FocusElement))
		return nil
	}
	return s.renderFocus(ctx, state, focus)
}

func (s *CombinedStep) renderFocus(ctx context.Context, state *OperationState, focus []domain.Reading) error {
	a := s.opts.Analysis
	rows := dataprocessing.GroupMean(focus, dataprocessing.ByLocationMonth)
	if len(rows) == 0 {
		s.logger.WarnContext(ctx, "Skipping focus element charts, no reading has a location",
			slog.String("element", a.FocusElement))
		return nil
	}
	limit := &charts.Limit{Value: a.FocusLimit, Label: a.FocusLimitLabel}

	labels, means := dataprocessing.SortedGroupMeans(rows)
	style := charts.Figure(14, 6, a.DPI).Rotated(45)
	sorted, err := charts.SortedBar(labels, means, charts.BarOptions{
		Title:  fmt.Sprintf("Average %s Concentration by Location (Highest to Lowest)", a.FocusElement),
		XLabel: "Location",
		YLabel: "Average Concentration (ppm)",
		Style:  style,
	})
	if err != nil {
		return fmt.Errorf("focus location chart: %w", err)
	}
	if err := s.opts.render(ctx, state, FocusLocationFile, sorted, style, ChartKindBar); err != nil {
		return err
	}

	bars := make([]charts.Bar, len(rows))
	for i, r := range rows {
		bars[i] = charts.Bar{Group: r.Group, Series: r.Month, Value: r.Mean}
	}
	series := make([]string, 0, len(s.opts.Months))
	present := make(map[string]bool)
	for _, r := range rows {
		present[r.Month] = true
	}
	for _, m := range s.opts.Months {
		if present[m.Label] {
			series = append(series, m.Label)
		}
	}

	style = charts.Figure(12, 6, a.DPI).Rotated(45)
	monthly, err := charts.GroupedBar(bars, charts.BarOptions{
		Title:  fmt.Sprintf("Average %s Concentration by Location and Month", a.FocusElement),
		XLabel: "Location",
		YLabel: "Average Concentration (ppm)",
		Series: series,
		Limit:  limit,
		Style:  style,
	})
	if err != nil {
		return fmt.Errorf("focus monthly chart: %w", err)
	}
	return s.opts.render(ctx, state, FocusMonthlyFile, monthly, style, ChartKindBar)
}

// ReportStep bundles the heatmaps in the plots directory into a PDF.
type ReportStep struct {
	BaseStep
	opts   *StepOptions
	logger *slog.Logger
}

// NewReportStep creates the PDF report step
func NewReportStep(opts *StepOptions) *ReportStep {
	return &ReportStep{
		BaseStep: NewBaseStep(StepIDReport, StepNameReport, StepIDHeatmaps),
		opts:     opts,
		logger:   opts.logger(StepIDReport),
	}
}

// Execute writes one page per PNG in the plots directory, in name order
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	out := s.opts.Paths.GetOutputPath(s.opts.Analysis.ReportName)
	pages, err := report.BuildFromDir(s.opts.Paths.PlotsDir, out)
	if err != nil {
		return err
	}
	state.AddOutput(out)
	state.GetStep(s.ID()).SetMetadata("pages", pages)

	s.logger.InfoContext(ctx, "Report written",
		slog.String("path", out),
		slog.Int("pages", pages))
	return nil
}

// Mean table products written by the export step
const (
	ProductSamples   = "sample_element"
	ProductLocations = "element_location"
	ProductMonthly   = "location_month"
)

// ExportStep writes the cleaned readings, the cleaning counts and the mean
// tables behind the charts to CSV and SQLite.
type ExportStep struct {
	BaseStep
	opts   *StepOptions
	logger *slog.Logger
}

// NewExportStep creates the export step
func NewExportStep(opts *StepOptions) *ExportStep {
	return &ExportStep{
		BaseStep: NewBaseStep(StepIDExport, StepNameExport, StepIDClean),
		opts:     opts,
		logger:   opts.logger(StepIDExport),
	}
}

// Validate requires cleaned datasets
func (s *ExportStep) Validate(state *OperationState) error {
	return requireDatasets(state)
}

// Execute writes every export
func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	datasets := state.Datasets()
	readings := state.AllReadings()

	means := map[string][]domain.MeanRow{
		ProductMonthly: dataprocessing.GroupMean(readings, dataprocessing.ByLocationMonth),
	}
	for _, ds := range datasets {
		means[ProductSamples] = append(means[ProductSamples], monthlyMeans(ds, dataprocessing.BySampleElement)...)
		means[ProductLocations] = append(means[ProductLocations], monthlyMeans(ds, dataprocessing.ByElementLocation)...)
	}
	products := []string{ProductSamples, ProductLocations, ProductMonthly}

	w := exporter.NewCSVWriter(s.opts.Paths)
	if err := w.WriteReadings(exporter.ReadingsFile, readings); err != nil {
		return err
	}
	if err := w.WriteCleaningStats(exporter.StatsFile, datasets); err != nil {
		return err
	}
	state.AddOutput(s.opts.Paths.GetExportPath(exporter.ReadingsFile))
	state.AddOutput(s.opts.Paths.GetExportPath(exporter.StatsFile))

	for _, product := range products {
		name := exporter.MeansFile(product)
		if err := w.WriteMeans(name, means[product]); err != nil {
			return err
		}
		state.AddOutput(s.opts.Paths.GetExportPath(name))
	}

	dbPath := s.opts.Paths.GetExportPath(exporter.DatabaseFile)
	store, err := exporter.OpenSQLite(ctx, dbPath, s.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveReadings(ctx, readings); err != nil {
		return err
	}
	for _, product := range products {
		if err := store.SaveMeans(ctx, product, means[product]); err != nil {
			return err
		}
	}
	state.AddOutput(dbPath)

	s.logger.InfoContext(ctx, "Export written",
		slog.String("dir", s.opts.Paths.ExportDir),
		slog.Int("readings", len(readings)))
	return nil
}
