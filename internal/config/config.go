package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment override, e.g. WQ_PATHS_DATA_DIR.
const EnvPrefix = "WQ"

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Months    []MonthConfig   `yaml:"months" ignored:"true" validate:"required,min=1,unique=Key,dive"`
}

// PathsConfig contains file system locations. Relative paths resolve against
// the working directory.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	PlotsDir  string `yaml:"plots_dir" envconfig:"PLOTS_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	ExportDir string `yaml:"export_dir" envconfig:"EXPORT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnalysisConfig holds the knobs of the cleaning and charting pipeline.
type AnalysisConfig struct {
	TopN            int      `yaml:"top_n" envconfig:"TOP_N" validate:"min=1"`
	FocusElement    string   `yaml:"focus_element" envconfig:"FOCUS_ELEMENT" validate:"required"`
	FocusLimit      float64  `yaml:"focus_limit" envconfig:"FOCUS_LIMIT" validate:"gte=0"`
	FocusLimitLabel string   `yaml:"focus_limit_label" envconfig:"FOCUS_LIMIT_LABEL"`
	StandardType    string   `yaml:"standard_type" envconfig:"STANDARD_TYPE"`
	BlankMarkers    []string `yaml:"blank_markers" envconfig:"BLANK_MARKERS"`
	DPI             int      `yaml:"dpi" envconfig:"DPI" validate:"min=50,max=1200"`
	ReportName      string   `yaml:"report_name" envconfig:"REPORT_NAME" validate:"required"`
	SheetName       string   `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	LoadWorkers     int      `yaml:"load_workers" envconfig:"LOAD_WORKERS" validate:"min=1,max=32"`
}

// TelemetryConfig controls tracing and the Prometheus textfile sink.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:   "data",
			PlotsDir:  "plots",
			OutputDir: ".",
			ExportDir: "exports",
			LogsDir:   "logs",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/wqreport.log",
		},
		Analysis: AnalysisConfig{
			TopN:            10,
			FocusElement:    "Tl",
			FocusLimit:      0.002,
			FocusLimitLabel: "EPA Limit (0.002 ppm)",
			StandardType:    "STD",
			BlankMarkers:    []string{"DI", "HNO"},
			DPI:             300,
			ReportName:      "WaterQuality_Report.pdf",
			LoadWorkers:     4,
		},
		Months: DefaultMonths(),
	}
}

// Load loads configuration from defaults, an optional YAML file and environment
// variables, in increasing order of precedence. An empty path searches the
// usual locations; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize fills derived month fields and canonicalises enum-like strings.
func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	for i := range c.Months {
		c.Months[i].applyDefaults()
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration with struct tags and returns every field
// error joined together.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"wqreport.yaml",
		"configs/wqreport.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}
