// Package config provides centralized configuration management for the
// water-quality report tool. It loads configuration from multiple sources,
// validates it, and exposes the sampling-month table that drives every chart.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (wqreport.yaml or configs/wqreport.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern WQ_* for namespacing:
//
//	WQ_PATHS_DATA_DIR=/srv/lab/data
//	WQ_ANALYSIS_TOP_N=10
//	WQ_ANALYSIS_FOCUS_ELEMENT=Tl
//	WQ_LOGGING_LEVEL=debug
//	WQ_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/wqreport.prom
//
// The month table is file-only:
//
//	months:
//	  - key: Oct2024
//	    label: October
//	    drop_standards: true
//	    drop_dilutions: true
//	    drop_blanks: true
//
// # Path Management
//
// Paths are resolved against the working directory:
//
//	paths, err := cfg.ResolvePaths()
//	workbook := paths.GetDataPath(month.File)
//	heatmap := paths.GetPlotPath(month.HeatmapFile())
package config
