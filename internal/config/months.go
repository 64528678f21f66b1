package config

import (
	"fmt"
	"strings"
)

// MonthConfig is one row of the sampling-month table. Every product of the
// pipeline is driven from this table instead of per-month code.
type MonthConfig struct {
	Key   string `yaml:"key" validate:"required"`
	Label string `yaml:"label"`
	File  string `yaml:"file"`
	// Title replaces the default title of the monthly bar chart.
	Title string `yaml:"title"`
	// Cleaning profile. The defaults turn every filter on so no chart shows
	// standards, dilution trials or blanks; a month can switch one off to
	// reproduce a chart that kept those rows.
	DropStandards bool `yaml:"drop_standards"`
	DropDilutions bool `yaml:"drop_dilutions"`
	DropBlanks    bool `yaml:"drop_blanks"`
}

func (m *MonthConfig) applyDefaults() {
	if m.Label == "" {
		m.Label = m.Key
	}
	if m.File == "" {
		m.File = m.Key + "_Data.xlsx"
	}
}

// BarChartFile is the file name of the monthly grouped bar chart.
func (m MonthConfig) BarChartFile() string {
	return strings.ToLower(m.Label) + "_avg_concentration.png"
}

// HeatmapFile is the file name of the monthly top-elements heatmap.
func (m MonthConfig) HeatmapFile() string {
	return fmt.Sprintf("TopElements_%s_Heatmap.png", m.Key)
}

// DefaultMonths returns the sampling campaign the lab started with:
// October 2024 through May 2025, where May was delivered as the Kern workbook.
func DefaultMonths() []MonthConfig {
	months := []MonthConfig{
		{Key: "Oct2024", Label: "October", DropStandards: true, DropDilutions: true, DropBlanks: true},
		{Key: "Jan2025", Label: "January", DropStandards: true, DropDilutions: true, DropBlanks: true},
		{Key: "Feb2025", Label: "February", DropStandards: true, DropDilutions: true, DropBlanks: true},
		{Key: "March2025", Label: "March", DropStandards: true, DropDilutions: true, DropBlanks: true},
		{Key: "April2025", Label: "April", DropStandards: true, DropDilutions: true, DropBlanks: true},
		{Key: "Kern", Label: "May", DropStandards: true, DropDilutions: true, DropBlanks: true},
	}
	for i := range months {
		months[i].applyDefaults()
	}
	return months
}

// MonthByKey looks a month up by key, case-insensitively.
func (c *Config) MonthByKey(key string) (MonthConfig, bool) {
	for _, m := range c.Months {
		if strings.EqualFold(m.Key, key) {
			return m, true
		}
	}
	return MonthConfig{}, false
}

// SelectMonths returns the months named by keys in table order. An empty
// selection returns the whole table.
func (c *Config) SelectMonths(keys []string) ([]MonthConfig, error) {
	if len(keys) == 0 {
		out := make([]MonthConfig, len(c.Months))
		copy(out, c.Months)
		return out, nil
	}

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		m, ok := c.MonthByKey(strings.TrimSpace(k))
		if !ok {
			return nil, fmt.Errorf("unknown month %q", k)
		}
		wanted[m.Key] = true
	}

	var out []MonthConfig
	for _, m := range c.Months {
		if wanted[m.Key] {
			out = append(out, m)
		}
	}
	return out, nil
}
