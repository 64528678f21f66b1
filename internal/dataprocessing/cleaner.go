package dataprocessing

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

var (
	// A decimal number inside a Lims ID marks a dilution trial, e.g. Tollhouse1.1.
	dilutionPattern = regexp.MustCompile(`\d+\.\d+`)
	// The location is the first run of letters and whitespace.
	locationPattern = regexp.MustCompile(`[A-Za-z\s]+`)
)

// IsDilutionTrial reports whether id carries a dilution-trial suffix.
func IsDilutionTrial(id string) bool {
	return dilutionPattern.MatchString(id)
}

// IsBlank reports whether id contains any of markers, ignoring case.
// Matching is by substring, so an ID such as "Dixon" counts as a DI blank.
func IsBlank(id string, markers []string) bool {
	upper := strings.ToUpper(id)
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(upper, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}

// ExtractLocation returns the first run of letters and whitespace in id,
// trimmed. It returns "" when id has no letters.
func ExtractLocation(id string) string {
	return strings.TrimSpace(locationPattern.FindString(id))
}

// ParseConcentration coerces a raw cell to a finite number. Empty cells,
// NaN, infinities and text such as "<LOD" report false.
func ParseConcentration(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CleaningProfile selects which filters apply to a month.
type CleaningProfile struct {
	DropStandards bool
	DropDilutions bool
	DropBlanks    bool
	StandardType  string
	BlankMarkers  []string
}

// ProfileFor builds the cleaning profile of month.
func ProfileFor(month config.MonthConfig, analysis config.AnalysisConfig) CleaningProfile {
	return CleaningProfile{
		DropStandards: month.DropStandards,
		DropDilutions: month.DropDilutions,
		DropBlanks:    month.DropBlanks,
		StandardType:  analysis.StandardType,
		BlankMarkers:  analysis.BlankMarkers,
	}
}

// Cleaner turns raw sheet rows into readings ready for aggregation.
type Cleaner struct {
	profile CleaningProfile
	logger  *slog.Logger
}

// NewCleaner creates a cleaner for profile.
func NewCleaner(profile CleaningProfile, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{profile: profile, logger: logger}
}

// Clean filters rows and derives each reading's location. Every dropped row
// is counted under exactly one reason, checked in the order standard,
// dilution, blank, missing ID, non-numeric.
func (c *Cleaner) Clean(month string, rows []domain.RawReading) ([]domain.Reading, domain.CleaningStats) {
	stats := domain.CleaningStats{
		Total:   len(rows),
		Dropped: make(map[domain.DropReason]int),
	}
	out := make([]domain.Reading, 0, len(rows))

	for _, r := range rows {
		if reason, drop := c.dropReason(r); drop {
			stats.Dropped[reason]++
			continue
		}
		v, ok := ParseConcentration(r.Concentration)
		if !ok {
			stats.Dropped[domain.DropNonNumeric]++
			continue
		}
		out = append(out, domain.Reading{
			LimsID:        r.LimsID,
			Element:       r.Element,
			Concentration: v,
			Type:          r.Type,
			Month:         month,
			Location:      ExtractLocation(r.LimsID),
			Row:           r.Row,
		})
	}
	stats.Kept = len(out)

	c.logger.Debug("Cleaned readings",
		slog.String("month", month),
		slog.Int("total", stats.Total),
		slog.Int("kept", stats.Kept),
		slog.Int("dropped", stats.DroppedTotal()))

	return out, stats
}

func (c *Cleaner) dropReason(r domain.RawReading) (domain.DropReason, bool) {
	p := c.profile
	switch {
	case p.DropStandards && p.StandardType != "" && strings.EqualFold(r.Type, p.StandardType):
		return domain.DropStandard, true
	case p.DropDilutions && IsDilutionTrial(r.LimsID):
		return domain.DropDilution, true
	case p.DropBlanks && IsBlank(r.LimsID, p.BlankMarkers):
		return domain.DropBlank, true
	case r.LimsID == "":
		return domain.DropMissingID, true
	}
	return "", false
}
