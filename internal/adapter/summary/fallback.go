package summary

import (
	"fmt"

	"github.com/agriscope/et-insight-service/internal/domain"
)

// Fallback builds a deterministic narrative from the report's own numbers.
// It is used when the summarizer is disabled or unavailable so the response
// shape stays stable for downstream consumers.
func Fallback(report domain.Report) domain.TextSummary {
	observationNote := fmt.Sprintf(
		"OpenET returned %d ET and %d NDVI monthly observations for %s.",
		report.ET.ValuesFound, report.NDVI.ValuesFound, report.ET.Location)

	trend := observationNote + " Automated trend narrative is unavailable; the monthly series above supports manual pattern review."
	if a := report.ETAnalysis; a != nil {
		trend = fmt.Sprintf(
			"%s Monthly ET totaled %d mm (%g in) over %s to %s with a %s trend (%g mm/month) and %s consumption.",
			observationNote, a.TotalETMm, a.TotalETInches, a.DateRange.Start, a.DateRange.End,
			a.MonthlyTrend, a.TrendSlopeMmPerMonth, a.WaterUseClass)
	}

	timing := "Timing analysis requires the narrative summarizer; acquisition dates in the data points above support scene-by-scene review."
	if a := report.ETAnalysis; a != nil {
		timing = fmt.Sprintf(
			"Peak water use was observed in %s, with growing-season ET of %d mm (%g in). Month-by-month timing review can be performed against the data points above.",
			a.PeakETMonth, a.GrowingSeasonETMm, a.GrowingSeasonETInches)
	}

	continuity := "Multi-year continuity analysis requires the narrative summarizer."
	if a := report.ETAnalysis; a != nil && len(a.YearlyTotalsMm) > 0 {
		continuity = fmt.Sprintf(
			"Yearly ET totals %v mm provide a baseline for assessing practice continuity across seasons.",
			a.YearlyTotalsMm)
	}

	overall := observationNote + " Note: AI summarization service temporarily unavailable - automated summary generation pending. Manual review recommended for detailed interpretation."
	if v := report.VegetationSummary; v != nil {
		overall = fmt.Sprintf(
			"%s Mean NDVI of %g indicates %s. Note: AI summarization service temporarily unavailable - automated summary generation pending.",
			observationNote, v.MeanNDVI, v.VigorClassification)
	}

	return domain.TextSummary{
		TrendConsistency:   trend,
		TimingAlignment:    timing,
		ContinuityOverTime: continuity,
		AISummary:          overall,
	}
}
