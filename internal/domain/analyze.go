package domain

import (
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// mmToInches is the conversion factor used by the upstream OpenET tooling.
const mmToInches = 0.0393701

// etDateLayout is the calendar-date format the provider delivers.
const etDateLayout = "2006-01-02"

// AnalysisDateRange is the actual data coverage of the analyzed series, not
// the requested query range.
type AnalysisDateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SeasonalTotals buckets ET by meteorological season.
type SeasonalTotals struct {
	Winter int `json:"winter"` // Dec, Jan, Feb
	Spring int `json:"spring"` // Mar, Apr, May
	Summer int `json:"summer"` // Jun, Jul, Aug
	Fall   int `json:"fall"`   // Sep, Oct, Nov
}

// Variability describes the spread of the monthly ET series.
type Variability struct {
	StdDevMm               float64 `json:"std_dev_mm"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Consistency            string  `json:"consistency"`
}

// ETAnalysis is the full statistical and classification report derived from
// a monthly ET series.
type ETAnalysis struct {
	TotalETMm             int               `json:"total_et_mm"`
	MeanMonthlyETMm       float64           `json:"mean_monthly_et_mm"`
	MaxMonthlyETMm        int               `json:"max_monthly_et_mm"`
	MinMonthlyETMm        int               `json:"min_monthly_et_mm"`
	PeakETMonth           string            `json:"peak_et_month"`
	TotalETInches         float64           `json:"total_et_inches"`
	GrowingSeasonETMm     int               `json:"growing_season_et_mm"`
	GrowingSeasonETInches float64           `json:"growing_season_et_inches"`
	Observations          int               `json:"observations"`
	DateRange             AnalysisDateRange `json:"date_range"`
	YearlyTotalsMm        map[int]int       `json:"yearly_totals_mm"`
	SeasonalTotalsMm      SeasonalTotals    `json:"seasonal_totals_mm"`
	MonthlyTrend          string            `json:"monthly_trend"`
	TrendSlopeMmPerMonth  float64           `json:"trend_slope_mm_per_month"`
	ETVariability         Variability       `json:"et_variability"`
	WaterUseClass         string            `json:"water_use_classification"`
	WaterUseDescription   string            `json:"water_use_description"`
}

// AnalyzeET derives the full statistical report from an ordered monthly ET
// series. Observations whose date does not parse are skipped with a warning;
// analysis continues on what remains. Returns nil when no usable observations
// survive, which the report layer serializes as an empty object.
func AnalyzeET(observations []Observation, logger *slog.Logger) *ETAnalysis {
	if len(observations) == 0 {
		return nil
	}

	// Dates and values are filtered together to keep them index-aligned;
	// peak-month lookup depends on it.
	dates := make([]time.Time, 0, len(observations))
	values := make([]float64, 0, len(observations))
	for _, o := range observations {
		t, err := time.Parse(etDateLayout, o.Date)
		if err != nil {
			logger.Warn("skipping ET observation with invalid date", "date", o.Date)
			continue
		}
		dates = append(dates, t)
		values = append(values, o.Value)
	}
	if len(values) == 0 {
		return nil
	}

	total := floats.Sum(values)
	totalMm := int(roundPlaces(total, 0))
	meanMonthly := roundPlaces(stat.Mean(values, nil), 1)

	// First maximal value wins on ties, in input order.
	peakIdx := floats.MaxIdx(values)

	growingTotal := 0.0
	yearly := make(map[int]float64)
	seasonRaw := map[string]float64{}
	for i, t := range dates {
		v := values[i]
		month := t.Month()
		if month >= time.April && month <= time.October {
			growingTotal += v
		}
		yearly[t.Year()] += v
		switch month {
		case time.December, time.January, time.February:
			seasonRaw["winter"] += v
		case time.March, time.April, time.May:
			seasonRaw["spring"] += v
		case time.June, time.July, time.August:
			seasonRaw["summer"] += v
		default:
			seasonRaw["fall"] += v
		}
	}
	seasons := SeasonalTotals{
		Winter: int(roundPlaces(seasonRaw["winter"], 0)),
		Spring: int(roundPlaces(seasonRaw["spring"], 0)),
		Summer: int(roundPlaces(seasonRaw["summer"], 0)),
		Fall:   int(roundPlaces(seasonRaw["fall"], 0)),
	}

	yearlyTotals := make(map[int]int, len(yearly))
	for year, sum := range yearly {
		yearlyTotals[year] = int(roundPlaces(sum, 0))
	}

	growingMm := int(roundPlaces(growingTotal, 0))

	return &ETAnalysis{
		TotalETMm:       totalMm,
		MeanMonthlyETMm: meanMonthly,
		MaxMonthlyETMm:  int(roundPlaces(floats.Max(values), 0)),
		MinMonthlyETMm:  int(roundPlaces(floats.Min(values), 0)),
		PeakETMonth:     dates[peakIdx].Format(etDateLayout),
		// Inches convert from the whole-unit-rounded mm totals, reproducing
		// the reference outputs bit for bit.
		TotalETInches:         roundPlaces(float64(totalMm)*mmToInches, 2),
		GrowingSeasonETMm:     growingMm,
		GrowingSeasonETInches: roundPlaces(float64(growingMm)*mmToInches, 2),
		Observations:          len(values),
		DateRange: AnalysisDateRange{
			Start: dates[0].Format(etDateLayout),
			End:   dates[len(dates)-1].Format(etDateLayout),
		},
		YearlyTotalsMm:       yearlyTotals,
		SeasonalTotalsMm:     seasons,
		MonthlyTrend:         classifyTrend(values),
		TrendSlopeMmPerMonth: trendSlope(values),
		ETVariability:        variability(values, meanMonthly),
		WaterUseClass:        classifyWaterUse(meanMonthly),
		WaterUseDescription:  describeWaterUse(meanMonthly),
	}
}

// fitSlope fits a first-degree least-squares line of value against
// observation index. Index, not elapsed calendar time: irregular sampling
// intervals are ignored by design. Returns 0 when a line cannot be fit.
func fitSlope(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	idx := make([]float64, len(values))
	for i := range idx {
		idx[i] = float64(i)
	}
	_, slope := stat.LinearRegression(idx, values, nil, false)
	return slope
}

// trendSlope is the reported slope, rounded to 3 decimals.
func trendSlope(values []float64) float64 {
	return roundPlaces(fitSlope(values), 3)
}

// classifyTrend labels the unrounded slope: within ±0.1 mm/month is stable.
func classifyTrend(values []float64) string {
	slope := fitSlope(values)
	switch {
	case math.Abs(slope) < 0.1:
		return "stable"
	case slope > 0:
		return "increasing"
	default:
		return "decreasing"
	}
}

// variability computes population standard deviation and the coefficient of
// variation. Both the cv and its consistency label derive from the
// display-rounded std dev and mean, matching the reference outputs.
func variability(values []float64, meanMonthly float64) Variability {
	stdDev := roundPlaces(stat.PopStdDev(values, nil), 1)

	cv := 0.0
	if meanMonthly > 0 {
		cv = roundPlaces(stdDev/meanMonthly, 2)
	}

	consistency := "low"
	switch {
	case cv < 0.3:
		consistency = "high"
	case cv < 0.6:
		consistency = "moderate"
	}

	return Variability{
		StdDevMm:               stdDev,
		CoefficientOfVariation: cv,
		Consistency:            consistency,
	}
}

func classifyWaterUse(meanMonthly float64) string {
	switch {
	case meanMonthly < 30:
		return "low_water_use"
	case meanMonthly < 50:
		return "moderate_water_use"
	case meanMonthly < 70:
		return "high_water_use"
	default:
		return "very_high_water_use"
	}
}

func describeWaterUse(meanMonthly float64) string {
	switch {
	case meanMonthly < 30:
		return "Low water consumption"
	case meanMonthly < 50:
		return "Moderate water consumption"
	case meanMonthly < 70:
		return "High water consumption"
	default:
		return "Significantly high water consumption"
	}
}

// roundPlaces rounds half-to-even at the given number of decimal places.
// Half-to-even is what downstream consumers' golden outputs were produced
// with, so plain half-away rounding would drift on .5 boundaries.
func roundPlaces(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
