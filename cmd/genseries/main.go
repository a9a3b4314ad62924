// Command genseries generates synthetic monthly ET and NDVI payloads shaped
// like OpenET raster timeseries responses, plus the processed report built
// from them. It uses the actual analysis package so fixtures stay in step
// with real service behavior.
//
// Usage:
//
//	go run ./cmd/genseries \
//	  -start 2022-01 -end 2023-12 -seed 42 \
//	  -et-out data/mock/et_monthly.json \
//	  -ndvi-out data/mock/ndvi_monthly.json \
//	  -report-out data/mock/report.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agriscope/et-insight-service/internal/domain"
)

const monthLayout = "2006-01"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	start := flag.String("start", "2022-01", "first month (YYYY-MM)")
	end := flag.String("end", "2023-12", "last month (YYYY-MM)")
	seed := flag.Int64("seed", 42, "random seed for reproducible noise")
	etOut := flag.String("et-out", "", "output path for the ET payload")
	ndviOut := flag.String("ndvi-out", "", "output path for the NDVI payload")
	reportOut := flag.String("report-out", "", "output path for the processed report")
	flag.Parse()

	if *etOut == "" || *ndviOut == "" || *reportOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -et-out, -ndvi-out, -report-out")
	}

	from, err := time.Parse(monthLayout, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	to, err := time.Parse(monthLayout, *end)
	if err != nil {
		return fmt.Errorf("parse -end: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("-end precedes -start")
	}

	rng := rand.New(rand.NewSource(*seed))
	etSeries, ndviSeries := generate(from, to, rng)

	etRaw, err := json.MarshalIndent(etSeries, "", "  ")
	if err != nil {
		return err
	}
	ndviRaw, err := json.MarshalIndent(ndviSeries, "", "  ")
	if err != nil {
		return err
	}

	// Fix the clock for a reproducible report timestamp.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.January, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	report := domain.BuildReport(etRaw, ndviRaw, "Synthetic field", logger)

	if err := writeFile(*etOut, etRaw); err != nil {
		return fmt.Errorf("writing ET payload: %w", err)
	}
	log.Printf("wrote ET payload: %s (%d months)", *etOut, len(etSeries))

	if err := writeFile(*ndviOut, ndviRaw); err != nil {
		return fmt.Errorf("writing NDVI payload: %w", err)
	}
	log.Printf("wrote NDVI payload: %s (%d months)", *ndviOut, len(ndviSeries))

	reportRaw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFile(*reportOut, reportRaw); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	log.Printf("wrote report: %s", *reportOut)

	printStats(report)
	return nil
}

// generate builds one observation per month. ET follows a northern-hemisphere
// seasonal curve peaking in July; NDVI greens up in spring and senesces in
// fall. Both carry seeded noise so multi-year series are not identical.
func generate(from, to time.Time, rng *rand.Rand) (et, ndvi []map[string]any) {
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		// Phase peaks at July (month 7).
		phase := math.Cos(2 * math.Pi * float64(int(m.Month())-7) / 12)

		etVal := 45 + 40*phase + rng.NormFloat64()*6
		if etVal < 2 {
			etVal = 2
		}
		ndviVal := 0.42 + 0.22*phase + rng.NormFloat64()*0.04
		ndviVal = math.Max(0.05, math.Min(0.9, ndviVal))

		date := m.Format("2006-01-02")
		et = append(et, map[string]any{"time": date, "et": math.Round(etVal*10) / 10})
		ndvi = append(ndvi, map[string]any{"time": date, "ndvi": math.Round(ndviVal*1000) / 1000})
	}
	return et, ndvi
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(report domain.Report) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("ET observations: %d, mean: %g\n", report.ET.ValuesFound, report.ET.Mean)
	fmt.Printf("NDVI observations: %d, mean: %g\n", report.NDVI.ValuesFound, report.NDVI.Mean)

	if a := report.ETAnalysis; a != nil {
		fmt.Printf("Total ET: %d mm (%g in)\n", a.TotalETMm, a.TotalETInches)
		fmt.Printf("Growing season ET: %d mm (%g in)\n", a.GrowingSeasonETMm, a.GrowingSeasonETInches)
		fmt.Printf("Peak month: %s\n", a.PeakETMonth)
		fmt.Printf("Trend: %s (%g mm/month)\n", a.MonthlyTrend, a.TrendSlopeMmPerMonth)
		fmt.Printf("Variability: std=%g cv=%g (%s)\n",
			a.ETVariability.StdDevMm, a.ETVariability.CoefficientOfVariation, a.ETVariability.Consistency)
		fmt.Printf("Water use: %s\n", a.WaterUseClass)
		fmt.Printf("Yearly totals: %v\n", a.YearlyTotalsMm)
	}
	if v := report.VegetationSummary; v != nil {
		fmt.Printf("Vigor: %s (mean NDVI %g)\n", v.VigorClassification, v.MeanNDVI)
	}
}
