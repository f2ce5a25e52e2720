// Command genfixtures generates reproducible reading fixtures for test
// suites and local development: a CSV table and a JSON file holding the same
// seeded dataset.
//
// Usage:
//
//	go run ./cmd/genfixtures -year 2024 -days 365 -seed 42 \
//	  -csv-out data/fixtures/readings_2024.csv \
//	  -json-out data/fixtures/readings_2024.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/verdantlab/envsim-dashboard/internal/domain"
	"github.com/verdantlab/envsim-dashboard/internal/simulate"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	year := flag.Int("year", 2024, "simulation year")
	days := flag.Int("days", 365, "days per region")
	seed := flag.Int64("seed", 42, "random seed (0 seeds from the clock)")
	csvOut := flag.String("csv-out", "", "output path for the CSV fixture")
	jsonOut := flag.String("json-out", "", "output path for the JSON fixture")
	flag.Parse()

	if *csvOut == "" || *jsonOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv-out, -json-out")
	}

	// Freeze the clock so GeneratedAt stamps are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	ds := simulate.New(*seed).Generate(*year, *days)
	log.Printf("generated dataset: year=%d days=%d readings=%d", ds.Year, ds.Days, len(ds.Readings))

	if err := writeCSV(*csvOut, ds.Readings); err != nil {
		return fmt.Errorf("writing CSV fixture: %w", err)
	}
	log.Printf("wrote CSV fixture: %s", *csvOut)

	if err := writeJSON(*jsonOut, ds.Readings); err != nil {
		return fmt.Errorf("writing JSON fixture: %w", err)
	}
	log.Printf("wrote JSON fixture: %s", *jsonOut)

	printStats(ds)
	return nil
}

func writeCSV(path string, readings []domain.Reading) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "region", "air_quality_pm25", "soil_moisture", "pollution_index"}); err != nil {
		return err
	}
	for _, r := range readings {
		rec := []string{
			r.Date.Format(domain.DateLayout),
			string(r.Region),
			formatValue(r.AirQualityPM25),
			formatValue(r.SoilMoisture),
			formatValue(r.PollutionIndex),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// formatValue keeps full float precision so the CSV and JSON fixtures agree
// bit for bit after parsing.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// metricStats holds aggregates for one metric across the dataset.
type metricStats struct {
	min, max, sum float64
}

func printStats(ds domain.Dataset) {
	regionCounts := map[domain.Region]int{}
	stats := map[domain.Metric]*metricStats{}
	for _, m := range domain.Metrics() {
		stats[m] = &metricStats{min: math.Inf(1), max: math.Inf(-1)}
	}

	for _, r := range ds.Readings {
		regionCounts[r.Region]++
		for _, m := range domain.Metrics() {
			v := r.Value(m)
			s := stats[m]
			s.sum += v
			if v < s.min {
				s.min = v
			}
			if v > s.max {
				s.max = v
			}
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(ds.Readings))
	fmt.Print("Per region:")
	for _, region := range domain.Regions() {
		fmt.Printf(" %s=%d", region, regionCounts[region])
	}
	fmt.Println()

	n := float64(len(ds.Readings))
	for _, m := range domain.Metrics() {
		s := stats[m]
		if n == 0 {
			fmt.Printf("%s: no readings\n", m)
			continue
		}
		fmt.Printf("%s: min=%.2f max=%.2f mean=%.2f\n", m, s.min, s.max, s.sum/n)
	}

	if len(ds.Readings) > 0 {
		first := ds.Readings[0]
		fmt.Printf("\nFirst reading: date=%s region=%s pm25=%.4f soil=%.4f pollution=%.4f\n",
			first.Date.Format(domain.DateLayout), first.Region,
			first.AirQualityPM25, first.SoilMoisture, first.PollutionIndex)
	}
}
