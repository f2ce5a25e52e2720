// Command validate checks generated reading fixtures against the dataset
// invariants: table shape, calendar contiguity, clamp bounds, and CSV/JSON
// parity. It exits non-zero when any phase fails.
//
// Usage:
//
//	go run ./cmd/validate -year 2024 -days 365 \
//	  -csv data/fixtures/readings_2024.csv \
//	  -json data/fixtures/readings_2024.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/verdantlab/envsim-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the CSV fixture")
	jsonPath := flag.String("json", "", "path to the JSON fixture")
	year := flag.Int("year", 2024, "year the fixtures were generated for")
	days := flag.Int("days", 365, "days per region the fixtures were generated with")
	flag.Parse()

	if *csvPath == "" || *jsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *jsonPath, *year, *days); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, jsonPath string, year, days int) int {
	fmt.Println("=== Reading Fixture Validation ===")
	fmt.Println()

	readings, err := loadJSON(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load JSON fixture: %v\n", err)
		return 1
	}

	rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateShape(readings, days),
		validateCalendar(readings, year, days),
		validateBounds(readings),
		validateParity(readings, rows),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d JSON, %d CSV\n", len(readings), len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadJSON(path string) ([]domain.Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var readings []domain.Reading
	if err := json.Unmarshal(data, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// csvRow is one parsed fixture row.
type csvRow struct {
	lineNum int
	date    string
	region  string
	values  [3]float64
}

func loadCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := []string{"date", "region", "air_quality_pm25", "soil_moisture", "pollution_index"}
	for i, h := range header {
		if i >= len(all[0]) || all[0][i] != h {
			return nil, fmt.Errorf("unexpected header %v, want %v", all[0], header)
		}
	}

	rows := make([]csvRow, 0, len(all)-1)
	for i, rec := range all[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("line %d: %d fields, want %d", i+2, len(rec), len(header))
		}
		row := csvRow{lineNum: i + 2, date: rec[0], region: rec[1]}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(rec[j+2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", i+2, header[j+2], err)
			}
			row.values[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ── Phase 1: Table Shape ──
// The dataset must hold exactly days rows per region, region-major in
// generation order.

func validateShape(readings []domain.Reading, days int) *phase {
	p := &phase{name: "Phase 1: Table Shape"}

	regions := domain.Regions()
	want := len(regions) * days
	if len(readings) != want {
		p.errorf("total rows: expected %d, got %d", want, len(readings))
		return p
	}

	for ri, region := range regions {
		for i := 0; i < days; i++ {
			idx := ri*days + i
			if readings[idx].Region != region {
				p.errorf("row %d: expected region %s, got %s", idx, region, readings[idx].Region)
			}
		}
	}
	return p
}

// ── Phase 2: Calendar Contiguity ──
// Each region's dates must run daily from January 1 of the year with no
// gaps, duplicates, or reordering.

func validateCalendar(readings []domain.Reading, year, days int) *phase {
	p := &phase{name: "Phase 2: Calendar Contiguity"}

	start := domain.StartOfYear(year)
	perRegion := map[domain.Region][]time.Time{}
	for _, r := range readings {
		perRegion[r.Region] = append(perRegion[r.Region], r.Date)
	}

	for _, region := range domain.Regions() {
		dates := perRegion[region]
		if len(dates) != days {
			p.errorf("%s: expected %d dates, got %d", region, days, len(dates))
			continue
		}
		for i, d := range dates {
			want := start.AddDate(0, 0, i)
			if !d.Equal(want) {
				p.errorf("%s day %d: expected %s, got %s", region, i,
					want.Format(domain.DateLayout), d.Format(domain.DateLayout))
			}
		}
	}
	return p
}

// ── Phase 3: Clamp Bounds ──
// Every value must lie inside its metric's inclusive [Min, Max] range.

func validateBounds(readings []domain.Reading) *phase {
	p := &phase{name: "Phase 3: Clamp Bounds"}

	for i, r := range readings {
		for _, m := range domain.Metrics() {
			spec := m.Spec()
			v := r.Value(m)
			if v < spec.Min || v > spec.Max {
				p.errorf("row %d (%s %s): %s=%g outside [%g, %g]",
					i, r.Date.Format(domain.DateLayout), r.Region, m, v, spec.Min, spec.Max)
			}
		}
	}
	return p
}

// ── Phase 4: CSV/JSON Parity ──
// Both fixture forms must describe the same table, row for row.

func validateParity(readings []domain.Reading, rows []csvRow) *phase {
	p := &phase{name: "Phase 4: CSV/JSON Parity"}

	if len(readings) != len(rows) {
		p.errorf("JSON has %d rows, CSV has %d", len(readings), len(rows))
		return p
	}

	for i, r := range readings {
		row := rows[i]
		if d := r.Date.Format(domain.DateLayout); d != row.date {
			p.errorf("line %d: date: JSON=%s, CSV=%s", row.lineNum, d, row.date)
		}
		if string(r.Region) != row.region {
			p.errorf("line %d: region: JSON=%s, CSV=%s", row.lineNum, r.Region, row.region)
		}
		jsonVals := [3]float64{r.AirQualityPM25, r.SoilMoisture, r.PollutionIndex}
		for j, v := range jsonVals {
			if !floatEq(v, row.values[j]) {
				p.errorf("line %d: %s: JSON=%g, CSV=%g",
					row.lineNum, domain.Metrics()[j], v, row.values[j])
			}
		}
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
