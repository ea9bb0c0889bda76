package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds describe-style statistics for one derived column.
type ColumnSummary struct {
	Name   string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe computes per-column summary statistics for a frame, in column
// order.
func Describe(frame *Frame) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(frame.Columns))
	for _, name := range frame.Columns {
		values, _ := frame.Column(name)
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)

		summary := ColumnSummary{Name: name, Count: len(values)}
		if len(values) > 0 {
			summary.Mean = stat.Mean(values, nil)
			summary.Std = stat.StdDev(values, nil)
			summary.Min = sorted[0]
			summary.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
			summary.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
			summary.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
			summary.Max = sorted[len(sorted)-1]
		}
		out = append(out, summary)
	}
	return out
}

// WriteSummaryCSV writes the describe-style summary in the transposed
// layout: one row per column, statistics across.
func WriteSummaryCSV(path string, summaries []ColumnSummary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, s := range summaries {
		record := []string{
			s.Name,
			strconv.Itoa(s.Count),
			formatStat(s.Mean),
			formatStat(s.Std),
			formatStat(s.Min),
			formatStat(s.Q25),
			formatStat(s.Median),
			formatStat(s.Q75),
			formatStat(s.Max),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	return nil
}

// ReadSummaryCSV loads a summary file written by WriteSummaryCSV.
func ReadSummaryCSV(path string) ([]ColumnSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("summary %s is empty", path)
	}

	out := make([]ColumnSummary, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 9 {
			return nil, fmt.Errorf("summary row has %d fields, want 9", len(record))
		}
		count, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("parse count: %w", err)
		}
		values := make([]float64, 7)
		for i := range values {
			if values[i], err = strconv.ParseFloat(record[i+2], 64); err != nil {
				return nil, fmt.Errorf("parse %s stat: %w", record[0], err)
			}
		}
		out = append(out, ColumnSummary{
			Name: record[0], Count: count,
			Mean: values[0], Std: values[1], Min: values[2],
			Q25: values[3], Median: values[4], Q75: values[5], Max: values[6],
		})
	}
	return out, nil
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// SamplingSummary is the sampler diagnostics artifact for one fit.
type SamplingSummary struct {
	RunID     string  `json:"run_id"`
	NLive     int     `json:"nlive"`
	NIter     int     `json:"niter"`
	NCall     int     `json:"ncall"`
	Eff       float64 `json:"eff"`
	LogZ      float64 `json:"logz"`
	LogZErr   float64 `json:"logzerr"`
	TotalTime float64 `json:"total_time"` // minutes
}

// WriteSamplingSummary persists the diagnostics JSON.
func WriteSamplingSummary(path string, summary SamplingSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sampling summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write sampling summary: %w", err)
	}
	return nil
}

// ReadSamplingSummary loads the diagnostics JSON.
func ReadSamplingSummary(path string) (SamplingSummary, error) {
	var summary SamplingSummary
	data, err := os.ReadFile(path)
	if err != nil {
		return summary, fmt.Errorf("read sampling summary: %w", err)
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("parse sampling summary: %w", err)
	}
	return summary, nil
}
