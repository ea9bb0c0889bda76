package batch

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Target is one star in a dataset group.
type Target struct {
	Name string
	RA   float64
	Dec  float64
	// Mag is the approximate optical magnitude used to filter catalog
	// candidates; nil when the dataset carries none.
	Mag *float64
}

// ListGroups returns the group names available in the dataset directory.
func ListGroups(datasetDir string) ([]string, error) {
	entries, err := os.ReadDir(datasetDir)
	if err != nil {
		return nil, fmt.Errorf("read dataset directory: %w", err)
	}
	groups := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		groups = append(groups, strings.TrimSuffix(entry.Name(), ".csv"))
	}
	sort.Strings(groups)
	return groups, nil
}

// LoadGroup reads the named group's target list. The file layout is a CSV
// with header name,ra,dec,mag; mag may be empty per row.
func LoadGroup(datasetDir, group string) ([]Target, error) {
	if strings.ContainsAny(group, `/\`) {
		return nil, fmt.Errorf("invalid group name %q", group)
	}
	path := filepath.Join(datasetDir, group+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open group %s: %w", group, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse group %s: %w", group, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("group %s is empty", group)
	}

	header := records[0]
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "ra", "dec"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("group %s missing column %q", group, required)
		}
	}

	targets := make([]Target, 0, len(records)-1)
	for line, record := range records[1:] {
		target := Target{Name: strings.TrimSpace(record[col["name"]])}
		if target.Name == "" {
			return nil, fmt.Errorf("group %s row %d: empty name", group, line+2)
		}
		if target.RA, err = strconv.ParseFloat(strings.TrimSpace(record[col["ra"]]), 64); err != nil {
			return nil, fmt.Errorf("group %s row %d: ra: %w", group, line+2, err)
		}
		if target.Dec, err = strconv.ParseFloat(strings.TrimSpace(record[col["dec"]]), 64); err != nil {
			return nil, fmt.Errorf("group %s row %d: dec: %w", group, line+2, err)
		}
		if magIdx, ok := col["mag"]; ok && magIdx < len(record) {
			raw := strings.TrimSpace(record[magIdx])
			if raw != "" {
				mag, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, fmt.Errorf("group %s row %d: mag: %w", group, line+2, err)
				}
				target.Mag = &mag
			}
		}
		targets = append(targets, target)
	}
	return targets, nil
}
