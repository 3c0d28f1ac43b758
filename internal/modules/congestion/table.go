package congestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LoadTable reads the static congestion table from a JSON fixture. A missing
// file is not an error: the model falls back to its built-in defaults with an
// empty table. A malformed file is reported so the operator notices, but the
// caller is expected to continue with EmptyTable.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EmptyTable(), nil
		}
		return EmptyTable(), fmt.Errorf("read congestion table: %w", err)
	}

	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return EmptyTable(), fmt.Errorf("parse congestion table: %w", err)
	}
	if t.HourlyPatterns == nil {
		t.HourlyPatterns = map[string]map[string]float64{}
	}
	if t.SpecialEvents == nil {
		t.SpecialEvents = map[string]float64{}
	}
	if t.LocationFactors == nil {
		t.LocationFactors = map[string]float64{}
	}
	return t, nil
}

// EmptyTable returns a table with no entries; every lookup falls back to the
// model defaults.
func EmptyTable() Table {
	return Table{
		HourlyPatterns:  map[string]map[string]float64{},
		SpecialEvents:   map[string]float64{},
		LocationFactors: map[string]float64{},
	}
}
