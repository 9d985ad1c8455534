package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// csvHeader is the column layout of cards.csv. The synchronizer writes it and
// the index builder reads it back.
var csvHeader = []string{"id", "name", "set", "number", "hp", "image_path"}

// ReadFile parses a cards.csv catalog snapshot.
//
// Columns are resolved by header name, not position. An hp cell that is not a
// plain non-negative integer is treated as absent rather than an error.
func ReadFile(path string) ([]CardRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open catalog %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid catalog CSV %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog %s has no header row", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, required := range []string{"id", "image_path"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catalog %s is missing required column %q", path, required)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]CardRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := CardRecord{
			ID:              cell(row, "id"),
			Name:            cell(row, "name"),
			SetCode:         cell(row, "set"),
			CollectorNumber: cell(row, "number"),
			ImagePath:       cell(row, "image_path"),
		}
		if rec.ID == "" {
			continue
		}
		rec.HP = ParseHP(cell(row, "hp"))
		out = append(out, rec)
	}
	return out, nil
}

// WriteFile writes a catalog snapshot as cards.csv.
func WriteFile(path string, records []CardRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create catalog %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return err
	}
	for _, rec := range records {
		hp := ""
		if rec.HP != nil {
			hp = strconv.Itoa(*rec.HP)
		}
		row := []string{rec.ID, rec.Name, rec.SetCode, rec.CollectorNumber, hp, rec.ImagePath}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write catalog %s: %w", path, err)
	}
	return f.Close()
}

// ParseHP converts a raw hp string into an optional value. Non-numeric forms
// ("None", "", "30+") yield nil.
func ParseHP(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
