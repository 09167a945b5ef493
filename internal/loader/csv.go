package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

var requiredColumns = []string{FieldName, FieldTeam, FieldPosition, FieldID, FieldSalary, FieldProjection}

// ReadCSV reads a DraftKings salary export. Columns are matched by header
// name and extra columns are ignored. Values are returned unvalidated;
// pass them to Load.
func ReadCSV(r io.Reader) ([]models.RawPlayer, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("player pool is empty: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	names := make([]string, len(header))
	for i, name := range header {
		// Excel exports prefix the first cell with a BOM
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		index[name] = i
		names[i] = name
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &MissingColumnError{Column: col, Header: names}
		}
	}

	var records []models.RawPlayer
	for n := 1; ; n++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", n, err)
		}

		cell := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}
		records = append(records, models.RawPlayer{
			Name:             cell(FieldName),
			TeamAbbrev:       cell(FieldTeam),
			Position:         cell(FieldPosition),
			ID:               cell(FieldID),
			Salary:           cell(FieldSalary),
			AvgPointsPerGame: cell(FieldProjection),
		})
	}

	return records, nil
}

// LoadCSV reads and validates a pool in one step
func LoadCSV(r io.Reader) (*Registry, error) {
	records, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return Load(records)
}
