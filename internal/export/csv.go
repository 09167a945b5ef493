package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/stitts-dev/dfs-sim/lineup-optimizer/internal/models"
)

// ScoreColumn follows the slot columns in the export header
const ScoreColumn = "FPTS"

// Header returns the export header: the slots in canonical order, then FPTS
func Header() []string {
	header := make([]string, 0, models.RosterSize+1)
	for _, slot := range models.RosterSlots {
		header = append(header, string(slot))
	}
	return append(header, ScoreColumn)
}

// Row renders a lineup as one export row with "Name (ID)" cells
func Row(lineup *models.Lineup) ([]string, error) {
	row := make([]string, 0, models.RosterSize+1)
	for _, slot := range models.RosterSlots {
		p, ok := lineup.PlayerAt(slot)
		if !ok {
			return nil, fmt.Errorf("lineup has no player in %s", slot)
		}
		row = append(row, PlayerCell(p))
	}
	return append(row, strconv.FormatFloat(lineup.TotalProjection, 'f', 2, 64)), nil
}

// PlayerCell formats a player the way the upload template expects
func PlayerCell(p models.Player) string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}

// WriteLineupCSV writes the header and one row per lineup
func WriteLineupCSV(w io.Writer, lineups ...*models.Lineup) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, lineup := range lineups {
		row, err := Row(lineup)
		if err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write lineup: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
