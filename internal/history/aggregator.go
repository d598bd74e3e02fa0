package history

import (
	"encoding/csv"
	"io"
	"sort"
	"time"

	"github.com/spec-kit/loto-fleet/internal/domain"
)

// TaggedEntry is one history entry tagged with its owning unit's name.
type TaggedEntry struct {
	domain.HistoryEntry
	UnitName string `json:"unitName"`
}

// csvHeader is the fixed export header row.
var csvHeader = []string{"Timestamp", "Unit", "From", "To", "Technician", "Supervisor", "Foreman"}

const timestampLayout = "2006-01-02 15:04:05"

// Flatten produces every history entry across the fleet, newest first. The
// sort is stable, so entries with equal timestamps keep fleet order and the
// per-locker prepend order.
func Flatten(fleet domain.Fleet) []TaggedEntry {
	entries := make([]TaggedEntry, 0)
	for i := range fleet {
		for _, entry := range fleet[i].History {
			entries = append(entries, TaggedEntry{HistoryEntry: entry, UnitName: fleet[i].Name})
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Timestamp > entries[b].Timestamp
	})
	return entries
}

// ToTable maps tagged entries to fixed-column export rows. Pure formatting,
// no side effects.
func ToTable(entries []TaggedEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			time.UnixMilli(entry.Timestamp).Format(timestampLayout),
			entry.UnitName,
			string(entry.FromStatus),
			string(entry.ToStatus),
			entry.Technician,
			entry.Supervisor,
			entry.Foreman,
		})
	}
	return rows
}

// WriteCSV writes the header plus one row per entry. encoding/csv quotes
// fields containing delimiters or quotes, so free-text names cannot corrupt
// the export.
func WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
