package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"timewallet/internal/api"
)

// CategoryResolver maps a category reference to its display form.
// Dangling references must degrade, not fail.
type CategoryResolver func(id string) api.Category

func ToCSV(tasks []api.Task, resolve CategoryResolver, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Title", "Category", "Date", "Start", "End", "Done", "Duration", "Notes"}); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			t.ID,
			t.Title,
			resolve(t.CategoryID).Name,
			t.Date,
			t.Start.Local().Format(time.RFC3339),
			t.End.Local().Format(time.RFC3339),
			fmt.Sprintf("%t", t.Done),
			formatDuration(t.End.Sub(t.Start)),
			t.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Seconds())
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
