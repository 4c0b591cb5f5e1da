package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"timewallet/internal/api"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Done     bool   `json:"done"`
	Duration string `json:"duration"`
	Notes    string `json:"notes,omitempty"`
}

func ToJSON(tasks []api.Task, resolve CategoryResolver, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		out.Tasks = append(out.Tasks, jsonTask{
			ID:       t.ID,
			Title:    t.Title,
			Category: resolve(t.CategoryID).Name,
			Date:     t.Date,
			Start:    t.Start.Local().Format(time.RFC3339),
			End:      t.End.Local().Format(time.RFC3339),
			Done:     t.Done,
			Duration: formatDuration(t.End.Sub(t.Start)),
			Notes:    t.Notes,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
