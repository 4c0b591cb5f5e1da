package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timewallet/internal/api"
)

func sampleTasks() []api.Task {
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	return []api.Task{
		{
			ID:         "t1",
			Title:      "Write report",
			CategoryID: "c1",
			Date:       "2026-08-31",
			Start:      start,
			End:        start.Add(90 * time.Minute),
			Done:       true,
			Notes:      "quarterly",
		},
		{
			ID:         "t2",
			Title:      "Dangling category",
			CategoryID: "gone",
			Date:       "2026-08-31",
			Start:      start,
			End:        start, // zero duration
		},
	}
}

func testResolver(id string) api.Category {
	if id == "c1" {
		return api.Category{ID: "c1", Name: "Work", Color: "#2D967C"}
	}
	return api.Category{ID: id, Name: "Unknown Category", Color: "#666666"}
}

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, ToCSV(sampleTasks(), testResolver, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two rows")

	assert.Equal(t, "ID", records[0][0])
	assert.Equal(t, "Write report", records[1][1])
	assert.Equal(t, "Work", records[1][2])
	assert.Equal(t, "true", records[1][6])
	assert.Equal(t, "01:30:00", records[1][7])

	// Dangling reference degrades instead of failing the export.
	assert.Equal(t, "Unknown Category", records[2][2])
	assert.Equal(t, "00:00:00", records[2][7])
}

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, ToJSON(sampleTasks(), testResolver, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out struct {
		ExportedAt string `json:"exported_at"`
		Count      int    `json:"count"`
		Tasks      []struct {
			ID       string `json:"id"`
			Category string `json:"category"`
			Done     bool   `json:"done"`
			Duration string `json:"duration"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, 2, out.Count)
	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "t1", out.Tasks[0].ID)
	assert.Equal(t, "Work", out.Tasks[0].Category)
	assert.True(t, out.Tasks[0].Done)
	assert.Equal(t, "01:30:00", out.Tasks[0].Duration)
	assert.NotEmpty(t, out.ExportedAt)
}

func TestFormatDurationClampsNegative(t *testing.T) {
	assert.Equal(t, "00:00:00", formatDuration(-time.Hour))
	assert.Equal(t, "02:05:09", formatDuration(2*time.Hour+5*time.Minute+9*time.Second))
}
