package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timers/internal/timer"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Timers     []jsonTimer `json:"timers"`
}

type jsonTimer struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Project      string `json:"project"`
	ElapsedMS    int64  `json:"elapsed_ms"`
	EffectiveMS  int64  `json:"effective_ms"`
	Duration     string `json:"duration"`
	Running      bool   `json:"running"`
	RunningSince string `json:"running_since,omitempty"`
}

func ToJSON(timers timer.Collection, now time.Time, path string) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(timers),
	}

	for _, r := range timers {
		since := ""
		if start, ok := r.StartedAt(); ok {
			since = start.Local().Format(time.RFC3339)
		}

		export.Timers = append(export.Timers, jsonTimer{
			ID:           r.ID,
			Title:        r.Title,
			Project:      r.Project,
			ElapsedMS:    r.Elapsed,
			EffectiveMS:  r.Effective(now).Milliseconds(),
			Duration:     r.Render(now),
			Running:      r.Running(),
			RunningSince: since,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
