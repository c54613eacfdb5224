package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/timers/internal/timer"
)

func ToCSV(timers timer.Collection, now time.Time, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Header
	if err := w.Write([]string{"ID", "Title", "Project", "Elapsed (ms)", "Duration", "Running Since"}); err != nil {
		return err
	}

	for _, r := range timers {
		since := ""
		if start, ok := r.StartedAt(); ok {
			since = start.Local().Format(time.RFC3339)
		}

		row := []string{
			r.ID,
			r.Title,
			r.Project,
			strconv.FormatInt(r.Elapsed, 10),
			r.Render(now),
			since,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
