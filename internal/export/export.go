package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/timers/internal/timer"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var Formats = []Format{FormatCSV, FormatJSON}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// Filename is the default export file name in dir, e.g. timers-export-2024-03-01.csv.
func Filename(dir string, f Format, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("timers-export-%s.%s", now.Format("2006-01-02"), f))
}

func Write(f Format, timers timer.Collection, now time.Time, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(timers, now, path)
	case FormatJSON:
		return ToJSON(timers, now, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}
