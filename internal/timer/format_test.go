package timer

import (
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	now := epoch
	fiveAgo := now.Add(-5 * time.Second).UnixMilli()
	future := now.Add(10 * time.Second).UnixMilli()

	tests := []struct {
		name         string
		elapsed      int64
		runningSince *int64
		want         string
	}{
		{"zero", 0, nil, "00:00:00"},
		{"hour minute second", 3661000, nil, "01:01:01"},
		{"sub-second floors", 999, nil, "00:00:00"},
		{"running", 0, &fiveAgo, "00:00:05"},
		{"running plus elapsed", 60000, &fiveAgo, "00:01:05"},
		{"no day rollover", 100 * 3600 * 1000, nil, "100:00:00"},
		{"clock behind start", 0, &future, "00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.elapsed, tt.runningSince, now)
			if got != tt.want {
				t.Errorf("Render(%d) = %q, want %q", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestRenderLiveClock(t *testing.T) {
	since := time.Now().Add(-5 * time.Second).UnixMilli()
	got := Render(0, &since, time.Now())
	if got != "00:00:05" && got != "00:00:04" && got != "00:00:06" {
		t.Fatalf("expected ~00:00:05, got %q", got)
	}
}

func TestEffective(t *testing.T) {
	since := epoch.Add(-1500 * time.Millisecond).UnixMilli()
	got := Effective(500, &since, epoch)
	if got != 2*time.Second {
		t.Fatalf("expected 2s, got %v", got)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.0h"},
		{time.Hour, "1.0h"},
		{90 * time.Minute, "1.5h"},
	}
	for _, tt := range tests {
		if got := FormatHours(tt.d); got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
