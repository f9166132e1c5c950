package progress

import (
	"testing"
	"time"

	"soundsteps/internal/models"
)

func TestApplyStreak(t *testing.T) {
	tests := []struct {
		name         string
		lastPlayDate string
		streak       int
		now          string
		wantStreak   int
	}{
		{name: "first ever play", lastPlayDate: "", streak: 0, now: "2026-03-10", wantStreak: 1},
		{name: "second play same day", lastPlayDate: "2026-03-10", streak: 4, now: "2026-03-10", wantStreak: 4},
		{name: "consecutive day extends", lastPlayDate: "2026-03-09", streak: 4, now: "2026-03-10", wantStreak: 5},
		{name: "one missed day resets", lastPlayDate: "2026-03-08", streak: 9, now: "2026-03-10", wantStreak: 1},
		{name: "long gap resets", lastPlayDate: "2025-12-24", streak: 30, now: "2026-03-10", wantStreak: 1},
		{name: "month boundary", lastPlayDate: "2026-02-28", streak: 2, now: "2026-03-01", wantStreak: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := models.OverallProgress{
				LastPlayDate:  tt.lastPlayDate,
				CurrentStreak: tt.streak,
			}
			applyStreak(&o, testTime(t, tt.now))

			if o.CurrentStreak != tt.wantStreak {
				t.Fatalf("expected streak %d, got %d", tt.wantStreak, o.CurrentStreak)
			}
			if o.LastPlayDate != tt.now {
				t.Fatalf("expected last play date %s, got %s", tt.now, o.LastPlayDate)
			}
		})
	}
}

// testTime parses a YYYY-MM-DD date at noon local time
func testTime(t *testing.T, date string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		t.Fatalf("bad test date %s: %v", date, err)
	}
	return parsed.Add(12 * time.Hour)
}
