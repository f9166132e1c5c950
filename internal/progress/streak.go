package progress

import (
	"time"

	"soundsteps/internal/models"
)

// dateLayout is the day-granularity format used for streaks and daily
// completion de-duplication
const dateLayout = "2006-01-02"

// applyStreak updates the consecutive-day streak. Idempotent within a
// calendar day: a second activity on the same date leaves the streak
// unchanged. A missed day resets the streak to 1.
func applyStreak(o *models.OverallProgress, now time.Time) {
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	switch o.LastPlayDate {
	case "":
		o.CurrentStreak = 1
	case today:
		// Same day, no change
	case yesterday:
		o.CurrentStreak++
	default:
		o.CurrentStreak = 1
	}

	o.LastPlayDate = today
}
