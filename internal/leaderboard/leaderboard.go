// Package leaderboard maintains the bounded, score-sorted ranking of users.
package leaderboard

import (
	"log"
	"sort"
	"sync"
	"time"

	"soundsteps/internal/models"
	"soundsteps/internal/storage"
)

// MaxEntries bounds the board; entries beyond this rank are evicted
const MaxEntries = 100

const storageKey = "globalLeaderboard"

// Filter modes for Filtered
const (
	FilterAll        = "all"
	FilterRegistered = "registered"
	FilterGuests     = "guests"
)

// Sort criteria for Sorted
const (
	SortByScore        = "totalScore"
	SortByMastery      = "mastery"
	SortByActivities   = "activities"
	SortByAchievements = "achievements"
)

// Board is the global leaderboard. The in-memory copy is authoritative for
// the session and re-persisted after every mutation.
type Board struct {
	store storage.Store

	mu   sync.RWMutex
	data models.LeaderboardRecord

	now func() time.Time
}

// New loads the leaderboard from storage, initializing an empty board when
// absent or corrupt
func New(store storage.Store) *Board {
	b := &Board{
		store: store,
		now:   time.Now,
	}

	found, err := store.Get(storageKey, &b.data)
	if err != nil {
		log.Printf("Failed to load leaderboard, starting empty: %v", err)
	}
	if !found {
		b.data = models.LeaderboardRecord{Leaderboard: []models.LeaderboardEntry{}}
		b.persist()
	}

	return b
}

// persist writes the board back. Failures are logged; the in-memory board
// stays usable. Caller must hold b.mu.
func (b *Board) persist() {
	b.data.LastUpdated = b.now()
	if err := b.store.Set(storageKey, &b.data); err != nil {
		log.Printf("Failed to persist leaderboard: %v", err)
	}
}

// Upsert replaces the entry for entry.UserID or appends a new one, then
// re-sorts descending by total score (stable, so equal scores keep their
// relative order) and truncates to the top MaxEntries.
func (b *Board) Upsert(entry models.LeaderboardEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry.LastUpdated = b.now()

	replaced := false
	for i := range b.data.Leaderboard {
		if b.data.Leaderboard[i].UserID == entry.UserID {
			b.data.Leaderboard[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		b.data.Leaderboard = append(b.data.Leaderboard, entry)
	}

	sort.SliceStable(b.data.Leaderboard, func(i, j int) bool {
		return b.data.Leaderboard[i].TotalScore > b.data.Leaderboard[j].TotalScore
	})

	if len(b.data.Leaderboard) > MaxEntries {
		b.data.Leaderboard = b.data.Leaderboard[:MaxEntries]
	}

	b.persist()
}

// Top returns the first n entries in rank order
func (b *Board) Top(n int) []models.LeaderboardEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > len(b.data.Leaderboard) {
		n = len(b.data.Leaderboard)
	}
	if n < 0 {
		n = 0
	}
	out := make([]models.LeaderboardEntry, n)
	copy(out, b.data.Leaderboard[:n])
	return out
}

// UserRank returns the 1-based rank for a user, or 0 if absent
func (b *Board) UserRank(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.data.Leaderboard {
		if e.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// UserEntry returns the entry for a user, or nil if absent
func (b *Board) UserEntry(userID string) *models.LeaderboardEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i := range b.data.Leaderboard {
		if b.data.Leaderboard[i].UserID == userID {
			e := b.data.Leaderboard[i]
			return &e
		}
	}
	return nil
}

// Filtered returns entries restricted by account type, in rank order
func (b *Board) Filtered(mode string) []models.LeaderboardEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.LeaderboardEntry, 0, len(b.data.Leaderboard))
	for _, e := range b.data.Leaderboard {
		switch mode {
		case FilterRegistered:
			if e.IsGuest {
				continue
			}
		case FilterGuests:
			if !e.IsGuest {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Sorted returns a copy of the board ordered by the given criterion without
// mutating the canonical score-sorted order
func (b *Board) Sorted(criterion string) []models.LeaderboardEntry {
	b.mu.RLock()
	out := make([]models.LeaderboardEntry, len(b.data.Leaderboard))
	copy(out, b.data.Leaderboard)
	b.mu.RUnlock()

	SortEntries(out, criterion)
	return out
}

// SortEntries orders a slice of entries in place by the given criterion,
// descending, stable. Unknown criteria fall back to total score. Callers can
// combine this with Filtered to rank a restricted view.
func SortEntries(entries []models.LeaderboardEntry, criterion string) {
	switch criterion {
	case SortByMastery:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].MasteryAverage > entries[j].MasteryAverage })
	case SortByActivities:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ActivitiesCompleted > entries[j].ActivitiesCompleted })
	case SortByAchievements:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].AchievementCount > entries[j].AchievementCount })
	default:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].TotalScore > entries[j].TotalScore })
	}
}
