package leaderboard

import (
	"fmt"
	"testing"

	"soundsteps/internal/models"
	"soundsteps/internal/storage"
)

func entry(userID string, score int) models.LeaderboardEntry {
	return models.LeaderboardEntry{
		UserID:     userID,
		Username:   "user-" + userID,
		TotalScore: score,
	}
}

func TestUpsertReplacesExistingEntry(t *testing.T) {
	b := New(storage.NewMemoryStore())

	b.Upsert(entry("u1", 10))
	b.Upsert(entry("u1", 50))
	b.Upsert(entry("u1", 30))

	top := b.Top(10)
	if len(top) != 1 {
		t.Fatalf("expected 1 entry after repeated upserts, got %d", len(top))
	}
	if top[0].TotalScore != 30 {
		t.Fatalf("expected latest score 30, got %d", top[0].TotalScore)
	}
}

func TestTopIsSortedDescending(t *testing.T) {
	b := New(storage.NewMemoryStore())

	b.Upsert(entry("low", 5))
	b.Upsert(entry("high", 500))
	b.Upsert(entry("mid", 50))

	top := b.Top(3)
	if top[0].UserID != "high" || top[1].UserID != "mid" || top[2].UserID != "low" {
		t.Fatalf("unexpected order: %v, %v, %v", top[0].UserID, top[1].UserID, top[2].UserID)
	}
}

func TestBoardEvictsBeyondMaxEntries(t *testing.T) {
	b := New(storage.NewMemoryStore())

	for i := 0; i < MaxEntries+50; i++ {
		b.Upsert(entry(fmt.Sprintf("u%03d", i), i))
	}

	top := b.Top(MaxEntries + 50)
	if len(top) != MaxEntries {
		t.Fatalf("expected board bounded at %d, got %d", MaxEntries, len(top))
	}
	// The lowest scorers were evicted
	if b.UserRank("u000") != 0 {
		t.Fatal("expected lowest scorer to be evicted")
	}
	if b.UserRank(fmt.Sprintf("u%03d", MaxEntries+49)) != 1 {
		t.Fatal("expected highest scorer at rank 1")
	}
}

func TestTopBounds(t *testing.T) {
	b := New(storage.NewMemoryStore())
	b.Upsert(entry("u1", 10))

	if got := len(b.Top(5)); got != 1 {
		t.Fatalf("expected Top(5) to return 1 entry, got %d", got)
	}
	if got := len(b.Top(0)); got != 0 {
		t.Fatalf("expected Top(0) to be empty, got %d", got)
	}
}

func TestUserRankAndEntry(t *testing.T) {
	b := New(storage.NewMemoryStore())

	b.Upsert(entry("u1", 100))
	b.Upsert(entry("u2", 200))

	if got := b.UserRank("u2"); got != 1 {
		t.Fatalf("expected rank 1 for u2, got %d", got)
	}
	if got := b.UserRank("u1"); got != 2 {
		t.Fatalf("expected rank 2 for u1, got %d", got)
	}
	if got := b.UserRank("missing"); got != 0 {
		t.Fatalf("expected rank 0 for unknown user, got %d", got)
	}

	e := b.UserEntry("u1")
	if e == nil || e.TotalScore != 100 {
		t.Fatalf("unexpected entry for u1: %+v", e)
	}
	if b.UserEntry("missing") != nil {
		t.Fatal("expected nil entry for unknown user")
	}
}

func TestFiltered(t *testing.T) {
	b := New(storage.NewMemoryStore())

	guest := entry("g1", 50)
	guest.IsGuest = true
	b.Upsert(guest)
	b.Upsert(entry("u1", 100))

	if got := len(b.Filtered(FilterAll)); got != 2 {
		t.Fatalf("expected 2 entries for all, got %d", got)
	}
	registered := b.Filtered(FilterRegistered)
	if len(registered) != 1 || registered[0].UserID != "u1" {
		t.Fatalf("unexpected registered entries: %+v", registered)
	}
	guests := b.Filtered(FilterGuests)
	if len(guests) != 1 || guests[0].UserID != "g1" {
		t.Fatalf("unexpected guest entries: %+v", guests)
	}
}

func TestSortedDoesNotMutateCanonicalOrder(t *testing.T) {
	b := New(storage.NewMemoryStore())

	first := entry("u1", 100)
	first.MasteryAverage = 10
	second := entry("u2", 50)
	second.MasteryAverage = 90
	b.Upsert(first)
	b.Upsert(second)

	byMastery := b.Sorted(SortByMastery)
	if byMastery[0].UserID != "u2" {
		t.Fatalf("expected u2 first by mastery, got %s", byMastery[0].UserID)
	}

	// Canonical score order is unchanged
	top := b.Top(2)
	if top[0].UserID != "u1" {
		t.Fatalf("expected u1 first by score, got %s", top[0].UserID)
	}
}

func TestBoardPersistsAcrossLoads(t *testing.T) {
	store := storage.NewMemoryStore()

	b := New(store)
	b.Upsert(entry("u1", 75))

	b2 := New(store)
	if got := b2.UserRank("u1"); got != 1 {
		t.Fatalf("expected persisted entry at rank 1, got %d", got)
	}
}

func TestCorruptStoredBoardStartsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SetRaw("globalLeaderboard", []byte("]["))

	b := New(store)
	if got := len(b.Top(10)); got != 0 {
		t.Fatalf("expected empty board after corruption, got %d entries", got)
	}

	// And it is usable afterwards
	b.Upsert(entry("u1", 10))
	if got := b.UserRank("u1"); got != 1 {
		t.Fatalf("expected rank 1 after recovery, got %d", got)
	}
}
