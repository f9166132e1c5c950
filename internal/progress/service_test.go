package progress

import (
	"errors"
	"testing"
	"time"

	"soundsteps/internal/catalog"
	"soundsteps/internal/events"
	"soundsteps/internal/models"
	"soundsteps/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	s := NewService(store, catalog.Default(), events.NewBus())
	s.now = func() time.Time { return testTime(t, "2026-03-10") }
	return s, store
}

func (s *Service) setNow(t *testing.T, date string) {
	s.now = func() time.Time { return testTime(t, date) }
}

func TestRecordActivityRejectsUnknownModule(t *testing.T) {
	s, _ := newTestService(t)

	err := s.RecordActivity("u1", "algebra", "answer", models.ActivityResult{Correct: true})
	if !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestRecordActivityUpdatesCountersAndScore(t *testing.T) {
	s, _ := newTestService(t)

	if err := s.RecordActivity("u1", models.ModuleFlashcards, "letterComplete", models.ActivityResult{
		Correct: true,
		Letter:  "a",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.RecordActivity("u1", models.ModuleFlashcards, "letterComplete", models.ActivityResult{
		Correct: false,
		Letter:  "b",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := s.Progress("u1")
	if p.Modules.Flashcards.TotalAttempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", p.Modules.Flashcards.TotalAttempts)
	}
	if p.Modules.Flashcards.CorrectAttempts != 1 {
		t.Fatalf("expected 1 correct attempt, got %d", p.Modules.Flashcards.CorrectAttempts)
	}
	// A wrong answer never records the letter
	if len(p.Modules.Flashcards.LettersCompleted) != 1 || p.Modules.Flashcards.LettersCompleted[0] != "a" {
		t.Fatalf("expected letters [a], got %v", p.Modules.Flashcards.LettersCompleted)
	}
	// Only the correct activity scores, at the default value
	if p.Overall.TotalScore != DefaultActivityPoints {
		t.Fatalf("expected score %d, got %d", DefaultActivityPoints, p.Overall.TotalScore)
	}
	if p.Overall.ActivitiesCompleted != 2 {
		t.Fatalf("expected 2 activities, got %d", p.Overall.ActivitiesCompleted)
	}
}

func TestRecordActivityDuplicateLetterCountedOnce(t *testing.T) {
	s, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		if err := s.RecordActivity("u1", models.ModuleFlashcards, "letterComplete", models.ActivityResult{
			Correct: true,
			Letter:  "m",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	p := s.Progress("u1")
	if len(p.Modules.Flashcards.LettersCompleted) != 1 {
		t.Fatalf("expected 1 unique letter, got %v", p.Modules.Flashcards.LettersCompleted)
	}
}

func TestStreakAcrossDays(t *testing.T) {
	s, _ := newTestService(t)

	record := func() {
		if err := s.RecordActivity("u1", models.ModuleSoundItOut, "wordComplete", models.ActivityResult{Correct: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	record()
	if got := s.Progress("u1").Overall.CurrentStreak; got != 1 {
		t.Fatalf("expected streak 1, got %d", got)
	}

	// Second activity the same day leaves the streak alone
	record()
	if got := s.Progress("u1").Overall.CurrentStreak; got != 1 {
		t.Fatalf("expected streak 1 after same-day repeat, got %d", got)
	}

	s.setNow(t, "2026-03-11")
	record()
	if got := s.Progress("u1").Overall.CurrentStreak; got != 2 {
		t.Fatalf("expected streak 2 the next day, got %d", got)
	}

	s.setNow(t, "2026-03-13")
	record()
	if got := s.Progress("u1").Overall.CurrentStreak; got != 1 {
		t.Fatalf("expected streak reset to 1 after a missed day, got %d", got)
	}
}

func TestAchievementsUnlockOnce(t *testing.T) {
	s, _ := newTestService(t)

	// Complete the full alphabet
	for i := 0; i < AlphabetSize; i++ {
		letter := string(rune('a' + i))
		if err := s.RecordActivity("u1", models.ModuleFlashcards, "letterComplete", models.ActivityResult{
			Correct: true,
			Letter:  letter,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	p := s.Progress("u1")
	if !p.HasAchievement(AchievementFirstLogin) {
		t.Fatal("expected first_login to be unlocked")
	}
	if !p.HasAchievement(AchievementCompleteAlphabet) {
		t.Fatal("expected complete_alphabet to be unlocked")
	}

	before := len(p.Overall.Achievements)

	// Replaying letters must not duplicate the badge
	if err := s.RecordActivity("u1", models.ModuleFlashcards, "letterComplete", models.ActivityResult{
		Correct: true,
		Letter:  "a",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p = s.Progress("u1")
	if len(p.Overall.Achievements) != before {
		t.Fatalf("expected %d achievements, got %d", before, len(p.Overall.Achievements))
	}
}

func TestPerfectGameAchievement(t *testing.T) {
	s, _ := newTestService(t)

	// Answers alone never unlock it: a game has to finish
	if err := s.RecordActivity("u1", models.ModuleHungryMonster, "answer", models.ActivityResult{Correct: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Progress("u1").HasAchievement(AchievementPerfectGame) {
		t.Fatal("perfect_game unlocked before any game completed")
	}

	if err := s.RecordActivity("u1", models.ModuleHungryMonster, "gameComplete", models.ActivityResult{
		Correct: true,
		Score:   120,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := s.Progress("u1")
	if !p.HasAchievement(AchievementPerfectGame) {
		t.Fatal("expected perfect_game after a flawless completed game")
	}
	if p.Modules.HungryMonster.HighScore != 120 {
		t.Fatalf("expected high score 120, got %d", p.Modules.HungryMonster.HighScore)
	}
}

func TestCompleteModuleAwardsXPOncePerDay(t *testing.T) {
	s, _ := newTestService(t)

	res, err := s.CompleteModule("u1", models.ModuleFlashcards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.XPAwarded != catalog.DefaultModuleXP {
		t.Fatalf("expected %d XP, got %d", catalog.DefaultModuleXP, res.XPAwarded)
	}
	if res.AlreadyCompletedToday {
		t.Fatal("first completion flagged as repeat")
	}

	// Same day: celebration without XP
	res, err = s.CompleteModule("u1", models.ModuleFlashcards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.AlreadyCompletedToday {
		t.Fatal("expected AlreadyCompletedToday on same-day repeat")
	}
	if res.XPAwarded != 0 {
		t.Fatalf("expected 0 XP on repeat, got %d", res.XPAwarded)
	}
	if got := s.Progress("u1").TotalXP; got != catalog.DefaultModuleXP {
		t.Fatalf("expected total XP %d, got %d", catalog.DefaultModuleXP, got)
	}

	// Next day the award is available again
	s.setNow(t, "2026-03-11")
	res, err = s.CompleteModule("u1", models.ModuleFlashcards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AlreadyCompletedToday || res.XPAwarded != catalog.DefaultModuleXP {
		t.Fatalf("expected fresh award next day, got %+v", res)
	}
	if got := s.Progress("u1").TotalXP; got != 2*catalog.DefaultModuleXP {
		t.Fatalf("expected total XP %d, got %d", 2*catalog.DefaultModuleXP, got)
	}
}

func TestCompleteModuleLevelUp(t *testing.T) {
	s, _ := newTestService(t)

	// 4 modules on day one, then one more the next day crosses 500 XP
	for _, m := range models.KnownModules() {
		if _, err := s.CompleteModule("u1", m); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := s.Progress("u1").Level(catalog.DefaultXPPerLevel); got != 1 {
		t.Fatalf("expected level 1 at 400 XP, got %d", got)
	}

	s.setNow(t, "2026-03-11")
	res, err := s.CompleteModule("u1", models.ModuleFlashcards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.LeveledUp {
		t.Fatal("expected level up at 500 XP")
	}
	if res.NewLevel != 2 {
		t.Fatalf("expected level 2, got %d", res.NewLevel)
	}
}

func TestCompleteModuleUnknown(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.CompleteModule("u1", "calculus"); !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestLevelProgress(t *testing.T) {
	s, _ := newTestService(t)

	if got := s.LevelProgress("u1"); got != 0 {
		t.Fatalf("expected 0%% at zero XP, got %d", got)
	}

	if _, err := s.CompleteModule("u1", models.ModuleFlashcards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 100/500 = 20%
	if got := s.LevelProgress("u1"); got != 20 {
		t.Fatalf("expected 20%%, got %d", got)
	}
}

func TestApplyMasteryDeltaClampsAndLogsSession(t *testing.T) {
	s, _ := newTestService(t)

	p := s.ApplyMasteryDelta("u1", "flashcards", 8, 10, map[string]float64{
		"a": 0.5,
		"b": 1.7,
		"c": -0.2,
	})

	if len(p.Sessions) != 1 {
		t.Fatalf("expected 1 session record, got %d", len(p.Sessions))
	}
	if p.Sessions[0].Game != "flashcards" || p.Sessions[0].Score != 8 || p.Sessions[0].Total != 10 {
		t.Fatalf("unexpected session record: %+v", p.Sessions[0])
	}
	if p.LetterMastery["a"] != 0.5 {
		t.Fatalf("expected mastery 0.5 for a, got %v", p.LetterMastery["a"])
	}
	if p.LetterMastery["b"] != 1 {
		t.Fatalf("expected mastery clamped to 1 for b, got %v", p.LetterMastery["b"])
	}
	if p.LetterMastery["c"] != 0 {
		t.Fatalf("expected mastery clamped to 0 for c, got %v", p.LetterMastery["c"])
	}
}

func TestProgressSurvivesCacheEviction(t *testing.T) {
	s, store := newTestService(t)

	if err := s.RecordActivity("u1", models.ModuleMinimalPairs, "sort", models.ActivityResult{
		Correct:      true,
		PairCategory: "/p/ vs /b/",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh service over the same store must see the persisted record
	s2 := NewService(store, catalog.Default(), events.NewBus())
	s2.now = s.now

	p := s2.Progress("u1")
	if p.Modules.MinimalPairs.CorrectSorts != 1 {
		t.Fatalf("expected persisted sort count 1, got %d", p.Modules.MinimalPairs.CorrectSorts)
	}
}

func TestCorruptStoredProgressResets(t *testing.T) {
	s, store := newTestService(t)
	store.SetRaw(progressKey("u1"), []byte("{not json"))

	p := s.Progress("u1")
	if p.Overall.TotalScore != 0 || p.Overall.ActivitiesCompleted != 0 {
		t.Fatalf("expected zero state after corruption, got %+v", p.Overall)
	}
}

func TestReset(t *testing.T) {
	s, _ := newTestService(t)

	if err := s.RecordActivity("u1", models.ModuleSoundItOut, "wordComplete", models.ActivityResult{Correct: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Reset("u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := s.Progress("u1")
	if p.Overall.ActivitiesCompleted != 0 {
		t.Fatalf("expected fresh record after reset, got %d activities", p.Overall.ActivitiesCompleted)
	}
}

func TestCompletionEventsPublished(t *testing.T) {
	store := storage.NewMemoryStore()
	bus := events.NewBus()
	sub := bus.Subscribe()
	s := NewService(store, catalog.Default(), bus)
	s.now = func() time.Time { return testTime(t, "2026-03-10") }

	if _, err := s.CompleteModule("u1", models.ModuleFlashcards); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var types []string
	for len(sub) > 0 {
		types = append(types, (<-sub).Type)
	}

	wantAchievement, wantCompleted := false, false
	for _, ty := range types {
		switch ty {
		case events.EventAchievementUnlocked:
			wantAchievement = true
		case events.EventModuleCompleted:
			wantCompleted = true
		}
	}
	if !wantAchievement || !wantCompleted {
		t.Fatalf("expected achievement and completion events, got %v", types)
	}
}

func TestLeaderboardEntrySnapshot(t *testing.T) {
	s, _ := newTestService(t)

	if err := s.RecordActivity("u1", models.ModuleFlashcards, "letterComplete", models.ActivityResult{
		Correct: true,
		Letter:  "a",
		Points:  25,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := s.LeaderboardEntry("u1", "sam", false)
	if entry.Username != "sam" || entry.UserID != "u1" {
		t.Fatalf("unexpected identity: %+v", entry)
	}
	if entry.TotalScore != 25 {
		t.Fatalf("expected score 25, got %d", entry.TotalScore)
	}
	if entry.ActivitiesCompleted != 1 {
		t.Fatalf("expected 1 activity, got %d", entry.ActivitiesCompleted)
	}
	if entry.AchievementCount == 0 {
		t.Fatal("expected at least first_login achievement counted")
	}
}

func TestProgressReturnsIsolatedCopy(t *testing.T) {
	s, _ := newTestService(t)

	if err := s.RecordActivity("u1", models.ModuleFlashcards, "letterComplete", models.ActivityResult{
		Correct: true,
		Letter:  "a",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Writing through a returned record must never reach the engine's state:
	// handlers encode these records after the engine lock is released.
	snap := s.Progress("u1")
	snap.TotalXP = 9999
	snap.Overall.TotalScore = -1
	snap.Modules.Flashcards.LettersCompleted[0] = "z"
	snap.LastCompletion[models.ModuleFlashcards] = "1999-01-01"

	fresh := s.Progress("u1")
	if fresh.TotalXP != 0 {
		t.Fatalf("snapshot mutation leaked into TotalXP: %d", fresh.TotalXP)
	}
	if fresh.Overall.TotalScore != DefaultActivityPoints {
		t.Fatalf("snapshot mutation leaked into score: %d", fresh.Overall.TotalScore)
	}
	if fresh.Modules.Flashcards.LettersCompleted[0] != "a" {
		t.Fatalf("snapshot mutation leaked into letters: %v", fresh.Modules.Flashcards.LettersCompleted)
	}
	if _, ok := fresh.LastCompletion[models.ModuleFlashcards]; ok {
		t.Fatal("snapshot mutation leaked into completion dates")
	}
}

func TestApplyMasteryDeltaReturnsIsolatedCopy(t *testing.T) {
	s, _ := newTestService(t)

	p := s.ApplyMasteryDelta("u1", "flashcards", 8, 10, map[string]float64{"a": 0.5})
	p.LetterMastery["a"] = 0
	p.Sessions[0].Score = -1

	fresh := s.Progress("u1")
	if fresh.LetterMastery["a"] != 0.5 {
		t.Fatalf("expected mastery 0.5, got %v", fresh.LetterMastery["a"])
	}
	if fresh.Sessions[0].Score != 8 {
		t.Fatalf("expected session score 8, got %d", fresh.Sessions[0].Score)
	}
}
