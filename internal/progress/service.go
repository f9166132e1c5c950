// Package progress implements the unified progress engine: per-activity
// mastery tracking, streaks, achievement unlocks, and the XP/level layer
// keyed by module completion. All state for a user lives in one persisted
// record, so the fine-grained and completion views can never drift apart.
package progress

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"soundsteps/internal/catalog"
	"soundsteps/internal/events"
	"soundsteps/internal/models"
	"soundsteps/internal/storage"
)

var (
	// ErrUnknownModule reports a module name outside the fixed set.
	// This is a caller error; the activity is rejected, not dropped silently.
	ErrUnknownModule = errors.New("unknown module")
)

// DefaultActivityPoints is added to the total score for a correct activity
// that carries no explicit point value
const DefaultActivityPoints = 10

// Service owns the authoritative in-memory copy of each user's progress for
// the duration of a session and re-persists after every mutation. A failed
// write is logged and the in-memory copy stays authoritative.
type Service struct {
	store storage.Store
	cat   *catalog.Catalog
	bus   *events.Bus

	mu    sync.Mutex
	cache map[string]*models.UserProgress

	now func() time.Time
}

// NewService creates the progress engine
func NewService(store storage.Store, cat *catalog.Catalog, bus *events.Bus) *Service {
	return &Service{
		store: store,
		cat:   cat,
		bus:   bus,
		cache: make(map[string]*models.UserProgress),
		now:   time.Now,
	}
}

// progressKey is the storage key for a user's record
func progressKey(userID string) string {
	return "userProgress_" + userID
}

// load returns the user's record, creating and persisting a zero state on
// first access. Corrupt stored state is silently re-initialized.
// Caller must hold s.mu.
func (s *Service) load(userID string) *models.UserProgress {
	if p, ok := s.cache[userID]; ok {
		return p
	}

	p := models.NewUserProgress(userID, s.now())
	found, err := s.store.Get(progressKey(userID), p)
	if err != nil {
		log.Printf("Failed to load progress for %s, starting fresh: %v", userID, err)
	}
	if !found {
		p = models.NewUserProgress(userID, s.now())
		s.persist(p)
	}
	if p.LastCompletion == nil {
		p.LastCompletion = map[string]string{}
	}

	s.cache[userID] = p
	return p
}

// persist writes the record back. Failures are logged and otherwise ignored:
// the cached copy keeps the app usable for the rest of the session.
func (s *Service) persist(p *models.UserProgress) {
	p.LastActive = s.now()
	if err := s.store.Set(progressKey(p.UserID), p); err != nil {
		log.Printf("Failed to persist progress for %s: %v", p.UserID, err)
	}
}

// RecordActivity updates the module's raw counters and derived values for a
// single activity, applies the streak and achievement rules, and persists.
func (s *Service) RecordActivity(userID, module, activity string, result models.ActivityResult) error {
	if !models.IsKnownModule(module) {
		return fmt.Errorf("%w: %s", ErrUnknownModule, module)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(userID)

	switch module {
	case models.ModuleFlashcards:
		s.recordFlashcardActivity(&p.Modules.Flashcards, result)
	case models.ModuleSoundItOut:
		s.recordSoundOutActivity(&p.Modules.SoundItOut, result)
	case models.ModuleHungryMonster:
		s.recordMonsterActivity(&p.Modules.HungryMonster, activity, result)
	case models.ModuleMinimalPairs:
		s.recordPairsActivity(&p.Modules.MinimalPairs, result)
	}

	p.Overall.ActivitiesCompleted++
	if result.Correct {
		points := result.Points
		if points == 0 {
			points = DefaultActivityPoints
		}
		p.Overall.TotalScore += points
	}

	applyStreak(&p.Overall, s.now())

	unlocked := checkAchievements(p, s.now())
	s.persist(p)

	for _, a := range unlocked {
		s.bus.Publish(events.Event{
			Type:   events.EventAchievementUnlocked,
			UserID: userID,
			Data: events.AchievementData{
				ID: a.ID, Icon: a.Icon, Name: a.Name, Description: a.Description,
			},
		})
	}
	s.bus.Publish(events.Event{Type: events.EventProgressUpdated, UserID: userID})

	return nil
}

func (s *Service) recordFlashcardActivity(m *models.FlashcardStats, result models.ActivityResult) {
	m.TotalAttempts++
	if result.Correct {
		m.CorrectAttempts++
		if result.Letter != "" && !containsString(m.LettersCompleted, result.Letter) {
			m.LettersCompleted = append(m.LettersCompleted, result.Letter)
		}
	}
	recomputeFlashcards(m)
}

func (s *Service) recordSoundOutActivity(m *models.SoundItOutStats, result models.ActivityResult) {
	m.TotalAttempts++
	if result.Correct {
		m.CorrectAttempts++
		m.WordsCompleted++
	}
	recomputeSoundItOut(m)
}

func (s *Service) recordMonsterActivity(m *models.MonsterStats, activity string, result models.ActivityResult) {
	m.TotalAnswers++
	if result.Correct {
		m.CorrectAnswers++
	}
	if activity == "gameComplete" {
		m.GamesPlayed++
		if result.Score > m.HighScore {
			m.HighScore = result.Score
		}
	}
	recomputeMonster(m)
}

func (s *Service) recordPairsActivity(m *models.PairsStats, result models.ActivityResult) {
	m.TotalSorts++
	if result.Correct {
		m.CorrectSorts++
	}
	if result.PairCategory != "" && !containsString(m.PairsCompleted, result.PairCategory) {
		m.PairsCompleted = append(m.PairsCompleted, result.PairCategory)
	}
	recomputeMinimalPairs(m)
}

// CompletionResult describes the outcome of a module completion
type CompletionResult struct {
	Module                string             `json:"module"`
	Achievement           models.Achievement `json:"achievement"`
	XPAwarded             int                `json:"xpAwarded"`
	LeveledUp             bool               `json:"leveledUp"`
	NewLevel              int                `json:"newLevel"`
	AlreadyCompletedToday bool               `json:"alreadyCompletedToday"`
}

// CompleteModule awards the module's completion reward. At most one XP award
// per module per calendar day: a same-day repeat returns a zero-XP result so
// the caller can still celebrate the practice.
func (s *Service) CompleteModule(userID, module string) (*CompletionResult, error) {
	if !models.IsKnownModule(module) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, module)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(userID)
	reward := s.cat.Reward(module)
	today := s.now().Format(dateLayout)

	if p.LastCompletion[module] == today {
		res := &CompletionResult{
			Module:                module,
			Achievement:           reward.Achievement,
			AlreadyCompletedToday: true,
			NewLevel:              p.Level(s.cat.XPPerLevel),
		}
		s.bus.Publish(events.Event{
			Type:   events.EventModuleCompleted,
			UserID: userID,
			Data:   completionData(res),
		})
		return res, nil
	}

	oldLevel := p.Level(s.cat.XPPerLevel)
	p.TotalXP += reward.XP
	newLevel := p.Level(s.cat.XPPerLevel)

	badge := reward.Achievement
	badge.UnlockedAt = s.now()
	newlyUnlocked := p.Unlock(badge)

	if !p.IsModuleCompleted(module) {
		p.CompletedModules = append(p.CompletedModules, module)
	}
	p.LastCompletion[module] = today

	s.persist(p)

	res := &CompletionResult{
		Module:      module,
		Achievement: badge,
		XPAwarded:   reward.XP,
		LeveledUp:   newLevel > oldLevel,
		NewLevel:    newLevel,
	}

	if newlyUnlocked {
		s.bus.Publish(events.Event{
			Type:   events.EventAchievementUnlocked,
			UserID: userID,
			Data: events.AchievementData{
				ID: badge.ID, Icon: badge.Icon, Name: badge.Name, Description: badge.Description,
			},
		})
	}
	if res.LeveledUp {
		s.bus.Publish(events.Event{Type: events.EventLevelUp, UserID: userID, Data: newLevel})
	}
	s.bus.Publish(events.Event{
		Type:   events.EventModuleCompleted,
		UserID: userID,
		Data:   completionData(res),
	})

	return res, nil
}

func completionData(res *CompletionResult) events.CompletionData {
	return events.CompletionData{
		Module: res.Module,
		Achievement: &events.AchievementData{
			ID:          res.Achievement.ID,
			Icon:        res.Achievement.Icon,
			Name:        res.Achievement.Name,
			Description: res.Achievement.Description,
		},
		XPAwarded:    res.XPAwarded,
		LeveledUp:    res.LeveledUp,
		NewLevel:     res.NewLevel,
		AlreadyToday: res.AlreadyCompletedToday,
	}
}

// ApplyMasteryDelta is the alternate progress write path: it appends a
// session record and merges per-letter mastery values clamped to [0,1].
func (s *Service) ApplyMasteryDelta(userID, game string, score, total int, deltas map[string]float64) *models.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(userID)

	p.Sessions = append(p.Sessions, models.SessionRecord{
		Timestamp: s.now(),
		Game:      game,
		Score:     score,
		Total:     total,
	})

	if len(deltas) > 0 {
		if p.LetterMastery == nil {
			p.LetterMastery = map[string]float64{}
		}
		for letter, v := range deltas {
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			p.LetterMastery[letter] = v
		}
	}

	s.persist(p)
	s.bus.Publish(events.Event{Type: events.EventProgressUpdated, UserID: userID})

	return p.Clone()
}

// Progress returns a snapshot of the full record for a user (lazily created).
// The cached record only ever changes under s.mu, so callers get a deep copy
// they can encode without holding the lock.
func (s *Service) Progress(userID string) *models.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID).Clone()
}

// MasteryLevel returns the 0-100 mastery for one module
func (s *Service) MasteryLevel(userID, module string) (int, error) {
	if !models.IsKnownModule(module) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModule, module)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(userID)
	switch module {
	case models.ModuleFlashcards:
		return p.Modules.Flashcards.MasteryLevel, nil
	case models.ModuleSoundItOut:
		return p.Modules.SoundItOut.MasteryLevel, nil
	case models.ModuleHungryMonster:
		return p.Modules.HungryMonster.MasteryLevel, nil
	default:
		return p.Modules.MinimalPairs.MasteryLevel, nil
	}
}

// OverallStats returns the dashboard snapshot
func (s *Service) OverallStats(userID string) models.OverallStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(userID)
	return models.OverallStats{
		TotalScore:          p.Overall.TotalScore,
		ActivitiesCompleted: p.Overall.ActivitiesCompleted,
		CurrentStreak:       p.Overall.CurrentStreak,
		Achievements:        len(p.Overall.Achievements),
		AverageMastery:      averageMastery(p),
		TotalXP:             p.TotalXP,
		Level:               p.Level(s.cat.XPPerLevel),
	}
}

// LevelProgress returns the 0-100 percentage toward the next level
func (s *Service) LevelProgress(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(userID)
	if s.cat.XPPerLevel <= 0 {
		return 0
	}
	return 100 * (p.TotalXP % s.cat.XPPerLevel) / s.cat.XPPerLevel
}

// IsModuleCompleted reports whether the user has ever completed the module
func (s *Service) IsModuleCompleted(userID, module string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID).IsModuleCompleted(module)
}

// LeaderboardEntry builds the publishable summary for a user
func (s *Service) LeaderboardEntry(userID, username string, isGuest bool) models.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.load(userID)
	return models.LeaderboardEntry{
		UserID:              userID,
		Username:            username,
		IsGuest:             isGuest,
		TotalScore:          p.Overall.TotalScore,
		MasteryAverage:      averageMastery(p),
		ActivitiesCompleted: p.Overall.ActivitiesCompleted,
		AchievementCount:    len(p.Overall.Achievements),
		LastUpdated:         s.now(),
	}
}

// Reset clears all progress for a user (logout/reset action)
func (s *Service) Reset(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, userID)
	if err := s.store.Remove(progressKey(userID)); err != nil {
		return fmt.Errorf("failed to reset progress for %s: %w", userID, err)
	}
	return nil
}
