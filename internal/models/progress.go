package models

import "time"

// Module names form a fixed set; anything else is a caller error.
const (
	ModuleFlashcards    = "flashcards"
	ModuleSoundItOut    = "soundItOut"
	ModuleHungryMonster = "hungryMonster"
	ModuleMinimalPairs  = "minimalPairs"
)

// KnownModules returns the fixed set of learning modules
func KnownModules() []string {
	return []string{ModuleFlashcards, ModuleSoundItOut, ModuleHungryMonster, ModuleMinimalPairs}
}

// IsKnownModule reports whether name is one of the fixed learning modules
func IsKnownModule(name string) bool {
	switch name {
	case ModuleFlashcards, ModuleSoundItOut, ModuleHungryMonster, ModuleMinimalPairs:
		return true
	}
	return false
}

// FlashcardStats tracks letter-recognition progress.
// MasteryLevel is always recomputed from LettersCompleted, never set directly.
type FlashcardStats struct {
	LettersCompleted []string `json:"lettersCompleted"`
	TotalAttempts    int      `json:"totalAttempts"`
	CorrectAttempts  int      `json:"correctAttempts"`
	MasteryLevel     int      `json:"masteryLevel"`
}

// SoundItOutStats tracks word sound-out progress
type SoundItOutStats struct {
	WordsCompleted  int `json:"wordsCompleted"`
	TotalAttempts   int `json:"totalAttempts"`
	CorrectAttempts int `json:"correctAttempts"`
	Accuracy        int `json:"accuracy"`
	MasteryLevel    int `json:"masteryLevel"`
}

// MonsterStats tracks the hungry-monster game
type MonsterStats struct {
	GamesPlayed    int `json:"gamesPlayed"`
	CorrectAnswers int `json:"correctAnswers"`
	TotalAnswers   int `json:"totalAnswers"`
	Accuracy       int `json:"accuracy"`
	HighScore      int `json:"highScore"`
	MasteryLevel   int `json:"masteryLevel"`
}

// PairsStats tracks minimal-pair sorting
type PairsStats struct {
	PairsCompleted []string `json:"pairsCompleted"`
	TotalSorts     int      `json:"totalSorts"`
	CorrectSorts   int      `json:"correctSorts"`
	Accuracy       int      `json:"accuracy"`
	MasteryLevel   int      `json:"masteryLevel"`
}

// ModuleProgress groups the per-module stats
type ModuleProgress struct {
	Flashcards    FlashcardStats  `json:"flashcards"`
	SoundItOut    SoundItOutStats `json:"soundItOut"`
	HungryMonster MonsterStats    `json:"hungryMonster"`
	MinimalPairs  PairsStats      `json:"minimalPairs"`
}

// Achievement is a one-time unlockable badge. An id appears at most once in a
// user's unlocked set and is never revoked.
type Achievement struct {
	ID          string    `json:"id"`
	Icon        string    `json:"icon"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// OverallProgress aggregates cross-module bookkeeping
type OverallProgress struct {
	TotalScore          int           `json:"totalScore"`
	ActivitiesCompleted int           `json:"activitiesCompleted"`
	CurrentStreak       int           `json:"currentStreak"`
	LastPlayDate        string        `json:"lastPlayDate,omitempty"` // YYYY-MM-DD, empty if never played
	Achievements        []Achievement `json:"achievements"`
}

// SessionRecord is one entry in the raw session log (alternate write path)
type SessionRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Game      string    `json:"game"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
}

// UserProgress is the single authoritative progress record per user.
// It unifies the per-activity tracker and the XP/completion layer that used
// to be persisted separately and could drift apart.
type UserProgress struct {
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`

	Modules ModuleProgress  `json:"modules"`
	Overall OverallProgress `json:"overall"`

	// XP / completion view
	TotalXP          int               `json:"totalXP"`
	CompletedModules []string          `json:"completedModules"`
	LastCompletion   map[string]string `json:"lastCompletion,omitempty"` // module -> YYYY-MM-DD

	// Fine-grained per-letter mastery (0..1) merged from mastery_delta writes
	LetterMastery map[string]float64 `json:"letterMastery,omitempty"`
	Sessions      []SessionRecord    `json:"sessions,omitempty"`
}

// NewUserProgress returns a zero-state record for a user
func NewUserProgress(userID string, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:     userID,
		CreatedAt:  now,
		LastActive: now,
		Overall: OverallProgress{
			Achievements: []Achievement{},
		},
		CompletedModules: []string{},
		LastCompletion:   map[string]string{},
	}
}

// Clone returns a deep copy of the record. The engine hands out clones so
// callers can read or encode them after the engine lock is released.
func (p *UserProgress) Clone() *UserProgress {
	c := *p
	c.Modules.Flashcards.LettersCompleted = append([]string(nil), p.Modules.Flashcards.LettersCompleted...)
	c.Modules.MinimalPairs.PairsCompleted = append([]string(nil), p.Modules.MinimalPairs.PairsCompleted...)
	c.Overall.Achievements = append([]Achievement(nil), p.Overall.Achievements...)
	c.CompletedModules = append([]string(nil), p.CompletedModules...)
	c.Sessions = append([]SessionRecord(nil), p.Sessions...)
	if p.LastCompletion != nil {
		c.LastCompletion = make(map[string]string, len(p.LastCompletion))
		for k, v := range p.LastCompletion {
			c.LastCompletion[k] = v
		}
	}
	if p.LetterMastery != nil {
		c.LetterMastery = make(map[string]float64, len(p.LetterMastery))
		for k, v := range p.LetterMastery {
			c.LetterMastery[k] = v
		}
	}
	return &c
}

// HasAchievement reports whether the achievement id is already unlocked
func (p *UserProgress) HasAchievement(id string) bool {
	for _, a := range p.Overall.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Unlock appends an achievement if its id is not already present.
// Returns true if the achievement was newly unlocked.
func (p *UserProgress) Unlock(a Achievement) bool {
	if p.HasAchievement(a.ID) {
		return false
	}
	p.Overall.Achievements = append(p.Overall.Achievements, a)
	return true
}

// IsModuleCompleted reports whether the module has ever been completed
func (p *UserProgress) IsModuleCompleted(module string) bool {
	for _, m := range p.CompletedModules {
		if m == module {
			return true
		}
	}
	return false
}

// Level derives the level from total XP. Level is never stored; it is always
// a pure function of TotalXP and xpPerLevel.
func (p *UserProgress) Level(xpPerLevel int) int {
	if xpPerLevel <= 0 {
		return 1
	}
	return p.TotalXP/xpPerLevel + 1
}

// ActivityResult carries the outcome of a single activity
type ActivityResult struct {
	Correct      bool   `json:"correct"`
	Points       int    `json:"points,omitempty"`       // defaults to 10 when correct
	Letter       string `json:"letter,omitempty"`       // flashcards
	PairCategory string `json:"pairCategory,omitempty"` // minimal pairs
	Score        int    `json:"score,omitempty"`        // hungry monster game score
}

// OverallStats is the snapshot returned to dashboards and the leaderboard
type OverallStats struct {
	TotalScore          int `json:"totalScore"`
	ActivitiesCompleted int `json:"activitiesCompleted"`
	CurrentStreak       int `json:"currentStreak"`
	Achievements        int `json:"achievements"`
	AverageMastery      int `json:"averageMastery"`
	TotalXP             int `json:"totalXP"`
	Level               int `json:"level"`
}
