package progress

import (
	"math"

	"soundsteps/internal/models"
)

// Mastery normalization constants. The per-module thresholds are product
// tuning carried over from the original content catalogs; they are
// intentionally not unified.
const (
	// AlphabetSize letters completed = 100% flashcard mastery
	AlphabetSize = 26

	// SoundOutMasteryPerWord percent per completed word (20 words = 100%)
	SoundOutMasteryPerWord = 5

	// MonsterMasteryPerGame percent per completed game, plus half the accuracy
	MonsterMasteryPerGame = 10

	// PairsMasteryPerCategory percent per pair category (4 categories = 100%)
	PairsMasteryPerCategory = 25
)

// roundPct returns round(100 * part / total), 0 when total is 0
func roundPct(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func clampPct(v int) int {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

// recomputeFlashcards derives mastery from the completed-letter set
func recomputeFlashcards(s *models.FlashcardStats) {
	s.MasteryLevel = clampPct(roundPct(len(s.LettersCompleted), AlphabetSize))
}

// recomputeSoundItOut derives accuracy and mastery from the raw counters
func recomputeSoundItOut(s *models.SoundItOutStats) {
	s.Accuracy = roundPct(s.CorrectAttempts, s.TotalAttempts)
	s.MasteryLevel = clampPct(s.WordsCompleted * SoundOutMasteryPerWord)
}

// recomputeMonster derives accuracy and mastery from the raw counters
func recomputeMonster(s *models.MonsterStats) {
	s.Accuracy = roundPct(s.CorrectAnswers, s.TotalAnswers)
	s.MasteryLevel = clampPct(int(math.Round(float64(s.GamesPlayed*MonsterMasteryPerGame) + float64(s.Accuracy)/2)))
}

// recomputeMinimalPairs derives accuracy and mastery from the raw counters
func recomputeMinimalPairs(s *models.PairsStats) {
	s.Accuracy = roundPct(s.CorrectSorts, s.TotalSorts)
	s.MasteryLevel = clampPct(len(s.PairsCompleted) * PairsMasteryPerCategory)
}

// RecomputeDerived re-derives every accuracy and mastery value from the raw
// counters. Calling it twice yields the same record: derived values are a
// pure function of the counters and never drift from them.
func RecomputeDerived(p *models.UserProgress) {
	recomputeFlashcards(&p.Modules.Flashcards)
	recomputeSoundItOut(&p.Modules.SoundItOut)
	recomputeMonster(&p.Modules.HungryMonster)
	recomputeMinimalPairs(&p.Modules.MinimalPairs)
}

// averageMastery returns the rounded mean of the four module mastery levels
func averageMastery(p *models.UserProgress) int {
	total := p.Modules.Flashcards.MasteryLevel +
		p.Modules.SoundItOut.MasteryLevel +
		p.Modules.HungryMonster.MasteryLevel +
		p.Modules.MinimalPairs.MasteryLevel
	return int(math.Round(float64(total) / 4))
}

// containsString reports set membership in a JSON-friendly string slice
func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
