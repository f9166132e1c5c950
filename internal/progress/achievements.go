package progress

import (
	"time"

	"soundsteps/internal/models"
)

// Activity achievement ids. Unlocking is monotonic: an id is appended at
// most once and never revoked.
const (
	AchievementFirstLogin       = "first_login"
	AchievementCompleteAlphabet = "complete_alphabet"
	AchievementPerfectGame      = "perfect_game"
	AchievementStreak3          = "streak_3"
	AchievementStreak7          = "streak_7"
	AchievementScore500         = "score_500"
)

// achievementRule pairs a badge with the predicate that unlocks it
type achievementRule struct {
	id          string
	icon        string
	name        string
	description string
	unlocked    func(*models.UserProgress) bool
}

// achievementRules is the fixed table evaluated after every activity
var achievementRules = []achievementRule{
	{
		id: AchievementFirstLogin, icon: "🎉", name: "Welcome!",
		description: "You started your learning journey!",
		unlocked:    func(*models.UserProgress) bool { return true },
	},
	{
		id: AchievementCompleteAlphabet, icon: "🔤", name: "ABC Master!",
		description: "You learned all 26 letters!",
		unlocked: func(p *models.UserProgress) bool {
			return len(p.Modules.Flashcards.LettersCompleted) >= AlphabetSize
		},
	},
	{
		id: AchievementPerfectGame, icon: "⭐", name: "Perfect Game!",
		description: "You got every answer right!",
		unlocked: func(p *models.UserProgress) bool {
			return p.Modules.HungryMonster.Accuracy >= 100 && p.Modules.HungryMonster.GamesPlayed > 0
		},
	},
	{
		id: AchievementStreak3, icon: "🔥", name: "On Fire!",
		description: "3 day learning streak!",
		unlocked: func(p *models.UserProgress) bool {
			return p.Overall.CurrentStreak >= 3
		},
	},
	{
		id: AchievementStreak7, icon: "🏆", name: "Week Warrior!",
		description: "7 day learning streak!",
		unlocked: func(p *models.UserProgress) bool {
			return p.Overall.CurrentStreak >= 7
		},
	},
	{
		id: AchievementScore500, icon: "💰", name: "Point Collector!",
		description: "You earned 500 points!",
		unlocked: func(p *models.UserProgress) bool {
			return p.Overall.TotalScore >= 500
		},
	},
}

// AchievementDefinition describes one badge for the public catalog
type AchievementDefinition struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Definitions returns the activity badge catalog in evaluation order
func Definitions() []AchievementDefinition {
	defs := make([]AchievementDefinition, 0, len(achievementRules))
	for _, r := range achievementRules {
		defs = append(defs, AchievementDefinition{
			ID:          r.id,
			Icon:        r.icon,
			Name:        r.name,
			Description: r.description,
		})
	}
	return defs
}

// checkAchievements evaluates the rule table against the record and unlocks
// any newly satisfied badges, returning them in table order
func checkAchievements(p *models.UserProgress, now time.Time) []models.Achievement {
	var unlocked []models.Achievement
	for _, r := range achievementRules {
		if p.HasAchievement(r.id) || !r.unlocked(p) {
			continue
		}
		a := models.Achievement{
			ID:          r.id,
			Icon:        r.icon,
			Name:        r.name,
			Description: r.description,
			UnlockedAt:  now,
		}
		p.Unlock(a)
		unlocked = append(unlocked, a)
	}
	return unlocked
}
