package models

import "time"

// LeaderboardEntry is a per-user summary used for ranking
type LeaderboardEntry struct {
	UserID              string    `json:"userId"`
	Username            string    `json:"username"`
	IsGuest             bool      `json:"isGuest"`
	TotalScore          int       `json:"totalScore"`
	MasteryAverage      int       `json:"masteryAverage"`
	ActivitiesCompleted int       `json:"activitiesCompleted"`
	AchievementCount    int       `json:"achievementCount"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// LeaderboardRecord is the persisted shape of the whole board
type LeaderboardRecord struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	LastUpdated time.Time          `json:"lastUpdated"`
}
