// Package feedback turns gamification events into celebration payloads for
// the presentation layer. It renders nothing itself: consumers (a websocket
// layer, a toast widget) read from Celebrations.
package feedback

import (
	"fmt"
	"log"

	"soundsteps/internal/events"
)

// Confetti particle counts for the two celebration sizes
const (
	FullConfettiCount = 300
	MiniConfettiCount = 50
)

// Celebration is a presentation-ready description of what to show
type Celebration struct {
	UserID        string `json:"userId"`
	Kind          string `json:"kind"` // "achievement", "completion", "levelup"
	Title         string `json:"title"`
	Message       string `json:"message"`
	Icon          string `json:"icon,omitempty"`
	ConfettiCount int    `json:"confettiCount"`
	XPAwarded     int    `json:"xpAwarded,omitempty"`
	Level         int    `json:"level,omitempty"`
}

// Service listens on the event bus and emits celebrations
type Service struct {
	celebrations chan Celebration
}

// NewService subscribes to the bus and starts translating events
func NewService(bus *events.Bus) *Service {
	s := &Service{celebrations: make(chan Celebration, 64)}
	go s.run(bus.Subscribe())
	return s
}

// Celebrations is the stream of celebration payloads
func (s *Service) Celebrations() <-chan Celebration {
	return s.celebrations
}

func (s *Service) run(ch <-chan events.Event) {
	for event := range ch {
		c, ok := s.translate(event)
		if !ok {
			continue
		}
		select {
		case s.celebrations <- c:
		default:
			log.Printf("Warning: dropping celebration for %s (consumer too slow)", c.UserID)
		}
	}
}

func (s *Service) translate(event events.Event) (Celebration, bool) {
	switch event.Type {
	case events.EventAchievementUnlocked:
		data, ok := event.Data.(events.AchievementData)
		if !ok {
			return Celebration{}, false
		}
		return Celebration{
			UserID:        event.UserID,
			Kind:          "achievement",
			Title:         data.Name,
			Message:       data.Description,
			Icon:          data.Icon,
			ConfettiCount: FullConfettiCount,
		}, true

	case events.EventModuleCompleted:
		data, ok := event.Data.(events.CompletionData)
		if !ok {
			return Celebration{}, false
		}
		if data.AlreadyToday {
			// Reduced celebration, no XP the second time in a day
			return Celebration{
				UserID:        event.UserID,
				Kind:          "completion",
				Title:         "Great practice!",
				Message:       "Keep it up!",
				ConfettiCount: MiniConfettiCount,
			}, true
		}
		c := Celebration{
			UserID:        event.UserID,
			Kind:          "completion",
			Title:         "Module Complete!",
			Message:       fmt.Sprintf("You completed the %s module!", data.Module),
			ConfettiCount: FullConfettiCount,
			XPAwarded:     data.XPAwarded,
			Level:         data.NewLevel,
		}
		if data.Achievement != nil {
			c.Title = data.Achievement.Name
			c.Message = data.Achievement.Description
			c.Icon = data.Achievement.Icon
		}
		return c, true

	case events.EventLevelUp:
		level, ok := event.Data.(int)
		if !ok {
			return Celebration{}, false
		}
		return Celebration{
			UserID:        event.UserID,
			Kind:          "levelup",
			Title:         "Level Up!",
			Message:       fmt.Sprintf("You're now Level %d!", level),
			ConfettiCount: FullConfettiCount,
			Level:         level,
		}, true
	}

	return Celebration{}, false
}
