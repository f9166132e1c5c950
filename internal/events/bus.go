// Package events provides a small typed pub-sub bus decoupling the
// gamification core from presentation. Publish never blocks: slow
// subscribers drop events rather than stalling progress updates.
package events

import (
	"log"
	"sync"
	"time"
)

// Event type constants
const (
	EventProgressUpdated     = "progress.updated"
	EventAchievementUnlocked = "achievement.unlocked"
	EventModuleCompleted     = "module.completed"
	EventLevelUp             = "level.up"
)

// Event is a typed application event
type Event struct {
	Type      string
	UserID    string
	Data      interface{}
	Timestamp time.Time
}

// AchievementData is the payload for EventAchievementUnlocked
type AchievementData struct {
	ID          string `json:"id"`
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompletionData is the payload for EventModuleCompleted
type CompletionData struct {
	Module       string           `json:"module"`
	Achievement  *AchievementData `json:"achievement,omitempty"`
	XPAwarded    int              `json:"xpAwarded"`
	LeveledUp    bool             `json:"leveledUp"`
	NewLevel     int              `json:"newLevel"`
	AlreadyToday bool             `json:"alreadyToday"`
}

// Bus fan-outs events to subscribers
type Bus struct {
	mu   sync.RWMutex
	subs []chan Event
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel receiving all published events.
// The buffer absorbs bursts; events are dropped if the buffer fills.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the event to every subscriber without blocking
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			log.Printf("Warning: dropping event %s (subscriber buffer full)", event.Type)
		}
	}
}
