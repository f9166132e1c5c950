package feedback

import (
	"testing"
	"time"

	"soundsteps/internal/events"
)

func receive(t *testing.T, ch <-chan Celebration) Celebration {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for celebration")
		return Celebration{}
	}
}

func TestAchievementCelebration(t *testing.T) {
	bus := events.NewBus()
	svc := NewService(bus)

	bus.Publish(events.Event{
		Type:   events.EventAchievementUnlocked,
		UserID: "u1",
		Data: events.AchievementData{
			ID: "streak_3", Icon: "🔥", Name: "On Fire!", Description: "3 day learning streak!",
		},
	})

	c := receive(t, svc.Celebrations())
	if c.Kind != "achievement" {
		t.Fatalf("expected achievement celebration, got %q", c.Kind)
	}
	if c.Title != "On Fire!" || c.Icon != "🔥" {
		t.Fatalf("unexpected celebration: %+v", c)
	}
	if c.ConfettiCount != FullConfettiCount {
		t.Fatalf("expected full confetti, got %d", c.ConfettiCount)
	}
}

func TestRepeatCompletionGetsMiniCelebration(t *testing.T) {
	bus := events.NewBus()
	svc := NewService(bus)

	bus.Publish(events.Event{
		Type:   events.EventModuleCompleted,
		UserID: "u1",
		Data: events.CompletionData{
			Module:       "flashcards",
			AlreadyToday: true,
		},
	})

	c := receive(t, svc.Celebrations())
	if c.Kind != "completion" {
		t.Fatalf("expected completion celebration, got %q", c.Kind)
	}
	if c.ConfettiCount != MiniConfettiCount {
		t.Fatalf("expected mini confetti on same-day repeat, got %d", c.ConfettiCount)
	}
	if c.XPAwarded != 0 {
		t.Fatalf("expected no XP on repeat, got %d", c.XPAwarded)
	}
}

func TestFirstCompletionCelebration(t *testing.T) {
	bus := events.NewBus()
	svc := NewService(bus)

	bus.Publish(events.Event{
		Type:   events.EventModuleCompleted,
		UserID: "u1",
		Data: events.CompletionData{
			Module: "soundItOut",
			Achievement: &events.AchievementData{
				ID: "soundItOut_complete", Icon: "🗣️", Name: "Sound Blender", Description: "d",
			},
			XPAwarded: 100,
			NewLevel:  1,
		},
	})

	c := receive(t, svc.Celebrations())
	if c.Title != "Sound Blender" {
		t.Fatalf("expected badge title, got %q", c.Title)
	}
	if c.XPAwarded != 100 {
		t.Fatalf("expected 100 XP in celebration, got %d", c.XPAwarded)
	}
	if c.ConfettiCount != FullConfettiCount {
		t.Fatalf("expected full confetti, got %d", c.ConfettiCount)
	}
}

func TestLevelUpCelebration(t *testing.T) {
	bus := events.NewBus()
	svc := NewService(bus)

	bus.Publish(events.Event{Type: events.EventLevelUp, UserID: "u1", Data: 3})

	c := receive(t, svc.Celebrations())
	if c.Kind != "levelup" || c.Level != 3 {
		t.Fatalf("unexpected celebration: %+v", c)
	}
}

func TestUnknownEventsIgnored(t *testing.T) {
	bus := events.NewBus()
	svc := NewService(bus)

	bus.Publish(events.Event{Type: events.EventProgressUpdated, UserID: "u1"})
	bus.Publish(events.Event{Type: events.EventLevelUp, UserID: "u1", Data: 2})

	// Only the level-up produces a celebration
	c := receive(t, svc.Celebrations())
	if c.Kind != "levelup" {
		t.Fatalf("expected levelup, got %q", c.Kind)
	}
}
