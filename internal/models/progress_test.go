package models

import (
	"testing"
	"time"
)

func TestUnlockIsMonotonic(t *testing.T) {
	p := NewUserProgress("u1", time.Now())

	badge := Achievement{ID: "streak_3", Name: "On Fire!"}
	if !p.Unlock(badge) {
		t.Fatal("expected first unlock to report true")
	}
	if p.Unlock(badge) {
		t.Fatal("expected repeat unlock to report false")
	}
	if len(p.Overall.Achievements) != 1 {
		t.Fatalf("expected 1 achievement, got %d", len(p.Overall.Achievements))
	}
	if !p.HasAchievement("streak_3") {
		t.Fatal("expected HasAchievement to see the badge")
	}
}

func TestLevelFromXP(t *testing.T) {
	tests := []struct {
		name       string
		totalXP    int
		xpPerLevel int
		want       int
	}{
		{name: "zero XP", totalXP: 0, xpPerLevel: 500, want: 1},
		{name: "just below threshold", totalXP: 499, xpPerLevel: 500, want: 1},
		{name: "at threshold", totalXP: 500, xpPerLevel: 500, want: 2},
		{name: "several levels", totalXP: 1700, xpPerLevel: 500, want: 4},
		{name: "degenerate xpPerLevel", totalXP: 1000, xpPerLevel: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewUserProgress("u1", time.Now())
			p.TotalXP = tt.totalXP
			if got := p.Level(tt.xpPerLevel); got != tt.want {
				t.Fatalf("Level(%d) with %d XP = %d, want %d", tt.xpPerLevel, tt.totalXP, got, tt.want)
			}
		})
	}
}

func TestIsModuleCompleted(t *testing.T) {
	p := NewUserProgress("u1", time.Now())

	if p.IsModuleCompleted(ModuleFlashcards) {
		t.Fatal("fresh record must have no completions")
	}

	p.CompletedModules = append(p.CompletedModules, ModuleFlashcards)
	if !p.IsModuleCompleted(ModuleFlashcards) {
		t.Fatal("expected flashcards completed")
	}
	if p.IsModuleCompleted(ModuleSoundItOut) {
		t.Fatal("soundItOut must not be completed")
	}
}

func TestIsKnownModule(t *testing.T) {
	for _, m := range KnownModules() {
		if !IsKnownModule(m) {
			t.Fatalf("expected %s to be known", m)
		}
	}
	if IsKnownModule("algebra") {
		t.Fatal("expected unknown module rejected")
	}
}

func TestPasswordResetTokenExpiry(t *testing.T) {
	fresh := PasswordResetToken{ExpiresAt: time.Now().Add(time.Hour)}
	if fresh.IsExpired() {
		t.Fatal("token expiring in an hour must not be expired")
	}

	stale := PasswordResetToken{ExpiresAt: time.Now().Add(-time.Minute)}
	if !stale.IsExpired() {
		t.Fatal("token past its expiry must be expired")
	}
}
