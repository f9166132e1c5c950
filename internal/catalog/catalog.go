// Package catalog loads the static achievement/XP catalog that maps each
// learning module to its completion reward.
package catalog

import (
	"encoding/json"
	"log"
	"os"

	"soundsteps/internal/models"
)

const (
	// DefaultXPPerLevel is used when the catalog does not specify one
	DefaultXPPerLevel = 500

	// DefaultModuleXP is awarded for modules missing from the catalog
	DefaultModuleXP = 100
)

// ModuleReward describes the XP and badge granted on module completion
type ModuleReward struct {
	XP          int                `json:"xp"`
	Achievement models.Achievement `json:"achievement"`
}

// Catalog is the achievements configuration served at /api/achievements
type Catalog struct {
	Modules    map[string]ModuleReward `json:"modules"`
	XPPerLevel int                     `json:"xpPerLevel"`
}

// Default returns the fallback catalog used when the configured file is
// missing or malformed
func Default() *Catalog {
	return &Catalog{
		Modules:    map[string]ModuleReward{},
		XPPerLevel: DefaultXPPerLevel,
	}
}

// Load reads the catalog from a JSON file. A missing or malformed file is a
// configuration error, not a fatal one: it is logged and the default catalog
// is returned so module completion still works with default rewards.
func Load(path string) *Catalog {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Achievement catalog unavailable (%v), using defaults", err)
		return Default()
	}

	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		log.Printf("Malformed achievement catalog %s (%v), using defaults", path, err)
		return Default()
	}

	if c.Modules == nil {
		c.Modules = map[string]ModuleReward{}
	}
	if c.XPPerLevel <= 0 {
		c.XPPerLevel = DefaultXPPerLevel
	}

	return &c
}

// Reward returns the reward descriptor for a module. Modules absent from the
// catalog get a default descriptor with a generic badge.
func (c *Catalog) Reward(module string) ModuleReward {
	if r, ok := c.Modules[module]; ok {
		return r
	}
	return ModuleReward{
		XP: DefaultModuleXP,
		Achievement: models.Achievement{
			ID:          module + "_complete",
			Icon:        "🎉",
			Name:        "Module Complete",
			Description: "You completed the " + module + " module!",
		},
	}
}
