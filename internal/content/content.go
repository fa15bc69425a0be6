// Package content holds the static world definitions consumed by the
// persistence jobs: the tutorial quest, spawn points and item denylist.
package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcoot/gamedb-go/internal/model"
)

// ErrInvalidCoordinates is returned for spawn strings not shaped "x,y"
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Quest is a named quest and its ordered stages
type Quest struct {
	Key    string   `yaml:"key"`
	Stages []string `yaml:"stages"`
}

// Content is the static configuration shared with the game world
type Content struct {
	TutorialQuest Quest `yaml:"tutorial_quest"`

	// Spawn points are "x,y" strings
	DefaultSpawn  string `yaml:"default_spawn"`
	TutorialSpawn string `yaml:"tutorial_spawn"`

	// Denylist names cosmetic and armor items removed by the container sweep
	Denylist []string `yaml:"denylist"`
}

// Default returns the content shipped with the server
func Default() Content {
	return Content{
		TutorialQuest: Quest{
			Key: model.TutorialQuestKey,
			Stages: []string{
				"talk_to_guide",
				"equip_weapon",
				"defeat_rat",
				"open_bank",
				"leave_island",
			},
		},
		DefaultSpawn:  "1024,768",
		TutorialSpawn: "128,96",
		Denylist: []string{
			"bronzehelmet",
			"bronzearmor",
			"bronzelegs",
			"bronzeboots",
			"ironhelmet",
			"ironarmor",
			"ironlegs",
			"ironboots",
			"partyhat",
			"santahat",
			"wizardhat",
			"cape",
		},
	}
}

// TutorialStageCount is the number of stages a player must pass to finish the tutorial
func (c Content) TutorialStageCount() int {
	return len(c.TutorialQuest.Stages)
}

// DefaultSpawnPosition parses the default spawn point
func (c Content) DefaultSpawnPosition() (model.Position, error) {
	return ParseCoordinates(c.DefaultSpawn)
}

// TutorialSpawnPosition parses the tutorial spawn point
func (c Content) TutorialSpawnPosition() (model.Position, error) {
	return ParseCoordinates(c.TutorialSpawn)
}

// Validate checks the content can drive the sweeps
func (c Content) Validate() error {
	if c.TutorialQuest.Key == "" {
		return errors.New("tutorial quest key is required")
	}
	if _, err := c.DefaultSpawnPosition(); err != nil {
		return fmt.Errorf("default spawn: %w", err)
	}
	if _, err := c.TutorialSpawnPosition(); err != nil {
		return fmt.Errorf("tutorial spawn: %w", err)
	}
	return nil
}

// ParseCoordinates parses a comma-separated float pair
func ParseCoordinates(s string) (model.Position, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %q", ErrInvalidCoordinates, s)
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %q", ErrInvalidCoordinates, s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %q", ErrInvalidCoordinates, s)
	}
	return model.Position{X: x, Y: y}, nil
}
