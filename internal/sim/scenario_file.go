package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swervesim/internal/geometry"
	"github.com/san-kum/swervesim/internal/kinematics"
)

// scenarioFile is the yaml form of a Scenario:
//
//	name: figure-eight
//	commands:
//	  - {at: 0, speed: 1.5, angle: 30}
//	  - {at: 2, action: lock}
type scenarioFile struct {
	Name     string        `yaml:"name"`
	Commands []commandFile `yaml:"commands"`
}

type commandFile struct {
	At     float64 `yaml:"at"`
	Action string  `yaml:"action"`
	Speed  float64 `yaml:"speed"`
	Angle  float64 `yaml:"angle"` // degrees
}

func parseAction(s string) (Action, error) {
	switch s {
	case "", "track":
		return ActionTrack, nil
	case "lock":
		return ActionLock, nil
	case "stop":
		return ActionStop, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// LoadScenario reads a scenario from a yaml file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (Scenario, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}

	sc := Scenario{Name: f.Name, Commands: make([]Command, 0, len(f.Commands))}
	for i, c := range f.Commands {
		action, err := parseAction(c.Action)
		if err != nil {
			return Scenario{}, fmt.Errorf("command %d: %w", i, err)
		}
		cmd := Command{At: c.At, Action: action}
		if action == ActionTrack {
			cmd.State = kinematics.NewModuleState(c.Speed, geometry.FromDegrees(c.Angle))
		}
		sc.Commands = append(sc.Commands, cmd)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}
