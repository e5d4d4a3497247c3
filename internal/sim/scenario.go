package sim

import (
	"fmt"
	"sort"

	"github.com/san-kum/swervesim/internal/geometry"
	"github.com/san-kum/swervesim/internal/kinematics"
)

type Action int

const (
	ActionTrack Action = iota
	ActionLock
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionLock:
		return "lock"
	case ActionStop:
		return "stop"
	default:
		return "track"
	}
}

// Command is held from At until the next command in the scenario.
type Command struct {
	At     float64
	Action Action
	State  kinematics.ModuleState
}

type Scenario struct {
	Name     string
	Commands []Command
}

// At returns the command in force at time t. Before the first command the
// module is stopped.
func (s Scenario) At(t float64) Command {
	active := Command{Action: ActionStop}
	for _, c := range s.Commands {
		if c.At > t {
			break
		}
		active = c
	}
	return active
}

func (s Scenario) Validate() error {
	if len(s.Commands) == 0 {
		return fmt.Errorf("scenario %q has no commands", s.Name)
	}
	if !sort.SliceIsSorted(s.Commands, func(i, j int) bool { return s.Commands[i].At < s.Commands[j].At }) {
		return fmt.Errorf("scenario %q commands are not in time order", s.Name)
	}
	return nil
}

func track(at, speed, deg float64) Command {
	return Command{At: at, Action: ActionTrack, State: kinematics.NewModuleState(speed, geometry.FromDegrees(deg))}
}

var Scenarios = map[string]Scenario{
	"step": {Name: "step", Commands: []Command{
		track(0, 2.0, 45),
	}},
	"reverse": {Name: "reverse", Commands: []Command{
		track(0, 2.0, 0),
		track(1.5, 2.0, 170),
	}},
	"wrap": {Name: "wrap", Commands: []Command{
		track(0, 1.0, 170),
		track(1.5, 1.0, -170),
	}},
	"sweep": {Name: "sweep", Commands: []Command{
		track(0, 1.0, 0),
		track(1, 1.0, 60),
		track(2, 1.0, 120),
		track(3, 1.0, 180),
		track(4, 1.0, -120),
	}},
	"lock": {Name: "lock", Commands: []Command{
		track(0, 1.5, 75),
		{At: 1.5, Action: ActionLock},
	}},
	"estop": {Name: "estop", Commands: []Command{
		track(0, 3.0, -30),
		{At: 1.0, Action: ActionStop},
	}},
}

func GetScenario(name string) (Scenario, bool) {
	s, ok := Scenarios[name]
	return s, ok
}

func ListScenarios() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
