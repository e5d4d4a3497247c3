package swerve

import (
	"github.com/charmbracelet/log"

	"github.com/san-kum/swervesim/internal/control"
)

type Option func(*Module)

func WithLogger(l *log.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDriveLoop replaces the drive speed loop.
func WithDriveLoop(l control.Loop) Option {
	return func(m *Module) { m.drivePID = l }
}

// WithTurnLoop replaces the steering loop. If l supports continuous input
// it is enabled over [-π, π].
func WithTurnLoop(l control.Loop) Option {
	return func(m *Module) { m.turnPID = l }
}

func WithFeedforward(ff control.FeedforwardModel) Option {
	return func(m *Module) { m.ff = ff }
}
