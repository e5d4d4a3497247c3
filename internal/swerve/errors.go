package swerve

import "errors"

var (
	// ErrMissingHardware indicates a nil motor, encoder or configurator.
	ErrMissingHardware = errors.New("swerve: missing hardware handle")

	// ErrInvalidConstants indicates a non-positive wheel radius or gear ratio.
	ErrInvalidConstants = errors.New("swerve: invalid module constants")

	errBadReading = errors.New("swerve: non-finite sensor reading")
)
