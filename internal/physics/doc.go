// Package physics provides the mechanical model a simulated swerve module
// runs against.
//
// [ModulePlant] implements [dynamo.System] with two first-order DC motor
// models: one turning the wheel through the drive reduction, one swinging
// the wheel about its steering axis. It also implements
// [control.Configurable] for runtime parameter adjustment.
//
// State layout:
//
//	x[0] drive motor position (rotations)
//	x[1] drive motor velocity (rotations/s)
//	x[2] steering angle (radians, unwrapped)
//	x[3] steering rate (radians/s)
//
// Control layout: u[0] drive volts, u[1] steering volts.
package physics
