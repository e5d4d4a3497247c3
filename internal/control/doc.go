// Package control provides the feedback and feedforward laws used to drive
// a swerve module's two actuators.
//
// Both laws are value-in/value-out:
//
//   - [Loop]: a feedback law, implemented by [PID]
//   - [FeedforwardModel]: an open-loop effort model, implemented by [Feedforward]
//
// # Usage
//
//	turn := control.NewPID(2.5, 0, 0)
//	turn.EnableContinuousInput(-math.Pi, math.Pi)
//	volts := turn.Calculate(measuredRad, desiredRad)
//
// With only a proportional gain set, [PID] keeps no integrator, so it is
// stateless between calls. Loops implementing [Configurable] support live
// tuning.
package control
