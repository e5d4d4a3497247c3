// Package swerve implements the closed-loop controller for one swerve
// module.
//
// A [Module] reads the steering angle from an absolute encoder and the
// wheel speed from the drive motor's encoder, and closes two independent
// loops each tick:
//
//   - drive: P loop on wheel speed plus a static/velocity feedforward
//   - steering: P loop on heading, with the error wrapped to the shorter
//     way around
//
// Before either loop runs, the desired state is optimized so the wheel
// never steers more than 90°: a wheel pointed backwards and spun in
// reverse moves the robot the same way.
//
// # Usage
//
//	m, err := swerve.New(cfg, hw, swerve.WithLogger(logger))
//	// every 20 ms
//	m.SetDesiredState(kinematics.NewModuleState(2.0, geometry.FromDegrees(45)))
//
// # Thread Safety
//
// A Module is NOT safe for concurrent use. Call it from the control loop
// goroutine only.
package swerve
