// Package dynamo provides the continuous-time primitives used to simulate a
// swerve module's mechanics between control ticks.
//
//   - [State]: plant state vector
//   - [System]: ODE right-hand side (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper
//
// # Example
//
//	plant := physics.NewModulePlant(physics.DefaultModuleParams())
//	rk4 := integrators.NewRK4()
//	x = rk4.Step(plant, x, dynamo.Control{driveV, turnV}, t, dt)
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
package dynamo
