// Package viz provides a live terminal view of a simulated swerve module.
//
// The view is a Bubble Tea program that steps the module and its plant on
// every tick and draws a top-down wheel on a braille [Canvas]: the solid
// spoke is the measured heading, the dotted one the optimized setpoint.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	←/→   - Override heading by 15°
//	↑/↓   - Override speed by 0.25 m/s
//	L     - Lock steering at zero
//	S     - Force stop
//	A     - Return to the scenario
//	R     - Restart the scenario clock
//	T     - Cycle color themes
//	Q     - Quit
package viz
