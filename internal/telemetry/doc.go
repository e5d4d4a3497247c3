// Package telemetry serves live module snapshots over HTTP and a websocket.
//
// A [Hub] is fed frames by the simulator through the observers returned
// by [Hub.Feed] and keeps the latest snapshot per module. Websocket
// clients receive every snapshot as it is published; slow clients are
// dropped rather than allowed to stall the control loop.
package telemetry
