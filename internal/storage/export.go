package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/swervesim/internal/sim"
)

type FrameRecord struct {
	Time           float64 `json:"t"`
	Mode           string  `json:"mode"`
	DesiredSpeed   float64 `json:"desired_speed"`
	DesiredAngle   float64 `json:"desired_angle"`
	OptimizedSpeed float64 `json:"optimized_speed"`
	OptimizedAngle float64 `json:"optimized_angle"`
	MeasuredSpeed  float64 `json:"measured_speed"`
	MeasuredAngle  float64 `json:"measured_angle"`
	Distance       float64 `json:"distance"`
	DriveVolts     float64 `json:"drive_volts"`
	TurnVolts      float64 `json:"turn_volts"`
}

type ExportData struct {
	Meta   RunMetadata   `json:"meta"`
	Frames []FrameRecord `json:"frames"`
}

// ExportJSON writes the metadata and frames of runID to w.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Meta:   *meta,
		Frames: make([]FrameRecord, len(frames)),
	}
	for i, f := range frames {
		data.Frames[i] = NewFrameRecord(f)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// NewFrameRecord flattens f for JSON, with angles in degrees.
func NewFrameRecord(f sim.Frame) FrameRecord {
	return FrameRecord{
		Time:           f.Time,
		Mode:           f.Mode.String(),
		DesiredSpeed:   f.Desired.Speed,
		DesiredAngle:   f.Desired.Angle.Degrees(),
		OptimizedSpeed: f.Optimized.Speed,
		OptimizedAngle: f.Optimized.Angle.Degrees(),
		MeasuredSpeed:  f.Measured.Speed,
		MeasuredAngle:  f.Measured.Angle.Degrees(),
		Distance:       f.Position.Distance,
		DriveVolts:     f.DriveVolts,
		TurnVolts:      f.TurnVolts,
	}
}
