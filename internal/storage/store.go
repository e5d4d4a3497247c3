package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/san-kum/swervesim/internal/geometry"
	"github.com/san-kum/swervesim/internal/kinematics"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "states.csv.zst"
)

var ErrRunNotFound = errors.New("storage: run not found")

var header = []string{
	"time", "mode",
	"desired_speed", "desired_angle",
	"optimized_speed", "optimized_angle",
	"measured_speed", "measured_angle",
	"distance", "drive_volts", "turn_volts",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Module     string             `json:"module"`
	Robot      string             `json:"robot"`
	Timestamp  time.Time          `json:"timestamp"`
	Period     float64            `json:"period"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// Save writes meta and the result's frames under a new run directory and
// returns the run ID. ID, Scenario, Timestamp, Steps, Metrics and Errors
// are filled from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", result.Scenario, now.UnixNano())
	meta.Scenario = result.Scenario
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics
	meta.Errors = nil
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", fmt.Errorf("write frames: %w", err)
	}

	return meta.ID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeFrames(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	if err := WriteCSV(zw, frames); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// WriteCSV writes frames as plain CSV with a header row. Angles are in
// radians.
func WriteCSV(w io.Writer, frames []sim.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, f := range frames {
		if err := cw.Write(frameRow(f)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func frameRow(f sim.Frame) []string {
	return []string{
		formatFloat(f.Time),
		f.Mode.String(),
		formatFloat(f.Desired.Speed),
		formatFloat(f.Desired.Angle.Radians()),
		formatFloat(f.Optimized.Speed),
		formatFloat(f.Optimized.Angle.Radians()),
		formatFloat(f.Measured.Speed),
		formatFloat(f.Measured.Angle.Radians()),
		formatFloat(f.Position.Distance),
		formatFloat(f.DriveVolts),
		formatFloat(f.TurnVolts),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns metadata for every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadFrames decompresses and parses the frames saved for runID.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return ReadCSV(zr)
}

// ReadCSV parses frames written by WriteCSV. Rows that fail to parse are
// skipped.
func ReadCSV(r io.Reader) ([]sim.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for _, record := range records[1:] {
		f, ok := parseRow(record)
		if !ok {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseRow(record []string) (sim.Frame, bool) {
	if len(record) != len(header) {
		return sim.Frame{}, false
	}
	vals := make([]float64, len(record))
	for i, field := range record {
		if i == 1 {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return sim.Frame{}, false
		}
		vals[i] = v
	}

	state := func(speed, angle float64) kinematics.ModuleState {
		return kinematics.NewModuleState(speed, geometry.FromRadians(angle))
	}
	return sim.Frame{
		Time:       vals[0],
		Mode:       swerve.ParseMode(record[1]),
		Desired:    state(vals[2], vals[3]),
		Optimized:  state(vals[4], vals[5]),
		Measured:   state(vals[6], vals[7]),
		Position:   kinematics.NewModulePosition(vals[8], geometry.FromRadians(vals[7])),
		DriveVolts: vals[9],
		TurnVolts:  vals[10],
	}, true
}

// ExportCSV writes the frames of runID to w as uncompressed CSV.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return WriteCSV(w, frames)
}
