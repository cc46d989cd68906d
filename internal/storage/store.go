package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/springnet/internal/config"
	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/experiment"
	"github.com/san-kum/springnet/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	scenarioFile   = "scenario.yaml"
)

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
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Timestamp     time.Time          `json:"timestamp"`
	Integrator    string             `json:"integrator"`
	Elastic       string             `json:"elastic"`
	Duration      float64            `json:"duration"`
	Steps         int                `json:"steps"`
	Dt            float64            `json:"dt"`
	Gravity       float64            `json:"gravity"`
	NumMasses     int                `json:"num_masses"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	Drift         float64            `json:"drift_pct"`
	DriftDefined  bool               `json:"drift_defined"`
	Metrics       map[string]float64 `json:"metrics"`
}

func newMetadata(id string, out *experiment.Outcome) RunMetadata {
	res := out.Result
	return RunMetadata{
		ID:            id,
		Name:          out.Scenario.Name,
		Timestamp:     time.Now(),
		Integrator:    out.Scenario.Integrator,
		Elastic:       out.Config.Elastic.String(),
		Duration:      out.Config.Duration,
		Steps:         out.Config.Steps,
		Dt:            out.Config.Dt(),
		Gravity:       out.Config.Gravity,
		NumMasses:     res.Trajectory.NumMasses(),
		InitialEnergy: res.InitialEnergy,
		FinalEnergy:   res.FinalEnergy,
		Drift:         res.Drift,
		DriftDefined:  res.DriftDefined,
		Metrics:       res.Metrics,
	}
}

// Save writes metadata, the scenario and the trajectory of a finished run
// into a new run directory and returns the run id.
func (s *Store) Save(out *experiment.Outcome) (string, error) {
	runID := fmt.Sprintf("%s_%d", runSlug(out.Scenario.Name), time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := newMetadata(runID, out)
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, scenarioFile), out.Scenario); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTrajectoryCSV(csvFile, out.Result.Trajectory, out.Result.Times, out.Energy); err != nil {
		return "", err
	}
	return runID, csvFile.Close()
}

// runSlug keeps letters, digits, '-' and '_' of a scenario name so the run
// directory always sits directly under the store.
func runSlug(name string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if strings.Trim(slug, "_") == "" {
		return "run"
	}
	return slug
}

// runDir resolves a run id, refusing ids that would leave the store.
func (s *Store) runDir(runID string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("%w: run id %q", dynamo.ErrInvalidParameter, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTrajectoryCSV writes one row per snapshot: step, time, x/y per mass
// and, when energy is non-empty, the total energy. Floats use the shortest
// representation that parses back to the same value.
func WriteTrajectoryCSV(w io.Writer, traj sim.Trajectory, times, energy []float64) error {
	cw := csv.NewWriter(w)

	n := traj.NumMasses()
	withEnergy := len(energy) == len(traj) && len(energy) > 0

	header := []string{"step", "time"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	if withEnergy {
		header = append(header, "energy")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for j, snap := range traj {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(j))
		if j < len(times) {
			row = append(row, formatFloat(times[j]))
		} else {
			row = append(row, "")
		}
		for i := 0; i < n; i++ {
			row = append(row, formatFloat(snap.X[i]), formatFloat(snap.Y[i]))
		}
		if withEnergy {
			row = append(row, formatFloat(energy[j]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTrajectoryCSV is the inverse of WriteTrajectoryCSV.
func ReadTrajectoryCSV(r io.Reader) (sim.Trajectory, []float64, []float64, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil, fmt.Errorf("trajectory: missing header")
	}

	header := records[0]
	withEnergy := len(header) > 0 && header[len(header)-1] == "energy"
	coords := len(header) - 2
	if withEnergy {
		coords--
	}
	if coords < 0 || coords%2 != 0 {
		return nil, nil, nil, fmt.Errorf("trajectory: malformed header %v", header)
	}
	n := coords / 2

	rows := records[1:]
	traj := make(sim.Trajectory, len(rows))
	times := make([]float64, len(rows))
	var energy []float64
	if withEnergy {
		energy = make([]float64, len(rows))
	}

	for j, rec := range rows {
		if len(rec) != len(header) {
			return nil, nil, nil, fmt.Errorf("trajectory: row %d has %d fields, want %d", j, len(rec), len(header))
		}
		if times[j], err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, nil, nil, fmt.Errorf("trajectory: row %d time: %w", j, err)
		}

		snap := sim.Snapshot{X: make([]float64, n), Y: make([]float64, n)}
		for i := 0; i < n; i++ {
			if snap.X[i], err = strconv.ParseFloat(rec[2+2*i], 64); err != nil {
				return nil, nil, nil, fmt.Errorf("trajectory: row %d x%d: %w", j, i, err)
			}
			if snap.Y[i], err = strconv.ParseFloat(rec[3+2*i], 64); err != nil {
				return nil, nil, nil, fmt.Errorf("trajectory: row %d y%d: %w", j, i, err)
			}
		}
		traj[j] = snap

		if withEnergy {
			if energy[j], err = strconv.ParseFloat(rec[len(rec)-1], 64); err != nil {
				return nil, nil, nil, fmt.Errorf("trajectory: row %d energy: %w", j, err)
			}
		}
	}

	return traj, times, energy, nil
}

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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadScenario returns the scenario the run was started from.
func (s *Store) LoadScenario(runID string) (*config.Scenario, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	return config.Load(filepath.Join(dir, scenarioFile))
}

// LoadTrajectory returns snapshots, times and, if it was recorded, the
// energy series of a run.
func (s *Store) LoadTrajectory(runID string) (sim.Trajectory, []float64, []float64, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := os.Open(filepath.Join(dir, trajectoryFile))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	return ReadTrajectoryCSV(f)
}
