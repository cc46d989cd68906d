package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/springnet/internal/config"
	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/experiment"
	"github.com/san-kum/springnet/internal/sim"
)

func runPreset(t *testing.T, name string, steps int, energy bool) *experiment.Outcome {
	t.Helper()
	sc := config.MustPreset(name)
	sc.Timesteps = steps
	sc.Time = float64(steps) * 0.001

	out, err := experiment.Run(context.Background(), sc, experiment.Options{RecordEnergy: energy})
	if err != nil {
		t.Fatalf("run %s failed: %v", name, err)
	}
	return out
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	out := runPreset(t, "triangle", 50, true)

	runID, err := st.Save(out)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "triangle_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "triangle" || meta.Integrator != "euler" || meta.Elastic != "quadratic" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Steps != 50 || meta.NumMasses != 2 {
		t.Errorf("expected 50 steps and 2 masses, got %d and %d", meta.Steps, meta.NumMasses)
	}
	if meta.InitialEnergy != out.Result.InitialEnergy || meta.Drift != out.Result.Drift {
		t.Errorf("energy figures differ: %+v", meta)
	}
	if _, ok := meta.Metrics["max_stretch"]; !ok {
		t.Errorf("metrics not saved: %v", meta.Metrics)
	}

	sc, err := st.LoadScenario(runID)
	if err != nil {
		t.Fatalf("load scenario failed: %v", err)
	}
	if len(sc.Springs) != 3 || sc.Timesteps != 50 {
		t.Errorf("scenario differs: %+v", sc)
	}
}

func TestStoreTrajectoryRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	out := runPreset(t, "double_pendulum", 40, true)
	runID, err := st.Save(out)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	traj, times, energy, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}

	if len(traj) != len(out.Result.Trajectory) || len(times) != len(traj) || len(energy) != len(traj) {
		t.Fatalf("length mismatch: %d/%d/%d vs %d", len(traj), len(times), len(energy), len(out.Result.Trajectory))
	}
	for j := range traj {
		want := out.Result.Trajectory[j]
		for i := range want.X {
			if traj[j].X[i] != want.X[i] || traj[j].Y[i] != want.Y[i] {
				t.Fatalf("snapshot %d mass %d: got (%v,%v), want (%v,%v)",
					j, i, traj[j].X[i], traj[j].Y[i], want.X[i], want.Y[i])
			}
		}
		if times[j] != out.Result.Times[j] {
			t.Fatalf("time %d: got %v, want %v", j, times[j], out.Result.Times[j])
		}
		if energy[j] != out.Energy[j] {
			t.Fatalf("energy %d: got %v, want %v", j, energy[j], out.Energy[j])
		}
	}
}

func TestStoreWithoutEnergy(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(runPreset(t, "free_fall", 10, false))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	traj, _, energy, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(traj) != 11 {
		t.Errorf("expected 11 snapshots, got %d", len(traj))
	}
	if energy != nil {
		t.Errorf("expected no energy column, got %d values", len(energy))
	}
}

func TestStoreSave_NameStaysInsideStore(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "runs")
	st := New(base)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	out := runPreset(t, "free_fall", 5, false)
	out.Scenario.Name = "../../escape"

	runID, err := st.Save(out)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if strings.ContainsAny(runID, `/\`) || strings.Contains(runID, "..") {
		t.Errorf("run id %q can leave the store", runID)
	}
	if _, err := os.Stat(filepath.Join(base, runID, "metadata.json")); err != nil {
		t.Errorf("run not written under the store: %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "runs" {
		t.Errorf("save wrote outside the store: %v", entries)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "../../escape" {
		t.Errorf("metadata should keep the scenario name, got %q", meta.Name)
	}
}

func TestRunSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"pendulum", "pendulum"},
		{"double_pendulum-2", "double_pendulum-2"},
		{"a/b", "a_b"},
		{"..", "run"},
		{"", "run"},
		{"my run", "my_run"},
	}
	for _, tt := range tests {
		if got := runSlug(tt.in); got != tt.want {
			t.Errorf("runSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStoreLoad_RejectsEscapingIDs(t *testing.T) {
	st := New(t.TempDir())
	for _, id := range []string{"", ".", "..", "../other", "a/b", `a\b`} {
		if _, err := st.Load(id); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("Load(%q): expected ErrInvalidParameter, got %v", id, err)
		}
		if _, _, _, err := st.LoadTrajectory(id); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("LoadTrajectory(%q): expected ErrInvalidParameter, got %v", id, err)
		}
		if _, err := st.LoadScenario(id); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("LoadScenario(%q): expected ErrInvalidParameter, got %v", id, err)
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(runPreset(t, "oscillator", 10, false)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	// Stray directories without metadata are skipped.
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(runPreset(t, "pendulum", 10, false))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "trajectory.csv", "scenario.yaml"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestWriteTrajectoryCSV(t *testing.T) {
	traj := sim.Trajectory{
		{X: []float64{0.1, 2}, Y: []float64{-1, 3}},
		{X: []float64{1.0 / 3, 2}, Y: []float64{-1.5, 3}},
	}
	times := []float64{0, 0.25}

	var buf bytes.Buffer
	if err := WriteTrajectoryCSV(&buf, traj, times, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "step,time,x0,y0,x1,y1" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "0,0,0.1,-1,2,3" {
		t.Errorf("unexpected first row %q", lines[1])
	}

	got, gotTimes, energy, err := ReadTrajectoryCSV(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got[1].X[0] != 1.0/3 || gotTimes[1] != 0.25 {
		t.Errorf("values not exact: %v %v", got[1].X[0], gotTimes[1])
	}
	if energy != nil {
		t.Errorf("expected no energy, got %v", energy)
	}
}

func TestReadTrajectoryCSV_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"odd columns", "step,time,x0\n0,0,1\n"},
		{"bad float", "step,time,x0,y0\n0,0,abc,1\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := ReadTrajectoryCSV(strings.NewReader(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExportImportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out := runPreset(t, "chain", 20, true)
	runID, err := st.Save(out)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, _ := st.Load(runID)
	traj, times, energy, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, NewExportData(meta, traj, times, energy)); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"snapshots"`) || !strings.Contains(buf.String(), `"x"`) {
		t.Errorf("unexpected JSON shape: %.200s", buf.String())
	}

	data, err := ImportJSON(&buf)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if data.ID != runID || len(data.Snapshots) != 21 || data.Snapshots.NumMasses() != 4 {
		t.Errorf("unexpected import: id=%s snaps=%d masses=%d", data.ID, len(data.Snapshots), data.Snapshots.NumMasses())
	}
	if data.Snapshots[20].Y[3] != traj[20].Y[3] {
		t.Errorf("y not preserved")
	}
}
