package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/springnet/internal/sim"
)

type ExportData struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Integrator    string         `json:"integrator"`
	Dt            float64        `json:"dt"`
	Duration      float64        `json:"duration"`
	Steps         int            `json:"steps"`
	InitialEnergy float64        `json:"initial_energy"`
	FinalEnergy   float64        `json:"final_energy"`
	Drift         float64        `json:"drift_pct"`
	Times         []float64      `json:"times"`
	Energy        []float64      `json:"energy,omitempty"`
	Snapshots     sim.Trajectory `json:"snapshots"`
}

func NewExportData(meta *RunMetadata, traj sim.Trajectory, times, energy []float64) *ExportData {
	return &ExportData{
		ID:            meta.ID,
		Name:          meta.Name,
		Integrator:    meta.Integrator,
		Dt:            meta.Dt,
		Duration:      meta.Duration,
		Steps:         meta.Steps,
		InitialEnergy: meta.InitialEnergy,
		FinalEnergy:   meta.FinalEnergy,
		Drift:         meta.Drift,
		Times:         times,
		Energy:        energy,
		Snapshots:     traj,
	}
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ImportJSON(r io.Reader) (*ExportData, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
