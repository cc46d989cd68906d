package config

import (
	"fmt"
	"sort"
)

var Presets = map[string]*Scenario{
	"pendulum": {
		Name: "pendulum", Time: 3, Timesteps: 12000, Gravity: 9.81, Integrator: "euler",
		Fixtures: []FixtureConfig{{X: 0, Y: 10}},
		Masses:   []MassConfig{{M: 1, X: -3, Y: 3}},
		Springs:  []SpringConfig{{L0: 7.615, K: 5000, Conn: []string{"f0", "m0"}}},
	},
	"oscillator": {
		Name: "oscillator", Time: 5, Timesteps: 5000, Gravity: 0, Integrator: "euler",
		Fixtures: []FixtureConfig{{X: 0, Y: 0}},
		Masses:   []MassConfig{{M: 1, X: 1.5, Y: 0}},
		Springs:  []SpringConfig{{L0: 1, K: 10, Conn: []string{"f0", "m0"}}},
	},
	"double_pendulum": {
		Name: "double_pendulum", Time: 10, Timesteps: 40000, Gravity: 9.81, Integrator: "euler",
		Fixtures: []FixtureConfig{{X: 0, Y: 10}},
		Masses: []MassConfig{
			{M: 1, X: 2, Y: 10},
			{M: 1, X: 4, Y: 10},
		},
		Springs: []SpringConfig{
			{L0: 2, K: 2000, Conn: []string{"f0", "m0"}},
			{L0: 2, K: 2000, Conn: []string{"m0", "m1"}},
		},
	},
	"chain": {
		Name: "chain", Time: 5, Timesteps: 20000, Gravity: 9.81, Integrator: "euler",
		Fixtures: []FixtureConfig{{X: 0, Y: 5}, {X: 5, Y: 5}},
		Masses: []MassConfig{
			{M: 0.5, X: 1, Y: 5},
			{M: 0.5, X: 2, Y: 5},
			{M: 0.5, X: 3, Y: 5},
			{M: 0.5, X: 4, Y: 5},
		},
		Springs: []SpringConfig{
			{L0: 0.9, K: 400, Conn: []string{"f0", "m0"}},
			{L0: 0.9, K: 400, Conn: []string{"m0", "m1"}},
			{L0: 0.9, K: 400, Conn: []string{"m1", "m2"}},
			{L0: 0.9, K: 400, Conn: []string{"m2", "m3"}},
			{L0: 0.9, K: 400, Conn: []string{"m3", "f1"}},
		},
	},
	"triangle": {
		Name: "triangle", Time: 4, Timesteps: 16000, Gravity: 9.81, Integrator: "euler",
		Fixtures: []FixtureConfig{{X: -1, Y: 6}, {X: 1, Y: 6}},
		Masses: []MassConfig{
			{M: 1, X: 0, Y: 4},
			{M: 2, X: 0.5, Y: 2.5, VX: 1},
		},
		Springs: []SpringConfig{
			{L0: 2, K: 300, Conn: []string{"f0", "m0"}},
			{L0: 2, K: 300, Conn: []string{"f1", "m0"}},
			{L0: 1.5, K: 500, Conn: []string{"m0", "m1"}},
		},
	},
	"free_fall": {
		Name: "free_fall", Time: 1, Timesteps: 100, Gravity: 9.81, Integrator: "euler",
		Masses: []MassConfig{{M: 1, X: 0, Y: 10}},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	sc, ok := Presets[name]
	if !ok {
		return nil
	}
	c := sc.Clone()
	if c.Elastic == "" {
		c.Elastic = DefaultElastic
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	return c
}

// MustPreset panics for an unknown name; for tests and fixed CLI defaults.
func MustPreset(name string) *Scenario {
	sc := GetPreset(name)
	if sc == nil {
		panic(fmt.Sprintf("config: unknown preset %q", name))
	}
	return sc
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
