package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/springnet/internal/integrators"
)

type Registry struct {
	integrators map[string]func() integrators.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() integrators.Stepper),
	}

	r.integrators["euler"] = func() integrators.Stepper { return integrators.NewEuler() }
	r.integrators["symplectic"] = func() integrators.Stepper { return integrators.NewSymplectic() }

	return r
}

func (r *Registry) GetIntegrator(name string) (integrators.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
