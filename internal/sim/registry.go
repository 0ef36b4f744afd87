package sim

import (
	"fmt"
	"sort"

	"github.com/san-kum/pidtune/internal/dynamo"
	"github.com/san-kum/pidtune/internal/integrators"
)

var integratorFactories = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return integrators.NewEuler() },
	"rk4":   func() dynamo.Integrator { return integrators.NewRK4() },
	"rk45":  func() dynamo.Integrator { return integrators.NewRK45() },
}

// LookupIntegrator returns the factory registered under name.
func LookupIntegrator(name string) (func() dynamo.Integrator, error) {
	fn, ok := integratorFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func IntegratorNames() []string {
	names := make([]string, 0, len(integratorFactories))
	for name := range integratorFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
