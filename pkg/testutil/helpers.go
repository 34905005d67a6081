// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/loan-calculator/internal/ledger"
)

// FindScenario finds a saved scenario by name.
// Returns a pointer to the scenario if found, nil otherwise.
func FindScenario(scenarios []ledger.Scenario, name string) *ledger.Scenario {
	for i := range scenarios {
		if scenarios[i].Name == name {
			return &scenarios[i]
		}
	}
	return nil
}
