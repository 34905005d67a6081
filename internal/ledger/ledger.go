// Package ledger keeps saved loan scenarios for side-by-side comparison.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"go.uber.org/zap"
)

var (
	// ErrNoCalculation is returned when a scenario is saved before any
	// successful calculation.
	ErrNoCalculation = errors.New("no calculation to save; calculate a loan first")

	// ErrScenarioNotFound is returned when removing an unknown id.
	ErrScenarioNotFound = errors.New("scenario not found")
)

// Scenario is a named snapshot of a loan and its computed summary.
type Scenario struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Input     loans.Input   `json:"input"`
	Summary   loans.Summary `json:"summary"`
	CreatedAt time.Time     `json:"createdAt"`
}

type snapshot struct {
	input   loans.Input
	summary loans.Summary
}

// Ledger is an ordered, in-memory collection of scenarios. It is safe for
// concurrent use.
type Ledger struct {
	mu        sync.Mutex
	logger    *zap.Logger
	scenarios []Scenario
	current   *snapshot
	now       func() time.Time
	newID     func() string
}

// New creates an empty ledger.
func New(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Record stores the latest successful calculation so it can be saved with Add.
func (l *Ledger) Record(input loans.Input, summary loans.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = &snapshot{input: input, summary: summary}
}

// Current returns the latest recorded calculation, if any.
func (l *Ledger) Current() (loans.Input, loans.Summary, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return loans.Input{}, loans.Summary{}, false
	}
	return l.current.input, l.current.summary, true
}

// Add saves the latest recorded calculation under name. A blank name becomes
// "Scenario N" where N is one more than the number of saved scenarios.
func (l *Ledger) Add(name string) (Scenario, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return Scenario{}, ErrNoCalculation
	}
	return l.addLocked(name, l.current.input, l.current.summary), nil
}

// AddSnapshot saves an explicit input and summary under name.
func (l *Ledger) AddSnapshot(name string, input loans.Input, summary loans.Summary) Scenario {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addLocked(name, input, summary)
}

func (l *Ledger) addLocked(name string, input loans.Input, summary loans.Summary) Scenario {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Scenario %d", len(l.scenarios)+1)
	}
	scenario := Scenario{
		ID:        l.newID(),
		Name:      name,
		Input:     input,
		Summary:   summary,
		CreatedAt: l.now(),
	}
	l.scenarios = append(l.scenarios, scenario)

	l.logger.Debug("scenario saved",
		zap.String("op", "ledger.Add"),
		zap.String("id", scenario.ID),
		zap.String("name", scenario.Name),
		zap.Int("count", len(l.scenarios)),
	)
	return scenario
}

// Remove deletes the scenario with the given id.
func (l *Ledger) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.scenarios {
		if s.ID == id {
			l.scenarios = append(l.scenarios[:i], l.scenarios[i+1:]...)
			l.logger.Debug("scenario removed",
				zap.String("op", "ledger.Remove"),
				zap.String("id", id),
			)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
}

// Clear removes every saved scenario. The recorded calculation is kept.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scenarios = nil
}

// List returns a copy of the saved scenarios in insertion order.
func (l *Ledger) List() []Scenario {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Scenario, len(l.scenarios))
	copy(out, l.scenarios)
	return out
}

// Len reports the number of saved scenarios.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.scenarios)
}
