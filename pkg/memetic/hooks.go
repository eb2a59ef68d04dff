package memetic

import (
	"time"

	"github.com/limaJavier/timetabling-memetic/pkg/solution"
)

// Hooks observe a running strategy. They are called synchronously from the search loop and must be cheap
type Hooks interface {
	// A candidate was built while seeding the population; feasible tells whether it was kept
	SeedingAttempt(feasible bool)
	// A generation finished; best is the best candidate of the new population
	GenerationCompleted(generation int, best *solution.Candidate, elapsed time.Duration)
	// The generation loop stopped after the given number of generations
	RunCompleted(generations int, best *solution.Candidate, elapsed time.Duration)
}

type NoopHooks struct{}

func (NoopHooks) SeedingAttempt(bool) {}

func (NoopHooks) GenerationCompleted(int, *solution.Candidate, time.Duration) {}

func (NoopHooks) RunCompleted(int, *solution.Candidate, time.Duration) {}
