package memetic

import (
	"sync"
	"testing"
	"time"

	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/limaJavier/timetabling-memetic/pkg/solution"
	"github.com/stretchr/testify/require"
)

const testDirectory = "../../testdata/"

func toyInstance(t *testing.T) *model.Instance {
	t.Helper()
	instance, err := model.InstanceFromJson(testDirectory + "toy.json")
	require.NoError(t, err)
	return instance
}

func testConfig() Config {
	return Config{
		Generations:          15,
		PopulationSize:       8,
		TournamentPercentage: 0.25,
		ElitePercentage:      0.25,
		MutationProbability:  0.3,
		LocalSearch:          true,
		Seed:                 42,
	}
}

type recordingHooks struct {
	mutex       sync.Mutex
	seeding     []bool
	generations []int
	best        []int
	completed   int
}

func (hooks *recordingHooks) SeedingAttempt(feasible bool) {
	hooks.mutex.Lock()
	defer hooks.mutex.Unlock()
	hooks.seeding = append(hooks.seeding, feasible)
}

func (hooks *recordingHooks) GenerationCompleted(generation int, best *solution.Candidate, _ time.Duration) {
	hooks.mutex.Lock()
	defer hooks.mutex.Unlock()
	hooks.generations = append(hooks.generations, generation)
	hooks.best = append(hooks.best, best.WeightedViolations())
}

func (hooks *recordingHooks) RunCompleted(int, *solution.Candidate, time.Duration) {
	hooks.mutex.Lock()
	defer hooks.mutex.Unlock()
	hooks.completed++
}

type recordingSink struct {
	mutex sync.Mutex
	lines []string
}

func (sink *recordingSink) Report(line string) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	sink.lines = append(sink.lines, line)
}
