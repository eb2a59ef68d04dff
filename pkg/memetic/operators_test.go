package memetic

import (
	"testing"

	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/limaJavier/timetabling-memetic/pkg/solution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStrategy(t *testing.T, instance *model.Instance, config Config) *Strategy {
	t.Helper()
	strategy, err := NewStrategy(instance, config)
	require.NoError(t, err)
	return strategy
}

func greedyCandidate(t *testing.T, strategy *Strategy) *solution.Candidate {
	t.Helper()
	candidate := solution.NewCandidate(strategy.instance)
	greedyAllocate(candidate, strategy.random)
	candidate.ReevaluateConstraints()
	require.True(t, candidate.IsTotallyAllocated())
	return candidate
}

func TestMemeticStepResolvesTeacherClash(t *testing.T) {
	//** Arrange
	first := model.NewEvent("a", "t", 10, 1, 0)
	second := model.NewEvent("b", "t", 10, 1, 0)
	rooms := []model.Room{{Id: "r0", Capacity: 30}, {Id: "r1", Capacity: 30}}
	instance, err := model.NewInstance("teacher", 1, 2, rooms, []*model.Event{first, second})
	require.NoError(t, err)
	strategy := newTestStrategy(t, instance, testConfig())

	candidate := solution.NewCandidate(instance)
	candidate.Allocate(0, 0, first)
	candidate.Allocate(0, 1, second)
	require.True(t, candidate.Cell(0, 0).Violates(solution.TeacherConstraint))
	require.True(t, candidate.Cell(0, 1).Violates(solution.TeacherConstraint))

	//** Act
	strategy.memeticStep(candidate)

	//** Assert
	assert.True(t, candidate.IsTotallyAllocated())
	assert.Equal(t, 0, candidate.WeightedViolations())
}

func TestMemeticStepWithRoomMatching(t *testing.T) {
	//** Arrange
	big := model.NewEvent("big", "t1", 45, 1, 0)
	small := model.NewEvent("small", "t2", 20, 1, 0)
	rooms := []model.Room{{Id: "r0", Capacity: 30}, {Id: "r1", Capacity: 50}}
	instance, err := model.NewInstance("rooms", 1, 1, rooms, []*model.Event{big, small})
	require.NoError(t, err)
	config := testConfig()
	config.RoomMatching = true
	strategy := newTestStrategy(t, instance, config)

	candidate := solution.NewCandidate(instance)
	candidate.Allocate(0, 0, big)
	candidate.Allocate(0, 1, small)

	//** Act
	strategy.memeticStep(candidate)

	//** Assert
	assert.True(t, candidate.IsTotallyAllocated())
	assert.Equal(t, big, candidate.EventAt(0, 1))
	assert.Equal(t, 0, candidate.WeightedViolations())
}

func TestCrossoverProducesCompleteChildren(t *testing.T) {
	//** Arrange
	strategy := newTestStrategy(t, toyInstance(t), testConfig())
	parent1, parent2 := greedyCandidate(t, strategy), greedyCandidate(t, strategy)
	snapshot1, snapshot2 := parent1.Timetable(), parent2.Timetable()

	//** Act
	child1, child2 := strategy.crossover(parent1, parent2)

	//** Assert
	assert.True(t, child1.IsTotallyAllocated())
	assert.True(t, child2.IsTotallyAllocated())
	assert.Equal(t, snapshot1, parent1.Timetable())
	assert.Equal(t, snapshot2, parent2.Timetable())
}

func TestMutateKeepsEveryEvent(t *testing.T) {
	//** Arrange
	strategy := newTestStrategy(t, toyInstance(t), testConfig())
	candidate := greedyCandidate(t, strategy)

	//** Act
	strategy.mutate(candidate)

	//** Assert
	assert.True(t, candidate.IsTotallyAllocated())
	assert.Equal(t, len(strategy.instance.Events), candidate.TotalAllocated())
}

func TestTournamentPicksTheBest(t *testing.T) {
	//** Arrange
	config := testConfig()
	config.TournamentPercentage = 1
	config.PopulationSize = 8
	strategy := newTestStrategy(t, toyInstance(t), config)

	empty := solution.NewCandidate(strategy.instance)
	complete := greedyCandidate(t, strategy)
	population := []*solution.Candidate{empty, complete, empty}

	// Eight draws over three candidates almost always include the complete one
	wins := 0
	for range 50 {
		if strategy.tournament(population) == complete {
			wins++
		}
	}
	assert.Greater(t, wins, 40)
}
