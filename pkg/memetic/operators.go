package memetic

import (
	"github.com/limaJavier/timetabling-memetic/pkg/solution"
	"go.uber.org/zap"
)

// tournament keeps the best of tournamentSize draws, with replacement, from the population
func (strategy *Strategy) tournament(population []*solution.Candidate) *solution.Candidate {
	var best *solution.Candidate
	for range strategy.tournamentSize {
		contender := choose(strategy.random, population)
		if best == nil || contender.WeightedViolations() < best.WeightedViolations() {
			best = contender
		}
	}
	return best
}

// crossover clones each parent and copies into it half as many random cells as there are events from the other one
func (strategy *Strategy) crossover(parent1, parent2 *solution.Candidate) (*solution.Candidate, *solution.Candidate) {
	n := len(strategy.instance.Events) / 2

	child1, child2 := parent1.Clone(), parent2.Clone()
	strategy.cross(child1, parent2, n)
	strategy.cross(child2, parent1, n)
	return child1, child2
}

// cross copies n random cells of the parent into the child, moving the events to match. Events displaced on the way
// are greedily allocated again
func (strategy *Strategy) cross(child, parent *solution.Candidate, n int) {
	instance := strategy.instance
	for range n {
		timeslot := choose(strategy.random, instance.TimeslotIndices())
		room := choose(strategy.random, instance.RoomIndices())
		child.Allocate(timeslot, room, parent.EventAt(timeslot, room))
	}

	greedyAllocate(child, strategy.random)
	child.ReevaluateConstraints()
}

// mutate swaps the occupants of random pairs of cells, between 20% and 80% of the cells of the grid
func (strategy *Strategy) mutate(candidate *solution.Candidate) {
	instance := strategy.instance
	cells := instance.NumTimeslots() * instance.NumRooms()
	lower, upper := cells*20/100, cells*80/100
	swaps := lower + strategy.random.IntN(upper-lower+1)

	for range swaps {
		t1 := choose(strategy.random, instance.TimeslotIndices())
		t2 := choose(strategy.random, instance.TimeslotIndices())
		r1 := choose(strategy.random, instance.RoomIndices())
		r2 := choose(strategy.random, instance.RoomIndices())

		e1, e2 := candidate.EventAt(t1, r1), candidate.EventAt(t2, r2)
		if e1 != nil {
			candidate.DeallocateEvent(e1)
		}
		if e2 != nil {
			candidate.DeallocateEvent(e2)
		}
		candidate.Allocate(t1, r1, e2)
		candidate.Allocate(t2, r2, e1)
	}

	candidate.ReevaluateConstraints()
}

// memeticStep evicts every event breaking a constraint and greedily allocates them again
func (strategy *Strategy) memeticStep(candidate *solution.Candidate) {
	instance := strategy.instance
	for timeslot := range instance.NumTimeslots() {
		for room := range instance.NumRooms() {
			if candidate.Cell(timeslot, room).Violated() {
				candidate.DeallocateAt(timeslot, room)
			}
		}
	}

	greedyAllocate(candidate, strategy.random)

	if strategy.config.RoomMatching {
		for timeslot := range instance.NumTimeslots() {
			if _, err := candidate.ReassignRooms(timeslot); err != nil {
				strategy.logger.Warn("room matching failed", zap.Int("timeslot", timeslot), zap.Error(err))
			}
		}
	}

	candidate.ReevaluateConstraints()
}
