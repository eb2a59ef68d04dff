package memetic

import (
	"fmt"
	"math/rand/v2"

	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/limaJavier/timetabling-memetic/pkg/solution"
)

// GreedyAllocate drains the unallocated queue of a candidate, most constrained events first. Every event goes to the
// first empty cell found among its valid rooms and timeslots, tried in random order. An event without such a cell is
// forced into a random cell, whose occupant returns to the queue. It fails with ErrDegenerateInput when the instance
// holds more events than cells, since the queue could never drain
func GreedyAllocate(candidate *solution.Candidate, random *rand.Rand) error {
	instance := candidate.Instance()
	if cells := instance.NumTimeslots() * instance.NumRooms(); len(instance.Events) > cells {
		return fmt.Errorf("%w: %d events do not fit in %d cells", ErrDegenerateInput, len(instance.Events), cells)
	}
	greedyAllocate(candidate, random)
	return nil
}

// greedyAllocate is GreedyAllocate for instances already known to fit
func greedyAllocate(candidate *solution.Candidate, random *rand.Rand) {
	instance := candidate.Instance()

	candidate.SortUnallocatedForGreedy()
	for !candidate.IsTotallyAllocated() {
		event := candidate.NextUnallocated()
		if allocateInEmptyCell(candidate, event, random) {
			continue
		}

		timeslot := choose(random, instance.TimeslotIndices())
		room := choose(random, instance.RoomIndices())
		candidate.Allocate(timeslot, room, event)
		candidate.SortUnallocatedForGreedy()
	}
}

func allocateInEmptyCell(candidate *solution.Candidate, event *model.Event, random *rand.Rand) bool {
	rooms := candidate.GetValidRooms(event)
	for len(rooms) > 0 {
		room := chooseRemove(random, &rooms)
		timeslots := candidate.GetValidTimeslots(event)
		for len(timeslots) > 0 {
			timeslot := chooseRemove(random, &timeslots)
			if candidate.Cell(timeslot, room).IsEmpty() {
				candidate.Allocate(timeslot, room, event)
				return true
			}
		}
	}
	return false
}
