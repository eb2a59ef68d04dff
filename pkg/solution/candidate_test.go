package solution

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstance(t *testing.T, days, periods int, capacities []int, events ...*model.Event) *model.Instance {
	t.Helper()
	rooms := make([]model.Room, len(capacities))
	for i, capacity := range capacities {
		rooms[i] = model.Room{Id: string(rune('A' + i)), Capacity: capacity}
	}
	instance, err := model.NewInstance("test", days, periods, rooms, events)
	require.NoError(t, err)
	return instance
}

// Instance with every kind of constraint in play: shared teachers, shared curricula, bans, room restrictions and
// rooms too small for some events
func newMixedInstance(t *testing.T) *model.Instance {
	t.Helper()
	events := []*model.Event{
		model.NewEvent("math", "alice", 40, 2, 0),
		model.NewEvent("math", "alice", 40, 2, 1),
		model.NewEvent("physics", "alice", 25, 1, 0),
		model.NewEvent("chemistry", "bob", 60, 1, 0),
		model.NewEvent("chemistry", "bob", 60, 1, 1),
		model.NewEvent("history", "carol", 20, 1, 0),
		model.NewEvent("art", "dave", 10, 1, 0),
		model.NewEvent("art", "dave", 10, 1, 1),
	}
	for _, event := range events[:3] {
		event.CurriculumId = "science"
	}
	for _, event := range events[3:6] {
		event.CurriculumId = "mixed"
	}
	events[3].BannedTimeslots = []int{0, 1}
	events[4].BannedTimeslots = []int{0, 1}
	events[6].ValidRooms = []int{2}
	events[7].ValidRooms = []int{2}
	return newInstance(t, 3, 2, []int{30, 50, 70}, events...)
}

func assertConsistent(t *testing.T, candidate *Candidate) {
	t.Helper()
	instance := candidate.Instance()

	// Conservation and no double placement
	held := make(map[model.EventKey]int)
	for timeslot := range instance.NumTimeslots() {
		for room := range instance.NumRooms() {
			if event := candidate.EventAt(timeslot, room); event != nil {
				held[event.Key()]++
			}
		}
	}
	for _, event := range candidate.Unallocated() {
		held[event.Key()]++
	}
	require.Len(t, held, len(instance.Events))
	for key, count := range held {
		require.Equal(t, 1, count, "event %v", key)
	}
	require.Equal(t, len(instance.Events), candidate.TotalAllocated()+candidate.TotalUnallocated())

	// Teacher availability mirrors the grid
	for id := range instance.Teachers {
		teacher, ok := candidate.Teacher(id)
		require.True(t, ok)
		for _, unavailability := range teacher.Unavailability {
			event := lookupEvent(instance, unavailability.Event)
			timeslot, _, ok := candidate.Location(event)
			require.True(t, ok)
			require.Equal(t, timeslot, unavailability.Timeslot)
		}
	}

	// Incremental aggregates equal a full recompute
	full := candidate.Clone()
	full.ReevaluateConstraints()
	require.Equal(t, full.HardViolations(), candidate.HardViolations())
	require.Equal(t, full.SoftViolations(), candidate.SoftViolations())
}

func lookupEvent(instance *model.Instance, key model.EventKey) *model.Event {
	for _, event := range instance.Events {
		if event.Key() == key {
			return event
		}
	}
	return nil
}

func TestNewCandidate(t *testing.T) {
	instance := newMixedInstance(t)

	//** Act
	candidate := NewCandidate(instance)

	//** Assert
	assert.Equal(t, 8, candidate.TotalUnallocated())
	assert.Equal(t, 0, candidate.TotalAllocated())
	assert.Equal(t, 800, candidate.WeightedViolations())
	assert.Equal(t, instance.Events, candidate.Unallocated())
	assertConsistent(t, candidate)
}

func TestSingleEventAllocation(t *testing.T) {
	//** Arrange
	event := model.NewEvent("c", "t", 20, 1, 0)
	instance := newInstance(t, 2, 2, []int{30}, event)
	candidate := NewCandidate(instance)

	//** Act
	candidate.Allocate(3, 0, event)

	//** Assert
	assert.True(t, candidate.IsTotallyAllocated())
	assert.Equal(t, 0, candidate.WeightedViolations())
	assert.Equal(t, event, candidate.EventAt(3, 0))
	timeslot, room, ok := candidate.Location(event)
	assert.True(t, ok)
	assert.Equal(t, [2]int{3, 0}, [2]int{timeslot, room})
	assertConsistent(t, candidate)
}

func TestTeacherDoubleBooking(t *testing.T) {
	//** Arrange
	first := model.NewEvent("a", "t", 10, 1, 0)
	second := model.NewEvent("b", "t", 10, 1, 0)
	instance := newInstance(t, 2, 2, []int{30, 30}, first, second)
	candidate := NewCandidate(instance)

	//** Act
	candidate.Allocate(1, 0, first)
	candidate.Allocate(1, 1, second)

	//** Assert
	assert.True(t, candidate.Cell(1, 0).Violates(TeacherConstraint))
	assert.True(t, candidate.Cell(1, 1).Violates(TeacherConstraint))
	assert.Equal(t, 2, candidate.HardViolations())
	assert.Equal(t, 10, candidate.WeightedViolations())
	assertConsistent(t, candidate)

	//** Act
	candidate.Allocate(2, 1, second)

	//** Assert
	assert.False(t, candidate.Cell(1, 0).Violates(TeacherConstraint))
	assert.True(t, candidate.Cell(1, 1).IsEmpty())
	assert.Equal(t, 0, candidate.WeightedViolations())
	assertConsistent(t, candidate)
}

func TestCellIsASnapshot(t *testing.T) {
	//** Arrange
	first := model.NewEvent("a", "t", 10, 1, 0)
	second := model.NewEvent("b", "t", 10, 1, 0)
	instance := newInstance(t, 1, 1, []int{30, 5}, first, second)
	candidate := NewCandidate(instance)
	candidate.Allocate(0, 1, first)

	//** Act
	cell := candidate.Cell(0, 1)
	cell.Event = second

	//** Assert
	assert.False(t, candidate.Cell(0, 1).IsEmpty())
	assert.True(t, candidate.Cell(0, 0).IsEmpty())
	assert.Same(t, first, candidate.EventAt(0, 1))
	assert.True(t, candidate.Cell(0, 1).Violated())
	assert.Equal(t, 0, candidate.Cell(0, 1).HardViolations())
	assert.Equal(t, 1, candidate.Cell(0, 1).SoftViolations())
	assert.True(t, candidate.Cell(0, 1).Violates(RoomCapacityConstraint))
	assertConsistent(t, candidate)
}

func TestCurriculumClash(t *testing.T) {
	//** Arrange
	first := model.NewEvent("a", "t1", 10, 1, 0)
	second := model.NewEvent("b", "t2", 10, 1, 0)
	third := model.NewEvent("c", "t3", 10, 1, 0)
	first.CurriculumId, second.CurriculumId = "q", "q"
	instance := newInstance(t, 1, 2, []int{30, 30, 30}, first, second, third)
	candidate := NewCandidate(instance)

	//** Act
	candidate.Allocate(0, 0, first)
	candidate.Allocate(0, 1, second)
	candidate.Allocate(0, 2, third)

	//** Assert
	assert.True(t, candidate.Cell(0, 0).Violates(CurriculumConstraint))
	assert.True(t, candidate.Cell(0, 1).Violates(CurriculumConstraint))
	assert.False(t, candidate.Cell(0, 2).Violated())
	assert.Equal(t, 0, candidate.HardViolations())
	assert.Equal(t, 2, candidate.SoftViolations())
	assertConsistent(t, candidate)

	//** Act
	candidate.DeallocateEvent(first)

	//** Assert
	assert.Equal(t, 0, candidate.SoftViolations())
	assert.Equal(t, 100, candidate.WeightedViolations())
	assertConsistent(t, candidate)
}

func TestStaticConstraints(t *testing.T) {
	//** Arrange
	event := model.NewEvent("a", "t", 40, 1, 0)
	event.BannedTimeslots = []int{0}
	event.ValidRooms = []int{1}
	instance := newInstance(t, 1, 2, []int{30, 50}, event)
	candidate := NewCandidate(instance)

	//** Act
	candidate.Allocate(0, 0, event)

	//** Assert
	cell := candidate.Cell(0, 0)
	assert.True(t, cell.Violates(RoomConstraint))
	assert.True(t, cell.Violates(TimeslotConstraint))
	assert.True(t, cell.Violates(RoomCapacityConstraint))
	assert.False(t, cell.Violates(TeacherConstraint))
	assert.Equal(t, 2, cell.HardViolations())
	assert.Equal(t, 1, cell.SoftViolations())
	assert.Equal(t, 11, candidate.WeightedViolations())

	//** Act
	candidate.Allocate(1, 1, event)

	//** Assert
	assert.Equal(t, 0, candidate.WeightedViolations())
	assertConsistent(t, candidate)
}

func TestAllocateDisplacesOccupant(t *testing.T) {
	//** Arrange
	instance := newMixedInstance(t)
	candidate := NewCandidate(instance)
	first, second := instance.Events[0], instance.Events[5]
	candidate.Allocate(2, 1, first)

	//** Act
	candidate.Allocate(2, 1, second)

	//** Assert
	assert.Equal(t, second, candidate.EventAt(2, 1))
	unallocated := candidate.Unallocated()
	assert.Equal(t, first, unallocated[len(unallocated)-1])
	_, _, ok := candidate.Location(first)
	assert.False(t, ok)
	assertConsistent(t, candidate)

	//** Act (allocating the occupant again is a no-op)
	candidate.Allocate(2, 1, second)

	//** Assert
	assert.Equal(t, 7, candidate.TotalUnallocated())
	assertConsistent(t, candidate)
}

func TestDeallocateEvent(t *testing.T) {
	instance := newMixedInstance(t)
	candidate := NewCandidate(instance)
	event := instance.Events[3]

	assert.False(t, candidate.DeallocateEvent(event))

	candidate.Allocate(4, 2, event)
	assert.True(t, candidate.DeallocateEvent(event))
	assert.True(t, candidate.Cell(4, 2).IsEmpty())
	assert.Equal(t, 8, candidate.TotalUnallocated())
	assertConsistent(t, candidate)
}

func TestRandomMutationsStayConsistent(t *testing.T) {
	//** Arrange
	instance := newMixedInstance(t)
	candidate := NewCandidate(instance)
	random := rand.New(rand.NewPCG(7, 0))

	for step := range 400 {
		//** Act
		timeslot, room := random.IntN(instance.NumTimeslots()), random.IntN(instance.NumRooms())
		switch random.IntN(4) {
		case 0:
			candidate.DeallocateAt(timeslot, room)
		case 1:
			candidate.DeallocateEvent(instance.Events[random.IntN(len(instance.Events))])
		default:
			candidate.Allocate(timeslot, room, instance.Events[random.IntN(len(instance.Events))])
		}

		//** Assert
		if step%10 == 0 {
			assertConsistent(t, candidate)
		}
	}
	assertConsistent(t, candidate)
}

func TestCloneIsIndependent(t *testing.T) {
	//** Arrange
	instance := newMixedInstance(t)
	candidate := NewCandidate(instance)
	candidate.Allocate(0, 0, instance.Events[0])
	candidate.Allocate(0, 1, instance.Events[1])

	//** Act
	clone := candidate.Clone()
	clone.DeallocateAt(0, 0)
	clone.Allocate(5, 2, instance.Events[2])

	//** Assert
	assert.Equal(t, instance.Events[0], candidate.EventAt(0, 0))
	assert.Nil(t, candidate.EventAt(5, 2))
	assert.Equal(t, 6, candidate.TotalUnallocated())
	assert.Equal(t, 6, clone.TotalUnallocated())
	alice, _ := candidate.Teacher("alice")
	assert.Len(t, alice.Unavailability, 2)
	assertConsistent(t, candidate)
	assertConsistent(t, clone)
}

func TestGetValidTimeslots(t *testing.T) {
	//** Arrange
	instance := newMixedInstance(t)
	candidate := NewCandidate(instance)
	chemistry := instance.Events[3]

	//** Act & Assert
	assert.Equal(t, []int{2, 3, 4, 5}, candidate.GetValidTimeslots(chemistry))

	// The teacher of the event is busy on timeslot 4
	candidate.Allocate(4, 0, instance.Events[4])
	assert.Equal(t, []int{2, 3, 5}, candidate.GetValidTimeslots(chemistry))

	// No timeslot left falls back to every timeslot
	chemistry.BannedTimeslots = []int{0, 1, 2, 3, 5}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, candidate.GetValidTimeslots(chemistry))
}

func TestGetValidRooms(t *testing.T) {
	instance := newMixedInstance(t)
	candidate := NewCandidate(instance)

	assert.Equal(t, []int{2}, candidate.GetValidRooms(instance.Events[6]))
	assert.Equal(t, []int{0, 1, 2}, candidate.GetValidRooms(instance.Events[0]))

	// The returned domain is a copy
	rooms := candidate.GetValidRooms(instance.Events[0])
	rooms[0] = 9
	assert.Equal(t, []int{0, 1, 2}, instance.RoomIndices())
}

func TestSortUnallocatedForGreedy(t *testing.T) {
	//** Arrange
	instance := newMixedInstance(t)
	candidate := NewCandidate(instance)

	//** Act
	candidate.SortUnallocatedForGreedy()

	//** Assert (art: 2 rooms excluded, chemistry: 2 timeslots banned, then instance order)
	keys := make([]string, 0)
	for event := candidate.NextUnallocated(); event != nil; event = candidate.NextUnallocated() {
		keys = append(keys, event.String())
	}
	assert.Equal(t, []string{"chemistry#0", "chemistry#1", "art#0", "art#1", "math#0", "math#1", "physics#0", "history#0"}, keys)
}

func TestReevaluateConstraintsDetectsLostEvents(t *testing.T) {
	instance := newMixedInstance(t)
	candidate := NewCandidate(instance)

	// A popped event that is never placed breaks conservation
	candidate.NextUnallocated()

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered)
		err, ok := recovered.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrStructuralInvariant))
		var invariantErr InvariantError
		require.True(t, errors.As(err, &invariantErr))
		assert.Equal(t, InvariantError{Allocated: 0, Unallocated: 7, Events: 8}, invariantErr)
	}()
	candidate.ReevaluateConstraints()
}

func TestAllocateOutOfRangePanics(t *testing.T) {
	candidate := NewCandidate(newMixedInstance(t))

	assert.PanicsWithError(t, (&model.IndexError{X: 6, Y: 0, Width: 6, Height: 3}).Error(), func() {
		candidate.Allocate(6, 0, nil)
	})
}
