package solution

import (
	"slices"

	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/samber/lo"
)

// Candidate is one proposed timetable: a timeslot x room grid of allocations, the queue of events still waiting for a
// cell and the availability of every teacher under this placement. Every event of the instance is either in exactly
// one cell or in the queue. A candidate is not safe for concurrent use
type Candidate struct {
	instance    *model.Instance
	grid        *model.Grid[Allocation] // x: timeslot, y: room
	unallocated []*model.Event
	teachers    map[string]*model.Teacher
	locations   map[model.EventKey]int // Grid index of every allocated event

	hardViolations int
	softViolations int
}

// NewCandidate returns an empty candidate in which every event of the instance is unallocated, in instance order
func NewCandidate(instance *model.Instance) *Candidate {
	grid := model.NewGrid[Allocation](instance.NumTimeslots(), instance.NumRooms())
	for index := range grid.Len() {
		cell := grid.Cell(index)
		cell.Timeslot, cell.Room = grid.Coordinates(index)
	}

	teachers := make(map[string]*model.Teacher, len(instance.Teachers))
	for id, teacher := range instance.Teachers {
		teachers[id] = teacher.Clone()
	}

	return &Candidate{
		instance:    instance,
		grid:        grid,
		unallocated: slices.Clone(instance.Events),
		teachers:    teachers,
		locations:   make(map[model.EventKey]int, len(instance.Events)),
	}
}

// Clone returns an independent copy. The instance and its events are shared
func (candidate *Candidate) Clone() *Candidate {
	teachers := make(map[string]*model.Teacher, len(candidate.teachers))
	for id, teacher := range candidate.teachers {
		teachers[id] = teacher.Clone()
	}
	locations := make(map[model.EventKey]int, len(candidate.locations))
	for key, index := range candidate.locations {
		locations[key] = index
	}

	return &Candidate{
		instance:       candidate.instance,
		grid:           candidate.grid.Clone(),
		unallocated:    slices.Clone(candidate.unallocated),
		teachers:       teachers,
		locations:      locations,
		hardViolations: candidate.hardViolations,
		softViolations: candidate.softViolations,
	}
}

func (candidate *Candidate) Instance() *model.Instance {
	return candidate.instance
}

func (candidate *Candidate) HardViolations() int {
	return candidate.hardViolations
}

func (candidate *Candidate) SoftViolations() int {
	return candidate.softViolations
}

// WeightedViolations is the fitness of the candidate, lower is better
func (candidate *Candidate) WeightedViolations() int {
	return 100*len(candidate.unallocated) + 5*candidate.hardViolations + candidate.softViolations
}

func (candidate *Candidate) TotalAllocated() int {
	return len(candidate.locations)
}

func (candidate *Candidate) TotalUnallocated() int {
	return len(candidate.unallocated)
}

func (candidate *Candidate) IsTotallyAllocated() bool {
	return len(candidate.unallocated) == 0
}

// Unallocated returns a snapshot of the queue, front first
func (candidate *Candidate) Unallocated() []*model.Event {
	return slices.Clone(candidate.unallocated)
}

// Cell returns a copy of the allocation at (timeslot, room). It panics with a *model.IndexError when out of range
func (candidate *Candidate) Cell(timeslot, room int) Allocation {
	return *candidate.grid.At(timeslot, room)
}

func (candidate *Candidate) EventAt(timeslot, room int) *model.Event {
	return candidate.grid.At(timeslot, room).Event
}

// Location returns the cell currently holding the event
func (candidate *Candidate) Location(event *model.Event) (timeslot, room int, ok bool) {
	index, ok := candidate.locations[event.Key()]
	if !ok {
		return 0, 0, false
	}
	timeslot, room = candidate.grid.Coordinates(index)
	return timeslot, room, true
}

// Teacher returns a copy of the availability of a teacher under this candidate
func (candidate *Candidate) Teacher(id string) (*model.Teacher, bool) {
	teacher, ok := candidate.teachers[id]
	if !ok {
		return nil, false
	}
	return teacher.Clone(), true
}

// Allocate places an event at (timeslot, room); a nil event empties the cell. The previous occupant goes to the back
// of the unallocated queue. An event that is already placed elsewhere is moved, otherwise it leaves the queue if it is
// still there (NextUnallocated pops it before the placement).
// Only the cells of the touched timeslots whose constraints can change are re-checked
func (candidate *Candidate) Allocate(timeslot, room int, event *model.Event) {
	index := candidate.grid.Index(timeslot, room)
	cell := candidate.grid.Cell(index)
	if cell.Event.Equal(event) {
		return
	}

	if event != nil {
		if previous, ok := candidate.locations[event.Key()]; ok {
			candidate.setEvent(previous, nil)
		} else {
			candidate.removeUnallocated(event)
		}
	}

	if displaced := cell.Event; displaced != nil {
		candidate.setEvent(index, nil)
		candidate.unallocated = append(candidate.unallocated, displaced)
	}

	if event != nil {
		candidate.setEvent(index, event)
	}
}

func (candidate *Candidate) DeallocateAt(timeslot, room int) {
	candidate.Allocate(timeslot, room, nil)
}

// DeallocateEvent returns the event to the queue and reports whether it was placed
func (candidate *Candidate) DeallocateEvent(event *model.Event) bool {
	index, ok := candidate.locations[event.Key()]
	if !ok {
		return false
	}
	timeslot, room := candidate.grid.Coordinates(index)
	candidate.DeallocateAt(timeslot, room)
	return true
}

// ReevaluateConstraints recomputes every cell and the aggregates from scratch. It panics with an InvariantError when
// the events of the candidate no longer add up to the events of the instance
func (candidate *Candidate) ReevaluateConstraints() {
	candidate.hardViolations, candidate.softViolations = 0, 0
	allocated := 0
	for index := range candidate.grid.Len() {
		cell := candidate.grid.Cell(index)
		if !cell.IsEmpty() {
			allocated++
		}
		candidate.check(cell)
		candidate.hardViolations += cell.HardViolations()
		candidate.softViolations += cell.SoftViolations()
	}

	if allocated+len(candidate.unallocated) != len(candidate.instance.Events) || allocated != len(candidate.locations) {
		panic(InvariantError{
			Allocated:   allocated,
			Unallocated: len(candidate.unallocated),
			Events:      len(candidate.instance.Events),
		})
	}
}

// GetValidRooms returns the rooms the event may use, or every room when the event restricts none
func (candidate *Candidate) GetValidRooms(event *model.Event) []int {
	if len(event.ValidRooms) == 0 {
		return slices.Clone(candidate.instance.RoomIndices())
	}
	return slices.Clone(event.ValidRooms)
}

// GetValidTimeslots returns the timeslots that are neither banned for the event nor already taken by its teacher. When
// none is left every timeslot is returned, so that the event still gets a placement attempt
func (candidate *Candidate) GetValidTimeslots(event *model.Event) []int {
	teacher := candidate.teachers[event.TeacherId]
	timeslots := lo.Filter(candidate.instance.TimeslotIndices(), func(timeslot int, _ int) bool {
		return !event.IsBanned(timeslot) && !teacher.IsUnavailable(timeslot)
	})
	if len(timeslots) == 0 {
		return slices.Clone(candidate.instance.TimeslotIndices())
	}
	return timeslots
}

// SortUnallocatedForGreedy orders the queue most constrained first. Ties keep their queue order
func (candidate *Candidate) SortUnallocatedForGreedy() {
	slices.SortStableFunc(candidate.unallocated, func(a, b *model.Event) int {
		return b.ConstraintLevel(candidate.instance) - a.ConstraintLevel(candidate.instance)
	})
}

// NextUnallocated pops the front of the queue, nil when it is empty
func (candidate *Candidate) NextUnallocated() *model.Event {
	if len(candidate.unallocated) == 0 {
		return nil
	}
	event := candidate.unallocated[0]
	candidate.unallocated = candidate.unallocated[1:]
	return event
}

func (candidate *Candidate) removeUnallocated(event *model.Event) {
	if index := slices.IndexFunc(candidate.unallocated, event.Equal); index >= 0 {
		candidate.unallocated = slices.Delete(candidate.unallocated, index, index+1)
	}
}

// setEvent writes the occupant of a cell and keeps the teacher availability, the locations and the aggregates in step
func (candidate *Candidate) setEvent(index int, event *model.Event) {
	cell := candidate.grid.Cell(index)
	previous := cell.Event

	if previous != nil {
		candidate.teachers[previous.TeacherId].RemoveUnavailability(cell.Timeslot, previous.Key())
		delete(candidate.locations, previous.Key())
	}
	cell.Event = event
	if event != nil {
		candidate.teachers[event.TeacherId].AddUnavailability(cell.Timeslot, event.Key())
		candidate.locations[event.Key()] = index
	}

	candidate.recheck(cell.Timeslot, cell.Room, previous, event)
}

// recheck re-evaluates the changed cell plus every cell of its timeslot whose event shares a teacher or a curriculum
// with one of the given events, the only cells whose teacher and curriculum constraints can change
func (candidate *Candidate) recheck(timeslot, changedRoom int, events ...*model.Event) {
	for room := range candidate.instance.NumRooms() {
		cell := candidate.grid.At(timeslot, room)
		if room != changedRoom && !related(cell.Event, events) {
			continue
		}
		candidate.hardViolations -= cell.HardViolations()
		candidate.softViolations -= cell.SoftViolations()
		candidate.check(cell)
		candidate.hardViolations += cell.HardViolations()
		candidate.softViolations += cell.SoftViolations()
	}
}

func related(event *model.Event, others []*model.Event) bool {
	if event == nil {
		return false
	}
	return lo.SomeBy(others, func(other *model.Event) bool {
		return other != nil && (other.TeacherId == event.TeacherId || event.SharesCurriculum(other))
	})
}
