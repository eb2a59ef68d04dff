package solution

import "slices"

// Every constraint is a predicate over an occupied cell of a candidate, true when the constraint is violated
type constraint struct {
	kind      ConstraintKind
	predicate func(candidate *Candidate, allocation *Allocation) bool
}

var constraints = []constraint{
	{kind: RoomConstraint, predicate: roomConstraint},
	{kind: TimeslotConstraint, predicate: timeslotConstraint},
	{kind: TeacherConstraint, predicate: teacherConstraint},
	{kind: RoomCapacityConstraint, predicate: roomCapacityConstraint},
	{kind: CurriculumConstraint, predicate: curriculumConstraint},
}

// The event is held in a room outside of its (non-empty) valid-room list
func roomConstraint(_ *Candidate, allocation *Allocation) bool {
	validRooms := allocation.Event.ValidRooms
	return len(validRooms) > 0 && !slices.Contains(validRooms, allocation.Room)
}

// The event is held in one of its banned timeslots
func timeslotConstraint(_ *Candidate, allocation *Allocation) bool {
	return allocation.Event.IsBanned(allocation.Timeslot)
}

// The teacher of the event teaches another event in the same timeslot
func teacherConstraint(candidate *Candidate, allocation *Allocation) bool {
	event := allocation.Event
	return candidate.teachers[event.TeacherId].DoubleBooked(allocation.Timeslot, event.Key())
}

// The room is too small for the students of the event
func roomCapacityConstraint(candidate *Candidate, allocation *Allocation) bool {
	return candidate.instance.Rooms[allocation.Room].Capacity < allocation.Event.NumStudents
}

// Another room holds an event of the same curriculum in the same timeslot
func curriculumConstraint(candidate *Candidate, allocation *Allocation) bool {
	for room := range candidate.instance.NumRooms() {
		if room == allocation.Room {
			continue
		}
		other := candidate.grid.At(allocation.Timeslot, room).Event
		if other != nil && allocation.Event.SharesCurriculum(other) {
			return true
		}
	}
	return false
}

// check recomputes every violation flag of a cell. Empty cells violate nothing
func (candidate *Candidate) check(allocation *Allocation) {
	for _, constraint := range constraints {
		allocation.violated[constraint.kind] = !allocation.IsEmpty() && constraint.predicate(candidate, allocation)
	}
}
