package solution

import "github.com/limaJavier/timetabling-memetic/pkg/model"

// ConstraintKind identifies one of the constraints checked on every allocation
type ConstraintKind int

const (
	RoomConstraint ConstraintKind = iota
	TimeslotConstraint
	TeacherConstraint
	RoomCapacityConstraint
	CurriculumConstraint

	constraintKinds
)

var constraintNames = [constraintKinds]string{"room", "timeslot", "teacher", "room-capacity", "curriculum"}

func (kind ConstraintKind) String() string {
	if kind < 0 || kind >= constraintKinds {
		return "unknown"
	}
	return constraintNames[kind]
}

// Hard constraints must be avoided, soft ones should be
func (kind ConstraintKind) Hard() bool {
	return kind <= TeacherConstraint
}

// Allocation is one (timeslot, room) cell of a candidate. Its coordinates never change; the occupying event and the
// cached violation flags are maintained by the owning candidate
type Allocation struct {
	Event    *model.Event
	Timeslot int
	Room     int

	violated [constraintKinds]bool
}

func (allocation Allocation) IsEmpty() bool {
	return allocation.Event == nil
}

func (allocation Allocation) Violates(kind ConstraintKind) bool {
	return allocation.violated[kind]
}

// Violated reports whether any constraint, hard or soft, is broken in the cell
func (allocation Allocation) Violated() bool {
	return allocation.HardViolations()+allocation.SoftViolations() > 0
}

func (allocation Allocation) HardViolations() int {
	count := 0
	for kind := range constraintKinds {
		if kind.Hard() && allocation.violated[kind] {
			count++
		}
	}
	return count
}

func (allocation Allocation) SoftViolations() int {
	count := 0
	for kind := range constraintKinds {
		if !kind.Hard() && allocation.violated[kind] {
			count++
		}
	}
	return count
}
