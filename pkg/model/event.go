package model

import (
	"fmt"
	"slices"
)

// EventKey identifies one lecture of a course
type EventKey struct {
	CourseId string
	Lecture  int
}

func (key EventKey) String() string {
	return fmt.Sprintf("%s#%d", key.CourseId, key.Lecture)
}

// Event is one lecture instance of a course. Identity fields never change once the instance is built; the scheduling
// attributes below them are owned by the instance and shared by every candidate built from it
type Event struct {
	CourseId    string
	TeacherId   string
	NumStudents int
	MinDays     int
	Lecture     int

	CurriculumId    string // Empty when the course belongs to no curriculum
	BannedTimeslots []int  // Nil means that every timeslot is allowed
	ValidRooms      []int  // Nil means that every room is allowed
}

func NewEvent(courseId, teacherId string, numStudents, minDays, lecture int) *Event {
	return &Event{
		CourseId:    courseId,
		TeacherId:   teacherId,
		NumStudents: numStudents,
		MinDays:     minDays,
		Lecture:     lecture,
	}
}

func (event *Event) Key() EventKey {
	return EventKey{CourseId: event.CourseId, Lecture: event.Lecture}
}

// Equal compares identities, two nil events are equal
func (event *Event) Equal(other *Event) bool {
	if event == nil || other == nil {
		return event == other
	}
	return event.CourseId == other.CourseId && event.Lecture == other.Lecture
}

func (event *Event) String() string {
	return event.Key().String()
}

// ConstraintLevel measures how constrained the event is: rooms it may not use plus timeslots it may not use
func (event *Event) ConstraintLevel(instance *Instance) int {
	level := 0
	if event.ValidRooms != nil {
		level += instance.NumRooms() - len(event.ValidRooms)
	}
	if event.BannedTimeslots != nil {
		level += len(event.BannedTimeslots)
	}
	return level
}

// Checks whether the event is banned from the timeslot
func (event *Event) IsBanned(timeslot int) bool {
	return slices.Contains(event.BannedTimeslots, timeslot)
}

// Checks whether the event may be held in the room. An empty valid-room list restricts nothing
func (event *Event) AllowsRoom(room int) bool {
	return len(event.ValidRooms) == 0 || slices.Contains(event.ValidRooms, room)
}

// Checks whether both events belong to the same (non-empty) curriculum
func (event *Event) SharesCurriculum(other *Event) bool {
	return event.CurriculumId != "" && event.CurriculumId == other.CurriculumId
}

func (event *Event) banTimeslot(timeslot int) {
	if event.BannedTimeslots == nil {
		event.BannedTimeslots = make([]int, 0, 1)
	}
	if !slices.Contains(event.BannedTimeslots, timeslot) {
		event.BannedTimeslots = append(event.BannedTimeslots, timeslot)
	}
}

// banRoom drops the room from the valid rooms of the event. Banning the last valid room leaves an empty list, which
// AllowsRoom reads as unrestricted: the event may go anywhere again rather than nowhere
func (event *Event) banRoom(room int, allRooms []int) {
	if event.ValidRooms == nil {
		event.ValidRooms = make([]int, 0, len(allRooms))
		for _, index := range allRooms {
			if index != room {
				event.ValidRooms = append(event.ValidRooms, index)
			}
		}
		return
	}
	event.ValidRooms = slices.DeleteFunc(event.ValidRooms, func(index int) bool { return index == room })
}
