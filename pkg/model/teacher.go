package model

import "slices"

// Unavailability records that a teacher is busy at a timeslot because of an event
type Unavailability struct {
	Timeslot int
	Event    EventKey
}

// Teacher holds the availability of a teacher. The instance keeps an empty template; every candidate owns a clone of it
type Teacher struct {
	Id             string
	Unavailability []Unavailability
}

func NewTeacher(id string) *Teacher {
	return &Teacher{
		Id:             id,
		Unavailability: make([]Unavailability, 0),
	}
}

func (teacher *Teacher) Clone() *Teacher {
	return &Teacher{
		Id:             teacher.Id,
		Unavailability: slices.Clone(teacher.Unavailability),
	}
}

func (teacher *Teacher) AddUnavailability(timeslot int, event EventKey) {
	teacher.Unavailability = append(teacher.Unavailability, Unavailability{Timeslot: timeslot, Event: event})
}

// RemoveUnavailability removes a single matching entry and reports whether one was found
func (teacher *Teacher) RemoveUnavailability(timeslot int, event EventKey) bool {
	index := slices.Index(teacher.Unavailability, Unavailability{Timeslot: timeslot, Event: event})
	if index < 0 {
		return false
	}
	teacher.Unavailability = slices.Delete(teacher.Unavailability, index, index+1)
	return true
}

// Checks whether the teacher is busy at the timeslot
func (teacher *Teacher) IsUnavailable(timeslot int) bool {
	return slices.ContainsFunc(teacher.Unavailability, func(unavailability Unavailability) bool {
		return unavailability.Timeslot == timeslot
	})
}

// Checks whether the teacher is busy at the timeslot because of an event other than the given one
func (teacher *Teacher) DoubleBooked(timeslot int, event EventKey) bool {
	return slices.ContainsFunc(teacher.Unavailability, func(unavailability Unavailability) bool {
		return unavailability.Timeslot == timeslot && unavailability.Event != event
	})
}
