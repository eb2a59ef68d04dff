package model

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Instance is the static description of a timetabling problem. It is read-only for the search, except for the ban
// operations which edit the scheduling attributes of its events; callers sharing an instance must serialize them
type Instance struct {
	Name          string
	Days          int
	PeriodsPerDay int
	DailyLectures [2]int // Minimum and maximum daily lectures per curriculum
	Rooms         []Room
	Events        []*Event
	Teachers      map[string]*Teacher // Templates with empty availability
	CourseIds     []string

	indexer indexer

	roomIndicesOnce     sync.Once
	roomIndices         []int
	timeslotIndicesOnce sync.Once
	timeslotIndices     []int
}

func NewInstance(name string, days, periodsPerDay int, rooms []Room, events []*Event) (*Instance, error) {
	if days <= 0 || periodsPerDay <= 0 {
		return nil, fmt.Errorf("%w: days (%d) and periods per day (%d) must be positive", ErrInvalidInstance, days, periodsPerDay)
	} else if len(rooms) == 0 {
		return nil, fmt.Errorf("%w: at least one room is required", ErrInvalidInstance)
	}

	instance := &Instance{
		Name:          name,
		Days:          days,
		PeriodsPerDay: periodsPerDay,
		Rooms:         rooms,
		Events:        events,
		Teachers:      make(map[string]*Teacher),
		CourseIds:     make([]string, 0),
		indexer:       newIndexer(periodsPerDay),
	}

	keys := make(map[EventKey]bool, len(events))
	for _, event := range events {
		if keys[event.Key()] {
			return nil, fmt.Errorf("%w: duplicate event %v", ErrInvalidInstance, event)
		}
		keys[event.Key()] = true

		for _, room := range event.ValidRooms {
			if room < 0 || room >= len(rooms) {
				return nil, fmt.Errorf("%w: event %v references room %d", ErrInvalidInstance, event, room)
			}
		}
		for _, timeslot := range event.BannedTimeslots {
			if timeslot < 0 || timeslot >= instance.NumTimeslots() {
				return nil, fmt.Errorf("%w: event %v bans timeslot %d", ErrInvalidInstance, event, timeslot)
			}
		}

		if _, ok := instance.Teachers[event.TeacherId]; !ok {
			instance.Teachers[event.TeacherId] = NewTeacher(event.TeacherId)
		}
		if !lo.Contains(instance.CourseIds, event.CourseId) {
			instance.CourseIds = append(instance.CourseIds, event.CourseId)
		}
	}

	return instance, nil
}

func (instance *Instance) NumTimeslots() int {
	return instance.Days * instance.PeriodsPerDay
}

func (instance *Instance) NumRooms() int {
	return len(instance.Rooms)
}

// RoomIndices returns every room index. The slice is shared and must not be modified
func (instance *Instance) RoomIndices() []int {
	instance.roomIndicesOnce.Do(func() {
		instance.roomIndices = lo.Range(len(instance.Rooms))
	})
	return instance.roomIndices
}

// TimeslotIndices returns every timeslot index. The slice is shared and must not be modified
func (instance *Instance) TimeslotIndices() []int {
	instance.timeslotIndicesOnce.Do(func() {
		instance.timeslotIndices = lo.Range(instance.NumTimeslots())
	})
	return instance.timeslotIndices
}

func (instance *Instance) TimeslotIndex(timeslot Timeslot) (int, error) {
	if timeslot.Day < 0 || timeslot.Day >= instance.Days || timeslot.Period < 0 || timeslot.Period >= instance.PeriodsPerDay {
		return 0, fmt.Errorf("%w: timeslot %v in a %dx%d week", ErrInvalidIndex, timeslot, instance.Days, instance.PeriodsPerDay)
	}
	return instance.indexer.Index(timeslot.Day, timeslot.Period), nil
}

func (instance *Instance) Timeslot(index int) (Timeslot, error) {
	if index < 0 || index >= instance.NumTimeslots() {
		return Timeslot{}, fmt.Errorf("%w: timeslot index %d of %d", ErrInvalidIndex, index, instance.NumTimeslots())
	}
	day, period := instance.indexer.Attributes(index)
	return Timeslot{Day: day, Period: period}, nil
}

// DayTimeslots returns the timeslot indices of every period of a day
func (instance *Instance) DayTimeslots(day int) ([]int, error) {
	if day < 0 || day >= instance.Days {
		return nil, fmt.Errorf("%w: day %d of %d", ErrInvalidRange, day, instance.Days)
	}
	return lo.Map(lo.Range(instance.PeriodsPerDay), func(period int, _ int) int {
		return instance.indexer.Index(day, period)
	}), nil
}

func (instance *Instance) IndexOfRoom(id string) (int, error) {
	_, index, ok := lo.FindIndexOf(instance.Rooms, func(room Room) bool { return room.Id == id })
	if !ok {
		return 0, fmt.Errorf("%w: unknown room %q", ErrInvalidInstance, id)
	}
	return index, nil
}

func (instance *Instance) EventsOfCourse(courseId string) []*Event {
	return lo.Filter(instance.Events, func(event *Event, _ int) bool { return event.CourseId == courseId })
}

// AddDay appends an extra day to the week. Existing timeslot indices keep their meaning; it must be called before any
// candidate is built from the instance
func (instance *Instance) AddDay() {
	instance.Days++
	instance.timeslotIndicesOnce = sync.Once{}
	instance.timeslotIndices = nil
}

//** Ban operations. They edit the events shared by every candidate of this instance

// BanTimeslotForCourse bans a timeslot for every event of a course
func (instance *Instance) BanTimeslotForCourse(courseId string, timeslot int) error {
	if timeslot < 0 || timeslot >= instance.NumTimeslots() {
		return fmt.Errorf("%w: timeslot %d of %d", ErrInvalidIndex, timeslot, instance.NumTimeslots())
	}
	for _, event := range instance.EventsOfCourse(courseId) {
		event.banTimeslot(timeslot)
	}
	return nil
}

// BanRoomForCourse removes a room from the valid rooms of every event of a course
func (instance *Instance) BanRoomForCourse(courseId string, room int) error {
	if room < 0 || room >= instance.NumRooms() {
		return fmt.Errorf("%w: room %d of %d", ErrInvalidIndex, room, instance.NumRooms())
	}
	for _, event := range instance.EventsOfCourse(courseId) {
		event.banRoom(room, instance.RoomIndices())
	}
	return nil
}

// BanRoomForAll removes a room from the valid rooms of every event
func (instance *Instance) BanRoomForAll(room int) error {
	if room < 0 || room >= instance.NumRooms() {
		return fmt.Errorf("%w: room %d of %d", ErrInvalidIndex, room, instance.NumRooms())
	}
	for _, event := range instance.Events {
		event.banRoom(room, instance.RoomIndices())
	}
	return nil
}

// BanTimeslotForAll bans a timeslot for every event
func (instance *Instance) BanTimeslotForAll(timeslot int) error {
	if timeslot < 0 || timeslot >= instance.NumTimeslots() {
		return fmt.Errorf("%w: timeslot %d of %d", ErrInvalidIndex, timeslot, instance.NumTimeslots())
	}
	for _, event := range instance.Events {
		event.banTimeslot(timeslot)
	}
	return nil
}

// BanDayForAll bans every timeslot of a day for every event and returns the banned timeslots
func (instance *Instance) BanDayForAll(day int) ([]int, error) {
	timeslots, err := instance.DayTimeslots(day)
	if err != nil {
		return nil, err
	}
	for _, timeslot := range timeslots {
		for _, event := range instance.Events {
			event.banTimeslot(timeslot)
		}
	}
	return timeslots, nil
}
