package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type RawRoom struct {
	Id       string
	Building string
	Capacity int
}

type RawCourse struct {
	Id       string
	Teacher  string
	Lectures int
	MinDays  int
	Students int
}

type RawCurriculum struct {
	Id      string
	Courses []string
}

type RawUnavailability struct {
	Course string
	Day    int
	Period int
}

type RawRoomConstraint struct {
	Course string
	Room   string
}

type RawInstance struct {
	Name            string
	Days            int
	PeriodsPerDay   int
	DailyLectures   []int
	Rooms           []RawRoom
	Courses         []RawCourse
	Curricula       []RawCurriculum
	Unavailability  []RawUnavailability
	RoomConstraints []RawRoomConstraint
}

// LoadInstance reads an instance file in the JSON input format when its extension is .json, in ECTT otherwise
func LoadInstance(file string) (*Instance, error) {
	if strings.EqualFold(filepath.Ext(file), ".json") {
		return InstanceFromJson(file)
	}
	return InstanceFromECTT(file)
}

func InstanceFromJson(file string) (*Instance, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read instance file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, err
	}

	var rawInstance RawInstance
	if err := mapstructure.Decode(inputJson, &rawInstance); err != nil {
		return nil, fmt.Errorf("cannot decode instance: %w", err)
	}
	return ProcessRawInstance(rawInstance)
}

func ProcessRawInstance(rawInstance RawInstance) (*Instance, error) {
	//** Manage rooms
	rooms := lo.Map(rawInstance.Rooms, func(room RawRoom, _ int) Room {
		return Room{Id: room.Id, BuildingId: room.Building, Capacity: room.Capacity}
	})
	roomIndex := make(map[string]int, len(rooms))
	for i, room := range rooms {
		if _, ok := roomIndex[room.Id]; ok {
			return nil, fmt.Errorf("%w: duplicate room %q", ErrInvalidInstance, room.Id)
		}
		roomIndex[room.Id] = i
	}

	//** Manage courses. Every lecture of a course becomes one event
	events := make([]*Event, 0)
	courseEvents := make(map[string][]*Event, len(rawInstance.Courses))
	for _, course := range rawInstance.Courses {
		if _, ok := courseEvents[course.Id]; ok {
			return nil, fmt.Errorf("%w: duplicate course %q", ErrInvalidInstance, course.Id)
		}
		courseEvents[course.Id] = make([]*Event, 0, course.Lectures)
		for lecture := range course.Lectures {
			event := NewEvent(course.Id, course.Teacher, course.Students, course.MinDays, lecture)
			courseEvents[course.Id] = append(courseEvents[course.Id], event)
			events = append(events, event)
		}
	}

	//** Manage curricula
	for _, curriculum := range rawInstance.Curricula {
		for _, courseId := range curriculum.Courses {
			lectures, ok := courseEvents[courseId]
			if !ok {
				return nil, fmt.Errorf("%w: curriculum %q references unknown course %q", ErrInvalidInstance, curriculum.Id, courseId)
			}
			for _, event := range lectures {
				event.CurriculumId = curriculum.Id
			}
		}
	}

	//** Manage unavailability constraints, grouped by course
	bannedTimeslots := make(map[string][]int)
	for _, unavailability := range rawInstance.Unavailability {
		if _, ok := courseEvents[unavailability.Course]; !ok {
			return nil, fmt.Errorf("%w: unavailability references unknown course %q", ErrInvalidInstance, unavailability.Course)
		} else if unavailability.Day < 0 || unavailability.Day >= rawInstance.Days ||
			unavailability.Period < 0 || unavailability.Period >= rawInstance.PeriodsPerDay {
			return nil, fmt.Errorf("%w: course %q is banned from day %d period %d", ErrInvalidInstance, unavailability.Course, unavailability.Day, unavailability.Period)
		}
		timeslot := unavailability.Day*rawInstance.PeriodsPerDay + unavailability.Period
		if !slices.Contains(bannedTimeslots[unavailability.Course], timeslot) {
			bannedTimeslots[unavailability.Course] = append(bannedTimeslots[unavailability.Course], timeslot)
		}
	}

	//** Manage room constraints, grouped by course
	validRooms := make(map[string][]int)
	for _, constraint := range rawInstance.RoomConstraints {
		room, ok := roomIndex[constraint.Room]
		if !ok {
			return nil, fmt.Errorf("%w: room constraint references unknown room %q", ErrInvalidInstance, constraint.Room)
		} else if _, ok := courseEvents[constraint.Course]; !ok {
			return nil, fmt.Errorf("%w: room constraint references unknown course %q", ErrInvalidInstance, constraint.Course)
		}
		if !slices.Contains(validRooms[constraint.Course], room) {
			validRooms[constraint.Course] = append(validRooms[constraint.Course], room)
		}
	}

	// Every event gets its own copy of the lists since bans later edit them per event
	for _, course := range rawInstance.Courses {
		for _, event := range courseEvents[course.Id] {
			if banned, ok := bannedTimeslots[course.Id]; ok {
				event.BannedTimeslots = slices.Clone(banned)
			}
			if valid, ok := validRooms[course.Id]; ok {
				event.ValidRooms = slices.Clone(valid)
			}
		}
	}

	instance, err := NewInstance(rawInstance.Name, rawInstance.Days, rawInstance.PeriodsPerDay, rooms, events)
	if err != nil {
		return nil, err
	}
	if len(rawInstance.DailyLectures) == 2 {
		instance.DailyLectures = [2]int{rawInstance.DailyLectures[0], rawInstance.DailyLectures[1]}
	}
	return instance, nil
}
