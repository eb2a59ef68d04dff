package solution

import "github.com/limaJavier/timetabling-memetic/pkg/model"

// Placement is an allocated event as exported in a timetable
type Placement struct {
	Day      int    `json:"day"`
	Period   int    `json:"period"`
	Timeslot int    `json:"timeslot"`
	Room     string `json:"room"`
	Course   string `json:"course"`
	Lecture  int    `json:"lecture"`
	Teacher  string `json:"teacher"`

	Violations []string `json:"violations,omitempty"`
}

// Timetable lists the allocated events ordered by timeslot, then room
func (candidate *Candidate) Timetable() []Placement {
	instance := candidate.instance
	timetable := make([]Placement, 0, len(candidate.locations))
	for timeslot := range instance.NumTimeslots() {
		slot, err := instance.Timeslot(timeslot)
		if err != nil {
			panic(err)
		}
		for room := range instance.NumRooms() {
			cell := candidate.grid.At(timeslot, room)
			if cell.IsEmpty() {
				continue
			}

			var violations []string
			for kind := range constraintKinds {
				if cell.Violates(kind) {
					violations = append(violations, kind.String())
				}
			}
			timetable = append(timetable, Placement{
				Day:        slot.Day,
				Period:     slot.Period,
				Timeslot:   timeslot,
				Room:       instance.Rooms[room].Id,
				Course:     cell.Event.CourseId,
				Lecture:    cell.Event.Lecture,
				Teacher:    cell.Event.TeacherId,
				Violations: violations,
			})
		}
	}
	return timetable
}

// CountEventsOnDay counts the events allocated in any period of a day. Days outside of the week hold no events
func (candidate *Candidate) CountEventsOnDay(day int) int {
	timeslots, err := candidate.instance.DayTimeslots(day)
	if err != nil {
		return 0
	}
	count := 0
	for _, timeslot := range timeslots {
		count += candidate.CountEventsOnTimeslot(timeslot)
	}
	return count
}

func (candidate *Candidate) CountEventsOnTimeslot(timeslot int) int {
	if timeslot < 0 || timeslot >= candidate.grid.Width() {
		return 0
	}
	count := 0
	for room := range candidate.grid.Height() {
		if !candidate.grid.At(timeslot, room).IsEmpty() {
			count++
		}
	}
	return count
}

func (candidate *Candidate) CountEventsInRoom(room int) int {
	if room < 0 || room >= candidate.grid.Height() {
		return 0
	}
	count := 0
	for timeslot := range candidate.grid.Width() {
		if !candidate.grid.At(timeslot, room).IsEmpty() {
			count++
		}
	}
	return count
}

// CompareDifferencesWith counts the cells whose occupant differs between both candidates, not counting the cells left
// empty by unallocated events. Both candidates must share the instance geometry and at most one of them should have
// unallocated events for the count to be exact
func (candidate *Candidate) CompareDifferencesWith(other *Candidate) int {
	if candidate.grid.Width() != other.grid.Width() || candidate.grid.Height() != other.grid.Height() {
		panic(&model.IndexError{
			X:      other.grid.Width(),
			Y:      other.grid.Height(),
			Width:  candidate.grid.Width(),
			Height: candidate.grid.Height(),
		})
	}

	different := 0
	for index := range candidate.grid.Len() {
		if !candidate.grid.Cell(index).Event.Equal(other.grid.Cell(index).Event) {
			different++
		}
	}
	return max(0, different-len(candidate.unallocated)-len(other.unallocated))
}
