package solution

// The ban operations edit the events of the shared instance, so they affect every candidate built from it. Afterwards
// they empty the cells of this candidate that became invalid and recompute its violations. Each returns the number of
// events sent back to the unallocated queue

func (candidate *Candidate) BanTimeslotForCourse(courseId string, timeslot int) (int, error) {
	if err := candidate.instance.BanTimeslotForCourse(courseId, timeslot); err != nil {
		return 0, err
	}
	deallocated := candidate.deallocateWhere(func(allocation *Allocation) bool {
		return allocation.Timeslot == timeslot && allocation.Event.CourseId == courseId
	})
	candidate.ReevaluateConstraints()
	return deallocated, nil
}

func (candidate *Candidate) BanRoomForCourse(courseId string, room int) (int, error) {
	if err := candidate.instance.BanRoomForCourse(courseId, room); err != nil {
		return 0, err
	}
	deallocated := candidate.deallocateWhere(func(allocation *Allocation) bool {
		return allocation.Room == room && allocation.Event.CourseId == courseId
	})
	candidate.ReevaluateConstraints()
	return deallocated, nil
}

func (candidate *Candidate) BanRoomForAll(room int) (int, error) {
	if err := candidate.instance.BanRoomForAll(room); err != nil {
		return 0, err
	}
	deallocated := candidate.deallocateWhere(func(allocation *Allocation) bool {
		return allocation.Room == room
	})
	candidate.ReevaluateConstraints()
	return deallocated, nil
}

func (candidate *Candidate) BanTimeslotForAll(timeslot int) (int, error) {
	if err := candidate.instance.BanTimeslotForAll(timeslot); err != nil {
		return 0, err
	}
	deallocated := candidate.deallocateWhere(func(allocation *Allocation) bool {
		return allocation.Timeslot == timeslot
	})
	candidate.ReevaluateConstraints()
	return deallocated, nil
}

// BanDayForAll fails with model.ErrInvalidRange when the day is not part of the week
func (candidate *Candidate) BanDayForAll(day int) (int, error) {
	timeslots, err := candidate.instance.BanDayForAll(day)
	if err != nil {
		return 0, err
	}
	banned := make(map[int]bool, len(timeslots))
	for _, timeslot := range timeslots {
		banned[timeslot] = true
	}
	deallocated := candidate.deallocateWhere(func(allocation *Allocation) bool {
		return banned[allocation.Timeslot]
	})
	candidate.ReevaluateConstraints()
	return deallocated, nil
}

// deallocateWhere empties every occupied cell matching the predicate, in grid order
func (candidate *Candidate) deallocateWhere(predicate func(allocation *Allocation) bool) int {
	deallocated := 0
	for index := range candidate.grid.Len() {
		cell := candidate.grid.Cell(index)
		if !cell.IsEmpty() && predicate(cell) {
			candidate.DeallocateAt(cell.Timeslot, cell.Room)
			deallocated++
		}
	}
	return deallocated
}
