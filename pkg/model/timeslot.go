package model

import "fmt"

type Timeslot struct {
	Day    int
	Period int
}

func (timeslot Timeslot) String() string {
	return fmt.Sprintf("%d:%d", timeslot.Day, timeslot.Period)
}
