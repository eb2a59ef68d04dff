package solution

import (
	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// ReassignRooms re-matches the events of a timeslot to rooms through a maximum bipartite matching over the rooms each
// event may use and fits in. The grid is only changed when every event of the timeslot gets a room, which clears all
// the room and room-capacity violations of the timeslot. Reports whether the events were reassigned
func (candidate *Candidate) ReassignRooms(timeslot int) (bool, error) {
	events := make([]*model.Event, 0, candidate.grid.Height())
	for room := range candidate.grid.Height() {
		if event := candidate.grid.At(timeslot, room).Event; event != nil {
			events = append(events, event)
		}
	}
	if len(events) == 0 {
		return false, nil
	}

	assignments, err := assignRooms(events, candidate.instance)
	if err != nil || assignments == nil {
		return false, err
	}

	for _, event := range events {
		candidate.DeallocateEvent(event)
	}
	for _, event := range events {
		candidate.Allocate(timeslot, assignments[event], event)
	}
	return true, nil
}

// assignRooms returns a room for every event, nil when no complete assignment exists
func assignRooms(events []*model.Event, instance *model.Instance) (map[*model.Event]int, error) {
	rooms := instance.RoomIndices()

	// Build neighbors predicate based on room admissibility
	neighbors := func(eventAny any, roomAny any) (bool, error) {
		event := eventAny.(*model.Event)
		room := roomAny.(int)

		return event.AllowsRoom(room) && instance.Rooms[room].Capacity >= event.NumStudents, nil
	}

	// Transform events and rooms to slices of any
	eventsAny, roomsAny := lo.Map(events, func(event *model.Event, _ int) any { return event }), lo.Map(rooms, func(room int, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(eventsAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(events) {
		return nil, nil
	}

	assignments := make(map[*model.Event]int, len(events))
	for _, edge := range matching {
		eventIndex, roomIndex := edge.Node1, edge.Node2-len(events)
		assignments[events[eventIndex]] = rooms[roomIndex]
	}
	return assignments, nil
}
