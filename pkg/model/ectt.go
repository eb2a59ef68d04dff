package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ECTT section headers
const (
	ecttCourses        = "COURSES:"
	ecttRooms          = "ROOMS:"
	ecttCurricula      = "CURRICULA:"
	ecttUnavailability = "UNAVAILABILITY_CONSTRAINTS:"
	ecttRoomConstraint = "ROOM_CONSTRAINTS:"
	ecttEnd            = "END."
)

func InstanceFromECTT(file string) (*Instance, error) {
	reader, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open instance file: %w", err)
	}
	defer reader.Close()
	return BuildECTT(reader)
}

// BuildECTT reads a problem instance in the ITC-2007 curriculum-based course timetabling format
func BuildECTT(reader io.Reader) (*Instance, error) {
	var raw RawInstance
	section := ""
	lineNumber := 0

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		lineNumber++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case ecttCourses, ecttRooms, ecttCurricula, ecttUnavailability, ecttRoomConstraint:
			section = fields[0]
			continue
		case ecttEnd:
			return ProcessRawInstance(raw)
		}

		var err error
		switch section {
		case "":
			err = readECTTHeader(&raw, fields)
		case ecttCourses:
			err = readECTTCourse(&raw, fields)
		case ecttRooms:
			err = readECTTRoom(&raw, fields)
		case ecttCurricula:
			err = readECTTCurriculum(&raw, fields)
		case ecttUnavailability:
			err = readECTTUnavailability(&raw, fields)
		case ecttRoomConstraint:
			if len(fields) != 2 {
				err = fmt.Errorf("expected \"<course> <room>\"")
			} else {
				raw.RoomConstraints = append(raw.RoomConstraints, RawRoomConstraint{Course: fields[0], Room: fields[1]})
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidInstance, lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Tolerate a missing END. marker
	return ProcessRawInstance(raw)
}

func readECTTHeader(raw *RawInstance, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("malformed header line %q", strings.Join(fields, " "))
	}
	key := strings.ToLower(strings.TrimSuffix(fields[0], ":"))

	if key == "name" {
		raw.Name = fields[1]
		return nil
	}

	values, err := parseInts(fields[1:])
	if err != nil {
		return err
	}
	switch key {
	case "days":
		raw.Days = values[0]
	case "periods_per_day":
		raw.PeriodsPerDay = values[0]
	case "min_max_daily_lectures":
		raw.DailyLectures = values
	case "courses", "rooms", "curricula", "constraints", "unavailabilityconstraints", "roomconstraints":
		// Counts are implied by the sections themselves
	default:
		return fmt.Errorf("unknown header %q", fields[0])
	}
	return nil
}

// <CourseID> <Teacher> <# Lectures> <MinWorkingDays> <# Students> <DoubleLectures>
func readECTTCourse(raw *RawInstance, fields []string) error {
	if len(fields) < 5 {
		return fmt.Errorf("expected at least 5 course fields, got %d", len(fields))
	}
	values, err := parseInts(fields[2:5])
	if err != nil {
		return err
	}
	raw.Courses = append(raw.Courses, RawCourse{
		Id:       fields[0],
		Teacher:  fields[1],
		Lectures: values[0],
		MinDays:  values[1],
		Students: values[2],
	})
	return nil
}

// <RoomID> <Capacity> <Site>
func readECTTRoom(raw *RawInstance, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("expected at least 2 room fields, got %d", len(fields))
	}
	capacity, err := strconv.Atoi(fields[1])
	if err != nil {
		return err
	}
	building := ""
	if len(fields) > 2 {
		building = fields[2]
	}
	raw.Rooms = append(raw.Rooms, RawRoom{Id: fields[0], Building: building, Capacity: capacity})
	return nil
}

// <CurriculumID> <# Courses> <CourseID> ... <CourseID>
func readECTTCurriculum(raw *RawInstance, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("expected at least 2 curriculum fields, got %d", len(fields))
	}
	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return err
	} else if len(fields) != count+2 {
		return fmt.Errorf("curriculum %q declares %d courses but lists %d", fields[0], count, len(fields)-2)
	}
	raw.Curricula = append(raw.Curricula, RawCurriculum{Id: fields[0], Courses: fields[2:]})
	return nil
}

// <CourseID> <Day> <Day_Period>
func readECTTUnavailability(raw *RawInstance, fields []string) error {
	if len(fields) != 3 {
		return fmt.Errorf("expected \"<course> <day> <period>\"")
	}
	values, err := parseInts(fields[1:])
	if err != nil {
		return err
	}
	raw.Unavailability = append(raw.Unavailability, RawUnavailability{Course: fields[0], Day: values[0], Period: values[1]})
	return nil
}

func parseInts(fields []string) ([]int, error) {
	values := make([]int, len(fields))
	for i, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}
