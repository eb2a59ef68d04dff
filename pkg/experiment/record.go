package experiment

import (
	"time"

	"github.com/limaJavier/timetabling-memetic/pkg/memetic"
	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/limaJavier/timetabling-memetic/pkg/solution"
	"github.com/limaJavier/timetabling-memetic/pkg/store"
)

// Record is the outcome of one engine run. The ban fields are only filled in ban mode
type Record struct {
	Instance      string
	Rooms         int
	Days          int
	PeriodsPerDay int
	Teachers      int
	Engine        memetic.Config

	BanType          string
	BannedValue      int
	FixMethod        string
	DeallocatedByBan int
	EventsInBanned   int
	DisplacedEvents  int

	WeightedViolations int
	HardViolations     int
	SoftViolations     int
	Duration           time.Duration
}

func newRecord(file string, instance *model.Instance, engine memetic.Config, best *solution.Candidate, duration time.Duration) Record {
	return Record{
		Instance:           file,
		Rooms:              instance.NumRooms(),
		Days:               instance.Days,
		PeriodsPerDay:      instance.PeriodsPerDay,
		Teachers:           len(instance.Teachers),
		Engine:             engine,
		WeightedViolations: best.WeightedViolations(),
		HardViolations:     best.HardViolations(),
		SoftViolations:     best.SoftViolations(),
		Duration:           duration,
	}
}

func (record Record) result(runID, mode string) *store.Result {
	return &store.Result{
		RunID:                runID,
		Mode:                 mode,
		Instance:             record.Instance,
		Rooms:                record.Rooms,
		Days:                 record.Days,
		PeriodsPerDay:        record.PeriodsPerDay,
		Teachers:             record.Teachers,
		Seed:                 record.Engine.Seed,
		Generations:          record.Engine.Generations,
		PopulationSize:       record.Engine.PopulationSize,
		TournamentPercentage: record.Engine.TournamentPercentage,
		ElitePercentage:      record.Engine.ElitePercentage,
		MutationProbability:  record.Engine.MutationProbability,
		LocalSearch:          record.Engine.LocalSearch,
		BanType:              record.BanType,
		BannedValue:          record.BannedValue,
		FixMethod:            record.FixMethod,
		DeallocatedByBan:     record.DeallocatedByBan,
		EventsInBanned:       record.EventsInBanned,
		DisplacedEvents:      record.DisplacedEvents,
		WeightedViolations:   record.WeightedViolations,
		HardViolations:       record.HardViolations,
		SoftViolations:       record.SoftViolations,
		DurationMs:           record.Duration.Milliseconds(),
	}
}
