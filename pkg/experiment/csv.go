package experiment

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/limaJavier/timetabling-memetic/pkg/config"
)

var (
	normalHeader = []string{"Instance", "Rooms", "Days", "PeriodsPerDay", "Teachers", "Seed", "Generations",
		"Candidate Size", "Tournament %", "Elite %", "Mutation Rate", "v(W)", "v(H)", "V(S)", "doMemeticStep", "Time Taken"}
	banHeader = []string{"BanType", "BannedValue", "FixMethod", "DeallocatedByBan", "Instance", "Seed", "Generations",
		"CandidateSize", "Tournament %", "Elite %", "Mutation Rate", "doMemeticStep", "v(W)", "v(H)", "V(S)",
		"EventsInBanned", "DisplacedEvents", "TimeTaken"}
)

// WriteCSV writes the records of an experiment, one row per record, with the header of its mode
func WriteCSV(writer io.Writer, mode string, records []Record) error {
	csvWriter := csv.NewWriter(writer)

	header := normalHeader
	if mode == config.ModeBan {
		header = banHeader
	}
	if err := csvWriter.Write(header); err != nil {
		return err
	}

	for _, record := range records {
		var row []string
		if mode == config.ModeBan {
			row = []string{
				record.BanType,
				strconv.Itoa(record.BannedValue),
				record.FixMethod,
				strconv.Itoa(record.DeallocatedByBan),
				record.Instance,
				strconv.FormatInt(record.Engine.Seed, 10),
				strconv.Itoa(record.Engine.Generations),
				strconv.Itoa(record.Engine.PopulationSize),
				formatFloat(record.Engine.TournamentPercentage),
				formatFloat(record.Engine.ElitePercentage),
				formatFloat(record.Engine.MutationProbability),
				strconv.FormatBool(record.Engine.LocalSearch),
				strconv.Itoa(record.WeightedViolations),
				strconv.Itoa(record.HardViolations),
				strconv.Itoa(record.SoftViolations),
				strconv.Itoa(record.EventsInBanned),
				strconv.Itoa(record.DisplacedEvents),
				record.Duration.String(),
			}
		} else {
			row = []string{
				record.Instance,
				strconv.Itoa(record.Rooms),
				strconv.Itoa(record.Days),
				strconv.Itoa(record.PeriodsPerDay),
				strconv.Itoa(record.Teachers),
				strconv.FormatInt(record.Engine.Seed, 10),
				strconv.Itoa(record.Engine.Generations),
				strconv.Itoa(record.Engine.PopulationSize),
				formatFloat(record.Engine.TournamentPercentage),
				formatFloat(record.Engine.ElitePercentage),
				formatFloat(record.Engine.MutationProbability),
				strconv.Itoa(record.WeightedViolations),
				strconv.Itoa(record.HardViolations),
				strconv.Itoa(record.SoftViolations),
				strconv.FormatBool(record.Engine.LocalSearch),
				record.Duration.String(),
			}
		}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
