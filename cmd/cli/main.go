package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/limaJavier/timetabling-memetic/pkg/config"
	"github.com/limaJavier/timetabling-memetic/pkg/logger"
	"github.com/limaJavier/timetabling-memetic/pkg/memetic"
	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/limaJavier/timetabling-memetic/pkg/progress"
	"github.com/limaJavier/timetabling-memetic/pkg/solution"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Output is the document printed for the best candidate
type Output struct {
	Instance           string               `json:"instance"`
	WeightedViolations int                  `json:"weightedViolations"`
	HardViolations     int                  `json:"hardViolations"`
	SoftViolations     int                  `json:"softViolations"`
	Unallocated        []string             `json:"unallocated,omitempty"`
	Timetable          []solution.Placement `json:"timetable"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var (
		file           string
		outFile        string
		verbose        bool
		reportProgress bool
	)
	engine := memetic.Config{
		Generations:          15000,
		PopulationSize:       150,
		TournamentPercentage: 0.5,
		ElitePercentage:      0.5,
		MutationProbability:  0.25,
		LocalSearch:          true,
	}

	root := &cobra.Command{
		Use:          "timetable",
		Short:        "Builds a course timetable with a memetic search",
		Long:         `Builds a curriculum-based course timetable for an ECTT or JSON instance and prints the best candidate found as JSON.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if verbose {
				level = "debug"
			}
			log, err := logger.New(config.LogConfig{Env: config.EnvDevelopment, Level: level, Format: "console"})
			if err != nil {
				return fmt.Errorf("cannot build logger: %w", err)
			}
			defer log.Sync()

			out := stdout
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("cannot create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return solve(cmd.Context(), log, file, engine, reportProgress, out)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&file, "file", "f", "", "path to the instance file (.ectt or .json)")
	flags.StringVarP(&outFile, "out", "o", "", "file where the output is written; the standard output when empty")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&reportProgress, "progress", false, "log the best candidate of every generation")
	flags.IntVar(&engine.Generations, "generations", engine.Generations, "maximum number of generations")
	flags.IntVar(&engine.PopulationSize, "population", engine.PopulationSize, "number of candidates per generation")
	flags.Float64Var(&engine.TournamentPercentage, "tournament", engine.TournamentPercentage, "share of the population drawn by a tournament")
	flags.Float64Var(&engine.ElitePercentage, "elite", engine.ElitePercentage, "share of the population kept unchanged")
	flags.Float64Var(&engine.MutationProbability, "mutation", engine.MutationProbability, "probability of mutating a child")
	flags.BoolVar(&engine.LocalSearch, "local-search", engine.LocalSearch, "repair violated allocations after reproduction")
	flags.BoolVar(&engine.RoomMatching, "room-matching", false, "re-match rooms of every timeslot after the local search")
	flags.Int64Var(&engine.Seed, "seed", 0, "seed of the random source")
	flags.IntVar(&engine.MaxSeedingAttempts, "max-seeding-attempts", 0, "candidates built while seeding before giving up; 100 per population member when zero")
	_ = root.MarkFlagRequired("file")

	return root
}

func solve(ctx context.Context, log *zap.Logger, file string, engine memetic.Config, reportProgress bool, out io.Writer) error {
	instance, err := model.LoadInstance(file)
	if err != nil {
		return err
	}

	sink := progress.Nop
	if reportProgress {
		async := progress.NewAsync(log.Named("progress"), 0)
		defer async.Close()
		sink = async
	}

	strategy, err := memetic.NewStrategy(instance, engine, memetic.WithLogger(log), memetic.WithSink(sink))
	if err != nil {
		return err
	}
	population, err := strategy.Allocate(ctx)
	if err != nil {
		return err
	}

	best := population[0]
	output := Output{
		Instance:           instance.Name,
		WeightedViolations: best.WeightedViolations(),
		HardViolations:     best.HardViolations(),
		SoftViolations:     best.SoftViolations(),
		Timetable:          best.Timetable(),
	}
	for _, event := range best.Unallocated() {
		output.Unallocated = append(output.Unallocated, event.String())
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("cannot write output: %w", err)
	}
	return nil
}
