package memetic

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/limaJavier/timetabling-memetic/pkg/progress"
	"github.com/limaJavier/timetabling-memetic/pkg/solution"
	"go.uber.org/zap"
)

// Strategy is the memetic search engine: a genetic algorithm over candidates with an optional local search step. All
// of its random draws come from a single source seeded from the configuration, so equal configurations produce equal
// results. A strategy is not safe for concurrent use; independent strategies may run in parallel as long as nobody
// bans anything on their shared instance meanwhile
type Strategy struct {
	instance *model.Instance
	config   Config
	random   *rand.Rand

	tournamentSize int
	eliteSize      int

	logger *zap.Logger
	sink   progress.Sink
	hooks  Hooks
}

type Option func(strategy *Strategy)

func WithLogger(logger *zap.Logger) Option {
	return func(strategy *Strategy) {
		if logger != nil {
			strategy.logger = logger
		}
	}
}

func WithSink(sink progress.Sink) Option {
	return func(strategy *Strategy) {
		if sink != nil {
			strategy.sink = sink
		}
	}
}

func WithHooks(hooks Hooks) Option {
	return func(strategy *Strategy) {
		if hooks != nil {
			strategy.hooks = hooks
		}
	}
}

func NewStrategy(instance *model.Instance, config Config, options ...Option) (*Strategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if cells := instance.NumTimeslots() * instance.NumRooms(); len(instance.Events) > cells {
		return nil, fmt.Errorf("%w: %d events do not fit in %d cells", ErrDegenerateInput, len(instance.Events), cells)
	}

	strategy := &Strategy{
		instance:       instance,
		config:         config,
		random:         newRandom(config.Seed),
		tournamentSize: config.TournamentSize(),
		eliteSize:      config.EliteSize(),
		logger:         zap.NewNop(),
		sink:           progress.Nop,
		hooks:          NoopHooks{},
	}
	for _, option := range options {
		option(strategy)
	}
	strategy.logger = strategy.logger.With(zap.String("instance", instance.Name), zap.Int64("seed", config.Seed))
	return strategy, nil
}

func (strategy *Strategy) Config() Config {
	return strategy.config
}

// Allocate seeds a population of totally allocated candidates and evolves it. The result is sorted by ascending
// weighted violations, best first
func (strategy *Strategy) Allocate(ctx context.Context) (population []*solution.Candidate, err error) {
	defer recoverContract(&err)

	population, err = strategy.seed(ctx)
	if err != nil {
		return nil, err
	}
	return strategy.evolve(ctx, population)
}

// MemeticFix evolves a population of greedily completed copies of the candidate and returns its best member. A totally
// allocated candidate is returned as is
func (strategy *Strategy) MemeticFix(ctx context.Context, candidate *solution.Candidate) (best *solution.Candidate, err error) {
	defer recoverContract(&err)

	if candidate.IsTotallyAllocated() {
		return candidate, nil
	}
	strategy.logger.Debug("memetic fix", zap.Int("unallocated", candidate.TotalUnallocated()))

	population := make([]*solution.Candidate, 0, strategy.config.PopulationSize)
	for range strategy.config.PopulationSize {
		clone := candidate.Clone()
		greedyAllocate(clone, strategy.random)
		population = append(population, clone)
	}
	sortPopulation(population)

	population, err = strategy.evolve(ctx, population)
	if err != nil {
		return nil, err
	}
	return population[0], nil
}

// GreedyFix returns a greedily completed copy of the candidate. A totally allocated candidate is returned as is
func (strategy *Strategy) GreedyFix(candidate *solution.Candidate) (fixed *solution.Candidate, err error) {
	defer recoverContract(&err)

	if candidate.IsTotallyAllocated() {
		return candidate, nil
	}
	fixed = candidate.Clone()
	greedyAllocate(fixed, strategy.random)
	return fixed, nil
}

// seed collects totally allocated greedy candidates until the population is full or the attempts run out
func (strategy *Strategy) seed(ctx context.Context) ([]*solution.Candidate, error) {
	size, attempts := strategy.config.PopulationSize, strategy.config.seedingAttempts()

	population := make([]*solution.Candidate, 0, size)
	for attempt := 0; len(population) < size; attempt++ {
		if attempt >= attempts {
			return nil, fmt.Errorf("%w: %d of %d feasible candidates after %d attempts", ErrDegenerateInput, len(population), size, attempts)
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate := solution.NewCandidate(strategy.instance)
		greedyAllocate(candidate, strategy.random)
		candidate.ReevaluateConstraints()

		feasible := candidate.IsTotallyAllocated()
		strategy.hooks.SeedingAttempt(feasible)
		if feasible {
			population = append(population, candidate)
		}
	}

	sortPopulation(population)
	strategy.logger.Debug("population seeded", zap.Int("size", size), zap.Int("best", population[0].WeightedViolations()))
	return population, nil
}

// evolve runs the generation loop over a sorted population until the generations run out or a candidate without
// violations shows up
func (strategy *Strategy) evolve(ctx context.Context, population []*solution.Candidate) ([]*solution.Candidate, error) {
	size := strategy.config.PopulationSize
	children := make([]*solution.Candidate, 0, size+1)

	start := time.Now()
	generation := 0
	for generation < strategy.config.Generations && population[0].WeightedViolations() != 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		generationStart := time.Now()

		// Elitism
		children = children[:0]
		children = append(children, population[:min(strategy.eliteSize, len(population))]...)

		// Reproduction
		for len(children) < size {
			parent1 := strategy.tournament(population)
			parent2 := strategy.tournament(population)
			child1, child2 := strategy.crossover(parent1, parent2)

			if strategy.random.Float64() < strategy.config.MutationProbability {
				strategy.mutate(child1)
			}
			if strategy.random.Float64() < strategy.config.MutationProbability {
				strategy.mutate(child2)
			}

			if strategy.config.LocalSearch {
				strategy.memeticStep(child1)
				strategy.memeticStep(child2)
			}
			children = append(children, child1, child2)
		}

		// Pairs of children may overshoot the population size by one; the worst one is left out
		sortPopulation(children)
		children = children[:size]

		population, children = children, population
		generation++

		best := population[0]
		elapsed := time.Since(generationStart)
		strategy.hooks.GenerationCompleted(generation, best, elapsed)
		strategy.sink.Report(fmt.Sprintf("generation=%d t=%v V(w)=%d V(h)=%d V(s)=%d",
			generation, elapsed, best.WeightedViolations(), best.HardViolations(), best.SoftViolations()))
	}

	best := population[0]
	elapsed := time.Since(start)
	strategy.hooks.RunCompleted(generation, best, elapsed)
	strategy.logger.Info("memetic allocation finished",
		zap.Int("generations", generation),
		zap.Duration("elapsed", elapsed),
		zap.Int("weightedViolations", best.WeightedViolations()),
		zap.Int("hardViolations", best.HardViolations()),
		zap.Int("softViolations", best.SoftViolations()),
	)

	return population, nil
}

// sortPopulation orders candidates by ascending weighted violations, keeping the order of ties
func sortPopulation(population []*solution.Candidate) {
	slices.SortStableFunc(population, func(a, b *solution.Candidate) int {
		return a.WeightedViolations() - b.WeightedViolations()
	})
}

// recoverContract turns a contract violation raised by the candidates (bad grid index, broken bookkeeping) into the
// error of the aborted run. Any other panic is propagated
func recoverContract(err *error) {
	recovered := recover()
	if recovered == nil {
		return
	}
	if contractErr, ok := recovered.(error); ok &&
		(errors.Is(contractErr, model.ErrInvalidIndex) || errors.Is(contractErr, solution.ErrStructuralInvariant)) {
		*err = fmt.Errorf("memetic run aborted: %w", contractErr)
		return
	}
	panic(recovered)
}
