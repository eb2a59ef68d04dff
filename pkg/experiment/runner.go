package experiment

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/timetabling-memetic/pkg/config"
	"github.com/limaJavier/timetabling-memetic/pkg/memetic"
	"github.com/limaJavier/timetabling-memetic/pkg/model"
	"github.com/limaJavier/timetabling-memetic/pkg/progress"
	"github.com/limaJavier/timetabling-memetic/pkg/solution"
	"github.com/limaJavier/timetabling-memetic/pkg/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Repository persists the records of a run
type Repository interface {
	Create(ctx context.Context, result *store.Result) error
}

// Runner executes the experiment matrix of a configuration. Independent tasks run in parallel
type Runner struct {
	config *config.Config
	runID  string

	logger     *zap.Logger
	hooks      memetic.Hooks
	sink       progress.Sink
	repository Repository
}

type Option func(runner *Runner)

func WithLogger(logger *zap.Logger) Option {
	return func(runner *Runner) {
		if logger != nil {
			runner.logger = logger
		}
	}
}

// WithHooks installs engine hooks shared by every task, so they must be safe for concurrent use
func WithHooks(hooks memetic.Hooks) Option {
	return func(runner *Runner) {
		if hooks != nil {
			runner.hooks = hooks
		}
	}
}

func WithSink(sink progress.Sink) Option {
	return func(runner *Runner) {
		if sink != nil {
			runner.sink = sink
		}
	}
}

func WithRepository(repository Repository) Option {
	return func(runner *Runner) {
		runner.repository = repository
	}
}

func NewRunner(config *config.Config, options ...Option) *Runner {
	runner := &Runner{
		config: config,
		runID:  uuid.NewString(),
		logger: zap.NewNop(),
		hooks:  memetic.NoopHooks{},
		sink:   progress.Nop,
	}
	for _, option := range options {
		option(runner)
	}
	runner.logger = runner.logger.With(zap.String("run", runner.runID))
	return runner
}

// RunID identifies the records persisted by this runner
func (runner *Runner) RunID() string {
	return runner.runID
}

type task func(ctx context.Context) ([]Record, error)

// Run executes every task of the experiment and returns their records in task order. The first failing task cancels
// the others
func (runner *Runner) Run(ctx context.Context) ([]Record, error) {
	var tasks []task
	if runner.config.Experiment.Mode == config.ModeBan {
		tasks = runner.banTasks()
	} else {
		tasks = runner.normalTasks()
	}
	runner.logger.Info("experiment started",
		zap.String("mode", runner.config.Experiment.Mode),
		zap.Int("tasks", len(tasks)),
	)

	parallelism := runner.config.Experiment.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)

	results := make([][]Record, len(tasks))
	for i, run := range tasks {
		group.Go(func() error {
			records, err := run(groupCtx)
			if err != nil {
				return err
			}
			results[i] = records
			return runner.persist(groupCtx, records)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	records := lo.Flatten(results)
	runner.logger.Info("experiment finished", zap.Int("records", len(records)))
	return records, nil
}

func (runner *Runner) normalTasks() []task {
	tasks := make([]task, 0)
	sweep := runner.config.Engine.Sweep()
	for _, file := range runner.config.Experiment.Instances {
		for _, engine := range sweep {
			tasks = append(tasks, func(ctx context.Context) ([]Record, error) {
				return runner.runNormal(ctx, file, engine)
			})
		}
	}
	return tasks
}

func (runner *Runner) runNormal(ctx context.Context, file string, engine memetic.Config) ([]Record, error) {
	instance, err := model.LoadInstance(file)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	best, err := runner.solve(ctx, instance, engine)
	if err != nil {
		return nil, fmt.Errorf("cannot solve %v: %w", file, err)
	}
	return []Record{newRecord(file, instance, engine, best, time.Since(start))}, nil
}

// banTasks build one task per instance and seed. Bans change the instance, so every task loads its own copy
func (runner *Runner) banTasks() []task {
	tasks := make([]task, 0)
	for _, file := range runner.config.Experiment.Instances {
		for _, seed := range runner.config.Engine.Seeds {
			tasks = append(tasks, func(ctx context.Context) ([]Record, error) {
				return runner.runBan(ctx, file, seed)
			})
		}
	}
	return tasks
}

func (runner *Runner) runBan(ctx context.Context, file string, seed int64) ([]Record, error) {
	experiment := runner.config.Experiment
	engines := lo.Filter(runner.config.Engine.Sweep(), func(engine memetic.Config, _ int) bool {
		return engine.Seed == seed
	})

	instance, err := model.LoadInstance(file)
	if err != nil {
		return nil, err
	}
	if experiment.Ban == config.BanDay {
		instance.AddDay()
	}

	// The candidate to repair comes from a run with the first swept values and the local search on
	initialEngine := engines[0]
	initialEngine.LocalSearch = true
	initial, err := runner.solve(ctx, instance, initialEngine)
	if err != nil {
		return nil, fmt.Errorf("cannot solve %v: %w", file, err)
	}

	bannedValue, deallocated, err := ban(initial, experiment.Ban, experiment.BanValue)
	if err != nil {
		return nil, fmt.Errorf("cannot ban %v %d of %v: %w", experiment.Ban, bannedValue, file, err)
	}
	runner.logger.Debug("ban applied",
		zap.String("instance", file),
		zap.String("ban", experiment.Ban),
		zap.Int("value", bannedValue),
		zap.Int("deallocated", deallocated),
	)

	banRecord := func(method string, engine memetic.Config, fixed *solution.Candidate, duration time.Duration) Record {
		record := newRecord(file, instance, engine, fixed, duration)
		record.BanType = experiment.Ban
		record.BannedValue = bannedValue
		record.FixMethod = method
		record.DeallocatedByBan = deallocated
		record.EventsInBanned = eventsInBanned(fixed, experiment.Ban, bannedValue)
		record.DisplacedEvents = initial.CompareDifferencesWith(fixed)
		return record
	}

	records := make([]Record, 0)
	if lo.Contains(experiment.Fixes, config.FixGreedy) {
		strategy, err := runner.strategy(instance, initialEngine)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		fixed, err := strategy.GreedyFix(initial)
		if err != nil {
			return nil, err
		}
		records = append(records, banRecord(config.FixGreedy, initialEngine, fixed, time.Since(start)))
	}

	for _, engine := range engines {
		if lo.Contains(experiment.Fixes, config.FixMemetic) {
			strategy, err := runner.strategy(instance, engine)
			if err != nil {
				return nil, err
			}
			start := time.Now()
			fixed, err := strategy.MemeticFix(ctx, initial)
			if err != nil {
				return nil, err
			}
			records = append(records, banRecord(config.FixMemetic, engine, fixed, time.Since(start)))
		}

		if lo.Contains(experiment.Fixes, config.FixRestart) {
			start := time.Now()
			fixed, err := runner.solve(ctx, instance, engine)
			if err != nil {
				return nil, err
			}
			records = append(records, banRecord(config.FixRestart, engine, fixed, time.Since(start)))
		}
	}
	return records, nil
}

func (runner *Runner) strategy(instance *model.Instance, engine memetic.Config) (*memetic.Strategy, error) {
	return memetic.NewStrategy(instance, engine,
		memetic.WithLogger(runner.logger),
		memetic.WithSink(runner.sink),
		memetic.WithHooks(runner.hooks),
	)
}

// solve returns the best candidate of a full allocation run
func (runner *Runner) solve(ctx context.Context, instance *model.Instance, engine memetic.Config) (*solution.Candidate, error) {
	strategy, err := runner.strategy(instance, engine)
	if err != nil {
		return nil, err
	}
	population, err := strategy.Allocate(ctx)
	if err != nil {
		return nil, err
	}
	return population[0], nil
}

func (runner *Runner) persist(ctx context.Context, records []Record) error {
	if runner.repository == nil {
		return nil
	}
	for _, record := range records {
		if err := runner.repository.Create(ctx, record.result(runner.runID, runner.config.Experiment.Mode)); err != nil {
			return fmt.Errorf("cannot persist result: %w", err)
		}
	}
	return nil
}

// ban applies a ban of the given kind to the candidate and returns the banned value with the number of events it
// deallocated. A day ban always targets the last day
func ban(candidate *solution.Candidate, kind string, value int) (int, int, error) {
	var (
		deallocated int
		err         error
	)
	switch kind {
	case config.BanRoom:
		deallocated, err = candidate.BanRoomForAll(value)
	case config.BanTimeslot:
		deallocated, err = candidate.BanTimeslotForAll(value)
	case config.BanDay:
		value = candidate.Instance().Days - 1
		deallocated, err = candidate.BanDayForAll(value)
	default:
		err = fmt.Errorf("unknown ban %q", kind)
	}
	return value, deallocated, err
}

func eventsInBanned(candidate *solution.Candidate, kind string, value int) int {
	switch kind {
	case config.BanRoom:
		return candidate.CountEventsInRoom(value)
	case config.BanTimeslot:
		return candidate.CountEventsOnTimeslot(value)
	case config.BanDay:
		return candidate.CountEventsOnDay(value)
	}
	return 0
}
