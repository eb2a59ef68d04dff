package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Result is one persisted experiment row
type Result struct {
	ID                   string    `db:"id"`
	RunID                string    `db:"run_id"`
	Mode                 string    `db:"mode"`
	Instance             string    `db:"instance"`
	Rooms                int       `db:"rooms"`
	Days                 int       `db:"days"`
	PeriodsPerDay        int       `db:"periods_per_day"`
	Teachers             int       `db:"teachers"`
	Seed                 int64     `db:"seed"`
	Generations          int       `db:"generations"`
	PopulationSize       int       `db:"population_size"`
	TournamentPercentage float64   `db:"tournament_percentage"`
	ElitePercentage      float64   `db:"elite_percentage"`
	MutationProbability  float64   `db:"mutation_probability"`
	LocalSearch          bool      `db:"local_search"`
	BanType              string    `db:"ban_type"`
	BannedValue          int       `db:"banned_value"`
	FixMethod            string    `db:"fix_method"`
	DeallocatedByBan     int       `db:"deallocated_by_ban"`
	EventsInBanned       int       `db:"events_in_banned"`
	DisplacedEvents      int       `db:"displaced_events"`
	WeightedViolations   int       `db:"weighted_violations"`
	HardViolations       int       `db:"hard_violations"`
	SoftViolations       int       `db:"soft_violations"`
	DurationMs           int64     `db:"duration_ms"`
	CreatedAt            time.Time `db:"created_at"`
}

const resultColumns = `id, run_id, mode, instance, rooms, days, periods_per_day, teachers, seed, generations,
	population_size, tournament_percentage, elite_percentage, mutation_probability, local_search, ban_type,
	banned_value, fix_method, deallocated_by_ban, events_in_banned, displaced_events, weighted_violations,
	hard_violations, soft_violations, duration_ms, created_at`

// ResultRepository persists experiment results
type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create stores a result, filling its identifier and creation time when missing
func (r *ResultRepository) Create(ctx context.Context, result *Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO results (` + resultColumns + `)
	VALUES (:id, :run_id, :mode, :instance, :rooms, :days, :periods_per_day, :teachers, :seed, :generations,
	:population_size, :tournament_percentage, :elite_percentage, :mutation_probability, :local_search, :ban_type,
	:banned_value, :fix_method, :deallocated_by_ban, :events_in_banned, :displaced_events, :weighted_violations,
	:hard_violations, :soft_violations, :duration_ms, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// ListByRun returns the results of a run ordered by creation time
func (r *ResultRepository) ListByRun(ctx context.Context, runID string) ([]Result, error) {
	const query = `SELECT ` + resultColumns + ` FROM results WHERE run_id = ? ORDER BY created_at, id`
	results := make([]Result, 0)
	if err := r.db.SelectContext(ctx, &results, query, runID); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// Best returns the result of an instance with the fewest weighted violations
func (r *ResultRepository) Best(ctx context.Context, instance string) (*Result, error) {
	const query = `SELECT ` + resultColumns + ` FROM results WHERE instance = ?
	ORDER BY weighted_violations, duration_ms LIMIT 1`
	var result Result
	if err := r.db.GetContext(ctx, &result, query, instance); err != nil {
		return nil, fmt.Errorf("best result: %w", err)
	}
	return &result, nil
}
