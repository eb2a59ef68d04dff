package memetic

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Config holds the knobs of a Strategy. They are fixed for the lifetime of the strategy
type Config struct {
	Generations          int     `mapstructure:"generations" validate:"gt=0"`
	PopulationSize       int     `mapstructure:"populationSize" validate:"gt=0"`
	TournamentPercentage float64 `mapstructure:"tournamentPercentage" validate:"gt=0,lte=1"`
	ElitePercentage      float64 `mapstructure:"elitePercentage" validate:"gte=0,lte=1"`
	MutationProbability  float64 `mapstructure:"mutationProbability" validate:"gte=0,lte=1"`
	LocalSearch          bool    `mapstructure:"localSearch"`
	Seed                 int64   `mapstructure:"seed"`

	// Candidates built while seeding before giving up; zero means 100 per population member
	MaxSeedingAttempts int `mapstructure:"maxSeedingAttempts" validate:"gte=0"`
	// Re-match the rooms of every timeslot after the local search
	RoomMatching bool `mapstructure:"roomMatching"`
}

var validate = validator.New()

func (config Config) Validate() error {
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// TournamentSize is the number of draws of a tournament selection, at least one
func (config Config) TournamentSize() int {
	return max(1, int(math.Round(float64(config.PopulationSize)*config.TournamentPercentage)))
}

// EliteSize is the number of candidates carried unchanged into the next generation
func (config Config) EliteSize() int {
	return min(config.PopulationSize, int(math.Round(float64(config.PopulationSize)*config.ElitePercentage)))
}

func (config Config) seedingAttempts() int {
	if config.MaxSeedingAttempts > 0 {
		return config.MaxSeedingAttempts
	}
	return 100 * config.PopulationSize
}
