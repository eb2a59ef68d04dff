package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/limaJavier/timetabling-memetic/pkg/memetic"
	"github.com/mitchellh/mapstructure"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	ModeNormal = "normal"
	ModeBan    = "ban"

	BanRoom     = "room"
	BanTimeslot = "timeslot"
	BanDay      = "day"

	FixGreedy  = "greedy"
	FixMemetic = "memetic"
	FixRestart = "restart"
)

// Config is the experiment configuration file
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Experiment ExperimentConfig `mapstructure:"experiment"`
	Store      StoreConfig      `mapstructure:"store"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type LogConfig struct {
	Env    string `mapstructure:"env" validate:"oneof=development production"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
}

// EngineConfig lists the values swept by the experiments. Every combination becomes one engine configuration
type EngineConfig struct {
	Generations           int       `mapstructure:"generations" validate:"gt=0"`
	PopulationSize        int       `mapstructure:"population_size" validate:"gt=0"`
	TournamentPercentages []float64 `mapstructure:"tournament_percentages" validate:"min=1,dive,gt=0,lte=1"`
	ElitePercentages      []float64 `mapstructure:"elite_percentages" validate:"min=1,dive,gte=0,lte=1"`
	MutationProbabilities []float64 `mapstructure:"mutation_probabilities" validate:"min=1,dive,gte=0,lte=1"`
	LocalSearch           []bool    `mapstructure:"local_search" validate:"min=1"`
	Seeds                 []int64   `mapstructure:"seeds" validate:"min=1"`
	MaxSeedingAttempts    int       `mapstructure:"max_seeding_attempts" validate:"gte=0"`
	RoomMatching          bool      `mapstructure:"room_matching"`
}

type ExperimentConfig struct {
	Instances   []string `mapstructure:"instances" validate:"min=1,dive,required"`
	Mode        string   `mapstructure:"mode" validate:"oneof=normal ban"`
	Ban         string   `mapstructure:"ban" validate:"required_if=Mode ban,omitempty,oneof=room timeslot day"`
	BanValue    int      `mapstructure:"ban_value" validate:"gte=0"`
	Fixes       []string `mapstructure:"fixes" validate:"dive,oneof=greedy memetic restart"`
	Output      string   `mapstructure:"output" validate:"required"`
	Parallelism int      `mapstructure:"parallelism" validate:"gte=0"`
}

type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

var validate = validator.New()

// Load reads a TOML configuration file. Relative instance, output and plain store paths are resolved against the
// directory of the file
func Load(file string) (*Config, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read configuration file: %w", err)
	}

	config, err := Parse(string(bytes))
	if err != nil {
		return nil, err
	}

	directory := filepath.Dir(file)
	for i, instance := range config.Experiment.Instances {
		config.Experiment.Instances[i] = resolve(directory, instance)
	}
	config.Experiment.Output = resolve(directory, config.Experiment.Output)
	if dsn := config.Store.DSN; dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		config.Store.DSN = resolve(directory, dsn)
	}
	return config, nil
}

// Parse decodes and validates a TOML configuration document
func Parse(document string) (*Config, error) {
	var inputToml map[string]any
	if _, err := toml.Decode(document, &inputToml); err != nil {
		return nil, fmt.Errorf("cannot parse configuration: %w", err)
	}

	var config Config
	if err := mapstructure.Decode(inputToml, &config); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}
	config.applyDefaults()

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func (config *Config) applyDefaults() {
	if config.Log.Env == "" {
		config.Log.Env = EnvDevelopment
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}

	engine := &config.Engine
	if engine.Generations == 0 {
		engine.Generations = 15000
	}
	if engine.PopulationSize == 0 {
		engine.PopulationSize = 150
	}
	if len(engine.TournamentPercentages) == 0 {
		engine.TournamentPercentages = []float64{0.5}
	}
	if len(engine.ElitePercentages) == 0 {
		engine.ElitePercentages = []float64{0.5}
	}
	if len(engine.MutationProbabilities) == 0 {
		engine.MutationProbabilities = []float64{0.25}
	}
	if len(engine.LocalSearch) == 0 {
		engine.LocalSearch = []bool{true, false}
	}
	if len(engine.Seeds) == 0 {
		engine.Seeds = []int64{0}
	}

	experiment := &config.Experiment
	if experiment.Mode == "" {
		experiment.Mode = ModeNormal
	}
	if len(experiment.Fixes) == 0 {
		experiment.Fixes = []string{FixGreedy, FixMemetic, FixRestart}
	}
}

// Sweep returns one engine configuration per combination of the swept values, seeds outermost
func (engine EngineConfig) Sweep() []memetic.Config {
	configs := make([]memetic.Config, 0)
	for _, seed := range engine.Seeds {
		for _, tournament := range engine.TournamentPercentages {
			for _, elite := range engine.ElitePercentages {
				for _, mutation := range engine.MutationProbabilities {
					for _, localSearch := range engine.LocalSearch {
						configs = append(configs, memetic.Config{
							Generations:          engine.Generations,
							PopulationSize:       engine.PopulationSize,
							TournamentPercentage: tournament,
							ElitePercentage:      elite,
							MutationProbability:  mutation,
							LocalSearch:          localSearch,
							Seed:                 seed,
							MaxSeedingAttempts:   engine.MaxSeedingAttempts,
							RoomMatching:         engine.RoomMatching,
						})
					}
				}
			}
		}
	}
	return configs
}

func resolve(directory, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(directory, path)
}
