package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/timetabling-memetic/pkg/memetic"
	"github.com/limaJavier/timetabling-memetic/pkg/model"
)

func TestPrometheusHooksFollowAStrategy(t *testing.T) {
	//** Arrange
	instance, err := model.InstanceFromJson("../../testdata/toy.json")
	require.NoError(t, err)
	hooks := NewPrometheusHooks()
	config := memetic.Config{
		Generations:          5,
		PopulationSize:       4,
		TournamentPercentage: 0.5,
		ElitePercentage:      0.25,
		MutationProbability:  0.5,
		LocalSearch:          true,
		Seed:                 3,
	}
	strategy, err := memetic.NewStrategy(instance, config, memetic.WithHooks(hooks))
	require.NoError(t, err)

	//** Act
	population, err := strategy.Allocate(context.Background())
	require.NoError(t, err)

	//** Assert
	assert.Equal(t, 4.0, testutil.ToFloat64(hooks.seedingAttempts.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(hooks.runs))
	assert.LessOrEqual(t, testutil.ToFloat64(hooks.generations), 5.0)
	assert.Equal(t, float64(population[0].WeightedViolations()), testutil.ToFloat64(hooks.bestWeighted))
	assert.Equal(t, float64(population[0].HardViolations()), testutil.ToFloat64(hooks.bestHard))
}

func TestPrometheusHooksHandler(t *testing.T) {
	//** Arrange
	hooks := NewPrometheusHooks()
	hooks.SeedingAttempt(false)

	//** Act
	recorder := httptest.NewRecorder()
	hooks.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	//** Assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), `memetic_seeding_attempts_total{feasible="false"} 1`))
	count, err := testutil.GatherAndCount(hooks.Registry(), "memetic_seeding_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
