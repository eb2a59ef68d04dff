package model

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexAndAttributesDeterministic(t *testing.T) {
	//** Arrange
	scenarios := [][2]int{
		{1, 1},
		{2, 2},
		{5, 4},
		{4, 5},
		{6, 9},
		{7, 1},
		{1, 12},
	}

	for _, scenario := range scenarios {
		days, periods := scenario[0], scenario[1]

		//** Act
		indexer := newIndexer(periods)

		//** Assert
		for day := range days {
			for period := range periods {
				decodedDay, decodedPeriod := indexer.Attributes(indexer.Index(day, period))
				assert.Equal(t, day, decodedDay, "scenario %v", scenario)
				assert.Equal(t, period, decodedPeriod, "scenario %v", scenario)
			}
		}
	}
}

func TestIndexAndAttributesNonDeterministic(t *testing.T) {
	for range 10 {
		//** Arrange
		days := rand.Intn(7) + 1
		periods := rand.Intn(12) + 1

		//** Act
		indexer := newIndexer(periods)
		indices := make([]int, 0, days*periods)
		for day := range days {
			for period := range periods {
				indices = append(indices, indexer.Index(day, period))
			}
		}

		//** Assert
		for _, index := range indices {
			day, period := indexer.Attributes(index)
			assert.Equal(t, index, indexer.Index(day, period))
		}
	}
}

func TestIndicesAreDense(t *testing.T) {
	for range 10 {
		//** Arrange
		days := rand.Intn(7) + 1
		periods := rand.Intn(12) + 1
		indexer := newIndexer(periods)

		//** Act
		indices := make([]int, 0, days*periods)
		for day := range days {
			for period := range periods {
				indices = append(indices, indexer.Index(day, period))
			}
		}
		slices.Sort(indices)

		//** Assert
		for i, index := range indices {
			// Indices must cover [0, days*periods) without gaps
			assert.Equal(t, i, index)
		}
	}
}

func TestAttributesOfNonSquareWeek(t *testing.T) {
	// 5 days of 4 periods: index 9 is the second period of the third day
	indexer := newIndexer(4)
	day, period := indexer.Attributes(9)
	assert.Equal(t, 2, day)
	assert.Equal(t, 1, period)
	assert.Equal(t, 9, indexer.Index(2, 1))
}
