package memetic

import (
	"math/rand/v2"
	"slices"
)

func newRandom(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// choose draws a uniformly random element of a non-empty slice
func choose[T any](random *rand.Rand, items []T) T {
	return items[random.IntN(len(items))]
}

// chooseRemove draws a uniformly random element of a non-empty slice and removes it
func chooseRemove[T any](random *rand.Rand, items *[]T) T {
	index := random.IntN(len(*items))
	item := (*items)[index]
	*items = slices.Delete(*items, index, index+1)
	return item
}
