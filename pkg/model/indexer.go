package model

// indexer interface is designed to give a unique linear index to a (day, period) pair and vice versa
type indexer interface {
	// Returns a unique index for the given day and period
	Index(day, period int) int
	// Returns the day and period from a unique index
	Attributes(index int) (day int, period int)
}

func newIndexer(periods int) indexer {
	return &indexerImplementation{
		periods: periods,
	}
}
