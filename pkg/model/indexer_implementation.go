package model

type indexerImplementation struct {
	periods int
}

func (indexer *indexerImplementation) Index(day, period int) int {
	return period + indexer.periods*day
}

// Attributes inverts Index
func (indexer *indexerImplementation) Attributes(index int) (day, period int) {
	period = index % indexer.periods
	day = index / indexer.periods
	return day, period
}
