package model

// Grid is a dense width x height table. Cells are stored row by row, so a row (fixed y) is contiguous
type Grid[T any] struct {
	width  int
	height int
	data   []T
}

func NewGrid[T any](width, height int) *Grid[T] {
	if width < 0 || height < 0 {
		panic(&IndexError{X: width, Y: height, Width: width, Height: height})
	}
	return &Grid[T]{
		width:  width,
		height: height,
		data:   make([]T, width*height),
	}
}

func (grid *Grid[T]) Width() int {
	return grid.width
}

func (grid *Grid[T]) Height() int {
	return grid.height
}

func (grid *Grid[T]) Len() int {
	return len(grid.data)
}

// At returns a pointer to the cell at (x, y). It panics with an *IndexError when the coordinates are out of range
func (grid *Grid[T]) At(x, y int) *T {
	return &grid.data[grid.Index(x, y)]
}

// Index returns the linear position of (x, y)
func (grid *Grid[T]) Index(x, y int) int {
	if x < 0 || x >= grid.width || y < 0 || y >= grid.height {
		panic(&IndexError{X: x, Y: y, Width: grid.width, Height: grid.height})
	}
	return y*grid.width + x
}

// Coordinates inverts Index
func (grid *Grid[T]) Coordinates(index int) (x, y int) {
	if index < 0 || index >= len(grid.data) {
		panic(&IndexError{X: index, Y: 0, Width: grid.width, Height: grid.height})
	}
	return index % grid.width, index / grid.width
}

// Cell returns a pointer to the cell at a linear position
func (grid *Grid[T]) Cell(index int) *T {
	return &grid.data[index]
}

// Clone returns a shallow copy of every cell
func (grid *Grid[T]) Clone() *Grid[T] {
	data := make([]T, len(grid.data))
	copy(data, grid.data)
	return &Grid[T]{
		width:  grid.width,
		height: grid.height,
		data:   data,
	}
}
