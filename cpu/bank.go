package cpu

// Bank is a fixed capacity memory addressed from zero.
type Bank[T any] struct {
	Cells []T
}

// NewBank creates a bank of the given capacity, every cell holding fill.
func NewBank[T any](capacity int, fill T) (bank Bank[T]) {
	bank.Cells = make([]T, capacity)
	bank.Fill(fill)
	return
}

// Len returns the capacity of the bank.
func (b *Bank[T]) Len() int {
	return len(b.Cells)
}

// Fill sets every cell to value.
func (b *Bank[T]) Fill(value T) {
	for n := range b.Cells {
		b.Cells[n] = value
	}
}

// Contains returns true if addr is a valid index.
func (b *Bank[T]) Contains(addr int64) bool {
	return addr >= 0 && addr < int64(len(b.Cells))
}

// Read the cell at addr. ok is false when addr is out of range.
func (b *Bank[T]) Read(addr int64) (value T, ok bool) {
	if !b.Contains(addr) {
		return
	}
	return b.Cells[addr], true
}

// Write the cell at addr. Returns false, leaving the bank untouched, when
// addr is out of range.
func (b *Bank[T]) Write(addr int64, value T) bool {
	if !b.Contains(addr) {
		return false
	}
	b.Cells[addr] = value
	return true
}
