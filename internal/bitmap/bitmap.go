// Package bitmap implements a fixed-capacity bit vector used to track which
// variable combinations have already been visited.
package bitmap

import "math/bits"

// Bitmap is a byte-backed bit vector. Bit 0 is the most significant bit of
// the first byte. Capacity is always a multiple of 8.
type Bitmap struct {
	cells []byte
}

// New returns a bitmap able to hold at least n bits.
func New(n int) *Bitmap {
	if n < 0 {
		n = 0
	}
	return &Bitmap{cells: make([]byte, (n+7)/8)}
}

// Len returns the capacity in bits.
func (b *Bitmap) Len() int { return len(b.cells) * 8 }

// Clear zeroes every bit.
func (b *Bitmap) Clear() {
	for i := range b.cells {
		b.cells[i] = 0
	}
}

func (b *Bitmap) locate(i int) (int, byte, bool) {
	if i < 0 || i >= b.Len() {
		return 0, 0, false
	}
	return i / 8, byte(0x80) >> (i % 8), true
}

// Set sets bit i. It reports false when i is out of range.
func (b *Bitmap) Set(i int) bool {
	cell, mask, ok := b.locate(i)
	if !ok {
		return false
	}
	b.cells[cell] |= mask
	return true
}

// Unset clears bit i. It reports false when i is out of range.
func (b *Bitmap) Unset(i int) bool {
	cell, mask, ok := b.locate(i)
	if !ok {
		return false
	}
	b.cells[cell] &^= mask
	return true
}

// Test reports whether bit i is set. Out-of-range indices are never set.
func (b *Bitmap) Test(i int) bool {
	cell, mask, ok := b.locate(i)
	if !ok {
		return false
	}
	return b.cells[cell]&mask != 0
}

// TestAndSet sets bit i and reports whether it was already set.
func (b *Bitmap) TestAndSet(i int) bool {
	if b.Test(i) {
		return true
	}
	b.Set(i)
	return false
}

// Ones lists the indices of all set bits in ascending order.
func (b *Bitmap) Ones() []int {
	var out []int
	for i := 0; i < b.Len(); i++ {
		if b.Test(i) {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the number of set bits.
func (b *Bitmap) Count() int {
	n := 0
	for _, c := range b.cells {
		n += bits.OnesCount8(c)
	}
	return n
}
