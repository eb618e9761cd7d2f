package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Bitmap is a set of non-negative ints. The zero value is an empty set.
	Bitmap struct {
		b  []uint64
		b0 [1]uint64
	}
)

func (s *Bitmap) Set(i int) {
	i, j := s.ij(i)

	s.grow(i + 1)

	s.b[i] |= 1 << j
}

func (s *Bitmap) IsSet(i int) bool {
	i, j := s.ij(i)

	if i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

// AndNot removes all elements of x from s.
func (s *Bitmap) AndNot(x Bitmap) {
	for i, x := range x.b {
		if i == len(s.b) {
			break
		}

		s.b[i] &^= x
	}
}

// First is the smallest element or -1 if the set is empty.
func (s *Bitmap) First() int {
	for i, x := range s.b {
		if x != 0 {
			return i*64 + bits.TrailingZeros64(x)
		}
	}

	return -1
}

func (s *Bitmap) Range(f func(i int) bool) {
	for i, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(i*64 + j) {
				return
			}
		}
	}
}

func (s Bitmap) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(i int) bool {
		b = e.AppendInt(b, i)

		return true
	})

	b = e.AppendBreak(b)

	return b
}

func (s *Bitmap) grow(n int) {
	if n <= len(s.b) {
		return
	}

	if s.b == nil && n <= len(s.b0) {
		s.b = s.b0[:]
		return
	}

	b := make([]uint64, n)
	copy(b, s.b)

	s.b = b
}

func (s *Bitmap) ij(pos int) (i, j int) {
	if pos < 0 {
		panic(pos)
	}

	return pos / 64, pos % 64
}
