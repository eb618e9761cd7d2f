package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func elems(s *Bitmap) (r []int) {
	s.Range(func(i int) bool {
		r = append(r, i)
		return true
	})

	return r
}

func TestBitmap(t *testing.T) {
	var s Bitmap

	assert.False(t, s.IsSet(0))
	assert.Equal(t, -1, s.First())
	assert.Empty(t, elems(&s))

	s.Set(3)
	s.Set(64)
	s.Set(200)

	assert.True(t, s.IsSet(3))
	assert.True(t, s.IsSet(64))
	assert.True(t, s.IsSet(200))
	assert.False(t, s.IsSet(4))
	assert.False(t, s.IsSet(1000))
	assert.Equal(t, 3, s.First())

	assert.Equal(t, []int{3, 64, 200}, elems(&s))
}

func TestBitmapAndNot(t *testing.T) {
	var s, x Bitmap

	s.Set(1)
	s.Set(2)
	s.Set(130)

	x.Set(2)
	x.Set(130)
	x.Set(700)

	s.AndNot(x)

	assert.Equal(t, []int{1}, elems(&s))
	assert.Equal(t, []int{2, 130, 700}, elems(&x))

	s.AndNot(s)
	assert.Equal(t, -1, s.First())
}

func TestBitmapRangeStop(t *testing.T) {
	var s Bitmap

	for i := 0; i < 10; i++ {
		s.Set(i * 7)
	}

	n := 0
	s.Range(func(i int) bool {
		n++
		return n < 4
	})

	assert.Equal(t, 4, n)
}

func TestBitmapNegative(t *testing.T) {
	var s Bitmap

	assert.Panics(t, func() { s.Set(-1) })
}
