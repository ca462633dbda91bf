package sc16is7xx

import "github.com/jangala-dev/tinygo-sc16is7xx/x/mathx"

// Ring is a fixed-capacity ring buffer. A full flag disambiguates the full
// and empty states when the cursors meet, so every slot of the backing
// array is usable. Not safe for concurrent use.
type Ring[T any] struct {
	buf  []T
	in   int // next write position
	out  int // next read position
	full bool
}

// NewRing allocates a ring buffer with the given capacity.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Cap() int    { return len(r.buf) }
func (r *Ring[T]) Full() bool  { return r.full }
func (r *Ring[T]) Empty() bool { return !r.full && r.in == r.out }

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int {
	if r.full {
		return len(r.buf)
	}
	if r.in >= r.out {
		return r.in - r.out
	}
	return len(r.buf) - r.out + r.in
}

// Free returns the number of unused slots.
func (r *Ring[T]) Free() int { return len(r.buf) - r.Len() }

// Reset discards all buffered elements.
func (r *Ring[T]) Reset() {
	r.in, r.out, r.full = 0, 0, false
}

// Write copies as much of p as fits and returns the number of elements
// stored.
func (r *Ring[T]) Write(p []T) int {
	total := 0
	for len(p) > 0 {
		dst := r.Slots()
		if len(dst) == 0 {
			break
		}
		n := copy(dst, p)
		r.Commit(n)
		p = p[n:]
		total += n
	}
	return total
}

// Read moves up to len(p) buffered elements into p and returns the number
// moved.
func (r *Ring[T]) Read(p []T) int {
	total := 0
	for len(p) > 0 {
		src := r.Pending()
		if len(src) == 0 {
			break
		}
		n := copy(p, src)
		r.Release(n)
		p = p[n:]
		total += n
	}
	return total
}

// Slots returns the contiguous run of free slots at the write cursor. It is
// empty when the buffer is full; it stops at the wrap point even when more
// free slots exist past it. Follow a fill with Commit.
func (r *Ring[T]) Slots() []T {
	if r.full {
		return nil
	}
	if r.in >= r.out {
		return r.buf[r.in:]
	}
	return r.buf[r.in:r.out]
}

// Commit marks n slots returned by Slots as written.
func (r *Ring[T]) Commit(n int) {
	n = mathx.Clamp(n, 0, len(r.Slots()))
	if n == 0 {
		return
	}
	r.in = (r.in + n) % len(r.buf)
	if r.in == r.out {
		r.full = true
	}
}

// Pending returns the contiguous run of buffered elements at the read
// cursor, stopping at the wrap point. Follow a drain with Release.
func (r *Ring[T]) Pending() []T {
	if r.Empty() {
		return nil
	}
	if r.out < r.in {
		return r.buf[r.out:r.in]
	}
	return r.buf[r.out:]
}

// Release discards n elements returned by Pending.
func (r *Ring[T]) Release(n int) {
	n = mathx.Clamp(n, 0, len(r.Pending()))
	if n == 0 {
		return
	}
	r.out = (r.out + n) % len(r.buf)
	r.full = false
}
