// Package seq implements lazy, forward-only sequences. Every combinator wraps
// its input cursors and pulls from them only when its own Next is called, so
// infinite sequences can be composed freely as long as the consumer only pulls
// a bounded number of elements.
//
// Sequences are not restartable: pulling from a sequence consumes it, and a
// cursor that was passed to a combinator should not be used directly anymore.
package seq

import (
	"iter"
	"math"
)

type (
	// Iterator is a pull-based cursor. Next returns the next element and true,
	// or the zero value and false when the sequence is exhausted. Once Next has
	// returned false, it keeps returning false.
	Iterator[T any] interface {
		Next() (T, bool)
	}

	// Func adapts a plain function into an Iterator.
	Func[T any] func() (T, bool)

	// Peekable wraps an Iterator with an explicit HasNext, buffering at most one
	// element.
	Peekable[T any] struct {
		it       Iterator[T]
		head     T
		buffered bool
		done     bool
	}
)

// Infinity can be given as the end of Range to get an unbounded sequence.
const Infinity = math.MaxInt

func (f Func[T]) Next() (T, bool) { return f() }

// Range yields start, start+1, ... up to but excluding end. If end is
// Infinity, the sequence never ends.
func Range(start, end int) Iterator[int] {
	i := start
	return Func[int](func() (int, bool) {
		if end != Infinity && i >= end {
			return 0, false
		}
		v := i
		i++
		return v, true
	})
}

// FromSlice yields the elements of s in order. The slice is not copied.
func FromSlice[T any](s []T) Iterator[T] {
	i := 0
	return Func[T](func() (T, bool) {
		if i >= len(s) {
			var zero T
			return zero, false
		}
		v := s[i]
		i++
		return v, true
	})
}

// Cycle repeats a finite sequence forever. The elements are remembered while
// they are pulled for the first time, so Cycle never drains its input eagerly.
// Cycling an empty sequence panics on the first pull; cycling an infinite one
// just passes the elements through.
func Cycle[T any](it Iterator[T]) Iterator[T] {
	var seen []T
	pos := 0
	drained := false
	return Func[T](func() (T, bool) {
		if !drained {
			if v, ok := it.Next(); ok {
				seen = append(seen, v)
				return v, true
			}
			drained = true
			if len(seen) == 0 {
				panic("seq: Cycle of an empty sequence")
			}
		}
		v := seen[pos]
		pos = (pos + 1) % len(seen)
		return v, true
	})
}

// Map applies f to each element when it is pulled.
func Map[T, U any](f func(T) U, it Iterator[T]) Iterator[U] {
	return Func[U](func() (U, bool) {
		v, ok := it.Next()
		if !ok {
			var zero U
			return zero, false
		}
		return f(v), true
	})
}

// ZipWith pairs the elements of a and b positionally and combines them with f.
// It stops as soon as either input stops; b is not pulled if a is exhausted.
func ZipWith[A, B, C any](f func(A, B) C, a Iterator[A], b Iterator[B]) Iterator[C] {
	done := false
	return Func[C](func() (C, bool) {
		var zero C
		if done {
			return zero, false
		}
		x, ok := a.Next()
		if !ok {
			done = true
			return zero, false
		}
		y, ok := b.Next()
		if !ok {
			done = true
			return zero, false
		}
		return f(x, y), true
	})
}

// Iterate yields seed, f(seed), f(f(seed)), ... f is called only when the
// following element is pulled, so it may read state that changes between
// pulls.
func Iterate[T any](seed T, f func(T) T) Iterator[T] {
	cur := seed
	started := false
	return Func[T](func() (T, bool) {
		if started {
			cur = f(cur)
		}
		started = true
		return cur, true
	})
}

// Take yields at most n elements of it.
func Take[T any](n int, it Iterator[T]) Iterator[T] {
	left := n
	return Func[T](func() (T, bool) {
		if left <= 0 {
			var zero T
			return zero, false
		}
		left--
		return it.Next()
	})
}

// Collect drains a finite sequence into a slice.
func Collect[T any](it Iterator[T]) []T {
	var ret []T
	for v, ok := it.Next(); ok; v, ok = it.Next() {
		ret = append(ret, v)
	}
	return ret
}

// All adapts a cursor into a range-over-func sequence. Breaking out of the loop
// leaves the rest of the cursor unconsumed.
func All[T any](it Iterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			if !yield(v) {
				return
			}
		}
	}
}

// NewPeekable wraps it. The returned value should be used instead of it.
func NewPeekable[T any](it Iterator[T]) *Peekable[T] {
	return &Peekable[T]{it: it}
}

// HasNext reports whether Next would return an element. It pulls at most one
// element from the underlying cursor.
func (p *Peekable[T]) HasNext() bool {
	if p.buffered {
		return true
	}
	if p.done {
		return false
	}
	v, ok := p.it.Next()
	if !ok {
		p.done = true
		return false
	}
	p.head, p.buffered = v, true
	return true
}

// Peek returns the next element without consuming it.
func (p *Peekable[T]) Peek() (T, bool) {
	if !p.HasNext() {
		var zero T
		return zero, false
	}
	return p.head, true
}

func (p *Peekable[T]) Next() (T, bool) {
	if !p.HasNext() {
		var zero T
		return zero, false
	}
	v := p.head
	var zero T
	p.head, p.buffered = zero, false
	return v, true
}
