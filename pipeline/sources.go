package pipeline

import (
	"context"
	"iter"
)

// SliceIter returns an iterator over items. The slice is not copied.
func SliceIter[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// SeqIter returns an iterator pulling from seq. Close stops the sequence,
// so an abandoned iterator does not leak its coroutine.
func SeqIter[T any](seq iter.Seq[T]) Iterator[T] {
	return &seqIter[T]{seq: seq}
}

// RangeIter returns an iterator over the half-open interval [lo, hi).
// An empty or inverted interval yields nothing.
func RangeIter(lo, hi int) Iterator[int] {
	return &rangeIter{next: lo, hi: hi}
}

// Empty returns an iterator that is exhausted from the start.
func Empty[T any]() Iterator[T] {
	return emptyIter[T]{}
}


type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type seqIter[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
	done bool
}

func (it *seqIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.done {
		var zero T
		return zero, false, nil
	}
	if it.next == nil {
		it.next, it.stop = iter.Pull(it.seq)
	}
	val, ok := it.next()
	if !ok {
		it.release()
	}
	return val, ok, nil
}

func (it *seqIter[T]) Close() error {
	it.release()
	return nil
}

func (it *seqIter[T]) release() {
	it.done = true
	if it.stop != nil {
		it.stop()
		it.stop = nil
	}
}

type rangeIter struct {
	next, hi int
}

func (it *rangeIter) Next(_ context.Context) (int, bool, error) {
	if it.next >= it.hi {
		return 0, false, nil
	}
	val := it.next
	it.next++
	return val, true, nil
}

func (it *rangeIter) Close() error { return nil }

type emptyIter[T any] struct{}

func (emptyIter[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (emptyIter[T]) Close() error { return nil }
