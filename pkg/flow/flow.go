// Package flow decorates lazy, single-pass sequences with lifecycle hooks.
//
// A sequence is an iter.Seq2[T, error]. An element with a non-nil error is the
// last one: every operator here stops pulling from upstream after it.
package flow

import (
	"errors"
	"iter"
)

// ErrStopped is reported to completion hooks when the consumer stops ranging
// before the upstream sequence is exhausted.
var ErrStopped = errors.New("flow: consumer stopped before completion")

// OnStart runs fn once, right before the first element is requested.
func OnStart[T any](seq iter.Seq2[T, error], fn func()) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		fn()
		seq(yield)
	}
}

// OnEach runs fn for every successful element before handing it downstream.
func OnEach[T any](seq iter.Seq2[T, error], fn func(T)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if err != nil {
				yield(v, err)
				return
			}
			fn(v)
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Map applies fn to every element, one at a time. An upstream error or an
// error returned by fn ends the sequence with that error.
func Map[T, U any](seq iter.Seq2[T, error], fn func(T) (U, error)) iter.Seq2[U, error] {
	return func(yield func(U, error) bool) {
		var zero U
		for v, err := range seq {
			if err != nil {
				yield(zero, err)
				return
			}
			out, err := fn(v)
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// Catch observes the terminal error and passes it on unchanged.
func Catch[T any](seq iter.Seq2[T, error], fn func(error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if err != nil {
				fn(err)
				yield(v, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Every calls fn with the running count each time it reaches a multiple of n.
func Every[T any](seq iter.Seq2[T, error], n int, fn func(count int)) iter.Seq2[T, error] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T, error) bool) {
		count := 0
		for v, err := range seq {
			if err != nil {
				yield(v, err)
				return
			}
			count++
			if count%n == 0 {
				fn(count)
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// OnCompletion runs fn exactly once per ranging: with nil when upstream is
// exhausted, with the terminal error before it reaches the consumer, or with
// ErrStopped when the consumer breaks out early.
func OnCompletion[T any](seq iter.Seq2[T, error], fn func(cause error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		done := false
		complete := func(cause error) {
			if !done {
				done = true
				fn(cause)
			}
		}
		defer complete(ErrStopped)

		for v, err := range seq {
			if err != nil {
				complete(err)
				yield(v, err)
				return
			}
			if !yield(v, nil) {
				complete(ErrStopped)
				return
			}
		}
		complete(nil)
	}
}

// Count drains seq and returns how many elements it produced before the
// first error.
func Count[T any](seq iter.Seq2[T, error]) (int, error) {
	n := 0
	for _, err := range seq {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
