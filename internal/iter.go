package internal

import (
	"iter"
)

// IterSeqConcat concatenates multiple iterators into a single iterator sequence.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// IterSeqCount returns the number of items in an iterator sequence.
func IterSeqCount[T any](seq iter.Seq[T]) (count int) {
	for range seq {
		count++
	}
	return
}

// IterSeqSum sums the result of a function over an iterator sequence.
func IterSeqSum[T any](seq iter.Seq[T], value func(T) int) (total int) {
	for item := range seq {
		total += value(item)
	}
	return
}
