// Package pipeline provides composable, pull-based sequence operators.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, ForEach or All. Each stage pulls from the previous stage on demand,
// one value at a time, on the caller's goroutine.
//
// # Operators
//
//   - Map: transform each value
//   - FlatMap: transform each value into an iterator and concatenate them
//   - Filter / TryFilter: keep values matching a predicate
//   - Tap: side-effect without altering the value
//   - Reduce: accumulate all values into one result
//
// # Sources
//
// FromSlice, From, FromFunc and the raw iterators SliceIter, SeqIter,
// RangeIter and Empty.
//
// # Usage
//
//	src := pipeline.FromSlice([]int{1, 2, 3, 4, 5})
//	doubled := pipeline.Map(src, func(_ context.Context, n int) (int, error) {
//	    return n * 2, nil
//	})
//	big := pipeline.Filter(doubled, func(n int) bool { return n > 4 })
//	for v, err := range pipeline.All(ctx, big) {
//	    ...
//	}
package pipeline
