package hyper

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Future is the pending outcome of a call started with Go.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts fn in its own goroutine and returns a Future for its outcome.
// It is the fire-and-await form of any blocking operation:
//
//	f := hyper.Go(ctx, func(ctx context.Context) (hyper.Result, error) {
//	    return c.Data().Get(ctx, "movie-1")
//	})
//	res, err := f.Await(ctx)
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Await blocks until the call finishes or ctx is done. Giving up on ctx
// does not stop the call; cancel the context passed to Go for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed when the call finishes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Outcome is the individual result of one call in a batch.
type Outcome[T any] struct {
	Value T
	Err   error
}

// All runs calls concurrently and waits for every one of them. A failing
// call neither cancels nor blocks the others; outcomes keep input order.
// limit caps concurrency when positive.
func All[T any](ctx context.Context, limit int, calls ...func(context.Context) (T, error)) []Outcome[T] {
	out := make([]Outcome[T], len(calls))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, call := range calls {
		g.Go(func() error {
			v, err := call(ctx)
			out[i] = Outcome[T]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Each applies fn to every item concurrently, collecting per-item outcomes
// in input order. It suits batches such as removing or adding many documents.
func Each[In, T any](ctx context.Context, limit int, items []In, fn func(context.Context, In) (T, error)) []Outcome[T] {
	calls := make([]func(context.Context) (T, error), len(items))
	for i, item := range items {
		calls[i] = func(ctx context.Context) (T, error) { return fn(ctx, item) }
	}
	return All(ctx, limit, calls...)
}
