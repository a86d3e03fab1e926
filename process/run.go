// Package process runs per-event work on a pool of workers.
//
// One goroutine reads events from the source, which is not safe for
// concurrent use, and hands them to the workers. Workers never share
// accumulators: Run gives each worker its own state and returns all of them
// for the caller to merge, and Map delivers per-event results to a single
// sink in event order.
package process

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/decibelcooper/hgcalhistory/event"
	"github.com/decibelcooper/hgcalhistory/source"
)

type Options struct {
	Workers   int
	Skip      int
	MaxEvents int
	Logger    *slog.Logger
}

func (o Options) normalize() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.MaxEvents <= 0 {
		o.MaxEvents = int(^uint(0) >> 1)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

type job struct {
	i  int
	ev *event.Event
}

// produce sends the selected events of src on jobs and closes it.
func produce(ctx context.Context, src source.Source, opts Options, jobs chan<- job) error {
	defer close(jobs)
	return source.Each(ctx, src, opts.Skip, opts.MaxEvents, func(i int, ev *event.Event) error {
		opts.Logger.Debug(fmt.Sprintf("Reading event %d", i), "module", "process")
		select {
		case jobs <- job{i: i, ev: ev}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Run calls fn for every selected event of src. Each worker owns the state
// returned by one call of newState; the states are returned in worker order
// once all events are processed.
func Run[S any](ctx context.Context, src source.Source, opts Options,
	newState func() (S, error), fn func(state S, i int, ev *event.Event) error) ([]S, error) {
	opts = opts.normalize()

	states := make([]S, opts.Workers)
	for w := range states {
		s, err := newState()
		if err != nil {
			return nil, err
		}
		states[w] = s
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job, opts.Workers)
	g.Go(func() error { return produce(ctx, src, opts, jobs) })

	for w := range states {
		state := states[w]
		g.Go(func() error {
			for j := range jobs {
				if err := fn(state, j.i, j.ev); err != nil {
					return fmt.Errorf("event %d: %w", j.i, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}

type result[R any] struct {
	i int
	v R
}

// Map calls fn for every selected event of src on the worker pool and
// passes the results to sink, one at a time, in event order.
func Map[R any](ctx context.Context, src source.Source, opts Options,
	fn func(i int, ev *event.Event) (R, error), sink func(i int, r R) error) error {
	opts = opts.normalize()

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job, opts.Workers)
	results := make(chan result[R], opts.Workers)
	g.Go(func() error { return produce(ctx, src, opts, jobs) })

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				v, err := fn(j.i, j.ev)
				if err != nil {
					return fmt.Errorf("event %d: %w", j.i, err)
				}
				select {
				case results <- result[R]{i: j.i, v: v}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		next, _ := source.Bounds(src.Len(), opts.Skip, opts.MaxEvents)
		pending := make(map[int]R)
		for r := range results {
			pending[r.i] = r.v
			for {
				v, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if err := sink(next, v); err != nil {
					return err
				}
				next++
			}
		}
		return nil
	})

	return g.Wait()
}
