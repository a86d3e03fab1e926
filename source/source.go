// Package source reads simulated events from files and object stores.
//
// A Source gives indexed access to the events of one or more inputs. Events
// are built fresh on every Get; sources are not safe for concurrent use.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/decibelcooper/hgcalhistory"
	"github.com/decibelcooper/hgcalhistory/event"
)

type Source interface {
	// Len returns the number of events.
	Len() int
	// Get builds event i, 0 <= i < Len().
	Get(i int) (*event.Event, error)
	Close() error
}

// scanner is implemented by sources that read a range of events faster in
// one pass than by repeated Get calls.
type scanner interface {
	scan(ctx context.Context, beg, end int, fn func(i int, ev *event.Event) error) error
}

// Bounds returns the half-open range of event indices processed for the
// given skip and maxEvents settings. maxEvents caps the event count before
// skipping, so at most maxEvents-skip events are processed.
func Bounds(n, skip, maxEvents int) (beg, end int) {
	end = max(min(n, maxEvents), 0)
	beg = min(max(skip, 0), end)
	return beg, end
}

// Each calls fn for events [skip, min(maxEvents, src.Len())) in order. It
// stops at the first error returned by the source or fn, or when ctx is done.
func Each(ctx context.Context, src Source, skip, maxEvents int, fn func(i int, ev *event.Event) error) error {
	beg, end := Bounds(src.Len(), skip, maxEvents)
	return scanRange(ctx, src, beg, end, fn)
}

// scanRange calls fn for events [beg, end) of src, through its scanner when
// it has one.
func scanRange(ctx context.Context, src Source, beg, end int, fn func(i int, ev *event.Event) error) error {
	if s, ok := src.(scanner); ok {
		return s.scan(ctx, beg, end, fn)
	}
	for i := beg; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := src.Get(i)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if err := fn(i, ev); err != nil {
			return err
		}
	}
	return nil
}

func indexError(i, n int) error {
	return fmt.Errorf("event %d of %d: %w", i, n, hgcalhistory.ErrOutOfRange)
}

// Memory serves events from records held in memory.
type Memory struct {
	records []event.Records
	opts    []event.Option
}

func NewMemory(records []event.Records, opts ...event.Option) *Memory {
	return &Memory{records: records, opts: opts}
}

func (m *Memory) Len() int { return len(m.records) }

func (m *Memory) Get(i int) (*event.Event, error) {
	if i < 0 || i >= len(m.records) {
		return nil, indexError(i, len(m.records))
	}
	return event.New(m.records[i], m.opts...)
}

func (m *Memory) Close() error { return nil }

type concat struct {
	srcs []Source
	// ends[k] is the global index one past the last event of srcs[k].
	ends []int
}

// Concat chains sources so that their events are numbered consecutively.
// Closing the result closes every source.
func Concat(srcs ...Source) Source {
	c := &concat{srcs: srcs, ends: make([]int, len(srcs))}
	n := 0
	for k, s := range srcs {
		n += s.Len()
		c.ends[k] = n
	}
	return c
}

func (c *concat) Len() int {
	if len(c.ends) == 0 {
		return 0
	}
	return c.ends[len(c.ends)-1]
}

func (c *concat) Get(i int) (*event.Event, error) {
	if i < 0 || i >= c.Len() {
		return nil, indexError(i, c.Len())
	}
	k := sort.SearchInts(c.ends, i+1)
	beg := 0
	if k > 0 {
		beg = c.ends[k-1]
	}
	return c.srcs[k].Get(i - beg)
}

// scan walks the sub-sources overlapping [beg, end), so that each one is
// read in a single pass.
func (c *concat) scan(ctx context.Context, beg, end int, fn func(i int, ev *event.Event) error) error {
	first := 0
	for k, src := range c.srcs {
		last := c.ends[k]
		lo, hi := max(beg, first), min(end, last)
		if lo < hi {
			offset := first
			err := scanRange(ctx, src, lo-offset, hi-offset, func(i int, ev *event.Event) error {
				return fn(i+offset, ev)
			})
			if err != nil {
				return fmt.Errorf("input %d: %w", k, err)
			}
		}
		first = last
	}
	return nil
}

func (c *concat) Close() error {
	var errs []error
	for _, s := range c.srcs {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
