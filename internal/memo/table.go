package memo

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/calcdocs/internal/ir"
)

// ErrClosed is returned by Do after the table has been discarded.
var ErrClosed = errors.New("memo table closed")

// Outcome classifies a stored builder result.
type Outcome string

const (
	OutcomeComputed      Outcome = "computed"
	OutcomeNotComputable Outcome = "not_computable"
	OutcomeError         Outcome = "error"
)

// BuilderFunc evaluates one builder call.
type BuilderFunc func() (ir.Result, error)

type entry struct {
	result ir.Result
	err    error
}

func (e *entry) outcome() Outcome {
	switch {
	case e.err != nil:
		return OutcomeError
	case e.result.OK():
		return OutcomeComputed
	default:
		return OutcomeNotComputable
	}
}

// Stats counts table activity for one builder (or all builders).
type Stats struct {
	Lookups       int
	Evaluations   int
	NotComputable int
	Errors        int
}

// Hits is the number of lookups answered without evaluating.
func (s Stats) Hits() int {
	return s.Lookups - s.Evaluations
}

// Table is the run-scoped memoization table.
type Table struct {
	mu      sync.Mutex
	entries map[string]*entry
	stats   map[string]*Stats
	closed  bool

	group   singleflight.Group
	metrics *Metrics
	logger  *slog.Logger

	// testHookMiss runs between a fast-path miss and the flight.
	testHookMiss func()
}

// Option configures a Table.
type Option func(*Table)

// WithMetrics records lookups and evaluations on m.
func WithMetrics(m *Metrics) Option {
	return func(t *Table) {
		t.metrics = m
	}
}

// WithLogger sets the logger for evaluation events (Debug level).
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		t.logger = l
	}
}

// New creates an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		entries: make(map[string]*entry),
		stats:   make(map[string]*Stats),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do returns the stored outcome for (builder, args), evaluating fn only on
// the first call for that key. Not-computable results and errors are stored
// like computed ones.
//
// fn may call Do for other keys (upstream builders). It must not request its
// own key; the builder dependency chain is acyclic.
func (t *Table) Do(builder string, args Args, fn BuilderFunc) (ir.Result, error) {
	key, err := Key(builder, args)
	if err != nil {
		return ir.Result{}, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ir.Result{}, ErrClosed
	}
	st := t.statsFor(builder)
	st.Lookups++
	if e, ok := t.entries[key]; ok {
		t.mu.Unlock()
		t.metrics.lookup(builder, true)
		return e.result, e.err
	}
	t.mu.Unlock()
	if t.testHookMiss != nil {
		t.testHookMiss()
	}

	// Only the caller whose closure runs fn counts a miss. Callers that
	// joined the in-flight call, or found the entry on the recheck, hit.
	evaluated := false
	v, err, _ := t.group.Do(key, func() (any, error) {
		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return nil, ErrClosed
		}
		if e, ok := t.entries[key]; ok {
			t.mu.Unlock()
			return e, nil
		}
		t.mu.Unlock()

		evaluated = true
		res, ferr := fn()
		e := &entry{result: res, err: ferr}

		t.mu.Lock()
		if !t.closed {
			t.entries[key] = e
		}
		st := t.statsFor(builder)
		st.Evaluations++
		switch e.outcome() {
		case OutcomeNotComputable:
			st.NotComputable++
		case OutcomeError:
			st.Errors++
		}
		t.mu.Unlock()

		t.metrics.evaluation(builder, e.outcome())
		t.logEvaluation(builder, key, e)
		return e, nil
	})
	if err != nil {
		return ir.Result{}, err
	}
	t.metrics.lookup(builder, !evaluated)

	e := v.(*entry)
	return e.result, e.err
}

func (t *Table) statsFor(builder string) *Stats {
	st, ok := t.stats[builder]
	if !ok {
		st = &Stats{}
		t.stats[builder] = st
	}
	return st
}

func (t *Table) logEvaluation(builder, key string, e *entry) {
	attrs := []any{"builder", builder, "key", key[:12], "outcome", e.outcome()}
	switch e.outcome() {
	case OutcomeComputed:
		n, _ := e.result.Node()
		attrs = append(attrs, "node_id", n.ID, "value", n.Value)
	case OutcomeNotComputable:
		attrs = append(attrs, "reason", e.result.Reason())
	case OutcomeError:
		attrs = append(attrs, "error", e.err)
	}
	t.logger.Debug("builder evaluated", attrs...)
}

// Stats returns the counters for one builder.
func (t *Table) Stats(builder string) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.stats[builder]; ok {
		return *st
	}
	return Stats{}
}

// TotalStats sums the counters of all builders.
func (t *Table) TotalStats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total Stats
	for _, st := range t.stats {
		total.Lookups += st.Lookups
		total.Evaluations += st.Evaluations
		total.NotComputable += st.NotComputable
		total.Errors += st.Errors
	}
	return total
}

// Builders returns the builder identities seen so far, sorted.
func (t *Table) Builders() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.stats))
	for name := range t.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored keys.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Close discards all stored outcomes. Later calls to Do return ErrClosed.
// Stats remain readable.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.entries = nil
}

// String summarises the table for logs.
func (t *Table) String() string {
	s := t.TotalStats()
	return fmt.Sprintf("memo(keys=%d lookups=%d evaluations=%d not_computable=%d errors=%d)",
		t.Len(), s.Lookups, s.Evaluations, s.NotComputable, s.Errors)
}
