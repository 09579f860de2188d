package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/ir"
	"github.com/roach88/calcdocs/internal/memo"
)

// Run is the scope of one conversion: arena, memo table, logger.
//
// Thread-safety: Build and NewNode are safe for concurrent use. Emitters
// obtained from a Run are not.
type Run struct {
	ID string

	graph  *graph.Graph
	memo   *memo.Table
	logger *slog.Logger
	closed atomic.Bool
}

type runConfig struct {
	id      string
	ids     graph.IDGenerator
	metrics *memo.Metrics
	logger  *slog.Logger
}

// Option configures a Run.
type Option func(*runConfig)

// WithRunID sets the run identifier. Default: a fresh UUIDv7.
func WithRunID(id string) Option {
	return func(c *runConfig) {
		c.id = id
	}
}

// WithIDGenerator sets the node ID generator. Tests pass a
// graph.SequentialGenerator for reproducible documents.
func WithIDGenerator(gen graph.IDGenerator) Option {
	return func(c *runConfig) {
		c.ids = gen
	}
}

// WithMetrics records memo activity on m.
func WithMetrics(m *memo.Metrics) Option {
	return func(c *runConfig) {
		c.metrics = m
	}
}

// WithLogger sets the run logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// NewRun creates a run with an empty arena and an empty memo table.
func NewRun(opts ...Option) *Run {
	cfg := runConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = newRunID()
	}

	logger := cfg.logger.With("run_id", cfg.id)

	var gopts []graph.Option
	if cfg.ids != nil {
		gopts = append(gopts, graph.WithIDGenerator(cfg.ids))
	}

	return &Run{
		ID:     cfg.id,
		graph:  graph.New(gopts...),
		memo:   memo.New(memo.WithMetrics(cfg.metrics), memo.WithLogger(logger)),
		logger: logger,
	}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Build evaluates fn at most once per (builder, args) within this run.
func (r *Run) Build(builder string, args memo.Args, fn memo.BuilderFunc) (ir.Result, error) {
	res, err := r.memo.Do(builder, args, fn)
	if err != nil {
		return ir.Result{}, err
	}
	if !res.OK() {
		r.logger.Debug("not computable", "builder", builder, "reason", res.Reason())
	}
	return res, nil
}

// NewNode constructs a node in the run's arena and returns it as a computed
// result. A NaN or infinite value yields a not-computable result instead of a
// node. Arena contract breaches come back as *GraphError.
func (r *Run) NewNode(name string, value float64, sources ...ir.DataSource) (ir.Result, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ir.NotComputable(fmt.Sprintf("%s is not finite (%v)", name, value)), nil
	}
	n, err := r.graph.NewNode(name, value, sources...)
	if err != nil {
		return ir.Result{}, &GraphError{Builder: name, Err: err}
	}
	return ir.Computed(n), nil
}

// Graph returns the run's arena.
func (r *Run) Graph() *graph.Graph {
	return r.graph
}

// Logger returns the run-scoped logger.
func (r *Run) Logger() *slog.Logger {
	return r.logger
}

// NewEmitter returns an emitter over the run's arena.
func (r *Run) NewEmitter() *graph.Emitter {
	return graph.NewEmitter(r.graph)
}

// Flatten returns root's dependency-ordered document list.
func (r *Run) Flatten(root *ir.Node) ([]*ir.Node, error) {
	nodes, err := r.graph.Flatten(root)
	if err != nil {
		return nil, &GraphError{Builder: root.Name, Err: err}
	}
	return nodes, nil
}

// Stats returns memo counters summed over all builders.
func (r *Run) Stats() memo.Stats {
	return r.memo.TotalStats()
}

// BuilderStats returns memo counters for one builder.
func (r *Run) BuilderStats(builder string) memo.Stats {
	return r.memo.Stats(builder)
}

// Builders lists the builder identities evaluated or looked up so far, sorted.
func (r *Run) Builders() []string {
	return r.memo.Builders()
}

// Close discards the memo table. Nodes already built remain readable.
func (r *Run) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("run %s: already closed", r.ID)
	}
	s := r.memo.TotalStats()
	r.logger.Debug("run closed",
		"nodes", r.graph.Len(),
		"lookups", s.Lookups,
		"evaluations", s.Evaluations,
		"not_computable", s.NotComputable)
	r.memo.Close()
	return nil
}
