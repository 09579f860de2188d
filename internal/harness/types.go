package harness

import (
	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/memo"
	"github.com/roach88/calcdocs/internal/qpcr"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	Experiment qpcr.ExperimentType `json:"experiment,omitempty"`

	// Documents is the flattened document list, dependencies first.
	Documents []graph.Document `json:"documents"`

	// Omitted counts root documents that were not computable.
	Omitted int `json:"omitted"`

	// ErrorCode is the code of the conversion error, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Memo holds memo counters per builder.
	Memo map[string]memo.Stats `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Documents: []graph.Document{},
		Errors:    []string{},
		Memo:      make(map[string]memo.Stats),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// find returns the index-th document named name.
func (r *Result) find(name string, index int) (graph.Document, bool) {
	seen := 0
	for _, d := range r.Documents {
		if d.Name != name {
			continue
		}
		if seen == index {
			return d, true
		}
		seen++
	}
	return graph.Document{}, false
}

// count returns the number of documents named name, or all documents when
// name is empty.
func (r *Result) count(name string) int {
	if name == "" {
		return len(r.Documents)
	}
	n := 0
	for _, d := range r.Documents {
		if d.Name == name {
			n++
		}
	}
	return n
}
