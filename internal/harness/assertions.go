package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the document list to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Names    []string // Document names in emission order
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nDocuments:\n")
	for i, name := range e.Names {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, name)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertDocumentCount:
		return assertDocumentCount(r, a)
	case AssertDocumentValue:
		return assertDocumentValue(r, a)
	case AssertDocumentSources:
		return assertDocumentSources(r, a)
	case AssertDocumentOrder:
		return assertDocumentOrder(r, a)
	case AssertNoDocument:
		return assertNoDocument(r, a)
	case AssertOmittedCount:
		if r.Omitted != *a.Count {
			return r.fail(a, fmt.Sprintf("%d omitted roots", *a.Count), fmt.Sprintf("%d omitted roots", r.Omitted))
		}
		return nil
	case AssertMemoEvaluations:
		return assertMemoEvaluations(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (r *Result) fail(a Assertion, expected, actual string) *AssertionError {
	names := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		names[i] = fmt.Sprintf("%s %s = %g", d.ID, d.Name, d.Value)
	}
	return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Names: names}
}

func assertDocumentCount(r *Result, a Assertion) error {
	got := r.count(a.Name)
	if got == *a.Count {
		return nil
	}
	what := "documents"
	if a.Name != "" {
		what = fmt.Sprintf("%q documents", a.Name)
	}
	return r.fail(a, fmt.Sprintf("%d %s", *a.Count, what), fmt.Sprintf("%d %s", got, what))
}

func assertDocumentValue(r *Result, a Assertion) error {
	d, ok := r.find(a.Name, a.Index)
	if !ok {
		return r.fail(a, fmt.Sprintf("%q[%d] = %g", a.Name, a.Index, *a.Value), "no such document")
	}
	if math.Abs(d.Value-*a.Value) > a.Tolerance {
		return r.fail(a,
			fmt.Sprintf("%q[%d] = %g (±%g)", a.Name, a.Index, *a.Value, a.Tolerance),
			fmt.Sprintf("%q[%d] = %g", a.Name, a.Index, d.Value))
	}
	return nil
}

func assertDocumentSources(r *Result, a Assertion) error {
	d, ok := r.find(a.Name, a.Index)
	if !ok {
		return r.fail(a, fmt.Sprintf("%q[%d] with sources %v", a.Name, a.Index, a.Features), "no such document")
	}
	got := make([]string, len(d.Sources))
	for i, s := range d.Sources {
		got[i] = s.Feature
	}
	if !slices.Equal(got, a.Features) {
		return r.fail(a, fmt.Sprintf("sources %v", a.Features), fmt.Sprintf("sources %v", got))
	}
	return nil
}

// assertDocumentOrder checks that the first document of each name appears
// in the listed order.
func assertDocumentOrder(r *Result, a Assertion) error {
	first := make(map[string]int)
	for i, d := range r.Documents {
		if _, ok := first[d.Name]; !ok {
			first[d.Name] = i
		}
	}

	prev := -1
	for _, name := range a.Names {
		pos, ok := first[name]
		if !ok {
			return r.fail(a, fmt.Sprintf("order %v", a.Names), fmt.Sprintf("%q not emitted", name))
		}
		if pos < prev {
			return r.fail(a, fmt.Sprintf("order %v", a.Names), fmt.Sprintf("%q emitted at position %d, before %d", name, pos+1, prev+1))
		}
		prev = pos
	}
	return nil
}

func assertNoDocument(r *Result, a Assertion) error {
	if n := r.count(a.Name); n > 0 {
		return r.fail(a, fmt.Sprintf("no %q documents", a.Name), fmt.Sprintf("%d %q documents", n, a.Name))
	}
	return nil
}

func assertMemoEvaluations(r *Result, a Assertion) error {
	st := r.Memo[a.Builder]
	if st.Evaluations != *a.Count {
		return r.fail(a,
			fmt.Sprintf("builder %q evaluated %d times", a.Builder, *a.Count),
			fmt.Sprintf("evaluated %d times (%d lookups)", st.Evaluations, st.Lookups))
	}
	return nil
}
