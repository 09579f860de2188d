package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/ir"
)

// DocumentSnapshot captures the document list of a scenario execution.
// Values are formatted as strings so the snapshot serializes as canonical
// JSON.
type DocumentSnapshot struct {
	ScenarioName string
	Experiment   string
	Documents    []graph.Document
	Omitted      int
}

// formatValue renders a document value with 12 significant digits.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// toCanonicalMap converts a DocumentSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical rejects floats.
func (s *DocumentSnapshot) toCanonicalMap() map[string]any {
	docs := make([]any, len(s.Documents))
	for i, d := range s.Documents {
		sources := make([]any, len(d.Sources))
		for j, src := range d.Sources {
			sources[j] = map[string]any{
				"id":      src.ID,
				"feature": src.Feature,
				"kind":    src.Kind,
			}
		}
		docs[i] = map[string]any{
			"id":           d.ID,
			"name":         d.Name,
			"value":        formatValue(d.Value),
			"data_sources": sources,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"experiment":    s.Experiment,
		"documents":     docs,
		"omitted":       s.Omitted,
	}
}

// RunWithGolden executes a scenario and compares the document list against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the documents don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		for _, msg := range result.Errors {
			t.Error(msg)
		}
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's documents against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := DocumentSnapshot{
		ScenarioName: scenarioName,
		Experiment:   string(result.Experiment),
		Documents:    result.Documents,
		Omitted:      result.Omitted,
	}

	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
