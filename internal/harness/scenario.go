package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/qpcr"
)

// Scenario defines a conformance test scenario: one batch of raw wells,
// the run configuration, and the expected document list.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is CUE source with a top-level `run` struct.
	Config string `yaml:"config"`

	// Wells are the raw records of the batch, in import order.
	Wells []qpcr.RawRecord `yaml:"wells"`

	// ExpectError is the engine error code conversion must fail with.
	// Configuration errors are reported by Run, not matched here.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the resulting document list.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the document list or memo counters.
type Assertion struct {
	// Type selects the assertion; see the package documentation.
	Type string `yaml:"type"`

	// Name is a document name (document_* and no_document).
	Name string `yaml:"name,omitempty"`

	// Index selects among documents with the same name, in emission order.
	Index int `yaml:"index,omitempty"`

	// Value is the expected document value (document_value).
	Value *float64 `yaml:"value,omitempty"`

	// Tolerance is the allowed absolute difference for Value.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Features are the expected source features, in order (document_sources).
	Features []string `yaml:"features,omitempty"`

	// Names is the expected order of document names (document_order).
	Names []string `yaml:"names,omitempty"`

	// Builder is a builder identity (memo_evaluations).
	Builder string `yaml:"builder,omitempty"`

	// Count is the expected number (document_count, omitted_count,
	// memo_evaluations).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertDocumentCount   = "document_count"
	AssertDocumentValue   = "document_value"
	AssertDocumentSources = "document_sources"
	AssertDocumentOrder   = "document_order"
	AssertNoDocument      = "no_document"
	AssertOmittedCount    = "omitted_count"
	AssertMemoEvaluations = "memo_evaluations"
)

var errorCodes = map[string]bool{
	string(engine.ErrCodeMalformedInput): true,
	string(engine.ErrCodeGraph):          true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), s.Name, prev)
		}
		names[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\ `) {
		return fmt.Errorf("name %q must not contain spaces or path separators", s.Name)
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if strings.TrimSpace(s.Config) == "" {
		return fmt.Errorf("config is required")
	}

	if len(s.Wells) == 0 {
		return fmt.Errorf("wells list is required and must be non-empty")
	}

	for i, w := range s.Wells {
		if w.ID == "" {
			return fmt.Errorf("wells[%d]: id is required", i)
		}
	}

	if s.ExpectError != "" {
		if !errorCodes[s.ExpectError] {
			return fmt.Errorf("unknown expect_error code %q", s.ExpectError)
		}
		return nil
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Index < 0 {
		return fmt.Errorf("assertions[%d]: index must be non-negative", index)
	}
	if a.Count != nil && *a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
	}

	switch a.Type {
	case AssertDocumentCount, AssertOmittedCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
	case AssertDocumentValue:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for document_value", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for document_value", index)
		}
		if a.Tolerance < 0 {
			return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
		}
	case AssertDocumentSources:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for document_sources", index)
		}
		if len(a.Features) == 0 {
			return fmt.Errorf("assertions[%d]: features list is required for document_sources", index)
		}
	case AssertDocumentOrder:
		if len(a.Names) < 2 {
			return fmt.Errorf("assertions[%d]: names list needs at least two entries for document_order", index)
		}
	case AssertNoDocument:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for no_document", index)
		}
	case AssertMemoEvaluations:
		if a.Builder == "" {
			return fmt.Errorf("assertions[%d]: builder is required for memo_evaluations", index)
		}
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for memo_evaluations", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
