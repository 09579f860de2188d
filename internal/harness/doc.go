// Package harness runs conformance scenarios against the document engine.
//
// A scenario is a batch of raw wells, a run configuration and a list of
// assertions on the resulting document list. Each scenario runs in a fresh
// in-memory store with sequential document ids, so the document list is
// reproducible and can be compared against a golden file.
//
// # Scenario Format
//
//	name: standard_curve_reported
//	description: "Reported standard curve values with curve provenance"
//	config: |
//	  run: { experiment: "standard_curve" }
//	wells:
//	  - {id: A1, well: A1, sample: S1, target: T1, fields: {ct: "24", quantity: "100"}}
//	assertions:
//	  - type: document_count
//	    count: 12
//	  - type: document_value
//	    name: quantity mean
//	    value: 110
//	  - type: document_sources
//	    name: quantity
//	    features: [cycle threshold result, Y-intercept, Slope]
//
// # Assertion Types
//
//   - document_count: number of documents, or of documents named `name`
//   - document_value: value of the `index`th document named `name`
//   - document_sources: source features of the `index`th document named `name`
//   - document_order: first occurrences of `names` appear in this order
//   - no_document: no document named `name` was emitted
//   - omitted_count: number of root documents that were not computable
//   - memo_evaluations: builder `builder` was evaluated exactly `count` times
//
// A scenario with `expect_error` passes when conversion fails with that
// error code (MALFORMED_INPUT or GRAPH). Assertions are not evaluated then.
// Configuration errors are returned by Run.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/standard_curve.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
