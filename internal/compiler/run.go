package compiler

import (
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/qpcr"
)

//go:embed schema.cue
var schemaCUE string

var runFields = map[string]bool{
	"experiment":       true,
	"reference_sample": true,
	"reference_target": true,
	"parallelism":      true,
}

// CompileRun parses a CUE value into a run configuration.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is unified with the embedded #Run schema first, so enum and
// range violations are reported with the user's file position:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`run: { experiment: "comparative_ct", reference_sample: "S0" }`)
//	cfg, err := CompileRun(v.LookupPath(cue.ParsePath("run")))
func CompileRun(v cue.Value) (*qpcr.Config, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: "run", Message: "run configuration is required"}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err, v.Pos())
	}
	for iter.Next() {
		if name := iter.Selector().Unquoted(); !runFields[name] {
			return nil, &CompileError{Field: name, Message: "field not allowed", Pos: iter.Value().Pos()}
		}
	}

	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile run schema: %w", err)
	}
	u := schema.LookupPath(cue.ParsePath("#Run")).Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}

	cfg := &qpcr.Config{}

	experiment, err := u.LookupPath(cue.ParsePath("experiment")).String()
	if err != nil {
		return nil, formatCUEError(err, v.Pos())
	}
	if cfg.Experiment, err = qpcr.ParseExperimentType(experiment); err != nil {
		return nil, &CompileError{Field: "experiment", Message: err.Error(), Pos: v.Pos()}
	}

	if rs := u.LookupPath(cue.ParsePath("reference_sample")); rs.Exists() {
		if cfg.ReferenceSample, err = rs.String(); err != nil {
			return nil, formatCUEError(err, v.Pos())
		}
	}

	if rt := u.LookupPath(cue.ParsePath("reference_target")); rt.Exists() {
		target, err := rt.String()
		if err != nil {
			return nil, formatCUEError(err, v.Pos())
		}
		cfg.ReferenceTarget = &target
	}

	parallelism, err := u.LookupPath(cue.ParsePath("parallelism")).Int64()
	if err != nil {
		return nil, formatCUEError(err, v.Pos())
	}
	cfg.Parallelism = int(parallelism)

	if err := cfg.Validate(); err != nil {
		field := "run"
		if engine.IsMissingReference(err) {
			field = "reference_sample"
		}
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}

	return cfg, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsCompileError reports whether err carries a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// formatCUEError converts a CUE error into a CompileError. The field is the
// deepest run field named on the error path, or "cue" when none is. The
// position is the first one outside the embedded schema, then any reported
// position, then fallback.
func formatCUEError(err error, fallback token.Pos) error {
	if err == nil {
		return nil
	}

	ce := &CompileError{Field: "cue", Message: err.Error(), Pos: fallback}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return ce
	}
	first := errs[0]
	ce.Message = first.Error()

	path := cueerrors.Path(first)
	for i := len(path) - 1; i >= 0; i-- {
		if runFields[path[i]] {
			ce.Field = path[i]
			break
		}
	}

	positions := cueerrors.Positions(first)
	for _, pos := range positions {
		if pos.Filename() != "schema.cue" {
			ce.Pos = pos
			return ce
		}
	}
	if len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
