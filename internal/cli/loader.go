package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/calcdocs/internal/compiler"
	"github.com/roach88/calcdocs/internal/qpcr"
)

// BatchFile is a YAML batch of raw well records:
//
//	run: plate-0412
//	wells:
//	  - {id: A1, well: A1, sample: S1, target: T1, fields: {ct: "20.1"}}
type BatchFile struct {
	Run   string           `yaml:"run"`
	Wells []qpcr.RawRecord `yaml:"wells"`
}

// LoadError represents an error that occurred while loading a batch or a
// run configuration.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadBatchFile reads a YAML batch. A batch without a run id takes the file
// name without extension.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("batch file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading batch file: %v", err)}
	}

	var b BatchFile
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	if len(b.Wells) == 0 {
		return nil, &LoadError{Code: ErrCodeNoWells, Message: fmt.Sprintf("no wells in %s", path)}
	}
	if b.Run == "" {
		b.Run = trimExt(filepath.Base(path))
	}
	return &b, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

// LoadRunConfig compiles the `run` value of a CUE file or package directory.
func LoadRunConfig(path string) (*qpcr.Config, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config: %v", err)}
	}

	ctx := cuecontext.New()
	var value cue.Value

	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
		}
		inst := instances[0]
		if inst.Err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
		}
		value = ctx.BuildInstance(inst)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading config: %v", err)}
		}
		value = ctx.CompileBytes(data, cue.Filename(path))
	}
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	cfg, err := compiler.CompileRun(value.LookupPath(cue.ParsePath("run")))
	if err != nil {
		return nil, convertCompileError(err, "run")
	}
	return cfg, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeParseFailed  = "E002" // YAML batch parse error
	ErrCodeNoWells      = "E003" // Batch has no wells
	ErrCodeLoadFailed   = "E004" // CUE load failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeStoreFailed  = "E007" // Database error
	ErrCodeMissingInput = "E008" // Neither batch file nor stored run given
	ErrCodeWriteFailed  = "E009" // Metrics or output write error

	// Run configuration errors
	ErrCodeExperiment  = "E101" // Unknown or missing experiment type
	ErrCodeReference   = "E102" // Missing reference sample
	ErrCodeParallelism = "E103" // Parallelism out of range
	ErrCodeConfigField = "E104" // Field not allowed in run config

	// Conversion errors
	ErrCodeMalformedInput = "E301" // Raw value is not a finite number
	ErrCodeGraph          = "E302" // Node graph contract breach
	ErrCodeUnknownNode    = "E303" // Trace target name not built by experiment
	ErrCodeNotComputable  = "E304" // Traced document is not computable
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "experiment", "run":
		return ErrCodeExperiment
	case "reference_sample":
		return ErrCodeReference
	case "parallelism":
		return ErrCodeParallelism
	case "cue":
		return ErrCodeBuildFailed
	default:
		return ErrCodeConfigField
	}
}
