package qpcr

import (
	"strings"

	"github.com/roach88/calcdocs/internal/engine"
	"github.com/roach88/calcdocs/internal/ir"
)

// ExperimentType selects the document iterator.
type ExperimentType string

const (
	StandardCurve         ExperimentType = "standard_curve"
	RelativeStandardCurve ExperimentType = "relative_standard_curve"
	ComparativeCt         ExperimentType = "comparative_ct"
	PresenceAbsence       ExperimentType = "presence_absence"
)

// ExperimentTypes lists the supported experiment types.
func ExperimentTypes() []ExperimentType {
	return []ExperimentType{StandardCurve, RelativeStandardCurve, ComparativeCt, PresenceAbsence}
}

// ParseExperimentType accepts the canonical identifier or the instrument
// spelling ("Relative Standard Curve", "Comparative CT", "Presence/Absence").
func ParseExperimentType(s string) (ExperimentType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(norm)
	for _, t := range ExperimentTypes() {
		if string(t) == norm {
			return t, nil
		}
	}
	return "", engine.NewUnknownExperiment(s)
}

// needsReferenceSample reports whether the experiment's iterator builds
// comparative documents.
func (t ExperimentType) needsReferenceSample() bool {
	return t == ComparativeCt || t == RelativeStandardCurve
}

// Config selects the experiment and its references.
type Config struct {
	Experiment ExperimentType

	// ReferenceSample is the calibrator sample of comparative documents.
	ReferenceSample string

	// ReferenceTarget is the endogenous control. nil means none; it is
	// distinct from an empty name.
	ReferenceTarget *string

	// Parallelism bounds how many (sample, target) groups are built at once.
	// Values <= 1 build sequentially.
	Parallelism int
}

// Validate checks the experiment type and required references.
func (c Config) Validate() error {
	_, err := c.resolve()
	return err
}

// resolve validates c and returns it with a canonical experiment type and
// normalized reference names.
func (c Config) resolve() (Config, error) {
	t, err := ParseExperimentType(string(c.Experiment))
	if err != nil {
		return Config{}, err
	}
	if t.needsReferenceSample() && strings.TrimSpace(c.ReferenceSample) == "" {
		return Config{}, engine.NewMissingReference("reference sample", string(t))
	}
	out := c.normalized()
	out.Experiment = t
	return out, nil
}

func (c Config) normalized() Config {
	out := c
	out.ReferenceSample = ir.NormalizeName(strings.TrimSpace(c.ReferenceSample))
	if c.ReferenceTarget != nil {
		t := ir.NormalizeName(strings.TrimSpace(*c.ReferenceTarget))
		out.ReferenceTarget = &t
	}
	return out
}

// isReferenceTarget reports whether target is the configured reference target.
func (c Config) isReferenceTarget(target string) bool {
	return c.ReferenceTarget != nil && *c.ReferenceTarget == target
}
