package fusion

import "fmt"

// InvalidInputError reports an input record the engine refuses to fuse. The
// whole synthesis call fails; nothing partial is returned.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// FusionConflictError reports total contradiction between Dempster-Shafer
// evidence sources (conflict mass K == 1). It is recoverable: the caller may
// re-run with the DST strategy weight set to zero and the remaining weights
// renormalized.
type FusionConflictError struct {
	// Conflict is the conflict mass K of the failing combination.
	Conflict float64
	// Step is the 1-based index of the pairwise combination that failed.
	Step int
}

func (e *FusionConflictError) Error() string {
	return fmt.Sprintf("evidence fusion conflict: total contradiction (K=%.6f) at combination step %d", e.Conflict, e.Step)
}
