package keys

import (
	"fmt"
	"strings"
)

// SpeciesKey normalizes a configured species key or display name.
// Behavior: trims, lower-cases and replaces inner whitespace runs with
// underscores. Suitable for stable DB keys and URL parameters.
func SpeciesKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// ScanKey identifies the environment request of one round of one attempt
// of a run. A restart keeps the run id, so the attempt is part of the key.
func ScanKey(runID string, attempt, round int) string {
	return fmt.Sprintf("scan:%s:%d:%d", runID, attempt, round)
}

// EvaluateKey identifies the narration request of one round of one attempt.
func EvaluateKey(runID string, attempt, round int) string {
	return fmt.Sprintf("evaluate:%s:%d:%d", runID, attempt, round)
}
