package research

import "fmt"

// Effort is the user-chosen breadth/depth setting for a research turn.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// EffortProfile maps an effort level to loop parameters.
type EffortProfile struct {
	Level             Effort
	InitialQueryCount int
	MaxLoops          int
}

// effortProfiles is the authoritative table. Both columns are non-decreasing
// from low to high; TestEffortProfilesMonotonic pins that down.
var effortProfiles = map[Effort]EffortProfile{
	EffortLow:    {Level: EffortLow, InitialQueryCount: 1, MaxLoops: 1},
	EffortMedium: {Level: EffortMedium, InitialQueryCount: 3, MaxLoops: 3},
	EffortHigh:   {Level: EffortHigh, InitialQueryCount: 5, MaxLoops: 10},
}

// ProfileFor resolves an effort level. Unknown levels are rejected rather than
// defaulted so caller bugs surface immediately.
func ProfileFor(level Effort) (EffortProfile, error) {
	p, ok := effortProfiles[level]
	if !ok {
		return EffortProfile{}, fmt.Errorf("%w: unknown effort level %q", ErrInvalidConfig, level)
	}
	return p, nil
}
