package research

import "errors"

var (
	// ErrInvalidConfig marks fatal configuration problems: unknown effort
	// levels, malformed provider references. No retry.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrReflectionInvariant is returned when the reflector reports
	// sufficiency but still proposes follow-up queries. The loop surfaces it
	// instead of silently correcting because masking it would hide a
	// planner/reflector contract bug.
	ErrReflectionInvariant = errors.New("reflector returned follow-up queries despite sufficiency")
)
