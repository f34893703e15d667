package engine

import "errors"

// Invalid-state errors (spec §7.2): "turn taken without encounter, unknown
// save type... raise immediately; these indicate an engine bug." The
// engine package panics with errNoEncounter and errUnknownSaveType rather
// than returning them, because they can only occur if a caller violates the
// package's own invariants; internal/api's Recovery middleware turns such a
// panic into a 500 internal-error response. errUnknownAreaShape is declared
// but never raised: numAreaTargets treats an unrecognized shape like a burst.

var (
	errNoEncounter      = errors.New("engine: creature has no encounter")
	errUnknownSaveType  = errors.New("engine: unknown save type")
	errUnknownAreaShape = errors.New("engine: unknown area shape")
)

// Construction errors (spec §7.1) are plain errors returned from
// descriptor.go's parsing functions; they fail only the specific
// sub-object (a malformed Strike/Spell), never panic.
