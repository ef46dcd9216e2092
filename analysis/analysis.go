// Package analysis holds definitions shared by the detection passes.
package analysis

import "errors"

// ErrInternalInvariant reports IR the analyses do not support (unknown
// opcodes, predicates or instruction variants). Encountering it means the
// IR producer and the analyses disagree, not that the analyzed program is
// wrong; the passes surface it to the caller instead of aborting the host.
var ErrInternalInvariant = errors.New("InternalInvariantViolated")
