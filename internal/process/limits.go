package process

import "time"

// Limits bounds one child's resource consumption, applied atomically
// before exec. The same type serves both "trusted step" limits
// (generators, validators, checkers, interactors) and the tight limits
// applied to a contestant solution; only the values differ.
type Limits struct {
	// CPUSeconds is the time_limit consulted by the verdict predicates.
	// The watchdog itself arms at CPUSeconds+1.0s of wall-clock (see
	// Limits.WallCeiling).
	CPUSeconds float64
	// MemoryKiB is stamped into RLIMIT_STACK on non-Darwin; on Darwin the
	// stack size is instead linked into the executable (see
	// internal/build). MemoryKiB is also the threshold is_rss_exceeded
	// compares ru_maxrss against.
	MemoryKiB int64
	// OutputBytes becomes RLIMIT_FSIZE. Zero means unlimited.
	OutputBytes int64
}

// WallCeiling is the hard wall-clock deadline the watchdog enforces:
// time_limit + 1.0s, a fixed grace window over the CPU-time limit.
func (l Limits) WallCeiling() time.Duration {
	return time.Duration(l.CPUSeconds*float64(time.Second)) + time.Second
}

// Unlimited is used for processes that should run under the caller's own
// ambient limits (never for untrusted code).
var Unlimited = Limits{CPUSeconds: 0, MemoryKiB: 0, OutputBytes: 0}
