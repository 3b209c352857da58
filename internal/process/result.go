package process

// Result is what a sandbox captures when it reaps one child: ru_utime +
// ru_stime, ru_maxrss (normalized to KiB), wall-clock elapsed, and
// (exit_code, exit_signal) derived from the wait status.
type Result struct {
	CPUSeconds  float64
	WallSeconds float64
	MaxRSSKiB   int64
	ExitCode    int
	// Signal is the terminating signal name ("SIGKILL", "SIGXFSZ", ...),
	// or "" if the process exited normally.
	Signal string
}

// Signaled reports whether the process was terminated by a signal.
func (r Result) Signaled() bool { return r.Signal != "" }

// IsCPUTimedOut reports cpu > time_limit.
func (r Result) IsCPUTimedOut(l Limits) bool {
	return l.CPUSeconds > 0 && r.CPUSeconds > l.CPUSeconds
}

// IsWallTimedOut reports wall > time_limit, tracked distinctly from a
// CPU timeout since a process can block without burning CPU time.
func (r Result) IsWallTimedOut(l Limits) bool {
	return l.CPUSeconds > 0 && r.WallSeconds > l.CPUSeconds
}

// IsTimedOut is the union is_cpu_timedout ∨ is_wall_timedout.
func (r Result) IsTimedOut(l Limits) bool {
	return r.IsCPUTimedOut(l) || r.IsWallTimedOut(l)
}

// IsRSSExceeded reports whether the peak resident set exceeded the
// configured memory limit.
func (r Result) IsRSSExceeded(l Limits) bool {
	return l.MemoryKiB > 0 && r.MaxRSSKiB > l.MemoryKiB
}

// IsOutputLimitExceeded canonicalizes "output limit exceeded" as the
// SIGXFSZ signal path. A legacy truncation-style or non-zero-exit
// detection exists in some judges but is not implemented here.
func (r Result) IsOutputLimitExceeded() bool {
	return r.Signal == "SIGXFSZ"
}
