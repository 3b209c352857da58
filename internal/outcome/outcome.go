// Package outcome defines the tagged verdicts produced by each pipeline
// stage and the aggregation rules that tie them into a single per-test
// result. These are local results, not judgeerr.Error: a stage failure
// here never aborts the run, it only marks one test.
package outcome

import "fmt"

// Verdict is the outcome of one stage's work on one test.
type Verdict string

const (
	// SUCCESS: the stage did everything it was asked to do.
	SUCCESS Verdict = "SUCCESS"
	// TIMEDOUT: a command exceeded its CPU or wall-clock limit.
	TIMEDOUT Verdict = "TIMEDOUT"
	// CRASHED: a command exited non-zero or was terminated by a signal.
	CRASHED Verdict = "CRASHED"
	// FAILED: an internal FS/spawn error, or (for validators) a
	// validator rejected the input.
	FAILED Verdict = "FAILED"
	// SKIPPED: the stage was not run because an earlier stage did not
	// succeed.
	SKIPPED Verdict = "SKIPPED"
	// SKIPPED_SUCCESS: the stage was deliberately not run and is
	// considered fine (e.g. a forced answer with checker re-validation
	// disabled).
	SKIPPED_SUCCESS Verdict = "SKIPPED_SUCCESS"
)

// Ok reports whether v represents either a genuine success or a
// deliberate, accepted skip.
func (v Verdict) Ok() bool {
	return v == SUCCESS || v == SKIPPED_SUCCESS
}

// GenerationResult is the per-test outcome of the gen pipeline.
type GenerationResult struct {
	TestName         string
	InputGeneration  Verdict
	InputValidation  Verdict
	OutputGeneration Verdict
	OutputValidation Verdict
	Reason           string
	IsOutputForced   bool

	set map[string]bool
}

// NewGenerationResult returns a result with every verdict unset (the
// zero Verdict value, "", which is distinct from any named verdict).
func NewGenerationResult(testName string) *GenerationResult {
	return &GenerationResult{TestName: testName, set: make(map[string]bool, 4)}
}

// setOnce enforces that a verdict is set at most once per field.
func (r *GenerationResult) setOnce(field string, dst *Verdict, v Verdict) {
	if r.set[field] {
		panic(fmt.Sprintf("outcome: %s already set for test %q", field, r.TestName))
	}
	r.set[field] = true
	*dst = v
}

func (r *GenerationResult) SetInputGeneration(v Verdict) {
	r.setOnce("input_generation", &r.InputGeneration, v)
}

func (r *GenerationResult) SetInputValidation(v Verdict) {
	r.setOnce("input_validation", &r.InputValidation, v)
}

func (r *GenerationResult) SetOutputGeneration(v Verdict) {
	r.setOnce("output_generation", &r.OutputGeneration, v)
}

func (r *GenerationResult) SetOutputValidation(v Verdict) {
	r.setOnce("output_validation", &r.OutputValidation, v)
}

// WellFormed checks the well-formedness invariant on a completed GenerationResult.
func (r *GenerationResult) WellFormed() error {
	if r.InputGeneration != SUCCESS {
		if r.InputValidation != SKIPPED || r.OutputGeneration != SKIPPED || r.OutputValidation != SKIPPED {
			return fmt.Errorf("outcome: %s: input_generation=%s requires all later stages SKIPPED", r.TestName, r.InputGeneration)
		}
		return nil
	}
	if r.InputValidation != SUCCESS {
		if r.OutputGeneration != SKIPPED {
			return fmt.Errorf("outcome: %s: input_validation=%s requires output_generation SKIPPED", r.TestName, r.InputValidation)
		}
	}
	genOk := r.OutputGeneration == SUCCESS || r.OutputGeneration == SKIPPED_SUCCESS
	valOk := r.InputValidation == SUCCESS
	if !genOk || !valOk {
		if r.OutputValidation != SKIPPED {
			return fmt.Errorf("outcome: %s: output_validation must be SKIPPED when output_generation=%s or input_validation=%s", r.TestName, r.OutputGeneration, r.InputValidation)
		}
	}
	return nil
}

// Accepted reports whether every required stage succeeded, i.e. whether
// this test's codename belongs in the testcase summary.
func (r *GenerationResult) Accepted() bool {
	return r.InputGeneration.Ok() && r.InputValidation.Ok() && r.OutputGeneration.Ok() && r.OutputValidation.Ok()
}

// SolutionVerdict is the outcome of one solution/interactor invocation.
type SolutionVerdict string

const (
	RunSuccess        SolutionVerdict = "RUN_SUCCESS"
	NoFile            SolutionVerdict = "NO_FILE"
	RunErrorMemory    SolutionVerdict = "RUNERROR_MEMORY"
	Timeout           SolutionVerdict = "TIMEOUT"
	TimeoutWall       SolutionVerdict = "TIMEOUT_WALL"
	OutputLimit       SolutionVerdict = "OUTPUT_LIMIT"
	RunErrorSignal    SolutionVerdict = "RUNERROR_SIGNAL"
	RunErrorExitCode  SolutionVerdict = "RUNERROR_EXITCODE"
	CheckerTimedOut   SolutionVerdict = "CHECKER_TIMEDOUT"
	CheckerCrashed    SolutionVerdict = "CHECKER_CRASHED"
	Accepted          SolutionVerdict = "ACCEPTED"
	Wrong             SolutionVerdict = "WRONG"
	JudgeError        SolutionVerdict = "JUDGE_ERROR"
)

// EvaluationResult is the per-invocation outcome used by invoke.
type EvaluationResult struct {
	TestName   string
	Verdict    SolutionVerdict
	CPUSeconds float64
	WallSeconds float64
	RSSKiB     int64
	ExitCode   int
	ExitSignal string
	// OutputFile is owned by the caller and deleted after checking, when
	// this is not a generation run.
	OutputFile string
	// Reason is the checker's judgemessage.txt first line, or a
	// human-readable explanation of a RUNERROR_* verdict.
	Reason string
	// Score is only meaningful under the CMS judge convention; it is the
	// zero value under ICPC/TIOJ conventions where credit is implied by
	// Verdict alone.
	Score float64
}
