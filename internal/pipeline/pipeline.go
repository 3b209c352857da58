// Package pipeline drives the per-test state machine: generation,
// input validation, answer generation, output validation, short-
// circuiting per the well-formedness invariant, then hashing every
// produced testcase file into testcases/hash.json.
package pipeline

import (
	"context"
	"path/filepath"

	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/recipe"
	"github.com/judgeforge/judgeforge/internal/stage"
)

// Orchestrator owns the four stages for the lifetime of one gen run.
type Orchestrator struct {
	Generation *stage.GenerationStage
	Validation *stage.ValidationStage
	// Solution runs the model solution at gen time, under trusted limits.
	Solution *stage.SolutionStage
	// InvokeSolution runs a contestant's submission at invoke time, under
	// the problem's real (tight) limits, distinct from Solution's.
	InvokeSolution *stage.SolutionStage
	Checker        *stage.Checker

	Recipe       *recipe.Recipe
	SolutionArgv []string
	OutputExt    string
	Testcases    string

	// CheckOnForced and CheckOnGenerated mirror the config's checker
	// re-validation policy for pre-baked and freshly-solved answers.
	CheckOnForced    bool
	CheckOnGenerated bool

	// Interactive problems adjudicate live against the interactor at
	// invoke time; there is no fixed reference output to produce ahead
	// of time unless the testcase forces one.
	Interactive bool
}

// validatorsFor collects a testset's applicable validators: its own
// testset-scoped validators, then every subtask that includes it
// contributes its own validators, then every global validator.
func (o *Orchestrator) validatorsFor(ts *recipe.Testset) []recipe.Command {
	validators := append([]recipe.Command{}, ts.Validators...)
	for _, st := range o.Recipe.Subtasks {
		for _, name := range st.TestsetNames() {
			if name == ts.Name {
				validators = append(validators, st.Validators...)
				break
			}
		}
	}
	validators = append(validators, o.Recipe.GlobalValidators...)
	return validators
}

// RunOne executes every stage for a single testcase and returns its
// completed, well-formed GenerationResult.
func (o *Orchestrator) RunOne(ctx context.Context, ts *recipe.Testset, tc *recipe.Testcase) *outcome.GenerationResult {
	result := outcome.NewGenerationResult(tc.Name)

	genRes := o.Generation.Run(ctx, tc, ts.ExtraFiles)
	result.SetInputGeneration(genRes.Verdict)
	result.IsOutputForced = genRes.IsOutputForced
	if genRes.Verdict != outcome.SUCCESS {
		result.Reason = genRes.Reason
		result.SetInputValidation(outcome.SKIPPED)
		result.SetOutputGeneration(outcome.SKIPPED)
		result.SetOutputValidation(outcome.SKIPPED)
		return result
	}

	validators := o.validatorsFor(ts)
	valVerdict, valReason := o.Validation.Run(ctx, tc.Name, ts.ExtraFiles, validators)
	result.SetInputValidation(valVerdict)
	if valVerdict != outcome.SUCCESS {
		if result.Reason == "" {
			result.Reason = valReason
		}
		result.SetOutputGeneration(outcome.SKIPPED)
		result.SetOutputValidation(outcome.SKIPPED)
		return result
	}

	outputVerdict, outputReason := o.runOutputGeneration(ctx, tc, genRes.IsOutputForced)
	result.SetOutputGeneration(outputVerdict)
	if outputReason != "" && result.Reason == "" {
		result.Reason = outputReason
	}

	outGenOk := outputVerdict == outcome.SUCCESS || outputVerdict == outcome.SKIPPED_SUCCESS
	if !outGenOk {
		result.SetOutputValidation(outcome.SKIPPED)
		return result
	}

	outValVerdict, outValReason := o.verifyAnswer(ctx, tc, genRes.IsOutputForced)
	result.SetOutputValidation(outValVerdict)
	if outValReason != "" && result.Reason == "" {
		result.Reason = outValReason
	}
	return result
}

// runOutputGeneration produces the canonical output: SKIPPED_SUCCESS for
// a forced answer (there is nothing to generate) or an interactive
// problem (the interactor adjudicates live at invoke time), otherwise
// the model solution's run verdict.
func (o *Orchestrator) runOutputGeneration(ctx context.Context, tc *recipe.Testcase, forced bool) (outcome.Verdict, string) {
	if forced {
		return outcome.SKIPPED_SUCCESS, ""
	}

	if o.Interactive {
		return outcome.SKIPPED_SUCCESS, ""
	}

	eval := o.Solution.Run(ctx, o.SolutionArgv, tc.Name, true)
	switch eval.Verdict {
	case outcome.RunSuccess:
		return outcome.SUCCESS, ""
	case outcome.NoFile:
		return outcome.FAILED, "solution produced no output file"
	case outcome.Timeout, outcome.TimeoutWall:
		return outcome.TIMEDOUT, eval.Reason
	case outcome.JudgeError:
		return outcome.FAILED, eval.Reason
	default:
		return outcome.CRASHED, eval.Reason
	}
}

// verifyAnswer optionally sanity-checks the canonical output (forced or
// solution-generated) against the built checker, honoring the config's
// re-check policy (CheckOnForced / CheckOnGenerated). This is the
// output_validation stage, distinct from producing the output itself.
func (o *Orchestrator) verifyAnswer(ctx context.Context, tc *recipe.Testcase, forced bool) (outcome.Verdict, string) {
	runCheck := forced && o.CheckOnForced || !forced && o.CheckOnGenerated
	if !runCheck || o.Checker == nil {
		return outcome.SKIPPED_SUCCESS, ""
	}

	answerPath := filepath.Join(o.Testcases, tc.Name+o.OutputExt)
	eval := o.Checker.Check(ctx, tc.Name, answerPath)
	switch eval.Verdict {
	case outcome.Accepted:
		return outcome.SUCCESS, ""
	case outcome.CheckerTimedOut:
		return outcome.TIMEDOUT, "answer sanity check timed out"
	case outcome.CheckerCrashed:
		return outcome.CRASHED, eval.Reason
	default:
		return outcome.FAILED, "answer rejected by checker: " + eval.Reason
	}
}
