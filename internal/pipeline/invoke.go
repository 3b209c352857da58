package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/judgeforge/judgeforge/internal/outcome"
)

// InvokeReport is one testcase's verdict from running a submission
// against it, in the shape invoke's reporting layer wants.
type InvokeReport struct {
	TestName string
	Verdict  outcome.SolutionVerdict
	Reason   string
	Score    float64
}

// Invoke runs submissionArgv against every testcase in testNames, in
// order, stopping at the first non-accepted verdict unless stopOnFail
// is false.
func (o *Orchestrator) Invoke(ctx context.Context, submissionArgv []string, testNames []string, stopOnFail bool) []InvokeReport {
	var reports []InvokeReport
	for _, name := range testNames {
		report := o.invokeOne(ctx, submissionArgv, name)
		reports = append(reports, report)
		if stopOnFail && report.Verdict != outcome.Accepted {
			break
		}
	}
	return reports
}

// invokeOne runs a submission against a single testcase and, for batch
// problems, checks its output; interactive problems are already judged
// by the interactor inside SolutionStage.Run.
func (o *Orchestrator) invokeOne(ctx context.Context, submissionArgv []string, testName string) InvokeReport {
	eval := o.InvokeSolution.Run(ctx, submissionArgv, testName, false)
	if eval.OutputFile != "" {
		defer os.RemoveAll(filepath.Dir(eval.OutputFile))
	}

	if o.Interactive {
		return InvokeReport{TestName: testName, Verdict: eval.Verdict, Reason: eval.Reason, Score: eval.Score}
	}

	switch eval.Verdict {
	case outcome.RunSuccess:
		checkEval := o.Checker.Check(ctx, testName, eval.OutputFile)
		return InvokeReport{TestName: testName, Verdict: checkEval.Verdict, Reason: checkEval.Reason, Score: checkEval.Score}
	case outcome.NoFile:
		return InvokeReport{TestName: testName, Verdict: outcome.Wrong, Reason: "no output produced"}
	default:
		return InvokeReport{TestName: testName, Verdict: eval.Verdict, Reason: eval.Reason}
	}
}
