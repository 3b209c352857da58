package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/process"
)

// SolutionStage runs a submission, either batch (plain stdio) or
// interactive (paired pipes with an interactor), and resolves the
// common verdict-precedence table afterward.
type SolutionStage struct {
	SandboxRoot string
	Testcases   string
	Logs        string
	InputExt    string
	OutputExt   string
	// Limits governs the program under test: the model solution at gen
	// time, or a contestant's submission at invoke time.
	Limits      process.Limits
	Interactive bool
	InteractorArgv []string
	// InteractorLimits governs the judge-owned interactor, always the
	// trusted (generous) limits regardless of what Limits is set to for
	// the program under test.
	InteractorLimits process.Limits
}

// Run executes solutionArgv against testName's canonical input. When
// IsGeneration is true, a successful batch run's output is installed
// into the testcases directory instead of being left for a checker to
// read.
func (s *SolutionStage) Run(ctx context.Context, solutionArgv []string, testName string, isGeneration bool) outcome.EvaluationResult {
	if s.Interactive {
		return s.runInteractive(ctx, solutionArgv, testName)
	}
	return s.runBatch(ctx, solutionArgv, testName, isGeneration)
}

func (s *SolutionStage) runBatch(ctx context.Context, solutionArgv []string, testName string, isGeneration bool) outcome.EvaluationResult {
	sb, err := newSandbox(s.SandboxRoot, "sol-"+testName)
	if err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}
	// Left to the caller when a batch run leaves result.OutputFile
	// pointing inside the sandbox (the invoke path): it removes the
	// file and the now-empty sandbox once the checker has read it.
	closeSandbox := true
	defer func() {
		if closeSandbox {
			sb.close()
		}
	}()

	inputPath := filepath.Join(s.Testcases, testName+s.InputExt)
	stdin, err := os.Open(inputPath)
	if err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}
	defer stdin.Close()

	outputPath := sb.path(testName + s.OutputExt)
	stdout, err := os.Create(outputPath)
	if err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}
	stderrPath := filepath.Join(s.Logs, testName+".run.err")
	stderr, err := os.Create(stderrPath)
	if err != nil {
		stdout.Close()
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}

	p, err := process.Spawn(ctx, process.SpawnOpts{
		Argv:   solutionArgv,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Limits: s.Limits,
	})
	stdout.Close()
	stderr.Close()
	if err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}

	res, waitErr := p.Wait()
	result := resultFromProcess(testName, res, s.Limits)
	if waitErr != nil {
		result.Verdict = outcome.JudgeError
		result.Reason = waitErr.Error()
		return result
	}
	if result.Verdict != outcome.RunSuccess {
		return result
	}

	if _, err := os.Stat(outputPath); err != nil {
		result.Verdict = outcome.NoFile
		return result
	}

	if isGeneration {
		if err := moveFile(outputPath, filepath.Join(s.Testcases, testName+s.OutputExt)); err != nil {
			result.Verdict = outcome.JudgeError
			result.Reason = err.Error()
		}
	} else {
		result.OutputFile = outputPath
		closeSandbox = false
	}
	return result
}

func (s *SolutionStage) runInteractive(ctx context.Context, solutionArgv []string, testName string) outcome.EvaluationResult {
	sb, err := newSandbox(s.SandboxRoot, "sol-"+testName)
	if err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}
	defer sb.close()

	solOut, interIn, err := os.Pipe()
	if err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}
	interOut, solIn, err := os.Pipe()
	if err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}

	feedbackDir := sb.path("feedback")
	if err := os.MkdirAll(feedbackDir, 0o755); err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}

	inputPath := filepath.Join(s.Testcases, testName+s.InputExt)
	answerPath := filepath.Join(s.Testcases, testName+s.OutputExt)
	interArgv := append(append([]string{}, s.InteractorArgv...), inputPath, answerPath, feedbackDir)

	solErr, _ := os.Create(filepath.Join(s.Logs, testName+".run.err"))
	interErr, _ := os.Create(sb.path(testName + ".interactor.err"))
	defer solErr.Close()
	defer interErr.Close()

	group := process.NewGroup()
	if _, err := group.Spawn(ctx, process.SpawnOpts{
		Argv: solutionArgv, Stdin: interOut, Stdout: solOut, Stderr: solErr,
		Limits: s.Limits, IgnoreSIGPIPE: true,
	}); err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}
	if _, err := group.Spawn(ctx, process.SpawnOpts{
		Argv: interArgv, Stdin: solIn, Stdout: interIn, Stderr: interErr,
		Limits: s.InteractorLimits, IgnoreSIGPIPE: true,
	}); err != nil {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: err.Error()}
	}
	solOut.Close()
	solIn.Close()
	interOut.Close()
	interIn.Close()

	results, waitErr := group.Wait(ctx)
	if waitErr != nil || len(results) != 2 {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.JudgeError, Reason: fmt.Sprintf("wait: %v", waitErr)}
	}
	solRes, interRes := results[0], results[1]

	// The solution's own verdict (memory/CPU/wall/signal/exit) takes
	// precedence: if it was killed for exceeding its own limits, that is
	// the reported outcome even though a blocked interactor may also be
	// sitting at its own timeout.
	result := resultFromProcess(testName, solRes, s.Limits)
	if result.Verdict != outcome.RunSuccess {
		return result
	}

	if interRes.IsTimedOut(s.InteractorLimits) {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.CheckerTimedOut}
	}
	if interRes.Signaled() {
		return outcome.EvaluationResult{TestName: testName, Verdict: outcome.CheckerCrashed, Reason: fmt.Sprintf("interactor signaled %s", interRes.Signal)}
	}

	msgPath := filepath.Join(feedbackDir, "judgemessage.txt")
	reason := ""
	if raw, err := os.ReadFile(msgPath); err == nil {
		reason = firstLine(string(raw))
	}
	if interRes.ExitCode == 42 {
		result.Verdict = outcome.Accepted
	} else {
		result.Verdict = outcome.Wrong
	}
	result.Reason = reason
	return result
}

// resultFromProcess applies the common verdict-precedence table to one
// process.Result: memory, then CPU timeout, then wall timeout, then
// SIGXFSZ, then SIGXCPU (treated as a timeout fallback), then any other
// signal, then a non-zero exit, and finally success.
func resultFromProcess(testName string, res process.Result, limits process.Limits) outcome.EvaluationResult {
	out := outcome.EvaluationResult{
		TestName:    testName,
		CPUSeconds:  res.CPUSeconds,
		WallSeconds: res.WallSeconds,
		RSSKiB:      res.MaxRSSKiB,
		ExitCode:    res.ExitCode,
		ExitSignal:  res.Signal,
	}

	switch {
	case res.IsRSSExceeded(limits):
		out.Verdict = outcome.RunErrorMemory
	case res.IsCPUTimedOut(limits):
		out.Verdict = outcome.Timeout
	case res.IsWallTimedOut(limits):
		out.Verdict = outcome.TimeoutWall
	case res.IsOutputLimitExceeded():
		out.Verdict = outcome.OutputLimit
	case res.Signal == "SIGXCPU":
		out.Verdict = outcome.Timeout
	case res.Signaled():
		out.Verdict = outcome.RunErrorSignal
		out.Reason = fmt.Sprintf("signaled %s", res.Signal)
	case res.ExitCode != 0:
		out.Verdict = outcome.RunErrorExitCode
		out.Reason = fmt.Sprintf("exited %d", res.ExitCode)
	default:
		out.Verdict = outcome.RunSuccess
	}
	return out
}
