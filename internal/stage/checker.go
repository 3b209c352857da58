package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/judgeforge/judgeforge/internal/judgeconfig"
	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/process"
)

// Checker runs either an already-built user checker (Argv) or the
// built-in default, and parses its feedback.
type Checker struct {
	Argv        []string // nil selects the built-in default checker
	SandboxRoot string
	Testcases   string
	Limits      process.Limits
	Convention  judgeconfig.Convention
}

// Check invokes the checker as `<checker> input answer feedback-dir
// [extra-args] < solution-output` and classifies the result.
func (c *Checker) Check(ctx context.Context, testName, outputFile string) outcome.EvaluationResult {
	result := outcome.EvaluationResult{TestName: testName}

	inputPath := filepath.Join(c.Testcases, testName+".in")
	answerPath := filepath.Join(c.Testcases, testName+".out")

	if c.Argv == nil {
		return c.checkBuiltin(testName, inputPath, answerPath, outputFile)
	}

	sb, err := newSandbox(c.SandboxRoot, "check-"+testName)
	if err != nil {
		result.Verdict = outcome.CheckerCrashed
		result.Reason = err.Error()
		return result
	}
	defer sb.close()

	feedbackDir := sb.path("feedback")
	if err := os.MkdirAll(feedbackDir, 0o755); err != nil {
		result.Verdict = outcome.CheckerCrashed
		result.Reason = err.Error()
		return result
	}

	argv := append(append([]string{}, c.Argv...), inputPath, answerPath, feedbackDir)

	stdin, err := os.Open(outputFile)
	if err != nil {
		result.Verdict = outcome.CheckerCrashed
		result.Reason = err.Error()
		return result
	}
	defer stdin.Close()

	stdout, _ := os.Create(sb.path(testName + ".checker.out"))
	stderr, _ := os.Create(sb.path(testName + ".checker.err"))
	defer stdout.Close()
	defer stderr.Close()

	p, err := process.Spawn(ctx, process.SpawnOpts{
		Argv: argv, Stdin: stdin, Stdout: stdout, Stderr: stderr, Limits: c.Limits,
	})
	if err != nil {
		result.Verdict = outcome.CheckerCrashed
		result.Reason = err.Error()
		return result
	}

	res, waitErr := p.Wait()
	if waitErr != nil {
		result.Verdict = outcome.CheckerCrashed
		result.Reason = waitErr.Error()
		return result
	}

	if res.IsTimedOut(c.Limits) {
		result.Verdict = outcome.CheckerTimedOut
		return result
	}
	if res.Signaled() {
		result.Verdict = outcome.CheckerCrashed
		result.Reason = fmt.Sprintf("signaled %s", res.Signal)
		return result
	}

	reason := ""
	if raw, err := os.ReadFile(filepath.Join(feedbackDir, "judgemessage.txt")); err == nil {
		reason = firstLine(string(raw))
	}
	result.Reason = reason

	switch c.Convention {
	case judgeconfig.CMS:
		if raw, err := os.ReadFile(filepath.Join(feedbackDir, "score.txt")); err == nil {
			fmt.Sscanf(string(raw), "%f", &result.Score)
		}
		if res.ExitCode != 0 {
			result.Verdict = outcome.JudgeError
			return result
		}
		if result.Score > 0 {
			result.Verdict = outcome.Accepted
		} else {
			result.Verdict = outcome.Wrong
		}
	case judgeconfig.OldTIOJ, judgeconfig.NewTIOJ:
		// exit 0 means accepted, any other exit code is wrong.
		if res.ExitCode == 0 {
			result.Verdict = outcome.Accepted
		} else {
			result.Verdict = outcome.Wrong
		}
	default:
		// ICPC/testlib convention: exit 42 means accepted.
		if res.ExitCode == 42 {
			result.Verdict = outcome.Accepted
		} else {
			result.Verdict = outcome.Wrong
		}
	}
	return result
}

// checkBuiltin is the default checker: an exact byte-for-byte compare
// after trimming trailing whitespace per line, with a unified diff as
// the wrong-answer reason.
func (c *Checker) checkBuiltin(testName, inputPath, answerPath, outputFile string) outcome.EvaluationResult {
	result := outcome.EvaluationResult{TestName: testName}

	expected, err := os.ReadFile(answerPath)
	if err != nil {
		result.Verdict = outcome.CheckerCrashed
		result.Reason = err.Error()
		return result
	}
	actual, err := os.ReadFile(outputFile)
	if err != nil {
		result.Verdict = outcome.CheckerCrashed
		result.Reason = err.Error()
		return result
	}

	if normalizeWhitespace(string(expected)) == normalizeWhitespace(string(actual)) {
		result.Verdict = outcome.Accepted
		return result
	}

	edits := udiff.Strings(string(expected), string(actual))
	unified, err := udiff.ToUnified("expected", "actual", string(expected), edits, 3)
	if err == nil {
		result.Reason = unified
	}
	result.Verdict = outcome.Wrong
	return result
}

// normalizeWhitespace trims trailing whitespace from every line and
// drops trailing blank lines, so a checker's exact-compare path ignores
// the formatting noise contestants' solutions routinely introduce.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
