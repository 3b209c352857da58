package stage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/judgeforge/judgeforge/internal/judgeconfig"
	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/process"
	"github.com/judgeforge/judgeforge/internal/recipe"
)

// ValidationStage runs every applicable validator against a test's
// canonical input, stopping at the first failure.
type ValidationStage struct {
	Executables map[string][]string
	SandboxRoot string
	Testcases   string
	Logs        string
	InputExt    string
	Limits      process.Limits
	Convention  judgeconfig.Convention
}

func (v *ValidationStage) expectedExitCode() int {
	if v.Convention == judgeconfig.ICPC {
		return 42
	}
	return 0
}

// Run executes validators in the given order (testset, subtask,
// global) against testName's canonical input plus any extras.
func (v *ValidationStage) Run(ctx context.Context, testName string, extraExts []string, validators []recipe.Command) (outcome.Verdict, string) {
	if len(validators) == 0 {
		return outcome.SUCCESS, ""
	}

	sb, err := newSandbox(v.SandboxRoot, "val-"+testName)
	if err != nil {
		return outcome.FAILED, err.Error()
	}
	defer sb.close()

	inputSrc := filepath.Join(v.Testcases, testName+v.InputExt)
	inputDst := sb.path(testName + v.InputExt)
	if err := copyFile(inputSrc, inputDst); err != nil {
		return outcome.FAILED, fmt.Sprintf("copy input: %v", err)
	}
	for _, ext := range extraExts {
		src := filepath.Join(v.Testcases, testName+ext)
		if _, err := os.Stat(src); err == nil {
			if err := copyFile(src, sb.path(testName+ext)); err != nil {
				return outcome.FAILED, fmt.Sprintf("copy extra %s: %v", ext, err)
			}
		}
	}

	for i, cmd := range validators {
		argv, ok := v.Executables[cmd.Program]
		if !ok {
			return outcome.FAILED, fmt.Sprintf("validator %q has no compiled build output", cmd.Program)
		}
		argv = append(append([]string{}, argv...), cmd.Args...)

		stdin, err := os.Open(inputDst)
		if err != nil {
			return outcome.FAILED, err.Error()
		}
		stderrPath := sb.path(fmt.Sprintf("%s.validate.%d.err", testName, i))
		stderr, err := os.Create(stderrPath)
		if err != nil {
			stdin.Close()
			return outcome.FAILED, err.Error()
		}
		stdout, err := os.Create(sb.path(fmt.Sprintf("%s.validate.%d.out", testName, i)))
		if err != nil {
			stdin.Close()
			stderr.Close()
			return outcome.FAILED, err.Error()
		}

		p, err := process.Spawn(ctx, process.SpawnOpts{
			Argv:   argv,
			Stdin:  stdin,
			Stdout: stdout,
			Stderr: stderr,
			Limits: v.Limits,
		})
		stdin.Close()
		stdout.Close()
		if err != nil {
			stderr.Close()
			return outcome.FAILED, err.Error()
		}

		res, waitErr := p.Wait()
		stderr.Close()
		if waitErr != nil {
			return outcome.FAILED, waitErr.Error()
		}

		if res.IsRSSExceeded(v.Limits) {
			return outcome.CRASHED, fmt.Sprintf("%s: exceeded memory limit", argv[0])
		}
		if res.IsTimedOut(v.Limits) {
			return outcome.TIMEDOUT, fmt.Sprintf("%s: exceeded %.1fs", argv[0], v.Limits.CPUSeconds)
		}
		if res.Signaled() {
			return outcome.CRASHED, fmt.Sprintf("%s: signaled %s", argv[0], res.Signal)
		}
		if res.ExitCode != v.expectedExitCode() {
			raw, _ := os.ReadFile(stderrPath)
			reason := lastNonEmptyLine(string(raw))
			if reason == "" {
				reason = fmt.Sprintf("%s: exited %d, expected %d", argv[0], res.ExitCode, v.expectedExitCode())
			}
			return outcome.FAILED, reason
		}
	}

	return outcome.SUCCESS, ""
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
