package stage

import (
	"context"
	"fmt"
	"os"

	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/process"
)

// runChain spawns argvs as a shell-style pipeline: stdin of the first
// command is closed, stdout of the last is redirected to finalOutput,
// and every intermediate stdout/stdin pair is an anonymous pipe. Each
// command's stderr is captured to "{testName}.{kind}[.{i}].err" under
// sb. It waits for every child and classifies the batch into a single
// Verdict plus a human-readable reason naming the first offending
// command.
func runChain(ctx context.Context, argvs [][]string, sb *sandbox, limits process.Limits, testName, kind, finalOutput string) (outcome.Verdict, string, error) {
	n := len(argvs)
	if n == 0 {
		return outcome.FAILED, "", fmt.Errorf("empty command pipeline")
	}

	stdout, err := os.Create(finalOutput)
	if err != nil {
		return outcome.FAILED, "", err
	}
	defer stdout.Close()

	stdins := make([]*os.File, n)
	stdouts := make([]*os.File, n)
	stdouts[n-1] = stdout

	var pipeReadEnds []*os.File
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			return outcome.FAILED, "", err
		}
		stdouts[i] = w
		stdins[i+1] = r
		pipeReadEnds = append(pipeReadEnds, r)
	}
	defer func() {
		for _, f := range pipeReadEnds {
			f.Close()
		}
	}()

	group := process.NewGroup()
	for i, argv := range argvs {
		errLogName := fmt.Sprintf("%s.%s.err", testName, kind)
		if n > 1 {
			errLogName = fmt.Sprintf("%s.%s.%d.err", testName, kind, i)
		}
		errLog, err := os.Create(sb.path(errLogName))
		if err != nil {
			return outcome.FAILED, "", err
		}
		defer errLog.Close()

		if _, err := group.Spawn(ctx, process.SpawnOpts{
			Argv:   argv,
			Stdin:  stdins[i],
			Stdout: stdouts[i],
			Stderr: errLog,
			Limits: limits,
		}); err != nil {
			return outcome.FAILED, "", fmt.Errorf("spawn %s: %w", argv[0], err)
		}

		if stdins[i] != nil {
			stdins[i].Close()
		}
		if i < n-1 {
			stdouts[i].Close()
		}
	}

	results, waitErr := group.Wait(ctx)
	if waitErr != nil {
		return outcome.FAILED, waitErr.Error(), nil
	}

	for i, r := range results {
		if r.IsRSSExceeded(limits) {
			return outcome.CRASHED, fmt.Sprintf("%s: exceeded memory limit", argvs[i][0]), nil
		}
	}
	for i, r := range results {
		if r.IsTimedOut(limits) {
			return outcome.TIMEDOUT, fmt.Sprintf("%s: exceeded %.1fs (wall %.1fs)", argvs[i][0], limits.CPUSeconds, r.WallSeconds), nil
		}
	}
	for i, r := range results {
		if r.Signaled() {
			if r.Signal == "SIGXCPU" {
				return outcome.TIMEDOUT, fmt.Sprintf("%s: CPU limit signal", argvs[i][0]), nil
			}
			return outcome.CRASHED, fmt.Sprintf("%s: signaled %s", argvs[i][0], r.Signal), nil
		}
	}
	for i, r := range results {
		if r.ExitCode != 0 {
			return outcome.CRASHED, fmt.Sprintf("%s: exited %d", argvs[i][0], r.ExitCode), nil
		}
	}
	return outcome.SUCCESS, "", nil
}
