package stage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgeforge/judgeforge/internal/judgeconfig"
	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/process"
	"github.com/judgeforge/judgeforge/internal/recipe"
	"github.com/judgeforge/judgeforge/internal/stage"
)

func TestValidationStageICPCConventionExpects42(t *testing.T) {
	testcases, logs, sandbox, _ := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(testcases, "1_t1_1.in"), []byte("5\n"), 0o644))

	vs := &stage.ValidationStage{
		Executables: map[string][]string{"validator": {"/bin/sh", "-c", "exit 42"}},
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Logs:        logs,
		InputExt:    ".in",
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
		Convention:  judgeconfig.ICPC,
	}

	verdict, reason := vs.Run(context.Background(), "1_t1_1", nil, []recipe.Command{{Program: "validator"}})
	assert.Equal(t, outcome.SUCCESS, verdict)
	assert.Empty(t, reason)
}

func TestValidationStageNonICPCExpectsZero(t *testing.T) {
	testcases, logs, sandbox, _ := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(testcases, "1_t1_1.in"), []byte("5\n"), 0o644))

	vs := &stage.ValidationStage{
		Executables: map[string][]string{"validator": {"/bin/sh", "-c", "exit 0"}},
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Logs:        logs,
		InputExt:    ".in",
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
		Convention:  judgeconfig.CMS,
	}

	verdict, _ := vs.Run(context.Background(), "1_t1_1", nil, []recipe.Command{{Program: "validator"}})
	assert.Equal(t, outcome.SUCCESS, verdict)
}

func TestValidationStageFailureReportsLastStderrLine(t *testing.T) {
	testcases, logs, sandbox, _ := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(testcases, "1_t1_1.in"), []byte("5\n"), 0o644))

	vs := &stage.ValidationStage{
		Executables: map[string][]string{"validator": {"/bin/sh", "-c", "echo first >&2; echo N too large >&2; exit 1"}},
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Logs:        logs,
		InputExt:    ".in",
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
		Convention:  judgeconfig.ICPC,
	}

	verdict, reason := vs.Run(context.Background(), "1_t1_1", nil, []recipe.Command{{Program: "validator"}})
	assert.Equal(t, outcome.FAILED, verdict)
	assert.Equal(t, "N too large", reason)
}

func TestValidationStageShortCircuitsOnFirstFailure(t *testing.T) {
	testcases, logs, sandbox, _ := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(testcases, "1_t1_1.in"), []byte("5\n"), 0o644))

	vs := &stage.ValidationStage{
		Executables: map[string][]string{
			"first":  {"/bin/sh", "-c", "echo bad >&2; exit 1"},
			"second": {"/bin/sh", "-c", "exit 42"},
		},
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Logs:        logs,
		InputExt:    ".in",
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
		Convention:  judgeconfig.ICPC,
	}

	verdict, reason := vs.Run(context.Background(), "1_t1_1", nil, []recipe.Command{
		{Program: "first"}, {Program: "second"},
	})
	assert.Equal(t, outcome.FAILED, verdict)
	assert.Equal(t, "bad", reason)
}
