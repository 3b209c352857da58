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
	"github.com/judgeforge/judgeforge/internal/stage"
)

func TestCheckerBuiltinAccepted(t *testing.T) {
	testcases, _, sandbox, _ := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(testcases, "1_t1_1.out"), []byte("42\n"), 0o644))

	outDir := t.TempDir()
	outputFile := filepath.Join(outDir, "solution.out")
	require.NoError(t, os.WriteFile(outputFile, []byte("42  \n"), 0o644))

	c := &stage.Checker{SandboxRoot: sandbox, Testcases: testcases, Convention: judgeconfig.ICPC}
	result := c.Check(context.Background(), "1_t1_1", outputFile)
	assert.Equal(t, outcome.Accepted, result.Verdict)
}

func TestCheckerBuiltinWrongProducesDiff(t *testing.T) {
	testcases, _, sandbox, _ := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(testcases, "1_t1_1.out"), []byte("42\n"), 0o644))

	outDir := t.TempDir()
	outputFile := filepath.Join(outDir, "solution.out")
	require.NoError(t, os.WriteFile(outputFile, []byte("43\n"), 0o644))

	c := &stage.Checker{SandboxRoot: sandbox, Testcases: testcases, Convention: judgeconfig.ICPC}
	result := c.Check(context.Background(), "1_t1_1", outputFile)
	assert.Equal(t, outcome.Wrong, result.Verdict)
	assert.NotEmpty(t, result.Reason)
}

func TestCheckerUserCheckerExitCode42IsAccepted(t *testing.T) {
	testcases, _, sandbox, _ := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(testcases, "1_t1_1.in"), []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(testcases, "1_t1_1.out"), []byte("x\n"), 0o644))

	outDir := t.TempDir()
	outputFile := filepath.Join(outDir, "solution.out")
	require.NoError(t, os.WriteFile(outputFile, []byte("x\n"), 0o644))

	c := &stage.Checker{
		Argv:        []string{"/bin/sh", "-c", "exit 42"},
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
		Convention:  judgeconfig.ICPC,
	}
	result := c.Check(context.Background(), "1_t1_1", outputFile)
	assert.Equal(t, outcome.Accepted, result.Verdict)
}
