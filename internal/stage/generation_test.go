package stage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/process"
	"github.com/judgeforge/judgeforge/internal/recipe"
	"github.com/judgeforge/judgeforge/internal/stage"
)

// TestMain lets this test binary double as the sandboxed child, since
// every stage spawns through process.Spawn, which re-execs os.Executable().
func TestMain(m *testing.M) {
	process.RunSandboxChildIfRequested()
	os.Exit(m.Run())
}

func newTree(t *testing.T) (testcases, logs, sandbox, manual string) {
	t.Helper()
	root := t.TempDir()
	testcases = filepath.Join(root, "testcases")
	logs = filepath.Join(root, "logs")
	sandbox = filepath.Join(root, "sandbox")
	manual = filepath.Join(root, "manual")
	for _, d := range []string{testcases, logs, sandbox, manual} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}
	return
}

func TestGenerationStageSuccessWritesCanonicalInput(t *testing.T) {
	testcases, logs, sandbox, manual := newTree(t)
	gs := &stage.GenerationStage{
		Executables: map[string][]string{"gen": {"/bin/echo"}},
		ManualDir:   manual,
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Logs:        logs,
		InputExt:    ".in",
		OutputExt:   ".out",
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
	}

	tc := &recipe.Testcase{Name: "1_t1_1", Pipeline: []recipe.Command{{Program: "gen", Args: []string{"hello"}}}}
	result := gs.Run(context.Background(), tc, nil)

	require.Equal(t, outcome.SUCCESS, result.Verdict)
	data, err := os.ReadFile(filepath.Join(testcases, "1_t1_1.in"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestGenerationStageUnresolvedProgramFails(t *testing.T) {
	testcases, logs, sandbox, manual := newTree(t)
	gs := &stage.GenerationStage{
		Executables: map[string][]string{},
		ManualDir:   manual,
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Logs:        logs,
		InputExt:    ".in",
		OutputExt:   ".out",
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
	}
	tc := &recipe.Testcase{Name: "1_t1_1", Pipeline: []recipe.Command{{Program: "missing"}}}
	result := gs.Run(context.Background(), tc, nil)
	assert.Equal(t, outcome.FAILED, result.Verdict)
	assert.Contains(t, result.Reason, "no compiled build output")
}

func TestGenerationStageManualSingleFile(t *testing.T) {
	testcases, logs, sandbox, manual := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(manual, "a.txt"), []byte("42\n"), 0o644))

	gs := &stage.GenerationStage{
		Executables: map[string][]string{},
		ManualDir:   manual,
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Logs:        logs,
		InputExt:    ".in",
		OutputExt:   ".out",
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
	}
	tc := &recipe.Testcase{Name: "1_t1_1", Pipeline: []recipe.Command{{Program: "manual", Args: []string{"a.txt"}}}}
	result := gs.Run(context.Background(), tc, nil)

	require.Equal(t, outcome.SUCCESS, result.Verdict)
	assert.False(t, result.IsOutputForced)
	data, err := os.ReadFile(filepath.Join(testcases, "1_t1_1.in"))
	require.NoError(t, err)
	assert.Equal(t, "42\n", string(data))
}

func TestGenerationStageManualForcedOutput(t *testing.T) {
	testcases, logs, sandbox, manual := newTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(manual, "in.txt"), []byte("2 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(manual, "out.txt"), []byte("4\n"), 0o644))

	gs := &stage.GenerationStage{
		Executables: map[string][]string{},
		ManualDir:   manual,
		SandboxRoot: sandbox,
		Testcases:   testcases,
		Logs:        logs,
		InputExt:    ".in",
		OutputExt:   ".out",
		Limits:      process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
	}
	tc := &recipe.Testcase{Name: "1_t1_1", Pipeline: []recipe.Command{{Program: "manual", Args: []string{"in.txt", "out.txt"}}}}
	result := gs.Run(context.Background(), tc, nil)

	require.Equal(t, outcome.SUCCESS, result.Verdict)
	assert.True(t, result.IsOutputForced)
	in, err := os.ReadFile(filepath.Join(testcases, "1_t1_1.in"))
	require.NoError(t, err)
	assert.Equal(t, "2 2\n", string(in))
	out, err := os.ReadFile(filepath.Join(testcases, "1_t1_1.out"))
	require.NoError(t, err)
	assert.Equal(t, "4\n", string(out))
}
