package judgeconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgeforge/judgeforge/internal/judgeconfig"
	"github.com/judgeforge/judgeforge/internal/judgeerr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "judge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
problem_name: sum-of-two
problem_type: batch
judge_convention: icpc
answer_generation: solution
limits:
  time_sec: 2.0
  memory_mib: 256
  output_mib: 64
`)
	cfg, err := judgeconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sum-of-two", cfg.ProblemName)
	assert.Equal(t, judgeconfig.ICPC, cfg.Convention)
	assert.Equal(t, ".in", cfg.InputExt)
	assert.Equal(t, ".out", cfg.OutputExt)
	assert.Equal(t, 64, cfg.StackMiB)
}

func TestLoadRejectsUnknownConvention(t *testing.T) {
	path := writeConfig(t, `
problem_name: x
problem_type: batch
judge_convention: bogus
answer_generation: solution
limits:
  time_sec: 1.0
  memory_mib: 64
  output_mib: 16
`)
	_, err := judgeconfig.Load(path)
	require.Error(t, err)

	var je *judgeerr.Error
	require.ErrorAs(t, err, &je)
	assert.Equal(t, judgeerr.ConfigInvalid, je.Type)
}

func TestLoadRejectsMissingLimits(t *testing.T) {
	path := writeConfig(t, `
problem_name: x
problem_type: batch
judge_convention: icpc
answer_generation: solution
`)
	_, err := judgeconfig.Load(path)
	require.Error(t, err)
}

func TestLoadMissingFileIsConfigMissing(t *testing.T) {
	_, err := judgeconfig.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var je *judgeerr.Error
	require.ErrorAs(t, err, &je)
	assert.Equal(t, judgeerr.ConfigMissing, je.Type)
}
