package export_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/judgeforge/judgeforge/internal/export"
	"github.com/judgeforge/judgeforge/internal/judgeconfig"
)

func newProblem(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustWrite := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	mustWrite("testcases/1_samples_1.in", "1\n")
	mustWrite("testcases/1_samples_1.out", "1\n")
	mustWrite("testcases/2_secret_1.in", "2\n")
	mustWrite("testcases/2_secret_1.out", "2\n")
	mustWrite("checker/checker.cpp", "int main(){}\n")
	mustWrite("statement/statement.pdf", "%PDF-1.4\n")
	return dir
}

func TestICPCExportSplitsSamplesFromSecret(t *testing.T) {
	dir := newProblem(t)
	ctx := &judgeconfig.Context{
		ProblemDir: dir,
		Config: &judgeconfig.Config{
			ProblemName: "testproblem",
			InputExt:    ".in",
			OutputExt:   ".out",
			Type:        judgeconfig.Batch,
			Limits:      judgeconfig.Limits{TimeSeconds: 2, MemoryMiB: 256, OutputMiB: 8},
		},
	}

	exporter, err := export.ICPC(ctx)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "package")
	require.NoError(t, exporter.Export(out, false))

	assert.FileExists(t, filepath.Join(out, "problem.yaml"))
	assert.FileExists(t, filepath.Join(out, "data/sample/1_samples_1.in"))
	assert.FileExists(t, filepath.Join(out, "data/sample/1_samples_1.out"))
	assert.FileExists(t, filepath.Join(out, "data/secret/2_secret_1.in"))
	assert.FileExists(t, filepath.Join(out, "data/secret/2_secret_1.out"))
	assert.NoFileExists(t, filepath.Join(out, "data/secret/1_samples_1.in"))
	assert.FileExists(t, filepath.Join(out, "output_validators/checker/checker.cpp"))
	assert.FileExists(t, filepath.Join(out, "problem_statement/statement.pdf"))
}

func TestExportRefusesToOverwriteExistingPath(t *testing.T) {
	dir := newProblem(t)
	ctx := &judgeconfig.Context{
		ProblemDir: dir,
		Config: &judgeconfig.Config{
			ProblemName: "testproblem",
			InputExt:    ".in",
			OutputExt:   ".out",
			Type:        judgeconfig.Batch,
		},
	}
	exporter, err := export.ICPC(ctx)
	require.NoError(t, err)

	out := t.TempDir()
	err = exporter.Export(out, false)
	assert.Error(t, err)
}

func TestICPCExportAsZip(t *testing.T) {
	dir := newProblem(t)
	ctx := &judgeconfig.Context{
		ProblemDir: dir,
		Config: &judgeconfig.Config{
			ProblemName: "testproblem",
			InputExt:    ".in",
			OutputExt:   ".out",
			Type:        judgeconfig.Interactive,
		},
	}
	exporter, err := export.ICPC(ctx)
	require.NoError(t, err)

	zipPath := filepath.Join(t.TempDir(), "package.zip")
	require.NoError(t, exporter.Export(zipPath, true))
	info, err := os.Stat(zipPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
