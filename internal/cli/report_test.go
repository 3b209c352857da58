package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/judgeforge/judgeforge/internal/cli"
	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/pipeline"
)

func TestVerdictTagNoColorIsFixedWidthPlainText(t *testing.T) {
	var buf bytes.Buffer
	r := cli.NewReporter(&buf, true)
	assert.Equal(t, "[OK  ]", r.VerdictTag(outcome.SUCCESS))
	assert.Equal(t, "[FAIL]", r.VerdictTag(outcome.FAILED))
	assert.Equal(t, "[RTE ]", r.VerdictTag(outcome.CRASHED))
	assert.Equal(t, "[TLE ]", r.VerdictTag(outcome.TIMEDOUT))
	assert.Equal(t, "[SKIP]", r.VerdictTag(outcome.SKIPPED))
	assert.Equal(t, "[SKIP]", r.VerdictTag(outcome.SKIPPED_SUCCESS))
}

func TestPrintTestIncludesReasonOnlyWhenRequested(t *testing.T) {
	var buf bytes.Buffer
	r := cli.NewReporter(&buf, true)
	r.PrintTest("001_a", outcome.SUCCESS, outcome.SUCCESS, outcome.FAILED, outcome.SKIPPED, "bad output", false)
	assert.NotContains(t, buf.String(), "bad output")

	buf.Reset()
	r.PrintTest("001_a", outcome.SUCCESS, outcome.SUCCESS, outcome.FAILED, outcome.SKIPPED, "bad output", true)
	assert.Contains(t, buf.String(), "bad output")
}

func TestPrintHashDiffReportsMismatchesMissingAndExtra(t *testing.T) {
	var buf bytes.Buffer
	r := cli.NewReporter(&buf, true)
	diff := pipeline.HashDiff{
		Mismatched: []pipeline.MismatchedHash{{Filename: "001_a.out", Official: "aa", Found: "bb"}},
		Missing:    []string{"002_a.in"},
		Extra:      []string{"003_a.in"},
	}
	r.PrintHashDiff(diff)
	out := buf.String()
	assert.Contains(t, out, "001_a.out")
	assert.Contains(t, out, "002_a.in")
	assert.Contains(t, out, "003_a.in")
}

func TestPrintHashDiffReportsMatch(t *testing.T) {
	var buf bytes.Buffer
	r := cli.NewReporter(&buf, true)
	r.PrintHashDiff(pipeline.HashDiff{})
	assert.Contains(t, buf.String(), "Hash matches!")
}
