package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/judgeforge/judgeforge/internal/outcome"
)

// TestReport pairs a completed GenerationResult with the testset it
// belongs to, for callers that need to report per-test progress.
type TestReport struct {
	TestsetName string
	Result      *outcome.GenerationResult
}

// Run executes every testset's testcases in declaration order and hashes
// every accepted testcase's files into testcases/hash.json (or, when
// verifyHash is true, diffs the freshly computed hashes against the
// recorded ones instead of overwriting them). It does not write
// testcases/summary; callers do that with WriteSummary.
func (o *Orchestrator) Run(ctx context.Context, verifyHash bool) ([]TestReport, HashDiff, error) {
	var reports []TestReport
	hashes := make(TestcaseHashes)

	for _, ts := range o.Recipe.Testsets {
		for _, tc := range ts.Tests {
			result := o.RunOne(ctx, ts, tc)
			if err := result.WellFormed(); err != nil {
				return reports, HashDiff{}, err
			}
			reports = append(reports, TestReport{TestsetName: ts.Name, Result: result})

			if !result.Accepted() {
				continue
			}
			if err := o.hashTestcase(tc.Name, ts.ExtraFiles, hashes); err != nil {
				return reports, HashDiff{}, err
			}
		}
	}

	hashPath := filepath.Join(o.Testcases, "hash.json")
	if verifyHash {
		official, err := ReadHashFile(hashPath)
		if err != nil {
			return reports, HashDiff{}, err
		}
		return reports, DiffHashes(official, hashes), nil
	}

	if err := WriteHashFile(hashPath, hashes); err != nil {
		return reports, HashDiff{}, err
	}
	return reports, HashDiff{}, nil
}

// hashTestcase hashes a testcase's canonical input, output, and any
// testset-declared extra files into hashes.
func (o *Orchestrator) hashTestcase(testName string, extraExts []string, hashes TestcaseHashes) error {
	inputExt := o.Generation.InputExt
	exts := append([]string{inputExt, o.OutputExt}, extraExts...)
	for _, ext := range exts {
		name := testName + ext
		path := filepath.Join(o.Testcases, name)
		sum, err := HashFile(path)
		if err != nil {
			return err
		}
		hashes[name] = sum
	}
	return nil
}

// WriteSummary appends every accepted test's codename, one per line, to
// testcases/summary, overwriting any previous contents.
func WriteSummary(testcasesDir string, reports []TestReport) error {
	path := filepath.Join(testcasesDir, "summary")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, r := range reports {
		if !r.Result.Accepted() {
			continue
		}
		if _, err := f.WriteString(r.Result.TestName + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// ReadSummary loads testcases/summary, the codenames of every testcase
// that passed its last gen run (the only ones invoke should be run
// against).
func ReadSummary(testcasesDir string) ([]string, error) {
	path := filepath.Join(testcasesDir, "summary")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read %s: %w (run gen first)", path, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
