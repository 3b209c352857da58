package recipe

import (
	"fmt"
	"strings"
)

// testNameSentinel stands in for a testcase's own canonical name inside
// an @extra_file constant, since names aren't known until every line has
// been parsed. assignTestNames substitutes the real name back in once
// it is.
const testNameSentinel = "\x00TESTCASE_NAME\x00"

// extraFileValue is what @extra_file registers as the constant's value:
// the sentinel followed by the file's extension.
func extraFileValue(ext string) string {
	return testNameSentinel + ext
}

// assignTestNames computes "{testset-idx}_{testset-name}_{case-idx}"
// for every testcase, using the minimum zero-padding width that fits
// the actual number of testsets/testcases, then rewrites any sentinel
// references in each testcase's own pipeline arguments.
func assignTestNames(testsets []*Testset) {
	if len(testsets) == 0 {
		return
	}
	maxTestsetIdx := 0
	for _, ts := range testsets {
		if ts.Index > maxTestsetIdx {
			maxTestsetIdx = ts.Index
		}
	}
	testsetWidth := len(fmt.Sprintf("%d", maxTestsetIdx))

	for _, ts := range testsets {
		caseWidth := len(fmt.Sprintf("%d", len(ts.Tests)))
		for i, tc := range ts.Tests {
			name := fmt.Sprintf("%0*d_%s_%0*d", testsetWidth, ts.Index, ts.Name, caseWidth, i+1)
			tc.Name = name
			for _, cmd := range tc.Pipeline {
				for j, arg := range cmd.Args {
					if strings.Contains(arg, testNameSentinel) {
						cmd.Args[j] = strings.ReplaceAll(arg, testNameSentinel, name)
					}
				}
			}
		}
	}
}
