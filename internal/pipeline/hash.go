package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// TestcaseHashes maps a canonical testcase filename (e.g. "001_t1_01.in")
// to the lowercase hex SHA-256 digest of its contents.
type TestcaseHashes map[string]string

// HashFile returns the hex SHA-256 digest of the file at path.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("pipeline: hash %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// WriteHashFile writes hashes as sorted-key, 4-space-indented JSON to path.
func WriteHashFile(path string, hashes TestcaseHashes) error {
	data, err := json.MarshalIndent(hashes, "", "    ")
	if err != nil {
		return fmt.Errorf("pipeline: marshal hashes: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pipeline: write %s: %w", path, err)
	}
	return nil
}

// ReadHashFile loads a previously written hash.json.
func ReadHashFile(path string) (TestcaseHashes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read %s: %w", path, err)
	}
	var hashes TestcaseHashes
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, fmt.Errorf("pipeline: parse %s: %w", path, err)
	}
	return hashes, nil
}

// HashDiff is the result of comparing a freshly computed hash set against
// a previously recorded one.
type HashDiff struct {
	Mismatched []MismatchedHash
	Missing    []string
	Extra      []string
}

// MismatchedHash records a testcase file whose content changed between
// the recorded and freshly computed hash sets.
type MismatchedHash struct {
	Filename string
	Official string
	Found    string
}

// Matches reports whether the two hash sets are identical.
func (d HashDiff) Matches() bool {
	return len(d.Mismatched) == 0 && len(d.Missing) == 0 && len(d.Extra) == 0
}

// DiffHashes compares official (previously recorded) hashes against
// current (freshly computed) ones, sorting every section by filename.
func DiffHashes(official, current TestcaseHashes) HashDiff {
	var diff HashDiff

	for filename, officialSum := range official {
		if currentSum, ok := current[filename]; ok {
			if currentSum != officialSum {
				diff.Mismatched = append(diff.Mismatched, MismatchedHash{
					Filename: filename,
					Official: officialSum,
					Found:    currentSum,
				})
			}
		} else {
			diff.Missing = append(diff.Missing, filename)
		}
	}
	for filename := range current {
		if _, ok := official[filename]; !ok {
			diff.Extra = append(diff.Extra, filename)
		}
	}

	sort.Slice(diff.Mismatched, func(i, j int) bool { return diff.Mismatched[i].Filename < diff.Mismatched[j].Filename })
	sort.Strings(diff.Missing)
	sort.Strings(diff.Extra)
	return diff
}
