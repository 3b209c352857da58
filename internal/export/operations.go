package export

import (
	"os"
	"path/filepath"
	"regexp"
)

// CopyOperation copies one file from the problem directory into the
// package at targetPath, skipping silently when the source is absent
// (a problem need not have every optional asset).
type CopyOperation struct {
	ProblemDir string
	SourcePath string
	TargetPath string
}

func (c CopyOperation) Name() string { return c.TargetPath }

func (c CopyOperation) Execute(outputDir string) error {
	src := filepath.Join(c.ProblemDir, c.SourcePath)
	if _, err := os.Stat(src); err != nil {
		return nil
	}
	return copyFile(src, filepath.Join(outputDir, c.TargetPath))
}

// RegexCopyOperation walks ProblemDir and copies every file whose path
// relative to it matches Pattern into TargetDir, under Rename's result
// (or its own basename, when Rename is nil).
type RegexCopyOperation struct {
	ProblemDir string
	Pattern    *regexp.Regexp
	// Exclude, when set, skips any path Pattern would otherwise match.
	Exclude   *regexp.Regexp
	TargetDir string
	Rename    func(relPath string) string
}

func (r RegexCopyOperation) Name() string {
	return r.TargetDir + "/ (" + r.Pattern.String() + ")"
}

func (r RegexCopyOperation) Execute(outputDir string) error {
	return filepath.Walk(r.ProblemDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(r.ProblemDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !r.Pattern.MatchString(rel) {
			return nil
		}
		if r.Exclude != nil && r.Exclude.MatchString(rel) {
			return nil
		}
		name := filepath.Base(rel)
		if r.Rename != nil {
			name = r.Rename(rel)
		}
		return copyFile(path, filepath.Join(outputDir, r.TargetDir, name))
	})
}

// WriteFileOperation writes pre-built content to TargetPath, used for
// generated package metadata (e.g. a converted problem.yaml).
type WriteFileOperation struct {
	TargetPath string
	Content    []byte
}

func (w WriteFileOperation) Name() string { return w.TargetPath }

func (w WriteFileOperation) Execute(outputDir string) error {
	dst := filepath.Join(outputDir, w.TargetPath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, w.Content, 0o644)
}
