package export

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/judgeforge/judgeforge/internal/judgeconfig"
)

// icpcPackage is the subset of the domjudge/ICPC package-format
// problem.yaml this exporter is able to derive from judge.yaml.
type icpcPackage struct {
	FormatVersion string                 `yaml:"problem_format_version"`
	Name          string                 `yaml:"name"`
	Limits        map[string]interface{} `yaml:"limits"`
	Validation    string                 `yaml:"validation,omitempty"`
}

func buildProblemYAML(cfg *judgeconfig.Config) ([]byte, error) {
	pkg := icpcPackage{
		FormatVersion: "2023-07-draft",
		Name:          cfg.ProblemName,
		Limits:        map[string]interface{}{},
	}
	if cfg.Limits.TimeSeconds > 0 {
		pkg.Limits["time_limit"] = cfg.Limits.TimeSeconds
	}
	if cfg.Limits.MemoryMiB > 0 {
		pkg.Limits["memory"] = cfg.Limits.MemoryMiB
	}
	if cfg.Limits.OutputMiB > 0 {
		pkg.Limits["output"] = cfg.Limits.OutputMiB
	}

	switch cfg.Type {
	case judgeconfig.Interactive:
		pkg.Validation = "custom interactive"
	default:
		pkg.Validation = "default"
	}

	return yaml.Marshal(pkg)
}

// ICPC builds an Exporter producing a domjudge-style package directory:
// problem.yaml, the PDF statement, the checker/interactor C++ sources and
// include headers, and testcases split into data/sample and data/secret
// by testset name.
func ICPC(ctx *judgeconfig.Context) (*Exporter, error) {
	problemYAML, err := buildProblemYAML(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("export: build problem.yaml: %w", err)
	}

	inExt := regexp.QuoteMeta(strings.TrimPrefix(ctx.Config.InputExt, "."))
	outExt := regexp.QuoteMeta(strings.TrimPrefix(ctx.Config.OutputExt, "."))
	testcaseSuffix := fmt.Sprintf(`\.(?:%s|%s)$`, inExt, outExt)
	sampleTestcaseRe := regexp.MustCompile(`^testcases/.*_samples?_.*` + testcaseSuffix)
	secretTestcaseRe := regexp.MustCompile(`^testcases/.*` + testcaseSuffix)

	ops := []Operation{
		WriteFileOperation{TargetPath: "problem.yaml", Content: problemYAML},
		RegexCopyOperation{
			ProblemDir: ctx.ProblemDir,
			Pattern:    regexp.MustCompile(`^statement/.*\.pdf$`),
			TargetDir:  "problem_statement",
		},
		RegexCopyOperation{
			ProblemDir: ctx.ProblemDir,
			Pattern:    regexp.MustCompile(`^checker/.*\.(?:cc|cpp)$`),
			TargetDir:  "output_validators/checker",
		},
		RegexCopyOperation{
			ProblemDir: ctx.ProblemDir,
			Pattern:    regexp.MustCompile(`^interactor/.*\.(?:cc|cpp)$`),
			TargetDir:  "output_validators/checker",
		},
		RegexCopyOperation{
			ProblemDir: ctx.ProblemDir,
			Pattern:    regexp.MustCompile(`^include/.*\.(?:h|hpp)$`),
			TargetDir:  "output_validators/checker",
		},
		RegexCopyOperation{
			ProblemDir: ctx.ProblemDir,
			Pattern:    sampleTestcaseRe,
			TargetDir:  "data/sample",
		},
		RegexCopyOperation{
			ProblemDir: ctx.ProblemDir,
			Pattern:    secretTestcaseRe,
			Exclude:    sampleTestcaseRe,
			TargetDir:  "data/secret",
		},
	}

	return &Exporter{Operations: ops}, nil
}
