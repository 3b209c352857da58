package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/process"
	"github.com/judgeforge/judgeforge/internal/recipe"
)

// GenerationStage runs a testcase's command pipeline and produces its
// canonical input file (and, for manual-with-forced-output tests, its
// canonical output file too).
type GenerationStage struct {
	// Executables maps a recipe program name to the argv that runs its
	// compiled build output.
	Executables map[string][]string
	ManualDir   string
	SandboxRoot string
	Testcases   string
	Logs        string
	InputExt    string
	OutputExt   string
	Limits      process.Limits
}

// Result is what the generation stage reports back for one test.
type Result struct {
	Verdict        outcome.Verdict
	Reason         string
	IsOutputForced bool
}

// Run executes tc's pipeline and installs its canonical files.
func (g *GenerationStage) Run(ctx context.Context, tc *recipe.Testcase, extraExts []string) Result {
	sb, err := newSandbox(g.SandboxRoot, "gen-"+tc.Name)
	if err != nil {
		return Result{Verdict: outcome.FAILED, Reason: err.Error()}
	}
	defer sb.close()

	pipeline, outputForced, err := g.rewriteManual(tc.Pipeline, tc.Name)
	if err != nil {
		return Result{Verdict: outcome.FAILED, Reason: err.Error()}
	}

	argvs := make([][]string, len(pipeline))
	for i, cmd := range pipeline {
		argv, err := g.resolve(cmd)
		if err != nil {
			return Result{Verdict: outcome.FAILED, Reason: err.Error(), IsOutputForced: outputForced}
		}
		argvs[i] = argv
	}

	canonicalInput := sb.path(tc.Name + g.InputExt)
	outFile, err := os.Create(canonicalInput)
	if err != nil {
		return Result{Verdict: outcome.FAILED, Reason: err.Error(), IsOutputForced: outputForced}
	}
	outFile.Close()

	verdict, reason, err := runChain(ctx, argvs, sb, g.Limits, tc.Name, "gen", canonicalInput)
	if err != nil {
		return Result{Verdict: outcome.FAILED, Reason: err.Error(), IsOutputForced: outputForced}
	}
	if verdict != outcome.SUCCESS {
		return Result{Verdict: verdict, Reason: reason, IsOutputForced: outputForced}
	}

	if err := moveFile(canonicalInput, filepath.Join(g.Testcases, tc.Name+g.InputExt)); err != nil {
		return Result{Verdict: outcome.FAILED, Reason: err.Error(), IsOutputForced: outputForced}
	}
	if outputForced {
		canonicalOutput := sb.path(tc.Name + g.OutputExt)
		if _, err := os.Stat(canonicalOutput); err == nil {
			if err := moveFile(canonicalOutput, filepath.Join(g.Testcases, tc.Name+g.OutputExt)); err != nil {
				return Result{Verdict: outcome.FAILED, Reason: err.Error(), IsOutputForced: outputForced}
			}
		}
	}
	for _, ext := range extraExts {
		extraPath := sb.path(tc.Name + ext)
		if _, err := os.Stat(extraPath); err == nil {
			if err := moveFile(extraPath, filepath.Join(g.Testcases, tc.Name+ext)); err != nil {
				return Result{Verdict: outcome.FAILED, Reason: err.Error(), IsOutputForced: outputForced}
			}
		}
	}

	return Result{Verdict: outcome.SUCCESS, IsOutputForced: outputForced}
}

// rewriteManual applies the manual-pseudo-program transformations: a
// bare manual file becomes a cat of it, and a manual input+output pair
// splits into a copy of the forced output plus a cat of the input.
func (g *GenerationStage) rewriteManual(pipeline []recipe.Command, testName string) ([]recipe.Command, bool, error) {
	if len(pipeline) == 0 || pipeline[0].Program != "manual" {
		return pipeline, false, nil
	}
	first := pipeline[0]
	rest := pipeline[1:]

	switch len(first.Args) {
	case 1:
		path := filepath.Join(g.ManualDir, first.Args[0])
		if _, err := os.Stat(path); err != nil {
			return nil, false, fmt.Errorf("manual file %q: %w", first.Args[0], err)
		}
		return append([]recipe.Command{{Program: "cat", Args: []string{path}}}, rest...), false, nil
	case 2:
		inputPath := filepath.Join(g.ManualDir, first.Args[0])
		outputPath := filepath.Join(g.ManualDir, first.Args[1])
		if _, err := os.Stat(inputPath); err != nil {
			return nil, false, fmt.Errorf("manual input file %q: %w", first.Args[0], err)
		}
		if _, err := os.Stat(outputPath); err != nil {
			return nil, false, fmt.Errorf("manual output file %q: %w", first.Args[1], err)
		}
		canonicalOutput := filepath.Join(g.SandboxRoot, "gen-"+testName, testName+g.OutputExt)
		copyCmd := recipe.Command{Program: "cp", Args: []string{outputPath, canonicalOutput}}
		catCmd := recipe.Command{Program: "cat", Args: []string{inputPath}}
		return append([]recipe.Command{copyCmd, catCmd}, rest...), true, nil
	default:
		return nil, false, fmt.Errorf("manual accepts 1 or 2 arguments, got %d", len(first.Args))
	}
}

func (g *GenerationStage) resolve(cmd recipe.Command) ([]string, error) {
	if cmd.Program == "cat" || cmd.Program == "cp" {
		return append([]string{cmd.Program}, cmd.Args...), nil
	}
	argv, ok := g.Executables[cmd.Program]
	if !ok {
		return nil, fmt.Errorf("generator %q has no compiled build output", cmd.Program)
	}
	return append(append([]string{}, argv...), cmd.Args...), nil
}
