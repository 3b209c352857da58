package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/judgeforge/judgeforge/internal/build"
	"github.com/judgeforge/judgeforge/internal/judgeconfig"
	"github.com/judgeforge/judgeforge/internal/judgeerr"
	"github.com/judgeforge/judgeforge/internal/pipeline"
	"github.com/judgeforge/judgeforge/internal/process"
	"github.com/judgeforge/judgeforge/internal/stage"
)

// Runtime owns everything gen/invoke/clean need once a problem
// directory has been loaded and its trusted steps compiled.
type Runtime struct {
	Context      *judgeconfig.Context
	Driver       *build.Driver
	Orchestrator *pipeline.Orchestrator
}

func trustedLimits(cfg *judgeconfig.Config) process.Limits {
	return process.Limits{
		CPUSeconds:  cfg.TrustedLimits.TimeSeconds,
		MemoryKiB:   cfg.TrustedLimits.MemoryMiB * 1024,
		OutputBytes: cfg.TrustedLimits.OutputMiB * 1024 * 1024,
	}
}

func contestantLimits(cfg *judgeconfig.Config) process.Limits {
	return process.Limits{
		CPUSeconds:  cfg.Limits.TimeSeconds,
		MemoryKiB:   cfg.Limits.MemoryMiB * 1024,
		OutputBytes: cfg.Limits.OutputMiB * 1024 * 1024,
	}
}

func descriptors(makefileDir string) []build.Descriptor {
	return []build.Descriptor{
		build.CPP{MakefileDir: makefileDir},
		build.Python3{MakefileDir: makefileDir},
	}
}

// LoadRuntime loads judge.yaml/recipe.txt, loads .env, compiles every
// generator, validator, the checker (or interactor), and the model
// solution, then wires the pipeline Orchestrator.
func LoadRuntime(ctx context.Context, problemDir string) (*Runtime, error) {
	if err := judgeconfig.LoadDotEnv(problemDir); err != nil {
		return nil, err
	}

	jctx, err := judgeconfig.NewContext(problemDir)
	if err != nil {
		return nil, err
	}
	cfg := jctx.Config

	makefileDir := filepath.Join(problemDir, "makefiles")
	driver := &build.Driver{
		Descriptors:     descriptors(makefileDir),
		TrustedLimits:   trustedLimits(cfg),
		IncludePath:     filepath.Join(problemDir, "include"),
		DefaultStackMiB: cfg.StackMiB,
	}

	for _, dir := range []string{jctx.TestcasesDir(), jctx.LogsGenerationDir(), jctx.LogsInvocationDir(), jctx.SandboxDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, judgeerr.Wrap(judgeerr.StageExecutionFailure, "create run directory", err).At(dir)
		}
	}

	generators, err := driver.Wildcard(ctx, jctx.GeneratorsDir())
	if err != nil {
		return nil, err
	}
	validators, err := driver.Wildcard(ctx, jctx.ValidatorsDir())
	if err != nil {
		return nil, err
	}

	executables := make(map[string][]string, len(generators)+len(validators))
	for _, e := range generators {
		executables[e.Base] = e.Argv
	}
	for _, e := range validators {
		executables[e.Base] = e.Argv
	}

	var solutionArgv []string
	solutions, err := driver.Wildcard(ctx, jctx.SolutionsDir())
	if err != nil {
		return nil, err
	}
	if len(solutions) > 0 {
		solutionArgv = solutions[0].Argv
	}

	var checkerArgv []string
	interactive := cfg.Type == judgeconfig.Interactive
	if interactive {
		sources, err := sourcesInDir(jctx.InteractorDir())
		if err != nil {
			return nil, err
		}
		if len(sources) > 0 {
			exe, err := driver.Target(ctx, sources, "interactor", jctx.InteractorDir(), cfg.StackMiB)
			if err != nil {
				return nil, err
			}
			checkerArgv = exe.Argv
		}
	} else {
		sources, err := sourcesInDir(jctx.CheckerDir())
		if err != nil {
			return nil, err
		}
		if len(sources) > 0 {
			exe, err := driver.Target(ctx, sources, "checker", jctx.CheckerDir(), cfg.StackMiB)
			if err != nil {
				return nil, err
			}
			checkerArgv = exe.Argv
		}
	}

	gen := &stage.GenerationStage{
		Executables: executables,
		ManualDir:   jctx.ManualDir(),
		SandboxRoot: jctx.SandboxDir(),
		Testcases:   jctx.TestcasesDir(),
		Logs:        jctx.LogsGenerationDir(),
		InputExt:    cfg.InputExt,
		OutputExt:   cfg.OutputExt,
		Limits:      trustedLimits(cfg),
	}
	val := &stage.ValidationStage{
		Executables: executables,
		SandboxRoot: jctx.SandboxDir(),
		Testcases:   jctx.TestcasesDir(),
		Logs:        jctx.LogsGenerationDir(),
		InputExt:    cfg.InputExt,
		Limits:      trustedLimits(cfg),
		Convention:  cfg.Convention,
	}
	sol := &stage.SolutionStage{
		SandboxRoot:      jctx.SandboxDir(),
		Testcases:        jctx.TestcasesDir(),
		Logs:             jctx.LogsGenerationDir(),
		InputExt:         cfg.InputExt,
		OutputExt:        cfg.OutputExt,
		Limits:           trustedLimits(cfg),
		Interactive:      interactive,
		InteractorArgv:   checkerArgv,
		InteractorLimits: trustedLimits(cfg),
	}
	// invokeSol runs a contestant's own submission, so it is built under
	// the problem's real (tight) limits rather than the generous ones
	// trusted judge-owned steps compile and run under. The interactor
	// itself is still judge-owned code and keeps the trusted limits even
	// here, so a submission running close to its own time limit cannot
	// starve or crash the interactor it's paired with.
	invokeSol := &stage.SolutionStage{
		SandboxRoot:      jctx.SandboxDir(),
		Testcases:        jctx.TestcasesDir(),
		Logs:             jctx.LogsInvocationDir(),
		InputExt:         cfg.InputExt,
		OutputExt:        cfg.OutputExt,
		Limits:           contestantLimits(cfg),
		Interactive:      interactive,
		InteractorArgv:   checkerArgv,
		InteractorLimits: trustedLimits(cfg),
	}
	var checker *stage.Checker
	if !interactive {
		checker = &stage.Checker{
			Argv:        checkerArgv,
			SandboxRoot: jctx.SandboxDir(),
			Testcases:   jctx.TestcasesDir(),
			Limits:      trustedLimits(cfg),
			Convention:  cfg.Convention,
		}
	}

	orch := &pipeline.Orchestrator{
		Generation:       gen,
		Validation:       val,
		Solution:         sol,
		InvokeSolution:   invokeSol,
		Checker:          checker,
		Recipe:           jctx.Recipe,
		SolutionArgv:     solutionArgv,
		OutputExt:        cfg.OutputExt,
		Testcases:        jctx.TestcasesDir(),
		CheckOnForced:    cfg.CheckerRunsOnForced,
		CheckOnGenerated: cfg.CheckerRunsOnGenerated,
		Interactive:      interactive,
	}

	return &Runtime{Context: jctx, Driver: driver, Orchestrator: orch}, nil
}

func sourcesInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
