package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/judgeforge/judgeforge/internal/judgeerr"
	"github.com/judgeforge/judgeforge/internal/process"
)

// Executable is what the driver hands back after a successful compile.
type Executable struct {
	// Base is the target name without extension, e.g. "gen1".
	Base string
	// Path is the directory the artifact lives in.
	Path string
	// Argv is the command needed to run it (build.Descriptor.ExecutionCommand).
	Argv []string
}

// Driver compiles generators/validators/checkers/solutions via an
// external make-style runner. Trusted compiles (everything this driver
// builds) run under TrustedLimits, distinct from the tight limits
// applied to a contestant solution at run time.
type Driver struct {
	Descriptors    []Descriptor
	TrustedLimits  process.Limits
	MakeTool       string // defaults to "make"
	IncludePath    string
	DefaultStackMiB int
}

func (d *Driver) makeTool() string {
	if d.MakeTool == "" {
		return "make"
	}
	return d.MakeTool
}

// Wildcard compiles every source file in dir whose extension is claimed
// by some descriptor, iterating descriptors in order; a failing
// descriptor aborts the whole batch.
func (d *Driver) Wildcard(ctx context.Context, dir string) ([]Executable, error) {
	sources, err := sourcesIn(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, judgeerr.Wrap(judgeerr.ConfigMissing, "list sources", err).At(dir)
	}
	if len(sources) == 0 {
		return nil, nil
	}

	byDescriptor := map[Descriptor][]string{}
	for _, src := range sources {
		ext := extOf(src)
		for _, desc := range d.Descriptors {
			claimed := false
			for _, e := range desc.SourceExtensions() {
				if e == ext {
					claimed = true
					break
				}
			}
			if claimed {
				byDescriptor[desc] = append(byDescriptor[desc], src)
				break
			}
		}
	}

	var out []Executable
	for _, desc := range d.Descriptors {
		srcs, ok := byDescriptor[desc]
		if !ok {
			continue
		}
		for _, src := range srcs {
			base := trimExt(filepath.Base(src))
			exe, err := d.compile(ctx, desc, "wildcard", []string{src}, base, dir, d.DefaultStackMiB)
			if err != nil {
				return nil, err
			}
			out = append(out, exe)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base < out[j].Base })
	return out, nil
}

// Target compiles an explicit source list into one named executable
// (used for the checker, interactor, and solution).
func (d *Driver) Target(ctx context.Context, sources []string, target string, dir string, stackMiB int) (Executable, error) {
	if stackMiB <= 0 {
		stackMiB = d.DefaultStackMiB
	}
	desc, err := Select(d.Descriptors, sources)
	if err != nil {
		return Executable{}, judgeerr.Wrap(judgeerr.CompilationFailed, "select language", err)
	}
	return d.compile(ctx, desc, "target", sources, target, dir, stackMiB)
}

func (d *Driver) compile(ctx context.Context, desc Descriptor, mode string, sources []string, base, dir string, stackMiB int) (Executable, error) {
	if stackMiB <= 0 {
		stackMiB = 64
	}

	makefile := desc.Makefile(mode)
	args := []string{"-C", dir, "-f", makefile,
		"SOURCES=" + joinPaths(sources),
		"TARGET=" + base,
	}

	logPath := filepath.Join(dir, fmt.Sprintf(".%s.compile.log", base))
	logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return Executable{}, judgeerr.Wrap(judgeerr.StageExecutionFailure, "open compile log", err)
	}
	defer logFile.Close()
	defer os.Remove(logPath)

	argv := append([]string{d.makeTool()}, args...)
	for k, v := range desc.Env(stackMiB, d.IncludePath) {
		argv = append(argv, k+"="+v)
	}

	p, err := process.Spawn(ctx, process.SpawnOpts{
		Argv:   argv,
		Dir:    dir,
		Stdout: logFile,
		Stderr: logFile,
		Limits: d.TrustedLimits,
	})
	if err != nil {
		return Executable{}, judgeerr.Wrap(judgeerr.StageExecutionFailure, "spawn make", err)
	}

	res, waitErr := p.Wait()
	logContents, _ := os.ReadFile(logPath)

	if res.IsTimedOut(d.TrustedLimits) {
		return Executable{}, judgeerr.New(judgeerr.CompilationTimedOut, fmt.Sprintf("%s: compile exceeded %.1fs\n%s", base, d.TrustedLimits.CPUSeconds, logContents))
	}
	if waitErr != nil || res.Signaled() || res.ExitCode != 0 {
		return Executable{}, judgeerr.New(judgeerr.CompilationFailed, fmt.Sprintf("%s: compile failed\n%s", base, logContents))
	}

	return Executable{
		Base: base,
		Path: dir,
		Argv: desc.ExecutionCommand(filepath.Join(dir, base), stackMiB),
	}, nil
}

// Clean removes generated build artifacts from dir: every regular file
// whose name has no extension and no leading dot, and any leftover
// ".*.compile.log" files.
func (d *Driver) Clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) > 0 && name[0] == '.' && hasSuffix(name, ".compile.log") {
			_ = os.Remove(filepath.Join(dir, name))
			continue
		}
		// A compiled executable's basename carries no extension and no
		// leading dot; everything else (sources, Makefiles, READMEs) does.
		if name[0] != '.' && extOf(name) == "" {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
	return nil
}

func sourcesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func trimExt(name string) string {
	ext := extOf(name)
	return name[:len(name)-len(ext)]
}

func joinPaths(paths []string) string {
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
