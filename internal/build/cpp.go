package build

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// CPP is the C++ language descriptor: a single native binary built via
// `make -f cpp.{wildcard,target}.Makefile`. On Darwin, where RLIMIT_STACK
// cannot be raised for the child, the stack size is linked in instead.
type CPP struct {
	MakefileDir string // directory holding cpp.wildcard.Makefile / cpp.target.Makefile
}

func (CPP) Name() string                   { return "cpp" }
func (CPP) SourceExtensions() []string     { return []string{".cpp", ".cc", ".cxx"} }
func (CPP) ExecutableExtension() string    { return "" }

func (c CPP) Makefile(mode string) string {
	return fmt.Sprintf("%s/cpp.%s.Makefile", c.MakefileDir, mode)
}

func (CPP) Env(stackMiB int, includePath string) map[string]string {
	flags := []string{"-std=c++20", "-Wall", "-Wextra", "-O2"}
	if cxxflags := os.Getenv("CXXFLAGS"); cxxflags != "" {
		flags = append([]string{cxxflags}, flags...)
	}
	if runtime.GOOS == "darwin" {
		if stackMiB > 512 {
			stackMiB = 512
		}
		flags = append(flags, "-Wl,-stack_size", fmt.Sprintf("-Wl,0x%x", stackMiB*1024*1024))
	}
	env := map[string]string{
		"CXXFLAGS":     strings.Join(flags, " "),
		"INCLUDE_PATHS": includePath,
	}
	if cxx := os.Getenv("CXX"); cxx != "" {
		env["CXX"] = cxx
	}
	return env
}

func (CPP) ExecutionCommand(base string, _ int) []string {
	return []string{base}
}
