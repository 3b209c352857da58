package build_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/judgeforge/judgeforge/internal/build"
)

func TestCPPMakefilePicksModeSpecificFile(t *testing.T) {
	cpp := build.CPP{MakefileDir: "/problem/makefiles"}
	assert.Equal(t, "/problem/makefiles/cpp.wildcard.Makefile", cpp.Makefile("wildcard"))
	assert.Equal(t, "/problem/makefiles/cpp.target.Makefile", cpp.Makefile("target"))
}

func TestCPPExecutionCommandIsJustTheBinary(t *testing.T) {
	cpp := build.CPP{}
	assert.Equal(t, []string{"/tmp/a/gen"}, cpp.ExecutionCommand("/tmp/a/gen", 64))
}

func TestCPPEnvCarriesIncludePathAndOptFlags(t *testing.T) {
	cpp := build.CPP{}
	env := cpp.Env(64, "/problem/include")
	assert.Equal(t, "/problem/include", env["INCLUDE_PATHS"])
	assert.Contains(t, env["CXXFLAGS"], "-std=c++20")
	assert.Contains(t, env["CXXFLAGS"], "-O2")
}
