package build_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/judgeforge/judgeforge/internal/build"
)

func TestPython3ExecutionCommandDefaultsToPython3Interpreter(t *testing.T) {
	os.Unsetenv("PYTHON")
	py := build.Python3{}
	assert.Equal(t, []string{"python3", "/tmp/a/checker.pyz"}, py.ExecutionCommand("/tmp/a/checker", 0))
}

func TestPython3ExecutionCommandHonorsPYTHONEnv(t *testing.T) {
	t.Setenv("PYTHON", "/usr/bin/python3.12")
	py := build.Python3{}
	assert.Equal(t, []string{"/usr/bin/python3.12", "/tmp/a/checker.pyz"}, py.ExecutionCommand("/tmp/a/checker", 0))
}

func TestPython3MakefilePicksModeSpecificFile(t *testing.T) {
	py := build.Python3{MakefileDir: "/problem/makefiles"}
	assert.Equal(t, "/problem/makefiles/python.wildcard.Makefile", py.Makefile("wildcard"))
}
