package build

import (
	"fmt"
	"os"
)

// Python3 is the "archived bytecode" descriptor: a zipapp bundle (.pyz)
// run through an interpreter rather than exec'd directly.
type Python3 struct {
	MakefileDir string
}

func (Python3) Name() string                { return "python3" }
func (Python3) SourceExtensions() []string  { return []string{".py"} }
func (Python3) ExecutableExtension() string { return ".pyz" }

func (p Python3) Makefile(mode string) string {
	return fmt.Sprintf("%s/python.%s.Makefile", p.MakefileDir, mode)
}

func (Python3) Env(int, string) map[string]string {
	return map[string]string{}
}

func (Python3) ExecutionCommand(base string, _ int) []string {
	interpreter := os.Getenv("PYTHON")
	if interpreter == "" {
		interpreter = "python3"
	}
	return []string{interpreter, base + ".pyz"}
}
