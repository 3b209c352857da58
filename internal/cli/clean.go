package cli

import (
	"fmt"
	"os"

	"github.com/judgeforge/judgeforge/internal/build"
	"github.com/judgeforge/judgeforge/internal/judgeconfig"
)

// Clean removes compiled artifacts, sandbox scratch space, and logs for
// a problem. When keepTestcases is false, testcases/ is wiped too
// (hash.json and summary included).
func Clean(ctx *judgeconfig.Context, driver *build.Driver, keepTestcases bool) error {
	if err := os.RemoveAll(ctx.LogsGenerationDir()); err != nil {
		return fmt.Errorf("cli: clean generation logs: %w", err)
	}
	if err := os.RemoveAll(ctx.LogsInvocationDir()); err != nil {
		return fmt.Errorf("cli: clean invocation logs: %w", err)
	}
	if err := os.RemoveAll(ctx.SandboxDir()); err != nil {
		return fmt.Errorf("cli: clean sandbox: %w", err)
	}

	if !keepTestcases {
		if err := os.RemoveAll(ctx.TestcasesDir()); err != nil {
			return fmt.Errorf("cli: clean testcases: %w", err)
		}
	}

	for _, dir := range []string{ctx.GeneratorsDir(), ctx.ValidatorsDir(), ctx.SolutionsDir(), ctx.CheckerDir(), ctx.InteractorDir()} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := driver.Clean(dir); err != nil {
			return fmt.Errorf("cli: clean %s: %w", dir, err)
		}
	}
	return nil
}
