// Command judgeforge drives a competitive-programming problem's build,
// test-case generation, submission invocation, cleanup, and packaging
// from its recipe and judge.yaml.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/judgeforge/judgeforge/internal/cli"
	"github.com/judgeforge/judgeforge/internal/export"
	"github.com/judgeforge/judgeforge/internal/judgeconfig"
	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/pipeline"
	"github.com/judgeforge/judgeforge/internal/process"
)

func main() {
	// A re-exec'd copy of this binary, spawned only to apply pre-exec
	// sandbox limits before replacing itself with the real target, must
	// take this branch before cobra ever sees argv.
	process.RunSandboxChildIfRequested()

	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "judgeforge: GOMAXPROCS: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCancellableContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	return ctx, cancel
}

func newRootCmd() *cobra.Command {
	var problemDir string
	var noColor bool

	root := &cobra.Command{
		Use:           "judgeforge",
		Short:         "Build, generate, invoke, and package competitive-programming problems",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&problemDir, "problem", "C", ".", "problem directory")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newGenCmd(&problemDir, &noColor),
		newInvokeCmd(&problemDir, &noColor),
		newCleanCmd(&problemDir, &noColor),
		newExportCmd(&problemDir, &noColor),
	)
	return root
}

func newGenCmd(problemDir *string, noColor *bool) *cobra.Command {
	var showReason bool
	var verifyHash bool

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate and validate every testcase declared by the recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := newCancellableContext()
			defer cancel()

			rt, err := cli.LoadRuntime(ctx, *problemDir)
			if err != nil {
				return err
			}
			reporter := cli.NewReporter(os.Stdout, *noColor)

			reports, diff, err := rt.Orchestrator.Run(ctx, verifyHash)
			if err != nil {
				return err
			}

			failed := false
			for _, r := range reports {
				reporter.PrintTest(r.Result.TestName, r.Result.InputGeneration, r.Result.InputValidation,
					r.Result.OutputGeneration, r.Result.OutputValidation, r.Result.Reason, showReason)
				if !r.Result.Accepted() {
					failed = true
				}
			}

			if verifyHash {
				reporter.PrintHashDiff(diff)
				if !diff.Matches() {
					return fmt.Errorf("testcase hashes do not match the recorded set")
				}
			} else if err := pipeline.WriteSummary(rt.Context.TestcasesDir(), reports); err != nil {
				return fmt.Errorf("judgeforge: write testcase summary: %w", err)
			}

			if failed {
				return fmt.Errorf("one or more testcases failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showReason, "show-reason", false, "print each stage's failure reason")
	cmd.Flags().BoolVar(&verifyHash, "verify-hash", false, "diff freshly computed testcase hashes against the recorded hash.json instead of writing it")
	return cmd
}

func newInvokeCmd(problemDir *string, noColor *bool) *cobra.Command {
	var showReason bool
	var stopOnFail bool

	cmd := &cobra.Command{
		Use:   "invoke <submission-file>...",
		Short: "Compile a submission and run it against every generated testcase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := newCancellableContext()
			defer cancel()

			rt, err := cli.LoadRuntime(ctx, *problemDir)
			if err != nil {
				return err
			}

			submissionDir := filepath.Dir(args[0])
			exe, err := rt.Driver.Target(ctx, args, "submission", submissionDir, rt.Context.Config.StackMiB)
			if err != nil {
				return err
			}

			names, err := pipeline.ReadSummary(rt.Context.TestcasesDir())
			if err != nil {
				return err
			}
			warnUnavailableTestcases(rt.Context, names)

			reporter := cli.NewReporter(os.Stdout, *noColor)
			reports := rt.Orchestrator.Invoke(ctx, exe.Argv, names, stopOnFail)

			allAccepted := true
			for _, r := range reports {
				reporter.PrintInvoke(r.TestName, r.Verdict, r.Reason, showReason)
				if r.Verdict != outcome.Accepted && r.Verdict != outcome.RunSuccess {
					allAccepted = false
				}
			}
			if !allAccepted {
				return fmt.Errorf("submission did not pass every testcase")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showReason, "show-reason", false, "print each testcase's judge message")
	cmd.Flags().BoolVar(&stopOnFail, "stop-on-fail", false, "stop at the first non-accepted testcase")
	return cmd
}

func newCleanCmd(problemDir *string, noColor *bool) *cobra.Command {
	var yes bool
	var keepTestcases bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove compiled artifacts, sandbox scratch space, and logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := newCancellableContext()
			defer cancel()

			rt, err := cli.LoadRuntime(ctx, *problemDir)
			if err != nil {
				return err
			}

			if !yes && !confirm(fmt.Sprintf("Clean %s", *problemDir)) {
				fmt.Fprintln(os.Stdout, "Aborted.")
				return nil
			}

			if err := cli.Clean(rt.Context, rt.Driver, keepTestcases); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Cleanup completed.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&keepTestcases, "keep-testcases", false, "leave testcases/ (and its hash.json/summary) in place")
	return cmd
}

func newExportCmd(problemDir *string, noColor *bool) *cobra.Command {
	var asZip bool

	cmd := &cobra.Command{
		Use:   "export <output-path>",
		Short: "Package the problem into a domjudge/ICPC-style contest package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jctx, err := judgeconfig.NewContext(*problemDir)
			if err != nil {
				return err
			}

			exporter, err := export.ICPC(jctx)
			if err != nil {
				return err
			}
			if err := exporter.Export(args[0], asZip); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Exported to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&asZip, "zip", false, "write a .zip archive instead of a directory")
	return cmd
}

func confirm(message string) bool {
	fmt.Fprintf(os.Stdout, "%s? [y/N] ", message)
	var answer string
	fmt.Scanln(&answer)
	switch answer {
	case "y", "Y", "yes":
		return true
	default:
		return false
	}
}

// warnUnavailableTestcases reports every recipe testcase missing from
// the last gen run's summary, the way invoke warns about partial runs.
func warnUnavailableTestcases(jctx *judgeconfig.Context, available []string) {
	have := make(map[string]bool, len(available))
	for _, name := range available {
		have[name] = true
	}
	var missing []string
	for _, ts := range jctx.Recipe.Testsets {
		for _, tc := range ts.Tests {
			if !have[tc.Name] {
				missing = append(missing, tc.Name)
			}
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "warning: testcases %v were not available\n", missing)
	}
}
