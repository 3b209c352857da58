// Package cli renders stage verdicts as colored, fixed-width status
// tags and wires the gen/invoke/clean/export subcommands together.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/judgeforge/judgeforge/internal/outcome"
	"github.com/judgeforge/judgeforge/internal/pipeline"
)

// Reporter prints fixed-width colored [TAG] status markers to an
// output stream, matching the judge's own console feedback style.
type Reporter struct {
	w     io.Writer
	color bool
}

// NewReporter builds a Reporter writing to w. Color is auto-detected
// from whether w is a terminal, unless noColor forces it off.
func NewReporter(w io.Writer, noColor bool) *Reporter {
	color := !noColor
	if f, ok := w.(*os.File); ok {
		color = color && isatty.IsTerminal(f.Fd())
	}
	return &Reporter{w: w, color: color}
}

var (
	styleGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	stylePurple = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	styleBlue   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleGrey   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (r *Reporter) tag(style lipgloss.Style, text string) string {
	if !r.color {
		return fmt.Sprintf("[%-4s]", text)
	}
	return "[" + style.Render(fmt.Sprintf("%-4s", text)) + "]"
}

// VerdictTag returns the "[OK|FAIL|RTE|TLE|SKIP]" tag for a Verdict.
func (r *Reporter) VerdictTag(v outcome.Verdict) string {
	switch v {
	case outcome.SUCCESS:
		return r.tag(styleGreen, "OK")
	case outcome.CRASHED:
		return r.tag(stylePurple, "RTE")
	case outcome.FAILED:
		return r.tag(styleRed, "FAIL")
	case outcome.TIMEDOUT:
		return r.tag(styleBlue, "TLE")
	case outcome.SKIPPED, outcome.SKIPPED_SUCCESS:
		return r.tag(styleGrey, "SKIP")
	default:
		return r.tag(styleGrey, "????")
	}
}

// PrintTest prints one test's four-stage result line, plus its reason
// when showReason is true and a reason is present.
func (r *Reporter) PrintTest(testName string, ig, iv, og, ov outcome.Verdict, reason string, showReason bool) {
	fmt.Fprintf(r.w, "%-24s %s %s %s %s\n", testName, r.VerdictTag(ig), r.VerdictTag(iv), r.VerdictTag(og), r.VerdictTag(ov))
	if showReason && reason != "" {
		fmt.Fprintf(r.w, "    %s\n", reason)
	}
}

// PrintHashDiff renders a hash-verification diff the way the official
// generator reports mismatched, missing, and extra testcase files.
func (r *Reporter) PrintHashDiff(diff pipeline.HashDiff) {
	if diff.Matches() {
		fmt.Fprintln(r.w, r.color2(styleGreen, "Hash matches!"))
		return
	}
	if len(diff.Mismatched) > 0 {
		fmt.Fprintln(r.w, r.color2(styleRed, "Hash mismatches:"))
		for _, m := range diff.Mismatched {
			fmt.Fprintf(r.w, "    %s (expected %s, got %s)\n", m.Filename, m.Official, m.Found)
		}
	}
	if len(diff.Missing) > 0 {
		fmt.Fprintln(r.w, r.color2(styleRed, "Missing files:"))
		for _, m := range diff.Missing {
			fmt.Fprintf(r.w, "    %s\n", m)
		}
	}
	if len(diff.Extra) > 0 {
		fmt.Fprintln(r.w, r.color2(styleRed, "Extra files:"))
		for _, m := range diff.Extra {
			fmt.Fprintf(r.w, "    %s\n", m)
		}
	}
}

// SolutionVerdictTag returns the "[AC|WA|RTE|TLE|MLE|...]" tag for a
// submission's SolutionVerdict.
func (r *Reporter) SolutionVerdictTag(v outcome.SolutionVerdict) string {
	switch v {
	case outcome.Accepted, outcome.RunSuccess:
		return r.tag(styleGreen, "AC")
	case outcome.Wrong:
		return r.tag(styleRed, "WA")
	case outcome.Timeout, outcome.TimeoutWall, outcome.CheckerTimedOut:
		return r.tag(styleBlue, "TLE")
	case outcome.RunErrorMemory:
		return r.tag(styleBlue, "MLE")
	case outcome.OutputLimit:
		return r.tag(styleBlue, "OLE")
	case outcome.RunErrorSignal, outcome.RunErrorExitCode, outcome.CheckerCrashed:
		return r.tag(stylePurple, "RTE")
	case outcome.NoFile:
		return r.tag(styleRed, "WA")
	default:
		return r.tag(styleGrey, "JE")
	}
}

// PrintInvoke prints one submission-against-testcase verdict line.
func (r *Reporter) PrintInvoke(testName string, v outcome.SolutionVerdict, reason string, showReason bool) {
	fmt.Fprintf(r.w, "%-24s %s\n", testName, r.SolutionVerdictTag(v))
	if showReason && reason != "" {
		fmt.Fprintf(r.w, "    %s\n", reason)
	}
}

func (r *Reporter) color2(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}
