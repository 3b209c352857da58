//go:build unix

package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/judgeforge/judgeforge/internal/invariant"
)

// sandboxChildEnvVar, when set in a re-exec'd copy of this binary, tells
// RunSandboxChildIfRequested to apply pre-exec sandbox setup (rlimits,
// SIGPIPE handling) and then exec the real target in place, rather than
// running the CLI. This is the Go equivalent of a C preexec_fn: os/exec
// gives us no pre-exec hook, so the wrapper re-execs itself, does the
// setup, and replaces its own image with the real program so the limits
// land before the target program ever runs a line of code.
const (
	sandboxChildEnvVar  = "JUDGEFORGE_SANDBOX_CHILD"
	envRLimitFSIZE      = "JUDGEFORGE_RLIMIT_FSIZE"
	envRLimitStackBytes = "JUDGEFORGE_RLIMIT_STACK_BYTES"
	envIgnoreSIGPIPE    = "JUDGEFORGE_IGNORE_SIGPIPE"
	sandboxSentinelArg  = "__judgeforge_sandbox_exec__"
)

// SpawnOpts describes one child invocation.
type SpawnOpts struct {
	Argv   []string
	Dir    string
	Stdin  *os.File // nil reads from the null device
	Stdout *os.File // nil discards output
	Stderr *os.File // nil discards output
	Limits Limits
	// IgnoreSIGPIPE sets SIGPIPE to SIG_IGN in the child before exec, so a
	// closed pipe surfaces as a read/write error instead of a kill. Used
	// for both sides of an interactor/solution pair.
	IgnoreSIGPIPE bool
}

// Process owns exactly one child PID, its timer, and its redirection
// file descriptors until it is reaped.
type Process struct {
	cmd       *exec.Cmd
	limits    Limits
	startedAt time.Time
	watchdog  *time.Timer
	killed    bool
}

// Spawn launches a child under the limits in opts.
func Spawn(ctx context.Context, opts SpawnOpts) (*Process, error) {
	invariant.Precondition(len(opts.Argv) > 0, "argv must not be empty")

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("process: resolve self executable: %w", err)
	}

	wrapperArgv := append([]string{self, sandboxSentinelArg}, opts.Argv...)
	cmd := exec.CommandContext(ctx, wrapperArgv[0], wrapperArgv[1:]...)
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGKILL) }
	cmd.WaitDelay = 0
	cmd.Dir = opts.Dir
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	env := os.Environ()
	env = append(env, fmt.Sprintf("%s=1", sandboxChildEnvVar))
	env = append(env, fmt.Sprintf("%s=%d", envRLimitFSIZE, opts.Limits.OutputBytes))
	if runtime.GOOS != "darwin" {
		env = append(env, fmt.Sprintf("%s=%d", envRLimitStackBytes, opts.Limits.MemoryKiB*1024))
	}
	if opts.IgnoreSIGPIPE {
		env = append(env, fmt.Sprintf("%s=1", envIgnoreSIGPIPE))
	}
	cmd.Env = env

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &Process{cmd: cmd, limits: opts.Limits, startedAt: time.Now()}
	if opts.Limits.CPUSeconds > 0 {
		p.watchdog = time.AfterFunc(opts.Limits.WallCeiling(), func() {
			_ = p.Kill()
		})
	}
	return p, nil
}

// PID returns the child's process ID.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}

// Kill sends SIGKILL. A late reap race (the child exits during Kill) is
// swallowed: repeated calls are harmless.
func (p *Process) Kill() error {
	if p.cmd.Process == nil || p.killed {
		return nil
	}
	p.killed = true
	err := p.cmd.Process.Signal(syscall.SIGKILL)
	if err != nil && err != os.ErrProcessDone {
		return err
	}
	return nil
}

// Wait blocks until the child is reaped and returns its captured Result.
func (p *Process) Wait() (Result, error) {
	waitErr := p.cmd.Wait()
	if p.watchdog != nil {
		p.watchdog.Stop()
	}
	wall := time.Since(p.startedAt).Seconds()

	state := p.cmd.ProcessState
	result := Result{WallSeconds: wall}
	if state != nil {
		result.CPUSeconds = state.UserTime().Seconds() + state.SystemTime().Seconds()
		if ru, ok := state.SysUsage().(*syscall.Rusage); ok {
			result.MaxRSSKiB = normalizeMaxRSS(ru.Maxrss)
		}
		ws := state.Sys().(syscall.WaitStatus)
		if ws.Signaled() {
			result.Signal = unix.SignalName(ws.Signal())
		} else {
			result.ExitCode = ws.ExitStatus()
		}
	}

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			return result, waitErr
		}
	}
	return result, nil
}

// normalizeMaxRSS converts ru_maxrss to KiB: Linux reports KiB already,
// Darwin reports bytes.
func normalizeMaxRSS(maxrss int64) int64 {
	if runtime.GOOS == "darwin" {
		return maxrss / 1024
	}
	return maxrss
}

// RunSandboxChildIfRequested intercepts a re-exec'd copy of this binary
// before the CLI runs. It must be the very first thing main() calls.
// It never returns when the sentinel is present: it either execs the
// real target or exits 127 on setup failure.
func RunSandboxChildIfRequested() {
	if len(os.Args) < 2 || os.Args[1] != sandboxSentinelArg {
		return
	}
	if os.Getenv(sandboxChildEnvVar) != "1" {
		return
	}

	if err := applySandboxLimits(); err != nil {
		fmt.Fprintf(os.Stderr, "judgeforge: sandbox setup failed: %v\n", err)
		os.Exit(127)
	}

	argv := os.Args[2:]
	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, "judgeforge: sandbox exec requested with no target argv")
		os.Exit(127)
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "judgeforge: %v\n", err)
		os.Exit(127)
	}

	env := cleanedEnviron()
	if err := unix.Exec(path, argv, env); err != nil {
		fmt.Fprintf(os.Stderr, "judgeforge: exec %s: %v\n", argv[0], err)
		os.Exit(127)
	}
}

func applySandboxLimits() error {
	if v := os.Getenv(envRLimitFSIZE); v != "" && v != "0" {
		var bytes int64
		if _, err := fmt.Sscanf(v, "%d", &bytes); err == nil && bytes > 0 {
			lim := unix.Rlimit{Cur: uint64(bytes), Max: uint64(bytes)}
			if err := unix.Setrlimit(unix.RLIMIT_FSIZE, &lim); err != nil {
				return fmt.Errorf("RLIMIT_FSIZE: %w", err)
			}
		}
	}

	coreLim := unix.Rlimit{Cur: 0, Max: 0}
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &coreLim); err != nil {
		return fmt.Errorf("RLIMIT_CORE: %w", err)
	}

	if runtime.GOOS != "darwin" {
		if v := os.Getenv(envRLimitStackBytes); v != "" && v != "0" {
			var bytes uint64
			if _, err := fmt.Sscanf(v, "%d", &bytes); err == nil && bytes > 0 {
				lim := unix.Rlimit{Cur: bytes, Max: bytes}
				if err := unix.Setrlimit(unix.RLIMIT_STACK, &lim); err != nil {
					return fmt.Errorf("RLIMIT_STACK: %w", err)
				}
			}
		}
	}

	if os.Getenv(envIgnoreSIGPIPE) == "1" {
		signal.Ignore(syscall.SIGPIPE)
	}

	return nil
}

func cleanedEnviron() []string {
	skip := map[string]bool{
		sandboxChildEnvVar:  true,
		envRLimitFSIZE:      true,
		envRLimitStackBytes: true,
		envIgnoreSIGPIPE:    true,
	}
	in := os.Environ()
	out := make([]string, 0, len(in))
	for _, kv := range in {
		name := kv
		for i, c := range kv {
			if c == '=' {
				name = kv[:i]
				break
			}
		}
		if !skip[name] {
			out = append(out, kv)
		}
	}
	return out
}
