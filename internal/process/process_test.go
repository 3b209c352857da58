//go:build unix

package process_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/judgeforge/judgeforge/internal/process"
)

// TestMain lets this test binary double as the sandboxed child when
// Spawn re-execs it (os.Executable() resolves to the test binary during
// `go test`), mirroring how main() intercepts the sentinel in production.
func TestMain(m *testing.M) {
	process.RunSandboxChildIfRequested()
	os.Exit(m.Run())
}

func TestSpawnAndWaitSuccess(t *testing.T) {
	ctx := context.Background()
	p, err := process.Spawn(ctx, process.SpawnOpts{
		Argv:   []string{"/bin/sh", "-c", "exit 0"},
		Limits: process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	res, err := p.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}
	if res.Signaled() {
		t.Fatalf("unexpected signal %q", res.Signal)
	}
}

func TestSpawnNonZeroExit(t *testing.T) {
	p, err := process.Spawn(context.Background(), process.SpawnOpts{
		Argv:   []string{"/bin/sh", "-c", "exit 7"},
		Limits: process.Limits{CPUSeconds: 5, MemoryKiB: 256 * 1024},
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	res, _ := p.Wait()
	if res.ExitCode != 7 {
		t.Fatalf("exit code = %d, want 7", res.ExitCode)
	}
}

func TestWallClockWatchdogKillsHangingChild(t *testing.T) {
	p, err := process.Spawn(context.Background(), process.SpawnOpts{
		Argv:   []string{"/bin/sh", "-c", "sleep 30"},
		Limits: process.Limits{CPUSeconds: 1, MemoryKiB: 256 * 1024},
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	start := time.Now()
	res, _ := p.Wait()
	elapsed := time.Since(start)

	if elapsed > 5*time.Second {
		t.Fatalf("watchdog did not fire promptly, waited %s", elapsed)
	}
	if !res.Signaled() {
		t.Fatalf("expected the watchdog to SIGKILL the hanging child")
	}
}

func TestGroupKillsEveryoneOnCancel(t *testing.T) {
	g := process.NewGroup()
	for i := 0; i < 3; i++ {
		if _, err := g.Spawn(context.Background(), process.SpawnOpts{
			Argv:   []string{"/bin/sh", "-c", "sleep 30"},
			Limits: process.Limits{CPUSeconds: 60, MemoryKiB: 256 * 1024},
		}); err != nil {
			t.Fatalf("Spawn: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	results, err := g.Wait(ctx)
	if err == nil {
		t.Fatalf("expected context deadline error")
	}
	for i, r := range results {
		if !r.Signaled() {
			t.Errorf("process %d was not killed: %+v", i, r)
		}
	}
}
