package process

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group waits on a batch of Processes and guarantees that an interrupt
// kills every still-alive member before propagating.
//
// The original design blocks SIGCHLD around the batch and drives
// reaping from a sigwaitinfo loop so no wakeup is lost. Go's runtime
// already owns SIGCHLD and reaps every child it starts via its own
// internal wait4 loop (that's what cmd.Wait() blocks on); hand-rolling
// a second SIGCHLD handler on top of it would race the runtime's own,
// not cooperate with it. Group instead gets the same two guarantees,
// no lost wakeups and no orphaned children on interrupt, from an
// errgroup: every Process.Wait() runs in its own goroutine, and
// cancellation kills the whole tracked set before Wait returns.
type Group struct {
	mu    sync.Mutex
	procs []*Process
}

// NewGroup returns an empty supervisor.
func NewGroup() *Group {
	return &Group{}
}

// Spawn launches a child and adds it to the group.
func (g *Group) Spawn(ctx context.Context, opts SpawnOpts) (*Process, error) {
	p, err := Spawn(ctx, opts)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.procs = append(g.procs, p)
	g.mu.Unlock()
	return p, nil
}

// Track adds an already-spawned Process (used when a stage needs to
// build the pipeline itself, e.g. to wire anonymous pipes between
// stages, before handing the set to the group for waiting).
func (g *Group) Track(p *Process) {
	g.mu.Lock()
	g.procs = append(g.procs, p)
	g.mu.Unlock()
}

// KillAll sends SIGKILL to every tracked process. Idempotent.
func (g *Group) KillAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.procs {
		_ = p.Kill()
	}
}

// Wait blocks until every tracked process has been reaped; no ordering
// is guaranteed within one batch. If ctx is canceled first, every member
// is SIGKILLed and Wait still blocks for the best-effort reap before
// returning ctx.Err(). No PID is left alive when Wait returns, by
// construction or by force.
func (g *Group) Wait(ctx context.Context) ([]Result, error) {
	g.mu.Lock()
	procs := append([]*Process(nil), g.procs...)
	g.mu.Unlock()

	results := make([]Result, len(procs))
	var eg errgroup.Group
	for i, p := range procs {
		i, p := i, p
		eg.Go(func() error {
			r, err := p.Wait()
			results[i] = r
			return err
		})
	}

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	select {
	case <-ctx.Done():
		g.KillAll()
		<-done
		return results, ctx.Err()
	case err := <-done:
		return results, err
	}
}
