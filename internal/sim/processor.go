package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/model"
)

// Listener is told about every applied spec.
type Listener interface {
	EffectApplied(spec *effect.Spec, target *attribute.Set, res effect.Result)
}

// task is one queued unit of work: a spec to apply or a function to run.
type task struct {
	spec *effect.Spec
	fn   func() error
	done chan error
}

// Processor is the single point through which effects reach attribute sets.
// Submit and Exec may be called from any goroutine; queued work runs in
// Drain in arrival order, one item at a time.
type Processor struct {
	resolver model.Resolver
	exec     *effect.Executor
	derived  *effect.Template

	listeners []Listener

	mu    sync.Mutex
	queue []task

	drainMu sync.Mutex
}

// NewProcessor creates a processor. derived, if not nil, is re-applied to a
// character after any spec changes its Vigor or Intelligence.
func NewProcessor(resolver model.Resolver, exec *effect.Executor, derived *effect.Template) *Processor {
	return &Processor{
		resolver: resolver,
		exec:     exec,
		derived:  derived,
		queue:    make([]task, 0, 64),
	}
}

// AddListener registers l. Not safe to call while draining.
func (p *Processor) AddListener(l Listener) {
	p.listeners = append(p.listeners, l)
}

// Submit enqueues a spec bound to its target.
func (p *Processor) Submit(spec *effect.Spec) {
	p.push(task{spec: spec})
}

// Exec queues fn behind the pending specs, drains, and waits until fn has
// run on the draining goroutine or ctx is done. Attribute writes that do not
// come from a spec (spawn-time initialisation) go through here.
// Must not be called from a hook, listener or another Exec function.
func (p *Processor) Exec(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	p.push(task{fn: fn, done: done})
	p.Drain()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued specs and functions.
func (p *Processor) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Drain runs queued work until the queue is empty, including work submitted
// while draining, and returns the number of specs applied. A nested or
// concurrent Drain returns 0; the goroutine holding the drain picks up
// everything queued before it lets go.
func (p *Processor) Drain() int {
	applied := 0
	for {
		if !p.drainMu.TryLock() {
			return applied
		}
		applied += p.drainLocked()
		p.drainMu.Unlock()

		// Work queued between the last pop and Unlock saw the lock held.
		if p.Pending() == 0 {
			return applied
		}
	}
}

func (p *Processor) drainLocked() int {
	applied := 0
	for {
		t, ok := p.pop()
		if !ok {
			return applied
		}
		if t.fn != nil {
			t.done <- t.fn()
			continue
		}
		if p.apply(t.spec) {
			applied++
		}
	}
}

// Run drains the queue every tick until ctx is canceled.
func (p *Processor) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	slog.Info("effect processor started", "tick", tick)

	for {
		select {
		case <-ctx.Done():
			p.Drain()
			slog.Info("effect processor stopping")
			return ctx.Err()

		case <-ticker.C:
			if n := p.Drain(); n > 0 {
				slog.Debug("effect tick completed", "applied", n)
			}
		}
	}
}

// Recompute queues a re-application of the derived vitals effect to c and
// waits for it. Same calling rules as Exec.
func (p *Processor) Recompute(ctx context.Context, c model.Combatant) error {
	return p.Exec(ctx, func() error { return p.recompute(c) })
}

// recompute runs on the draining goroutine.
func (p *Processor) recompute(c model.Combatant) error {
	if p.derived == nil {
		return nil
	}
	h := c.Handle()
	ctx := effect.NewContext(h, h)
	if err := ctx.SetTarget(h, h); err != nil {
		return err
	}
	if _, err := p.exec.Apply(p.derived.MakeSpec(ctx, c.PlayerLevel()), c.Attributes()); err != nil {
		return fmt.Errorf("recompute %s: %w", c.Name(), err)
	}
	return nil
}

func (p *Processor) push(t task) {
	p.mu.Lock()
	p.queue = append(p.queue, t)
	p.mu.Unlock()
}

func (p *Processor) pop() (task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return task{}, false
	}
	t := p.queue[0]
	p.queue[0] = task{}
	p.queue = p.queue[1:]
	return t, true
}

// apply reports whether spec was applied.
func (p *Processor) apply(spec *effect.Spec) bool {
	target := spec.Context().Target()
	c, err := model.ResolveCombatant(p.resolver, target)
	if err != nil {
		slog.Debug("effect dropped", "effect", spec.Name(), "target", target, "error", err)
		return false
	}

	res, err := p.exec.Apply(spec, c.Attributes())
	if err != nil {
		slog.Error("apply effect", "effect", spec.Name(), "target", c.Name(), "error", err)
		return false
	}
	for _, l := range p.listeners {
		l.EffectApplied(spec, c.Attributes(), res)
	}

	if res.Touched(attribute.Vigor) || res.Touched(attribute.Intelligence) {
		if err := p.recompute(c); err != nil {
			slog.Error("recompute derived vitals", "target", c.Name(), "error", err)
		}
	}
	return true
}
