package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/effect"
)

// AttributeSaver persists a subset of a character's attributes.
type AttributeSaver interface {
	SaveValues(ctx context.Context, charID int64, values map[attribute.ID]float64) error
}

// AttributeJournal collects attribute changes per character and writes the
// latest values on Flush. Meta attributes are ignored.
type AttributeJournal struct {
	saver AttributeSaver

	mu    sync.Mutex
	dirty map[int64]map[attribute.ID]float64
}

var _ attribute.Observer = (*AttributeJournal)(nil)

// NewAttributeJournal creates a journal writing through saver.
func NewAttributeJournal(saver AttributeSaver) *AttributeJournal {
	return &AttributeJournal{
		saver: saver,
		dirty: make(map[int64]map[attribute.ID]float64),
	}
}

// AttributeChanged implements attribute.Observer.
func (j *AttributeJournal) AttributeChanged(owner int64, c attribute.Change) {
	if c.Attribute.IsMeta() {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	vals, ok := j.dirty[owner]
	if !ok {
		vals = make(map[attribute.ID]float64, 4)
		j.dirty[owner] = vals
	}
	vals[c.Attribute] = c.New
}

// Dirty returns the number of characters with unsaved changes.
func (j *AttributeJournal) Dirty() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.dirty)
}

// Flush writes all pending changes. Characters that fail to save stay
// pending unless newer values arrived meanwhile.
func (j *AttributeJournal) Flush(ctx context.Context) error {
	j.mu.Lock()
	pending := j.dirty
	j.dirty = make(map[int64]map[attribute.ID]float64, len(pending))
	j.mu.Unlock()

	var errs []error
	for owner, vals := range pending {
		if err := j.saver.SaveValues(ctx, owner, vals); err != nil {
			errs = append(errs, fmt.Errorf("character %d: %w", owner, err))
			j.requeue(owner, vals)
		}
	}

	if len(pending) > 0 {
		slog.Debug("attribute journal flushed", "characters", len(pending), "failed", len(errs))
	}
	return errors.Join(errs...)
}

func (j *AttributeJournal) requeue(owner int64, vals map[attribute.ID]float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	cur, ok := j.dirty[owner]
	if !ok {
		j.dirty[owner] = maps.Clone(vals)
		return
	}
	for id, v := range vals {
		if _, newer := cur[id]; !newer {
			cur[id] = v
		}
	}
}

// EffectAppender stores an applied effect spec.
type EffectAppender interface {
	Append(ctx context.Context, targetID int64, spec *effect.Spec) (uuid.UUID, error)
}

type effectRecord struct {
	targetID int64
	spec     *effect.Spec
}

// EffectRecorder buffers applied specs and writes them to the effect log on
// Flush, so the simulation tick never waits on the database.
type EffectRecorder struct {
	appender EffectAppender
	limit    int

	mu      sync.Mutex
	pending []effectRecord
	dropped int
}

// NewEffectRecorder creates a recorder buffering up to limit specs between
// flushes. Specs beyond the limit are dropped and counted.
func NewEffectRecorder(appender EffectAppender, limit int) *EffectRecorder {
	return &EffectRecorder{
		appender: appender,
		limit:    limit,
		pending:  make([]effectRecord, 0, limit),
	}
}

// EffectApplied buffers spec applied to target.
func (r *EffectRecorder) EffectApplied(spec *effect.Spec, target *attribute.Set, _ effect.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) >= r.limit {
		r.dropped++
		return
	}
	r.pending = append(r.pending, effectRecord{targetID: target.Owner(), spec: spec})
}

// Flush writes buffered specs in application order.
func (r *EffectRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	pending := r.pending
	dropped := r.dropped
	r.pending = make([]effectRecord, 0, r.limit)
	r.dropped = 0
	r.mu.Unlock()

	if dropped > 0 {
		slog.Warn("effect log overflow", "dropped", dropped)
	}

	for i, rec := range pending {
		if _, err := r.appender.Append(ctx, rec.targetID, rec.spec); err != nil {
			return fmt.Errorf("effect log: %d of %d written: %w", i, len(pending), err)
		}
	}
	return nil
}

// Flusher is a buffered writer drained periodically.
type Flusher interface {
	Flush(ctx context.Context) error
}

// RunFlusher flushes every interval until ctx is canceled, then flushes
// once more with a fresh deadline.
func RunFlusher(ctx context.Context, interval time.Duration, flushers ...Flusher) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	flushAll := func(ctx context.Context) {
		for _, f := range flushers {
			if err := f.Flush(ctx); err != nil {
				slog.Error("flush failed", "error", err)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			flushAll(final)
			cancel()
			slog.Info("persistence flusher stopping")
			return ctx.Err()

		case <-ticker.C:
			flushAll(ctx)
		}
	}
}
