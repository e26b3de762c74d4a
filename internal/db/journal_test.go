package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/effect"
	"github.com/udisondev/aurafx/internal/model"
)

type fakeSaver struct {
	saved map[int64]map[attribute.ID]float64
	fail  map[int64]bool
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{saved: make(map[int64]map[attribute.ID]float64), fail: make(map[int64]bool)}
}

func (f *fakeSaver) SaveValues(_ context.Context, charID int64, values map[attribute.ID]float64) error {
	if f.fail[charID] {
		return errors.New("connection reset")
	}
	cur, ok := f.saved[charID]
	if !ok {
		cur = make(map[attribute.ID]float64)
		f.saved[charID] = cur
	}
	for id, v := range values {
		cur[id] = v
	}
	return nil
}

func TestAttributeJournal_KeepsLatestValue(t *testing.T) {
	saver := newFakeSaver()
	j := NewAttributeJournal(saver)

	s := attribute.NewCharacterSet(11)
	s.Subscribe(j)
	require.NoError(t, s.Set(attribute.MaxHealth, 100))
	require.NoError(t, s.Set(attribute.Health, 80))
	require.NoError(t, s.Set(attribute.Health, 30))
	require.NoError(t, s.Set(attribute.IncomingDamage, 5))

	assert.Equal(t, 1, j.Dirty())
	require.NoError(t, j.Flush(context.Background()))

	assert.Equal(t, map[attribute.ID]float64{
		attribute.MaxHealth: 100,
		attribute.Health:    30,
	}, saver.saved[11])
	assert.Equal(t, 0, j.Dirty())
}

func TestAttributeJournal_RequeuesFailedCharacters(t *testing.T) {
	saver := newFakeSaver()
	saver.fail[2] = true
	j := NewAttributeJournal(saver)

	j.AttributeChanged(1, attribute.Change{Attribute: attribute.Vigor, New: 10})
	j.AttributeChanged(2, attribute.Change{Attribute: attribute.Vigor, New: 20})

	err := j.Flush(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 10.0, saver.saved[1][attribute.Vigor])
	assert.Equal(t, 1, j.Dirty())

	// A newer value wins over the requeued one.
	j.AttributeChanged(2, attribute.Change{Attribute: attribute.Vigor, New: 25})
	saver.fail[2] = false
	require.NoError(t, j.Flush(context.Background()))
	assert.Equal(t, 25.0, saver.saved[2][attribute.Vigor])
}

type fakeAppender struct {
	targets []int64
	err     error
}

func (f *fakeAppender) Append(_ context.Context, targetID int64, _ *effect.Spec) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.targets = append(f.targets, targetID)
	return uuid.New(), nil
}

func testSpec() *effect.Spec {
	tmpl := &effect.Template{Name: "Bless"}
	return tmpl.MakeSpec(effect.NewContext(model.Handle{}, model.Handle{}), 1)
}

func TestEffectRecorder_FlushInOrder(t *testing.T) {
	app := &fakeAppender{}
	r := NewEffectRecorder(app, 8)

	r.EffectApplied(testSpec(), attribute.NewSet(3), effect.Result{})
	r.EffectApplied(testSpec(), attribute.NewSet(1), effect.Result{})

	require.NoError(t, r.Flush(context.Background()))
	assert.Equal(t, []int64{3, 1}, app.targets)

	require.NoError(t, r.Flush(context.Background()))
	assert.Len(t, app.targets, 2, "flushed records are not written twice")
}

func TestEffectRecorder_DropsOverLimit(t *testing.T) {
	app := &fakeAppender{}
	r := NewEffectRecorder(app, 1)

	r.EffectApplied(testSpec(), attribute.NewSet(1), effect.Result{})
	r.EffectApplied(testSpec(), attribute.NewSet(2), effect.Result{})

	require.NoError(t, r.Flush(context.Background()))
	assert.Equal(t, []int64{1}, app.targets)
}

func TestEffectRecorder_AppendError(t *testing.T) {
	app := &fakeAppender{err: errors.New("db down")}
	r := NewEffectRecorder(app, 4)
	r.EffectApplied(testSpec(), attribute.NewSet(1), effect.Result{})

	assert.ErrorIs(t, r.Flush(context.Background()), app.err)
}
