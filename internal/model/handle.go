package model

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleReference возвращается, когда handle указывает на уничтоженный объект.
	ErrStaleReference = errors.New("stale actor reference")
	// ErrMissingCapability возвращается, когда актор не реализует нужный интерфейс.
	ErrMissingCapability = errors.New("missing capability")
)

// Handle является слабой ссылкой на объект мира: индекс слота + поколение.
// Handle не владеет объектом; перед использованием его нужно разрешить через
// реестр, который сверяет поколение (объект мог быть уничтожен).
type Handle struct {
	Index uint32
	Gen   uint32
}

// IsZero проверяет, что handle не указывает ни на что.
func (h Handle) IsZero() bool {
	return h.Gen == 0
}

// String возвращает "index:gen".
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index, h.Gen)
}

// Actor описывает любой объект мира, на который можно сослаться по handle.
type Actor interface {
	Handle() Handle
	Name() string
}

// Resolver разрешает слабые ссылки в живые объекты.
type Resolver interface {
	// Resolve возвращает объект, если он ещё жив.
	Resolve(h Handle) (Actor, bool)
}

// ResolveCombatant разрешает handle и проверяет боевую способность актора.
// Ошибки: ErrStaleReference (объект уничтожен), ErrMissingCapability
// (объект жив, но не является Combatant).
func ResolveCombatant(r Resolver, h Handle) (Combatant, error) {
	if r == nil || h.IsZero() {
		return nil, fmt.Errorf("actor %s: %w", h, ErrStaleReference)
	}
	a, ok := r.Resolve(h)
	if !ok {
		return nil, fmt.Errorf("actor %s: %w", h, ErrStaleReference)
	}
	c, ok := a.(Combatant)
	if !ok {
		return nil, fmt.Errorf("actor %s (%s) is not a combatant: %w", h, a.Name(), ErrMissingCapability)
	}
	return c, nil
}
