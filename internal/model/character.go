package model

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/udisondev/aurafx/internal/ability"
	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/gametag"
)

// Character описывает живое существо мира (игрок или NPC).
// Владеет своим набором атрибутов и системой способностей.
type Character struct {
	*WorldObject // embedded

	characterID int64
	level       atomic.Int32

	attrs     *attribute.Set
	abilities *ability.System

	authority    bool
	socketOffset Vec3

	deathOnce sync.Once // protects Die from double execution
	dead      atomic.Bool
	onDeath   func(c *Character)

	presenter DamagePresenter

	tagsMu    sync.RWMutex
	ownedTags gametag.Set
}

var (
	_ Combatant       = (*Character)(nil)
	_ DamagePresenter = (*Character)(nil)
	_ AuthorityHolder = (*Character)(nil)
	_ TagOwner        = (*Character)(nil)
)

// CharacterOption настраивает Character при создании.
type CharacterOption func(c *Character)

// WithAuthority помечает персонажа как серверный (authoritative).
func WithAuthority() CharacterOption {
	return func(c *Character) { c.authority = true }
}

// WithSocketOffset задаёт смещение боевого сокета относительно позиции.
func WithSocketOffset(offset Vec3) CharacterOption {
	return func(c *Character) { c.socketOffset = offset }
}

// WithOnDeath задаёт обработчик смерти (ragdoll и анимации остаются внешнему коду).
func WithOnDeath(fn func(c *Character)) CharacterOption {
	return func(c *Character) { c.onDeath = fn }
}

// WithPresenter задаёт слой отображения плавающих цифр урона.
func WithPresenter(p DamagePresenter) CharacterOption {
	return func(c *Character) { c.presenter = p }
}

// NewCharacter создаёт персонажа со всеми известными атрибутами в нуле.
func NewCharacter(characterID int64, name string, loc Vec3, level int32, opts ...CharacterOption) *Character {
	c := &Character{
		WorldObject: NewWorldObject(name, loc),
		characterID: characterID,
		attrs:       attribute.NewCharacterSet(characterID),
		abilities:   ability.NewSystem(name),
	}
	c.level.Store(level)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CharacterID возвращает постоянный ID персонажа (0 для NPC).
func (c *Character) CharacterID() int64 {
	return c.characterID
}

// PlayerLevel возвращает уровень персонажа.
func (c *Character) PlayerLevel() int32 {
	return c.level.Load()
}

// SetLevel устанавливает уровень персонажа.
func (c *Character) SetLevel(level int32) {
	c.level.Store(level)
}

// Attributes возвращает набор атрибутов персонажа.
func (c *Character) Attributes() *attribute.Set {
	return c.attrs
}

// Abilities возвращает систему способностей персонажа.
func (c *Character) Abilities() *ability.System {
	return c.abilities
}

// HasAuthority сообщает, выполняется ли персонаж на сервере.
func (c *Character) HasAuthority() bool {
	return c.authority
}

// CombatSocketLocation возвращает точку вылета снарядов.
func (c *Character) CombatSocketLocation() Vec3 {
	return c.Location().Add(c.socketOffset)
}

// TryActivateAbilitiesByTag активирует способности, помеченные всеми тегами.
func (c *Character) TryActivateAbilitiesByTag(tags gametag.Set) {
	c.abilities.TryActivateAbilitiesByTag(tags)
}

// Die обрабатывает смерть. Выполняется не более одного раза.
func (c *Character) Die() {
	c.deathOnce.Do(func() {
		c.dead.Store(true)
		slog.Info("character died", "character", c.Name(), "handle", c.Handle())
		if c.onDeath != nil {
			c.onDeath(c)
		}
	})
}

// IsDead проверяет, обработана ли смерть персонажа.
func (c *Character) IsDead() bool {
	return c.dead.Load()
}

// ShowDamageNumber передаёт плавающую цифру урона в слой отображения.
// Без presenter ничего не делает.
func (c *Character) ShowDamageNumber(amount float64, target Handle, blocked, critical bool) {
	if c.presenter == nil {
		return
	}
	c.presenter.ShowDamageNumber(amount, target, blocked, critical)
}

// InitVitals заполняет первичные атрибуты и выставляет Health/Mana в максимум.
// Используется при создании персонажа, до первого эффекта.
func (c *Character) InitVitals(vigor, intelligence, maxHealth, maxMana float64) error {
	inits := []struct {
		id attribute.ID
		v  float64
	}{
		{attribute.Vigor, vigor},
		{attribute.Intelligence, intelligence},
		{attribute.MaxHealth, maxHealth},
		{attribute.MaxMana, maxMana},
		{attribute.Health, maxHealth},
		{attribute.Mana, maxMana},
	}
	for _, in := range inits {
		if err := c.attrs.Init(in.id, in.v); err != nil {
			return err
		}
	}
	return nil
}

// AddOwnedTag добавляет собственный тег персонажа (состояние, класс и т.п.).
func (c *Character) AddOwnedTag(id gametag.ID) {
	c.tagsMu.Lock()
	defer c.tagsMu.Unlock()
	c.ownedTags.Add(id)
}

// OwnedTags возвращает копию собственных тегов.
func (c *Character) OwnedTags() gametag.Set {
	c.tagsMu.RLock()
	defer c.tagsMu.RUnlock()
	return c.ownedTags.Clone()
}
