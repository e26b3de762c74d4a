package model

import (
	"github.com/udisondev/aurafx/internal/attribute"
	"github.com/udisondev/aurafx/internal/gametag"
)

// Combatant описывает минимальный набор операций участника боя.
// Реализуется статически типами, которые могут получать и наносить урон.
type Combatant interface {
	Actor

	PlayerLevel() int32
	CombatSocketLocation() Vec3
	Die()
	TryActivateAbilitiesByTag(tags gametag.Set)

	Attributes() *attribute.Set
}

// DamagePresenter показывает источнику урона плавающие цифры.
// Опционален: у NPC его нет.
type DamagePresenter interface {
	ShowDamageNumber(amount float64, target Handle, blocked, critical bool)
}

// AuthorityHolder сообщает, выполняется ли логика объекта на сервере.
type AuthorityHolder interface {
	HasAuthority() bool
}

// TagOwner отдаёт собственные (owned) теги актора, агрегируемые в эффекты.
type TagOwner interface {
	OwnedTags() gametag.Set
}
