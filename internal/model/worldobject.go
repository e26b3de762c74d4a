package model

import "sync"

// WorldObject является базой для всех игровых объектов в мире.
// Все объекты имеют Handle, Name и Location.
type WorldObject struct {
	handle   Handle
	name     string
	location Vec3

	mu sync.RWMutex
}

// NewWorldObject создаёт объект без handle. Handle выдаётся при регистрации в мире.
func NewWorldObject(name string, loc Vec3) *WorldObject {
	return &WorldObject{
		name:     name,
		location: loc,
	}
}

// Handle возвращает слабую ссылку на объект (нулевую до регистрации).
func (w *WorldObject) Handle() Handle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.handle
}

// BindHandle привязывает handle. Вызывается только реестром мира.
func (w *WorldObject) BindHandle(h Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handle = h
}

// Name возвращает имя объекта.
func (w *WorldObject) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// Location возвращает копию координат объекта (value type).
func (w *WorldObject) Location() Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.location
}

// SetLocation устанавливает новые координаты объекта.
func (w *WorldObject) SetLocation(loc Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.location = loc
}
