package model

import "math"

// Vec3 описывает точку или направление в мировых координатах.
// Value type, передаётся по значению (immutable).
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// NewVec3 создаёт Vec3 с указанными координатами.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add возвращает сумму векторов.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub возвращает разность векторов (v - o).
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (v Vec3) DistanceSquared(o Vec3) float64 {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Length возвращает длину вектора.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Rotation возвращает ориентацию вектора направления.
// Нулевой вектор даёт нулевую ориентацию.
func (v Vec3) Rotation() Rotator {
	if v.X == 0 && v.Y == 0 && v.Z == 0 {
		return Rotator{}
	}
	yaw := math.Atan2(v.Y, v.X) * 180 / math.Pi
	pitch := math.Atan2(v.Z, math.Hypot(v.X, v.Y)) * 180 / math.Pi
	return Rotator{Pitch: pitch, Yaw: yaw}
}

// Rotator хранит ориентацию в градусах. Roll не используется.
type Rotator struct {
	Pitch float64
	Yaw   float64
}

// Transform задаёт позицию и ориентацию при спавне.
type Transform struct {
	Location Vec3
	Rotation Rotator
}
