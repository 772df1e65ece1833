package math

// Box3 is an axis-aligned bounding box.
// A zero Box3 is not empty; use EmptyBox3 as the starting value for Extend.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox3 returns an inverted box that any Extend call will replace.
func EmptyBox3() Box3 {
	const big = float32(3.4e38)
	return Box3{
		Min: Vec3{big, big, big},
		Max: Vec3{-big, -big, -big},
	}
}

// IsEmpty reports whether no point has been added.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Extend grows the box to include p.
func (b *Box3) Extend(p Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// Center returns the box centroid.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// MaxDim returns the largest extent.
func (b Box3) MaxDim() float32 {
	s := b.Size()
	m := s.X
	if s.Y > m {
		m = s.Y
	}
	if s.Z > m {
		m = s.Z
	}
	return m
}

// AABB returns the box as [minX, minY, minZ, maxX, maxY, maxZ].
func (b Box3) AABB() [6]float32 {
	return [6]float32{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z}
}
