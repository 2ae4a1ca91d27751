package mathutil

// Box3 is an axis-aligned bounding box in 3D space, defined by its minimum
// and maximum corner.
type Box3 struct {
	Min, Max Vector3
}

// IsZero reports whether both corners of b are the zero vector.
func (b Box3) IsZero() bool {
	return b.Min.IsZero() && b.Max.IsZero()
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Contains reports whether v lies within b, inclusive of the boundary.
func (b Box3) Contains(v Vector3) bool {
	return v.X >= b.Min.X && v.X <= b.Max.X &&
		v.Y >= b.Min.Y && v.Y <= b.Max.Y &&
		v.Z >= b.Min.Z && v.Z <= b.Max.Z
}

// Overlaps reports whether b and o share any volume.
func (b Box3) Overlaps(o Box3) bool {
	if (b.Min.X < o.Min.X && b.Max.X < o.Min.X) || (b.Min.X > o.Max.X && b.Max.X > o.Max.X) {
		return false
	}
	if (b.Min.Y < o.Min.Y && b.Max.Y < o.Min.Y) || (b.Min.Y > o.Max.Y && b.Max.Y > o.Max.Y) {
		return false
	}
	if (b.Min.Z < o.Min.Z && b.Max.Z < o.Min.Z) || (b.Min.Z > o.Max.Z && b.Max.Z > o.Max.Z) {
		return false
	}
	return true
}

// Intersect returns the bounding box of the overlapping volume of b and o.
func (b Box3) Intersect(o Box3) Box3 {
	return Box3{
		Min: Vector3{maxf(b.Min.X, o.Min.X), maxf(b.Min.Y, o.Min.Y), maxf(b.Min.Z, o.Min.Z)},
		Max: Vector3{minf(b.Max.X, o.Max.X), minf(b.Max.Y, o.Max.Y), minf(b.Max.Z, o.Max.Z)},
	}
}
