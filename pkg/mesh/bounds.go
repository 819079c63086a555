package mesh

import (
	"github.com/chewxy/math32"

	"github.com/yuravashuk/GPF/pkg/math"
)

// AABB is an axis-aligned bounding box.
// Center and Dimensions are derived by Finalize.
type AABB struct {
	Min        math.Vec3
	Max        math.Vec3
	Center     math.Vec3
	Dimensions math.Vec3
}

// EmptyAABB returns a box with Min at +Inf and Max at -Inf, so that folding
// any real point tightens it.
func EmptyAABB() AABB {
	return AABB{
		Min: math.Splat3(math32.Inf(1)),
		Max: math.Splat3(math32.Inf(-1)),
	}
}

// IsEmpty reports whether no point has been folded into the box.
func (b AABB) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Fold returns the box expanded to include p.
func (b AABB) Fold(p math.Vec3) AABB {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
	return b
}

// Merge returns the box expanded to include other.
func (b AABB) Merge(other AABB) AABB {
	if other.IsEmpty() {
		return b
	}
	return b.Fold(other.Min).Fold(other.Max)
}

// Finalize returns the box with Center and Dimensions derived from Min and Max.
// An empty box keeps zero Center and Dimensions.
func (b AABB) Finalize() AABB {
	if b.IsEmpty() {
		b.Center = math.Vec3{}
		b.Dimensions = math.Vec3{}
		return b
	}
	b.Dimensions = b.Max.Sub(b.Min)
	b.Center = b.Max.Add(b.Min).Scale(0.5)
	return b
}

// Contains reports whether p lies inside the box, boundary included.
func (b AABB) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// BoundsOf folds every vertex position into a fresh box and finalizes it.
func BoundsOf(vertices []Vertex) AABB {
	b := EmptyAABB()
	for i := range vertices {
		b = b.Fold(vertices[i].Position)
	}
	return b.Finalize()
}
