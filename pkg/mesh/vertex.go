// Package mesh turns a raw parsed mesh into renderer-ready indexed geometry:
// corners are welded into unique vertices, positions are folded into a
// bounding box, and a tangent basis is derived from the texture mapping.
package mesh

import "github.com/yuravashuk/GPF/pkg/math"

// Vertex is a welded vertex with a tangent-space basis.
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	Texcoord  math.Vec2
	Tangent   math.Vec3
	Bitangent math.Vec3
}

// VertexKey is the identity of a vertex during welding.
// Tangent and bitangent are computed after welding and are not part of it.
type VertexKey struct {
	Position math.Vec3
	Normal   math.Vec3
	Texcoord math.Vec2
}

// Key returns the welding identity of v.
func (v Vertex) Key() VertexKey {
	return VertexKey{Position: v.Position, Normal: v.Normal, Texcoord: v.Texcoord}
}

// Default attribute values substituted for absent references.
var (
	DefaultTexcoord = math.Vec2{X: 1, Y: 1}
	// DefaultNormal is not unit length.
	DefaultNormal = math.Vec3{X: 1, Y: 1, Z: 1}
)
