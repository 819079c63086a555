package mesh

import "github.com/google/uuid"

// Geometry is renderer-ready indexed geometry.
//
// It is populated once by Build and treated as immutable afterwards. Device
// buffers are created by the rendering backend and are not tracked here.
type Geometry struct {
	ID   uuid.UUID
	Name string

	Vertices []Vertex
	Indices  []uint32

	VertexCount uint32
	IndexCount  uint32

	Materials map[string]Material
	Bounds    AABB
}

// NewGeometry wraps welded arrays and caches their counts.
func NewGeometry(name string, vertices []Vertex, indices []uint32, bounds AABB) *Geometry {
	return &Geometry{
		ID:          uuid.New(),
		Name:        name,
		Vertices:    vertices,
		Indices:     indices,
		VertexCount: uint32(len(vertices)),
		IndexCount:  uint32(len(indices)),
		Materials:   make(map[string]Material),
		Bounds:      bounds,
	}
}

// AddMaterials folds materials into the table keyed by name.
// A name that is already present keeps its first descriptor.
// Returns the names that were skipped as duplicates.
func (g *Geometry) AddMaterials(materials []Material) []string {
	if g.Materials == nil {
		g.Materials = make(map[string]Material, len(materials))
	}
	var skipped []string
	for _, m := range materials {
		if _, ok := g.Materials[m.Name]; ok {
			skipped = append(skipped, m.Name)
			continue
		}
		g.Materials[m.Name] = m
	}
	return skipped
}

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int {
	return int(g.IndexCount) / 3
}
