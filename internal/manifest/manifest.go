// Package manifest writes a human-readable TOML summary next to compiled
// geometry, so asset pipelines can inspect an import without decoding it.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/yuravashuk/GPF/internal/importer"
	"github.com/yuravashuk/GPF/pkg/math"
	"github.com/yuravashuk/GPF/pkg/mesh"
)

// Ext is the manifest file extension.
const Ext = ".toml"

// Manifest summarizes one import.
type Manifest struct {
	Warnings  []string   `toml:"warnings"`
	Geometry  Geometry   `toml:"geometry"`
	Bounds    Bounds     `toml:"bounds"`
	Materials []Material `toml:"materials"`
	Textures  []Texture  `toml:"textures"`
}

// Geometry holds identity and counts.
type Geometry struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Source      string `toml:"source"`
	Output      string `toml:"output,omitempty"`
	Vertices    uint32 `toml:"vertices"`
	Indices     uint32 `toml:"indices"`
	Triangles   int    `toml:"triangles"`
	TangentMode string `toml:"tangent_mode"`
}

// Bounds is the axis-aligned box of the geometry.
// TOML has no float32 infinity, so an empty box is written as Empty with
// zero corners.
type Bounds struct {
	Empty      bool       `toml:"empty"`
	Min        [3]float32 `toml:"min"`
	Max        [3]float32 `toml:"max"`
	Center     [3]float32 `toml:"center"`
	Dimensions [3]float32 `toml:"dimensions"`
}

// Material lists one material's texture references by slot.
type Material struct {
	Name     string            `toml:"name"`
	Textures map[string]string `toml:"textures,omitempty"`
}

// Texture is the probe result for one referenced texture.
type Texture struct {
	Name       string `toml:"name"`
	Format     string `toml:"format"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Components int    `toml:"components"`
	PowerOfTwo bool   `toml:"power_of_two"`
}

// FromResult builds the manifest for an import written to output.
// Output may be empty when the geometry was not written.
func FromResult(res *importer.Result, output string) Manifest {
	g := res.Geometry
	m := Manifest{
		Geometry: Geometry{
			ID:          g.ID.String(),
			Name:        g.Name,
			Source:      res.Source,
			Output:      output,
			Vertices:    g.VertexCount,
			Indices:     g.IndexCount,
			Triangles:   g.TriangleCount(),
			TangentMode: res.TangentMode.String(),
		},
		Bounds: boundsOf(g.Bounds),
	}
	if res.Diagnostics != nil {
		m.Warnings = append(m.Warnings, res.Diagnostics.Warnings...)
	}

	names := make([]string, 0, len(g.Materials))
	for name := range g.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mat := g.Materials[name]
		entry := Material{Name: name}
		for _, slot := range mat.Textures() {
			if entry.Textures == nil {
				entry.Textures = make(map[string]string)
			}
			entry.Textures[slot.Slot] = slot.Name
		}
		m.Materials = append(m.Materials, entry)
	}

	for name, info := range res.Textures {
		m.Textures = append(m.Textures, Texture{
			Name:       name,
			Format:     info.Format,
			Width:      info.Width,
			Height:     info.Height,
			Components: info.Components,
			PowerOfTwo: info.PowerOfTwo,
		})
	}
	sort.Slice(m.Textures, func(i, j int) bool { return m.Textures[i].Name < m.Textures[j].Name })

	return m
}

func boundsOf(b mesh.AABB) Bounds {
	if b.IsEmpty() {
		return Bounds{Empty: true}
	}
	return Bounds{
		Min:        b.Min.Array(),
		Max:        b.Max.Array(),
		Center:     b.Center.Array(),
		Dimensions: b.Dimensions.Array(),
	}
}

// AABB converts the section back to a box. An empty section yields
// mesh.EmptyAABB.
func (b Bounds) AABB() mesh.AABB {
	if b.Empty {
		return mesh.EmptyAABB()
	}
	return mesh.AABB{
		Min:        Vec3(b.Min),
		Max:        Vec3(b.Max),
		Center:     Vec3(b.Center),
		Dimensions: Vec3(b.Dimensions),
	}
}

// PathFor returns the manifest path for a compiled geometry file.
func PathFor(geometryPath string) string {
	return strings.TrimSuffix(geometryPath, filepath.Ext(geometryPath)) + Ext
}

// Write encodes m as TOML to path.
func Write(path string, m Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Read decodes a manifest written by Write.
func Read(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := toml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	return m, nil
}

// Vec3 converts a manifest triple back to a vector.
func Vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}
