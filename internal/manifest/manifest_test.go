package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuravashuk/GPF/internal/importer"
	"github.com/yuravashuk/GPF/internal/texture"
	"github.com/yuravashuk/GPF/pkg/math"
	"github.com/yuravashuk/GPF/pkg/mesh"
)

func triangleResult(t *testing.T) *importer.Result {
	t.Helper()
	src := &mesh.Source{
		Positions: []float32{0, 0, 0, 2, 0, 0, 0, 2, 0},
		Texcoords: []float32{0, 0, 0, 1, 1, 1, 0, 0},
		Corners: []mesh.Corner{
			{Position: 0, Texcoord: 1, Normal: -1},
			{Position: 1, Texcoord: 2, Normal: -1},
			{Position: 2, Texcoord: 3, Normal: -1},
		},
	}
	materials := []mesh.Material{
		{Name: "Stone", DiffuseTexture: "stone.png", BumpTexture: "stone_n.png"},
		{Name: "Bare"},
	}
	g, diag, err := mesh.Build(src, materials, mesh.BuildOptions{Name: "Tri"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	diag.Warnf("texture stone_n.png is 100x64, not a power of two")

	return &importer.Result{
		Source:      "tri.obj",
		Geometry:    g,
		Diagnostics: diag,
		TangentMode: mesh.TangentAccumulate,
		Textures: map[string]texture.Info{
			"stone_n.png": {Format: "png", Width: 100, Height: 64, Components: 4},
			"stone.png":   {Format: "tga", Width: 64, Height: 64, Components: 3, PowerOfTwo: true},
		},
	}
}

func TestFromResult(t *testing.T) {
	res := triangleResult(t)
	m := FromResult(res, "out/tri.gmsh")

	if m.Geometry.ID != res.Geometry.ID.String() {
		t.Errorf("expected id %s, got %s", res.Geometry.ID, m.Geometry.ID)
	}
	if m.Geometry.Vertices != 3 || m.Geometry.Indices != 3 || m.Geometry.Triangles != 1 {
		t.Errorf("unexpected counts %+v", m.Geometry)
	}
	if m.Geometry.TangentMode != "accumulate" {
		t.Errorf("expected tangent mode accumulate, got %s", m.Geometry.TangentMode)
	}
	if m.Bounds.Center != [3]float32{1, 1, 0} || m.Bounds.Dimensions != [3]float32{2, 2, 0} {
		t.Errorf("unexpected bounds %+v", m.Bounds)
	}

	if len(m.Materials) != 2 || m.Materials[0].Name != "Bare" || m.Materials[1].Name != "Stone" {
		t.Fatalf("expected materials sorted by name, got %+v", m.Materials)
	}
	if m.Materials[0].Textures != nil {
		t.Errorf("expected no textures for Bare, got %v", m.Materials[0].Textures)
	}
	if m.Materials[1].Textures["diffuse"] != "stone.png" || m.Materials[1].Textures["bump"] != "stone_n.png" {
		t.Errorf("unexpected texture slots %v", m.Materials[1].Textures)
	}

	if len(m.Textures) != 2 || m.Textures[0].Name != "stone.png" {
		t.Errorf("expected textures sorted by name, got %+v", m.Textures)
	}
	if len(m.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", m.Warnings)
	}
}

func TestWriteRead(t *testing.T) {
	res := triangleResult(t)
	m := FromResult(res, "tri.gmsh")
	path := filepath.Join(t.TempDir(), "sub", PathFor("tri.gmsh"))

	if err := Write(path, m); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	for _, want := range []string{"[geometry]", "[bounds]", "[[materials]]", "[[textures]]", "warnings"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("manifest missing %q:\n%s", want, data)
		}
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Geometry != m.Geometry {
		t.Errorf("geometry section changed: %+v vs %+v", got.Geometry, m.Geometry)
	}
	if got.Bounds != m.Bounds {
		t.Errorf("bounds changed: %+v vs %+v", got.Bounds, m.Bounds)
	}
	if len(got.Materials) != 2 || got.Materials[1].Textures["bump"] != "stone_n.png" {
		t.Errorf("materials changed: %+v", got.Materials)
	}
	if !Vec3(got.Bounds.Center).ApproxEqual(math.Vec3{X: 1, Y: 1}, 1e-6) {
		t.Errorf("unexpected center %v", got.Bounds.Center)
	}
	if got.Bounds.Empty || got.Bounds.AABB() != res.Geometry.Bounds {
		t.Errorf("bounds did not survive the round trip: %+v", got.Bounds)
	}
}

func TestWriteEmptyBounds(t *testing.T) {
	g, diag, err := mesh.Build(&mesh.Source{}, nil, mesh.BuildOptions{Name: "Empty"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	res := &importer.Result{Source: "empty.obj", Geometry: g, Diagnostics: diag}

	path := filepath.Join(t.TempDir(), "empty.toml")
	if err := Write(path, FromResult(res, "")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if !got.Bounds.Empty {
		t.Errorf("expected empty bounds, got %+v", got.Bounds)
	}
	if got.Bounds.Min != ([3]float32{}) || got.Bounds.Max != ([3]float32{}) {
		t.Errorf("expected zero corners for an empty box, got %v %v", got.Bounds.Min, got.Bounds.Max)
	}
	if box := got.Bounds.AABB(); !box.IsEmpty() || box.Min.IsFinite() {
		t.Errorf("expected the empty sentinel box back, got %v..%v", box.Min, box.Max)
	}
	if got.Geometry.Output != "" {
		t.Errorf("expected no output, got %q", got.Geometry.Output)
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[geometry\nname = "), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestPathFor(t *testing.T) {
	if got := PathFor("out/tri.gmsh"); got != "out/tri.toml" {
		t.Errorf("PathFor = %q", got)
	}
}
