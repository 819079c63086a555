package importer

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yuravashuk/GPF/internal/config"
	"github.com/yuravashuk/GPF/pkg/formats"
	"github.com/yuravashuk/GPF/pkg/math"
	"github.com/yuravashuk/GPF/pkg/mesh"
)

const quadOBJ = `mtllib quad.mtl
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl Stone
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const quadMTL = `newmtl Stone
Kd 0.8 0.8 0.8
map_Kd textures\stone.png
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// quadDir writes the quad fixture and returns the OBJ path.
func quadDir(t *testing.T, mtl string, texW, texH int) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "quad.obj"), []byte(quadOBJ))
	if mtl != "" {
		writeFile(t, filepath.Join(dir, "quad.mtl"), []byte(mtl))
	}
	if texW > 0 {
		writeFile(t, filepath.Join(dir, "textures", "stone.png"), pngBytes(t, texW, texH))
	}
	return filepath.Join(dir, "quad.obj")
}

func acceptAllTexcoords() *config.Config {
	cfg := config.Default()
	cfg.Import.AcceptZeroTexcoord = true
	return cfg
}

func TestImportFile(t *testing.T) {
	path := quadDir(t, quadMTL, 64, 64)

	res, err := New(acceptAllTexcoords(), nil).ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}

	g := res.Geometry
	if g.Name != "Quad" {
		t.Errorf("expected name Quad, got %q", g.Name)
	}
	if g.VertexCount != 4 || g.IndexCount != 6 {
		t.Errorf("expected 4 vertices and 6 indices, got %d/%d", g.VertexCount, g.IndexCount)
	}
	stone, ok := g.Materials["Stone"]
	if !ok {
		t.Fatalf("expected material Stone, got %v", g.Materials)
	}
	if stone.DiffuseTexture != "textures/stone.png" {
		t.Errorf("expected normalized texture path, got %q", stone.DiffuseTexture)
	}
	info, ok := res.Textures["textures/stone.png"]
	if !ok {
		t.Fatalf("texture was not probed: %v", res.Textures)
	}
	if info.Format != "png" || info.Width != 64 || !info.PowerOfTwo {
		t.Errorf("unexpected texture info %+v", info)
	}
	if !res.Diagnostics.Empty() {
		t.Errorf("unexpected warnings %v", res.Diagnostics.Warnings)
	}
	if res.TangentMode != mesh.TangentOverwrite {
		t.Errorf("expected overwrite mode, got %v", res.TangentMode)
	}

	// The quad lies in the XY plane with U along X.
	for i, v := range g.Vertices {
		if !v.Tangent.ApproxEqual(math.Vec3{X: 1}, 1e-5) {
			t.Errorf("vertex %d: tangent %v, want +X", i, v.Tangent)
		}
	}
}

func TestImportFileWarnings(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		mtl      string
		texW     int
		texH     int
		contains []string
	}{
		{
			name:     "first texcoord treated as absent",
			cfg:      config.Default(),
			mtl:      quadMTL,
			texW:     64,
			texH:     64,
			contains: []string{"reference the first texcoord"},
		},
		{
			name:     "missing material library",
			cfg:      acceptAllTexcoords(),
			contains: []string{"material library quad.mtl", `material "Stone" is used but not defined`},
		},
		{
			name:     "missing texture",
			cfg:      acceptAllTexcoords(),
			mtl:      quadMTL,
			contains: []string{"textures/stone.png not found"},
		},
		{
			name:     "non power of two texture",
			cfg:      acceptAllTexcoords(),
			mtl:      quadMTL,
			texW:     100,
			texH:     64,
			contains: []string{"100x64, not a power of two"},
		},
		{
			name:     "duplicate material",
			cfg:      acceptAllTexcoords(),
			mtl:      quadMTL + "newmtl Stone\nmap_Kd other.png\n",
			texW:     64,
			texH:     64,
			contains: []string{`duplicate material "Stone" ignored`},
		},
		{
			name:     "malformed material library",
			cfg:      acceptAllTexcoords(),
			mtl:      "newmtl Stone\nKd red\n",
			contains: []string{"material library quad.mtl", "invalid number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := quadDir(t, tt.mtl, tt.texW, tt.texH)

			core, logs := observer.New(zapcore.WarnLevel)
			res, err := New(tt.cfg, zap.New(core)).ImportFile(path)
			if err != nil {
				t.Fatalf("ImportFile failed: %v", err)
			}

			all := strings.Join(res.Diagnostics.Warnings, "\n")
			for _, want := range tt.contains {
				if !strings.Contains(all, want) {
					t.Errorf("expected warning containing %q, got:\n%s", want, all)
				}
			}
			if logs.Len() != len(res.Diagnostics.Warnings) {
				t.Errorf("expected every warning logged, got %d logs for %d warnings",
					logs.Len(), len(res.Diagnostics.Warnings))
			}
		})
	}
}

func TestImportFileDuplicateKeepsFirst(t *testing.T) {
	path := quadDir(t, quadMTL+"newmtl Stone\nmap_Kd other.png\n", 64, 64)

	res, err := New(acceptAllTexcoords(), nil).ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if got := res.Geometry.Materials["Stone"].DiffuseTexture; got != "textures/stone.png" {
		t.Errorf("expected first definition to win, got %q", got)
	}
}

func TestImportFileErrors(t *testing.T) {
	tests := []struct {
		name string
		obj  string
		want error
	}{
		{"syntax", "v 1 2\n", formats.ErrSyntax},
		{"position out of range", "v 0 0 0\nf 1 2 3\n", mesh.ErrPositionOutOfRange},
		{"normal out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//2 3//1\n", mesh.ErrNormalOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.obj")
			writeFile(t, path, []byte(tt.obj))

			if _, err := New(nil, nil).ImportFile(path); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := New(nil, nil).ImportFile(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImportFileNameEncoding(t *testing.T) {
	dir := t.TempDir()
	hangul := string([]byte{0xC7, 0xD1, 0xB1, 0xDB}) // 한글 in EUC-KR
	obj := "mtllib m.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl " + hangul + "\nf 1 2 3\n"
	writeFile(t, filepath.Join(dir, "tri.obj"), []byte(obj))
	writeFile(t, filepath.Join(dir, "m.mtl"), []byte("newmtl "+hangul+"\n"))

	cfg := config.Default()
	cfg.Import.NameEncoding = "euc-kr"
	res, err := New(cfg, nil).ImportFile(filepath.Join(dir, "tri.obj"))
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if _, ok := res.Geometry.Materials["한글"]; !ok {
		t.Errorf("expected decoded material name, got %v", res.Geometry.Materials)
	}
	if res.Geometry.Name != "tri" {
		t.Errorf("expected name from file, got %q", res.Geometry.Name)
	}
	for _, w := range res.Diagnostics.Warnings {
		if strings.Contains(w, "not defined") {
			t.Errorf("decoded usemtl should match the library: %s", w)
		}
	}
}

func TestImportFileSearchPaths(t *testing.T) {
	shared := t.TempDir()
	writeFile(t, filepath.Join(shared, "stone.png"), pngBytes(t, 32, 32))

	path := quadDir(t, "newmtl Stone\nmap_Kd stone.png\n", 0, 0)
	cfg := acceptAllTexcoords()
	cfg.Textures.SearchPaths = []string{shared}

	res, err := New(cfg, nil).ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if _, ok := res.Textures["stone.png"]; !ok {
		t.Errorf("expected texture from search path, warnings: %v", res.Diagnostics.Warnings)
	}
}

func TestImportFileProbeDisabled(t *testing.T) {
	path := quadDir(t, quadMTL, 0, 0)
	cfg := acceptAllTexcoords()
	cfg.Textures.Probe = false

	res, err := New(cfg, nil).ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if !res.Diagnostics.Empty() || len(res.Textures) != 0 {
		t.Errorf("expected no texture checks, got %v %v", res.Diagnostics.Warnings, res.Textures)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		source, dir, want string
	}{
		{"/a/b/quad.obj", "", "/a/b/quad.gmsh"},
		{"/a/b/quad.obj", "/out", "/out/quad.gmsh"},
		{"rel/model.v2.obj", "build", "build/model.v2.gmsh"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.source, tt.dir); got != filepath.FromSlash(tt.want) {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.source, tt.dir, got, tt.want)
		}
	}
}

func TestWriteReadGeometry(t *testing.T) {
	res, err := New(acceptAllTexcoords(), nil).ImportFile(quadDir(t, quadMTL, 64, 64))
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "nested", "quad.gmsh")
	if err := WriteGeometry(out, res.Geometry); err != nil {
		t.Fatalf("WriteGeometry failed: %v", err)
	}
	g, err := ReadGeometry(out)
	if err != nil {
		t.Fatalf("ReadGeometry failed: %v", err)
	}
	if g.ID != res.Geometry.ID || g.VertexCount != 4 || len(g.Materials) != 1 {
		t.Errorf("geometry did not round trip: %+v", g)
	}
}
