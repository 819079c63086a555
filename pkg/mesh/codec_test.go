package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"runtime"
	"testing"

	"github.com/yuravashuk/GPF/pkg/math"
)

func TestEncodeDecode(t *testing.T) {
	materials := []Material{
		{
			Name:              "brick",
			Diffuse:           [3]float32{0.8, 0.4, 0.3},
			Shininess:         12,
			Dissolve:          1,
			Illum:             2,
			DiffuseTexture:    "brick.png",
			BumpTexture:       "brick_n.png",
			ReflectionTexture: "sky.hdr",
		},
		{Name: "glass", Dissolve: 0.25},
	}
	g, _, err := Build(quadSource(), materials, BuildOptions{Name: "quad"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if got := string(buf.Bytes()[:4]); got != Magic {
		t.Errorf("magic = %q, want %q", got, Magic)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if decoded.ID != g.ID || decoded.Name != g.Name {
		t.Errorf("identity = %v %q, want %v %q", decoded.ID, decoded.Name, g.ID, g.Name)
	}
	if decoded.VertexCount != g.VertexCount || decoded.IndexCount != g.IndexCount {
		t.Errorf("counts = %d/%d, want %d/%d", decoded.VertexCount, decoded.IndexCount, g.VertexCount, g.IndexCount)
	}
	for i := range g.Vertices {
		if decoded.Vertices[i] != g.Vertices[i] {
			t.Errorf("vertex %d = %v, want %v", i, decoded.Vertices[i], g.Vertices[i])
		}
	}
	for i := range g.Indices {
		if decoded.Indices[i] != g.Indices[i] {
			t.Errorf("index %d = %d, want %d", i, decoded.Indices[i], g.Indices[i])
		}
	}
	if decoded.Bounds != g.Bounds {
		t.Errorf("bounds = %v, want %v", decoded.Bounds, g.Bounds)
	}
	for name, want := range g.Materials {
		if got := decoded.Materials[name]; got != want {
			t.Errorf("material %q = %+v, want %+v", name, got, want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	g, _, err := Build(triangleSource(), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	valid := buf.Bytes()

	badMagic := append([]byte("XXXX"), valid[4:]...)
	badVersion := append([]byte(nil), valid...)
	badVersion[4] = 9

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncated},
		{"header only", valid[:10], ErrTruncated},
		{"cut vertices", valid[:len(valid)-20], ErrTruncated},
		{"invalid magic", badMagic, ErrInvalidMagic},
		{"unsupported version", badVersion, ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeForgedCounts(t *testing.T) {
	g, _, err := Build(triangleSource(), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	data := append([]byte(nil), buf.Bytes()...)
	binary.LittleEndian.PutUint32(data[8:], 0xFFFFFFFF)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err = Decode(bytes.NewReader(data))
	runtime.ReadMemStats(&after)

	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Decode() error = %v, want %v", err, ErrTruncated)
	}
	if grown := after.TotalAlloc - before.TotalAlloc; grown > 16<<20 {
		t.Errorf("Decode() allocated %d bytes for a %d-byte input", grown, len(data))
	}
}

func TestDecodeCorruptIndices(t *testing.T) {
	vertices := []Vertex{
		{Position: math.Vec3{X: 0}},
		{Position: math.Vec3{X: 1}},
		{Position: math.Vec3{Y: 1}},
	}

	tests := []struct {
		name    string
		indices []uint32
	}{
		{"index past vertex count", []uint32{0, 1, 99}},
		{"partial triangle", []uint32{0, 1, 2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGeometry("bad", vertices, tt.indices, BoundsOf(vertices))
			var buf bytes.Buffer
			if err := Encode(&buf, g); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if _, err := Decode(&buf); !errors.Is(err, ErrCorrupt) {
				t.Errorf("Decode() error = %v, want %v", err, ErrCorrupt)
			}
		})
	}
}
