package mesh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
)

// GMSH container errors.
var (
	ErrInvalidMagic       = errors.New("invalid geometry magic: expected 'GMSH'")
	ErrUnsupportedVersion = errors.New("unsupported geometry version")
	ErrTruncated          = errors.New("truncated geometry data")
	ErrCorrupt            = errors.New("corrupt geometry data")
)

// decodeChunk bounds how many records Decode allocates ahead of the data
// actually present, so a forged count cannot force a huge allocation.
const decodeChunk = 4096

// Magic and version of the binary geometry container.
const (
	Magic        = "GMSH"
	VersionMajor = 1
	VersionMinor = 0
)

type gmshHeader struct {
	Magic         [4]byte
	Major, Minor  uint8
	_             [2]byte
	VertexCount   uint32
	IndexCount    uint32
	MaterialCount uint32
	ID            uuid.UUID
	Bounds        AABB
}

type gmshMaterial struct {
	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
	Dissolve  float32
	Illum     int32
}

// Encode writes g in the little-endian GMSH container format.
// Materials are written sorted by name.
func Encode(w io.Writer, g *Geometry) error {
	bw := bufio.NewWriter(w)

	hdr := gmshHeader{
		Major:         VersionMajor,
		Minor:         VersionMinor,
		VertexCount:   uint32(len(g.Vertices)),
		IndexCount:    uint32(len(g.Indices)),
		MaterialCount: uint32(len(g.Materials)),
		ID:            g.ID,
		Bounds:        g.Bounds,
	}
	copy(hdr.Magic[:], Magic)

	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	if err := writeString(bw, g.Name); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, g.Vertices); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, g.Indices); err != nil {
		return err
	}

	names := make([]string, 0, len(g.Materials))
	for name := range g.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeMaterial(bw, g.Materials[name]); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Decode reads a geometry written by Encode.
func Decode(r io.Reader) (*Geometry, error) {
	br := bufio.NewReader(r)

	var hdr gmshHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, truncated(err)
	}
	if string(hdr.Magic[:]) != Magic {
		return nil, ErrInvalidMagic
	}
	if hdr.Major != VersionMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, hdr.Major, hdr.Minor)
	}

	name, err := readString(br)
	if err != nil {
		return nil, err
	}

	if hdr.IndexCount%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not whole triangles", ErrCorrupt, hdr.IndexCount)
	}
	vertices, err := readRecords[Vertex](br, hdr.VertexCount)
	if err != nil {
		return nil, err
	}
	indices, err := readRecords[uint32](br, hdr.IndexCount)
	if err != nil {
		return nil, err
	}
	for i, idx := range indices {
		if idx >= hdr.VertexCount {
			return nil, fmt.Errorf("%w: index %d is %d, vertex count %d", ErrCorrupt, i, idx, hdr.VertexCount)
		}
	}

	g := &Geometry{
		ID:          hdr.ID,
		Name:        name,
		Vertices:    vertices,
		Indices:     indices,
		VertexCount: hdr.VertexCount,
		IndexCount:  hdr.IndexCount,
		Materials:   make(map[string]Material, min(hdr.MaterialCount, decodeChunk)),
		Bounds:      hdr.Bounds,
	}
	for i := uint32(0); i < hdr.MaterialCount; i++ {
		m, err := readMaterial(br)
		if err != nil {
			return nil, err
		}
		g.Materials[m.Name] = m
	}
	return g, nil
}

// readRecords reads n fixed-size records, growing the slice one chunk at a
// time as data arrives.
func readRecords[T any](r io.Reader, n uint32) ([]T, error) {
	out := make([]T, 0, min(n, decodeChunk))
	for remaining := n; remaining > 0; {
		k := min(remaining, decodeChunk)
		chunk := make([]T, k)
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, truncated(err)
		}
		out = append(out, chunk...)
		remaining -= k
	}
	return out, nil
}

func writeMaterial(w io.Writer, m Material) error {
	if err := writeString(w, m.Name); err != nil {
		return err
	}
	props := gmshMaterial{
		Ambient:   m.Ambient,
		Diffuse:   m.Diffuse,
		Specular:  m.Specular,
		Shininess: m.Shininess,
		Dissolve:  m.Dissolve,
		Illum:     int32(m.Illum),
	}
	if err := binary.Write(w, binary.LittleEndian, &props); err != nil {
		return err
	}
	for _, s := range materialTextures(&m) {
		if err := writeString(w, *s); err != nil {
			return err
		}
	}
	return nil
}

func readMaterial(r io.Reader) (Material, error) {
	var m Material
	var err error
	if m.Name, err = readString(r); err != nil {
		return m, err
	}
	var props gmshMaterial
	if err := binary.Read(r, binary.LittleEndian, &props); err != nil {
		return m, truncated(err)
	}
	m.Ambient = props.Ambient
	m.Diffuse = props.Diffuse
	m.Specular = props.Specular
	m.Shininess = props.Shininess
	m.Dissolve = props.Dissolve
	m.Illum = int(props.Illum)
	for _, s := range materialTextures(&m) {
		if *s, err = readString(r); err != nil {
			return m, err
		}
	}
	return m, nil
}

// materialTextures lists the texture name fields in container order.
func materialTextures(m *Material) []*string {
	return []*string{
		&m.AmbientTexture,
		&m.DiffuseTexture,
		&m.SpecularTexture,
		&m.HighlightTexture,
		&m.BumpTexture,
		&m.DisplacementTexture,
		&m.AlphaTexture,
		&m.ReflectionTexture,
	}
}

func writeString(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string too long for geometry container: %d bytes", len(s))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", truncated(err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", truncated(err)
	}
	return string(buf), nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
