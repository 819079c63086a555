package formats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Absent marks a missing texcoord or normal reference in a FaceVertex.
const Absent = -1

// FaceVertex references one polygon corner's attributes.
// Indices are 0-based into the OBJ pools; Absent means not given.
type FaceVertex struct {
	Position int
	Texcoord int
	Normal   int
}

// Triangle is one fan-triangulated piece of an OBJ face.
type Triangle struct {
	Corners  [3]FaceVertex
	Material string // active usemtl, empty if none
	Object   string // active o/g name, empty if none
	Smooth   int    // smoothing group, 0 when off
}

// OBJ is a parsed Wavefront OBJ file.
type OBJ struct {
	Positions []float32 // x, y, z
	Texcoords []float32 // u, v
	Normals   []float32 // x, y, z

	Triangles    []Triangle
	Faces        int // polygons before triangulation
	Objects      []string
	MaterialLibs []string

	// Warnings lists lines that were ignored.
	Warnings []string
}

// PositionCount returns the number of v entries.
func (o *OBJ) PositionCount() int { return len(o.Positions) / 3 }

// TexcoordCount returns the number of vt entries.
func (o *OBJ) TexcoordCount() int { return len(o.Texcoords) / 2 }

// NormalCount returns the number of vn entries.
func (o *OBJ) NormalCount() int { return len(o.Normals) / 3 }

// ParseOBJ parses an OBJ file.
// Polygons with more than three corners are triangulated as a fan around
// their first corner. Relative (negative) indices are resolved against the
// pools as read so far.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	p := objParser{obj: &OBJ{}}
	if err := scanLines(r, p.parseLine); err != nil {
		return nil, err
	}
	return p.obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f)
}

type objParser struct {
	obj      *OBJ
	material string
	object   string
	smooth   int
}

func (p *objParser) parseLine(line int, keyword string, args []string, rest string) error {
	switch keyword {
	case "v":
		// x y z [w] or x y z r g b
		vals, err := parseFloats(line, keyword, args, 3, 7)
		if err != nil {
			return err
		}
		p.obj.Positions = append(p.obj.Positions, vals[:3]...)
	case "vt":
		vals, err := parseFloats(line, keyword, args, 1, 3)
		if err != nil {
			return err
		}
		if len(vals) == 1 {
			vals = append(vals, 0)
		}
		p.obj.Texcoords = append(p.obj.Texcoords, vals[:2]...)
	case "vn":
		vals, err := parseFloats(line, keyword, args, 3, 3)
		if err != nil {
			return err
		}
		p.obj.Normals = append(p.obj.Normals, vals...)
	case "f":
		return p.parseFace(line, args)
	case "o", "g":
		p.object = rest
		if rest != "" {
			p.obj.Objects = append(p.obj.Objects, rest)
		}
	case "usemtl":
		if rest == "" {
			return syntaxError(line, "usemtl: missing material name")
		}
		p.material = rest
	case "mtllib":
		if len(args) == 0 {
			return syntaxError(line, "mtllib: missing file name")
		}
		p.obj.MaterialLibs = append(p.obj.MaterialLibs, args...)
	case "s":
		if len(args) != 1 {
			return syntaxError(line, "s: expected 1 value, got %d", len(args))
		}
		p.smooth = parseSmooth(args[0])
	default:
		p.obj.Warnings = append(p.obj.Warnings, fmt.Sprintf("line %d: ignoring unsupported directive %q", line, keyword))
	}
	return nil
}

func parseSmooth(s string) int {
	if s == "off" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (p *objParser) parseFace(line int, args []string) error {
	if len(args) < 3 {
		return syntaxError(line, "f: face needs at least 3 vertices, got %d", len(args))
	}

	corners := make([]FaceVertex, len(args))
	for i, a := range args {
		fv, err := p.parseFaceVertex(line, a)
		if err != nil {
			return err
		}
		corners[i] = fv
	}

	p.obj.Faces++
	for i := 1; i+1 < len(corners); i++ {
		p.obj.Triangles = append(p.obj.Triangles, Triangle{
			Corners:  [3]FaceVertex{corners[0], corners[i], corners[i+1]},
			Material: p.material,
			Object:   p.object,
			Smooth:   p.smooth,
		})
	}
	return nil
}

// parseFaceVertex parses v, v/vt, v//vn or v/vt/vn.
func (p *objParser) parseFaceVertex(line int, s string) (FaceVertex, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return FaceVertex{}, syntaxError(line, "f: malformed vertex %q", s)
	}

	fv := FaceVertex{Texcoord: Absent, Normal: Absent}
	var err error
	if fv.Position, err = resolveIndex(line, "position", parts[0], p.obj.PositionCount()); err != nil {
		return FaceVertex{}, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if fv.Texcoord, err = resolveIndex(line, "texcoord", parts[1], p.obj.TexcoordCount()); err != nil {
			return FaceVertex{}, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if fv.Normal, err = resolveIndex(line, "normal", parts[2], p.obj.NormalCount()); err != nil {
			return FaceVertex{}, err
		}
	}
	return fv, nil
}

// resolveIndex converts a 1-based or negative OBJ index to 0-based.
// Positive indices are not range checked here.
func resolveIndex(line int, what, s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, syntaxError(line, "f: invalid %s index %q", what, s)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		if count+n < 0 {
			return 0, syntaxError(line, "f: relative %s index %d before start of pool", what, n)
		}
		return count + n, nil
	default:
		return 0, syntaxError(line, "f: %s index 0 is invalid", what)
	}
}
