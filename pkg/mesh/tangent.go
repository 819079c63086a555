package mesh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/yuravashuk/GPF/pkg/math"
)

// Tangent pass errors.
var (
	ErrMalformedTriangles = errors.New("triangle list length is not a multiple of 3")
	ErrIndexOutOfRange    = errors.New("vertex index out of range")
	ErrUnknownTangentMode = errors.New("unknown tangent mode")
)

// DefaultTangentEpsilon is the smallest UV-space determinant magnitude that
// still produces a tangent basis.
const DefaultTangentEpsilon float32 = 1e-12

// TangentMode selects how triangles are enumerated and how shared vertices
// are resolved.
type TangentMode int

const (
	// TangentOverwrite walks the index array in triangles. Every triangle
	// writes its basis to its three vertices, so a shared vertex keeps the
	// basis of the last triangle that touches it.
	TangentOverwrite TangentMode = iota
	// TangentLegacy walks the vertex array itself in groups of three with
	// overwrite semantics, as older importers did. It is only meaningful
	// when welding merged nothing.
	TangentLegacy
	// TangentAccumulate walks the index array, sums every incident
	// triangle's contribution per vertex and normalizes the sums.
	TangentAccumulate
)

var tangentModeNames = map[TangentMode]string{
	TangentOverwrite:  "overwrite",
	TangentLegacy:     "legacy",
	TangentAccumulate: "accumulate",
}

// String returns the config name of the mode.
func (m TangentMode) String() string {
	if name, ok := tangentModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("TangentMode(%d)", int(m))
}

// ParseTangentMode parses a config name. The empty string selects TangentOverwrite.
func ParseTangentMode(s string) (TangentMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TangentOverwrite, nil
	}
	for mode, name := range tangentModeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTangentMode, s)
}

// TangentOptions configures ComputeTangents.
type TangentOptions struct {
	Mode TangentMode
	// Epsilon is the degeneracy threshold for the UV determinant.
	// Zero selects DefaultTangentEpsilon.
	Epsilon float32
}

// TangentReport summarizes a tangent pass.
type TangentReport struct {
	Triangles int // triangles visited
	Skipped   int // triangles with a degenerate UV mapping
}

// ComputeTangents fills Tangent and Bitangent of vertices in place.
//
// A triangle whose UV determinant is below the epsilon, or whose basis is not
// finite, is skipped: it writes nothing and contributes nothing.
func ComputeTangents(vertices []Vertex, indices []uint32, opts TangentOptions) (TangentReport, error) {
	eps := opts.Epsilon
	if eps <= 0 {
		eps = DefaultTangentEpsilon
	}

	switch opts.Mode {
	case TangentLegacy:
		return tangentsByVertexOrder(vertices, eps)
	case TangentOverwrite, TangentAccumulate:
		if len(indices)%3 != 0 {
			return TangentReport{}, fmt.Errorf("%w: %d indices", ErrMalformedTriangles, len(indices))
		}
		for i, idx := range indices {
			if int(idx) >= len(vertices) {
				return TangentReport{}, fmt.Errorf("%w: indices[%d] = %d (have %d vertices)", ErrIndexOutOfRange, i, idx, len(vertices))
			}
		}
		if opts.Mode == TangentAccumulate {
			return tangentsAccumulated(vertices, indices, eps), nil
		}
		return tangentsByIndexOrder(vertices, indices, eps), nil
	default:
		return TangentReport{}, fmt.Errorf("%w: %d", ErrUnknownTangentMode, int(opts.Mode))
	}
}

func tangentsByVertexOrder(vertices []Vertex, eps float32) (TangentReport, error) {
	var report TangentReport
	if len(vertices)%3 != 0 {
		return report, fmt.Errorf("%w: %d vertices", ErrMalformedTriangles, len(vertices))
	}
	for i := 0; i+2 < len(vertices); i += 3 {
		report.Triangles++
		if !assignBasis(vertices, uint32(i), uint32(i+1), uint32(i+2), eps) {
			report.Skipped++
		}
	}
	return report, nil
}

func tangentsByIndexOrder(vertices []Vertex, indices []uint32, eps float32) TangentReport {
	var report TangentReport
	for k := 0; k+2 < len(indices); k += 3 {
		report.Triangles++
		if !assignBasis(vertices, indices[k], indices[k+1], indices[k+2], eps) {
			report.Skipped++
		}
	}
	return report
}

func assignBasis(vertices []Vertex, i0, i1, i2 uint32, eps float32) bool {
	t, b, ok := triangleBasis(&vertices[i0], &vertices[i1], &vertices[i2], eps)
	if !ok {
		return false
	}
	t, b = t.Normalize(), b.Normalize()
	for _, i := range [3]uint32{i0, i1, i2} {
		vertices[i].Tangent = t
		vertices[i].Bitangent = b
	}
	return true
}

func tangentsAccumulated(vertices []Vertex, indices []uint32, eps float32) TangentReport {
	var report TangentReport
	tSum := make([]math.Vec3, len(vertices))
	bSum := make([]math.Vec3, len(vertices))
	touched := make([]bool, len(vertices))

	for k := 0; k+2 < len(indices); k += 3 {
		report.Triangles++
		tri := [3]uint32{indices[k], indices[k+1], indices[k+2]}
		for _, i := range tri {
			touched[i] = true
		}
		t, b, ok := triangleBasis(&vertices[tri[0]], &vertices[tri[1]], &vertices[tri[2]], eps)
		if !ok {
			report.Skipped++
			continue
		}
		for _, i := range tri {
			tSum[i] = tSum[i].Add(t)
			bSum[i] = bSum[i].Add(b)
		}
	}

	for i := range vertices {
		if !touched[i] {
			continue
		}
		t := tSum[i].Normalize()
		b := bSum[i].Normalize()
		if t == (math.Vec3{}) || !t.IsFinite() {
			t, b = orthogonalBasis(vertices[i].Normal)
		} else if b == (math.Vec3{}) || !b.IsFinite() {
			b = vertices[i].Normal.Normalize().Cross(t).Normalize()
		}
		vertices[i].Tangent = t
		vertices[i].Bitangent = b
	}
	return report
}

// triangleBasis returns the unnormalized tangent and bitangent of a triangle.
// edge2 and the second UV delta run from v1 to v2; the solution is the same
// as with deltas measured from v0.
func triangleBasis(v0, v1, v2 *Vertex, eps float32) (t, b math.Vec3, ok bool) {
	edge1 := v1.Position.Sub(v0.Position)
	edge2 := v2.Position.Sub(v1.Position)
	duv1 := v1.Texcoord.Sub(v0.Texcoord)
	duv2 := v2.Texcoord.Sub(v1.Texcoord)

	det := duv1.X*duv2.Y - duv2.X*duv1.Y
	if math32.IsNaN(det) || math32.Abs(det) < eps {
		return t, b, false
	}
	f := 1 / det

	t = edge1.Scale(duv2.Y).Sub(edge2.Scale(duv1.Y)).Scale(f)
	b = edge2.Scale(duv1.X).Sub(edge1.Scale(duv2.X)).Scale(f)
	if !t.IsFinite() || !b.IsFinite() || t.LengthSq() == 0 || b.LengthSq() == 0 {
		return t, b, false
	}
	return t, b, true
}

// orthogonalBasis returns an arbitrary unit tangent and bitangent
// perpendicular to n.
func orthogonalBasis(n math.Vec3) (t, b math.Vec3) {
	n = n.Normalize()
	if n == (math.Vec3{}) {
		return math.Vec3{X: 1}, math.Vec3{Y: 1}
	}
	axis := math.Vec3{X: 1}
	if math32.Abs(n.X) >= 0.9 {
		axis = math.Vec3{Y: 1}
	}
	t = axis.Sub(n.Scale(n.Dot(axis))).Normalize()
	b = n.Cross(t).Normalize()
	return t, b
}
