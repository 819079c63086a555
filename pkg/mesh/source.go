package mesh

import (
	"errors"
	"fmt"
)

// Source validation errors.
var (
	ErrNotTriangulated = errors.New("corner count is not a multiple of 3")
	ErrMalformedPool   = errors.New("attribute pool length is not a multiple of its arity")
)

// Corner references one triangle corner's attributes in a Source's pools.
// Indices are 0-based; a negative index means the attribute is absent.
type Corner struct {
	Position int
	Texcoord int
	Normal   int
}

// Source is a raw parsed mesh: flat attribute pools plus the per-corner
// index triples, grouped implicitly in triangles.
type Source struct {
	Positions []float32 // x, y, z per entry
	Texcoords []float32 // u, v per entry, V axis in source convention
	Normals   []float32 // x, y, z per entry, may be empty
	Corners   []Corner
}

// PositionCount returns the number of entries in the position pool.
func (s *Source) PositionCount() int { return len(s.Positions) / 3 }

// TexcoordCount returns the number of entries in the texcoord pool.
func (s *Source) TexcoordCount() int { return len(s.Texcoords) / 2 }

// NormalCount returns the number of entries in the normal pool.
func (s *Source) NormalCount() int { return len(s.Normals) / 3 }

// TriangleCount returns the number of triangles described by the corners.
func (s *Source) TriangleCount() int { return len(s.Corners) / 3 }

// Validate checks the structural shape of the source.
// It does not check individual corner references; the welder does that.
func (s *Source) Validate() error {
	if len(s.Positions)%3 != 0 {
		return fmt.Errorf("%w: positions has %d floats", ErrMalformedPool, len(s.Positions))
	}
	if len(s.Texcoords)%2 != 0 {
		return fmt.Errorf("%w: texcoords has %d floats", ErrMalformedPool, len(s.Texcoords))
	}
	if len(s.Normals)%3 != 0 {
		return fmt.Errorf("%w: normals has %d floats", ErrMalformedPool, len(s.Normals))
	}
	if len(s.Corners)%3 != 0 {
		return fmt.Errorf("%w: %d corners", ErrNotTriangulated, len(s.Corners))
	}
	return nil
}
