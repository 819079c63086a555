package mesh

import (
	"errors"
	"fmt"

	"github.com/yuravashuk/GPF/pkg/math"
)

// Welding errors. All of them abort the import.
var (
	ErrPositionOutOfRange = errors.New("position index out of range")
	ErrTexcoordOutOfRange = errors.New("texcoord index out of range")
	ErrNormalOutOfRange   = errors.New("normal index out of range")
)

// WeldOptions controls how corner references are resolved.
type WeldOptions struct {
	// AcceptZeroTexcoord treats texcoord index 0 as present.
	// By default only indices greater than zero resolve, and index 0 falls
	// back to DefaultTexcoord.
	AcceptZeroTexcoord bool
	// KeepTexcoordV disables the v' = 1 - v flip.
	KeepTexcoordV bool
}

// Welder assigns every distinct (position, normal, texcoord) tuple a stable
// index and emits one index per corner.
// A Welder is not safe for concurrent use; use one per import.
type Welder struct {
	opts     WeldOptions
	vertices []Vertex
	indices  []uint32
	lookup   map[VertexKey]uint32
	bounds   AABB
	corners  int
}

// NewWelder creates an empty welder.
func NewWelder(opts WeldOptions) *Welder {
	return &Welder{
		opts:   opts,
		lookup: make(map[VertexKey]uint32),
		bounds: EmptyAABB(),
	}
}

// Add resolves one corner against src, welds it and returns its index.
func (w *Welder) Add(src *Source, c Corner) (uint32, error) {
	v, err := w.resolve(src, c)
	if err != nil {
		return 0, fmt.Errorf("corner %d: %w", w.corners, err)
	}
	w.corners++

	key := v.Key()
	idx, ok := w.lookup[key]
	if !ok {
		idx = uint32(len(w.vertices))
		w.vertices = append(w.vertices, v)
		w.lookup[key] = idx
	}
	w.indices = append(w.indices, idx)
	w.bounds = w.bounds.Fold(v.Position)
	return idx, nil
}

// Weld validates src and adds every corner in order.
// Use Add to feed corners that do not form whole triangles.
func (w *Welder) Weld(src *Source) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if w.indices == nil {
		w.indices = make([]uint32, 0, len(src.Corners))
	}
	for _, c := range src.Corners {
		if _, err := w.Add(src, c); err != nil {
			return err
		}
	}
	return nil
}

// Vertices returns the unique vertices in first-occurrence order.
func (w *Welder) Vertices() []Vertex { return w.vertices }

// Indices returns one index per added corner.
func (w *Welder) Indices() []uint32 { return w.indices }

// Bounds returns the running box over every added corner's position.
// The box is not finalized.
func (w *Welder) Bounds() AABB { return w.bounds }

// Duplicates returns how many corners reused an existing vertex.
func (w *Welder) Duplicates() int { return len(w.indices) - len(w.vertices) }

func (w *Welder) resolve(src *Source, c Corner) (Vertex, error) {
	var v Vertex

	if c.Position < 0 || c.Position >= src.PositionCount() {
		return v, fmt.Errorf("%w: %d (pool has %d)", ErrPositionOutOfRange, c.Position, src.PositionCount())
	}
	p := src.Positions[3*c.Position:]
	v.Position = math.Vec3{X: p[0], Y: p[1], Z: p[2]}

	v.Texcoord = DefaultTexcoord
	if c.Texcoord > 0 || (w.opts.AcceptZeroTexcoord && c.Texcoord == 0) {
		if c.Texcoord >= src.TexcoordCount() {
			return v, fmt.Errorf("%w: %d (pool has %d)", ErrTexcoordOutOfRange, c.Texcoord, src.TexcoordCount())
		}
		t := src.Texcoords[2*c.Texcoord:]
		v.Texcoord = math.Vec2{X: t[0], Y: 1 - t[1]}
		if w.opts.KeepTexcoordV {
			v.Texcoord.Y = t[1]
		}
	}

	v.Normal = DefaultNormal
	if len(src.Normals) > 0 && c.Normal >= 0 {
		if c.Normal >= src.NormalCount() {
			return v, fmt.Errorf("%w: %d (pool has %d)", ErrNormalOutOfRange, c.Normal, src.NormalCount())
		}
		n := src.Normals[3*c.Normal:]
		v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
	}

	return v, nil
}

// Weld welds every corner of src with a fresh Welder.
func Weld(src *Source, opts WeldOptions) ([]Vertex, []uint32, AABB, error) {
	w := NewWelder(opts)
	if err := w.Weld(src); err != nil {
		return nil, nil, EmptyAABB(), err
	}
	return w.Vertices(), w.Indices(), w.Bounds(), nil
}
