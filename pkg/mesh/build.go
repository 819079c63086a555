package mesh

import (
	"go.uber.org/zap"
)

// BuildOptions configures Build.
type BuildOptions struct {
	Name    string
	Weld    WeldOptions
	Tangent TangentOptions
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// Build welds src, computes bounds and tangents, and folds materials into a
// new Geometry. Errors are fatal; warnings are returned in Diagnostics.
func Build(src *Source, materials []Material, opts BuildOptions) (*Geometry, *Diagnostics, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	diag := &Diagnostics{}

	if err := src.Validate(); err != nil {
		return nil, diag, err
	}

	w := NewWelder(opts.Weld)
	if err := w.Weld(src); err != nil {
		return nil, diag, err
	}
	vertices, indices := w.Vertices(), w.Indices()
	bounds := w.Bounds().Finalize()

	log.Debug("welded vertices",
		zap.String("name", opts.Name),
		zap.Int("corners", len(src.Corners)),
		zap.Int("unique", len(vertices)),
		zap.Int("duplicates", w.Duplicates()),
	)

	if bounds.IsEmpty() {
		diag.Warnf("%s: mesh has no triangles, bounds are undefined", displayName(opts.Name))
	}

	report, err := ComputeTangents(vertices, indices, opts.Tangent)
	if err != nil {
		return nil, diag, err
	}
	if report.Skipped > 0 {
		diag.Warnf("%s: %d of %d triangles have a degenerate UV mapping, tangents skipped",
			displayName(opts.Name), report.Skipped, report.Triangles)
	}
	log.Debug("computed tangents",
		zap.String("mode", opts.Tangent.Mode.String()),
		zap.Int("triangles", report.Triangles),
		zap.Int("skipped", report.Skipped),
	)

	g := NewGeometry(opts.Name, vertices, indices, bounds)
	for _, name := range g.AddMaterials(materials) {
		diag.Warnf("%s: duplicate material %q ignored", displayName(opts.Name), name)
	}

	return g, diag, nil
}

func displayName(name string) string {
	if name == "" {
		return "mesh"
	}
	return name
}
