// Package importer turns an OBJ file on disk into renderer-ready geometry:
// it parses the mesh and its material libraries, welds and builds tangents,
// and checks the textures the materials reference.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yuravashuk/GPF/internal/assets"
	"github.com/yuravashuk/GPF/internal/config"
	"github.com/yuravashuk/GPF/internal/texture"
	"github.com/yuravashuk/GPF/pkg/encoding"
	"github.com/yuravashuk/GPF/pkg/formats"
	"github.com/yuravashuk/GPF/pkg/mesh"
)

// GeometryExt is the extension of compiled geometry files.
const GeometryExt = ".gmsh"

// Result is the outcome of one import.
type Result struct {
	Source      string
	Geometry    *mesh.Geometry
	Diagnostics *mesh.Diagnostics
	TangentMode mesh.TangentMode

	// Textures maps each texture reference that could be probed to its info.
	Textures map[string]texture.Info
}

// Importer runs imports with one configuration.
type Importer struct {
	cfg *config.Config
	log *zap.Logger
}

// New creates an importer. A nil logger disables logging.
func New(cfg *config.Config, log *zap.Logger) *Importer {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{cfg: cfg, log: log}
}

// ImportFile imports the OBJ file at path.
// Parse and reference errors are returned; everything else that goes wrong
// is reported in the result's diagnostics and logged as a warning.
func (im *Importer) ImportFile(path string) (*Result, error) {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	tangents, err := im.cfg.Import.TangentOptions()
	if err != nil {
		return nil, err
	}

	mgr, err := assets.NewManager(append([]string{filepath.Dir(path)}, im.cfg.Textures.SearchPaths...)...)
	if err != nil {
		return nil, err
	}

	diag := &mesh.Diagnostics{}
	base := filepath.Base(path)
	for _, w := range obj.Warnings {
		diag.Warnf("%s: %s", base, w)
	}

	materials := im.loadMaterials(mgr, obj.MaterialLibs, diag)
	im.checkMaterialUse(obj, materials, diag)

	name, err := im.decode(geometryName(obj, path))
	if err != nil {
		return nil, err
	}

	src := toSource(obj)
	if n := zeroTexcoordRefs(src); n > 0 && !im.cfg.Import.AcceptZeroTexcoord {
		diag.Warnf("%s: %d corners reference the first texcoord, which is treated as absent", base, n)
	}

	g, buildDiag, err := mesh.Build(src, materials, mesh.BuildOptions{
		Name:    name,
		Weld:    im.cfg.Import.WeldOptions(),
		Tangent: tangents,
		Logger:  im.log,
	})
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", path, err)
	}
	diag.Append(buildDiag.Warnings...)

	res := &Result{
		Source:      path,
		Geometry:    g,
		Diagnostics: diag,
		TangentMode: tangents.Mode,
		Textures:    make(map[string]texture.Info),
	}
	if im.cfg.Textures.Probe {
		im.probeTextures(mgr, g, res)
	}

	for _, w := range diag.Warnings {
		im.log.Warn(w, zap.String("source", path))
	}
	im.log.Info("imported mesh",
		zap.String("source", path),
		zap.String("name", g.Name),
		zap.Uint32("vertices", g.VertexCount),
		zap.Uint32("indices", g.IndexCount),
		zap.Int("materials", len(g.Materials)),
		zap.Int("warnings", len(diag.Warnings)),
	)

	return res, nil
}

// loadMaterials reads every material library. Libraries that are missing or
// malformed are warnings, matching how OBJ loaders usually treat them.
func (im *Importer) loadMaterials(mgr *assets.Manager, libs []string, diag *mesh.Diagnostics) []mesh.Material {
	var out []mesh.Material
	for _, lib := range libs {
		data, err := mgr.Load(lib)
		if err != nil {
			diag.Warnf("material library %s: %v", lib, err)
			continue
		}
		mtl, err := formats.ParseMTL(bytes.NewReader(data))
		if err != nil {
			diag.Warnf("material library %s: %v", lib, err)
			continue
		}
		for _, w := range mtl.Warnings {
			diag.Warnf("%s: %s", lib, w)
		}
		for _, m := range mtl.Materials {
			mm, err := im.toMaterial(m)
			if err != nil {
				diag.Warnf("material library %s: %v", lib, err)
				continue
			}
			out = append(out, mm)
		}
	}
	return out
}

// checkMaterialUse warns about usemtl names no library defines.
func (im *Importer) checkMaterialUse(obj *formats.OBJ, materials []mesh.Material, diag *mesh.Diagnostics) {
	defined := make(map[string]bool, len(materials))
	for _, m := range materials {
		defined[m.Name] = true
	}
	reported := make(map[string]bool)
	for _, t := range obj.Triangles {
		if t.Material == "" || reported[t.Material] {
			continue
		}
		name, err := im.decode(t.Material)
		if err != nil || !defined[name] {
			diag.Warnf("material %q is used but not defined", t.Material)
		}
		reported[t.Material] = true
	}
}

func (im *Importer) toMaterial(m formats.MTLMaterial) (mesh.Material, error) {
	out := mesh.Material{
		Name:                m.Name,
		Ambient:             m.Ambient,
		Diffuse:             m.Diffuse,
		Specular:            m.Specular,
		Shininess:           m.Shininess,
		Dissolve:            m.Dissolve,
		Illum:               m.Illum,
		AmbientTexture:      m.AmbientMap,
		DiffuseTexture:      m.DiffuseMap,
		SpecularTexture:     m.SpecularMap,
		HighlightTexture:    m.HighlightMap,
		BumpTexture:         m.BumpMap,
		DisplacementTexture: m.DisplacementMap,
		AlphaTexture:        m.AlphaMap,
		ReflectionTexture:   m.ReflectionMap,
	}
	names := []*string{
		&out.Name,
		&out.AmbientTexture, &out.DiffuseTexture, &out.SpecularTexture, &out.HighlightTexture,
		&out.BumpTexture, &out.DisplacementTexture, &out.AlphaTexture, &out.ReflectionTexture,
	}
	if err := encoding.DecodeAll(im.cfg.Import.NameEncoding, names...); err != nil {
		return mesh.Material{}, err
	}
	for _, p := range names[1:] {
		*p = encoding.NormalizePath(*p)
	}
	return out, nil
}

func (im *Importer) decode(s string) (string, error) {
	return encoding.Decode(im.cfg.Import.NameEncoding, s)
}

// probeTextures checks every texture the geometry's materials reference.
func (im *Importer) probeTextures(mgr *assets.Manager, g *mesh.Geometry, res *Result) {
	names := make([]string, 0, len(g.Materials))
	for name := range g.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]bool)
	for _, name := range names {
		m := g.Materials[name]
		for _, slot := range m.Textures() {
			if seen[slot.Name] {
				continue
			}
			seen[slot.Name] = true

			data, err := mgr.Load(slot.Name)
			if err != nil {
				if errors.Is(err, assets.ErrNotFound) {
					res.Diagnostics.Warnf("material %q: %s texture %s not found", name, slot.Slot, slot.Name)
				} else {
					res.Diagnostics.Warnf("material %q: %s texture %s: %v", name, slot.Slot, slot.Name, err)
				}
				continue
			}
			info, err := texture.Probe(data, slot.Name)
			if err != nil {
				res.Diagnostics.Warnf("material %q: %s texture: %v", name, slot.Slot, err)
				continue
			}
			if !info.PowerOfTwo && im.cfg.Textures.WarnNPOT {
				res.Diagnostics.Warnf("texture %s is %dx%d, not a power of two", slot.Name, info.Width, info.Height)
			}
			res.Textures[slot.Name] = info
		}
	}
}

// geometryName picks the first object name, falling back to the file name.
func geometryName(obj *formats.OBJ, path string) string {
	if len(obj.Objects) > 0 {
		return obj.Objects[0]
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// toSource flattens OBJ triangles into welder input.
func toSource(obj *formats.OBJ) *mesh.Source {
	src := &mesh.Source{
		Positions: obj.Positions,
		Texcoords: obj.Texcoords,
		Normals:   obj.Normals,
		Corners:   make([]mesh.Corner, 0, 3*len(obj.Triangles)),
	}
	for _, t := range obj.Triangles {
		for _, c := range t.Corners {
			src.Corners = append(src.Corners, mesh.Corner{
				Position: c.Position,
				Texcoord: c.Texcoord,
				Normal:   c.Normal,
			})
		}
	}
	return src
}

func zeroTexcoordRefs(src *mesh.Source) int {
	n := 0
	for _, c := range src.Corners {
		if c.Texcoord == 0 {
			n++
		}
	}
	return n
}

// OutputPath returns where the compiled geometry for source goes: next to
// the source, or in dir when set.
func OutputPath(source, dir string) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + GeometryExt
	if dir == "" {
		return filepath.Join(filepath.Dir(source), name)
	}
	return filepath.Join(dir, name)
}

// WriteGeometry encodes g to path, creating parent directories.
func WriteGeometry(path string, g *mesh.Geometry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := mesh.Encode(f, g); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadGeometry decodes a compiled geometry file.
func ReadGeometry(path string) (*mesh.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := mesh.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return g, nil
}
