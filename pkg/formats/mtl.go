package formats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MTLMaterial is one newmtl block.
type MTLMaterial struct {
	Name string

	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
	Dissolve  float32 // 1 is opaque
	Illum     int

	AmbientMap      string // map_Ka
	DiffuseMap      string // map_Kd
	SpecularMap     string // map_Ks
	HighlightMap    string // map_Ns
	BumpMap         string // map_bump, bump
	DisplacementMap string // disp
	AlphaMap        string // map_d
	ReflectionMap   string // refl
}

// MTL is a parsed material library.
// Materials keep file order; a name may appear more than once.
type MTL struct {
	Materials []MTLMaterial
	Warnings  []string
}

// ParseMTL parses a material library.
func ParseMTL(r io.Reader) (*MTL, error) {
	p := mtlParser{mtl: &MTL{}}
	if err := scanLines(r, p.parseLine); err != nil {
		return nil, err
	}
	return p.mtl, nil
}

// ParseMTLFile parses a material library from disk.
func ParseMTLFile(path string) (*MTL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MTL file: %w", err)
	}
	defer f.Close()
	return ParseMTL(f)
}

type mtlParser struct {
	mtl *MTL
}

// current returns the material being defined, or nil before the first newmtl.
func (p *mtlParser) current() *MTLMaterial {
	if len(p.mtl.Materials) == 0 {
		return nil
	}
	return &p.mtl.Materials[len(p.mtl.Materials)-1]
}

func (p *mtlParser) warnf(line int, format string, args ...any) {
	p.mtl.Warnings = append(p.mtl.Warnings, fmt.Sprintf("line %d: ", line)+fmt.Sprintf(format, args...))
}

func (p *mtlParser) parseLine(line int, keyword string, args []string, rest string) error {
	if keyword == "newmtl" {
		if rest == "" {
			return syntaxError(line, "newmtl: missing material name")
		}
		p.mtl.Materials = append(p.mtl.Materials, MTLMaterial{Name: rest, Dissolve: 1})
		return nil
	}

	m := p.current()
	if m == nil {
		p.warnf(line, "ignoring %q before first newmtl", keyword)
		return nil
	}

	switch keyword {
	case "Ka", "Kd", "Ks":
		vals, err := parseFloats(line, keyword, args, 1, 3)
		if err != nil {
			return err
		}
		// A single value is a grey level.
		var c [3]float32
		for i := range c {
			c[i] = vals[min(i, len(vals)-1)]
		}
		switch keyword {
		case "Ka":
			m.Ambient = c
		case "Kd":
			m.Diffuse = c
		case "Ks":
			m.Specular = c
		}
	case "Ns":
		vals, err := parseFloats(line, keyword, args, 1, 1)
		if err != nil {
			return err
		}
		m.Shininess = vals[0]
	case "d":
		vals, err := parseFloats(line, keyword, trimHalo(args), 1, 1)
		if err != nil {
			return err
		}
		m.Dissolve = vals[0]
	case "Tr":
		vals, err := parseFloats(line, keyword, args, 1, 1)
		if err != nil {
			return err
		}
		m.Dissolve = 1 - vals[0]
	case "illum":
		if len(args) != 1 {
			return syntaxError(line, "illum: expected 1 value, got %d", len(args))
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return syntaxError(line, "illum: invalid model %q", args[0])
		}
		m.Illum = n
	case "map_Ka", "map_Kd", "map_Ks", "map_Ns", "map_bump", "map_Bump", "bump", "disp", "map_d", "refl":
		name := textureName(args)
		if name == "" {
			return syntaxError(line, "%s: missing texture name", keyword)
		}
		*m.textureField(keyword) = name
	default:
		p.warnf(line, "ignoring unsupported directive %q", keyword)
	}
	return nil
}

func (m *MTLMaterial) textureField(keyword string) *string {
	switch keyword {
	case "map_Ka":
		return &m.AmbientMap
	case "map_Kd":
		return &m.DiffuseMap
	case "map_Ks":
		return &m.SpecularMap
	case "map_Ns":
		return &m.HighlightMap
	case "disp":
		return &m.DisplacementMap
	case "map_d":
		return &m.AlphaMap
	case "refl":
		return &m.ReflectionMap
	default:
		return &m.BumpMap
	}
}

// trimHalo drops the "-halo" flag of a d statement.
func trimHalo(args []string) []string {
	if len(args) > 0 && args[0] == "-halo" {
		return args[1:]
	}
	return args
}

// textureOptionArgs is the number of arguments taken by each texture option.
// Options taking up to three numbers (-o, -s, -t) are listed with 3 and
// consume only the numeric arguments present.
var textureOptionArgs = map[string]int{
	"-blendu":  1,
	"-blendv":  1,
	"-bm":      1,
	"-boost":   1,
	"-cc":      1,
	"-clamp":   1,
	"-imfchan": 1,
	"-texres":  1,
	"-type":    1,
	"-mm":      2,
	"-o":       3,
	"-s":       3,
	"-t":       3,
}

// textureName strips texture options from a map statement and returns the
// file name. Names containing spaces are rejoined.
func textureName(args []string) string {
	i := 0
	for i < len(args) {
		n, ok := textureOptionArgs[args[i]]
		if !ok {
			break
		}
		i++
		for j := 0; j < n && i < len(args); j++ {
			if n == 3 && j > 0 && !isNumber(args[i]) {
				break
			}
			i++
		}
	}
	return strings.Join(args[i:], " ")
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
