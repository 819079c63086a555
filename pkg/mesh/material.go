package mesh

// Material describes a surface material by name and the texture maps it
// references. Texture names are stored as written in the material library.
type Material struct {
	Name string

	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Shininess float32
	Dissolve  float32
	Illum     int

	AmbientTexture      string
	DiffuseTexture      string
	SpecularTexture     string
	HighlightTexture    string
	BumpTexture         string
	DisplacementTexture string
	AlphaTexture        string
	ReflectionTexture   string
}

// TextureSlot names one of a material's texture maps.
type TextureSlot struct {
	Slot string
	Name string
}

// Textures returns the non-empty texture references in a fixed slot order.
func (m *Material) Textures() []TextureSlot {
	all := [...]TextureSlot{
		{"ambient", m.AmbientTexture},
		{"diffuse", m.DiffuseTexture},
		{"specular", m.SpecularTexture},
		{"highlight", m.HighlightTexture},
		{"bump", m.BumpTexture},
		{"displacement", m.DisplacementTexture},
		{"alpha", m.AlphaTexture},
		{"reflection", m.ReflectionTexture},
	}
	var out []TextureSlot
	for _, s := range all {
		if s.Name != "" {
			out = append(out, s)
		}
	}
	return out
}
