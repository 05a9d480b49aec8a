// Package formats describes the decoded record tree of Valkyria Chronicles
// asset containers (.MLX, .HMD, .ABR, .MXE and their side files) and the
// decoders that produce it.
package formats

import "fmt"

// Schema is the four-character tag identifying a container or section.
type Schema string

const (
	SchemaIZCA Schema = "IZCA" // Scene archive (.MLX)
	SchemaABRS Schema = "ABRS" // Instanced archive (.ABR)
	SchemaMXEN Schema = "MXEN" // Scene placement (.MXE)
	SchemaHMDL Schema = "HMDL" // Model file
	SchemaKFMD Schema = "KFMD" // Skeleton + mesh unit inside a model
	SchemaHTEX Schema = "HTEX" // Texture pack
	SchemaHTSF Schema = "HTSF" // Single texture image
	SchemaHSHP Schema = "HSHP" // Shape key set
	SchemaHMOT Schema = "HMOT" // Pose (motion) set
	SchemaMXTL Schema = "MXTL" // Model/texture association list
	SchemaMXEC Schema = "MXEC" // Placement descriptor table

	SchemaMMF Schema = "MMF" // Multi-model file referenced by MXEC
	SchemaHTR Schema = "HTR" // Texture index referenced by MXEC
)

var knownSchemas = map[Schema]bool{
	SchemaIZCA: true, SchemaABRS: true, SchemaMXEN: true, SchemaHMDL: true,
	SchemaKFMD: true, SchemaHTEX: true, SchemaHTSF: true, SchemaHSHP: true,
	SchemaHMOT: true, SchemaMXTL: true, SchemaMXEC: true, SchemaMMF: true,
	SchemaHTR: true,
}

// Valid reports whether s is a known tag.
func (s Schema) Valid() bool {
	return knownSchemas[s]
}

// IsRoot reports whether s can be imported as a root container.
func (s Schema) IsRoot() bool {
	switch s {
	case SchemaIZCA, SchemaHMDL, SchemaABRS, SchemaMXEN:
		return true
	default:
		return false
	}
}

// String returns the tag, or a marker for unknown tags.
func (s Schema) String() string {
	if s.Valid() {
		return string(s)
	}
	return fmt.Sprintf("Unknown(%q)", string(s))
}
