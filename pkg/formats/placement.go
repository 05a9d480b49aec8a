package formats

import "github.com/BlenderCN-Org/import-valkyria/pkg/math"

// Addressing modes (is_inside) of an MXEC asset reference.
const (
	AddressExternal      uint32 = 0     // Own file next to the MXE
	AddressMergedTexture uint32 = 0x100 // Texture pack inside the merged texture file
	AddressModelLibrary  uint32 = 0x200 // Named model inside the multi-model file
)

// AssetRef is a model or texture reference of a placement descriptor.
type AssetRef struct {
	Filename string
	IsInside uint32
	HTRIndex int // Texture index entry, used with AddressMergedTexture
}

// Descriptor places one model instance in the scene.
type Descriptor struct {
	ModelFile   *AssetRef
	TextureFile *AssetRef
	Location    math.Vec3 // Raw units
	Rotation    math.Vec3 // Degrees
	Scale       math.Vec3
}

// Placement is the record tree of an MXEC section. Side file names are empty
// when absent.
type Placement struct {
	ModelLibrary   string // MMF file
	TextureIndex   string // HTR file
	MergedTextures string // HTEX file holding every merged HTSF
	Descriptors    []Descriptor
}
