package formats

import (
	"fmt"

	"github.com/BlenderCN-Org/import-valkyria/pkg/math"
)

// SkinnedStride is the vertex record size of meshes carrying bone weights.
const SkinnedStride = 0x30

// Model is the record tree of an HMDL container.
type Model struct {
	Units []Unit // One per KFMD section
}

// Unit is one skeleton + mesh set (a KFMD section).
type Unit struct {
	BytesPerVertex int
	Bones          []Bone
	Meshes         []Mesh
	Materials      []Material
	Textures       []TextureSlot
}

// Skinned reports whether the unit's vertices carry bone weights.
func (u *Unit) Skinned() bool {
	return u.BytesPerVertex == SkinnedStride
}

// Texture returns the texture slot stored under ptr.
func (u *Unit) Texture(ptr uint32) (*TextureSlot, bool) {
	for i := range u.Textures {
		if u.Textures[i].Ptr == ptr {
			return &u.Textures[i], true
		}
	}
	return nil, false
}

// Bone is a skeleton joint in bind pose. Parent and FavChild index into the
// same bone list.
type Bone struct {
	ID         int
	DeformID   *int
	Parent     *int
	FavChild   *int
	Location   math.Vec3 // Relative to the parent
	Rotation   math.Quat // Relative to the parent
	Scale      *math.Vec3
	ObjectPtr1 bool // Marker bone: points back at the parent's head
}

// Name returns the bone's display name, derived from the deform id when the
// bone has one.
func (b *Bone) Name() string {
	if b.DeformID != nil {
		return fmt.Sprintf("Bone-%02x", *b.DeformID)
	}
	return fmt.Sprintf("Bone-%02x", b.ID)
}

// ScaleOrUnit returns the bone's scale, defaulting to (1, 1, 1).
func (b *Bone) ScaleOrUnit() math.Vec3 {
	if b.Scale == nil {
		return math.One()
	}
	return *b.Scale
}

// Influence is one (bone index, weight) skinning pair.
type Influence struct {
	Bone   int
	Weight float32
}

// Vertex is a mesh vertex.
type Vertex struct {
	Position   math.Vec3
	Normal     math.Vec3
	UV         math.Vec2
	UV2        math.Vec2
	Influences [2]Influence
}

// Mesh is a triangle mesh attached to a unit's skeleton.
type Mesh struct {
	Vertices     []Vertex
	Faces        [][3]int
	ParentBoneID *int
	MaterialPtr  uint32
	// Maps the mesh-local bone indices used by vertex influences to bone ids.
	VertexGroupMap []int
}

// ParentBone returns the bone the mesh is rigidly attached to. Bone 0 is the
// skeleton root, so a zero id means the mesh follows the whole skeleton.
func (m *Mesh) ParentBone() (int, bool) {
	if m.ParentBoneID == nil || *m.ParentBoneID == 0 {
		return 0, false
	}
	return *m.ParentBoneID, true
}

// Material describes surface flags and up to two texture references.
type Material struct {
	Ptr                uint32
	Texture0Ptr        *uint32
	Texture1Ptr        *uint32
	UseAlpha           bool
	UseBackfaceCulling bool
	UseNormal          bool // Texture1 is a normal map
}

// TextureSlot maps a texture pointer to an image index in the paired pack.
type TextureSlot struct {
	Ptr   uint32
	Image int
}
