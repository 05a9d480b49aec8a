package scene

import (
	"github.com/BlenderCN-Org/import-valkyria/internal/model"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
	"github.com/BlenderCN-Org/import-valkyria/pkg/math"
)

// Handle identifies an object created by a Builder. NoHandle means none.
type Handle int

const NoHandle Handle = 0

// MeshSpec describes a mesh to create.
type MeshSpec struct {
	Name       string
	Mesh       *formats.Mesh
	Skeleton   Handle
	ParentBone string // Empty when the mesh follows the whole skeleton
	Material   Handle
}

// Builder materializes a resolved scene. Build drives it; implementations
// decide what the objects are.
type Builder interface {
	CreateGroup(name string, parent Handle) (Handle, error)
	CreateTexture(img *model.TextureImage) (Handle, error)
	CreateMaterial(m *model.MaterialBinding, texture0, texture1 Handle) (Handle, error)
	CreateSkeleton(name string, parent Handle, joints []model.Joint) (Handle, error)
	CreateMesh(parent Handle, spec MeshSpec) (Handle, error)
	BindSkin(mesh Handle, groups model.VertexGroups) error
	ApplyMorph(mesh Handle, name string, displaced []math.Vec3) error
	DuplicateInstance(existing Handle, name string) (Handle, error)
	SetTransform(h Handle, t Transform) error
}
