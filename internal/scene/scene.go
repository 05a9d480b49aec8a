package scene

import (
	"github.com/BlenderCN-Org/import-valkyria/internal/model"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
	"github.com/BlenderCN-Org/import-valkyria/pkg/math"
)

// Scene is a fully resolved import. Everything that can fail has been
// computed, so building it only replays values.
type Scene struct {
	Name   string
	Schema formats.Schema

	// Unique models and texture packs in resolution order.
	Models []*model.Graph
	Packs  []*model.TexturePack

	Instances []Instance
	ShapeKeys []*model.ShapeKeySet

	// Morphs are the shape key sets merged against MorphTarget.
	MorphTarget *model.Graph
	Morphs      []Morph

	// Poses are solved against the first unit of the first model.
	Poses []PosedSkeleton

	bindings map[bindingKey][]model.MaterialBinding
}

// Instance places a model with its texture pack. Instances sharing both
// share geometry.
type Instance struct {
	Name      string
	Model     *model.Graph
	Textures  *model.TexturePack // nil when the model has no texture pack
	Transform Transform
}

// Morph is one shape key merged into one mesh.
type Morph struct {
	Name      string
	Unit      int
	Mesh      int
	Displaced []math.Vec3
}

// PosedSkeleton is a pose applied to the bind skeleton.
type PosedSkeleton struct {
	Name   string
	Joints []model.Joint
}

type bindingKey struct {
	unit *model.Unit
	pack *model.TexturePack
}

// Materials returns the material bindings of u textured from pack.
func (s *Scene) Materials(u *model.Unit, pack *model.TexturePack) []model.MaterialBinding {
	return s.bindings[bindingKey{u, pack}]
}

// Transform is an instance's world placement.
type Transform struct {
	Location math.Vec3
	Rotation math.Vec3 // Euler XYZ, radians
	Scale    math.Vec3
}

// Identity returns a transform that leaves the model in place.
func Identity() Transform {
	return Transform{Scale: math.One()}
}

// Matrix returns the transform as T * R * S.
func (t Transform) Matrix() math.Mat4 {
	return math.Translate(t.Location.X, t.Location.Y, t.Location.Z).
		Mul(math.EulerXYZ(t.Rotation)).
		Mul(math.Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}
