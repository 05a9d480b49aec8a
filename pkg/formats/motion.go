package formats

import "github.com/BlenderCN-Org/import-valkyria/pkg/math"

// PoseBone is the per-bone delta record of an HMOT section. A component is
// present when its base value is non-nil.
type PoseBone struct {
	Location       *math.Vec3
	LocationFrames []math.Vec3
	Rotation       *math.Quat
	RotationFrames []math.Quat
	Scale          *math.Vec3
	ScaleFrames    []math.Vec3
}

// ShapeKey holds per-vertex translations for one mesh. The vertices align
// with the tail of the base mesh's vertex list.
type ShapeKey struct {
	Vertices []math.Vec3
}
