package model

import "github.com/BlenderCN-Org/import-valkyria/pkg/formats"

// ApplyPose returns a copy of bones with the pose deltas added on top. Only
// the first keyframe is used: a component changes when its base value and
// at least one frame are present, by base + frames[0]. Pose records beyond
// the bone count, and bones beyond the record count, are left alone. The
// input slice is not modified.
func ApplyPose(bones []formats.Bone, pose []formats.PoseBone) []formats.Bone {
	posed := make([]formats.Bone, len(bones))
	copy(posed, bones)
	for i := range posed {
		if posed[i].Scale != nil {
			s := *posed[i].Scale
			posed[i].Scale = &s
		}
	}

	n := len(bones)
	if len(pose) < n {
		n = len(pose)
	}
	for i := 0; i < n; i++ {
		b := &posed[i]
		d := &pose[i]

		if d.Location != nil && len(d.LocationFrames) > 0 {
			b.Location = b.Location.Add(*d.Location).Add(d.LocationFrames[0])
		}
		if d.Rotation != nil && len(d.RotationFrames) > 0 {
			b.Rotation = b.Rotation.Add(*d.Rotation).Add(d.RotationFrames[0])
		}
		if d.Scale != nil && len(d.ScaleFrames) > 0 {
			s := b.ScaleOrUnit().Add(*d.Scale).Add(d.ScaleFrames[0])
			b.Scale = &s
		}
	}
	return posed
}

// Pose solves the skeleton of bones with the pose applied. The bind bones
// are left untouched.
func Pose(bones []formats.Bone, pose []formats.PoseBone) ([]Joint, error) {
	return Solve(ApplyPose(bones, pose))
}
