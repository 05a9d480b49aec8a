// Package model links decoded model records into solved skeletons, skin
// groups, material bindings and texture packs.
package model

import (
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
	"github.com/BlenderCN-Org/import-valkyria/pkg/math"
)

// tailOffset is the synthetic tail of a bone without a favourite child,
// along its local +X axis.
var tailOffset = math.Vec3{X: 0.5}

// Joint is a bone with its solved world-space placement.
type Joint struct {
	Name     string
	Parent   int // Index into the same joint list, -1 for roots
	Head     math.Vec3
	Tail     math.Vec3
	Rotation math.Quat // Accumulated orientation
}

// HasParent reports whether the joint is attached to another joint.
func (j *Joint) HasParent() bool {
	return j.Parent >= 0
}

// Solve walks bones in order and computes head, tail and accumulated
// rotation for each. Parents must precede their children.
func Solve(bones []formats.Bone) ([]Joint, error) {
	if err := checkBones(bones); err != nil {
		return nil, err
	}

	joints := make([]Joint, len(bones))
	for i := range bones {
		b := &bones[i]
		j := &joints[i]
		j.Name = b.Name()
		j.Parent = -1

		if b.Parent != nil {
			p := &joints[*b.Parent]
			j.Parent = *b.Parent
			j.Head = p.Head.Add(p.Rotation.Rotate(b.Location))
			j.Rotation = p.Rotation.Mul(b.Rotation)
		} else {
			j.Head = b.Location
			j.Rotation = b.Rotation
		}
	}

	// Tails need every head. Marker bones are rewritten in order, so a marker
	// child sees its parent's final head.
	for i := range bones {
		b := &bones[i]
		j := &joints[i]

		if b.FavChild != nil {
			j.Tail = joints[*b.FavChild].Head
		} else {
			j.Tail = j.Head.Add(j.Rotation.Rotate(tailOffset))
		}

		if b.ObjectPtr1 && b.Parent != nil {
			j.Tail = j.Head
			j.Head = joints[*b.Parent].Head
		}
	}

	return joints, nil
}

func checkBones(bones []formats.Bone) error {
	for i := range bones {
		b := &bones[i]
		if b.Parent != nil && (*b.Parent < 0 || *b.Parent >= i) {
			return inconsistent("bone parent", "bone %d references parent %d", i, *b.Parent)
		}
		if b.FavChild != nil && (*b.FavChild < 0 || *b.FavChild >= len(bones)) {
			return inconsistent("bone favourite child", "bone %d references child %d of %d", i, *b.FavChild, len(bones))
		}
	}
	return nil
}
