package model

import (
	"fmt"

	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
	"github.com/BlenderCN-Org/import-valkyria/pkg/math"
)

// ShapeKeySet is one HSHP section: shape keys for consecutive meshes.
type ShapeKeySet struct {
	ID   int
	Keys []formats.ShapeKey
}

// Name returns the morph target name of the set.
func (s *ShapeKeySet) Name() string {
	return fmt.Sprintf("HSHP-%02d", s.ID)
}

// MergeShapeKey returns the positions of base displaced by key. The key
// covers the trailing len(key.Vertices) vertices of base. base is not
// modified.
func MergeShapeKey(base []formats.Vertex, key formats.ShapeKey) ([]math.Vec3, error) {
	shift := len(base) - len(key.Vertices)
	if shift < 0 {
		return nil, inconsistent("shape key", "%d displacements for %d vertices", len(key.Vertices), len(base))
	}

	displaced := make([]math.Vec3, len(base))
	for i := range base {
		displaced[i] = base[i].Position
	}
	for i, d := range key.Vertices {
		displaced[i+shift] = displaced[i+shift].Add(d)
	}
	return displaced, nil
}
