package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BlenderCN-Org/import-valkyria/internal/logger"
	"github.com/BlenderCN-Org/import-valkyria/internal/model"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// bindMaterials resolves the materials of every unit against the texture
// pack of each instance using it, once per pair.
func (ctx *resolveContext) bindMaterials() error {
	s := ctx.scene
	s.bindings = make(map[bindingKey][]model.MaterialBinding)
	for _, inst := range s.Instances {
		for _, u := range inst.Model.Units {
			key := bindingKey{u, inst.Textures}
			if _, ok := s.bindings[key]; ok {
				continue
			}
			b, err := model.BindMaterials(u.Data, inst.Textures)
			if err != nil {
				return fmt.Errorf("%s %s: %w", inst.Name, u.Name(), err)
			}
			s.bindings[key] = b
		}
	}
	return nil
}

// mergeShapeKeys merges every shape key set into the meshes of the model at
// index target, falling back to the last model.
func (ctx *resolveContext) mergeShapeKeys(target int) error {
	s := ctx.scene
	if len(s.ShapeKeys) == 0 {
		return nil
	}
	if len(s.Models) == 0 {
		logger.Warn("shape keys without models ignored", zap.Int("sets", len(s.ShapeKeys)))
		return nil
	}

	if target < 0 || target >= len(s.Models) {
		target = len(s.Models) - 1
	}
	g := s.Models[target]
	s.MorphTarget = g

	for _, set := range s.ShapeKeys {
		for ui, u := range g.Units {
			n := len(u.Data.Meshes)
			if len(set.Keys) < n {
				n = len(set.Keys)
			}
			for mi := 0; mi < n; mi++ {
				displaced, err := model.MergeShapeKey(u.Data.Meshes[mi].Vertices, set.Keys[mi])
				if err != nil {
					return fmt.Errorf("%s %s %s: %w", set.Name(), u.Name(), model.MeshName(mi), err)
				}
				s.Morphs = append(s.Morphs, Morph{Name: set.Name(), Unit: ui, Mesh: mi, Displaced: displaced})
			}
		}
	}
	return nil
}

// solvePoses applies each pose to the first unit of the first model.
func (ctx *resolveContext) solvePoses(poses [][]formats.PoseBone) error {
	s := ctx.scene
	if len(poses) == 0 {
		return nil
	}
	if len(s.Models) == 0 || len(s.Models[0].Units) == 0 {
		logger.Warn("poses without a model ignored", zap.Int("poses", len(poses)))
		return nil
	}

	unit := s.Models[0].Units[0]
	for i, pose := range poses {
		joints, err := model.Pose(unit.Data.Bones, pose)
		if err != nil {
			return fmt.Errorf("pose %d: %w", i, err)
		}
		s.Poses = append(s.Poses, PosedSkeleton{Name: fmt.Sprintf("Pose-%02d", i), Joints: joints})
	}
	return nil
}
