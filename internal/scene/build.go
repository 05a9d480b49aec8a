package scene

import (
	"fmt"

	"github.com/BlenderCN-Org/import-valkyria/internal/model"
)

// builtModel records the handles of a model's first build.
type builtModel struct {
	units  []Handle   // KFMD groups
	meshes [][]Handle // Per unit, per mesh
}

type sceneBuilder struct {
	s        *Scene
	b        Builder
	textures map[*model.TextureImage]Handle
	models   map[*model.Graph]*builtModel
}

// Build replays s into b: textures first, then one build per unique
// model/texture pack pair with duplicates for the rest, then morphs and
// poses. Only the Builder itself can fail.
func Build(s *Scene, b Builder) error {
	sb := &sceneBuilder{
		s:        s,
		b:        b,
		textures: make(map[*model.TextureImage]Handle),
		models:   make(map[*model.Graph]*builtModel),
	}

	for _, pack := range s.Packs {
		for _, img := range pack.Images {
			h, err := b.CreateTexture(img)
			if err != nil {
				return fmt.Errorf("texture %s: %w", img.Filename, err)
			}
			sb.textures[img] = h
		}
	}

	placements := Place(s.Instances)
	handles := make([]Handle, len(placements))
	for i, p := range placements {
		var h Handle
		var err error
		switch p.Kind {
		case BuildNew:
			h, err = sb.buildInstance(p.Instance)
		case Duplicate:
			h, err = b.DuplicateInstance(handles[p.Source], p.Instance.Name)
		}
		if err != nil {
			return fmt.Errorf("instance %s: %w", p.Instance.Name, err)
		}
		if err := b.SetTransform(h, p.Instance.Transform); err != nil {
			return fmt.Errorf("instance %s: %w", p.Instance.Name, err)
		}
		handles[i] = h
	}

	if err := sb.buildMorphs(); err != nil {
		return err
	}
	return sb.buildPoses()
}

func (sb *sceneBuilder) buildInstance(inst *Instance) (Handle, error) {
	group, err := sb.b.CreateGroup(inst.Name, NoHandle)
	if err != nil {
		return NoHandle, err
	}

	bm := &builtModel{}
	for _, u := range inst.Model.Units {
		ug, meshes, err := sb.buildUnit(group, u, inst.Textures)
		if err != nil {
			return NoHandle, fmt.Errorf("%s: %w", u.Name(), err)
		}
		bm.units = append(bm.units, ug)
		bm.meshes = append(bm.meshes, meshes)
	}
	if _, ok := sb.models[inst.Model]; !ok {
		sb.models[inst.Model] = bm
	}
	return group, nil
}

func (sb *sceneBuilder) buildUnit(parent Handle, u *model.Unit, pack *model.TexturePack) (Handle, []Handle, error) {
	group, err := sb.b.CreateGroup(u.Name(), parent)
	if err != nil {
		return NoHandle, nil, err
	}
	skeleton, err := sb.b.CreateSkeleton("Armature", group, u.Joints)
	if err != nil {
		return NoHandle, nil, err
	}

	bindings := sb.s.Materials(u, pack)
	materials := make(map[uint32]Handle, len(bindings))
	for i := range bindings {
		mb := &bindings[i]
		h, err := sb.b.CreateMaterial(mb, sb.textures[mb.Texture0], sb.textures[mb.Texture1])
		if err != nil {
			return NoHandle, nil, fmt.Errorf("%s: %w", mb.Name, err)
		}
		materials[mb.Ptr] = h
	}

	meshes := make([]Handle, len(u.Data.Meshes))
	for mi := range u.Data.Meshes {
		m := &u.Data.Meshes[mi]
		spec := MeshSpec{
			Name:     model.MeshName(mi),
			Mesh:     m,
			Skeleton: skeleton,
			Material: materials[m.MaterialPtr],
		}
		if id, ok := m.ParentBone(); ok {
			spec.ParentBone = u.Joints[id].Name
		}
		h, err := sb.b.CreateMesh(group, spec)
		if err != nil {
			return NoHandle, nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		if u.Groups != nil {
			if err := sb.b.BindSkin(h, u.Groups[mi]); err != nil {
				return NoHandle, nil, fmt.Errorf("%s: %w", spec.Name, err)
			}
		}
		meshes[mi] = h
	}
	return group, meshes, nil
}

func (sb *sceneBuilder) buildMorphs() error {
	if len(sb.s.Morphs) == 0 {
		return nil
	}
	built, ok := sb.models[sb.s.MorphTarget]
	if !ok {
		return fmt.Errorf("morph target %s was never placed", sb.s.MorphTarget.Name)
	}
	for _, m := range sb.s.Morphs {
		if err := sb.b.ApplyMorph(built.meshes[m.Unit][m.Mesh], m.Name, m.Displaced); err != nil {
			return fmt.Errorf("%s: %w", m.Name, err)
		}
	}
	return nil
}

func (sb *sceneBuilder) buildPoses() error {
	parent := NoHandle
	if len(sb.s.Models) > 0 {
		if built, ok := sb.models[sb.s.Models[0]]; ok && len(built.units) > 0 {
			parent = built.units[0]
		}
	}
	for _, p := range sb.s.Poses {
		if _, err := sb.b.CreateSkeleton(p.Name, parent, p.Joints); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}
