package model

import (
	"fmt"

	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// Graph is a model file linked into solved units. It is built once per
// unique model and not modified afterwards.
type Graph struct {
	Name   string
	Source *formats.Container
	Units  []*Unit
}

// Unit is a solved KFMD section.
type Unit struct {
	Index  int
	Data   *formats.Unit
	Joints []Joint
	// Skin groups per mesh keyed by global bone id, nil for unskinned units.
	Groups []VertexGroups
}

// Name returns the unit's group name.
func (u *Unit) Name() string {
	return fmt.Sprintf("KFMD-%03d", u.Index)
}

// MeshName returns the name of the i-th mesh.
func MeshName(i int) string {
	return fmt.Sprintf("Mesh-%03d", i)
}

// NewGraph validates a model record, solves every unit's skeleton and
// indexes its skin groups.
func NewGraph(name string, source *formats.Container) (*Graph, error) {
	if source == nil || source.Model == nil {
		return nil, inconsistent("model", "%s has no model record", name)
	}

	g := &Graph{Name: name, Source: source}
	for i := range source.Model.Units {
		data := &source.Model.Units[i]
		u, err := newUnit(i, data)
		if err != nil {
			return nil, fmt.Errorf("%s unit %d: %w", name, i, err)
		}
		g.Units = append(g.Units, u)
	}
	return g, nil
}

func newUnit(index int, data *formats.Unit) (*Unit, error) {
	joints, err := Solve(data.Bones)
	if err != nil {
		return nil, err
	}
	u := &Unit{Index: index, Data: data, Joints: joints}

	for mi := range data.Meshes {
		m := &data.Meshes[mi]
		if err := checkMesh(m, len(data.Bones)); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", mi, err)
		}
	}

	if !data.Skinned() {
		return u, nil
	}

	u.Groups = make([]VertexGroups, len(data.Meshes))
	for mi := range data.Meshes {
		m := &data.Meshes[mi]
		groups, err := IndexVertexGroups(m.Vertices).Global(m.VertexGroupMap)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", mi, err)
		}
		u.Groups[mi] = groups
	}
	return u, nil
}

func checkMesh(m *formats.Mesh, bones int) error {
	for fi, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return inconsistent("face", "face %d references vertex %d of %d", fi, idx, len(m.Vertices))
			}
		}
	}
	if id, ok := m.ParentBone(); ok && (id < 0 || id >= bones) {
		return inconsistent("mesh parent bone", "bone %d of %d", id, bones)
	}
	return nil
}
