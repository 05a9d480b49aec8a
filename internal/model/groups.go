package model

import (
	"fmt"
	"sort"

	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// Weight is one vertex membership in a bone's skin group.
type Weight struct {
	Vertex int
	Weight float32
}

// VertexGroups maps a bone index to the vertices it influences, in vertex
// order.
type VertexGroups map[int][]Weight

// IndexVertexGroups inverts the two influences of every vertex into per-bone
// membership lists. Both slots are recorded even when they name the same
// bone or carry zero weight.
func IndexVertexGroups(vertices []formats.Vertex) VertexGroups {
	groups := make(VertexGroups)
	for i := range vertices {
		for _, inf := range vertices[i].Influences {
			groups[inf.Bone] = append(groups[inf.Bone], Weight{Vertex: i, Weight: inf.Weight})
		}
	}
	return groups
}

// Len returns the total number of memberships across all groups.
func (g VertexGroups) Len() int {
	n := 0
	for _, list := range g {
		n += len(list)
	}
	return n
}

// Bones returns the group keys in ascending order.
func (g VertexGroups) Bones() []int {
	keys := make([]int, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Global re-keys mesh-local bone indices through a mesh's vertex group map.
// Lists that land on the same bone are concatenated. A nil map keeps the
// local indices.
func (g VertexGroups) Global(vertexGroupMap []int) (VertexGroups, error) {
	out := make(VertexGroups, len(g))
	for _, local := range g.Bones() {
		global := local
		if vertexGroupMap != nil {
			if local < 0 || local >= len(vertexGroupMap) {
				return nil, inconsistent("vertex group map", "local bone %d of %d", local, len(vertexGroupMap))
			}
			global = vertexGroupMap[local]
		}
		out[global] = append(out[global], g[local]...)
	}
	return out, nil
}

// GroupName returns the skin group name for a global bone id.
func GroupName(bone int) string {
	return fmt.Sprintf("Bone-%02x", bone)
}
