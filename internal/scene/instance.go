package scene

import (
	"github.com/BlenderCN-Org/import-valkyria/internal/model"
)

// PlacementKind tells the builder whether an instance needs new geometry.
type PlacementKind int

const (
	BuildNew PlacementKind = iota
	Duplicate
)

func (k PlacementKind) String() string {
	if k == Duplicate {
		return "duplicate"
	}
	return "build"
}

// Placement is one instance to materialize. For Duplicate placements Source
// is the index of the placement whose build is copied.
type Placement struct {
	Kind     PlacementKind
	Instance *Instance
	Source   int
}

type pairKey struct {
	model    *model.Graph
	textures *model.TexturePack
}

// Place decides, in instance order, which instances build geometry and which
// duplicate an earlier build of the same model and texture pack.
func Place(instances []Instance) []Placement {
	built := make(map[pairKey]int)
	out := make([]Placement, len(instances))
	for i := range instances {
		inst := &instances[i]
		key := pairKey{inst.Model, inst.Textures}
		if src, ok := built[key]; ok {
			out[i] = Placement{Kind: Duplicate, Instance: inst, Source: src}
			continue
		}
		built[key] = i
		out[i] = Placement{Kind: BuildNew, Instance: inst, Source: i}
	}
	return out
}
