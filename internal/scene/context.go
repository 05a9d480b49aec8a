package scene

import (
	"go.uber.org/zap"

	"github.com/BlenderCN-Org/import-valkyria/internal/assets"
	"github.com/BlenderCN-Org/import-valkyria/internal/logger"
	"github.com/BlenderCN-Org/import-valkyria/internal/model"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// resolveContext carries the caches of one import. It is dropped when the
// import returns.
type resolveContext struct {
	resolver *assets.Resolver
	scene    *Scene

	// MXEN references, keyed by the filename the descriptor names.
	models   map[string]*model.Graph
	textures map[string]*model.TexturePack

	// Graphs keyed by source container, so a container shared by two
	// references is linked once.
	graphs map[*formats.Container]*model.Graph

	// Texture references resolved so far, cache hits included. External
	// MXEN texture packs take their HTEX id from it.
	textureRefs int
}

func newResolveContext(resolver *assets.Resolver, s *Scene) *resolveContext {
	return &resolveContext{
		resolver: resolver,
		scene:    s,
		models:   make(map[string]*model.Graph),
		textures: make(map[string]*model.TexturePack),
		graphs:   make(map[*formats.Container]*model.Graph),
	}
}

// graph links an HMDL container, once.
func (ctx *resolveContext) graph(name string, c *formats.Container) (*model.Graph, error) {
	if g, ok := ctx.graphs[c]; ok {
		return g, nil
	}
	g, err := model.NewGraph(name, c)
	if err != nil {
		return nil, err
	}
	logger.Debug("model linked",
		zap.String("name", name),
		zap.Int("units", len(g.Units)))

	ctx.graphs[c] = g
	ctx.scene.Models = append(ctx.scene.Models, g)
	return g, nil
}

// pack registers a new texture pack with the scene.
func (ctx *resolveContext) pack() *model.TexturePack {
	p := model.NewTexturePack()
	ctx.scene.Packs = append(ctx.scene.Packs, p)
	return p
}

func (ctx *resolveContext) place(name string, g *model.Graph, p *model.TexturePack, t Transform) {
	ctx.scene.Instances = append(ctx.scene.Instances, Instance{
		Name:      name,
		Model:     g,
		Textures:  p,
		Transform: t,
	})
}
