package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BlenderCN-Org/import-valkyria/internal/logger"
	"github.com/BlenderCN-Org/import-valkyria/internal/model"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// placementFiles are the side files an MXEC table may name.
type placementFiles struct {
	library *formats.Container // MMF
	index   *formats.Container // HTR
	merged  *formats.Container // HTEX
}

func (ctx *resolveContext) openSideFile(from *formats.Container, name string) (*formats.Container, error) {
	if name == "" {
		return nil, nil
	}
	c, err := ctx.resolver.Sibling(from, name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return c, nil
}

// resolvePlacement resolves every descriptor of an MXEN table. Models and
// texture packs are cached by the filename the descriptor names.
func (ctx *resolveContext) resolvePlacement(r *ScenePlacement) error {
	var files placementFiles
	var err error
	if files.library, err = ctx.openSideFile(r.File, r.Table.ModelLibrary); err != nil {
		return err
	}
	if files.index, err = ctx.openSideFile(r.File, r.Table.TextureIndex); err != nil {
		return err
	}
	if files.merged, err = ctx.openSideFile(r.File, r.Table.MergedTextures); err != nil {
		return err
	}

	for i := range r.Table.Descriptors {
		d := &r.Table.Descriptors[i]
		if d.ModelFile == nil {
			logger.Warn("placement without model skipped",
				zap.String("file", r.File.Name()),
				zap.Int("descriptor", i))
			continue
		}

		g, err := ctx.placementModel(r.File, &files, d.ModelFile)
		if err != nil {
			return fmt.Errorf("descriptor %d: %w", i, err)
		}

		var pack *model.TexturePack
		if d.TextureFile != nil {
			if pack, err = ctx.placementTextures(r.File, &files, d.TextureFile); err != nil {
				return fmt.Errorf("descriptor %d: %w", i, err)
			}
			ctx.textureRefs++
		}

		ctx.place(d.ModelFile.Filename, g, pack, Transform{
			Location: d.Location,
			Rotation: d.Rotation.Radians(),
			Scale:    d.Scale,
		})
	}
	return nil
}

func (ctx *resolveContext) placementModel(from *formats.Container, files *placementFiles, ref *formats.AssetRef) (*model.Graph, error) {
	if g, ok := ctx.models[ref.Filename]; ok {
		logger.Debug("model reused", zap.String("filename", ref.Filename))
		return g, nil
	}

	var source *formats.Container
	switch ref.IsInside {
	case formats.AddressExternal:
		c, err := ctx.resolver.Sibling(from, ref.Filename)
		if err != nil {
			return nil, err
		}
		source = c
		if c.Schema != formats.SchemaHMDL {
			// Model files wrap the HMDL record in an outer container.
			if source, err = c.First(formats.SchemaHMDL); err != nil {
				return nil, err
			}
		}

	case formats.AddressModelLibrary:
		if files.library == nil {
			return nil, inconsistent("model library", "%s needs a multi-model file", ref.Filename)
		}
		c, ok := files.library.NamedModels[ref.Filename]
		if !ok {
			return nil, inconsistent("model library", "no model named %s", ref.Filename)
		}
		source = c

	default:
		return nil, &UnresolvedAddressingModeError{Filename: ref.Filename, Mode: ref.IsInside}
	}

	g, err := ctx.graph(ref.Filename, source)
	if err != nil {
		return nil, err
	}
	ctx.models[ref.Filename] = g
	return g, nil
}

func (ctx *resolveContext) placementTextures(from *formats.Container, files *placementFiles, ref *formats.AssetRef) (*model.TexturePack, error) {
	if p, ok := ctx.textures[ref.Filename]; ok {
		logger.Debug("texture pack reused", zap.String("filename", ref.Filename))
		return p, nil
	}

	var pack *model.TexturePack
	switch ref.IsInside {
	case formats.AddressExternal:
		c, err := ctx.resolver.Sibling(from, ref.Filename)
		if err != nil {
			return nil, err
		}
		htex := c
		if c.Schema != formats.SchemaHTEX {
			if htex, err = c.First(formats.SchemaHTEX); err != nil {
				return nil, err
			}
		}
		pack = ctx.pack()
		for j, img := range htex.Images() {
			pack.AddHTEX(img, ctx.textureRefs, j)
		}

	case formats.AddressMergedTexture:
		if files.index == nil || files.merged == nil {
			return nil, inconsistent("merged textures", "%s needs texture index and merged texture files", ref.Filename)
		}
		if ref.HTRIndex < 0 || ref.HTRIndex >= len(files.index.TextureIndex) {
			return nil, inconsistent("texture index", "entry %d of %d", ref.HTRIndex, len(files.index.TextureIndex))
		}
		images := files.merged.Images()
		pack = ctx.pack()
		for _, id := range files.index.TextureIndex[ref.HTRIndex].HTSFIDs {
			if id < 0 || id >= len(images) {
				return nil, inconsistent("merged textures", "image %d of %d", id, len(images))
			}
			pack.AddMerged(images[id], ref.Filename, id)
		}

	default:
		return nil, &UnresolvedAddressingModeError{Filename: ref.Filename, Mode: ref.IsInside}
	}

	ctx.textures[ref.Filename] = pack
	return pack, nil
}
