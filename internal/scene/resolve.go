package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BlenderCN-Org/import-valkyria/internal/logger"
	"github.com/BlenderCN-Org/import-valkyria/internal/model"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// ErrUnresolvedAddressingMode is returned for an is_inside value the
// placement table does not define.
var ErrUnresolvedAddressingMode = errors.New("unresolved addressing mode")

// UnresolvedAddressingModeError names the reference with the unknown mode.
type UnresolvedAddressingModeError struct {
	Filename string
	Mode     uint32
}

func (e *UnresolvedAddressingModeError) Error() string {
	return fmt.Sprintf("unresolved addressing mode %#x for %s", e.Mode, e.Filename)
}

// Is matches ErrUnresolvedAddressingMode.
func (e *UnresolvedAddressingModeError) Is(target error) bool {
	return target == ErrUnresolvedAddressingMode
}

func inconsistent(what, format string, args ...any) error {
	return &model.InconsistentReferenceError{What: what, Detail: fmt.Sprintf(format, args...)}
}

func modelName(i int) string {
	return fmt.Sprintf("HMDL-%03d", i)
}

func (ctx *resolveContext) resolve(root Root) error {
	switch r := root.(type) {
	case *SingleModel:
		return ctx.resolveSingle(r)
	case *SceneArchive:
		return ctx.resolveArchive(r)
	case *InstancedArchive:
		return ctx.resolveInstanced(r)
	case *ScenePlacement:
		return ctx.resolvePlacement(r)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedRoot, root)
	}
}

// resolveSingle links the one model of an HMDL file. Texture pairing is left
// to the caller.
func (ctx *resolveContext) resolveSingle(r *SingleModel) error {
	name := modelName(0)
	g, err := ctx.graph(name, r.File)
	if err != nil {
		return err
	}
	ctx.place(name, g, nil, Identity())
	return nil
}

// resolveArchive pairs the models of an IZCA archive with texture packs,
// from the MXTL list when present and positionally otherwise.
func (ctx *resolveContext) resolveArchive(r *SceneArchive) error {
	for i, hshp := range r.ShapeKeys {
		ctx.scene.ShapeKeys = append(ctx.scene.ShapeKeys, &model.ShapeKeySet{ID: i, Keys: hshp.ShapeKeys})
	}

	if r.TextureList != nil {
		for modelIdx, list := range r.TextureList.TextureLists {
			if modelIdx >= len(r.Models) {
				return inconsistent("texture list", "entry %d for %d models", modelIdx, len(r.Models))
			}
			pack := ctx.pack()
			for _, entry := range list {
				if entry.HTSF < 0 || entry.HTSF >= len(r.Images) {
					return inconsistent("texture list", "image %d of %d", entry.HTSF, len(r.Images))
				}
				pack.AddNamed(r.Images[entry.HTSF].Image, entry.Filename)
			}
			if err := ctx.archiveModel(r.Models[modelIdx], pack); err != nil {
				return err
			}
		}
		return nil
	}

	n := len(r.Models)
	if len(r.TexturePacks) < n {
		n = len(r.TexturePacks)
	}
	if len(r.Models) != len(r.TexturePacks) {
		logger.Warn("archive models and texture packs differ in count",
			zap.String("file", r.File.Name()),
			zap.Int("models", len(r.Models)),
			zap.Int("texture_packs", len(r.TexturePacks)))
	}
	for i := 0; i < n; i++ {
		pack := ctx.pack()
		for j, img := range r.TexturePacks[i].Images() {
			pack.AddHTEX(img, i, j)
		}
		if err := ctx.archiveModel(r.Models[i], pack); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *resolveContext) archiveModel(c *formats.Container, pack *model.TexturePack) error {
	name := modelName(len(ctx.scene.Models))
	g, err := ctx.graph(name, c)
	if err != nil {
		return err
	}
	ctx.place(name, g, pack, Identity())
	return nil
}

// resolveInstanced walks an ABRS stream: every HMDL opens a texture pack that
// the following HTEX entries fill.
func (ctx *resolveContext) resolveInstanced(r *InstancedArchive) error {
	var (
		pack      *model.TexturePack
		htexCount int
		models    int
	)
	for _, entry := range r.Entries {
		if entry.Schema == formats.SchemaHMDL {
			models++
		}
	}
	firstPack := len(ctx.scene.Packs)
	firstInstance := len(ctx.scene.Instances)

	for _, entry := range r.Entries {
		switch entry.Schema {
		case formats.SchemaHMDL:
			pack = ctx.pack()
			if err := ctx.archiveModel(entry, pack); err != nil {
				return err
			}

		case formats.SchemaHTEX:
			if pack == nil {
				logger.Warn("texture pack before any model dropped",
					zap.String("file", r.File.Name()),
					zap.Int("htex", htexCount))
			} else {
				for j, img := range entry.Images() {
					pack.AddHTEX(img, htexCount, j)
				}
			}
			htexCount++
		}
	}

	return checkInstancedParity(models,
		len(ctx.scene.Packs)-firstPack,
		len(ctx.scene.Instances)-firstInstance)
}

// checkInstancedParity fails when an ABRS stream did not yield exactly one
// texture pack and one instance per HMDL entry.
func checkInstancedParity(models, packs, instances int) error {
	if packs != models || instances != models {
		return inconsistent("instanced archive",
			"%d texture packs and %d instances for %d models", packs, instances, models)
	}
	return nil
}
