package scene

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/BlenderCN-Org/import-valkyria/internal/assets"
	"github.com/BlenderCN-Org/import-valkyria/internal/logger"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// DefaultPoseFile is the pose archive looked up next to every import.
const DefaultPoseFile = "VALCA02AD.MLX"

// Options control an import.
type Options struct {
	// Decoder reads container bytes. Defaults to formats.YAMLDecoder.
	Decoder formats.Decoder
	// PoseFile is looked up case-insensitively next to the root file. Empty
	// disables poses.
	PoseFile string
	// Index of the model shape key sets apply to. Falls back to the last
	// model when the scene has fewer.
	ShapeKeyModel int
}

// DefaultOptions returns options with the standard pose file.
func DefaultOptions() Options {
	return Options{
		Decoder:       formats.YAMLDecoder{},
		PoseFile:      DefaultPoseFile,
		ShapeKeyModel: 1,
	}
}

// Import resolves the root container at path into a scene, including
// material bindings, merged shape keys and solved poses. On error no scene
// is returned and every cached container is dropped.
func Import(path string, opts Options) (*Scene, error) {
	if opts.Decoder == nil {
		opts.Decoder = formats.YAMLDecoder{}
	}

	resolver := assets.NewResolver(opts.Decoder)
	defer resolver.Reset()

	c, err := resolver.Open(path)
	if err != nil {
		return nil, err
	}
	root, err := Classify(c)
	if err != nil {
		return nil, err
	}

	logger.Info("importing",
		zap.String("file", c.Name()),
		zap.Stringer("schema", root.Schema()))

	s := &Scene{Name: filepath.Base(path), Schema: root.Schema()}
	ctx := newResolveContext(resolver, s)
	if err := ctx.resolve(root); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", s.Name, err)
	}

	if err := ctx.bindMaterials(); err != nil {
		return nil, fmt.Errorf("binding materials of %s: %w", s.Name, err)
	}
	if err := ctx.mergeShapeKeys(opts.ShapeKeyModel); err != nil {
		return nil, fmt.Errorf("merging shape keys of %s: %w", s.Name, err)
	}

	if opts.PoseFile != "" {
		poses, err := loadPoses(resolver, filepath.Dir(c.Path), opts.PoseFile)
		if err != nil {
			return nil, err
		}
		if err := ctx.solvePoses(poses); err != nil {
			return nil, err
		}
	}

	hits, misses := resolver.Stats()
	logger.Info("import resolved",
		zap.String("scene", s.Name),
		zap.Int("models", len(s.Models)),
		zap.Int("texture_packs", len(s.Packs)),
		zap.Int("instances", len(s.Instances)),
		zap.Int("shape_key_sets", len(s.ShapeKeys)),
		zap.Int("morphs", len(s.Morphs)),
		zap.Int("poses", len(s.Poses)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses))

	return s, nil
}

// loadPoses reads every HMOT section of the pose file in dir. A missing pose
// file is not an error.
func loadPoses(resolver *assets.Resolver, dir, name string) ([][]formats.PoseBone, error) {
	path, err := resolver.Find(dir, name)
	if errors.Is(err, assets.ErrNotFound) {
		logger.Warn("pose file not found", zap.String("dir", dir), zap.String("name", name))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c, err := resolver.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading poses: %w", err)
	}

	sections := c.Sections(formats.SchemaHMOT)
	if c.Schema == formats.SchemaHMOT {
		sections = []*formats.Container{c}
	}

	var poses [][]formats.PoseBone
	for _, hmot := range sections {
		poses = append(poses, hmot.Pose)
	}
	logger.Debug("poses loaded", zap.String("file", c.Name()), zap.Int("poses", len(poses)))
	return poses, nil
}
