// Package scene resolves a root container into models, texture packs and
// instances, and replays the result into a Builder.
package scene

import (
	"errors"
	"fmt"

	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// ErrUnsupportedRoot is returned for containers that cannot be imported on
// their own.
var ErrUnsupportedRoot = errors.New("unsupported root container")

// Root is one of the four importable container layouts: *SingleModel,
// *SceneArchive, *InstancedArchive or *ScenePlacement.
type Root interface {
	Schema() formats.Schema
	Container() *formats.Container
	isRoot()
}

// SingleModel is a bare HMDL file.
type SingleModel struct {
	File *formats.Container
}

// SceneArchive is an IZCA archive of models, textures and shape keys.
type SceneArchive struct {
	File         *formats.Container
	Models       []*formats.Container // HMDL
	TexturePacks []*formats.Container // HTEX
	Images       []*formats.Container // Top-level HTSF, indexed by the MXTL list
	TextureList  *formats.Container   // MXTL, nil when absent
	ShapeKeys    []*formats.Container // HSHP
}

// InstancedArchive is an ABRS stream of HMDL and HTEX entries.
type InstancedArchive struct {
	File    *formats.Container
	Entries []*formats.Container // HMDL and HTEX in stream order
}

// ScenePlacement is an MXEN file placing models referenced by name.
type ScenePlacement struct {
	File  *formats.Container
	Table *formats.Placement
}

func (r *SingleModel) Schema() formats.Schema      { return formats.SchemaHMDL }
func (r *SceneArchive) Schema() formats.Schema     { return formats.SchemaIZCA }
func (r *InstancedArchive) Schema() formats.Schema { return formats.SchemaABRS }
func (r *ScenePlacement) Schema() formats.Schema   { return formats.SchemaMXEN }

func (r *SingleModel) Container() *formats.Container      { return r.File }
func (r *SceneArchive) Container() *formats.Container     { return r.File }
func (r *InstancedArchive) Container() *formats.Container { return r.File }
func (r *ScenePlacement) Container() *formats.Container   { return r.File }

func (*SingleModel) isRoot()      {}
func (*SceneArchive) isRoot()     {}
func (*InstancedArchive) isRoot() {}
func (*ScenePlacement) isRoot()   {}

// Classify picks the layout of a root container.
func Classify(c *formats.Container) (Root, error) {
	switch c.Schema {
	case formats.SchemaHMDL:
		return &SingleModel{File: c}, nil

	case formats.SchemaIZCA:
		r := &SceneArchive{
			File:         c,
			Models:       c.Sections(formats.SchemaHMDL),
			TexturePacks: c.Sections(formats.SchemaHTEX),
			Images:       c.Sections(formats.SchemaHTSF),
			ShapeKeys:    c.Sections(formats.SchemaHSHP),
		}
		if c.Has(formats.SchemaMXTL) {
			r.TextureList, _ = c.First(formats.SchemaMXTL)
		}
		return r, nil

	case formats.SchemaABRS:
		r := &InstancedArchive{File: c}
		for _, child := range c.Children {
			if child.Schema == formats.SchemaHMDL || child.Schema == formats.SchemaHTEX {
				r.Entries = append(r.Entries, child)
			}
		}
		return r, nil

	case formats.SchemaMXEN:
		mxec, err := c.First(formats.SchemaMXEC)
		if err != nil {
			return nil, err
		}
		if mxec.Placement == nil {
			return nil, &formats.MissingSectionError{Path: c.Path, Schema: formats.SchemaMXEC}
		}
		return &ScenePlacement{File: c, Table: mxec.Placement}, nil

	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedRoot, c.Name(), c.Schema)
	}
}
