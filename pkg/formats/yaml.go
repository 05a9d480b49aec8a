package formats

import (
	"encoding/base64"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/BlenderCN-Org/import-valkyria/pkg/math"
)

// YAML record tree errors.
var (
	ErrUnknownSchema = errors.New("unknown schema tag")
	ErrBadVector     = errors.New("wrong vector length")
	ErrFaceIndex     = errors.New("face index out of range")
)

// YAMLDecoder reads the textual form of a record tree: one YAML document per
// file, nested inner files under "children". Vectors are lists ([x, y, z]),
// quaternions are [x, y, z, w] and image payloads are base64.
type YAMLDecoder struct{}

// Decode implements Decoder.
func (YAMLDecoder) Decode(path string, data []byte) (*Container, error) {
	var doc containerDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptContainerError{Path: path, Err: err}
	}
	c, err := doc.container(path)
	if err != nil {
		return nil, &CorruptContainerError{Path: path, Err: err}
	}
	return c, nil
}

type containerDoc struct {
	Schema       string                  `yaml:"schema"`
	Children     []containerDoc          `yaml:"children"`
	Model        *modelDoc               `yaml:"model"`
	Image        *imageDoc               `yaml:"image"`
	TextureLists [][]textureListDoc      `yaml:"texture_lists"`
	ShapeKeys    []shapeKeyDoc           `yaml:"shape_keys"`
	Pose         []poseBoneDoc           `yaml:"pose"`
	Placement    *placementDoc           `yaml:"placement"`
	NamedModels  map[string]containerDoc `yaml:"named_models"`
	TextureIndex []textureIndexDoc       `yaml:"texture_index"`
}

type modelDoc struct {
	Units []unitDoc `yaml:"units"`
}

type unitDoc struct {
	BytesPerVertex int           `yaml:"bytes_per_vertex"`
	Bones          []boneDoc     `yaml:"bones"`
	Meshes         []meshDoc     `yaml:"meshes"`
	Materials      []materialDoc `yaml:"materials"`
	Textures       []textureDoc  `yaml:"textures"`
}

type boneDoc struct {
	ID         int       `yaml:"id"`
	DeformID   *int      `yaml:"deform_id"`
	Parent     *int      `yaml:"parent"`
	FavChild   *int      `yaml:"fav_child"`
	Location   []float32 `yaml:"location"`
	Rotation   []float32 `yaml:"rotation"`
	Scale      []float32 `yaml:"scale"`
	ObjectPtr1 bool      `yaml:"object_ptr1"`
}

type influenceDoc struct {
	Bone   int     `yaml:"bone"`
	Weight float32 `yaml:"weight"`
}

type vertexDoc struct {
	Position   []float32      `yaml:"position"`
	Normal     []float32      `yaml:"normal"`
	UV         []float32      `yaml:"uv"`
	UV2        []float32      `yaml:"uv2"`
	Influences []influenceDoc `yaml:"influences"`
}

type meshDoc struct {
	Vertices       []vertexDoc `yaml:"vertices"`
	Faces          [][3]int    `yaml:"faces"`
	ParentBoneID   *int        `yaml:"parent_bone_id"`
	MaterialPtr    uint32      `yaml:"material_ptr"`
	VertexGroupMap []int       `yaml:"vertex_group_map"`
}

type materialDoc struct {
	Ptr                uint32  `yaml:"ptr"`
	Texture0           *uint32 `yaml:"texture0"`
	Texture1           *uint32 `yaml:"texture1"`
	UseAlpha           bool    `yaml:"use_alpha"`
	UseBackfaceCulling bool    `yaml:"use_backface_culling"`
	UseNormal          bool    `yaml:"use_normal"`
}

type textureDoc struct {
	Ptr   uint32 `yaml:"ptr"`
	Image int    `yaml:"image"`
}

type imageDoc struct {
	Data string `yaml:"data"`
}

type textureListDoc struct {
	HTSF     int    `yaml:"htsf"`
	Filename string `yaml:"filename"`
}

type shapeKeyDoc struct {
	Vertices [][]float32 `yaml:"vertices"`
}

type poseBoneDoc struct {
	Location       []float32   `yaml:"location"`
	LocationFrames [][]float32 `yaml:"location_frames"`
	Rotation       []float32   `yaml:"rotation"`
	RotationFrames [][]float32 `yaml:"rotation_frames"`
	Scale          []float32   `yaml:"scale"`
	ScaleFrames    [][]float32 `yaml:"scale_frames"`
}

type assetRefDoc struct {
	Filename string `yaml:"filename"`
	IsInside uint32 `yaml:"is_inside"`
	HTRIndex int    `yaml:"htr_index"`
}

type descriptorDoc struct {
	ModelFile   *assetRefDoc `yaml:"model_file"`
	TextureFile *assetRefDoc `yaml:"texture_file"`
	Location    []float32    `yaml:"location"`
	Rotation    []float32    `yaml:"rotation"`
	Scale       []float32    `yaml:"scale"`
}

type placementDoc struct {
	ModelLibrary   string          `yaml:"mmf_file"`
	TextureIndex   string          `yaml:"htr_file"`
	MergedTextures string          `yaml:"merge_htx_file"`
	Descriptors    []descriptorDoc `yaml:"models"`
}

type textureIndexDoc struct {
	HTSFIDs []int `yaml:"htsf_ids"`
}

func (d *containerDoc) container(path string) (*Container, error) {
	schema := Schema(d.Schema)
	if !schema.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, d.Schema)
	}

	c := &Container{Path: path, Schema: schema}

	for i := range d.Children {
		child, err := d.Children[i].container(path)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		c.Children = append(c.Children, child)
	}

	var err error
	switch schema {
	case SchemaHMDL:
		if d.Model == nil {
			return nil, fmt.Errorf("HMDL without model")
		}
		if c.Model, err = d.Model.model(); err != nil {
			return nil, err
		}
	case SchemaHTSF:
		if d.Image == nil {
			return nil, fmt.Errorf("HTSF without image")
		}
		data, err := base64.StdEncoding.DecodeString(d.Image.Data)
		if err != nil {
			return nil, fmt.Errorf("image payload: %w", err)
		}
		c.Image = &Image{Data: data}
	case SchemaMXTL:
		for _, list := range d.TextureLists {
			entries := make([]TextureListEntry, len(list))
			for i, e := range list {
				entries[i] = TextureListEntry{HTSF: e.HTSF, Filename: e.Filename}
			}
			c.TextureLists = append(c.TextureLists, entries)
		}
	case SchemaHSHP:
		for i, key := range d.ShapeKeys {
			verts, err := vec3List(key.Vertices)
			if err != nil {
				return nil, fmt.Errorf("shape key %d: %w", i, err)
			}
			c.ShapeKeys = append(c.ShapeKeys, ShapeKey{Vertices: verts})
		}
	case SchemaHMOT:
		for i := range d.Pose {
			pb, err := d.Pose[i].poseBone()
			if err != nil {
				return nil, fmt.Errorf("pose bone %d: %w", i, err)
			}
			c.Pose = append(c.Pose, pb)
		}
	case SchemaMXEC:
		if d.Placement == nil {
			return nil, fmt.Errorf("MXEC without placement table")
		}
		if c.Placement, err = d.Placement.placement(); err != nil {
			return nil, err
		}
	case SchemaMMF:
		c.NamedModels = make(map[string]*Container, len(d.NamedModels))
		for name, md := range d.NamedModels {
			m, err := md.container(path)
			if err != nil {
				return nil, fmt.Errorf("named model %s: %w", name, err)
			}
			c.NamedModels[name] = m
		}
	case SchemaHTR:
		for _, p := range d.TextureIndex {
			c.TextureIndex = append(c.TextureIndex, TextureIndexPack{HTSFIDs: p.HTSFIDs})
		}
	}

	return c, nil
}

func (d *modelDoc) model() (*Model, error) {
	m := &Model{Units: make([]Unit, len(d.Units))}
	for i := range d.Units {
		if err := d.Units[i].fill(&m.Units[i]); err != nil {
			return nil, fmt.Errorf("unit %d: %w", i, err)
		}
	}
	return m, nil
}

func (d *unitDoc) fill(u *Unit) error {
	u.BytesPerVertex = d.BytesPerVertex

	u.Bones = make([]Bone, len(d.Bones))
	for i, bd := range d.Bones {
		b := &u.Bones[i]
		b.ID = bd.ID
		b.DeformID = bd.DeformID
		b.Parent = bd.Parent
		b.FavChild = bd.FavChild
		b.ObjectPtr1 = bd.ObjectPtr1

		var err error
		if b.Location, err = vec3(bd.Location, math.Vec3{}); err != nil {
			return fmt.Errorf("bone %d location: %w", i, err)
		}
		if b.Rotation, err = quat(bd.Rotation); err != nil {
			return fmt.Errorf("bone %d rotation: %w", i, err)
		}
		if bd.Scale != nil {
			s, err := vec3(bd.Scale, math.One())
			if err != nil {
				return fmt.Errorf("bone %d scale: %w", i, err)
			}
			b.Scale = &s
		}
	}

	u.Meshes = make([]Mesh, len(d.Meshes))
	for i := range d.Meshes {
		if err := d.Meshes[i].fill(&u.Meshes[i]); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
	}

	for _, md := range d.Materials {
		u.Materials = append(u.Materials, Material{
			Ptr:                md.Ptr,
			Texture0Ptr:        md.Texture0,
			Texture1Ptr:        md.Texture1,
			UseAlpha:           md.UseAlpha,
			UseBackfaceCulling: md.UseBackfaceCulling,
			UseNormal:          md.UseNormal,
		})
	}
	for _, td := range d.Textures {
		u.Textures = append(u.Textures, TextureSlot{Ptr: td.Ptr, Image: td.Image})
	}
	return nil
}

func (d *meshDoc) fill(m *Mesh) error {
	m.ParentBoneID = d.ParentBoneID
	m.MaterialPtr = d.MaterialPtr
	m.VertexGroupMap = d.VertexGroupMap

	m.Vertices = make([]Vertex, len(d.Vertices))
	for i, vd := range d.Vertices {
		v := &m.Vertices[i]
		var err error
		if v.Position, err = vec3(vd.Position, math.Vec3{}); err != nil {
			return fmt.Errorf("vertex %d position: %w", i, err)
		}
		if v.Normal, err = vec3(vd.Normal, math.Vec3{}); err != nil {
			return fmt.Errorf("vertex %d normal: %w", i, err)
		}
		if v.UV, err = vec2(vd.UV); err != nil {
			return fmt.Errorf("vertex %d uv: %w", i, err)
		}
		if v.UV2, err = vec2(vd.UV2); err != nil {
			return fmt.Errorf("vertex %d uv2: %w", i, err)
		}
		switch len(vd.Influences) {
		case 0:
		case 2:
			for j, inf := range vd.Influences {
				v.Influences[j] = Influence{Bone: inf.Bone, Weight: inf.Weight}
			}
		default:
			return fmt.Errorf("vertex %d: %d influences, want 2", i, len(vd.Influences))
		}
	}

	for i, f := range d.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrFaceIndex, i, idx, len(m.Vertices))
			}
		}
	}
	m.Faces = d.Faces
	return nil
}

func (d *poseBoneDoc) poseBone() (PoseBone, error) {
	var pb PoseBone
	var err error

	if d.Location != nil {
		loc, err := vec3(d.Location, math.Vec3{})
		if err != nil {
			return pb, fmt.Errorf("location: %w", err)
		}
		pb.Location = &loc
	}
	if pb.LocationFrames, err = vec3List(d.LocationFrames); err != nil {
		return pb, fmt.Errorf("location frames: %w", err)
	}

	if d.Rotation != nil {
		rot, err := quat(d.Rotation)
		if err != nil {
			return pb, fmt.Errorf("rotation: %w", err)
		}
		pb.Rotation = &rot
	}
	for i, f := range d.RotationFrames {
		q, err := quat(f)
		if err != nil {
			return pb, fmt.Errorf("rotation frame %d: %w", i, err)
		}
		pb.RotationFrames = append(pb.RotationFrames, q)
	}

	if d.Scale != nil {
		s, err := vec3(d.Scale, math.Vec3{})
		if err != nil {
			return pb, fmt.Errorf("scale: %w", err)
		}
		pb.Scale = &s
	}
	if pb.ScaleFrames, err = vec3List(d.ScaleFrames); err != nil {
		return pb, fmt.Errorf("scale frames: %w", err)
	}
	return pb, nil
}

func (d *placementDoc) placement() (*Placement, error) {
	p := &Placement{
		ModelLibrary:   d.ModelLibrary,
		TextureIndex:   d.TextureIndex,
		MergedTextures: d.MergedTextures,
	}
	for i, dd := range d.Descriptors {
		desc := Descriptor{
			ModelFile:   dd.ModelFile.assetRef(),
			TextureFile: dd.TextureFile.assetRef(),
		}
		var err error
		if desc.Location, err = vec3(dd.Location, math.Vec3{}); err != nil {
			return nil, fmt.Errorf("descriptor %d location: %w", i, err)
		}
		if desc.Rotation, err = vec3(dd.Rotation, math.Vec3{}); err != nil {
			return nil, fmt.Errorf("descriptor %d rotation: %w", i, err)
		}
		if desc.Scale, err = vec3(dd.Scale, math.One()); err != nil {
			return nil, fmt.Errorf("descriptor %d scale: %w", i, err)
		}
		p.Descriptors = append(p.Descriptors, desc)
	}
	return p, nil
}

func (d *assetRefDoc) assetRef() *AssetRef {
	if d == nil {
		return nil
	}
	return &AssetRef{Filename: d.Filename, IsInside: d.IsInside, HTRIndex: d.HTRIndex}
}

// vec3 converts [x, y, z]; an absent list yields def.
func vec3(v []float32, def math.Vec3) (math.Vec3, error) {
	if v == nil {
		return def, nil
	}
	if len(v) != 3 {
		return def, fmt.Errorf("%w: got %d, want 3", ErrBadVector, len(v))
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func vec2(v []float32) (math.Vec2, error) {
	if v == nil {
		return math.Vec2{}, nil
	}
	if len(v) != 2 {
		return math.Vec2{}, fmt.Errorf("%w: got %d, want 2", ErrBadVector, len(v))
	}
	return math.Vec2{X: v[0], Y: v[1]}, nil
}

// quat converts [x, y, z, w]; an absent list yields the identity.
func quat(v []float32) (math.Quat, error) {
	if v == nil {
		return math.QuatIdentity(), nil
	}
	if len(v) != 4 {
		return math.Quat{}, fmt.Errorf("%w: got %d, want 4", ErrBadVector, len(v))
	}
	return math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}, nil
}

func vec3List(list [][]float32) ([]math.Vec3, error) {
	if list == nil {
		return nil, nil
	}
	out := make([]math.Vec3, len(list))
	for i, v := range list {
		if v == nil {
			return nil, fmt.Errorf("entry %d: %w: empty", i, ErrBadVector)
		}
		var err error
		if out[i], err = vec3(v, math.Vec3{}); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}
