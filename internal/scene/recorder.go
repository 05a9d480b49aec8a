package scene

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/BlenderCN-Org/import-valkyria/internal/model"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
	"github.com/BlenderCN-Org/import-valkyria/pkg/math"
)

// Object kinds recorded by Recorder.
const (
	KindGroup     = "group"
	KindTexture   = "texture"
	KindMaterial  = "material"
	KindSkeleton  = "skeleton"
	KindMesh      = "mesh"
	KindDuplicate = "duplicate"
)

// Recorder is a Builder that records every object into a Document instead of
// creating anything.
type Recorder struct {
	Doc Document
}

// Document is the YAML form of a built scene.
type Document struct {
	Scene   string    `yaml:"scene"`
	Schema  string    `yaml:"schema"`
	Objects []*Object `yaml:"objects"`
}

// Object is one created item. Handles are 1-based positions in Objects.
type Object struct {
	Handle    Handle         `yaml:"handle"`
	Kind      string         `yaml:"kind"`
	Name      string         `yaml:"name"`
	Parent    Handle         `yaml:"parent,omitempty"`
	Source    Handle         `yaml:"source,omitempty"`
	Transform *TransformDoc  `yaml:"transform,omitempty"`
	Size      int            `yaml:"size,omitempty"`
	Textures  []Handle       `yaml:"textures,omitempty"`
	Flags     []string       `yaml:"flags,omitempty"`
	Joints    []JointDoc     `yaml:"joints,omitempty"`
	Skeleton  Handle         `yaml:"skeleton,omitempty"`
	Material  Handle         `yaml:"material,omitempty"`
	Bone      string         `yaml:"parent_bone,omitempty"`
	Vertices  int            `yaml:"vertices,omitempty"`
	Faces     int            `yaml:"faces,omitempty"`
	Skin      map[string]int `yaml:"skin,omitempty"`
	Morphs    []*MorphDoc    `yaml:"morphs,omitempty"`

	mesh *formats.Mesh
}

// TransformDoc is a Transform with rotation in radians. Matrix is the
// column-major world matrix.
type TransformDoc struct {
	Location [3]float32  `yaml:"location,flow"`
	Rotation [3]float32  `yaml:"rotation,flow"`
	Scale    [3]float32  `yaml:"scale,flow"`
	Matrix   [16]float32 `yaml:"matrix,flow"`
}

// JointDoc is a solved joint.
type JointDoc struct {
	Name     string     `yaml:"name"`
	Parent   string     `yaml:"parent,omitempty"`
	Head     [3]float32 `yaml:"head,flow"`
	Tail     [3]float32 `yaml:"tail,flow"`
	Rotation [4]float32 `yaml:"rotation,flow"`
}

// MorphDoc is a morph target. Moved counts the vertices it displaces.
type MorphDoc struct {
	Name      string      `yaml:"name"`
	Moved     int         `yaml:"moved"`
	Displaced []math.Vec3 `yaml:"-"`
}

// NewRecorder creates a recorder for the named scene.
func NewRecorder(name string, schema fmt.Stringer) *Recorder {
	return &Recorder{Doc: Document{Scene: name, Schema: schema.String()}}
}

// Object returns the object behind h.
func (r *Recorder) Object(h Handle) (*Object, error) {
	if h <= NoHandle || int(h) > len(r.Doc.Objects) {
		return nil, fmt.Errorf("unknown handle %d", h)
	}
	return r.Doc.Objects[h-1], nil
}

// Find returns the objects of kind named name, in creation order.
func (r *Recorder) Find(kind, name string) []*Object {
	var out []*Object
	for _, o := range r.Doc.Objects {
		if o.Kind == kind && (name == "" || o.Name == name) {
			out = append(out, o)
		}
	}
	return out
}

// Marshal returns the document as YAML.
func (r *Recorder) Marshal() ([]byte, error) {
	return yaml.Marshal(&r.Doc)
}

func (r *Recorder) add(o *Object) Handle {
	r.Doc.Objects = append(r.Doc.Objects, o)
	o.Handle = Handle(len(r.Doc.Objects))
	return o.Handle
}

func (r *Recorder) CreateGroup(name string, parent Handle) (Handle, error) {
	return r.add(&Object{Kind: KindGroup, Name: name, Parent: parent}), nil
}

func (r *Recorder) CreateTexture(img *model.TextureImage) (Handle, error) {
	return r.add(&Object{Kind: KindTexture, Name: img.Filename, Size: len(img.Data)}), nil
}

func (r *Recorder) CreateMaterial(m *model.MaterialBinding, texture0, texture1 Handle) (Handle, error) {
	o := &Object{Kind: KindMaterial, Name: m.Name}
	if texture0 != NoHandle || texture1 != NoHandle {
		o.Textures = []Handle{texture0, texture1}
	}
	if m.UseAlpha {
		o.Flags = append(o.Flags, "alpha")
	}
	if m.UseBackfaceCulling {
		o.Flags = append(o.Flags, "backface_culling")
	}
	if m.UseNormal {
		o.Flags = append(o.Flags, "normal_map")
	}
	return r.add(o), nil
}

func (r *Recorder) CreateSkeleton(name string, parent Handle, joints []model.Joint) (Handle, error) {
	o := &Object{Kind: KindSkeleton, Name: name, Parent: parent}
	for _, j := range joints {
		jd := JointDoc{
			Name:     j.Name,
			Head:     j.Head.Array(),
			Tail:     j.Tail.Array(),
			Rotation: j.Rotation.Array(),
		}
		if j.HasParent() {
			jd.Parent = joints[j.Parent].Name
		}
		o.Joints = append(o.Joints, jd)
	}
	return r.add(o), nil
}

func (r *Recorder) CreateMesh(parent Handle, spec MeshSpec) (Handle, error) {
	return r.add(&Object{
		Kind:     KindMesh,
		Name:     spec.Name,
		Parent:   parent,
		Skeleton: spec.Skeleton,
		Material: spec.Material,
		Bone:     spec.ParentBone,
		Vertices: len(spec.Mesh.Vertices),
		Faces:    len(spec.Mesh.Faces),
		mesh:     spec.Mesh,
	}), nil
}

func (r *Recorder) BindSkin(mesh Handle, groups model.VertexGroups) error {
	o, err := r.Object(mesh)
	if err != nil {
		return err
	}
	o.Skin = make(map[string]int, len(groups))
	for _, bone := range groups.Bones() {
		o.Skin[model.GroupName(bone)] = len(groups[bone])
	}
	return nil
}

func (r *Recorder) ApplyMorph(mesh Handle, name string, displaced []math.Vec3) error {
	o, err := r.Object(mesh)
	if err != nil {
		return err
	}
	if o.mesh == nil || len(displaced) != len(o.mesh.Vertices) {
		return fmt.Errorf("morph %s does not match mesh %s", name, o.Name)
	}
	md := &MorphDoc{Name: name, Displaced: displaced}
	for i, p := range displaced {
		if p != o.mesh.Vertices[i].Position {
			md.Moved++
		}
	}
	o.Morphs = append(o.Morphs, md)
	return nil
}

func (r *Recorder) DuplicateInstance(existing Handle, name string) (Handle, error) {
	if _, err := r.Object(existing); err != nil {
		return NoHandle, err
	}
	return r.add(&Object{Kind: KindDuplicate, Name: name, Source: existing}), nil
}

func (r *Recorder) SetTransform(h Handle, t Transform) error {
	o, err := r.Object(h)
	if err != nil {
		return err
	}
	o.Transform = &TransformDoc{
		Location: t.Location.Array(),
		Rotation: t.Rotation.Array(),
		Scale:    t.Scale.Array(),
		Matrix:   t.Matrix(),
	}
	return nil
}
