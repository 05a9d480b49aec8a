package formats

import (
	"errors"
	"testing"
)

const testHMDL = `
schema: HMDL
model:
  units:
    - bytes_per_vertex: 0x30
      bones:
        - id: 0
          location: [0, 0, 0]
        - id: 1
          deform_id: 3
          parent: 0
          location: [1, 0, 0]
          rotation: [0, 0, 0, 1]
          scale: [2, 2, 2]
      meshes:
        - parent_bone_id: 0
          material_ptr: 0x40
          vertex_group_map: [0, 1]
          vertices:
            - position: [0, 0, 0]
              uv: [0, 1]
              influences: [{bone: 0, weight: 1}, {bone: 1, weight: 0}]
            - position: [1, 0, 0]
              influences: [{bone: 1, weight: 0.5}, {bone: 0, weight: 0.5}]
            - position: [0, 1, 0]
              influences: [{bone: 0, weight: 1}, {bone: 0, weight: 0}]
          faces: [[0, 1, 2]]
      materials:
        - ptr: 0x40
          texture0: 0x80
          use_alpha: true
      textures:
        - ptr: 0x80
          image: 0
`

func TestYAMLDecoder_Model(t *testing.T) {
	c, err := YAMLDecoder{}.Decode("/data/a.hmd", []byte(testHMDL))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if c.Schema != SchemaHMDL {
		t.Errorf("expected schema HMDL, got %s", c.Schema)
	}
	if c.Name() != "a.hmd" {
		t.Errorf("expected name a.hmd, got %s", c.Name())
	}
	if c.Model == nil || len(c.Model.Units) != 1 {
		t.Fatalf("expected 1 unit, got %+v", c.Model)
	}

	u := c.Model.Units[0]
	if !u.Skinned() {
		t.Error("expected skinned unit")
	}
	if len(u.Bones) != 2 {
		t.Fatalf("expected 2 bones, got %d", len(u.Bones))
	}

	root := u.Bones[0]
	if root.Parent != nil || root.DeformID != nil || root.Scale != nil {
		t.Errorf("root bone should have no optional fields: %+v", root)
	}
	if root.Rotation.W != 1 {
		t.Errorf("absent rotation should decode as identity, got %+v", root.Rotation)
	}
	if root.Name() != "Bone-00" {
		t.Errorf("expected Bone-00, got %s", root.Name())
	}

	child := u.Bones[1]
	if child.Parent == nil || *child.Parent != 0 {
		t.Errorf("expected parent 0, got %v", child.Parent)
	}
	if child.Name() != "Bone-03" {
		t.Errorf("expected name from deform id, got %s", child.Name())
	}
	if child.ScaleOrUnit().X != 2 {
		t.Errorf("expected scale 2, got %+v", child.ScaleOrUnit())
	}

	mesh := u.Meshes[0]
	if _, ok := mesh.ParentBone(); ok {
		t.Error("parent bone 0 should count as no parent bone")
	}
	if len(mesh.Vertices) != 3 || len(mesh.Faces) != 1 {
		t.Fatalf("unexpected mesh shape: %d vertices, %d faces", len(mesh.Vertices), len(mesh.Faces))
	}
	if mesh.Vertices[1].Influences[0].Weight != 0.5 {
		t.Errorf("expected weight 0.5, got %f", mesh.Vertices[1].Influences[0].Weight)
	}
	if mesh.Vertices[0].UV.Y != 1 {
		t.Errorf("expected uv.y 1, got %f", mesh.Vertices[0].UV.Y)
	}

	if len(u.Materials) != 1 || u.Materials[0].Ptr != 0x40 {
		t.Fatalf("expected one material at 0x40, got %+v", u.Materials)
	}
	mat := u.Materials[0]
	if mat.Texture0Ptr == nil || *mat.Texture0Ptr != 0x80 || mat.Texture1Ptr != nil {
		t.Errorf("unexpected texture pointers: %+v", mat)
	}
	if _, ok := u.Texture(0x80); !ok {
		t.Error("texture 0x80 not found")
	}
}

func TestYAMLDecoder_Archive(t *testing.T) {
	src := `
schema: IZCA
children:
  - schema: HTEX
    children:
      - schema: HTSF
        image: {data: "AQID"}
  - schema: MXTL
    texture_lists:
      - [{htsf: 0, filename: body}]
  - schema: HSHP
    shape_keys:
      - vertices: [[0, 0, 1], [0, 1, 0]]
`
	c, err := YAMLDecoder{}.Decode("scene.mlx", []byte(src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(c.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(c.Children))
	}

	htex, err := c.First(SchemaHTEX)
	if err != nil {
		t.Fatalf("First(HTEX) failed: %v", err)
	}
	images := htex.Images()
	if len(images) != 1 || string(images[0].Data) != "\x01\x02\x03" {
		t.Errorf("unexpected images: %+v", images)
	}
	if htex.Path != "scene.mlx" {
		t.Errorf("children should inherit the path, got %s", htex.Path)
	}

	mxtl, _ := c.First(SchemaMXTL)
	if mxtl.TextureLists[0][0].Filename != "body" {
		t.Errorf("unexpected texture list: %+v", mxtl.TextureLists)
	}

	hshp, _ := c.First(SchemaHSHP)
	if len(hshp.ShapeKeys) != 1 || hshp.ShapeKeys[0].Vertices[0].Z != 1 {
		t.Errorf("unexpected shape keys: %+v", hshp.ShapeKeys)
	}

	if c.Has(SchemaHMOT) {
		t.Error("archive has no HMOT section")
	}
	_, err = c.First(SchemaHMOT)
	if !errors.Is(err, ErrMissingSection) {
		t.Errorf("expected ErrMissingSection, got %v", err)
	}
}

func TestYAMLDecoder_Placement(t *testing.T) {
	src := `
schema: MXEN
children:
  - schema: MXEC
    placement:
      mmf_file: lib.mmf
      htr_file: lib.htr
      merge_htx_file: lib.htx
      models:
        - model_file: {filename: tree, is_inside: 0x200}
          texture_file: {filename: tree, is_inside: 0x100, htr_index: 2}
          location: [1, 2, 3]
          rotation: [0, 90, 0]
        - texture_file: {filename: rock.htx}
`
	c, err := YAMLDecoder{}.Decode("map.mxe", []byte(src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	mxec, err := c.First(SchemaMXEC)
	if err != nil {
		t.Fatalf("First(MXEC) failed: %v", err)
	}
	p := mxec.Placement
	if p.ModelLibrary != "lib.mmf" || p.TextureIndex != "lib.htr" || p.MergedTextures != "lib.htx" {
		t.Errorf("unexpected side files: %+v", p)
	}
	if len(p.Descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(p.Descriptors))
	}

	d := p.Descriptors[0]
	if d.ModelFile.IsInside != AddressModelLibrary {
		t.Errorf("expected model library addressing, got %#x", d.ModelFile.IsInside)
	}
	if d.TextureFile.IsInside != AddressMergedTexture || d.TextureFile.HTRIndex != 2 {
		t.Errorf("unexpected texture ref: %+v", d.TextureFile)
	}
	if d.Rotation.Y != 90 {
		t.Errorf("rotation should stay in degrees, got %+v", d.Rotation)
	}
	if d.Scale.X != 1 || d.Scale.Y != 1 || d.Scale.Z != 1 {
		t.Errorf("absent scale should default to unit, got %+v", d.Scale)
	}
	if p.Descriptors[1].ModelFile != nil {
		t.Error("second descriptor has no model reference")
	}
}

func TestYAMLDecoder_Pose(t *testing.T) {
	src := `
schema: HMOT
pose:
  - location: [0, 0, 0]
    location_frames: [[1, 0, 0], [2, 0, 0]]
  - rotation: [0, 0, 0, 1]
    rotation_frames: [[0, 0, 0, 0]]
  - {}
`
	c, err := YAMLDecoder{}.Decode("pose.mlx", []byte(src))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(c.Pose) != 3 {
		t.Fatalf("expected 3 pose bones, got %d", len(c.Pose))
	}
	if c.Pose[0].Location == nil || len(c.Pose[0].LocationFrames) != 2 {
		t.Errorf("unexpected location delta: %+v", c.Pose[0])
	}
	if c.Pose[1].Rotation == nil || c.Pose[1].Location != nil {
		t.Errorf("unexpected rotation delta: %+v", c.Pose[1])
	}
	if c.Pose[2].Location != nil || c.Pose[2].Rotation != nil || c.Pose[2].Scale != nil {
		t.Errorf("empty record should carry no deltas: %+v", c.Pose[2])
	}
}

func TestYAMLDecoder_SideFiles(t *testing.T) {
	mmf := `
schema: MMF
named_models:
  tree:
    schema: HMDL
    model: {units: [{bytes_per_vertex: 0x20}]}
`
	c, err := YAMLDecoder{}.Decode("lib.mmf", []byte(mmf))
	if err != nil {
		t.Fatalf("Decode MMF failed: %v", err)
	}
	if c.NamedModels["tree"] == nil || c.NamedModels["tree"].Model == nil {
		t.Errorf("expected named model tree, got %+v", c.NamedModels)
	}

	htr := `
schema: HTR
texture_index:
  - htsf_ids: [0, 1]
  - htsf_ids: [2]
`
	c, err = YAMLDecoder{}.Decode("lib.htr", []byte(htr))
	if err != nil {
		t.Fatalf("Decode HTR failed: %v", err)
	}
	if len(c.TextureIndex) != 2 || c.TextureIndex[0].HTSFIDs[1] != 1 {
		t.Errorf("unexpected texture index: %+v", c.TextureIndex)
	}
}

func TestYAMLDecoder_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{
			name: "malformed yaml",
			src:  "schema: [HMDL",
		},
		{
			name:    "unknown schema",
			src:     "schema: RIFF",
			wantErr: ErrUnknownSchema,
		},
		{
			name: "model without record",
			src:  "schema: HMDL",
		},
		{
			name: "texture without image",
			src:  "schema: HTSF",
		},
		{
			name: "bad base64",
			src:  "schema: HTSF\nimage: {data: '!!!'}",
		},
		{
			name:    "short vector",
			src:     "schema: HMDL\nmodel: {units: [{bones: [{id: 0, location: [1, 2]}]}]}",
			wantErr: ErrBadVector,
		},
		{
			name:    "short quaternion",
			src:     "schema: HMDL\nmodel: {units: [{bones: [{id: 0, rotation: [0, 0, 1]}]}]}",
			wantErr: ErrBadVector,
		},
		{
			name:    "face out of range",
			src:     "schema: HMDL\nmodel: {units: [{meshes: [{vertices: [{}], faces: [[0, 0, 1]]}]}]}",
			wantErr: ErrFaceIndex,
		},
		{
			name: "single influence",
			src:  "schema: HMDL\nmodel: {units: [{meshes: [{vertices: [{influences: [{bone: 0, weight: 1}]}]}]}]}",
		},
		{
			name:    "bad child",
			src:     "schema: IZCA\nchildren: [{schema: NOPE}]",
			wantErr: ErrUnknownSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := YAMLDecoder{}.Decode("bad.bin", []byte(tt.src))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrCorruptContainer) {
				t.Errorf("expected ErrCorruptContainer, got %v", err)
			}
			var cerr *CorruptContainerError
			if !errors.As(err, &cerr) || cerr.Path != "bad.bin" {
				t.Errorf("expected CorruptContainerError for bad.bin, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
