package scene

import (
	"errors"
	stdmath "math"
	"testing"

	"github.com/BlenderCN-Org/import-valkyria/internal/assets"
	"github.com/BlenderCN-Org/import-valkyria/internal/model"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

func TestImport_PlacementDedup(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "TREE.HMD", "schema: HMDL\nmodel: "+modelFlow(true)+"\n")
	writeFixture(t, dir, "TREE.HTX", htexFlow(1)+"\n")
	src := `schema: MXEN
children:
  - schema: MXEC
    placement:
      models:
        - model_file: {filename: tree.hmd}
          texture_file: {filename: tree.htx}
          location: [1, 2, 3]
          rotation: [0, 90, 180]
          scale: [2, 2, 2]
        - model_file: {filename: tree.hmd}
          texture_file: {filename: tree.htx}
          location: [5, 0, 0]
        - texture_file: {filename: tree.htx}
`
	path := writeFixture(t, dir, "forest.mxe", src)

	s, err := Import(path, noPoses())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(s.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(s.Instances))
	}
	if len(s.Models) != 1 || len(s.Packs) != 1 {
		t.Errorf("expected 1 model and 1 pack, got %d / %d", len(s.Models), len(s.Packs))
	}

	a, b := s.Instances[0], s.Instances[1]
	if a.Model != b.Model || a.Textures != b.Textures {
		t.Error("descriptors naming the same files must share the resolved model and pack")
	}
	if a.Name != "tree.hmd" {
		t.Errorf("instances are named after the model file, got %s", a.Name)
	}

	rot := a.Transform.Rotation
	if stdmath.Abs(float64(rot.Y)-stdmath.Pi/2) > 1e-5 || stdmath.Abs(float64(rot.Z)-stdmath.Pi) > 1e-5 {
		t.Errorf("rotation should be converted to radians, got %+v", rot)
	}
	if a.Transform.Scale.X != 2 || b.Transform.Scale.X != 1 {
		t.Errorf("unexpected scales %+v / %+v", a.Transform.Scale, b.Transform.Scale)
	}

	placements := Place(s.Instances)
	if placements[0].Kind != BuildNew || placements[1].Kind != Duplicate {
		t.Errorf("expected build then duplicate, got %s / %s", placements[0].Kind, placements[1].Kind)
	}
	if placements[1].Source != 0 {
		t.Errorf("duplicate should copy placement 0, got %d", placements[1].Source)
	}
}

func TestImport_PlacementSideFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "lib.mmf", "schema: MMF\nnamed_models:\n  rock: {schema: HMDL, model: "+modelFlow(true)+"}\n")
	writeFixture(t, dir, "lib.htr", "schema: HTR\ntexture_index:\n  - htsf_ids: [1]\n  - htsf_ids: [0, 2]\n")
	writeFixture(t, dir, "lib.htx", htexFlow(3)+"\n")
	src := `schema: MXEN
children:
  - schema: MXEC
    placement:
      mmf_file: LIB.MMF
      htr_file: LIB.HTR
      merge_htx_file: LIB.HTX
      models:
        - model_file: {filename: rock, is_inside: 0x200}
          texture_file: {filename: rock_tex, is_inside: 0x100, htr_index: 1}
        - model_file: {filename: rock, is_inside: 0x200}
          texture_file: {filename: moss_tex, is_inside: 0x100, htr_index: 0}
`
	path := writeFixture(t, dir, "cave.mxe", src)

	s, err := Import(path, noPoses())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(s.Models) != 1 || len(s.Packs) != 2 {
		t.Fatalf("expected 1 model and 2 packs, got %d / %d", len(s.Models), len(s.Packs))
	}

	rock := s.Packs[0]
	if rock.Len() != 2 || rock.Images[0].Filename != "rock_tex-000.dds" || rock.Images[1].Filename != "rock_tex-002.dds" {
		t.Errorf("unexpected merged pack %+v", rock.Images)
	}
	if s.Packs[1].Images[0].Filename != "moss_tex-001.dds" {
		t.Errorf("unexpected merged pack %+v", s.Packs[1].Images)
	}

	// Same model, different textures: both are built.
	placements := Place(s.Instances)
	if placements[0].Kind != BuildNew || placements[1].Kind != BuildNew {
		t.Error("different texture packs need separate builds")
	}
}

func TestImport_PlacementTextureIDs(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "tree.hmd", "schema: HMDL\nmodel: "+modelFlow(true)+"\n")
	writeFixture(t, dir, "a.htx", htexFlow(1)+"\n")
	writeFixture(t, dir, "b.htx", htexFlow(1)+"\n")
	src := `schema: MXEN
children:
  - schema: MXEC
    placement:
      models:
        - model_file: {filename: tree.hmd}
          texture_file: {filename: a.htx}
        - model_file: {filename: tree.hmd}
          texture_file: {filename: a.htx}
        - model_file: {filename: tree.hmd}
          texture_file: {filename: b.htx}
`
	path := writeFixture(t, dir, "grove.mxe", src)

	s, err := Import(path, noPoses())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(s.Packs) != 2 {
		t.Fatalf("expected 2 packs, got %d", len(s.Packs))
	}
	// Reused texture references still advance the HTEX id.
	if got := s.Packs[0].Images[0].Filename; got != "HTEX-000-HTSF-000.dds" {
		t.Errorf("unexpected first image name %s", got)
	}
	if got := s.Packs[1].Images[0].Filename; got != "HTEX-002-HTSF-000.dds" {
		t.Errorf("unexpected second image name %s", got)
	}
}

func TestImport_PlacementErrors(t *testing.T) {
	tests := []struct {
		name    string
		models  string
		files   string
		wantErr error
	}{
		{
			name:    "unknown model mode",
			models:  "- model_file: {filename: a, is_inside: 0x300}",
			wantErr: ErrUnresolvedAddressingMode,
		},
		{
			name:    "texture mode on model",
			models:  "- model_file: {filename: a, is_inside: 0x100}",
			wantErr: ErrUnresolvedAddressingMode,
		},
		{
			name:    "unknown texture mode",
			models:  "- model_file: {filename: a.hmd}\n          texture_file: {filename: t, is_inside: 0x200}",
			wantErr: ErrUnresolvedAddressingMode,
		},
		{
			name:    "library without file",
			models:  "- model_file: {filename: a, is_inside: 0x200}",
			wantErr: model.ErrInconsistentReference,
		},
		{
			name:    "merged without index",
			models:  "- model_file: {filename: a.hmd}\n          texture_file: {filename: t, is_inside: 0x100}",
			wantErr: model.ErrInconsistentReference,
		},
		{
			name:    "index out of range",
			files:   "      htr_file: lib.htr\n      merge_htx_file: lib.htx\n",
			models:  "- model_file: {filename: a.hmd}\n          texture_file: {filename: t, is_inside: 0x100, htr_index: 9}",
			wantErr: model.ErrInconsistentReference,
		},
		{
			name:    "missing model file",
			models:  "- model_file: {filename: nope.hmd}",
			wantErr: assets.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFixture(t, dir, "a.hmd", "schema: HMDL\nmodel: "+modelFlow(false)+"\n")
			writeFixture(t, dir, "lib.htr", "schema: HTR\ntexture_index: [{htsf_ids: [0]}]\n")
			writeFixture(t, dir, "lib.htx", htexFlow(1)+"\n")
			src := "schema: MXEN\nchildren:\n  - schema: MXEC\n    placement:\n" + tt.files +
				"      models:\n        " + tt.models + "\n"
			path := writeFixture(t, dir, "x.mxe", src)

			_, err := Import(path, noPoses())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestImport_PlacementWithoutTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "empty.mxe", "schema: MXEN\n")

	_, err := Import(path, noPoses())
	var missing *formats.MissingSectionError
	if !errors.As(err, &missing) || missing.Schema != formats.SchemaMXEC {
		t.Errorf("expected missing MXEC section, got %v", err)
	}
}

func TestPlace(t *testing.T) {
	g1, g2 := &model.Graph{Name: "a"}, &model.Graph{Name: "b"}
	p1 := model.NewTexturePack()

	instances := []Instance{
		{Name: "a", Model: g1, Textures: p1},
		{Name: "b", Model: g2},
		{Name: "a", Model: g1, Textures: p1},
		{Name: "a", Model: g1},
		{Name: "b", Model: g2},
	}

	tests := []struct {
		kind   PlacementKind
		source int
	}{
		{BuildNew, 0},
		{BuildNew, 1},
		{Duplicate, 0},
		{BuildNew, 3},
		{Duplicate, 1},
	}

	placements := Place(instances)
	for i, tt := range tests {
		p := placements[i]
		if p.Kind != tt.kind || p.Source != tt.source {
			t.Errorf("placement %d: got %s from %d, want %s from %d", i, p.Kind, p.Source, tt.kind, tt.source)
		}
		if p.Instance != &instances[i] {
			t.Errorf("placement %d points at the wrong instance", i)
		}
	}
}
