package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// modelFlow is a two-bone skinned model with one triangle. When textured its
// material samples image 0 of the paired pack.
func modelFlow(textured bool) string {
	material := "{ptr: 0x10}"
	textures := "[]"
	if textured {
		material = "{ptr: 0x10, texture0: 0x20}"
		textures = "[{ptr: 0x20, image: 0}]"
	}
	return fmt.Sprintf("{units: [{bytes_per_vertex: 0x30, "+
		"bones: [{id: 0}, {id: 1, parent: 0, location: [1, 0, 0]}], "+
		"meshes: [{material_ptr: 0x10, faces: [[0, 1, 2]], vertices: ["+
		"{position: [0, 0, 0], influences: [{bone: 0, weight: 1}, {bone: 1, weight: 0}]}, "+
		"{position: [1, 0, 0], influences: [{bone: 1, weight: 1}, {bone: 0, weight: 0}]}, "+
		"{position: [0, 1, 0], influences: [{bone: 0, weight: 0.5}, {bone: 1, weight: 0.5}]}]}], "+
		"materials: [%s], textures: %s}]}", material, textures)
}

// htexFlow is an HTEX section holding n one-byte images.
func htexFlow(n int) string {
	s := "{schema: HTEX, children: ["
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ", "
		}
		s += "{schema: HTSF, image: {data: AA==}}"
	}
	return s + "]}"
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// noPoses imports without looking for a pose file.
func noPoses() Options {
	opts := DefaultOptions()
	opts.PoseFile = ""
	return opts
}
