package model

import (
	"fmt"

	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// MaterialBinding is a material with its texture pointers resolved to pack
// images.
type MaterialBinding struct {
	Ptr                uint32
	Name               string
	Texture0           *TextureImage
	Texture1           *TextureImage
	UseAlpha           bool
	UseBackfaceCulling bool
	UseNormal          bool
}

// MaterialName returns the display name of the material stored under ptr.
func MaterialName(ptr uint32) string {
	return fmt.Sprintf("Material-%04x", ptr)
}

// BindMaterials resolves every material of u against pack. With a nil pack
// the bindings carry flags only.
func BindMaterials(u *formats.Unit, pack *TexturePack) ([]MaterialBinding, error) {
	out := make([]MaterialBinding, 0, len(u.Materials))
	for _, m := range u.Materials {
		b := MaterialBinding{
			Ptr:                m.Ptr,
			Name:               MaterialName(m.Ptr),
			UseAlpha:           m.UseAlpha,
			UseBackfaceCulling: m.UseBackfaceCulling,
			UseNormal:          m.UseNormal,
		}
		if pack != nil {
			var err error
			if b.Texture0, err = bindTexture(u, pack, m.Texture0Ptr); err != nil {
				return nil, fmt.Errorf("%s texture0: %w", b.Name, err)
			}
			if b.Texture1, err = bindTexture(u, pack, m.Texture1Ptr); err != nil {
				return nil, fmt.Errorf("%s texture1: %w", b.Name, err)
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func bindTexture(u *formats.Unit, pack *TexturePack, ptr *uint32) (*TextureImage, error) {
	if ptr == nil || *ptr == 0 {
		return nil, nil
	}
	slot, ok := u.Texture(*ptr)
	if !ok {
		return nil, inconsistent("texture pointer", "no texture at %#x", *ptr)
	}
	return pack.Image(slot.Image)
}
