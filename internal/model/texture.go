package model

import (
	"fmt"

	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

// TextureImage is an image of a texture pack with its output filename.
type TextureImage struct {
	Filename string
	Data     []byte
}

// TexturePack is the ordered image list a model's texture slots index into.
type TexturePack struct {
	Images []*TextureImage
}

// NewTexturePack creates an empty texture pack.
func NewTexturePack() *TexturePack {
	return &TexturePack{}
}

// Len returns the number of images.
func (p *TexturePack) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Images)
}

// Image returns the image at index i.
func (p *TexturePack) Image(i int) (*TextureImage, error) {
	if i < 0 || i >= p.Len() {
		return nil, inconsistent("texture image", "index %d of %d", i, p.Len())
	}
	return p.Images[i], nil
}

// AddNamed appends img under an explicit base name.
func (p *TexturePack) AddNamed(img *formats.Image, name string) *TextureImage {
	return p.add(img, name+".dds")
}

// AddHTEX appends the htsfID-th image of the htexID-th HTEX section.
func (p *TexturePack) AddHTEX(img *formats.Image, htexID, htsfID int) *TextureImage {
	return p.add(img, fmt.Sprintf("HTEX-%03d-HTSF-%03d.dds", htexID, htsfID))
}

// AddMerged appends an image of a merged texture file. base is the texture
// reference name and htsfID the image's index in the merged file.
func (p *TexturePack) AddMerged(img *formats.Image, base string, htsfID int) *TextureImage {
	return p.AddNamed(img, fmt.Sprintf("%s-%03d", base, htsfID))
}

func (p *TexturePack) add(img *formats.Image, filename string) *TextureImage {
	ti := &TextureImage{Filename: filename}
	if img != nil {
		ti.Data = img.Data
	}
	p.Images = append(p.Images, ti)
	return ti
}
