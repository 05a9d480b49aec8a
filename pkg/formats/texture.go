package formats

// Image is an HTSF texture. The payload is a DDS file passed through as-is.
type Image struct {
	Data []byte
}

// TextureListEntry pairs an HTSF index with the output filename for it.
type TextureListEntry struct {
	HTSF     int
	Filename string
}

// TextureIndexPack lists the HTSF images of a merged texture file that make
// up one texture pack.
type TextureIndexPack struct {
	HTSFIDs []int
}
