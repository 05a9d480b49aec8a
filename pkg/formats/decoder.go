package formats

// Decoder turns the raw bytes of a file into its record tree.
type Decoder interface {
	Decode(path string, data []byte) (*Container, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(path string, data []byte) (*Container, error)

// Decode calls f(path, data).
func (f DecoderFunc) Decode(path string, data []byte) (*Container, error) {
	return f(path, data)
}
