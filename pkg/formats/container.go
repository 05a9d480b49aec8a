package formats

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Container errors.
var (
	ErrCorruptContainer = errors.New("corrupt container")
	ErrMissingSection   = errors.New("missing section")
)

// CorruptContainerError reports a container the decoder could not read.
type CorruptContainerError struct {
	Path string
	Err  error
}

func (e *CorruptContainerError) Error() string {
	return fmt.Sprintf("corrupt container %s: %v", e.Path, e.Err)
}

func (e *CorruptContainerError) Unwrap() error { return e.Err }

// Is matches ErrCorruptContainer.
func (e *CorruptContainerError) Is(target error) bool {
	return target == ErrCorruptContainer
}

// MissingSectionError reports an absent section. It is fatal only where the
// caller requires the section.
type MissingSectionError struct {
	Path   string
	Schema Schema
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("%s: no %s section", e.Path, e.Schema)
}

// Is matches ErrMissingSection.
func (e *MissingSectionError) Is(target error) bool {
	return target == ErrMissingSection
}

// Container is one decoded file or inner file, tagged by schema.
// Only the fields belonging to its schema are populated.
type Container struct {
	Path   string
	Schema Schema

	// Inner files and sections in stream order.
	Children []*Container

	Model        *Model                // HMDL
	Image        *Image                // HTSF
	TextureLists [][]TextureListEntry  // MXTL
	ShapeKeys    []ShapeKey            // HSHP
	Pose         []PoseBone            // HMOT
	Placement    *Placement            // MXEC
	NamedModels  map[string]*Container // MMF, values are HMDL containers
	TextureIndex []TextureIndexPack    // HTR
}

// Name returns the base name of the file the container was read from.
func (c *Container) Name() string {
	return filepath.Base(c.Path)
}

// Sections returns the direct children tagged with schema, in stream order.
func (c *Container) Sections(schema Schema) []*Container {
	var out []*Container
	for _, child := range c.Children {
		if child.Schema == schema {
			out = append(out, child)
		}
	}
	return out
}

// Has reports whether at least one child is tagged with schema.
func (c *Container) Has(schema Schema) bool {
	for _, child := range c.Children {
		if child.Schema == schema {
			return true
		}
	}
	return false
}

// First returns the first child tagged with schema.
func (c *Container) First(schema Schema) (*Container, error) {
	for _, child := range c.Children {
		if child.Schema == schema {
			return child, nil
		}
	}
	return nil, &MissingSectionError{Path: c.Path, Schema: schema}
}

// Images returns the images of the HTSF children, in order.
func (c *Container) Images() []*Image {
	var out []*Image
	for _, child := range c.Children {
		if child.Schema == SchemaHTSF && child.Image != nil {
			out = append(out, child.Image)
		}
	}
	return out
}
