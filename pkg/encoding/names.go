// Package encoding provides filename normalisation for container references.
package encoding

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// FoldName normalises a referenced filename for case-insensitive matching.
// Containers reference siblings by upper-cased names while extracted files
// keep whatever case the extraction tool chose.
func FoldName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	return cases.Fold().String(name)
}
