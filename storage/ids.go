package storage

import (
	"strings"

	"github.com/google/uuid"
)

// NewID builds a prefixed random identifier such as "product_<uuid>".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// SanitizeFilename replaces every character outside [A-Za-z0-9-_.] with "_".
func SanitizeFilename(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// validID reports whether id can be used verbatim as a record id.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && SanitizeFilename(id) == id
}
