package storage

import (
	"path"
	"strings"
)

// Category names a family of stored assets
type Category string

const (
	CategoryProductOriginal  Category = "product-original"
	CategoryProductProcessed Category = "product-processed"
	CategoryProductMeta      Category = "product-meta"
	CategoryRoom             Category = "room"
	CategoryStagingTemp      Category = "staging-temp"
	CategoryStagingOutput    Category = "staging-output"
	CategoryStagingMeta      Category = "staging-meta"
	CategoryVideoInput       Category = "video-input"
	CategoryVideoOutput      Category = "video-output"
	CategoryVideoMeta        Category = "video-meta"
)

var categoryPrefixes = map[Category]string{
	CategoryProductOriginal:  "products/original",
	CategoryProductProcessed: "products/processed",
	CategoryProductMeta:      "products/meta",
	CategoryRoom:             "staging/rooms",
	CategoryStagingTemp:      "staging/temp",
	CategoryStagingOutput:    "staging/staged",
	CategoryStagingMeta:      "staging/meta",
	CategoryVideoInput:       "videos/input",
	CategoryVideoOutput:      "videos/output",
	CategoryVideoMeta:        "videos/meta",
}

// Prefix returns the key prefix for the category, or "" if unknown.
func (c Category) Prefix() string {
	return categoryPrefixes[c]
}

// IsRecord reports whether the category holds JSON metadata records rather than blobs.
func (c Category) IsRecord() bool {
	switch c {
	case CategoryProductMeta, CategoryStagingMeta, CategoryVideoMeta:
		return true
	}
	return false
}

// RefFromKey turns a storage key into its public-facing reference.
func RefFromKey(key string) string {
	return "/" + strings.TrimLeft(key, "/")
}

// KeyFromRef validates a reference and returns its storage key. Only refs
// that point inside a known category are accepted.
func KeyFromRef(ref string) (string, Category, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.Contains(ref, "\\") {
		return "", "", false
	}
	key := strings.TrimLeft(path.Clean("/"+ref), "/")
	for _, seg := range strings.Split(strings.TrimLeft(ref, "/"), "/") {
		if seg == ".." {
			return "", "", false
		}
	}
	for cat, prefix := range categoryPrefixes {
		if strings.HasPrefix(key, prefix+"/") && len(key) > len(prefix)+1 {
			return key, cat, true
		}
	}
	return "", "", false
}
