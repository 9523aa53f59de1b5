package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

const signedURLTTL = time.Hour

// URLSigner is implemented by blob backends that can hand out temporary download URLs.
type URLSigner interface {
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// AssetStore owns every binary and JSON artifact of the pipeline. Other
// components only hold the references it returns.
type AssetStore struct {
	blobs         BlobStore
	records       RecordStore
	publicBaseURL string
}

func NewAssetStore(blobs BlobStore, records RecordStore, publicBaseURL string) *AssetStore {
	return &AssetStore{
		blobs:         blobs,
		records:       records,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Save stores data under the category and returns its reference. name may
// contain "/" to group files (e.g. "<productId>/<imageId>.png").
func (s *AssetStore) Save(ctx context.Context, category Category, name string, data []byte) (string, error) {
	prefix := category.Prefix()
	if prefix == "" || category.IsRecord() {
		return "", fmt.Errorf("category %q does not hold blobs", category)
	}
	clean := path.Clean("/" + name)
	if name == "" || clean == "/" || clean != "/"+name {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	key := prefix + clean
	if err := s.blobs.Put(ctx, key, data, contentTypeForKey(key)); err != nil {
		return "", err
	}
	return RefFromKey(key), nil
}

// Read returns the bytes behind a blob reference.
func (s *AssetStore) Read(ctx context.Context, ref string) ([]byte, error) {
	key, cat, ok := KeyFromRef(ref)
	if !ok || cat.IsRecord() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return s.blobs.Get(ctx, key)
}

// SaveJSON writes a metadata record and returns its reference.
func (s *AssetStore) SaveJSON(ctx context.Context, category Category, id string, value any) (string, error) {
	if !category.IsRecord() {
		return "", fmt.Errorf("category %q does not hold records", category)
	}
	if !validID(id) {
		return "", fmt.Errorf("invalid record id %q", id)
	}
	if err := s.records.Put(ctx, category, id, value); err != nil {
		return "", err
	}
	return recordRef(category, id), nil
}

// ReadJSON decodes the record with the given id. Unknown or malformed ids yield ErrNotFound.
func (s *AssetStore) ReadJSON(ctx context.Context, category Category, id string, out any) error {
	if !category.IsRecord() || !validID(id) {
		return ErrNotFound
	}
	return s.records.Get(ctx, category, id, out)
}

// ReadJSONRef decodes the record behind a reference returned by SaveJSON or List.
func (s *AssetStore) ReadJSONRef(ctx context.Context, ref string, out any) error {
	key, cat, ok := KeyFromRef(ref)
	if !ok || !cat.IsRecord() {
		return ErrNotFound
	}
	id := strings.TrimSuffix(path.Base(key), ".json")
	return s.ReadJSON(ctx, cat, id, out)
}

// List returns the references stored under the category. A category with
// nothing in it yields an empty slice, never an error.
func (s *AssetStore) List(ctx context.Context, category Category) ([]string, error) {
	prefix := category.Prefix()
	if prefix == "" {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	if category.IsRecord() {
		ids, err := s.records.List(ctx, category)
		if err != nil {
			return nil, err
		}
		refs := make([]string, 0, len(ids))
		for _, id := range ids {
			refs = append(refs, recordRef(category, id))
		}
		return refs, nil
	}
	keys, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, RefFromKey(k))
	}
	return refs, nil
}

// PublicURL prefixes a reference with the configured public base URL.
func (s *AssetStore) PublicURL(ref string) string {
	if s.publicBaseURL == "" {
		return ref
	}
	return s.publicBaseURL + ref
}

// DownloadURL returns a presigned URL when the blob backend supports it,
// otherwise the public URL of the reference.
func (s *AssetStore) DownloadURL(ctx context.Context, ref string) string {
	signer, ok := s.blobs.(URLSigner)
	if !ok {
		return s.PublicURL(ref)
	}
	key, _, valid := KeyFromRef(ref)
	if !valid {
		return s.PublicURL(ref)
	}
	url, err := signer.SignedURL(ctx, key, signedURLTTL)
	if err != nil {
		return s.PublicURL(ref)
	}
	return url
}

// IsNotFound reports whether err means a missing asset or record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func recordRef(category Category, id string) string {
	return RefFromKey(category.Prefix() + "/" + id + ".json")
}
