// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/fogleman/gg"
	"github.com/raushankrgupta/dekor-stager/storage"
	"github.com/stretchr/testify/require"
)

// SolidPNG encodes a w×h PNG filled with c.
func SolidPNG(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()
	dc := gg.NewContext(w, h)
	dc.SetColor(c)
	dc.Clear()
	var buf bytes.Buffer
	require.NoError(t, dc.EncodePNG(&buf))
	return buf.Bytes()
}

// NewStore returns an AssetStore backed by a temporary directory.
func NewStore(t testing.TB) *storage.AssetStore {
	t.Helper()
	root := t.TempDir()
	return storage.NewAssetStore(storage.NewLocalBlobStore(root), storage.NewFileRecordStore(root), "")
}
