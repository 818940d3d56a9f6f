package data

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/emberfall/internal/asset"
	"github.com/samdwyer/emberfall/internal/manifest"
)

func TestEmbeddedItemsDecode(t *testing.T) {
	paths, err := manifest.Discover(FS(), ItemRoot)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"items/consumables.item.yaml",
		"items/equipment.item.yaml",
		"items/materials.item.json",
	}, paths)

	var all manifest.RawItemManifest
	for _, p := range paths {
		b, err := fs.ReadFile(FS(), p)
		require.NoError(t, err)
		raw, err := manifest.Decode(p, b)
		require.NoError(t, err, p)
		all.MergeFrom(raw)
	}
	assert.Equal(t, 8, all.Len())
	assert.Equal(t, "Healing Potion", all.Items[0].Name)
}

func TestEmbeddedSpritesExist(t *testing.T) {
	paths, err := manifest.Discover(FS(), ItemRoot)
	require.NoError(t, err)

	for _, p := range paths {
		b, err := fs.ReadFile(FS(), p)
		require.NoError(t, err)
		raw, err := manifest.Decode(p, b)
		require.NoError(t, err)
		for _, item := range raw.Items {
			if item.Sprite == "" {
				continue
			}
			img, err := fs.ReadFile(FS(), item.Sprite)
			require.NoError(t, err, item.Name)
			info, err := asset.ImageLoader{}.Decode(item.Sprite, img)
			require.NoError(t, err, item.Name)
			assert.Equal(t, asset.ImageInfo{Format: "png", Width: 8, Height: 8}, info)
		}
	}
}
