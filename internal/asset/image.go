package asset

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
)

// ImageInfo is the decoded header of an image asset.
type ImageInfo struct {
	Format        string
	Width, Height int
}

// ImageLoader reads image headers so sprite requests fail early on corrupt files.
// Pixel data stays available through Server.Bytes.
type ImageLoader struct{}

// Extensions implements Loader.
func (ImageLoader) Extensions() []string { return []string{".png"} }

// Decode implements Loader.
func (ImageLoader) Decode(path string, data []byte) (any, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
