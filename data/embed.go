// Package data embeds the default item content shipped with the binary.
package data

import (
	"embed"
	"io/fs"
)

// ItemRoot is the directory holding item source files inside FS.
const ItemRoot = "items"

//go:embed items sprites
var content embed.FS

// FS returns the embedded content tree. Sprite paths in item files are relative to its root.
func FS() fs.FS {
	return content
}
