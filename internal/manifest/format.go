package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source file extensions routed to the item loader.
const (
	ExtYAML     = ".item.yaml"
	ExtYML      = ".item.yml"
	ExtJSON     = ".item.json"
	hiddenStart = "."
)

// Extensions lists every item source extension.
var Extensions = []string{ExtYAML, ExtYML, ExtJSON}

// IsSourceFile reports whether name carries an item source extension.
func IsSourceFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Decode parses one source file. The document may be a mapping with an "items" list or a
// bare list of items. Unknown fields are rejected so typos surface as load errors.
func Decode(name string, data []byte) (RawItemManifest, error) {
	var (
		m   RawItemManifest
		err error
	)
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ExtYAML), strings.HasSuffix(lower, ExtYML):
		m, err = decodeYAML(data)
	case strings.HasSuffix(lower, ExtJSON):
		m, err = decodeJSON(data)
	default:
		err = fmt.Errorf("unsupported extension %q", path.Ext(name))
	}
	if err != nil {
		return RawItemManifest{}, &SourceError{Path: name, Err: err}
	}
	return m, nil
}

func decodeYAML(data []byte) (RawItemManifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawItemManifest{}, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if len(doc.Content) == 0 {
		return RawItemManifest{}, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m RawItemManifest
	switch doc.Content[0].Kind {
	case yaml.SequenceNode:
		if err := dec.Decode(&m.Items); err != nil {
			return RawItemManifest{}, fmt.Errorf("failed to decode manifest: %w", err)
		}
	case yaml.MappingNode:
		if err := dec.Decode(&m); err != nil {
			return RawItemManifest{}, fmt.Errorf("failed to decode manifest: %w", err)
		}
	default:
		return RawItemManifest{}, errors.New("manifest must be a list of items or a mapping with an items list")
	}
	if err := dec.Decode(&yaml.Node{}); err != io.EOF {
		if err != nil {
			return RawItemManifest{}, fmt.Errorf("failed to decode manifest: %w", err)
		}
		return RawItemManifest{}, errors.New("failed to decode manifest: more than one YAML document")
	}
	return m, nil
}

func decodeJSON(data []byte) (RawItemManifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return RawItemManifest{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var m RawItemManifest
	var err error
	if trimmed[0] == '[' {
		err = dec.Decode(&m.Items)
	} else {
		err = dec.Decode(&m)
	}
	if err != nil {
		return RawItemManifest{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return RawItemManifest{}, errors.New("failed to parse JSON: trailing data after manifest")
	}
	return m, nil
}

// RawLoader plugs Decode into the asset server.
type RawLoader struct{}

// Extensions implements asset.Loader.
func (RawLoader) Extensions() []string { return Extensions }

// Decode implements asset.Loader. The decoded value is a RawItemManifest.
func (RawLoader) Decode(name string, data []byte) (any, error) {
	return Decode(name, data)
}

// Discover returns every item source file under root in lexical order, skipping hidden
// files and directories.
func Discover(fsys fs.FS, root string) ([]string, error) {
	var paths []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && strings.HasPrefix(d.Name(), hiddenStart) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsSourceFile(d.Name()) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover item sources under %s: %w", root, err)
	}
	return paths, nil
}
