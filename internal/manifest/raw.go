// Package manifest turns author-edited item definition files into the runtime item table.
//
// The pipeline is: source files → RawItemManifest per file → Merge → Convert → ItemManifest,
// published through a Store once every source file has resolved.
package manifest

// RawItem is one item as written by a content author. Nothing here is validated until Convert.
type RawItem struct {
	Name        string  `yaml:"name" json:"name" validate:"required"`
	Description string  `yaml:"description" json:"description"`
	Value       int32   `yaml:"value" json:"value"` // negative values mark cursed or worthless items
	Weight      float32 `yaml:"weight" json:"weight" validate:"gte=0"`
	MaxStack    uint8   `yaml:"max_stack" json:"max_stack" validate:"min=1"`
	Sprite      string  `yaml:"sprite" json:"sprite"`
}

// RawItemManifest is an ordered collection of raw items, either from one file or merged.
type RawItemManifest struct {
	Items []RawItem `yaml:"items" json:"items"`
}

// Len returns the number of records.
func (m RawItemManifest) Len() int { return len(m.Items) }

// MergeFrom appends other's records after m's.
func (m *RawItemManifest) MergeFrom(other RawItemManifest) {
	m.Items = append(m.Items, other.Items...)
}

// Merge returns a new collection holding into's records followed by from's.
// Duplicate names are carried forward; Convert decides what happens to them.
func Merge(into, from RawItemManifest) RawItemManifest {
	items := make([]RawItem, 0, len(into.Items)+len(from.Items))
	items = append(items, into.Items...)
	items = append(items, from.Items...)
	return RawItemManifest{Items: items}
}

// MergeAll folds parts left to right with Merge.
func MergeAll(parts ...RawItemManifest) RawItemManifest {
	var merged RawItemManifest
	for _, p := range parts {
		merged = Merge(merged, p)
	}
	return merged
}
