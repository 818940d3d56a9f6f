package manifest

import (
	"sort"
	"sync/atomic"

	"github.com/samdwyer/emberfall/internal/asset"
)

// Item is a validated item ready for gameplay.
type Item struct {
	ID          ItemID
	Name        string
	Description string
	Value       int32
	Weight      float32
	MaxStack    uint8
	Sprite      asset.Handle // may still be pending or failed; check with the asset server
}

// ItemManifest is the runtime item table. It is never modified after Convert returns it.
type ItemManifest struct {
	items map[ItemID]Item
	order []ItemID // sorted by name
}

func newItemManifest(items map[ItemID]Item) *ItemManifest {
	order := make([]ItemID, 0, len(items))
	for id := range items {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		return items[order[i]].Name < items[order[j]].Name
	})
	return &ItemManifest{items: items, order: order}
}

// Get returns the item with the given identifier.
func (m *ItemManifest) Get(id ItemID) (Item, bool) {
	if m == nil {
		return Item{}, false
	}
	item, ok := m.items[id]
	return item, ok
}

// GetByName looks an item up by its authored name.
func (m *ItemManifest) GetByName(name string) (Item, bool) {
	return m.Get(IDFor(name))
}

// Len returns the number of items.
func (m *ItemManifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// IDs returns every identifier ordered by item name.
func (m *ItemManifest) IDs() []ItemID {
	if m == nil {
		return nil
	}
	ids := make([]ItemID, len(m.order))
	copy(ids, m.order)
	return ids
}

// Items returns every item ordered by name.
func (m *ItemManifest) Items() []Item {
	if m == nil {
		return nil
	}
	items := make([]Item, len(m.order))
	for i, id := range m.order {
		items[i] = m.items[id]
	}
	return items
}

// Store publishes the current item manifest to the rest of the game.
// Readers may call Current from any goroutine.
type Store struct {
	current atomic.Pointer[ItemManifest]
}

// Publish replaces the current manifest.
func (s *Store) Publish(m *ItemManifest) {
	s.current.Store(m)
}

// Current returns the published manifest, or nil before the first publish.
func (s *Store) Current() *ItemManifest {
	return s.current.Load()
}

// Get looks up an item in the published manifest.
func (s *Store) Get(id ItemID) (Item, bool) {
	return s.Current().Get(id)
}
