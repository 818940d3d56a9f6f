package manifest

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ItemID identifies an item at runtime. It is derived only from the item's name, so it is
// stable across runs and safe to persist.
type ItemID uint64

// IDFor returns the identifier for an item name. Names are compared byte for byte.
func IDFor(name string) ItemID {
	return ItemID(xxhash.Sum64String(name))
}

// String renders the identifier as 16 hex digits.
func (id ItemID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}
