package store

// Catalog is an immutable snapshot of every recommendable item. Mutation
// happens by building a new Catalog off to the side and atomically swapping
// the snapshot readers use (see Store), so ranking scans never take a lock.
//
// Insertion order is preserved; the ranker uses it as a stable tie-break.
type Catalog struct {
	items []*Item
	index map[string]int // link -> position in items
}

// NewCatalog builds a catalog from the given items. Items with a duplicate
// link keep the first entry's position and embedding; later duplicates only
// refresh metadata.
func NewCatalog(items ...*Item) *Catalog {
	c := &Catalog{
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if item == nil || item.Link == "" {
			continue
		}
		if pos, ok := c.index[item.Link]; ok {
			c.items[pos] = c.items[pos].cloneMeta(item)
			continue
		}
		c.index[item.Link] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns the items in insertion order. The returned slice is shared
// with the catalog and must not be modified.
func (c *Catalog) Items() []*Item {
	return c.items
}

// Has reports whether a link is present.
func (c *Catalog) Has(link string) bool {
	_, ok := c.index[link]
	return ok
}

// Get returns the item with the given link.
func (c *Catalog) Get(link string) (*Item, bool) {
	pos, ok := c.index[link]
	if !ok {
		return nil, false
	}
	return c.items[pos], true
}

// With returns a new catalog containing this catalog's items plus the given
// ones. Existing links are updated metadata-only; their embedding and position
// are kept. The receiver is left untouched.
func (c *Catalog) With(items ...*Item) *Catalog {
	next := &Catalog{
		items: make([]*Item, len(c.items)),
		index: make(map[string]int, len(c.items)+len(items)),
	}
	copy(next.items, c.items)
	for link, pos := range c.index {
		next.index[link] = pos
	}
	for _, item := range items {
		if item == nil || item.Link == "" {
			continue
		}
		if pos, ok := next.index[item.Link]; ok {
			next.items[pos] = next.items[pos].cloneMeta(item)
			continue
		}
		next.index[item.Link] = len(next.items)
		next.items = append(next.items, item)
	}
	return next
}
