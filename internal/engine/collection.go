package engine

import (
	"sort"

	"github.com/ppiankov/truthslies/internal/model"
)

// collection keeps statements in insertion order and rejects duplicate text
type collection struct {
	seen  map[string]bool
	items []model.Statement
}

func newCollection() *collection {
	return &collection{seen: make(map[string]bool)}
}

func (c *collection) has(text string) bool {
	return c.seen[text]
}

func (c *collection) insert(s model.Statement) bool {
	if c.seen[s.Statement] {
		return false
	}
	c.seen[s.Statement] = true
	c.items = append(c.items, s)
	return true
}

func (c *collection) sort() {
	sort.SliceStable(c.items, func(i, j int) bool {
		return c.items[i].Statement < c.items[j].Statement
	})
}
