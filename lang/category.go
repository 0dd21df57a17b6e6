package lang

import "github.com/malspec/langspec/ident"

// Category groups a set of asset types under one name.
type Category struct {
	name   string
	meta   ident.Meta
	assets []*Asset
}

func (c *Category) Name() string     { return c.name }
func (c *Category) Meta() ident.Meta { return c.meta }
func (c *Category) Assets() []*Asset { return c.assets }
