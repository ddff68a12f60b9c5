package catalog

import "sort"

// Product is a single purchasable item. Orders snapshot its name and price
// at finalize time, so later catalog edits never rewrite order history.
type Product struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Price int64  `yaml:"price"`
}

// Catalog holds the product list in a stable display order.
type Catalog struct {
	byID  map[int]Product
	order []int
}

// Defaults returns the built-in product set used when the config does not
// declare any products.
func Defaults() []Product {
	return []Product{
		{ID: 1, Name: "🧸 Toy 1", Price: 500},
		{ID: 2, Name: "🚗 Toy 2", Price: 300},
		{ID: 3, Name: "🐻 Toy 3", Price: 700},
	}
}

// New builds a catalog from the provided products, falling back to Defaults
// when the list is empty. Duplicate IDs keep the last definition.
func New(products []Product) *Catalog {
	if len(products) == 0 {
		products = Defaults()
	}
	c := &Catalog{byID: make(map[int]Product, len(products))}
	for _, p := range products {
		if _, seen := c.byID[p.ID]; !seen {
			c.order = append(c.order, p.ID)
		}
		c.byID[p.ID] = p
	}
	sort.Ints(c.order)
	return c
}

// Get returns the product with the given id.
func (c *Catalog) Get(id int) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// List returns products in display order.
func (c *Catalog) List() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.byID)
}
