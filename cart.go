package cardgate

// Cart is the ordered list of items attached to a transaction. Order of
// insertion is preserved in the registration payload.
type Cart struct {
	items []*Item
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem appends a new line to the cart and returns it so the caller
// can set optional attributes such as VAT. Pass link as "" when the
// product has no detail page.
func (c *Cart) AddItem(itemType int, sku, name string, quantity, price int, link string) (*Item, error) {
	item, err := NewItem(itemType, sku, name, quantity, price)
	if err != nil {
		return nil, err
	}
	if link != "" {
		if err := item.SetLink(link); err != nil {
			return nil, err
		}
	}
	c.items = append(c.items, item)
	return item, nil
}

// Items returns the cart lines in insertion order.
func (c *Cart) Items() []*Item {
	return c.items
}

// Data returns the cart serialized as a list of wire-key maps, ready to
// embed in a registration payload.
func (c *Cart) Data() []map[string]any {
	out := make([]map[string]any, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.Data(""))
	}
	return out
}
