package cardgate

import "fmt"

// Cart item types as defined by the gateway.
const (
	ItemTypeProduct       = 1
	ItemTypeShipping      = 2
	ItemTypePaymentCosts  = 3
	ItemTypeDiscount      = 4
	ItemTypeHandlingFee   = 5
	ItemTypeSurcharge     = 6
	ItemTypeVATCorrection = 7
)

var itemFields = fieldTable{
	"SKU":         "sku",
	"Name":        "name",
	"Link":        "link",
	"Quantity":    "quantity",
	"Price":       "price",
	"Type":        "type",
	"Vat":         "vat",
	"VatIncluded": "vat_inc",
	"VatAmount":   "vat_amount",
	"Stock":       "stock",
}

// Item is a single cart line. Price is in cents; quantity is a unit
// count.
type Item struct {
	entity
}

// NewItem builds a cart line of the given type. The type must be one of
// the ItemType constants.
func NewItem(itemType int, sku, name string, quantity, price int) (*Item, error) {
	i := &Item{entity: newEntity("Item", itemFields)}
	if err := i.SetType(itemType); err != nil {
		return nil, err
	}
	if err := i.Set("SKU", sku); err != nil {
		return nil, err
	}
	if err := i.Set("Name", name); err != nil {
		return nil, err
	}
	if err := i.Set("Quantity", quantity); err != nil {
		return nil, err
	}
	if err := i.Set("Price", price); err != nil {
		return nil, err
	}
	return i, nil
}

// SetType stores the item type, one of the ItemType constants.
func (i *Item) SetType(itemType int) error {
	if itemType < ItemTypeProduct || itemType > ItemTypeVATCorrection {
		return newError("Item.Type.Invalid", fmt.Sprintf("invalid item type: %d", itemType))
	}
	return i.Set("Type", itemType)
}

func (i *Item) SetLink(link string) error {
	return i.Set("Link", link)
}

// SetVat stores the VAT percentage applied to this line.
func (i *Item) SetVat(vat float64) error {
	return i.Set("Vat", vat)
}

// SetVatIncluded records whether the line price already includes VAT.
func (i *Item) SetVatIncluded(included bool) error {
	return i.Set("VatIncluded", included)
}

// SetVatAmount stores the VAT amount in cents for this line.
func (i *Item) SetVatAmount(amount int) error {
	return i.Set("VatAmount", amount)
}

// SetStock stores the current stock level for the product.
func (i *Item) SetStock(stock int) error {
	return i.Set("Stock", stock)
}
