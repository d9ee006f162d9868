package cardgate

var consumerFields = fieldTable{
	"Email": "email",
	"Phone": "phone",
}

// Consumer carries the customer contact details and, lazily, the billing
// and shipping addresses for a transaction.
type Consumer struct {
	entity
	address         *Address
	shippingAddress *Address
}

func NewConsumer() *Consumer {
	return &Consumer{entity: newEntity("Consumer", consumerFields)}
}

func (c *Consumer) SetEmail(email string) error {
	return c.Set("Email", email)
}

func (c *Consumer) SetPhone(phone string) error {
	return c.Set("Phone", phone)
}

// Email returns the stored email address, or "" when unset.
func (c *Consumer) Email() string {
	return c.getString("Email")
}

// Phone returns the stored phone number, or "" when unset.
func (c *Consumer) Phone() string {
	return c.getString("Phone")
}

// Address returns the billing address, creating it on first use.
func (c *Consumer) Address() *Address {
	if c.address == nil {
		c.address = NewAddress()
	}
	return c.address
}

func (c *Consumer) SetAddress(address *Address) {
	c.address = address
}

// ShippingAddress returns the shipping address, creating it on first use.
func (c *Consumer) ShippingAddress() *Address {
	if c.shippingAddress == nil {
		c.shippingAddress = NewAddress()
	}
	return c.shippingAddress
}

func (c *Consumer) SetShippingAddress(address *Address) {
	c.shippingAddress = address
}
