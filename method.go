package cardgate

// Payment method identifiers accepted by the gateway.
const (
	MethodIdeal            = "ideal"
	MethodIdealPro         = "idealpro"
	MethodBancontact       = "bancontact"
	MethodMisterCash       = "mistercash"
	MethodCreditCard       = "creditcard"
	MethodAfterpay         = "afterpay"
	MethodGiropay          = "giropay"
	MethodBankTransfer     = "banktransfer"
	MethodBitcoin          = "bitcoin"
	MethodDirectDebit      = "directdebit"
	MethodKlarna           = "klarna"
	MethodPayPal           = "paypal"
	MethodPrzelewy24       = "przelewy24"
	MethodSofortBanking    = "sofortbanking"
	MethodPaysafecard      = "paysafecard"
	MethodBillink          = "billink"
	MethodIdealQR          = "idealqr"
	MethodPaysafecash      = "paysafecash"
	MethodOnlineUeberweisen = "onlineueberweisen"
	MethodGiftCard         = "giftcard"
	MethodEPS              = "eps"
	MethodSprayPay         = "spraypay"
	MethodCrypto           = "crypto"
)

var validMethods = map[string]bool{
	MethodIdeal:             true,
	MethodIdealPro:          true,
	MethodBancontact:        true,
	MethodMisterCash:        true,
	MethodCreditCard:        true,
	MethodAfterpay:          true,
	MethodGiropay:           true,
	MethodBankTransfer:      true,
	MethodBitcoin:           true,
	MethodDirectDebit:       true,
	MethodKlarna:            true,
	MethodPayPal:            true,
	MethodPrzelewy24:        true,
	MethodSofortBanking:     true,
	MethodPaysafecard:       true,
	MethodBillink:           true,
	MethodIdealQR:           true,
	MethodPaysafecash:       true,
	MethodOnlineUeberweisen: true,
	MethodGiftCard:          true,
	MethodEPS:               true,
	MethodSprayPay:          true,
	MethodCrypto:            true,
}

// Issuer is a bank selectable for methods that route through one, such
// as iDEAL.
type Issuer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Method is a payment method enabled for a site.
type Method struct {
	client *Client
	id     string
	name   string
}

// NewMethod builds a method handle. The id must be one of the Method
// constants.
func NewMethod(client *Client, id, name string) (*Method, error) {
	m := &Method{client: client}
	if err := m.SetID(id); err != nil {
		return nil, err
	}
	if err := m.SetName(name); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Method) SetID(id string) error {
	if !validMethods[id] {
		return newError("Method.PaymentMethod.Invalid", "invalid payment method: "+id)
	}
	m.id = id
	return nil
}

func (m *Method) ID() string {
	return m.id
}

func (m *Method) SetName(name string) error {
	if name == "" {
		return newError("Method.Name.Invalid", "invalid payment method name")
	}
	m.name = name
	return nil
}

func (m *Method) Name() string {
	return m.name
}

// Issuers returns the issuer list for this method. The per-method issuer
// endpoint was retired by the gateway; a single deprecated placeholder is
// returned so existing selection UIs keep rendering.
func (m *Method) Issuers() []Issuer {
	return []Issuer{{ID: "ZERO", Name: "Deprecated"}}
}
