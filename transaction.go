package cardgate

import (
	"context"
	"net/http"
	"net/url"
)

// transactionCore holds the state shared by one-off payments and
// subscriptions: site binding, currency, consumer, cart and the redirect
// URLs. Both Transaction and Subscription embed it.
type transactionCore struct {
	client *Client
	// kind prefixes the lifecycle error codes, "Transaction" or
	// "Subscription".
	kind string

	id          string
	siteID      int
	siteKey     string
	currency    string
	description string
	reference   string
	method      *Method
	issuer      string
	recurring   bool
	consumer    *Consumer
	cart        *Cart

	callbackURL string
	successURL  string
	failureURL  string
	pendingURL  string
	actionURL   string
}

// ID returns the gateway-assigned identifier. It fails with
// <kind>.Not.Initialized until a successful Register or hydration via
// the resource collection has run.
func (t *transactionCore) ID() (string, error) {
	if t.id == "" {
		return "", newError(t.kind+".Not.Initialized", "id not set, did you register?")
	}
	return t.id, nil
}

// SetID stores a gateway-assigned identifier, as when rehydrating from a
// details lookup.
func (t *transactionCore) SetID(id string) error {
	if id == "" {
		return newError(t.kind+".Id.Invalid", "invalid id")
	}
	t.id = id
	return nil
}

func (t *transactionCore) SetSiteID(siteID int) {
	t.siteID = siteID
}

func (t *transactionCore) SiteID() int {
	return t.siteID
}

// SetSiteKey stores the per-site hash key used for callback
// verification.
func (t *transactionCore) SetSiteKey(siteKey string) {
	t.siteKey = siteKey
}

func (t *transactionCore) SiteKey() string {
	return t.siteKey
}

// SetCurrency stores the ISO 4217 currency code, for example "EUR".
func (t *transactionCore) SetCurrency(currency string) error {
	if currency == "" {
		return newError(t.kind+".Currency.Invalid", "invalid currency")
	}
	t.currency = currency
	return nil
}

func (t *transactionCore) Currency() string {
	return t.currency
}

func (t *transactionCore) SetDescription(description string) error {
	if description == "" {
		return newError(t.kind+".Description.Invalid", "invalid description")
	}
	t.description = description
	return nil
}

func (t *transactionCore) Description() string {
	return t.description
}

// SetReference stores the merchant-side order reference.
func (t *transactionCore) SetReference(reference string) error {
	if reference == "" {
		return newError(t.kind+".Reference.Invalid", "invalid reference")
	}
	t.reference = reference
	return nil
}

func (t *transactionCore) Reference() string {
	return t.reference
}

// SetPaymentMethod selects the payment method used at registration. With
// no method set, the gateway presents its hosted method selection page.
func (t *transactionCore) SetPaymentMethod(method *Method) {
	t.method = method
}

// SetPaymentMethodID selects the payment method by identifier, one of
// the Method constants.
func (t *transactionCore) SetPaymentMethodID(id string) error {
	method, err := NewMethod(t.client, id, id)
	if err != nil {
		return err
	}
	t.method = method
	return nil
}

func (t *transactionCore) PaymentMethod() *Method {
	return t.method
}

// SetIssuer selects the issuing bank; a payment method must be chosen
// first.
func (t *transactionCore) SetIssuer(issuer string) error {
	if t.method == nil {
		return newError(t.kind+".Issuer.Invalid", "select a payment method before an issuer")
	}
	if issuer == "" {
		return newError(t.kind+".Issuer.Invalid", "invalid issuer")
	}
	t.issuer = issuer
	return nil
}

func (t *transactionCore) Issuer() string {
	return t.issuer
}

// SetRecurring marks the registration as the start of a recurring
// mandate, enabling Recur on the resulting transaction.
func (t *transactionCore) SetRecurring(recurring bool) {
	t.recurring = recurring
}

func (t *transactionCore) Recurring() bool {
	return t.recurring
}

// Consumer returns the consumer details, creating them on first use.
func (t *transactionCore) Consumer() *Consumer {
	if t.consumer == nil {
		t.consumer = NewConsumer()
	}
	return t.consumer
}

func (t *transactionCore) SetConsumer(consumer *Consumer) {
	t.consumer = consumer
}

// Cart returns the cart, creating it on first use.
func (t *transactionCore) Cart() *Cart {
	if t.cart == nil {
		t.cart = NewCart()
	}
	return t.cart
}

func (t *transactionCore) SetCart(cart *Cart) {
	t.cart = cart
}

func (t *transactionCore) SetCallbackURL(rawURL string) error {
	if err := t.checkURL(rawURL, "CallbackUrl"); err != nil {
		return err
	}
	t.callbackURL = rawURL
	return nil
}

func (t *transactionCore) CallbackURL() string {
	return t.callbackURL
}

func (t *transactionCore) SetSuccessURL(rawURL string) error {
	if err := t.checkURL(rawURL, "SuccessUrl"); err != nil {
		return err
	}
	t.successURL = rawURL
	return nil
}

func (t *transactionCore) SuccessURL() string {
	return t.successURL
}

func (t *transactionCore) SetFailureURL(rawURL string) error {
	if err := t.checkURL(rawURL, "FailureUrl"); err != nil {
		return err
	}
	t.failureURL = rawURL
	return nil
}

func (t *transactionCore) FailureURL() string {
	return t.failureURL
}

func (t *transactionCore) SetPendingURL(rawURL string) error {
	if err := t.checkURL(rawURL, "PendingUrl"); err != nil {
		return err
	}
	t.pendingURL = rawURL
	return nil
}

func (t *transactionCore) PendingURL() string {
	return t.pendingURL
}

// SetRedirectURL points success, failure and pending at the same page.
func (t *transactionCore) SetRedirectURL(rawURL string) error {
	if err := t.SetSuccessURL(rawURL); err != nil {
		return err
	}
	if err := t.SetFailureURL(rawURL); err != nil {
		return err
	}
	return t.SetPendingURL(rawURL)
}

func (t *transactionCore) checkURL(rawURL, field string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return newError(t.kind+"."+field+".Invalid", "invalid url: "+rawURL)
	}
	return nil
}

// ActionURL returns the hosted payment page to redirect the consumer to,
// or "" when registration required no redirect.
func (t *transactionCore) ActionURL() string {
	return t.actionURL
}

// put adds key to data unless the value is empty under the gateway's
// sparse-payload convention: "", 0, false and nil are all omitted.
func put(data map[string]any, key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case int:
		if v == 0 {
			return
		}
	case bool:
		if !v {
			return
		}
	}
	data[key] = value
}

// basePayload assembles the registration fields shared by payments and
// subscriptions.
func (t *transactionCore) basePayload() map[string]any {
	data := make(map[string]any, 16)
	put(data, "site_id", t.siteID)
	put(data, "currency_id", t.currency)
	put(data, "url_callback", t.callbackURL)
	put(data, "url_success", t.successURL)
	put(data, "url_failure", t.failureURL)
	put(data, "url_pending", t.pendingURL)
	put(data, "description", t.description)
	put(data, "reference", t.reference)
	return data
}

// consumerPayload merges the consumer contact fields, the billing
// address and the shipping address (prefixed shipto_) into data. The
// country key is named by the caller since the payment and subscription
// endpoints disagree on it.
func (t *transactionCore) consumerPayload(data map[string]any, countryKey string) {
	if t.consumer == nil {
		return
	}
	put(data, "email", t.consumer.Email())
	put(data, "phone", t.consumer.Phone())
	consumer := make(map[string]any)
	if t.consumer.address != nil {
		for k, v := range t.consumer.address.Data("") {
			consumer[k] = v
		}
		put(data, countryKey, t.consumer.address.Country())
	}
	if t.consumer.shippingAddress != nil {
		for k, v := range t.consumer.shippingAddress.Data("shipto_") {
			consumer[k] = v
		}
	}
	if len(consumer) > 0 {
		data["consumer"] = consumer
	}
}

// Transaction is a one-off payment. Build it through
// Transactions.Create, configure it, then Register it to obtain the
// gateway id and, usually, a redirect to the hosted payment page.
type Transaction struct {
	transactionCore
	amount int
}

func newTransaction(client *Client, siteID, amount int, currency string) *Transaction {
	t := &Transaction{
		transactionCore: transactionCore{client: client, kind: "Transaction"},
		amount:          amount,
	}
	t.siteID = siteID
	t.currency = currency
	return t
}

// SetAmount stores the transaction amount in cents.
func (t *Transaction) SetAmount(amount int) error {
	if amount <= 0 {
		return newError("Transaction.Amount.Invalid", "invalid amount")
	}
	t.amount = amount
	return nil
}

func (t *Transaction) Amount() int {
	return t.amount
}

// Register creates the transaction at the gateway. On success the id is
// set and, when the gateway wants the consumer redirected, ActionURL
// points at the hosted payment page. With a payment method selected the
// registration is routed directly to that method; otherwise the gateway
// serves its method selection page.
func (t *Transaction) Register(ctx context.Context) error {
	data := t.basePayload()
	put(data, "amount", t.amount)
	if t.recurring {
		data["recurring"] = "1"
	}
	t.consumerPayload(data, "countryid")
	if t.cart != nil && len(t.cart.Items()) > 0 {
		data["cartitems"] = t.cart.Data()
	}

	resource := "payment/"
	if t.method != nil {
		resource += t.method.ID() + "/"
		put(data, "issuer", t.issuer)
	}

	result, err := t.client.doRequest(ctx, resource, data, http.MethodPost)
	if err != nil {
		return err
	}
	payment := result.Get("payment")
	id := payment.Get("transaction").String()
	if id == "" {
		return newError("Transaction.Request.Invalid",
			"unexpected registration result: "+t.client.LastResult()+t.client.debugInfo(true, false))
	}
	t.id = id
	if payment.Get("action").String() == "redirect" {
		t.actionURL = payment.Get("url").String()
	}
	return nil
}

// CanRefund asks the gateway whether this transaction is refundable and
// returns the remaining refundable amount in cents.
func (t *Transaction) CanRefund(ctx context.Context) (bool, int, error) {
	id, err := t.ID()
	if err != nil {
		return false, 0, err
	}
	result, err := t.client.doRequest(ctx, "transaction/"+url.PathEscape(id)+"/", nil, http.MethodGet)
	if err != nil {
		return false, 0, err
	}
	details := result.Get("transaction")
	if !details.Exists() {
		return false, 0, newError("Transaction.CanRefund.Invalid",
			"unexpected result: "+t.client.LastResult())
	}
	remainder := int(details.Get("refund_remainder").Int())
	return details.Get("can_refund").Bool(), remainder, nil
}

// Refund refunds amount cents of this transaction; amount <= 0 refunds
// the full original amount. The returned Transaction is the refund
// transaction, fetched back from the gateway.
func (t *Transaction) Refund(ctx context.Context, amount int, description string) (*Transaction, error) {
	id, err := t.ID()
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		amount = t.amount
	}
	data := map[string]any{
		"amount":      amount,
		"currency_id": t.currency,
	}
	put(data, "description", description)

	result, err := t.client.doRequest(ctx, "refund/"+url.PathEscape(id)+"/", data, http.MethodPost)
	if err != nil {
		return nil, err
	}
	refundID := result.Get("refund.transaction").String()
	if refundID == "" {
		return nil, newError("Transaction.Refund.Invalid",
			"unexpected refund result: "+t.client.LastResult())
	}
	refund, _, err := t.client.Transactions().Get(ctx, refundID)
	return refund, err
}

// Recur charges amount cents against the recurring mandate established
// by an earlier registration with SetRecurring(true). The returned
// Transaction is the new charge, fetched back from the gateway.
func (t *Transaction) Recur(ctx context.Context, amount int, reference, description string) (*Transaction, error) {
	id, err := t.ID()
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, newError("Transaction.Amount.Invalid", "invalid recurring amount")
	}
	data := map[string]any{
		"amount":      amount,
		"currency_id": t.currency,
	}
	put(data, "reference", reference)
	put(data, "description", description)

	result, err := t.client.doRequest(ctx, "recurring/"+url.PathEscape(id)+"/", data, http.MethodPost)
	if err != nil {
		return nil, err
	}
	chargeID := result.Get("recurring.transaction_id").String()
	if chargeID == "" {
		return nil, newError("Transaction.Recur.Invalid",
			"unexpected recurring result: "+t.client.LastResult())
	}
	charge, _, err := t.client.Transactions().Get(ctx, chargeID)
	return charge, err
}
