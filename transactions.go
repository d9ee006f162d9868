package cardgate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/url"
)

// callbackKeys are the parameters a status callback must carry.
var callbackKeys = []string{"transaction", "currency", "amount", "reference", "code", "hash", "status"}

// Transactions is the resource collection for one-off payments.
type Transactions struct {
	client *Client
}

// Create builds a new, unregistered transaction bound to the given site.
// Pass currency as "" for the default, EUR.
func (r *Transactions) Create(siteID, amount int, currency string) *Transaction {
	if currency == "" {
		currency = "EUR"
	}
	return newTransaction(r.client, siteID, amount, currency)
}

// Get fetches a transaction by gateway id. It returns the hydrated
// Transaction together with the raw details map for fields the
// Transaction type does not model.
func (r *Transactions) Get(ctx context.Context, id string) (*Transaction, map[string]any, error) {
	if id == "" {
		return nil, nil, newError("Transaction.Id.Invalid", "invalid transaction id")
	}
	result, err := r.client.doRequest(ctx, "transaction/"+url.PathEscape(id)+"/", nil, http.MethodGet)
	if err != nil {
		return nil, nil, err
	}
	details := result.Get("transaction")
	if !details.IsObject() {
		return nil, nil, newError("Transaction.Details.Invalid",
			"unexpected transaction details: "+r.client.LastResult())
	}

	t := newTransaction(r.client,
		int(details.Get("site_id").Int()),
		int(details.Get("amount").Int()),
		details.Get("currency_id").String())
	if err := t.SetID(details.Get("id").String()); err != nil {
		return nil, nil, err
	}
	if description := details.Get("description").String(); description != "" {
		if err := t.SetDescription(description); err != nil {
			return nil, nil, err
		}
	}
	if reference := details.Get("reference").String(); reference != "" {
		if err := t.SetReference(reference); err != nil {
			return nil, nil, err
		}
	}
	if option := details.Get("option").String(); option != "" {
		if err := t.SetPaymentMethodID(option); err != nil {
			return nil, nil, err
		}
	}
	raw, _ := details.Value().(map[string]any)
	return t, raw, nil
}

// Status fetches the current status code of a transaction.
func (r *Transactions) Status(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", newError("Transaction.Id.Invalid", "invalid transaction id")
	}
	result, err := r.client.doRequest(ctx, "status/"+url.PathEscape(id)+"/", nil, http.MethodGet)
	if err != nil {
		return "", err
	}
	status := result.Get("status").String()
	if status == "" {
		return "", newError("Transaction.Status.Invalid",
			"unexpected status result: "+r.client.LastResult())
	}
	return status, nil
}

// VerifyCallback authenticates a status callback received from the
// gateway. data holds the callback parameters as received; siteKey is
// the per-site hash key, or "" to verify against the merchant API key
// only. A callback that verifies must be acknowledged by responding
// with the literal body "<transaction>.<code>".
//
// The digest covers, in order: a "TEST" prefix when the callback was
// sent in testmode, then transaction, currency, amount, reference and
// code, and finally the signing key.
func (r *Transactions) VerifyCallback(data map[string]string, siteKey string) (bool, error) {
	for _, key := range callbackKeys {
		if _, ok := data[key]; !ok {
			return false, newError("Transaction.Callback.Missing", "callback misses parameter: "+key)
		}
	}
	prefix := ""
	if testmode := data["testmode"]; testmode != "" && testmode != "0" {
		prefix = "TEST"
	}
	payload := prefix + data["transaction"] + data["currency"] + data["amount"] + data["reference"] + data["code"]

	if siteKey != "" && callbackHash(payload+siteKey) == data["hash"] {
		return true, nil
	}
	return callbackHash(payload+r.client.Key()) == data["hash"], nil
}

func callbackHash(payload string) string {
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
