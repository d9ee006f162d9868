package cardgate

import (
	"context"
	"fmt"
	"net/http"
)

// Methods is the resource collection for payment methods.
type Methods struct {
	client *Client
}

// Get builds a method handle by identifier, one of the Method
// constants.
func (r *Methods) Get(id string) (*Method, error) {
	return NewMethod(r.client, id, id)
}

// All fetches the payment methods enabled for a site. Options the
// gateway reports but this library does not recognize are skipped with a
// warning, so a gateway-side addition never breaks existing
// integrations.
func (r *Methods) All(ctx context.Context, siteID int) ([]*Method, error) {
	result, err := r.client.doRequest(ctx, fmt.Sprintf("options/%d/", siteID), nil, http.MethodGet)
	if err != nil {
		return nil, err
	}
	options := result.Get("options")
	if !options.IsArray() || len(options.Array()) == 0 {
		return nil, newError("Method.Options.Invalid",
			"no payment method options: "+r.client.LastResult())
	}

	methods := make([]*Method, 0, len(options.Array()))
	for _, option := range options.Array() {
		id := option.Get("id").String()
		if !validMethods[id] {
			continue
		}
		method, err := NewMethod(r.client, id, option.Get("name").String())
		if err != nil {
			r.client.logger.Warn("skipping payment method option", "id", id, "error", err)
			continue
		}
		methods = append(methods, method)
	}
	return methods, nil
}
