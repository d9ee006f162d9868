package cardgate

import (
	"context"
	"net/http"
	"net/url"
)

// Subscriptions is the resource collection for recurring billing
// agreements.
type Subscriptions struct {
	client *Client
}

// Create builds a new, unregistered subscription bound to the given
// site. Pass currency as "" for the default, EUR.
func (r *Subscriptions) Create(siteID, period int, periodType string, periodPrice int, currency string) (*Subscription, error) {
	if currency == "" {
		currency = "EUR"
	}
	s := newSubscription(r.client, siteID, currency)
	if err := s.SetPeriod(period); err != nil {
		return nil, err
	}
	if err := s.SetPeriodType(periodType); err != nil {
		return nil, err
	}
	if err := s.SetPeriodPrice(periodPrice); err != nil {
		return nil, err
	}
	return s, nil
}

// Get fetches a subscription by gateway id. It returns the hydrated
// Subscription together with the raw details map for fields the
// Subscription type does not model.
func (r *Subscriptions) Get(ctx context.Context, id string) (*Subscription, map[string]any, error) {
	if id == "" {
		return nil, nil, newError("Subscription.Id.Invalid", "invalid subscription id")
	}
	result, err := r.client.doRequest(ctx, "subscription/"+url.PathEscape(id)+"/", nil, http.MethodGet)
	if err != nil {
		return nil, nil, err
	}
	details := result.Get("subscription")
	if !details.IsObject() {
		return nil, nil, newError("Subscription.Details.Invalid",
			"unexpected subscription details: "+r.client.LastResult())
	}

	s := newSubscription(r.client,
		int(details.Get("site_id").Int()),
		details.Get("currency_id").String())
	if err := s.SetID(details.Get("nn_id").String()); err != nil {
		return nil, nil, err
	}
	if period := int(details.Get("period").Int()); period > 0 {
		if err := s.SetPeriod(period); err != nil {
			return nil, nil, err
		}
	}
	if periodType := details.Get("period_type").String(); periodType != "" {
		if err := s.SetPeriodType(periodType); err != nil {
			return nil, nil, err
		}
	}
	if price := int(details.Get("period_price").Int()); price > 0 {
		if err := s.SetPeriodPrice(price); err != nil {
			return nil, nil, err
		}
	}
	if startDate := details.Get("start_date").String(); startDate != "" {
		if err := s.SetStartDate(startDate); err != nil {
			return nil, nil, err
		}
	}
	if endDate := details.Get("end_date").String(); endDate != "" {
		if err := s.SetEndDate(endDate); err != nil {
			return nil, nil, err
		}
	}
	if description := details.Get("description").String(); description != "" {
		if err := s.SetDescription(description); err != nil {
			return nil, nil, err
		}
	}
	if reference := details.Get("reference").String(); reference != "" {
		if err := s.SetReference(reference); err != nil {
			return nil, nil, err
		}
	}
	s.status = details.Get("status").String()
	raw, _ := details.Value().(map[string]any)
	return s, raw, nil
}
