package cardgate

import (
	"context"
	"fmt"
	"net/http"
)

// Subscription period units.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var validPeriodTypes = map[string]bool{
	PeriodDay:   true,
	PeriodWeek:  true,
	PeriodMonth: true,
	PeriodYear:  true,
}

// Subscription status transitions accepted by ChangeStatus.
const (
	SubscriptionReactivate = "reactivate"
	SubscriptionSuspend    = "suspend"
	SubscriptionCancel     = "cancel"
	SubscriptionDeactivate = "deactivate"
)

var validSubscriptionStatuses = map[string]bool{
	SubscriptionReactivate: true,
	SubscriptionSuspend:    true,
	SubscriptionCancel:     true,
	SubscriptionDeactivate: true,
}

// Subscription is a recurring billing agreement: a recurring charge of
// PeriodPrice cents every Period PeriodType units, optionally preceded
// by a trial window and an initial payment. Build it through
// Subscriptions.Create, configure it, then Register it.
type Subscription struct {
	transactionCore

	period           int
	periodType       string
	periodPrice      int
	initialPayment   int
	trialPeriod      int
	trialPeriodType  string
	trialPeriodPrice int
	startDate        string
	endDate          string
	status           string
}

func newSubscription(client *Client, siteID int, currency string) *Subscription {
	s := &Subscription{
		transactionCore: transactionCore{client: client, kind: "Subscription"},
	}
	s.siteID = siteID
	s.currency = currency
	return s
}

// SetPeriod stores the billing interval length, in PeriodType units.
func (s *Subscription) SetPeriod(period int) error {
	if period <= 0 {
		return newError("Subscription.Period.Invalid", fmt.Sprintf("invalid period: %d", period))
	}
	s.period = period
	return nil
}

func (s *Subscription) Period() int {
	return s.period
}

// SetPeriodType stores the billing interval unit, one of the Period
// constants.
func (s *Subscription) SetPeriodType(periodType string) error {
	if !validPeriodTypes[periodType] {
		return newError("Subscription.Period.Type.Invalid", "invalid period type: "+periodType)
	}
	s.periodType = periodType
	return nil
}

func (s *Subscription) PeriodType() string {
	return s.periodType
}

// SetPeriodPrice stores the recurring charge in cents.
func (s *Subscription) SetPeriodPrice(price int) error {
	if price <= 0 {
		return newError("Subscription.PeriodPrice.Invalid", fmt.Sprintf("invalid period price: %d", price))
	}
	s.periodPrice = price
	return nil
}

func (s *Subscription) PeriodPrice() int {
	return s.periodPrice
}

// SetInitialPayment stores a one-off amount in cents charged at
// registration, before the recurring schedule starts.
func (s *Subscription) SetInitialPayment(amount int) error {
	if amount <= 0 {
		return newError("Subscription.InitialPayment.Invalid", fmt.Sprintf("invalid initial payment: %d", amount))
	}
	s.initialPayment = amount
	return nil
}

func (s *Subscription) InitialPayment() int {
	return s.initialPayment
}

// SetTrialPeriod stores the trial window length, in TrialPeriodType
// units.
func (s *Subscription) SetTrialPeriod(period int) error {
	if period <= 0 {
		return newError("Subscription.TrialPeriod.Invalid", fmt.Sprintf("invalid trial period: %d", period))
	}
	s.trialPeriod = period
	return nil
}

func (s *Subscription) TrialPeriod() int {
	return s.trialPeriod
}

// SetTrialPeriodType stores the trial window unit, one of the Period
// constants.
func (s *Subscription) SetTrialPeriodType(periodType string) error {
	if !validPeriodTypes[periodType] {
		return newError("Subscription.Period.Type.Invalid", "invalid trial period type: "+periodType)
	}
	s.trialPeriodType = periodType
	return nil
}

func (s *Subscription) TrialPeriodType() string {
	return s.trialPeriodType
}

// SetTrialPeriodPrice stores the per-period charge in cents during the
// trial window.
func (s *Subscription) SetTrialPeriodPrice(price int) error {
	if price < 0 {
		return newError("Subscription.TrialPeriodPrice.Invalid", fmt.Sprintf("invalid trial period price: %d", price))
	}
	s.trialPeriodPrice = price
	return nil
}

func (s *Subscription) TrialPeriodPrice() int {
	return s.trialPeriodPrice
}

func (s *Subscription) SetStartDate(date string) error {
	if date == "" {
		return newError("Subscription.StartDate.Invalid", "invalid start date")
	}
	s.startDate = date
	return nil
}

func (s *Subscription) StartDate() string {
	return s.startDate
}

func (s *Subscription) SetEndDate(date string) error {
	if date == "" {
		return newError("Subscription.EndDate.Invalid", "invalid end date")
	}
	s.endDate = date
	return nil
}

func (s *Subscription) EndDate() string {
	return s.endDate
}

// Status returns the last known subscription status, as hydrated by
// Subscriptions.Get.
func (s *Subscription) Status() string {
	return s.status
}

// Register creates the subscription at the gateway. On success the id is
// set and, when the gateway wants the consumer redirected for the first
// payment, ActionURL points at the hosted payment page.
func (s *Subscription) Register(ctx context.Context) error {
	data := s.basePayload()
	put(data, "period", s.period)
	put(data, "period_type", s.periodType)
	put(data, "period_price", s.periodPrice)
	put(data, "initial_payment", s.initialPayment)
	put(data, "trial_period", s.trialPeriod)
	put(data, "trial_period_type", s.trialPeriodType)
	put(data, "trial_period_price", s.trialPeriodPrice)
	put(data, "start_date", s.startDate)
	put(data, "end_date", s.endDate)
	data["recurring"] = true
	if s.method != nil {
		put(data, "pt", s.method.ID())
		put(data, "issuer", s.issuer)
	}
	s.consumerPayload(data, "country_id")
	if s.cart != nil && len(s.cart.Items()) > 0 {
		data["cartitems"] = s.cart.Data()
	}

	result, err := s.client.doRequest(ctx, "subscription/register/", data, http.MethodPost)
	if err != nil {
		return err
	}
	sub := result.Get("subscription")
	if !sub.Exists() {
		return newError("Subscription.Request.Invalid",
			"unexpected registration result: "+s.client.LastResult()+s.client.debugInfo(true, false))
	}
	// The gateway answers with either a bare id string or an object
	// carrying subscription_id plus redirect details.
	if sub.IsObject() {
		id := sub.Get("subscription_id").String()
		if id == "" {
			return newError("Subscription.Request.Invalid",
				"registration result misses subscription id: "+s.client.LastResult())
		}
		s.id = id
		if sub.Get("action").String() == "redirect" {
			s.actionURL = sub.Get("url").String()
		}
		return nil
	}
	if sub.String() == "" {
		return newError("Subscription.Request.Invalid",
			"registration result misses subscription id: "+s.client.LastResult())
	}
	s.id = sub.String()
	return nil
}

// ChangeStatus moves the subscription to a new status, one of the
// Subscription status constants. The configured description, when set,
// is passed along as the reason.
func (s *Subscription) ChangeStatus(ctx context.Context, status string) error {
	if s.id == "" {
		return newError("Subscription.Request.Invalid", "invalid subscription id")
	}
	if !validSubscriptionStatuses[status] {
		return newError("Subscription.Status.Invalid", "invalid subscription status: "+status)
	}
	data := map[string]any{"subscription_id": s.id}
	put(data, "description", s.description)

	result, err := s.client.doRequest(ctx, "subscription/"+status+"/", data, http.MethodPost)
	if err != nil {
		return err
	}
	if !result.Get("success").Bool() {
		return newError("Subscription.Request.Invalid",
			"status change rejected: "+s.client.LastResult())
	}
	s.status = status
	return nil
}
