package cardgate

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSubscriptionsCreate(t *testing.T) {
	c := NewClient(testMerchantID, testKey, true)

	t.Run("valid", func(t *testing.T) {
		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "")
		require.NoError(t, err)
		assert.Equal(t, 1, s.Period())
		assert.Equal(t, PeriodMonth, s.PeriodType())
		assert.Equal(t, 999, s.PeriodPrice())
		assert.Equal(t, "EUR", s.Currency())
	})

	t.Run("invalid period type", func(t *testing.T) {
		_, err := c.Subscriptions().Create(987, 1, "fortnight", 999, "")
		assert.Equal(t, "Subscription.Period.Type.Invalid", ErrorCode(err))
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := c.Subscriptions().Create(987, 0, PeriodMonth, 999, "")
		assert.Equal(t, "Subscription.Period.Invalid", ErrorCode(err))
	})
}

func TestSubscriptionRegister(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		var gotPath string
		var gotBody []byte
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotBody, _ = io.ReadAll(r.Body)
			respond(t, w, `{"subscription":{"subscription_id":"sub_1","action":"redirect","url":"https://pay.example/sub_1"}}`)
		})

		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "EUR")
		require.NoError(t, err)
		require.NoError(t, s.SetInitialPayment(1999))
		require.NoError(t, s.SetTrialPeriod(2))
		require.NoError(t, s.SetTrialPeriodType(PeriodWeek))
		require.NoError(t, s.SetTrialPeriodPrice(0))
		require.NoError(t, s.SetStartDate("2026-09-01"))
		require.NoError(t, s.SetDescription("Pro plan"))
		require.NoError(t, s.SetReference("plan-42"))
		require.NoError(t, s.SetPaymentMethodID(MethodIdeal))
		consumer := s.Consumer()
		require.NoError(t, consumer.SetEmail("john@example.com"))
		require.NoError(t, consumer.Address().SetCountry("NL"))

		require.NoError(t, s.Register(context.Background()))

		assert.Equal(t, "/subscription/register/", gotPath)
		body := gjson.ParseBytes(gotBody)
		assert.Equal(t, int64(987), body.Get("site_id").Int())
		assert.Equal(t, int64(1), body.Get("period").Int())
		assert.Equal(t, PeriodMonth, body.Get("period_type").String())
		assert.Equal(t, int64(999), body.Get("period_price").Int())
		assert.Equal(t, int64(1999), body.Get("initial_payment").Int())
		assert.Equal(t, int64(2), body.Get("trial_period").Int())
		assert.Equal(t, PeriodWeek, body.Get("trial_period_type").String())
		assert.Equal(t, "2026-09-01", body.Get("start_date").String())
		assert.True(t, body.Get("recurring").Bool())
		assert.Equal(t, MethodIdeal, body.Get("pt").String())
		assert.Equal(t, "NL", body.Get("country_id").String())

		id, err := s.ID()
		require.NoError(t, err)
		assert.Equal(t, "sub_1", id)
		assert.Equal(t, "https://pay.example/sub_1", s.ActionURL())
	})

	t.Run("bare id response", func(t *testing.T) {
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			respond(t, w, `{"subscription":"sub_2"}`)
		})
		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "EUR")
		require.NoError(t, err)
		require.NoError(t, s.Register(context.Background()))

		id, err := s.ID()
		require.NoError(t, err)
		assert.Equal(t, "sub_2", id)
		assert.Empty(t, s.ActionURL())
	})

	t.Run("missing subscription block fails", func(t *testing.T) {
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			respond(t, w, `{}`)
		})
		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "EUR")
		require.NoError(t, err)
		assert.Equal(t, "Subscription.Request.Invalid", ErrorCode(s.Register(context.Background())))

		_, err = s.ID()
		assert.Equal(t, "Subscription.Not.Initialized", ErrorCode(err))
	})

	t.Run("object without id fails", func(t *testing.T) {
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			respond(t, w, `{"subscription":{"action":"redirect"}}`)
		})
		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "EUR")
		require.NoError(t, err)
		assert.Equal(t, "Subscription.Request.Invalid", ErrorCode(s.Register(context.Background())))
	})
}

func TestSubscriptionChangeStatus(t *testing.T) {
	t.Run("posts transition with reason", func(t *testing.T) {
		var gotPath string
		var gotBody []byte
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotBody, _ = io.ReadAll(r.Body)
			respond(t, w, `{"success":true}`)
		})
		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "EUR")
		require.NoError(t, err)
		require.NoError(t, s.SetID("sub_1"))
		require.NoError(t, s.SetDescription("customer request"))

		require.NoError(t, s.ChangeStatus(context.Background(), SubscriptionCancel))

		assert.Equal(t, "/subscription/cancel/", gotPath)
		body := gjson.ParseBytes(gotBody)
		assert.Equal(t, "sub_1", body.Get("subscription_id").String())
		assert.Equal(t, "customer request", body.Get("description").String())
		assert.Equal(t, SubscriptionCancel, s.Status())
	})

	t.Run("invalid transition rejected locally", func(t *testing.T) {
		c := NewClient(testMerchantID, testKey, true)
		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "EUR")
		require.NoError(t, err)
		require.NoError(t, s.SetID("sub_1"))

		assert.Equal(t, "Subscription.Status.Invalid", ErrorCode(s.ChangeStatus(context.Background(), "pause")))
	})

	t.Run("gateway refusal fails", func(t *testing.T) {
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			respond(t, w, `{"success":false}`)
		})
		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "EUR")
		require.NoError(t, err)
		require.NoError(t, s.SetID("sub_1"))

		assert.Equal(t, "Subscription.Request.Invalid", ErrorCode(s.ChangeStatus(context.Background(), SubscriptionSuspend)))
	})

	t.Run("unregistered subscription fails locally", func(t *testing.T) {
		c := NewClient(testMerchantID, testKey, true)
		s, err := c.Subscriptions().Create(987, 1, PeriodMonth, 999, "EUR")
		require.NoError(t, err)

		assert.Equal(t, "Subscription.Request.Invalid", ErrorCode(s.ChangeStatus(context.Background(), SubscriptionCancel)))
	})
}

func TestSubscriptionsGet(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscription/sub_1/", r.URL.Path)
		respond(t, w, `{"subscription":{
			"nn_id":"sub_1","site_id":987,"currency_id":"EUR",
			"period":1,"period_type":"month","period_price":999,
			"start_date":"2026-09-01","end_date":"2027-09-01",
			"description":"Pro plan","reference":"plan-42","status":"active"}}`)
	})

	s, details, err := c.Subscriptions().Get(context.Background(), "sub_1")
	require.NoError(t, err)

	id, err := s.ID()
	require.NoError(t, err)
	assert.Equal(t, "sub_1", id)
	assert.Equal(t, 987, s.SiteID())
	assert.Equal(t, "EUR", s.Currency())
	assert.Equal(t, 1, s.Period())
	assert.Equal(t, PeriodMonth, s.PeriodType())
	assert.Equal(t, 999, s.PeriodPrice())
	assert.Equal(t, "2026-09-01", s.StartDate())
	assert.Equal(t, "2027-09-01", s.EndDate())
	assert.Equal(t, "active", s.Status())
	assert.Equal(t, "Pro plan", details["description"])
}
