package server

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cardgate "github.com/cardgate/cardgate-go"
	"github.com/cardgate/cardgate-go/internal/checkout/config"
	"github.com/cardgate/cardgate-go/internal/checkout/store"
)

const apiKey = "demo-api-key"

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	orders, err := store.New(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { orders.Close() })

	cfg := &config.Config{
		BaseURL:    "http://shop.example",
		MerchantID: 1234,
		APIKey:     apiKey,
		SiteID:     987,
		Testmode:   true,
	}
	client := cardgate.NewClient(cfg.MerchantID, cfg.APIKey, cfg.Testmode)
	client.SetLogger(slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	return New(cfg, slog.New(slog.NewTextHandler(testWriter{t}, nil)), orders, client), orders
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func callbackQuery(transaction, reference, amount, code string) url.Values {
	payload := transaction + "EUR" + amount + reference + code
	sum := md5.Sum([]byte(payload + apiKey))
	return url.Values{
		"transaction": {transaction},
		"currency":    {"EUR"},
		"amount":      {amount},
		"reference":   {reference},
		"code":        {code},
		"status":      {"success"},
		"hash":        {hex.EncodeToString(sum[:])},
	}
}

func TestCallback(t *testing.T) {
	t.Run("verified callback updates order and acknowledges", func(t *testing.T) {
		srv, orders := newTestServer(t)
		require.NoError(t, orders.Put(&store.Order{
			Reference: "order-1", Amount: 2500, Currency: "EUR", Status: "pending",
		}))

		q := callbackQuery("tr_abc", "order-1", "2500", "200")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+q.Encode(), nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tr_abc.200", rec.Body.String())

		order, err := orders.Get("order-1")
		require.NoError(t, err)
		assert.Equal(t, "success", order.Status)
		assert.Equal(t, "tr_abc", order.TransactionID)
	})

	t.Run("tampered callback is not acknowledged", func(t *testing.T) {
		srv, orders := newTestServer(t)
		require.NoError(t, orders.Put(&store.Order{
			Reference: "order-1", Amount: 2500, Currency: "EUR", Status: "pending",
		}))

		q := callbackQuery("tr_abc", "order-1", "2500", "200")
		q.Set("amount", "1")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+q.Encode(), nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		order, err := orders.Get("order-1")
		require.NoError(t, err)
		assert.Equal(t, "pending", order.Status)
	})

	t.Run("incomplete callback rejected", func(t *testing.T) {
		srv, _ := newTestServer(t)

		q := callbackQuery("tr_abc", "order-1", "2500", "200")
		q.Del("hash")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+q.Encode(), nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown order yields not found", func(t *testing.T) {
		srv, _ := newTestServer(t)

		q := callbackQuery("tr_abc", "order-ghost", "2500", "200")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+q.Encode(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReturn(t *testing.T) {
	srv, orders := newTestServer(t)
	require.NoError(t, orders.Put(&store.Order{
		Reference: "order-1", Amount: 2500, Currency: "EUR", Status: "success",
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/return?reference=order-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success"`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/return?reference=ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
