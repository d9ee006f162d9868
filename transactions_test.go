package cardgate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func callbackData(hash string) map[string]string {
	return map[string]string{
		"transaction": "T1",
		"currency":    "EUR",
		"amount":      "100",
		"reference":   "R1",
		"code":        "000",
		"status":      "success",
		"hash":        hash,
	}
}

func TestVerifyCallback(t *testing.T) {
	c := NewClient(testMerchantID, testKey, true)

	t.Run("merchant key signature", func(t *testing.T) {
		data := callbackData(md5hex("T1EUR100R1000" + testKey))
		ok, err := c.Transactions().VerifyCallback(data, "")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("testmode prefixes digest with TEST", func(t *testing.T) {
		data := callbackData(md5hex("TESTT1EUR100R1000" + testKey))
		data["testmode"] = "1"
		ok, err := c.Transactions().VerifyCallback(data, "")
		require.NoError(t, err)
		assert.True(t, ok)

		// testmode "0" means live: no prefix
		data = callbackData(md5hex("T1EUR100R1000" + testKey))
		data["testmode"] = "0"
		ok, err = c.Transactions().VerifyCallback(data, "")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("site key checked before merchant key", func(t *testing.T) {
		siteKey := "site-hash-key"
		data := callbackData(md5hex("T1EUR100R1000" + siteKey))
		ok, err := c.Transactions().VerifyCallback(data, siteKey)
		require.NoError(t, err)
		assert.True(t, ok)

		// merchant key still accepted when the site key does not match
		data = callbackData(md5hex("T1EUR100R1000" + testKey))
		ok, err = c.Transactions().VerifyCallback(data, siteKey)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tampered callback rejected", func(t *testing.T) {
		data := callbackData(md5hex("T1EUR100R1000" + testKey))
		data["amount"] = "999999"
		ok, err := c.Transactions().VerifyCallback(data, "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing parameter names the gap", func(t *testing.T) {
		data := callbackData("irrelevant")
		delete(data, "status")
		_, err := c.Transactions().VerifyCallback(data, "")
		assert.Equal(t, "Transaction.Callback.Missing", ErrorCode(err))
		assert.Contains(t, err.Error(), "status")
	})
}

func TestTransactionsGet(t *testing.T) {
	t.Run("hydrates from details", func(t *testing.T) {
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/tr_abc/", r.URL.Path)
			respond(t, w, `{"transaction":{
				"id":"tr_abc","site_id":987,"amount":2500,"currency_id":"EUR",
				"description":"Order #1001","reference":"1001","option":"ideal",
				"status":"200"}}`)
		})

		tx, details, err := c.Transactions().Get(context.Background(), "tr_abc")
		require.NoError(t, err)

		id, err := tx.ID()
		require.NoError(t, err)
		assert.Equal(t, "tr_abc", id)
		assert.Equal(t, 987, tx.SiteID())
		assert.Equal(t, 2500, tx.Amount())
		assert.Equal(t, "EUR", tx.Currency())
		assert.Equal(t, "Order #1001", tx.Description())
		assert.Equal(t, "1001", tx.Reference())
		require.NotNil(t, tx.PaymentMethod())
		assert.Equal(t, MethodIdeal, tx.PaymentMethod().ID())

		assert.Equal(t, "200", details["status"])
	})

	t.Run("empty id rejected locally", func(t *testing.T) {
		c := NewClient(testMerchantID, testKey, true)
		_, _, err := c.Transactions().Get(context.Background(), "")
		assert.Equal(t, "Transaction.Id.Invalid", ErrorCode(err))
	})

	t.Run("missing details block fails", func(t *testing.T) {
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			respond(t, w, `{}`)
		})
		_, _, err := c.Transactions().Get(context.Background(), "tr_abc")
		assert.Equal(t, "Transaction.Details.Invalid", ErrorCode(err))
	})
}

func TestTransactionsStatus(t *testing.T) {
	t.Run("missing status field fails", func(t *testing.T) {
		c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			respond(t, w, `{}`)
		})
		_, err := c.Transactions().Status(context.Background(), "tr_abc")
		assert.Equal(t, "Transaction.Status.Invalid", ErrorCode(err))
	})

	t.Run("empty id rejected locally", func(t *testing.T) {
		c := NewClient(testMerchantID, testKey, true)
		_, err := c.Transactions().Status(context.Background(), "")
		assert.Equal(t, "Transaction.Id.Invalid", ErrorCode(err))
	})
}
