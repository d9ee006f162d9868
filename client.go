package cardgate

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// ClientVersion identifies this library towards the gateway.
const ClientVersion = "1.1.24"

const (
	// URLProduction is the live gateway endpoint.
	URLProduction = "https://secure.curopayments.net/rest/v1/curo/"
	// URLStaging is the testmode gateway endpoint.
	URLStaging = "https://secure-staging.curopayments.net/rest/v1/curo/"

	// EnvAPIURL overrides both endpoints when set, regardless of
	// testmode. Intended for integration tests against a local stub.
	EnvAPIURL = "CG_API_URL"

	requestTimeout = 60 * time.Second
)

// Debug levels for request/response tracing.
const (
	DebugNone = iota
	DebugResults
	DebugVerbose
)

// Client talks to the gateway REST API. It authenticates with HTTP basic
// auth (merchant id and API key) and exposes the resource collections
// through Transactions, Subscriptions and Methods. A Client is safe for
// concurrent use.
type Client struct {
	mu         sync.Mutex
	merchantID int
	key        string
	testmode   bool
	debugLevel int
	ip         string
	language   string

	logger *slog.Logger
	rest   *resty.Client

	lastRequest string
	lastResult  string

	version       *Version
	transactions  *Transactions
	subscriptions *Subscriptions
	methods       *Methods
}

// NewClient builds a gateway client for the given merchant. With
// testmode true, requests go to the staging environment and TLS
// verification is relaxed.
func NewClient(merchantID int, key string, testmode bool) *Client {
	c := &Client{
		merchantID: merchantID,
		key:        key,
		testmode:   testmode,
		logger:     slog.Default(),
	}
	c.rest = newRestClient(testmode)
	return c
}

func newRestClient(testmode bool) *resty.Client {
	rest := resty.New().SetTimeout(requestTimeout)
	if testmode {
		// Staging runs on certificates that do not always chain.
		rest.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	return rest
}

// SetLogger replaces the structured logger; the default is slog.Default.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

func (c *Client) SetMerchantID(merchantID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.merchantID = merchantID
}

func (c *Client) MerchantID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.merchantID
}

func (c *Client) SetKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
}

func (c *Client) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// SetTestmode switches between the production and staging environments.
func (c *Client) SetTestmode(testmode bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if testmode == c.testmode {
		return
	}
	c.testmode = testmode
	c.rest = newRestClient(testmode)
	c.rest.SetDebug(c.debugLevel == DebugVerbose)
}

func (c *Client) Testmode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.testmode
}

// SetDebugLevel controls tracing: DebugNone, DebugResults or
// DebugVerbose. At DebugVerbose the underlying HTTP traffic is dumped.
func (c *Client) SetDebugLevel(level int) error {
	if level < DebugNone || level > DebugVerbose {
		return newError("Client.DebugLevel.Invalid", fmt.Sprintf("invalid debug level: %d", level))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debugLevel = level
	c.rest.SetDebug(level == DebugVerbose)
	return nil
}

func (c *Client) DebugLevel() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debugLevel
}

// SetIP records the consumer IP address, merged into every payload.
// Both IPv4 and IPv6 are accepted.
func (c *Client) SetIP(ip string) error {
	if net.ParseIP(ip) == nil {
		return newError("Client.Ip.Invalid", "invalid ip address: "+ip)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ip = ip
	return nil
}

func (c *Client) IP() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ip
}

// SetLanguage records the consumer language code, merged into every
// payload as language_id.
func (c *Client) SetLanguage(language string) error {
	if language == "" {
		return newError("Client.Language.Invalid", "invalid language code")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = language
	return nil
}

func (c *Client) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// URL returns the endpoint requests are sent to: the EnvAPIURL override
// when present, otherwise staging or production depending on testmode.
func (c *Client) URL() string {
	if override := os.Getenv(EnvAPIURL); override != "" {
		return override
	}
	if c.Testmode() {
		return URLStaging
	}
	return URLProduction
}

// Version returns the platform/plugin identification entity, creating it
// on first use. Its fields are merged into every request payload.
func (c *Client) Version() *Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version == nil {
		c.version = newVersion()
	}
	return c.version
}

// Transactions returns the transactions resource collection.
func (c *Client) Transactions() *Transactions {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transactions == nil {
		c.transactions = &Transactions{client: c}
	}
	return c.transactions
}

// Subscriptions returns the subscriptions resource collection.
func (c *Client) Subscriptions() *Subscriptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscriptions == nil {
		c.subscriptions = &Subscriptions{client: c}
	}
	return c.subscriptions
}

// Methods returns the payment methods resource collection.
func (c *Client) Methods() *Methods {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.methods == nil {
		c.methods = &Methods{client: c}
	}
	return c.methods
}

// LastRequest returns a printable form of the most recent request:
// "[POST <url>] <body>" for posts, the full URL for gets.
func (c *Client) LastRequest() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRequest
}

// LastResult returns the raw body of the most recent response.
func (c *Client) LastResult() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

func (c *Client) setLastRequest(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRequest = s
}

func (c *Client) setLastResult(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastResult = s
}

// debugInfo renders the last exchange for inclusion in error messages,
// honoring the configured debug level.
func (c *Client) debugInfo(startNewline, withResult bool) string {
	if c.DebugLevel() == DebugNone {
		return ""
	}
	var s string
	if startNewline {
		s = "\n"
	}
	s += "request: " + c.LastRequest()
	if withResult {
		s += "\nresult: " + c.LastResult()
	}
	return s
}

// PullConfig fetches the merchant configuration bound to a one-time
// setup token.
func (c *Client) PullConfig(ctx context.Context, token string) (map[string]any, error) {
	if token == "" {
		return nil, newError("Client.Token.Invalid", "invalid config token")
	}
	result, err := c.doRequest(ctx, "pullconfig/"+url.PathEscape(token)+"/", nil, http.MethodPost)
	if err != nil {
		return nil, err
	}
	config, _ := result.Value().(map[string]any)
	if config == nil {
		return nil, newError("Client.Config.Invalid", "unexpected pullconfig result: "+c.LastResult())
	}
	return config, nil
}

// doRequest performs one call against the gateway. data is merged with
// the consumer ip, language and version identification before it is
// sent: as a JSON body for POST, as query parameters for GET.
func (c *Client) doRequest(ctx context.Context, resource string, data map[string]any, httpMethod string) (gjson.Result, error) {
	if httpMethod != http.MethodGet && httpMethod != http.MethodPost {
		return gjson.Result{}, newError("Client.HttpMethod.Invalid", "invalid http method: "+httpMethod)
	}

	payload := make(map[string]any, len(data)+6)
	for k, v := range data {
		payload[k] = v
	}
	if ip := c.IP(); ip != "" {
		payload["ip"] = ip
	}
	if language := c.Language(); language != "" {
		payload["language_id"] = language
	}
	c.mu.Lock()
	version := c.version
	rest := c.rest
	logger := c.logger
	merchantID, key := c.merchantID, c.key
	c.mu.Unlock()
	if version != nil {
		for k, v := range version.Data("") {
			payload[k] = v
		}
	}

	endpoint := c.URL() + resource
	req := rest.R().
		SetContext(ctx).
		SetBasicAuth(strconv.Itoa(merchantID), key).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	var (
		resp *resty.Response
		err  error
	)
	if httpMethod == http.MethodPost {
		body, merr := json.Marshal(payload)
		if merr != nil {
			return gjson.Result{}, wrapError("Client.Data.Invalid", "cannot encode request data", merr)
		}
		c.setLastRequest("[POST " + endpoint + "] " + string(body))
		resp, err = req.SetBody(body).Post(endpoint)
	} else {
		query := make(url.Values, len(payload))
		for k, v := range payload {
			query.Set(k, fmt.Sprint(v))
		}
		if encoded := query.Encode(); encoded != "" {
			c.setLastRequest(endpoint + "?" + encoded)
		} else {
			c.setLastRequest(endpoint)
		}
		resp, err = req.SetQueryParamsFromValues(query).Get(endpoint)
	}
	if err != nil {
		logger.Error("gateway request failed", "resource", resource, "error", err)
		return gjson.Result{}, wrapError("Client.Request.Curl.Error", err.Error(), err)
	}

	raw := resp.String()
	c.setLastResult(raw)
	if c.DebugLevel() >= DebugResults {
		logger.Debug("gateway exchange",
			"request", c.LastRequest(),
			"status", resp.StatusCode(),
			"result", raw)
	}

	if !gjson.Valid(raw) {
		return gjson.Result{}, newError("Client.Request.JSON.Invalid",
			"remote gave invalid JSON: "+raw+c.debugInfo(true, false))
	}
	result := gjson.Parse(raw)
	if remote := result.Get("error"); remote.Exists() {
		code := remote.Get("code").String()
		return gjson.Result{}, newError("Client.Request.Remote."+code,
			remote.Get("message").String()+c.debugInfo(true, true))
	}
	return result, nil
}
