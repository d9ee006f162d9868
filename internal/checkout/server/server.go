// Package server is the HTTP surface of the checkout demo: it starts
// payments at the gateway and receives the resulting status callbacks.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cardgate "github.com/cardgate/cardgate-go"
	"github.com/cardgate/cardgate-go/internal/checkout/config"
	"github.com/cardgate/cardgate-go/internal/checkout/store"
)

type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	orders *store.Store
	client *cardgate.Client
	engine *gin.Engine
}

func New(cfg *config.Config, logger *slog.Logger, orders *store.Store, client *cardgate.Client) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		orders: orders,
		client: client,
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/checkout", s.handleCheckout)
	engine.GET("/callback", s.handleCallback)
	engine.GET("/return", s.handleReturn)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, for mounting into an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

type checkoutRequest struct {
	Amount      int    `json:"amount" binding:"required,gt=0"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Method      string `json:"method"`
	Issuer      string `json:"issuer"`
	Email       string `json:"email"`
}

// handleCheckout registers a payment at the gateway and sends the
// consumer to the hosted payment page.
func (s *Server) handleCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reference := "order-" + uuid.NewString()
	tx := s.client.Transactions().Create(s.cfg.SiteID, req.Amount, req.Currency)
	if err := tx.SetReference(reference); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if req.Description != "" {
		if err := tx.SetDescription(req.Description); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := tx.SetCallbackURL(s.cfg.BaseURL + "/callback"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := tx.SetRedirectURL(s.cfg.BaseURL + "/return?reference=" + reference); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if req.Method != "" {
		if err := tx.SetPaymentMethodID(req.Method); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Issuer != "" {
			if err := tx.SetIssuer(req.Issuer); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
	}
	if req.Email != "" {
		if err := tx.Consumer().SetEmail(req.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if ip := c.ClientIP(); ip != "" {
		if err := s.client.SetIP(ip); err != nil {
			s.logger.Warn("cannot record consumer ip", "ip", ip, "error", err)
		}
	}

	if err := tx.Register(c.Request.Context()); err != nil {
		s.logger.Error("payment registration failed", "reference", reference, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": cardgate.ErrorCode(err)})
		return
	}
	id, err := tx.ID()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": cardgate.ErrorCode(err)})
		return
	}

	order := &store.Order{
		Reference:     reference,
		TransactionID: id,
		Amount:        tx.Amount(),
		Currency:      tx.Currency(),
		Status:        "pending",
	}
	if err := s.orders.Put(order); err != nil {
		s.logger.Error("cannot persist order", "reference", reference, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot persist order"})
		return
	}
	s.logger.Info("payment registered", "reference", reference, "transaction", id)

	if tx.ActionURL() != "" {
		c.Redirect(http.StatusFound, tx.ActionURL())
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": reference, "transaction": id})
}

// handleCallback verifies a gateway status callback and acknowledges it.
// The gateway retries until it receives the "<transaction>.<code>" body.
func (s *Server) handleCallback(c *gin.Context) {
	params := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	ok, err := s.client.Transactions().VerifyCallback(params, s.cfg.SiteKey)
	if err != nil {
		s.logger.Warn("malformed callback", "error", err)
		c.String(http.StatusBadRequest, cardgate.ErrorCode(err))
		return
	}
	if !ok {
		s.logger.Warn("callback hash mismatch", "reference", params["reference"])
		c.String(http.StatusUnauthorized, "hash mismatch")
		return
	}

	err = s.orders.SetStatus(params["reference"], params["status"], params["transaction"])
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("callback for unknown order", "reference", params["reference"])
		c.String(http.StatusNotFound, "unknown order")
		return
	}
	if err != nil {
		s.logger.Error("cannot update order", "reference", params["reference"], "error", err)
		c.String(http.StatusInternalServerError, "cannot update order")
		return
	}
	s.logger.Info("order status updated",
		"reference", params["reference"],
		"status", params["status"],
		"transaction", params["transaction"])

	c.String(http.StatusOK, fmt.Sprintf("%s.%s", params["transaction"], params["code"]))
}

// handleReturn is where the consumer lands after the hosted payment
// page. The authoritative status arrives via the callback; this just
// shows the order as currently known.
func (s *Server) handleReturn(c *gin.Context) {
	reference := c.Query("reference")
	order, err := s.orders.Get(reference)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown order"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot load order"})
		return
	}
	c.JSON(http.StatusOK, order)
}
