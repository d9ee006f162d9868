// Package store persists checkout orders in a local bolt database, so
// gateway callbacks can be matched back to the order they belong to.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

var ordersBucket = []byte("orders")

// ErrNotFound is returned when no order exists for a reference.
var ErrNotFound = errors.New("order not found")

// Order is one checkout attempt, keyed by the merchant reference sent
// to the gateway.
type Order struct {
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transaction_id"`
	Amount        int       `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store wraps the bolt database holding orders.
type Store struct {
	db *bolt.DB
}

func New(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening order database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ordersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating orders bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes the order, stamping CreatedAt on first write and UpdatedAt
// always.
func (s *Store) Put(order *Order) error {
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	value, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding order %s: %w", order.Reference, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ordersBucket).Put([]byte(order.Reference), value)
	})
}

// Get loads the order for a reference, or ErrNotFound.
func (s *Store) Get(reference string) (*Order, error) {
	var order Order
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(ordersBucket).Get([]byte(reference))
		if value == nil {
			return ErrNotFound
		}
		return json.Unmarshal(value, &order)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetStatus updates the status (and, when non-empty, the transaction id)
// of an existing order.
func (s *Store) SetStatus(reference, status, transactionID string) error {
	order, err := s.Get(reference)
	if err != nil {
		return err
	}
	order.Status = status
	if transactionID != "" {
		order.TransactionID = transactionID
	}
	return s.Put(order)
}
