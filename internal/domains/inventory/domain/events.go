package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for inventory domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
	// PartitionKey groups events that must stay ordered relative to each other.
	PartitionKey() string
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// StockReceived is raised when units enter the ledger through intake.
type StockReceived struct {
	BaseEvent
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
	OnHand   int    `json:"onHand"`
}

func (e StockReceived) EventName() string    { return "inventory.stock.received" }
func (e StockReceived) PartitionKey() string { return e.ISBN }

// StockReduced is raised when units are written off the ledger.
type StockReduced struct {
	BaseEvent
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
	OnHand   int    `json:"onHand"`
}

func (e StockReduced) EventName() string    { return "inventory.stock.reduced" }
func (e StockReduced) PartitionKey() string { return e.ISBN }

// StockRestocked is raised when units are put back onto an existing entry.
type StockRestocked struct {
	BaseEvent
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
	OnHand   int    `json:"onHand"`
}

func (e StockRestocked) EventName() string    { return "inventory.stock.restocked" }
func (e StockRestocked) PartitionKey() string { return e.ISBN }

// ItemReserved is raised when units move from the ledger into a cart.
type ItemReserved struct {
	BaseEvent
	Shopper      ShopperID `json:"shopper"`
	ISBN         string    `json:"isbn"`
	Quantity     int       `json:"quantity"`
	CartQuantity int       `json:"cartQuantity"`
	OnHand       int       `json:"onHand"`
}

func (e ItemReserved) EventName() string    { return "inventory.cart.item_reserved" }
func (e ItemReserved) PartitionKey() string { return e.ISBN }

// ReservationReleased is raised when units move from a cart back into the ledger.
type ReservationReleased struct {
	BaseEvent
	Shopper  ShopperID `json:"shopper"`
	ISBN     string    `json:"isbn"`
	Quantity int       `json:"quantity"`
	OnHand   int       `json:"onHand"`
	Reason   string    `json:"reason"`
}

func (e ReservationReleased) EventName() string    { return "inventory.cart.reservation_released" }
func (e ReservationReleased) PartitionKey() string { return e.ISBN }

// CartCheckedOut is raised when a cart's reservation is committed.
type CartCheckedOut struct {
	BaseEvent
	Shopper   ShopperID       `json:"shopper"`
	ReceiptID string          `json:"receiptId"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

func (e CartCheckedOut) EventName() string    { return "inventory.cart.checked_out" }
func (e CartCheckedOut) PartitionKey() string { return string(e.Shopper) }
