package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the side an order of this side matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// MarshalText encodes the side as BUY or SELL.
func (s Side) MarshalText() ([]byte, error) {
	if s != Buy && s != Sell {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts BUY or SELL in any case.
func (s *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ParseSide converts a case-insensitive token into a Side.
func ParseSide(token string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, token)
	}
}

// TIF represents time in force parameter
type TIF string

// Order Time In Force (TIF)
const (
	GTC TIF = "GTC" // Good Till Canceled
	IOC TIF = "IOC" // Immediate Or Cancel
	FOK TIF = "FOK" // Fill Or Kill
)

// ParseTIF converts a case-insensitive token into a TIF. An empty token
// means GTC.
func ParseTIF(token string) (TIF, error) {
	switch TIF(strings.ToUpper(strings.TrimSpace(token))) {
	case "", GTC:
		return GTC, nil
	case IOC:
		return IOC, nil
	case FOK:
		return FOK, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTif, token)
	}
}

// Order stores information about order
type Order struct {
	id        string
	symbol    string
	side      Side
	price     decimal.Decimal
	quantity  decimal.Decimal
	remaining decimal.Decimal
	timestamp time.Time
	tif       TIF
}

// NewLimitOrder creates a limit order with the full quantity remaining.
// Arguments are validated when the order reaches a book.
func NewLimitOrder(orderID, symbol string, side Side, price, quantity decimal.Decimal, tif TIF, ts time.Time) *Order {
	if tif == "" {
		tif = GTC
	}
	return &Order{
		id:        orderID,
		symbol:    symbol,
		side:      side,
		price:     price,
		quantity:  quantity,
		remaining: quantity,
		timestamp: ts,
		tif:       tif,
	}
}

// ID returns orderID field copy
func (o *Order) ID() string {
	return o.id
}

// Symbol returns the instrument the order is for
func (o *Order) Symbol() string {
	return o.symbol
}

// Side returns side of the order
func (o *Order) Side() Side {
	return o.side
}

// Price returns the limit price
func (o *Order) Price() decimal.Decimal {
	return o.price
}

// Quantity returns the original quantity
func (o *Order) Quantity() decimal.Decimal {
	return o.quantity
}

// Remaining returns the unfilled quantity
func (o *Order) Remaining() decimal.Decimal {
	return o.remaining
}

// Filled returns quantity minus remaining
func (o *Order) Filled() decimal.Decimal {
	return o.quantity.Sub(o.remaining)
}

// Timestamp returns the creation time
func (o *Order) Timestamp() time.Time {
	return o.timestamp
}

// TIF returns the time in force
func (o *Order) TIF() TIF {
	return o.tif
}

// SetRemaining overrides the unfilled quantity. It exists for callers that
// rebuild an order from an external record; the book validates it on entry.
func (o *Order) SetRemaining(remaining decimal.Decimal) {
	o.remaining = remaining
}

// Status summarises how much of the order has executed.
func (o *Order) Status() OrderStatus {
	switch {
	case o.remaining.IsZero():
		return StatusFilled
	case o.remaining.Equal(o.quantity):
		return StatusOpen
	default:
		return StatusPartiallyFilled
	}
}

func (o *Order) decreaseRemaining(qty decimal.Decimal) {
	o.remaining = o.remaining.Sub(qty)
}

// String implements Stringer interface
func (o *Order) String() string {
	return fmt.Sprintf("%s %s %s %s@%s remaining=%s tif=%s",
		o.id, o.symbol, o.side, o.quantity, o.price, o.remaining, o.tif)
}

type orderJSON struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Price     string    `json:"price"`
	Quantity  string    `json:"quantity"`
	Remaining string    `json:"remaining"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	TIF       TIF       `json:"timeInForce"`
}

// MarshalJSON implements custom JSON marshaling for Order
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		ID:        o.id,
		Symbol:    o.symbol,
		Side:      o.side,
		Price:     o.price.String(),
		Quantity:  o.quantity.String(),
		Remaining: o.remaining.String(),
		Status:    string(o.Status()),
		Timestamp: o.timestamp,
		TIF:       o.tif,
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Order
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw orderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	price, err := decimal.NewFromString(raw.Price)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPrice, raw.Price)
	}
	quantity, err := decimal.NewFromString(raw.Quantity)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidQuantity, raw.Quantity)
	}
	remaining := quantity
	if raw.Remaining != "" {
		remaining, err = decimal.NewFromString(raw.Remaining)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidRemaining, raw.Remaining)
		}
	}

	*o = Order{
		id:        raw.ID,
		symbol:    raw.Symbol,
		side:      raw.Side,
		price:     price,
		quantity:  quantity,
		remaining: remaining,
		timestamp: raw.Timestamp,
		tif:       raw.TIF,
	}
	return nil
}

// OrderStatus is a derived view of an order's execution progress.
type OrderStatus string

// Order statuses
const (
	StatusOpen            OrderStatus = "OPEN"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
)

// ParsePrice parses a decimal price string. Sign checks happen when the
// order reaches a book.
func ParsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrInvalidPrice, s)
	}
	return price, nil
}

// ParseQuantity parses a decimal quantity string.
func ParseQuantity(s string) (decimal.Decimal, error) {
	qty, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrInvalidQuantity, s)
	}
	return qty, nil
}
