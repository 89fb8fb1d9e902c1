package sales

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Channel tags which variant a Sale is. It is resolved once, at construction or decode time.
type Channel string

const (
	ChannelOnline Channel = "online"
	ChannelLocal  Channel = "local"
)

// ParseChannel accepts the channel names used by the menu and the HTTP API.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelOnline:
		return ChannelOnline, nil
	case ChannelLocal:
		return ChannelLocal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Reglas de los campos derivados, una por canal.
var (
	freeShippingMinQuantity = 2
	cashDiscountMinQuantity = 3
	cashDiscountRate        = decimal.RequireFromString("0.10")
)

// discountPlaces is the scale every cash discount is normalized to.
const discountPlaces = 2

// FreeShipping reports whether an online sale of quantity units ships for free.
func FreeShipping(quantity int) bool {
	return quantity >= freeShippingMinQuantity
}

// CashDiscount is the discount granted to a local sale paid in cash:
// 10% per unit once more than two units are bought, zero otherwise.
func CashDiscount(quantity int) decimal.Decimal {
	if quantity < cashDiscountMinQuantity {
		return decimal.Zero.Round(discountPlaces)
	}
	return decimal.NewFromInt(int64(quantity)).Mul(cashDiscountRate).Round(discountPlaces)
}

// Sale represents a phone sale keyed by the customer's dni.
type Sale struct {
	DNI      int
	Date     time.Time
	Customer string
	Quantity int
	Channel  Channel

	// Only one of these is meaningful, depending on Channel.
	FreeShipping bool
	CashDiscount decimal.Decimal
}

// NewSale validates raw input and builds a sale of the given channel with its derived field.
func NewSale(channel Channel, dni, date, customer, quantity string) (Sale, error) {
	if channel != ChannelOnline && channel != ChannelLocal {
		return Sale{}, fmt.Errorf("%w: %q", ErrUnknownVariant, channel)
	}

	id, err := ParseDNI(dni)
	if err != nil {
		return Sale{}, err
	}

	d, err := ParseDate(date)
	if err != nil {
		return Sale{}, err
	}

	q, err := ParseQuantity(quantity)
	if err != nil {
		return Sale{}, err
	}

	s := Sale{
		DNI:      id,
		Date:     d,
		Customer: strings.TrimSpace(customer),
		Quantity: q,
		Channel:  channel,
	}
	s.derive()
	return s, nil
}

// NewOnlineSale builds a web sale.
func NewOnlineSale(dni, date, customer, quantity string) (Sale, error) {
	return NewSale(ChannelOnline, dni, date, customer, quantity)
}

// NewLocalSale builds an in-store sale.
func NewLocalSale(dni, date, customer, quantity string) (Sale, error) {
	return NewSale(ChannelLocal, dni, date, customer, quantity)
}

// derive sets the channel's derived field from Quantity and zeroes the other one.
func (s *Sale) derive() {
	s.FreeShipping = false
	s.CashDiscount = decimal.Zero.Round(discountPlaces)

	switch s.Channel {
	case ChannelOnline:
		s.FreeShipping = FreeShipping(s.Quantity)
	case ChannelLocal:
		s.CashDiscount = CashDiscount(s.Quantity)
	}
}

// String is the one-line summary shown by the menu.
func (s Sale) String() string {
	base := fmt.Sprintf("%s %s", s.Date.Format(DateLayout), s.Customer)
	if s.Channel == ChannelOnline {
		return fmt.Sprintf("%s - Envío gratis: %t", base, s.FreeShipping)
	}
	return fmt.Sprintf("%s - Descuento: %s", base, s.CashDiscount.StringFixed(discountPlaces))
}

// Equal compares two sales field by field, including the derived field of their channel.
func (s Sale) Equal(o Sale) bool {
	if s.DNI != o.DNI || !s.Date.Equal(o.Date) || s.Customer != o.Customer ||
		s.Quantity != o.Quantity || s.Channel != o.Channel {
		return false
	}
	if s.Channel == ChannelOnline {
		return s.FreeShipping == o.FreeShipping
	}
	return s.CashDiscount.Equal(o.CashDiscount)
}

// Summary is the base-record view used by listings; it carries no derived field.
type Summary struct {
	DNI      int    `json:"dni"`
	Customer string `json:"cliente"`
	Date     string `json:"fecha"`
	Quantity int    `json:"producto_vendido"`
}

func (s Summary) String() string {
	return fmt.Sprintf("DNI: %d, Cliente: %s, Fecha: %s, Productos: %d", s.DNI, s.Customer, s.Date, s.Quantity)
}

// Summary drops the derived field.
func (s Sale) Summary() Summary {
	return Summary{
		DNI:      s.DNI,
		Customer: s.Customer,
		Date:     s.Date.Format(DateLayout),
		Quantity: s.Quantity,
	}
}

// ParseDNI accepts a raw identifier of exactly 7 or 8 decimal digits with a positive value.
func ParseDNI(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.IndexFunc(raw, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, &ValidationError{Field: "dni", Value: raw, Reason: "must be numeric"}
	}
	if len(raw) != 7 && len(raw) != 8 {
		return 0, &ValidationError{Field: "dni", Value: raw, Reason: "must have 7 or 8 digits"}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: "dni", Value: raw, Reason: "must be numeric"}
	}
	if n <= 0 {
		return 0, &ValidationError{Field: "dni", Value: raw, Reason: "must be positive"}
	}
	return n, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "fecha", Value: raw, Reason: "must be YYYY-MM-DD"}
	}
	return d, nil
}

// ParseQuantity parses the number of phones sold.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	q, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: "producto_vendido", Value: raw, Reason: "must be numeric"}
	}
	if q <= 0 {
		return 0, &ValidationError{Field: "producto_vendido", Value: raw, Reason: "must be greater than zero"}
	}
	return q, nil
}
