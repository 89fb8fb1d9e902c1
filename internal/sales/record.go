package sales

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Record keys, shared by the JSON file, the KV backends and the table columns.
const (
	KeyDNI            = "dni"
	KeyDate           = "fecha"
	KeyCustomer       = "cliente"
	KeyQuantity       = "producto_vendido"
	KeyFreeShipping   = "envio_gratis"
	KeyCashDiscount   = "descuento_efectivo"
	KeyLegacyDiscount = "descuento"
)

// derivedKeys are stripped before a variant is forced.
var derivedKeys = []string{KeyFreeShipping, KeyCashDiscount, KeyLegacyDiscount}

// Record is the flat representation of a sale. Values are JSON-ready:
// int for dni and quantity, string for date and customer, bool for free
// shipping and float64 for the cash discount.
type Record map[string]any

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Channel reports which variant the record holds, online first.
func (r Record) Channel() (Channel, bool) {
	if _, ok := r[KeyFreeShipping]; ok {
		return ChannelOnline, true
	}
	if _, ok := r[KeyCashDiscount]; ok {
		return ChannelLocal, true
	}
	if _, ok := r[KeyLegacyDiscount]; ok {
		return ChannelLocal, true
	}
	return "", false
}

// Record is the ToRecord view of the sale.
func (s Sale) Record() Record {
	return Encode(s)
}

// Encode flattens a sale, always including the derived key of its channel.
func Encode(s Sale) Record {
	rec := Record{
		KeyDNI:      s.DNI,
		KeyDate:     s.Date.Format(DateLayout),
		KeyCustomer: s.Customer,
		KeyQuantity: s.Quantity,
	}

	switch s.Channel {
	case ChannelOnline:
		rec[KeyFreeShipping] = s.FreeShipping
	case ChannelLocal:
		rec[KeyCashDiscount] = s.CashDiscount.Round(discountPlaces).InexactFloat64()
	}
	return rec
}

// Decode rebuilds the sale variant a record represents. The stored derived
// value is kept as is; it is only recomputed for the legacy boolean discount.
func Decode(rec Record) (Sale, error) {
	ch, ok := rec.Channel()
	if !ok {
		return Sale{}, fmt.Errorf("%w: record for dni %v has neither %s nor %s",
			ErrUnknownVariant, rec[KeyDNI], KeyFreeShipping, KeyCashDiscount)
	}

	s, err := decodeBase(rec)
	if err != nil {
		return Sale{}, err
	}
	s.Channel = ch
	s.derive()

	switch ch {
	case ChannelOnline:
		free, err := toBool(rec[KeyFreeShipping])
		if err != nil {
			return Sale{}, &ValidationError{Field: KeyFreeShipping, Value: fmt.Sprint(rec[KeyFreeShipping]), Reason: err.Error()}
		}
		s.FreeShipping = free
	case ChannelLocal:
		v, ok := rec[KeyCashDiscount]
		if !ok {
			// descuento viejo: booleano, se recalcula desde la cantidad
			return s, nil
		}
		if _, isBool := v.(bool); isBool {
			return s, nil
		}
		d, err := toDecimal(v)
		if err != nil {
			return Sale{}, &ValidationError{Field: KeyCashDiscount, Value: fmt.Sprint(v), Reason: err.Error()}
		}
		s.CashDiscount = d.Round(discountPlaces)
	}
	return s, nil
}

// DecodeAs rebuilds the record as the given channel. Any derived key present,
// matching or not, is dropped and the derived field recomputed from quantity.
func DecodeAs(rec Record, ch Channel) (Sale, error) {
	if ch != ChannelOnline && ch != ChannelLocal {
		return Sale{}, fmt.Errorf("%w: %q", ErrUnknownVariant, ch)
	}

	base := rec.Clone()
	for _, k := range derivedKeys {
		delete(base, k)
	}

	s, err := decodeBase(base)
	if err != nil {
		return Sale{}, err
	}
	s.Channel = ch
	s.derive()
	return s, nil
}

func decodeBase(rec Record) (Sale, error) {
	dni, err := toInt(rec[KeyDNI])
	if err != nil {
		return Sale{}, &ValidationError{Field: KeyDNI, Value: fmt.Sprint(rec[KeyDNI]), Reason: err.Error()}
	}

	date, ok := rec[KeyDate].(string)
	if !ok {
		return Sale{}, &ValidationError{Field: KeyDate, Value: fmt.Sprint(rec[KeyDate]), Reason: "must be a string"}
	}
	d, err := ParseDate(date)
	if err != nil {
		return Sale{}, err
	}

	customer, _ := rec[KeyCustomer].(string)

	q, err := toInt(rec[KeyQuantity])
	if err != nil {
		return Sale{}, &ValidationError{Field: KeyQuantity, Value: fmt.Sprint(rec[KeyQuantity]), Reason: err.Error()}
	}

	return Sale{DNI: dni, Date: d, Customer: customer, Quantity: q}, nil
}

// SummaryFromRecord reads only the base keys.
func SummaryFromRecord(rec Record) (Summary, error) {
	s, err := decodeBase(rec)
	if err != nil {
		return Summary{}, err
	}
	return s.Summary(), nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(n)
	case []byte:
		return strconv.Atoi(string(n))
	case nil:
		return 0, fmt.Errorf("missing value")
	}
	return 0, fmt.Errorf("unexpected type %T", v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int:
		return b != 0, nil
	case int64:
		return b != 0, nil
	case float64:
		return b != 0, nil
	case json.Number:
		return b.String() != "0", nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, fmt.Errorf("unexpected type %T", v)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		return decimal.NewFromString(n)
	case []byte:
		return decimal.NewFromString(string(n))
	}
	return decimal.Zero, fmt.Errorf("unexpected type %T", v)
}
