package sales

import (
	"strconv"
	"strings"
)

// Field is an updatable sale attribute.
type Field string

const (
	FieldQuantity     Field = "quantity"
	FieldDate         Field = "date"
	FieldCustomer     Field = "customer_name"
	FieldFreeShipping Field = "free_shipping"
	FieldDiscount     Field = "discount"
)

var fieldAliases = map[string]Field{
	string(FieldQuantity):     FieldQuantity,
	string(FieldDate):         FieldDate,
	string(FieldCustomer):     FieldCustomer,
	string(FieldFreeShipping): FieldFreeShipping,
	string(FieldDiscount):     FieldDiscount,
	KeyQuantity:               FieldQuantity,
	KeyDate:                   FieldDate,
	KeyCustomer:               FieldCustomer,
	KeyFreeShipping:           FieldFreeShipping,
	KeyCashDiscount:           FieldDiscount,
	KeyLegacyDiscount:         FieldDiscount,
}

// ParseField accepts the field names and their record-key aliases.
func ParseField(name string) (Field, error) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", &UnknownFieldError{Field: name}
	}
	return f, nil
}

// Key is the record key and column name for the field.
func (f Field) Key() string {
	switch f {
	case FieldQuantity:
		return KeyQuantity
	case FieldDate:
		return KeyDate
	case FieldCustomer:
		return KeyCustomer
	case FieldFreeShipping:
		return KeyFreeShipping
	case FieldDiscount:
		return KeyCashDiscount
	}
	return ""
}

// Derived reports the channel owning a derived field.
func (f Field) Derived() (Channel, bool) {
	switch f {
	case FieldFreeShipping:
		return ChannelOnline, true
	case FieldDiscount:
		return ChannelLocal, true
	}
	return "", false
}

// Patch is a validated single-field update.
type Patch struct {
	Field Field
	Value any
}

// NewPatch parses field and raw value. Derived fields may be set directly;
// nothing is recomputed when quantity changes.
func NewPatch(field, value string) (Patch, error) {
	f, err := ParseField(field)
	if err != nil {
		return Patch{}, err
	}

	p := Patch{Field: f}
	switch f {
	case FieldQuantity:
		q, err := ParseQuantity(value)
		if err != nil {
			return Patch{}, err
		}
		p.Value = q
	case FieldDate:
		d, err := ParseDate(value)
		if err != nil {
			return Patch{}, err
		}
		p.Value = d.Format(DateLayout)
	case FieldCustomer:
		p.Value = strings.TrimSpace(value)
	case FieldFreeShipping:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return Patch{}, &ValidationError{Field: KeyFreeShipping, Value: value, Reason: "must be true or false"}
		}
		p.Value = b
	case FieldDiscount:
		d, err := toDecimal(strings.TrimSpace(value))
		if err != nil || d.IsNegative() {
			return Patch{}, &ValidationError{Field: KeyCashDiscount, Value: value, Reason: "must be a non-negative number"}
		}
		p.Value = d.Round(discountPlaces).InexactFloat64()
	}
	return p, nil
}

// CheckChannel rejects a derived field that belongs to the other channel.
func (p Patch) CheckChannel(ch Channel) error {
	owner, derived := p.Field.Derived()
	if derived && owner != ch {
		return &UnknownFieldError{Field: string(p.Field), Reason: "not applicable to " + string(ch) + " sales"}
	}
	return nil
}

// Apply writes the patch into rec after checking the record's channel.
func (p Patch) Apply(rec Record) error {
	ch, ok := rec.Channel()
	if !ok {
		return ErrUnknownVariant
	}
	if err := p.CheckChannel(ch); err != nil {
		return err
	}
	if p.Field == FieldDiscount {
		delete(rec, KeyLegacyDiscount)
	}
	rec[p.Field.Key()] = p.Value
	return nil
}
