package bench

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OptionalString is a string value that may be deliberately unset.
// It marshals as the bare value when set and as null when unset, so
// absent sweep axes round-trip through result artifacts unchanged.
type OptionalString struct {
	Value string
	Valid bool
}

// SomeString returns a set OptionalString.
func SomeString(v string) OptionalString {
	return OptionalString{Value: v, Valid: true}
}

// MarshalJSON implements json.Marshaler.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalString{}
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// String returns the value, or "unset" when the optional is not set.
func (o OptionalString) String() string {
	if !o.Valid {
		return "unset"
	}
	return o.Value
}

// OptionalInt is an int value that may be deliberately unset.
type OptionalInt struct {
	Value int
	Valid bool
}

// SomeInt returns a set OptionalInt.
func SomeInt(v int) OptionalInt {
	return OptionalInt{Value: v, Valid: true}
}

// MarshalJSON implements json.Marshaler.
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalInt{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = int(v)
	o.Valid = true
	return nil
}

// String returns the decimal value, or "unset" when the optional is not set.
func (o OptionalInt) String() string {
	if !o.Valid {
		return "unset"
	}
	return strconv.Itoa(o.Value)
}

var (
	_ fmt.Stringer = OptionalString{}
	_ fmt.Stringer = OptionalInt{}
)
