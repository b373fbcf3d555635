package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Int decodes from a JSON number or a numeric string. Form posts deliver every value as a
// string, so both shapes must be accepted. An empty string decodes to 0.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*i = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return notAnInt("string " + strconv.Quote(s))
		}
		*i = Int(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return notAnInt(string(b))
	}
	if f != float64(int(f)) {
		return notAnInt("number " + string(b))
	}
	*i = Int(f)
	return nil
}

// notAnInt is reported as a type error so encoding/json fills in the offending field.
func notAnInt(value string) error {
	return &json.UnmarshalTypeError{Value: value, Type: reflect.TypeOf(0)}
}

// Bool decodes from a JSON bool, a number or a string accepted by ParseBool.
type Bool bool

func (v *Bool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		*v = false
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Bool(ParseBool(s))
	case b[0] == 't' || b[0] == 'f':
		var x bool
		if err := json.Unmarshal(b, &x); err != nil {
			return err
		}
		*v = Bool(x)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("%s is not a boolean", b)
		}
		*v = f != 0
	}
	return nil
}

// ParseBool is lenient: true, 1, yes and on (any case) are true, everything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
