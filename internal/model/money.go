package model

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a money value in minor units (satang). 6050 is 60.50 baht.
type Amount int64

// minorPerUnit is the number of minor units in one baht.
const minorPerUnit = 100

// ParseAmount parses decimal text such as "60", "60.5" or "60.25".
// At most two fractional digits are accepted.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse amount: empty value")
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, fmt.Errorf("parse amount %q: no digits", s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("parse amount %q: not a decimal number", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("parse amount %q: more than two decimal places", s)
	}

	var units int64
	if whole != "" {
		n, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", s, err)
		}
		units = n
	}

	var minor int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		n, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: invalid fraction", s)
		}
		minor = n
	}

	if units > (math.MaxInt64-minor)/minorPerUnit {
		return 0, fmt.Errorf("parse amount %q: out of range", s)
	}

	a := Amount(units*minorPerUnit + minor)
	if neg {
		a = -a
	}
	return a, nil
}

// isDigits reports whether s holds only ASCII digits. The empty string does.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// AmountFromFloat converts a float (CUE numbers, form input) to an Amount,
// rounding half away from zero to the nearest satang.
func AmountFromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("amount from float: %v is not finite", f)
	}
	scaled := math.Round(f * minorPerUnit)
	if scaled > math.MaxInt64 || scaled < math.MinInt64 {
		return 0, fmt.Errorf("amount from float: %v out of range", f)
	}
	return Amount(scaled), nil
}

// Mul returns the amount multiplied by a quantity.
func (a Amount) Mul(quantity int) Amount {
	return a * Amount(quantity)
}

// String returns the shortest exact decimal text: 60, 60.5, 60.25.
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	units, minor := v/minorPerUnit, v%minorPerUnit
	switch {
	case minor == 0:
		return fmt.Sprintf("%s%d", sign, units)
	case minor%10 == 0:
		return fmt.Sprintf("%s%d.%d", sign, units, minor/10)
	default:
		return fmt.Sprintf("%s%d.%02d", sign, units, minor)
	}
}

// Display formats the amount for people: ฿60.00.
func (a Amount) Display() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s฿%d.%02d", sign, v/minorPerUnit, v%minorPerUnit)
}

// MarshalJSON encodes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) >= 2 && data[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		s = unq
	}

	parsed, err := ParseAmount(s)
	if err == nil {
		*a = parsed
		return nil
	}

	// Numbers like 6.5e1 or 60.499999 come from spreadsheets and form widgets.
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return err
	}
	parsed, err = AmountFromFloat(f)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
