package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CurrencySymbol prefixes every displayed price.
const CurrencySymbol = "€"

// MaxPriceMinor самая большая допустимая цена позиции, €1 000 000.00.
const MaxPriceMinor int64 = 100_000_000

var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice converts a displayed price ("€5.99", "5.99", "5,99", " 12 ")
// into minor units. Negative amounts and amounts above MaxPriceMinor are rejected.
func ParsePrice(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, CurrencySymbol)
	s = strings.TrimSuffix(s, CurrencySymbol)
	s = strings.TrimSpace(strings.TrimPrefix(s, "EUR"))
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return PriceFromFloat(f)
}

// PriceFromFloat converts a major-unit amount into minor units.
func PriceFromFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, f)
	}
	minor := math.Round(f * 100)
	if minor > float64(MaxPriceMinor) {
		return 0, fmt.Errorf("%w: %v exceeds %s", ErrInvalidPrice, f, FormatAmount(MaxPriceMinor))
	}
	return int64(minor), nil
}

// FormatPrice renders minor units as "€5.99".
func FormatPrice(minor int64) string {
	return CurrencySymbol + FormatAmount(minor)
}

// FormatAmount renders minor units as "5.99" without a currency symbol.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// FlexiblePrice accepts either a JSON number (major units) or a string with
// an optional currency symbol.
type FlexiblePrice struct {
	Minor int64
	Valid bool
}

func (p *FlexiblePrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = FlexiblePrice{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPrice, err)
		}
		minor, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = FlexiblePrice{Minor: minor, Valid: true}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, string(data))
	}
	minor, err := PriceFromFloat(f)
	if err != nil {
		return err
	}
	*p = FlexiblePrice{Minor: minor, Valid: true}
	return nil
}

func (p FlexiblePrice) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(FormatAmount(p.Minor)), nil
}

func (p *FlexiblePrice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	var (
		minor int64
		err   error
	)
	switch v := raw.(type) {
	case nil:
		*p = FlexiblePrice{}
		return nil
	case string:
		minor, err = ParsePrice(v)
	case int:
		minor, err = PriceFromFloat(float64(v))
	case float64:
		minor, err = PriceFromFloat(v)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidPrice, v)
	}
	if err != nil {
		return err
	}
	*p = FlexiblePrice{Minor: minor, Valid: true}
	return nil
}

// NewPrice wraps minor units as a valid FlexiblePrice.
func NewPrice(minor int64) FlexiblePrice {
	return FlexiblePrice{Minor: minor, Valid: true}
}
