package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrMissingAmount = errors.New("amount is missing")
	ErrInvalidAmount = errors.New("amount is not a number")
)

// Parse converts form or JSON input into a finite number. Blank input is
// ErrMissingAmount; anything non-numeric, including booleans, NaN and the
// infinities, is ErrInvalidAmount.
func Parse(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, ErrMissingAmount
	case bool:
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, t)
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, ErrMissingAmount
		}
		v = strings.TrimSpace(t)
	case *float64:
		if t == nil {
			return 0, ErrMissingAmount
		}
		v = *t
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	return f, nil
}

// Coerce is the fail-open rendition of Parse: whatever cannot be read as a
// number counts as zero.
func Coerce(v any) float64 {
	f, err := Parse(v)
	if err != nil {
		return 0
	}
	return f
}

// Value reads an optional stored amount; absent is zero.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return Coerce(*p)
}

// Coercion selects how amount fields from callers are normalised. The zero
// value fails open; Strict surfaces non-numeric input as ErrInvalidAmount
// while still reading blank input as zero.
type Coercion struct {
	Strict bool
}

func (c Coercion) Amount(v any) (float64, error) {
	if !c.Strict {
		return Coerce(v), nil
	}
	f, err := Parse(v)
	if errors.Is(err, ErrMissingAmount) {
		return 0, nil
	}
	return f, err
}

var printer = message.NewPrinter(language.Vietnamese)

// FormatCurrency renders a VND amount with vi-VN digit grouping, e.g.
// "1.500.000 đ".
func FormatCurrency(amount float64) string {
	return printer.Sprintf("%d", int64(math.Round(amount))) + " đ"
}
