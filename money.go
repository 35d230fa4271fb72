package ucp

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMinorUnits converts a price in cents to its decimal display form,
// e.g. 499 -> "4.99". Integer arithmetic only, so converting back with
// ParseMinorUnits recovers the original value exactly.
func FormatMinorUnits(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseMinorUnits converts a decimal display value back to cents,
// e.g. "4.99" -> 499. At most two fractional digits are accepted; the
// conversion never goes through floating point.
func ParseMinorUnits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("invalid price %q: more than two fractional digits", s)
	}
	// Digits only past this point: ParseInt alone would accept a second
	// sign inside either part (e.g. "1.-5").
	if !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("invalid price %q: non-digit in amount", s)
	}
	// Pad to exactly two fractional digits.
	frac = frac + strings.Repeat("0", 2-len(frac))

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	centsPart, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}

	cents := units*100 + centsPart
	if negative {
		cents = -cents
	}
	return cents, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// DisplayPrice renders a wire price for display. This is the client-side
// normalization step: the wire always carries integer cents.
func DisplayPrice(cents int64) string {
	return FormatMinorUnits(cents)
}
