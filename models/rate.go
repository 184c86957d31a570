package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Rate is a sand-per-melange conversion ratio held as an exact fraction.
// The fractional bonus regime (37.5 sand per melange) cannot be represented
// as a float without drift, so all conversion math stays in int64.
type Rate struct {
	SandUnits    int64 // numerator: sand consumed per MelangeUnits melange
	MelangeUnits int64 // denominator
}

// ParseRate parses a decimal string like "50" or "37.5" into an exact Rate.
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasFrac := strings.Cut(s, ".")

	num, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q: %w", s, err)
	}

	den := int64(1)
	if hasFrac && frac != "" {
		fracValue, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Rate{}, fmt.Errorf("invalid rate %q: %w", s, err)
		}
		for range frac {
			den *= 10
		}
		num = num*den + fracValue
	}

	g := gcd(num, den)
	rate := Rate{SandUnits: num / g, MelangeUnits: den / g}
	if rate.SandUnits <= 0 {
		return Rate{}, fmt.Errorf("rate must be positive, got %q", s)
	}
	return rate, nil
}

// Convert maps a sand amount to whole melange plus the sand remainder.
// Guarantees melange*rate <= sand < (melange+1)*rate exactly.
func (r Rate) Convert(sand int64) (melange int64, remainder int64, err error) {
	if sand < 0 {
		return 0, 0, fmt.Errorf("sand amount must be non-negative, got %d", sand)
	}
	if r.SandUnits <= 0 || r.MelangeUnits <= 0 {
		return 0, 0, fmt.Errorf("invalid conversion rate %s", r)
	}

	melange = sand * r.MelangeUnits / r.SandUnits
	consumed := melange * r.SandUnits / r.MelangeUnits
	return melange, sand - consumed, nil
}

// Float64 returns the decimal form for persistence (e.g. 37.5).
func (r Rate) Float64() float64 {
	return float64(r.SandUnits) / float64(r.MelangeUnits)
}

func (r Rate) String() string {
	if r.MelangeUnits == 1 {
		return strconv.FormatInt(r.SandUnits, 10)
	}
	return strconv.FormatFloat(r.Float64(), 'f', -1, 64)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
