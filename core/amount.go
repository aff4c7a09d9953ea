package core

import (
	"fmt"
	"math/big"
	"strings"
)

// All on-chain amounts are fixed-point integers scaled by 10^18 (wei-style).
// Display keeps 2 decimal places.
var (
	tokenScale     = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	hundredthScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)
	halfHundredth  = new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil))
)

// Amount is an on-chain token amount in its smallest unit.
type Amount struct {
	wei *big.Int
}

func NewAmount(wei *big.Int) Amount {
	if wei == nil {
		return Amount{wei: new(big.Int)}
	}
	return Amount{wei: new(big.Int).Set(wei)}
}

// ParseAmount converts a decimal token string (eg. "12.5") to its scaled integer.
func ParseAmount(s string) (Amount, error) {
	s = CleanString(s)
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		return Amount{}, fmt.Errorf("negative amount %q", s)
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	// SetString tolerates signs, so both parts must be digit-only up front
	if !isDigits(whole) || !isDigits(frac) {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > 18 {
		return Amount{}, fmt.Errorf("amount %q has more than 18 decimal places", s)
	}
	frac += strings.Repeat("0", 18-len(frac))

	w, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	f, ok := new(big.Int).SetString(frac, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return Amount{wei: w.Mul(w, tokenScale).Add(w, f)}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MustParseAmount is ParseAmount for trusted literals; it panics on bad input.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Wei returns a copy of the scaled integer value.
func (a Amount) Wei() *big.Int {
	if a.wei == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.wei)
}

func (a Amount) IsZero() bool {
	return a.wei == nil || a.wei.Sign() == 0
}

func (a Amount) IsPositive() bool {
	return a.wei != nil && a.wei.Sign() > 0
}

func (a Amount) Cmp(b Amount) int {
	return a.Wei().Cmp(b.Wei())
}

func (a Amount) Add(b Amount) Amount {
	w := a.Wei()
	return Amount{wei: w.Add(w, b.Wei())}
}

func (a Amount) Sub(b Amount) Amount {
	w := a.Wei()
	return Amount{wei: w.Sub(w, b.Wei())}
}

// String renders the amount with 2 decimal places, rounding half up:
// 12500000000000000000 -> "12.50".
func (a Amount) String() string {
	wei := a.Wei()
	hundredths := wei.Add(wei, halfHundredth).Div(wei, hundredthScale)
	whole, rem := new(big.Int).DivMod(hundredths, big.NewInt(100), new(big.Int))
	return fmt.Sprintf("%s.%02d", whole.String(), rem.Int64())
}

// Display renders the amount followed by the token symbol: "12.50 EDU".
func (a Amount) Display() string {
	return a.String() + " " + Conf.GetString("tokenSymbol")
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*a = Amount{wei: new(big.Int)}
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
