package otp

import (
	"crypto/rand"
	"math/big"

	"github.com/pquerna/otp"
)

// Generator produces one-time passcodes.
type Generator interface {
	Generate() (string, error)
}

// Numeric generates fixed-width decimal codes.
type Numeric struct {
	digits otp.Digits
	bound  *big.Int
}

// NewNumeric returns a Numeric generator. Only six and eight digit codes are
// supported; anything else falls back to six.
func NewNumeric(digits otp.Digits) *Numeric {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits.Length())), nil)

	return &Numeric{digits: digits, bound: bound}
}

// Generate returns a zero-padded code such as "042917".
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(rand.Reader, n.bound)
	if err != nil {
		return "", err
	}

	return n.digits.Format(int32(v.Int64())), nil
}

// Length returns the number of digits in generated codes.
func (n *Numeric) Length() int {
	return n.digits.Length()
}
