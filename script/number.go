package script

import (
	"math"
	"math/big"

	"github.com/pkg/errors"
)

const (
	// DefaultNumberMaxSize is the maximum encoded size of arithmetic operands.
	DefaultNumberMaxSize = 4

	// LockTimeNumberMaxSize is the maximum encoded size of a lock time operand. Lock times are
	// unsigned 32 bit values so they need one more byte than normal operands.
	LockTimeNumberMaxSize = 5
)

var (
	ErrNumberOverflow   = errors.New("Number Overflow")
	ErrNonMinimalNumber = errors.New("Non-Minimal Number")
	ErrDivideByZero     = errors.New("Divide By Zero")
)

// Number is an integer as represented on the script stack. It is encoded in the minimal little
// endian sign-magnitude form where the high bit of the last byte is the sign. Zero encodes as an
// empty byte slice. The zero value of Number is zero.
//
// Number values are immutable.
type Number struct {
	value *big.Int
}

// NewNumber returns a number with the value.
func NewNumber(value int64) Number {
	return Number{value: big.NewInt(value)}
}

// NewNumberFromBig returns a number with a copy of the value.
func NewNumberFromBig(value *big.Int) Number {
	return Number{value: new(big.Int).Set(value)}
}

// NewNumberFromBool returns 1 for true and 0 for false.
func NewNumberFromBool(value bool) Number {
	if value {
		return NewNumber(1)
	}
	return NewNumber(0)
}

// DecodeNumber decodes a number from its stack encoding. It fails when the encoding is longer
// than maxSize or, when requireMinimal is set, when the encoding is not the shortest possible.
func DecodeNumber(b []byte, requireMinimal bool, maxSize int) (Number, error) {
	if len(b) > maxSize {
		return Number{}, errors.Wrapf(ErrNumberOverflow, "script number overflow (%d > %d)",
			len(b), maxSize)
	}

	if requireMinimal && len(b) > 0 {
		// The last byte can only be 0x00 or 0x80 when the previous byte needs its high bit for
		// magnitude.
		if b[len(b)-1]&0x7f == 0 {
			if len(b) == 1 || b[len(b)-2]&0x80 == 0 {
				return Number{}, errors.Wrapf(ErrNonMinimalNumber, "%x", b)
			}
		}
	}

	if len(b) == 0 {
		return NewNumber(0), nil
	}

	// Reverse to big endian for big.Int.
	bigEndian := make([]byte, len(b))
	for i, v := range b {
		bigEndian[len(b)-1-i] = v
	}

	negative := bigEndian[0]&0x80 != 0
	bigEndian[0] &= 0x7f

	value := new(big.Int).SetBytes(bigEndian)
	if negative {
		value.Neg(value)
	}

	return Number{value: value}, nil
}

// ParseNumber decodes a minimally encoded number of at most DefaultNumberMaxSize bytes.
func ParseNumber(b []byte) (Number, error) {
	return DecodeNumber(b, true, DefaultNumberMaxSize)
}

func (n Number) big() *big.Int {
	if n.value == nil {
		return new(big.Int)
	}
	return n.value
}

// Bytes returns the minimal stack encoding of the number.
func (n Number) Bytes() []byte {
	value := n.big()
	if value.Sign() == 0 {
		return []byte{}
	}

	magnitude := new(big.Int).Abs(value).Bytes()

	// Reverse to little endian.
	result := make([]byte, len(magnitude), len(magnitude)+1)
	for i, v := range magnitude {
		result[len(magnitude)-1-i] = v
	}

	negative := value.Sign() < 0
	last := len(result) - 1
	if result[last]&0x80 != 0 {
		// The high bit is used by the magnitude so the sign needs its own byte.
		if negative {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if negative {
		result[last] |= 0x80
	}

	return result
}

// Big returns a copy of the value.
func (n Number) Big() *big.Int {
	return new(big.Int).Set(n.big())
}

// Int64 returns the value clamped to the int64 range.
func (n Number) Int64() int64 {
	value := n.big()
	if value.IsInt64() {
		return value.Int64()
	}
	if value.Sign() < 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

// Int returns the value clamped to the int32 range.
func (n Number) Int() int {
	value := n.Int64()
	if value > math.MaxInt32 {
		return math.MaxInt32
	}
	if value < math.MinInt32 {
		return math.MinInt32
	}
	return int(value)
}

func (n Number) Sign() int {
	return n.big().Sign()
}

func (n Number) IsZero() bool {
	return n.big().Sign() == 0
}

// Bool returns true for any non-zero value.
func (n Number) Bool() bool {
	return !n.IsZero()
}

// Cmp returns -1, 0, or 1 when n is less than, equal to, or greater than other.
func (n Number) Cmp(other Number) int {
	return n.big().Cmp(other.big())
}

func (n Number) Equal(other Number) bool {
	return n.Cmp(other) == 0
}

func (n Number) Add(other Number) Number {
	return Number{value: new(big.Int).Add(n.big(), other.big())}
}

func (n Number) Sub(other Number) Number {
	return Number{value: new(big.Int).Sub(n.big(), other.big())}
}

func (n Number) Mul(other Number) Number {
	return Number{value: new(big.Int).Mul(n.big(), other.big())}
}

// Div returns the quotient rounded toward negative infinity.
func (n Number) Div(other Number) (Number, error) {
	if other.IsZero() {
		return Number{}, ErrDivideByZero
	}

	quotient, remainder := new(big.Int).QuoRem(n.big(), other.big(), new(big.Int))
	if remainder.Sign() != 0 && remainder.Sign() != other.Sign() {
		quotient.Sub(quotient, big.NewInt(1))
	}

	return Number{value: quotient}, nil
}

// Mod returns the remainder consistent with Div, so it has the sign of the divisor.
func (n Number) Mod(other Number) (Number, error) {
	if other.IsZero() {
		return Number{}, ErrDivideByZero
	}

	remainder := new(big.Int).Rem(n.big(), other.big())
	if remainder.Sign() != 0 && remainder.Sign() != other.Sign() {
		remainder.Add(remainder, other.big())
	}

	return Number{value: remainder}, nil
}

func (n Number) Neg() Number {
	return Number{value: new(big.Int).Neg(n.big())}
}

func (n Number) Abs() Number {
	return Number{value: new(big.Int).Abs(n.big())}
}

// Lsh shifts the magnitude left, keeping the sign.
func (n Number) Lsh(bits uint) Number {
	return Number{value: new(big.Int).Lsh(n.big(), bits)}
}

// Rsh shifts the magnitude right, keeping the sign. Shifting out every bit results in zero.
func (n Number) Rsh(bits uint) Number {
	value := n.big()
	result := new(big.Int).Rsh(new(big.Int).Abs(value), bits)
	if value.Sign() < 0 {
		result.Neg(result)
	}
	return Number{value: result}
}

func (n Number) String() string {
	return n.big().String()
}
