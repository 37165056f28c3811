package script

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func Test_Number_RoundTrip(t *testing.T) {
	roundTrip := func(value int64) {
		b := NewNumber(value).Bytes()

		decoded, err := DecodeNumber(b, true, 8)
		if err != nil {
			t.Fatalf("Failed to decode %d (%x) : %s", value, b, err)
		}

		if decoded.Int64() != value {
			t.Fatalf("Wrong value : got %d, want %d (%x)", decoded.Int64(), value, b)
		}

		if !bytes.Equal(decoded.Bytes(), b) {
			t.Fatalf("Wrong re-encoding for %d : got %x, want %x", value, decoded.Bytes(), b)
		}
	}

	for value := int64(-100000); value <= 10000; value++ {
		roundTrip(value)
	}

	for _, v := range []int64{32767, 32768, 65535, 65536, 8388607, 8388608, math.MaxInt32,
		1 << 32, 1 << 40, 1e12, 1e15 - 1, 1e15} {
		roundTrip(v)
		roundTrip(-v)
	}
}

func Test_Number_Decode(t *testing.T) {
	tests := []struct {
		b     []byte
		value int64
		err   error
	}{
		{b: []byte{}, value: 0},
		{b: []byte{0x01}, value: 1},
		{b: []byte{0x81}, value: -1},
		{b: []byte{0x7f}, value: 127},
		{b: []byte{0xff}, value: -127},
		{b: []byte{0x80, 0x00}, value: 128},
		{b: []byte{0x80, 0x80}, value: -128},
		{b: []byte{0xff, 0x00}, value: 255},
		{b: []byte{0xff, 0x80}, value: -255},
		{b: []byte{0x00, 0x01}, value: 256},
		{b: []byte{0x00, 0x81}, value: -256},
		{b: []byte{0xff, 0xff, 0xff, 0x7f}, value: math.MaxInt32},
		{b: []byte{0xff, 0xff, 0xff, 0xff}, value: -math.MaxInt32},
		{b: []byte{0x00}, err: ErrNonMinimalNumber},
		{b: []byte{0x80}, err: ErrNonMinimalNumber},
		{b: []byte{0x00, 0x80}, err: ErrNonMinimalNumber},
		{b: []byte{0x01, 0x00}, err: ErrNonMinimalNumber},
		{b: []byte{0x01, 0x80}, err: ErrNonMinimalNumber},
		{b: []byte{0x00, 0x00, 0x80}, err: ErrNonMinimalNumber},
		{b: []byte{0x00, 0x10, 0x80}, err: ErrNonMinimalNumber},
		{b: []byte{0x10, 0x00, 0x80}, err: ErrNonMinimalNumber},
		{b: []byte{0x00, 0x00, 0x00, 0x00, 0x01}, err: ErrNumberOverflow},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%x", tt.b), func(t *testing.T) {
			n, err := ParseNumber(tt.b)
			if tt.err != nil {
				if errors.Cause(err) != tt.err {
					t.Fatalf("Wrong error : got %v, want %s", err, tt.err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Failed to decode : %s", err)
			}

			if n.Int64() != tt.value {
				t.Errorf("Wrong value : got %d, want %d", n.Int64(), tt.value)
			}
		})
	}
}

func Test_Number_NonMinimalAllowed(t *testing.T) {
	tests := []struct {
		b     []byte
		value int64
	}{
		{b: []byte{0x00}, value: 0},
		{b: []byte{0x80}, value: 0},
		{b: []byte{0x01, 0x00}, value: 1},
		{b: []byte{0x01, 0x80}, value: -1},
		{b: []byte{0x00, 0x00, 0x80}, value: 0},
	}

	for _, tt := range tests {
		n, err := DecodeNumber(tt.b, false, DefaultNumberMaxSize)
		if err != nil {
			t.Fatalf("Failed to decode %x : %s", tt.b, err)
		}

		if n.Int64() != tt.value {
			t.Errorf("Wrong value for %x : got %d, want %d", tt.b, n.Int64(), tt.value)
		}
	}
}

func Test_Number_Overflow(t *testing.T) {
	_, err := DecodeNumber([]byte{0x00, 0x00, 0x80}, true, 2)
	if errors.Cause(err) != ErrNumberOverflow {
		t.Fatalf("Wrong error : got %v, want %s", err, ErrNumberOverflow)
	}

	if !strings.Contains(err.Error(), "script number overflow (3 > 2)") {
		t.Errorf("Wrong error message : %s", err)
	}

	if _, err := DecodeNumber([]byte{0xff, 0xff, 0xff, 0xff, 0x00}, true,
		LockTimeNumberMaxSize); err != nil {
		t.Errorf("Failed to decode 5 byte lock time : %s", err)
	}
}

func Test_Number_Bool(t *testing.T) {
	if !bytes.Equal(NewNumberFromBool(true).Bytes(), []byte{0x01}) {
		t.Errorf("Wrong true encoding : %x", NewNumberFromBool(true).Bytes())
	}

	if len(NewNumberFromBool(false).Bytes()) != 0 {
		t.Errorf("Wrong false encoding : %x", NewNumberFromBool(false).Bytes())
	}

	var zero Number
	if len(zero.Bytes()) != 0 || zero.Bool() {
		t.Errorf("Zero value should be zero")
	}
}

func Test_Number_Arithmetic(t *testing.T) {
	tests := []struct {
		a, b          int64
		div, mod      int64
		add, sub, mul int64
	}{
		{a: 123, b: 10, div: 12, mod: 3, add: 133, sub: 113, mul: 1230},
		{a: 123, b: -10, div: -13, mod: -7, add: 113, sub: 133, mul: -1230},
		{a: -123, b: 10, div: -13, mod: 7, add: -113, sub: -133, mul: -1230},
		{a: -123, b: -10, div: 12, mod: -3, add: -133, sub: -113, mul: 1230},
		{a: 120, b: 10, div: 12, mod: 0, add: 130, sub: 110, mul: 1200},
		{a: -120, b: 10, div: -12, mod: 0, add: -110, sub: -130, mul: -1200},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d", tt.a, tt.b), func(t *testing.T) {
			a := NewNumber(tt.a)
			b := NewNumber(tt.b)

			div, err := a.Div(b)
			if err != nil {
				t.Fatalf("Failed to divide : %s", err)
			}
			if div.Int64() != tt.div {
				t.Errorf("Wrong quotient : got %s, want %d", div, tt.div)
			}

			mod, err := a.Mod(b)
			if err != nil {
				t.Fatalf("Failed to mod : %s", err)
			}
			if mod.Int64() != tt.mod {
				t.Errorf("Wrong remainder : got %s, want %d", mod, tt.mod)
			}

			if v := a.Add(b).Int64(); v != tt.add {
				t.Errorf("Wrong sum : got %d, want %d", v, tt.add)
			}
			if v := a.Sub(b).Int64(); v != tt.sub {
				t.Errorf("Wrong difference : got %d, want %d", v, tt.sub)
			}
			if v := a.Mul(b).Int64(); v != tt.mul {
				t.Errorf("Wrong product : got %d, want %d", v, tt.mul)
			}
		})
	}

	if _, err := NewNumber(1).Div(NewNumber(0)); errors.Cause(err) != ErrDivideByZero {
		t.Errorf("Wrong divide by zero error : %v", err)
	}
	if _, err := NewNumber(1).Mod(Number{}); errors.Cause(err) != ErrDivideByZero {
		t.Errorf("Wrong mod by zero error : %v", err)
	}
}

func Test_Number_Shift(t *testing.T) {
	tests := []struct {
		value int64
		bits  uint
		lsh   int64
		rsh   int64
	}{
		{value: 123, bits: 1, lsh: 246, rsh: 61},
		{value: -123, bits: 1, lsh: -246, rsh: -61},
		{value: 123, bits: 7, lsh: 15744, rsh: 0},
		{value: -123, bits: 7, lsh: -15744, rsh: 0},
		{value: 1, bits: 0, lsh: 1, rsh: 1},
	}

	for _, tt := range tests {
		n := NewNumber(tt.value)
		if v := n.Lsh(tt.bits).Int64(); v != tt.lsh {
			t.Errorf("Wrong %d << %d : got %d, want %d", tt.value, tt.bits, v, tt.lsh)
		}
		if v := n.Rsh(tt.bits).Int64(); v != tt.rsh {
			t.Errorf("Wrong %d >> %d : got %d, want %d", tt.value, tt.bits, v, tt.rsh)
		}
	}
}
