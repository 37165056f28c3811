package dash_interpreter

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
)

const (
	lowSSignatureHex  = "304402207f5561ac3cfb05743cab6ca914f7eb93c489f276f10cdf4549e7f0b0ef4e85cd02200191c0c2fd10f10158973a0344fdaf2438390e083a509d2870bcf2b05445612b01"
	highSSignatureHex = "304502207f5561ac3cfb05743cab6ca914f7eb93c489f276f10cdf4549e7f0b0ef4e85cd022100fe6e3f3d02ef0efea768c5fcbb0250da8275cede74f803134f156bdc7bf0e01601"
)

func mustDecodeHex(t *testing.T, h string) []byte {
	b, err := hex.DecodeString(h)
	if err != nil {
		t.Fatalf("Failed to decode hex : %s", err)
	}
	return b
}

func Test_IsValidSignatureEncoding(t *testing.T) {
	valid := mustDecodeHex(t, lowSSignatureHex)

	modify := func(f func(b []byte) []byte) []byte {
		c := make([]byte, len(valid))
		copy(c, valid)
		return f(c)
	}

	tests := []struct {
		name  string
		sig   []byte
		valid bool
	}{
		{"valid", valid, true},
		{"high s", mustDecodeHex(t, highSSignatureHex), true},
		{"too short", valid[:8], false},
		{"too long", append(modify(func(b []byte) []byte { return b }), make([]byte, 10)...),
			false},
		{"not compound", modify(func(b []byte) []byte { b[0] = 0x31; return b }), false},
		{"wrong length", modify(func(b []byte) []byte { b[1]++; return b }), false},
		{"r not integer", modify(func(b []byte) []byte { b[2] = 0x03; return b }), false},
		{"r negative", modify(func(b []byte) []byte { b[4] |= 0x80; return b }), false},
		{"s not integer", modify(func(b []byte) []byte { b[36] = 0x03; return b }), false},
		{"s negative", modify(func(b []byte) []byte { b[38] = 0x81; return b }), false},
		{"s padded", modify(func(b []byte) []byte { b[38] = 0x00; b[39] = 0x11; return b }),
			false},
		{"missing hash type", valid[:len(valid)-1], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsValidSignatureEncoding(tt.sig) != tt.valid {
				t.Errorf("Wrong result : want %t", tt.valid)
			}
		})
	}
}

func Test_IsLowDERSignature(t *testing.T) {
	if !IsLowDERSignature(mustDecodeHex(t, lowSSignatureHex)) {
		t.Errorf("Low S signature should be low")
	}

	if IsLowDERSignature(mustDecodeHex(t, highSSignatureHex)) {
		t.Errorf("High S signature should not be low")
	}
}

func Test_IsCompressedOrUncompressedPublicKey(t *testing.T) {
	tests := []struct {
		name  string
		key   []byte
		valid bool
	}{
		{"compressed even", append([]byte{0x02}, make([]byte, 32)...), true},
		{"compressed odd", append([]byte{0x03}, make([]byte, 32)...), true},
		{"uncompressed", append([]byte{0x04}, make([]byte, 64)...), true},
		{"compressed wrong prefix", append([]byte{0x04}, make([]byte, 32)...), false},
		{"uncompressed wrong prefix", append([]byte{0x02}, make([]byte, 64)...), false},
		{"hybrid", append([]byte{0x06}, make([]byte, 64)...), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsCompressedOrUncompressedPublicKey(tt.key) != tt.valid {
				t.Errorf("Wrong result : want %t", tt.valid)
			}
		})
	}
}

func Test_CheckSignatureEncoding(t *testing.T) {
	low := mustDecodeHex(t, lowSSignatureHex)
	high := mustDecodeHex(t, highSSignatureHex)

	withHashType := func(hashType byte) []byte {
		c := make([]byte, len(low))
		copy(c, low)
		c[len(c)-1] = hashType
		return c
	}

	tests := []struct {
		name  string
		sig   []byte
		flags ScriptFlags
		err   error
	}{
		{"empty", nil, StandardScriptVerifyFlags, nil},
		{"not der no flags", []byte{0x01, 0x02}, ScriptVerifyNone, nil},
		{"not der", []byte{0x01, 0x02}, ScriptVerifyDERSignatures, ErrSignatureDER},
		{"not der strict", []byte{0x01, 0x02}, ScriptVerifyStrictEncoding, ErrSignatureDER},
		{"high s", high, ScriptVerifyDERSignatures, nil},
		{"high s low s flag", high, ScriptVerifyLowS, ErrSignatureHighS},
		{"undefined hash type", withHashType(0x04), ScriptVerifyDERSignatures, nil},
		{"undefined hash type strict", withHashType(0x04), ScriptVerifyStrictEncoding,
			ErrSignatureHashType},
		{"anyone can pay strict", withHashType(0x81), ScriptVerifyStrictEncoding, nil},
		{"fork id strict", withHashType(0x41), ScriptVerifyStrictEncoding, ErrSignatureHashType},
		{"fork id strict enabled", withHashType(0x41),
			ScriptVerifyStrictEncoding | ScriptEnableSigHashForkID, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSignatureEncoding(tt.sig, tt.flags)
			if errors.Cause(err) != tt.err {
				t.Errorf("Wrong error : got \"%v\", want \"%v\"", err, tt.err)
			}
		})
	}

	if err := checkPublicKeyEncoding([]byte{0x05}, ScriptVerifyNone); err != nil {
		t.Errorf("Public key should not be checked without strict encoding : %s", err)
	}

	err := checkPublicKeyEncoding([]byte{0x05}, ScriptVerifyStrictEncoding)
	if errors.Cause(err) != ErrPublicKeyType {
		t.Errorf("Wrong error : got \"%v\", want \"%v\"", err, ErrPublicKeyType)
	}
}
