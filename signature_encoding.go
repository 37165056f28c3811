package dash_interpreter

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
)

var (
	halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)
)

// IsValidSignatureEncoding returns true when the signature, including the trailing hash type
// byte, is strict DER as required by BIP66.
//
// Format: 0x30 [total-length] 0x02 [R-length] [R] 0x02 [S-length] [S] [sighash]
func IsValidSignatureEncoding(sig []byte) bool {
	// Minimum and maximum size constraints.
	if len(sig) < 9 || len(sig) > 73 {
		return false
	}

	// A signature is of type 0x30 (compound).
	if sig[0] != 0x30 {
		return false
	}

	// Make sure the length covers the entire signature.
	if int(sig[1]) != len(sig)-3 {
		return false
	}

	// Extract the length of the R element.
	lenR := int(sig[3])

	// Make sure the length of the S element is still inside the signature.
	if 5+lenR >= len(sig) {
		return false
	}

	// Extract the length of the S element.
	lenS := int(sig[5+lenR])

	// Verify that the length of the signature matches the sum of the length of the elements.
	if lenR+lenS+7 != len(sig) {
		return false
	}

	// Check whether the R element is an integer.
	if sig[2] != 0x02 {
		return false
	}

	// Zero-length integers are not allowed for R.
	if lenR == 0 {
		return false
	}

	// Negative numbers are not allowed for R.
	if sig[4]&0x80 != 0 {
		return false
	}

	// Null bytes at the start of R are not allowed, unless R would otherwise be interpreted as a
	// negative number.
	if lenR > 1 && sig[4] == 0x00 && sig[5]&0x80 == 0 {
		return false
	}

	// Check whether the S element is an integer.
	if sig[lenR+4] != 0x02 {
		return false
	}

	// Zero-length integers are not allowed for S.
	if lenS == 0 {
		return false
	}

	// Negative numbers are not allowed for S.
	if sig[lenR+6]&0x80 != 0 {
		return false
	}

	// Null bytes at the start of S are not allowed, unless S would otherwise be interpreted as a
	// negative number.
	if lenS > 1 && sig[lenR+6] == 0x00 && sig[lenR+7]&0x80 == 0 {
		return false
	}

	return true
}

// IsLowDERSignature returns true when the S value of a strict DER signature, including the
// trailing hash type byte, is at most half the curve order.
func IsLowDERSignature(sig []byte) bool {
	if !IsValidSignatureEncoding(sig) {
		return false
	}

	lenR := int(sig[3])
	lenS := int(sig[5+lenR])
	s := new(big.Int).SetBytes(sig[6+lenR : 6+lenR+lenS])

	return s.Cmp(halfOrder) <= 0
}

// IsCompressedOrUncompressedPublicKey returns true for 33 byte keys starting with 0x02 or 0x03
// and 65 byte keys starting with 0x04.
func IsCompressedOrUncompressedPublicKey(publicKey []byte) bool {
	switch len(publicKey) {
	case 33:
		return publicKey[0] == 0x02 || publicKey[0] == 0x03
	case 65:
		return publicKey[0] == 0x04
	default:
		return false
	}
}

// checkSignatureEncoding applies the signature encoding rules selected by flags. Empty signatures
// are always allowed so that a failed check can be expressed without failing the script.
func checkSignatureEncoding(sig []byte, flags ScriptFlags) error {
	if len(sig) == 0 {
		return nil
	}

	if flags.HasAny(ScriptVerifyDERSignatures|ScriptVerifyLowS|ScriptVerifyStrictEncoding) &&
		!IsValidSignatureEncoding(sig) {
		return errors.Wrapf(ErrSignatureDER, "%x", sig)
	}

	if flags.Has(ScriptVerifyLowS) && !IsLowDERSignature(sig) {
		return errors.Wrapf(ErrSignatureHighS, "%x", sig)
	}

	if flags.Has(ScriptVerifyStrictEncoding) {
		hashType := SigHashType(sig[len(sig)-1])
		if !hashType.IsDefined(flags.Has(ScriptEnableSigHashForkID)) {
			return errors.Wrapf(ErrSignatureHashType, "0x%02x", sig[len(sig)-1])
		}
	}

	return nil
}

// checkPublicKeyEncoding requires compressed or uncompressed keys when strict encoding is set.
func checkPublicKeyEncoding(publicKey []byte, flags ScriptFlags) error {
	if flags.Has(ScriptVerifyStrictEncoding) && !IsCompressedOrUncompressedPublicKey(publicKey) {
		return errors.Wrapf(ErrPublicKeyType, "%x", publicKey)
	}

	return nil
}
