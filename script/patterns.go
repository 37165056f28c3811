package script

import (
	"github.com/pkg/errors"
	"github.com/tokenized/pkg/bitcoin"
)

const (
	// MaxMultisigPublicKeys is the maximum number of keys in a multisig script.
	MaxMultisigPublicKeys = 20

	// MaxStandardMultisigPublicKeys is the maximum number of keys in a standard bare multisig
	// script.
	MaxStandardMultisigPublicKeys = 3

	// MaxNullDataSize is the maximum number of bytes in a standard OP_RETURN data script.
	MaxNullDataSize = 80
)

var (
	ErrNotMultisig    = errors.New("Not Multisig")
	ErrInvalidAddress = errors.New("Invalid Address")
)

// IsPayToPublicKeyHash returns true for OP_DUP OP_HASH160 <20 bytes> OP_EQUALVERIFY OP_CHECKSIG.
func (s Script) IsPayToPublicKeyHash() bool {
	if len(s.chunks) != 5 {
		return false
	}

	return s.chunks[0].opCode == OP_DUP &&
		s.chunks[1].opCode == OP_HASH160 &&
		s.chunks[2].opCode == bitcoin.Hash20Size &&
		s.chunks[3].opCode == OP_EQUALVERIFY &&
		s.chunks[4].opCode == OP_CHECKSIG
}

// IsPayToScriptHash returns true for the exact byte pattern OP_HASH160 <20 bytes> OP_EQUAL.
func (s Script) IsPayToScriptHash() bool {
	return IsPayToScriptHashBytes(s.Bytes())
}

// IsPayToScriptHashBytes returns true when b is exactly a9 14 <20 bytes> 87.
func IsPayToScriptHashBytes(b []byte) bool {
	return len(b) == 23 &&
		b[0] == OP_HASH160 &&
		b[1] == bitcoin.Hash20Size &&
		b[22] == OP_EQUAL
}

// IsPayToPublicKey returns true for <33 or 65 byte public key> OP_CHECKSIG.
func (s Script) IsPayToPublicKey() bool {
	if len(s.chunks) != 2 || s.chunks[1].opCode != OP_CHECKSIG {
		return false
	}

	opCode := s.chunks[0].opCode
	return opCode == 33 || opCode == 65
}

// IsMultisig returns true for <m> <public key>... <n> OP_CHECKMULTISIG where m and n are small
// integer op codes, there are n keys, and m <= n.
func (s Script) IsMultisig() bool {
	_, _, err := s.multisig()
	return err == nil
}

// IsStandardMultisig returns true for a multisig script with at most
// MaxStandardMultisigPublicKeys keys.
func (s Script) IsStandardMultisig() bool {
	_, keys, err := s.multisig()
	return err == nil && len(keys) <= MaxStandardMultisigPublicKeys
}

// IsNullData returns true for OP_RETURN optionally followed by a single push of at most
// MaxNullDataSize bytes.
func (s Script) IsNullData() bool {
	if len(s.chunks) == 0 || s.chunks[0].opCode != OP_RETURN {
		return false
	}

	if len(s.chunks) == 1 {
		return true
	}

	if len(s.chunks) != 2 {
		return false
	}

	data, ok := s.chunks[1].InterpretedData()
	return ok && len(data) <= MaxNullDataSize
}

// IsStandard returns true when the script matches one of the standard output patterns.
func (s Script) IsStandard() bool {
	return s.IsPayToPublicKeyHash() || s.IsPayToScriptHash() || s.IsPayToPublicKey() ||
		s.IsStandardMultisig() || s.IsNullData()
}

// MultisigPublicKeys returns the public keys of a multisig script.
func (s Script) MultisigPublicKeys() ([][]byte, error) {
	_, keys, err := s.multisig()
	return keys, err
}

// MultisigSignaturesRequired returns the number of signatures required by a multisig script.
func (s Script) MultisigSignaturesRequired() (int, error) {
	required, _, err := s.multisig()
	return required, err
}

func (s Script) multisig() (int, [][]byte, error) {
	l := len(s.chunks)
	if l < 4 {
		return 0, nil, errors.Wrap(ErrNotMultisig, "too short")
	}

	if s.chunks[l-1].opCode != OP_CHECKMULTISIG {
		return 0, nil, errors.Wrap(ErrNotMultisig, "missing OP_CHECKMULTISIG")
	}

	first := s.chunks[0].opCode
	if first < OP_1 || first > OP_16 {
		return 0, nil, errors.Wrap(ErrNotMultisig, "required count")
	}
	required := SmallIntegerValue(first)

	last := s.chunks[l-2].opCode
	if last < OP_1 || last > OP_16 {
		return 0, nil, errors.Wrap(ErrNotMultisig, "key count")
	}
	count := SmallIntegerValue(last)

	if count != l-3 {
		return 0, nil, errors.Wrapf(ErrNotMultisig, "key count %d with %d keys", count, l-3)
	}

	if required > count {
		return 0, nil, errors.Wrapf(ErrNotMultisig, "%d of %d", required, count)
	}

	keys := make([][]byte, 0, count)
	for _, chunk := range s.chunks[1 : l-2] {
		if chunk.opCode == OP_0 || !chunk.IsPushData() {
			return 0, nil, errors.Wrap(ErrNotMultisig, "key is not a push")
		}
		keys = append(keys, copyBytes(chunk.data))
	}

	return required, keys, nil
}

// NewMultisigScript returns <required> <public keys>... <count> OP_CHECKMULTISIG.
func NewMultisigScript(required int, publicKeys [][]byte) (Script, error) {
	if len(publicKeys) == 0 || len(publicKeys) > 16 {
		return Script{}, errors.Wrapf(ErrNotMultisig, "%d keys", len(publicKeys))
	}

	if required < 1 || required > len(publicKeys) {
		return Script{}, errors.Wrapf(ErrNotMultisig, "%d of %d", required, len(publicKeys))
	}

	result := NewScript(NewOpCodeChunk(SmallIntegerOpCode(required)))
	for _, publicKey := range publicKeys {
		if len(publicKey) == 0 {
			return Script{}, errors.Wrap(ErrNotMultisig, "empty key")
		}
		result = result.AppendPushData(publicKey)
	}

	return result.AppendOpCode(SmallIntegerOpCode(len(publicKeys)), OP_CHECKMULTISIG), nil
}

// NewPayToScriptHashScript returns the P2SH output script for a redeem script.
func NewPayToScriptHashScript(redeemScript Script) Script {
	return NewScript(
		NewOpCodeChunk(OP_HASH160),
		NewPushDataChunk(bitcoin.Hash160(redeemScript.Bytes())),
		NewOpCodeChunk(OP_EQUAL),
	)
}

// NewPayToPublicKeyHashScript returns the P2PKH output script for a public key hash.
func NewPayToPublicKeyHashScript(publicKeyHash []byte) Script {
	return NewScript(
		NewOpCodeChunk(OP_DUP),
		NewOpCodeChunk(OP_HASH160),
		NewPushDataChunk(publicKeyHash),
		NewOpCodeChunk(OP_EQUALVERIFY),
		NewOpCodeChunk(OP_CHECKSIG),
	)
}

// SigOpCount returns the number of signature operations in the script. When accurate is set,
// multisig operations preceded by OP_1 through OP_16 count that many keys, otherwise they count
// MaxMultisigPublicKeys.
func (s Script) SigOpCount(accurate bool) int {
	result := 0
	var previous byte = OP_INVALIDOPCODE
	for _, chunk := range s.chunks {
		switch chunk.opCode {
		case OP_CHECKSIG, OP_CHECKSIGVERIFY:
			result++
		case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
			if accurate && previous >= OP_1 && previous <= OP_16 {
				result += SmallIntegerValue(previous)
			} else {
				result += MaxMultisigPublicKeys
			}
		}
		previous = chunk.opCode
	}
	return result
}
