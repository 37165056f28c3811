package script

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tokenized/pkg/bitcoin"
)

// AddressKind identifies the kind of hash an Address commits to.
type AddressKind uint8

const (
	AddressKindPublicKeyHash = AddressKind(1)
	AddressKindScriptHash    = AddressKind(2)
)

// Address is the hash a standard output script pays to. It is only created from P2PKH and P2SH
// scripts and carries the matching bitcoin raw address.
type Address struct {
	kind AddressKind
	hash bitcoin.Hash20
	raw  bitcoin.RawAddress
}

// NewPublicKeyHashAddress returns the address of a 20 byte public key hash.
func NewPublicKeyHashAddress(hash []byte) (Address, error) {
	return newAddress(AddressKindPublicKeyHash, hash)
}

// NewScriptHashAddress returns the address of a 20 byte redeem script hash.
func NewScriptHashAddress(hash []byte) (Address, error) {
	return newAddress(AddressKindScriptHash, hash)
}

func newAddress(kind AddressKind, hash []byte) (Address, error) {
	h, err := bitcoin.NewHash20(hash)
	if err != nil {
		return Address{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}

	result := Address{kind: kind, hash: *h}
	raw, err := bitcoin.RawAddressFromLockingScript(bitcoin.Script(result.LockingScript().Bytes()))
	if err != nil {
		return Address{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}
	result.raw = raw

	return result, nil
}

// StandardAddress returns the address paid to by a P2PKH or P2SH script. The second return is
// false for every other script.
func (s Script) StandardAddress() (Address, bool) {
	if s.IsPayToPublicKeyHash() {
		address, err := NewPublicKeyHashAddress(s.chunks[2].data)
		return address, err == nil
	}

	if s.IsPayToScriptHash() {
		address, err := NewScriptHashAddress(s.chunks[1].data)
		return address, err == nil
	}

	return Address{}, false
}

func (a Address) Kind() AddressKind {
	return a.kind
}

func (a Address) Hash() bitcoin.Hash20 {
	return a.hash
}

// LockingScript returns the standard output script that pays to the address.
func (a Address) LockingScript() Script {
	if a.kind == AddressKindScriptHash {
		return NewScript(
			NewOpCodeChunk(OP_HASH160),
			NewPushDataChunk(a.hash[:]),
			NewOpCodeChunk(OP_EQUAL),
		)
	}

	return NewPayToPublicKeyHashScript(a.hash[:])
}

// RawAddress returns the bitcoin raw address for the same locking script.
func (a Address) RawAddress() bitcoin.RawAddress {
	return a.raw
}

func (a Address) Equal(other Address) bool {
	return a.kind == other.kind && a.hash == other.hash
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%x", a.kind, a.hash[:])
}

func (k AddressKind) String() string {
	switch k {
	case AddressKindPublicKeyHash:
		return "PKH"
	case AddressKindScriptHash:
		return "SH"
	default:
		return "unknown"
	}
}
