package dash_interpreter

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/pkg/wire"
	"github.com/tokenized/txbuilder"

	"github.com/pkg/errors"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

const (
	SigHashAll          SigHashType = 0x01 // Sign all inputs, all outputs
	SigHashNone         SigHashType = 0x02 // Sign all inputs, no outputs
	SigHashSingle       SigHashType = 0x03 // Sign all inputs, only the output at same index as input
	SigHashAnyOneCanPay SigHashType = 0x80 // When combined, only sign contained input
	SigHashForkID       SigHashType = 0x40

	// sigHashTypeMask defines masks the bits of the hash type used to identify which outputs are
	// signed.
	sigHashTypeMask = 0x1f
)

var (
	// InvalidSingleSigHash is the hash returned when the input index is out of range or a
	// SigHashSingle signature has no output at the input's index. Any signature of this hash with
	// the right key verifies.
	InvalidSingleSigHash = bitcoin.Hash32{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

func (v SigHashType) HasForkID() bool {
	return v&SigHashForkID == SigHashForkID
}

func (v SigHashType) HasAnyOneCanPay() bool {
	return v&SigHashAnyOneCanPay == SigHashAnyOneCanPay
}

// BaseType returns the bits that select which outputs are signed.
func (v SigHashType) BaseType() SigHashType {
	return v & sigHashTypeMask
}

func (v SigHashType) HasSingle() bool {
	return v.BaseType() == SigHashSingle
}

func (v SigHashType) HasNone() bool {
	return v.BaseType() == SigHashNone
}

// IsAll returns true unless the base type is none or single. Undefined base types sign all
// outputs.
func (v SigHashType) IsAll() bool {
	return !v.HasNone() && !v.HasSingle()
}

// IsDefined returns true when the base type is all, none, or single and no bits other than
// anyone can pay, and fork id when allowed, are set.
func (v SigHashType) IsDefined(allowForkID bool) bool {
	base := v &^ SigHashAnyOneCanPay
	if allowForkID {
		base &^= SigHashForkID
	}

	return base >= SigHashAll && base <= SigHashSingle
}

func (v SigHashType) String() string {
	var parts []string
	if SigHashForkID&v != 0 {
		parts = append(parts, "FORK_ID")
	}
	if SigHashAnyOneCanPay&v != 0 {
		parts = append(parts, "ANYONE_CAN_PAY")
	}
	switch v & sigHashTypeMask {
	case SigHashAll:
		parts = append(parts, "ALL")
	case SigHashNone:
		parts = append(parts, "NONE")
	case SigHashSingle:
		parts = append(parts, "SINGLE")
	}

	return strings.Join(parts, "|")
}

func SigHashTypeFromString(s string) (SigHashType, error) {
	var result SigHashType
	parts := strings.Split(s, "|")
	for _, part := range parts {
		switch part {
		case "FORK_ID":
			result |= SigHashForkID
		case "ANYONE_CAN_PAY":
			result |= SigHashAnyOneCanPay
		case "ALL":
			result |= SigHashAll
		case "NONE":
			result |= SigHashNone
		case "SINGLE":
			result |= SigHashSingle
		default:
			return 0, fmt.Errorf("unknown signature hash type: %s", part)
		}
	}

	return result, nil
}

func (v *SigHashType) SetString(s string) error {
	newV, err := SigHashTypeFromString(s)
	if err != nil {
		return err
	}

	*v = newV
	return nil
}

func (v SigHashType) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *SigHashType) UnmarshalText(b []byte) error {
	return v.SetString(string(b))
}

// SigHashCache holds the hashes of the prev outs, sequences, and outputs of a transaction that
// are shared by every fork id signature hash of its inputs.
type SigHashCache = txbuilder.SigHashCache

// NewSigHashCache returns a cache with every hash already calculated so it can be shared between
// goroutines verifying inputs of the same transaction.
func NewSigHashCache(tx *wire.MsgTx) *SigHashCache {
	result := &SigHashCache{}
	if len(tx.TxIn) > 0 {
		// An all sig hash reads each of the cached hashes.
		txbuilder.SignatureHash(tx, 0, nil, 0, txbuilder.SigHashAll|txbuilder.SigHashForkID,
			result)
	}
	return result
}

// SignatureHash computes the original transaction digest that signatures commit to.
//
// The subscript is the part of the script being executed after the last executed
// OP_CODESEPARATOR, with the signature already removed. Any remaining OP_CODESEPARATOR op codes
// are removed here. InvalidSingleSigHash is returned when index is not a valid input or a
// SigHashSingle signature has no output at the same index.
func SignatureHash(tx *wire.MsgTx, index int, subscript script.Script,
	hashType SigHashType) (*bitcoin.Hash32, error) {

	if index < 0 {
		return nil, fmt.Errorf("SignatureHash error: negative index %d", index)
	}

	if index >= len(tx.TxIn) {
		return &InvalidSingleSigHash, nil
	}

	if hashType.HasSingle() && index >= len(tx.TxOut) {
		return &InvalidSingleSigHash, nil
	}

	s := sha256.New()
	if err := writeLegacySignatureHashPreimage(s, tx, index, subscript, hashType); err != nil {
		return nil, errors.Wrap(err, "write sig hash bytes")
	}

	hash := bitcoin.Hash32(sha256.Sum256(s.Sum(nil)))
	return &hash, nil
}

func writeLegacySignatureHashPreimage(w io.Writer, tx *wire.MsgTx, index int,
	subscript script.Script, hashType SigHashType) error {

	codeScript := subscript.DeleteOpCode(script.OP_CODESEPARATOR).Bytes()

	txCopy := &wire.MsgTx{
		Version:  tx.Version,
		LockTime: tx.LockTime,
	}

	for i, txin := range tx.TxIn {
		if hashType.HasAnyOneCanPay() && i != index {
			continue
		}

		input := &wire.TxIn{
			PreviousOutPoint: txin.PreviousOutPoint,
			Sequence:         txin.Sequence,
		}

		if i == index {
			input.UnlockingScript = codeScript
		} else if !hashType.IsAll() {
			// Other inputs can be updated when the outputs aren't all signed.
			input.Sequence = 0
		}

		txCopy.TxIn = append(txCopy.TxIn, input)
	}

	switch {
	case hashType.HasNone():
	case hashType.HasSingle():
		for i := 0; i < index; i++ {
			txCopy.TxOut = append(txCopy.TxOut, &wire.TxOut{Value: math.MaxUint64})
		}
		txCopy.TxOut = append(txCopy.TxOut, tx.TxOut[index])
	default:
		txCopy.TxOut = tx.TxOut
	}

	if err := txCopy.Serialize(w); err != nil {
		return errors.Wrap(err, "serialize tx")
	}

	// The hash type is the unsigned last byte of the signature.
	return binary.Write(w, binary.LittleEndian, uint32(hashType))
}

// ForkIDSignatureHash computes the BIP0143 style digest that commits to the spent output's
// value. Cached hash fragments are reused across the inputs of a transaction. InvalidSingleSigHash
// is returned for a SigHashSingle signature with no output at the same index.
func ForkIDSignatureHash(tx *wire.MsgTx, index int, subscript script.Script, value uint64,
	hashType SigHashType, hashCache *SigHashCache) (*bitcoin.Hash32, error) {

	if index < 0 || index >= len(tx.TxIn) {
		return nil, fmt.Errorf("SignatureHash error: index %d but %d txins", index, len(tx.TxIn))
	}

	if hashType.HasSingle() && index >= len(tx.TxOut) {
		return &InvalidSingleSigHash, nil
	}

	if hashCache == nil {
		hashCache = &SigHashCache{}
	}

	hash, err := txbuilder.SignatureHash(tx, index, bitcoin.Script(subscript.Bytes()), value,
		txbuilder.SigHashType(hashType), hashCache)
	if err != nil {
		return nil, errors.Wrap(err, "fork id sig hash")
	}

	return hash, nil
}
