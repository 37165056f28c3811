package dash_interpreter

import (
	"bytes"
	"fmt"

	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/wire"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const (
	// LockTimeThreshold is the value below which lock times are block heights and at or above
	// which they are unix timestamps.
	LockTimeThreshold = 500000000

	// SequenceFinal is the input sequence that disables lock time for the input.
	SequenceFinal = 0xffffffff
)

// SignatureChecker provides the transaction specific checks needed while evaluating scripts.
type SignatureChecker interface {
	// CheckSignature returns true when signature, with its trailing hash type byte, is a valid
	// signature by publicKey of the digest of the transaction with subscript as the script code.
	CheckSignature(signature, publicKey []byte, subscript script.Script, flags ScriptFlags) bool

	// CheckLockTime returns true when the transaction's lock time satisfies lockTime.
	CheckLockTime(lockTime script.Number) bool
}

// TransactionSignatureChecker checks signatures and lock times against an input of a
// transaction.
type TransactionSignatureChecker struct {
	tx         *wire.MsgTx
	inputIndex int
	inputValue uint64
	hashCache  *SigHashCache
}

// NewTransactionSignatureChecker returns a checker for the input of the transaction. The input
// value is only used by fork id signatures. hashCache can be nil.
func NewTransactionSignatureChecker(tx *wire.MsgTx, inputIndex int, inputValue uint64,
	hashCache *SigHashCache) *TransactionSignatureChecker {

	if tx == nil {
		panic("signature checker requires a transaction")
	}
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		panic(fmt.Sprintf("signature checker input index %d out of range (%d inputs)", inputIndex,
			len(tx.TxIn)))
	}

	if hashCache == nil {
		hashCache = &SigHashCache{}
	}

	return &TransactionSignatureChecker{
		tx:         tx,
		inputIndex: inputIndex,
		inputValue: inputValue,
		hashCache:  hashCache,
	}
}

func (c *TransactionSignatureChecker) CheckSignature(signature, publicKey []byte,
	subscript script.Script, flags ScriptFlags) bool {

	if len(signature) == 0 {
		return false
	}

	pubKey, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return false
	}

	hashType := SigHashType(signature[len(signature)-1])
	sig, err := ecdsa.ParseSignature(signature[:len(signature)-1])
	if err != nil {
		return false
	}

	hash, err := InputSignatureHash(c.tx, c.inputIndex, subscript, c.inputValue, hashType,
		flags.Has(ScriptEnableSigHashForkID), c.hashCache)
	if err != nil {
		return false
	}

	return sig.Verify(hash[:], pubKey)
}

func (c *TransactionSignatureChecker) CheckLockTime(lockTime script.Number) bool {
	return checkLockTime(lockTime, c.tx.LockTime, c.tx.TxIn[c.inputIndex].Sequence)
}

// checkLockTime returns true when the transaction lock time is the same kind, height or time,
// as lockTime and has reached it, and the input isn't final.
func checkLockTime(lockTime script.Number, txLockTime, sequence uint32) bool {
	threshold := script.NewNumber(LockTimeThreshold)
	txLock := script.NewNumber(int64(txLockTime))

	if (txLock.Cmp(threshold) < 0) != (lockTime.Cmp(threshold) < 0) {
		return false
	}

	if lockTime.Cmp(txLock) > 0 {
		return false
	}

	// A final input disables the transaction lock time so it could be included in a block
	// before the lock time.
	return sequence != SequenceFinal
}

// SignatureFixture is a signature and public key pair that TestSignatureChecker accepts.
type SignatureFixture struct {
	Signature []byte
	PublicKey []byte
}

// TestSignatureChecker is a SignatureChecker that doesn't need a transaction. When Fixtures is
// empty every non-empty signature check returns Result, otherwise only signature and public key
// pairs in Fixtures are valid. Lock times are checked against LockTime and Sequence.
type TestSignatureChecker struct {
	Result   bool
	Fixtures []SignatureFixture

	LockTime uint32
	Sequence uint32
}

func (c *TestSignatureChecker) CheckSignature(signature, publicKey []byte,
	subscript script.Script, flags ScriptFlags) bool {

	if len(signature) == 0 {
		return false
	}

	if len(c.Fixtures) == 0 {
		return c.Result
	}

	for _, fixture := range c.Fixtures {
		if bytes.Equal(fixture.Signature, signature) && bytes.Equal(fixture.PublicKey, publicKey) {
			return true
		}
	}

	return false
}

func (c *TestSignatureChecker) CheckLockTime(lockTime script.Number) bool {
	return checkLockTime(lockTime, c.LockTime, c.Sequence)
}
