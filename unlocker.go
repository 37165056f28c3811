package dash_interpreter

import (
	"context"

	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/pkg/wire"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/pkg/errors"
)

const (
	// MaxSignaturesPushDataSize is the largest push of a DER signature with its hash type byte.
	MaxSignaturesPushDataSize = 1 + 73

	// PublicKeyPushDataSize is the push of a compressed public key.
	PublicKeyPushDataSize = 1 + 33
)

var (
	// CantUnlock is returned when the unlocker can't unlock the locking script.
	CantUnlock = errors.New("Can't Unlock")

	// CantSign is returned when the unlocker can't sign the locking script. This is for unlockers
	// that are only used for fee estimation but don't actually have the private keys.
	CantSign = errors.New("Can't Sign")
)

type Unlocker interface {
	// Unlock returns the unlocking script for the input.
	Unlock(ctx context.Context, tx TransactionWithOutputs, inputIndex int) (script.Script, error)

	// UnlockingSize estimates the size of the unlocking script for the locking script.
	UnlockingSize(lockingScript script.Script) (int, error)

	// CanUnlock returns true if this unlocker can generate the correct unlocking script for the
	// locking script.
	CanUnlock(lockingScript script.Script) bool

	// Copy returns a copy of the unlocker that is safe to use in a different thread.
	Copy() Unlocker
}

type MultiUnlocker []Unlocker

func (u MultiUnlocker) Unlock(ctx context.Context, tx TransactionWithOutputs,
	inputIndex int) (script.Script, error) {

	for _, unlocker := range u {
		if unlockingScript, err := unlocker.Unlock(ctx, tx, inputIndex); err == nil {
			return unlockingScript, nil
		} else if errors.Cause(err) != CantUnlock && errors.Cause(err) != ScriptNotMatching {
			return script.Script{}, err
		}
	}

	return script.Script{}, CantUnlock
}

func (u MultiUnlocker) UnlockingSize(lockingScript script.Script) (int, error) {
	notMatching := ScriptNotMatching
	for _, unlocker := range u {
		if unlockingSize, err := unlocker.UnlockingSize(lockingScript); err == nil {
			return unlockingSize, nil
		} else if errors.Cause(err) != ScriptNotMatching {
			return 0, err
		} else {
			notMatching = err
		}
	}

	return 0, notMatching
}

func (u MultiUnlocker) CanUnlock(lockingScript script.Script) bool {
	for _, unlocker := range u {
		if unlocker.CanUnlock(lockingScript) {
			return true
		}
	}

	return false
}

func (u MultiUnlocker) Copy() Unlocker {
	copy := make(MultiUnlocker, len(u))
	for i, unlocker := range u {
		copy[i] = unlocker.Copy()
	}

	return copy
}

// UnlockAll unlocks every input of the transaction in place.
func UnlockAll(ctx context.Context, tx TransactionWithOutputs, unlocker Unlocker) error {
	msgTx := tx.GetMsgTx()
	for index, txin := range msgTx.TxIn {
		unlockingScript, err := unlocker.Unlock(ctx, tx, index)
		if err != nil {
			return errors.Wrapf(err, "unlock input %d", index)
		}

		txin.UnlockingScript = unlockingScript.Bytes()
	}

	return nil
}

// InputSignatureHash returns the digest a signature with hashType commits to for the input.
// Fork id digests are only used when enableForkID is true.
func InputSignatureHash(tx *wire.MsgTx, index int, subscript script.Script, value uint64,
	hashType SigHashType, enableForkID bool, hashCache *SigHashCache) (*bitcoin.Hash32, error) {

	if enableForkID && hashType.HasForkID() {
		return ForkIDSignatureHash(tx, index, subscript, value, hashType, hashCache)
	}

	return SignatureHash(tx, index, subscript, hashType)
}

// SignInput signs the input and returns the signature with the hash type byte appended. The
// signature is serialized with a low S value.
func SignInput(key bitcoin.Key, tx *wire.MsgTx, index int, subscript script.Script,
	value uint64, hashType SigHashType, hashCache *SigHashCache) ([]byte, error) {

	sigHash, err := InputSignatureHash(tx, index, subscript, value, hashType, true, hashCache)
	if err != nil {
		return nil, errors.Wrap(err, "sig hash")
	}

	signature, err := key.Sign(*sigHash)
	if err != nil {
		return nil, errors.Wrap(err, "signature")
	}

	lowS, err := ecdsa.ParseDERSignature(signature.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "parse signature")
	}

	return append(lowS.Serialize(), byte(hashType)), nil
}
