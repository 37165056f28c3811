package p2pkh

import (
	"bytes"

	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"

	"github.com/pkg/errors"
)

const (
	LockingSize = 5 + bitcoin.Hash20Size

	UnlockingSize = dash_interpreter.MaxSignaturesPushDataSize +
		dash_interpreter.PublicKeyPushDataSize
)

var (
	Script_P2PKH_Pre = script.NewScript().
		AppendOpCode(script.OP_DUP).
		AppendOpCode(script.OP_HASH160)
)

func CreateScript(publicKey bitcoin.PublicKey, verify bool) script.Script {
	opCheckSig := script.OP_CHECKSIG
	if verify {
		opCheckSig = script.OP_CHECKSIGVERIFY
	}

	return Script_P2PKH_Pre.
		AppendPushData(bitcoin.Hash160(publicKey.Bytes())).
		AppendOpCode(script.OP_EQUALVERIFY).
		AppendOpCode(opCheckSig)
}

// Unlock signs the input and returns the signature and public key pushes. The locking script's
// chunks from codeSeparatorIndex on are signed. Use 0 when there are no code separators.
func Unlock(tx dash_interpreter.TransactionWithOutputs, inputIndex int, key bitcoin.Key,
	sigHashType dash_interpreter.SigHashType, codeSeparatorIndex int,
	verify bool) (script.Script, error) {

	txout, err := tx.InputOutput(inputIndex)
	if err != nil {
		return script.Script{}, errors.Wrap(err, "input output")
	}

	lockingScript, err := script.ParseScript(txout.LockingScript)
	if err != nil {
		return script.Script{}, errors.Wrap(dash_interpreter.CantUnlock, err.Error())
	}

	scriptHash, err := MatchScript(lockingScript, verify)
	if err != nil && errors.Cause(err) != dash_interpreter.RemainingScript {
		return script.Script{}, errors.Wrap(dash_interpreter.CantUnlock, err.Error())
	}

	publicKeyBytes := key.PublicKey().Bytes()
	publicKeyHash := bitcoin.Hash160(publicKeyBytes)

	if !bytes.Equal(scriptHash[:], publicKeyHash) {
		return script.Script{}, errors.Wrap(dash_interpreter.CantUnlock, "wrong public key hash")
	}

	subscript := lockingScript.Subscript(codeSeparatorIndex, lockingScript.Len())
	signature, err := dash_interpreter.SignInput(key, tx.GetMsgTx(), inputIndex, subscript,
		txout.Value, sigHashType, nil)
	if err != nil {
		return script.Script{}, err
	}

	return script.NewScript().
		AppendPushData(signature).
		AppendPushData(publicKeyBytes), nil
}

func MatchScript(lockingScript script.Script, verify bool) (*bitcoin.Hash20, error) {
	chunks, err := dash_interpreter.MatchScript(lockingScript.Chunks(), Script_P2PKH_Pre)
	if err != nil {
		return nil, errors.Wrap(err, "match pre")
	}

	var hash20Bytes []byte
	chunks, hash20Bytes, err = dash_interpreter.MatchNextPushDataSize(chunks, bitcoin.Hash20Size)
	if err != nil {
		return nil, errors.Wrap(err, "match hash")
	}

	scriptHash, err := bitcoin.NewHash20(hash20Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "hash20")
	}

	chunks, err = dash_interpreter.MatchNextOpCode(chunks, script.OP_EQUALVERIFY)
	if err != nil {
		return nil, err
	}

	if verify {
		chunks, err = dash_interpreter.MatchNextOpCode(chunks, script.OP_CHECKSIGVERIFY)
		if err != nil {
			return nil, err
		}
	} else {
		chunks, err = dash_interpreter.MatchNextOpCode(chunks, script.OP_CHECKSIG)
		if err != nil {
			return nil, err
		}
	}

	if len(chunks) != 0 {
		return scriptHash, dash_interpreter.RemainingScript
	}

	return scriptHash, nil
}
