package p2pk

import (
	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"

	"github.com/pkg/errors"
)

const (
	LockingSize = dash_interpreter.PublicKeyPushDataSize + 1

	UnlockingSize = dash_interpreter.MaxSignaturesPushDataSize
)

func CreateScript(publicKey bitcoin.PublicKey, verify bool) script.Script {
	opCheckSig := script.OP_CHECKSIG
	if verify {
		opCheckSig = script.OP_CHECKSIGVERIFY
	}

	return script.NewScript().
		AppendPushData(publicKey.Bytes()).
		AppendOpCode(opCheckSig)
}

// Unlock signs the input and returns the signature push. The locking script's chunks from
// codeSeparatorIndex on are signed.
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

	publicKey, err := MatchScript(lockingScript, verify)
	if err != nil && errors.Cause(err) != dash_interpreter.RemainingScript {
		return script.Script{}, errors.Wrap(dash_interpreter.CantUnlock, err.Error())
	}

	if !publicKey.Equal(key.PublicKey()) {
		return script.Script{}, errors.Wrap(dash_interpreter.CantUnlock, "wrong public key")
	}

	subscript := lockingScript.Subscript(codeSeparatorIndex, lockingScript.Len())
	signature, err := dash_interpreter.SignInput(key, tx.GetMsgTx(), inputIndex, subscript,
		txout.Value, sigHashType, nil)
	if err != nil {
		return script.Script{}, err
	}

	return script.NewScript().AppendPushData(signature), nil
}

func MatchScript(lockingScript script.Script, verify bool) (*bitcoin.PublicKey, error) {
	chunks := lockingScript.Chunks()
	if len(chunks) == 0 {
		return nil, errors.Wrap(dash_interpreter.ScriptNotMatching, "missing public key")
	}

	publicKeyBytes, isPush := chunks[0].PushData()
	if !isPush {
		return nil, errors.Wrap(dash_interpreter.ScriptNotMatching, "missing public key")
	}
	if !dash_interpreter.IsCompressedOrUncompressedPublicKey(publicKeyBytes) {
		return nil, errors.Wrapf(dash_interpreter.ScriptNotMatching, "public key size %d",
			len(publicKeyBytes))
	}
	chunks = chunks[1:]

	publicKey, err := bitcoin.PublicKeyFromBytes(publicKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "public key")
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
		return &publicKey, dash_interpreter.RemainingScript
	}

	return &publicKey, nil
}
