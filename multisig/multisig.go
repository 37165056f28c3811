package multisig

import (
	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/pkg/bitcoin"

	"github.com/pkg/errors"
)

const (
	// SubUnlockingSize is the size of one signature in the unlocking script.
	SubUnlockingSize = dash_interpreter.MaxSignaturesPushDataSize
)

// Info is the content of an m-of-n OP_CHECKMULTISIG script.
type Info struct {
	RequiredSigners int
	PublicKeys      []bitcoin.PublicKey
}

// CreateScript returns <required> <keys...> <n> OP_CHECKMULTISIG.
func CreateScript(requiredSigners int, publicKeys []bitcoin.PublicKey) (script.Script, error) {
	keys := make([][]byte, len(publicKeys))
	for i, publicKey := range publicKeys {
		keys[i] = publicKey.Bytes()
	}

	return script.NewMultisigScript(requiredSigners, keys)
}

// UnlockingSize is the size of an unlocking script with all required signatures.
func UnlockingSize(requiredSigners int) int {
	return 1 + requiredSigners*SubUnlockingSize
}

// Unlock signs with the keys that appear in the locking script, in the locking script's key
// order, and returns OP_0 followed by the signatures. When the spent output is P2SH then
// redeemScript must hash to it and is signed and appended to the unlocking script.
func Unlock(tx dash_interpreter.TransactionWithOutputs, inputIndex int, keys []bitcoin.Key,
	redeemScript *script.Script, sigHashType dash_interpreter.SigHashType) (script.Script, error) {

	txout, err := tx.InputOutput(inputIndex)
	if err != nil {
		return script.Script{}, errors.Wrap(err, "input output")
	}

	lockingScript, err := script.ParseScript(txout.LockingScript)
	if err != nil {
		return script.Script{}, errors.Wrap(dash_interpreter.CantUnlock, err.Error())
	}

	subscript := lockingScript
	if lockingScript.IsPayToScriptHash() {
		if redeemScript == nil ||
			!lockingScript.Equal(script.NewPayToScriptHashScript(*redeemScript)) {
			return script.Script{}, errors.Wrap(dash_interpreter.CantUnlock,
				"wrong redeem script")
		}
		subscript = *redeemScript
	}

	info, err := MatchScript(subscript)
	if err != nil {
		return script.Script{}, errors.Wrap(dash_interpreter.CantUnlock, err.Error())
	}

	result := script.NewScript().AppendOpCode(script.OP_0)
	signed := 0
	for _, publicKey := range info.PublicKeys {
		key := findKey(keys, publicKey)
		if key == nil {
			continue
		}

		signature, err := dash_interpreter.SignInput(*key, tx.GetMsgTx(), inputIndex, subscript,
			txout.Value, sigHashType, nil)
		if err != nil {
			return script.Script{}, errors.Wrapf(err, "sign %d", signed)
		}

		result = result.AppendPushData(signature)
		signed++
		if signed == info.RequiredSigners {
			break
		}
	}

	if signed < info.RequiredSigners {
		return script.Script{}, errors.Wrapf(dash_interpreter.CantUnlock,
			"only %d of %d signers", signed, info.RequiredSigners)
	}

	if subscript.Equal(lockingScript) {
		return result, nil
	}

	return result.AppendPushData(subscript.Bytes()), nil
}

func MatchScript(lockingScript script.Script) (*Info, error) {
	chunks, required, err := dash_interpreter.MatchNextSmallInteger(lockingScript.Chunks())
	if err != nil {
		return nil, errors.Wrap(err, "required signers")
	}

	var publicKeys []bitcoin.PublicKey
	for len(chunks) > 0 && chunks[0].IsPushData() {
		publicKeyBytes, _ := chunks[0].PushData()
		publicKey, err := bitcoin.PublicKeyFromBytes(publicKeyBytes)
		if err != nil {
			return nil, errors.Wrapf(dash_interpreter.ScriptNotMatching, "public key %d : %s",
				len(publicKeys), err)
		}

		publicKeys = append(publicKeys, publicKey)
		chunks = chunks[1:]
	}

	chunks, count, err := dash_interpreter.MatchNextSmallInteger(chunks)
	if err != nil {
		return nil, errors.Wrap(err, "public key count")
	}

	if count != len(publicKeys) {
		return nil, errors.Wrapf(dash_interpreter.ScriptNotMatching,
			"public key count %d, found %d", count, len(publicKeys))
	}

	if required > count {
		return nil, errors.Wrapf(dash_interpreter.ScriptNotMatching,
			"required signers %d more than keys %d", required, count)
	}

	chunks, err = dash_interpreter.MatchNextOpCode(chunks, script.OP_CHECKMULTISIG)
	if err != nil {
		return nil, err
	}

	info := &Info{
		RequiredSigners: required,
		PublicKeys:      publicKeys,
	}

	if len(chunks) != 0 {
		return info, dash_interpreter.RemainingScript
	}

	return info, nil
}

func findKey(keys []bitcoin.Key, publicKey bitcoin.PublicKey) *bitcoin.Key {
	for i := range keys {
		if keys[i].PublicKey().Equal(publicKey) {
			return &keys[i]
		}
	}

	return nil
}
