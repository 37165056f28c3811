package p2pk

import (
	"context"
	"testing"

	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/logger"
	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/pkg/wire"

	"github.com/pkg/errors"
)

var testFlags = dash_interpreter.StandardScriptVerifyFlags

func newSpendingTx(t *testing.T, lockingScript script.Script,
	value uint64) *dash_interpreter.Transaction {

	previousTxHash, err := bitcoin.NewHash32FromStr("a4e7c8ebb9e2d3b5ac0e94b3b6a2b1a1d7cfc5e1b57a5f6c2fba3e1b2a6b0c01")
	if err != nil {
		t.Fatalf("Failed to create hash : %s", err)
	}

	msgTx := wire.NewMsgTx(1)
	outpoint := wire.NewOutPoint(previousTxHash, 1)
	msgTx.AddTxIn(wire.NewTxIn(outpoint, nil))
	msgTx.AddTxOut(wire.NewTxOut(value-100, []byte{script.OP_TRUE}))

	tx := dash_interpreter.NewTransaction(msgTx)
	tx.AddSpentOutput(*outpoint, wire.NewTxOut(value, lockingScript.Bytes()))
	return tx
}

func Test_Unlock(t *testing.T) {
	ctx := logger.ContextWithLogger(context.Background(), true, false, "")

	key, err := bitcoin.GenerateKey(bitcoin.MainNet)
	if err != nil {
		t.Fatalf("Failed to generate key : %s", err)
	}

	lockingScript := CreateScript(key.PublicKey(), false)
	if len(lockingScript.Bytes()) != LockingSize {
		t.Errorf("Wrong locking size : got %d, want %d", len(lockingScript.Bytes()), LockingSize)
	}

	if !lockingScript.IsPayToPublicKey() {
		t.Errorf("Locking script should be P2PK : %s", lockingScript)
	}

	tx := newSpendingTx(t, lockingScript, 2000)

	unlocker := NewUnlocker(key)
	if !unlocker.CanUnlock(lockingScript) {
		t.Fatalf("Unlocker should unlock its own script")
	}

	size, err := unlocker.UnlockingSize(lockingScript)
	if err != nil {
		t.Fatalf("Failed to get unlocking size : %s", err)
	}

	if err := dash_interpreter.UnlockAll(ctx, tx, unlocker); err != nil {
		t.Fatalf("Failed to unlock : %s", err)
	}

	if len(tx.Tx.TxIn[0].UnlockingScript) > size {
		t.Errorf("Unlocking script larger than estimate : %d > %d",
			len(tx.Tx.TxIn[0].UnlockingScript), size)
	}

	if err := dash_interpreter.VerifyTransaction(ctx, tx, dash_interpreter.VerifyConfig{
		Flags: testFlags,
	}); err != nil {
		t.Fatalf("Failed to verify : %s", err)
	}

	// The signature commits to the outputs.
	tx.Tx.TxOut[0].Value--
	err = dash_interpreter.VerifyTransaction(ctx, tx, dash_interpreter.VerifyConfig{
		Flags: testFlags,
	})
	if errors.Cause(err) != dash_interpreter.ErrEvalFalse {
		t.Fatalf("Wrong error : got \"%v\", want \"%v\"", err, dash_interpreter.ErrEvalFalse)
	}
}

func Test_Unlock_VerifyCodeSeparator(t *testing.T) {
	ctx := logger.ContextWithLogger(context.Background(), true, false, "")

	key, err := bitcoin.GenerateKey(bitcoin.MainNet)
	if err != nil {
		t.Fatalf("Failed to generate key : %s", err)
	}

	lockingScript := CreateScript(key.PublicKey(), true).
		AppendOpCode(script.OP_CODESEPARATOR).
		AppendOpCode(script.OP_TRUE)

	publicKey, err := MatchScript(lockingScript, true)
	if errors.Cause(err) != dash_interpreter.RemainingScript {
		t.Fatalf("Wrong error : got \"%v\", want \"%v\"", err, dash_interpreter.RemainingScript)
	}
	if !publicKey.Equal(key.PublicKey()) {
		t.Fatalf("Wrong public key : %s", publicKey)
	}

	hashType := dash_interpreter.SigHashSingle | dash_interpreter.SigHashForkID
	tx := newSpendingTx(t, lockingScript, 2000)
	unlocker := NewUnlockerFull(key, true, hashType, 0)

	unlockingScript, err := unlocker.Copy().Unlock(ctx, tx, 0)
	if err != nil {
		t.Fatalf("Failed to unlock : %s", err)
	}
	tx.Tx.TxIn[0].UnlockingScript = unlockingScript.Bytes()

	if err := dash_interpreter.VerifyTransaction(ctx, tx, dash_interpreter.VerifyConfig{
		Flags: testFlags | dash_interpreter.ScriptEnableSigHashForkID,
	}); err != nil {
		t.Fatalf("Failed to verify : %s", err)
	}

	// Fork id signatures commit to the spent output value.
	output, err := tx.InputOutput(0)
	if err != nil {
		t.Fatalf("Failed to get input output : %s", err)
	}
	output.Value++

	err = dash_interpreter.VerifyTransaction(ctx, tx, dash_interpreter.VerifyConfig{
		Flags: testFlags | dash_interpreter.ScriptEnableSigHashForkID,
	})
	if errors.Cause(err) != dash_interpreter.ErrCheckSigVerify {
		t.Fatalf("Wrong error : got \"%v\", want \"%v\"", err,
			dash_interpreter.ErrCheckSigVerify)
	}
}

func Test_MatchScript(t *testing.T) {
	key, err := bitcoin.GenerateKey(bitcoin.MainNet)
	if err != nil {
		t.Fatalf("Failed to generate key : %s", err)
	}

	otherKey, err := bitcoin.GenerateKey(bitcoin.MainNet)
	if err != nil {
		t.Fatalf("Failed to generate key : %s", err)
	}

	unlocker := NewUnlocker(otherKey)
	if unlocker.CanUnlock(CreateScript(key.PublicKey(), false)) {
		t.Errorf("Unlocker should not unlock other key's script")
	}

	if unlocker.CanUnlock(CreateScript(otherKey.PublicKey(), true)) {
		t.Errorf("Unlocker should not unlock verify script")
	}

	notMatching := []string{
		"",
		"CHECKSIG",
		"0x03 0x010203 CHECKSIG",
		"0x21 0x050000000000000000000000000000000000000000000000000000000000000000 CHECKSIG",
	}

	for _, text := range notMatching {
		lockingScript, err := script.ParseShortForm(text)
		if err != nil {
			t.Fatalf("Failed to parse script : %s", err)
		}

		if _, err := MatchScript(lockingScript, false); errors.Cause(err) !=
			dash_interpreter.ScriptNotMatching {
			t.Errorf("Wrong error for \"%s\" : got \"%v\", want \"%v\"", text, err,
				dash_interpreter.ScriptNotMatching)
		}
	}
}
