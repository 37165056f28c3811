package multisig

import (
	"context"
	"fmt"
	"testing"

	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/logger"
	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/pkg/wire"

	"github.com/pkg/errors"
)

var testFlags = dash_interpreter.StandardScriptVerifyFlags

func generateKeys(t *testing.T, count int) ([]bitcoin.Key, []bitcoin.PublicKey) {
	var keys []bitcoin.Key
	var publicKeys []bitcoin.PublicKey
	for i := 0; i < count; i++ {
		key, err := bitcoin.GenerateKey(bitcoin.MainNet)
		if err != nil {
			t.Fatalf("Failed to generate key : %s", err)
		}

		keys = append(keys, key)
		publicKeys = append(publicKeys, key.PublicKey())
	}

	return keys, publicKeys
}

func newSpendingTx(t *testing.T, lockingScript script.Script) *dash_interpreter.Transaction {
	previousTxHash, err := bitcoin.NewHash32FromStr("79436eeaa792ea39bbda15d2061f836023014b6bf6384c692561152e04d22dd1")
	if err != nil {
		t.Fatalf("Failed to create hash : %s", err)
	}

	msgTx := wire.NewMsgTx(1)
	outpoint := wire.NewOutPoint(previousTxHash, 2)
	msgTx.AddTxIn(wire.NewTxIn(outpoint, nil))
	msgTx.AddTxOut(wire.NewTxOut(900, []byte{script.OP_TRUE}))

	tx := dash_interpreter.NewTransaction(msgTx)
	tx.AddSpentOutput(*outpoint, wire.NewTxOut(1000, lockingScript.Bytes()))
	return tx
}

func Test_Unlock(t *testing.T) {
	ctx := logger.ContextWithLogger(context.Background(), true, false, "")

	tests := []struct {
		required int
		total    int
		signers  []int // indexes of the keys given to the unlocker
		p2sh     bool
	}{
		{1, 1, []int{0}, false},
		{1, 3, []int{2}, false},
		{2, 3, []int{0, 2}, false},
		{2, 3, []int{2, 1, 0}, false},
		{3, 3, []int{0, 1, 2}, false},
		{2, 3, []int{1, 2}, true},
		{3, 5, []int{4, 0, 2}, true},
		{15, 15, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, true},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%d of %d signers %v p2sh %t", tt.required, tt.total, tt.signers,
			tt.p2sh)
		t.Run(name, func(t *testing.T) {
			keys, publicKeys := generateKeys(t, tt.total)

			multisigScript, err := CreateScript(tt.required, publicKeys)
			if err != nil {
				t.Fatalf("Failed to create script : %s", err)
			}

			info, err := MatchScript(multisigScript)
			if err != nil {
				t.Fatalf("Failed to match script : %s", err)
			}
			if info.RequiredSigners != tt.required || len(info.PublicKeys) != tt.total {
				t.Fatalf("Wrong info : %d of %d", info.RequiredSigners, len(info.PublicKeys))
			}

			var signers []bitcoin.Key
			for _, index := range tt.signers {
				signers = append(signers, keys[index])
			}

			lockingScript := multisigScript
			var unlocker *Unlocker
			if tt.p2sh {
				lockingScript = script.NewPayToScriptHashScript(multisigScript)
				unlocker = NewP2SHUnlocker(signers, multisigScript, dash_interpreter.SigHashAll)
			} else {
				unlocker = NewUnlocker(signers, dash_interpreter.SigHashAll)
			}

			if !unlocker.CanUnlock(lockingScript) {
				t.Fatalf("Unlocker should unlock script")
			}

			size, err := unlocker.UnlockingSize(lockingScript)
			if err != nil {
				t.Fatalf("Failed to get unlocking size : %s", err)
			}

			tx := newSpendingTx(t, lockingScript)
			if err := dash_interpreter.UnlockAll(ctx, tx, unlocker.Copy()); err != nil {
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

			if tt.p2sh {
				// Without P2SH only the redeem script hash is checked.
				err := dash_interpreter.VerifyTransaction(ctx, tx, dash_interpreter.VerifyConfig{
					Flags: dash_interpreter.ScriptVerifyNone,
				})
				if err != nil {
					t.Fatalf("Failed to verify without P2SH : %s", err)
				}
			}
		})
	}
}

func Test_Unlock_NotEnoughSigners(t *testing.T) {
	ctx := logger.ContextWithLogger(context.Background(), true, false, "")

	keys, publicKeys := generateKeys(t, 3)
	otherKeys, _ := generateKeys(t, 1)

	multisigScript, err := CreateScript(2, publicKeys)
	if err != nil {
		t.Fatalf("Failed to create script : %s", err)
	}

	signers := []bitcoin.Key{keys[1], otherKeys[0]}
	unlocker := NewUnlocker(signers, dash_interpreter.SigHashAll)
	if unlocker.CanUnlock(multisigScript) {
		t.Fatalf("Unlocker should not unlock with one signer")
	}

	tx := newSpendingTx(t, multisigScript)
	if _, err := unlocker.Unlock(ctx, tx, 0); errors.Cause(err) != dash_interpreter.CantUnlock {
		t.Fatalf("Wrong error : got \"%v\", want \"%v\"", err, dash_interpreter.CantUnlock)
	}
}

func Test_Unlock_WrongRedeemScript(t *testing.T) {
	ctx := logger.ContextWithLogger(context.Background(), true, false, "")

	keys, publicKeys := generateKeys(t, 2)

	multisigScript, err := CreateScript(1, publicKeys)
	if err != nil {
		t.Fatalf("Failed to create script : %s", err)
	}

	otherScript, err := CreateScript(2, publicKeys)
	if err != nil {
		t.Fatalf("Failed to create script : %s", err)
	}

	lockingScript := script.NewPayToScriptHashScript(multisigScript)
	unlocker := NewP2SHUnlocker(keys, otherScript, dash_interpreter.SigHashAll)
	if unlocker.CanUnlock(lockingScript) {
		t.Fatalf("Unlocker should not unlock with wrong redeem script")
	}

	if _, err := unlocker.UnlockingSize(lockingScript); errors.Cause(err) !=
		dash_interpreter.ScriptNotMatching {
		t.Errorf("Wrong error : got \"%v\", want \"%v\"", err, dash_interpreter.ScriptNotMatching)
	}

	tx := newSpendingTx(t, lockingScript)
	if _, err := unlocker.Unlock(ctx, tx, 0); errors.Cause(err) != dash_interpreter.CantUnlock {
		t.Fatalf("Wrong error : got \"%v\", want \"%v\"", err, dash_interpreter.CantUnlock)
	}

	// Bare unlocker can't unlock P2SH.
	bare := NewUnlocker(keys, dash_interpreter.SigHashAll)
	if _, err := bare.Unlock(ctx, tx, 0); errors.Cause(err) != dash_interpreter.CantUnlock {
		t.Fatalf("Wrong error : got \"%v\", want \"%v\"", err, dash_interpreter.CantUnlock)
	}
}

func Test_MatchScript(t *testing.T) {
	_, publicKeys := generateKeys(t, 2)

	multisigScript, err := CreateScript(2, publicKeys)
	if err != nil {
		t.Fatalf("Failed to create script : %s", err)
	}

	if _, err := MatchScript(multisigScript.AppendOpCode(script.OP_DROP)); errors.Cause(err) !=
		dash_interpreter.RemainingScript {
		t.Errorf("Wrong error : got \"%v\", want \"%v\"", err, dash_interpreter.RemainingScript)
	}

	notMatching := []string{
		"2 CHECKMULTISIG",
		"0 0 CHECKMULTISIG",
		"1 0x03 0x010203 1 CHECKMULTISIG",
		"1 2 CHECKMULTISIG",
	}

	for _, text := range notMatching {
		lockingScript, err := script.ParseShortForm(text)
		if err != nil {
			t.Fatalf("Failed to parse script : %s", err)
		}

		if _, err := MatchScript(lockingScript); errors.Cause(err) !=
			dash_interpreter.ScriptNotMatching {
			t.Errorf("Wrong error for \"%s\" : got \"%v\", want \"%v\"", text, err,
				dash_interpreter.ScriptNotMatching)
		}
	}

	if size := UnlockingSize(2); size != 1+2*dash_interpreter.MaxSignaturesPushDataSize {
		t.Errorf("Wrong unlocking size : %d", size)
	}
}
