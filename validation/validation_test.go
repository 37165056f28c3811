package validation

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/pkg/wire"
)

func newTestTx(t *testing.T) *wire.MsgTx {
	previousTxHash, err := bitcoin.NewHash32FromStr("79436eeaa792ea39bbda15d2061f836023014b6bf6384c692561152e04d22dd1")
	if err != nil {
		t.Fatalf("Failed to parse hash : %s", err)
	}

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(previousTxHash, 0), nil))
	tx.AddTxOut(wire.NewTxOut(10000, []byte{0x51}))
	return tx
}

func Test_CheckTransaction(t *testing.T) {
	tests := []struct {
		name   string
		modify func(tx *wire.MsgTx)
		reason string
	}{
		{
			name:   "valid",
			modify: func(tx *wire.MsgTx) {},
		},
		{
			name: "no inputs",
			modify: func(tx *wire.MsgTx) {
				tx.TxIn = nil
			},
			reason: ReasonInputsEmpty,
		},
		{
			name: "no outputs",
			modify: func(tx *wire.MsgTx) {
				tx.TxOut = nil
			},
			reason: ReasonOutputsEmpty,
		},
		{
			name: "negative output",
			modify: func(tx *wire.MsgTx) {
				tx.TxOut[0].Value = 0xffffffffffffffff
			},
			reason: ReasonOutputNegative,
		},
		{
			name: "output too large",
			modify: func(tx *wire.MsgTx) {
				tx.TxOut[0].Value = MaxMoney + 1
			},
			reason: ReasonOutputTooLarge,
		},
		{
			name: "max output",
			modify: func(tx *wire.MsgTx) {
				tx.TxOut[0].Value = MaxMoney
			},
		},
		{
			name: "total too large",
			modify: func(tx *wire.MsgTx) {
				tx.TxOut[0].Value = MaxMoney
				tx.AddTxOut(wire.NewTxOut(1, nil))
			},
			reason: ReasonOutputTotalTooLarge,
		},
		{
			name: "duplicate inputs",
			modify: func(tx *wire.MsgTx) {
				outpoint := tx.TxIn[0].PreviousOutPoint
				tx.AddTxIn(wire.NewTxIn(&outpoint, nil))
			},
			reason: ReasonDuplicateInputs,
		},
		{
			name: "same tx different index",
			modify: func(tx *wire.MsgTx) {
				outpoint := tx.TxIn[0].PreviousOutPoint
				outpoint.Index = 1
				tx.AddTxIn(wire.NewTxIn(&outpoint, nil))
			},
		},
		{
			name: "null prevout",
			modify: func(tx *wire.MsgTx) {
				tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&bitcoin.Hash32{}, NullOutPointIndex),
					nil))
			},
			reason: ReasonNullPrevOut,
		},
		{
			name: "oversize",
			modify: func(tx *wire.MsgTx) {
				tx.TxOut[0].LockingScript = make([]byte, MaxBlockSize)
			},
			reason: ReasonOversize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newTestTx(t)
			tt.modify(tx)

			state := &ValidationState{}
			result := CheckTransaction(tx, state)

			if len(tt.reason) == 0 {
				if !result || !state.IsValid() {
					t.Fatalf("Transaction should be valid : %s", state)
				}
				return
			}

			if result || state.IsValid() {
				t.Fatalf("Transaction should be invalid")
			}

			if !state.IsInvalid() {
				t.Errorf("State should be invalid : %s", state)
			}

			if state.RejectReason() != tt.reason {
				t.Errorf("Wrong reason : got %s, want %s", state.RejectReason(), tt.reason)
			}

			if state.RejectCode() != RejectInvalid {
				t.Errorf("Wrong reject code : got %s, want %s", state.RejectCode(),
					RejectInvalid)
			}

			t.Logf("Rejected : %s", state)
		})
	}
}

func Test_CheckTransaction_Coinbase(t *testing.T) {
	for _, size := range []int{0, 1, 2, 100, 101} {
		tx := wire.NewMsgTx(1)
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&bitcoin.Hash32{}, NullOutPointIndex),
			make([]byte, size)))
		tx.AddTxOut(wire.NewTxOut(50*Coin, []byte{0x51}))

		if !IsCoinBase(tx) {
			t.Fatalf("Should be coinbase")
		}

		state := &ValidationState{}
		result := CheckTransaction(tx, state)
		valid := size >= MinCoinbaseScriptSize && size <= MaxCoinbaseScriptSize

		if result != valid {
			t.Errorf("Wrong result for %d byte coinbase script : got %t, want %t", size, result,
				valid)
		}

		if !valid && state.RejectReason() != ReasonCoinbaseLength {
			t.Errorf("Wrong reason : got %s, want %s", state.RejectReason(), ReasonCoinbaseLength)
		}
	}
}

func Test_CheckTransaction_Deserialized(t *testing.T) {
	// Coinbase with a 20 byte script.
	txBytes, _ := hex.DecodeString("01000000010000000000000000000000000000000000000000000000000000000000000000ffffffff14033a0b060f2f4d696e656420627920746573742fffffffff0100f2052a010000001976a914450c22770eebb00d376edabe7bb548aa64aa235688ac00000000")

	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		t.Fatalf("Failed to decode tx : %s", err)
	}

	if !IsCoinBase(tx) {
		t.Fatalf("Should be coinbase")
	}

	state := &ValidationState{}
	if !CheckTransaction(tx, state) {
		t.Fatalf("Coinbase should be valid : %s", state)
	}

	// Empty transaction
	txBytes, _ = hex.DecodeString("01000000000000000000")
	tx = &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		t.Fatalf("Failed to decode tx : %s", err)
	}

	state = &ValidationState{}
	if CheckTransaction(tx, state) {
		t.Fatalf("Empty transaction should be invalid")
	}

	if state.RejectReason() != ReasonInputsEmpty {
		t.Errorf("Wrong reason : got %s, want %s", state.RejectReason(), ReasonInputsEmpty)
	}
}

func Test_ValidationState(t *testing.T) {
	state := &ValidationState{}
	if !state.IsValid() || state.IsInvalid() || state.IsError() {
		t.Fatalf("Zero state should be valid")
	}

	if state.DoS(10, true, RejectInvalid, "first") != true {
		t.Errorf("DoS should return ret")
	}
	state.DoS(5, false, RejectNonstandard, "second")

	if state.DoSLevel() != 15 {
		t.Errorf("Wrong DoS level : got %d, want 15", state.DoSLevel())
	}
	if state.RejectReason() != "second" || state.RejectCode() != RejectNonstandard {
		t.Errorf("Wrong reject : %s", state)
	}

	state.Error("internal")
	if !state.IsError() {
		t.Errorf("State should be error")
	}
	if state.RejectReason() != "second" {
		t.Errorf("Error should keep invalid reason : %s", state.RejectReason())
	}
}
