package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tokenized/config"
	"github.com/tokenized/dash_interpreter"
	"github.com/tokenized/dash_interpreter/script"
	"github.com/tokenized/logger"
	"github.com/tokenized/pkg/wire"

	"github.com/pkg/errors"
)

type Config struct {
	Flags   dash_interpreter.ScriptFlags `default:"STANDARD" envconfig:"FLAGS" json:"flags"`
	Workers int                          `default:"4" envconfig:"WORKERS" json:"workers"`
	Trace   bool                         `default:"false" envconfig:"TRACE" json:"trace"`
}

func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d", c.Workers)
	}

	return nil
}

func main() {
	ctx := logger.ContextWithLogger(context.Background(), true, false, "cli.log")

	cfg := &Config{}
	if err := config.LoadConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to load config : %s", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal(ctx, "Invalid config : %s", err)
	}

	maskedConfig, err := config.MarshalJSONMaskedRaw(cfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to marshal config : %s", err)
	}

	logger.InfoWithFields(ctx, []logger.Field{
		logger.JSON("config", maskedConfig),
	}, "Config")

	if len(os.Args) < 2 {
		logger.Fatal(ctx, "Not enough arguments. Need command (verify, eval, sighash)")
	}

	switch os.Args[1] {
	case "verify":
		if err := VerifyTx(ctx, cfg, os.Args[2:]); err != nil {
			logger.Fatal(ctx, "Failed to verify tx : %s", err)
		}

	case "eval":
		if err := EvalScript(ctx, cfg, os.Args[2:]); err != nil {
			logger.Fatal(ctx, "Failed to evaluate script : %s", err)
		}

	case "sighash":
		if err := SigHash(ctx, cfg, os.Args[2:]); err != nil {
			logger.Fatal(ctx, "Failed to calculate sig hash : %s", err)
		}

	default:
		logger.Fatal(ctx, "Unknown command : %s", os.Args[1])
	}
}

// VerifyTx verifies every input of a transaction. The spent outputs are provided in input order
// as value:locking_script_hex.
func VerifyTx(ctx context.Context, cfg *Config, args []string) error {
	if len(args) < 1 {
		return errors.New("Wrong argument count: verify [Tx Hex] [Value:Script Hex]...")
	}

	tx, err := parseTx(args[0])
	if err != nil {
		return errors.Wrap(err, "tx")
	}

	if len(args)-1 != len(tx.TxIn) {
		return fmt.Errorf("Wrong spent output count: got %d, want %d", len(args)-1,
			len(tx.TxIn))
	}

	verifyTx := dash_interpreter.NewTransaction(tx)
	for index, arg := range args[1:] {
		output, err := parseOutput(arg)
		if err != nil {
			return errors.Wrapf(err, "output %d", index)
		}

		verifyTx.AddSpentOutput(tx.TxIn[index].PreviousOutPoint, output)
	}

	verifyConfig := dash_interpreter.VerifyConfig{
		Flags:   cfg.Flags,
		Workers: cfg.Workers,
	}
	if cfg.Trace {
		verifyConfig.Tracer = dash_interpreter.NewLogTracer(ctx)
	}

	if err := dash_interpreter.VerifyTransaction(ctx, verifyTx, verifyConfig); err != nil {
		return err
	}

	fmt.Printf("Tx %s verified with flags %s\n", tx.TxHash(), cfg.Flags)
	return nil
}

// EvalScript evaluates script text without a transaction and prints the resulting stack.
func EvalScript(ctx context.Context, cfg *Config, args []string) error {
	if len(args) < 1 {
		return errors.New("Wrong argument count: eval [Script Text]")
	}

	s, err := script.ParseString(strings.Join(args, " "))
	if err != nil {
		return errors.Wrap(err, "parse script")
	}

	fmt.Printf("Script : %s\n", s)

	tracer := dash_interpreter.NewTraceRecorder()
	interpreter := dash_interpreter.NewInterpreter(dash_interpreter.InterpreterConfig{
		Flags:   cfg.Flags &^ dash_interpreter.ScriptVerifyCleanStack,
		Checker: &dash_interpreter.TestSignatureChecker{},
		Tracer:  tracer,
	})

	stack, evalErr := interpreter.Evaluate(ctx, s, nil)
	if cfg.Trace {
		for _, message := range tracer.Messages() {
			fmt.Printf("  %s\n", message)
		}
	}
	if evalErr != nil {
		return evalErr
	}

	fmt.Printf("Stack (%d items)\n", len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		fmt.Printf("  %x\n", stack[i])
	}

	return nil
}

// SigHash prints the digest signed by a signature of the input.
func SigHash(ctx context.Context, cfg *Config, args []string) error {
	if len(args) != 4 && len(args) != 5 {
		return errors.New("Wrong argument count: sighash [Tx Hex] [Input Index] [Script Hex] [Hash Type] [Value]")
	}

	tx, err := parseTx(args[0])
	if err != nil {
		return errors.Wrap(err, "tx")
	}

	index, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrap(err, "input index")
	}

	b, err := hex.DecodeString(args[2])
	if err != nil {
		return errors.Wrap(err, "script hex")
	}

	subscript, err := script.ParseScript(b)
	if err != nil {
		return errors.Wrap(err, "script")
	}

	hashType, err := dash_interpreter.SigHashTypeFromString(args[3])
	if err != nil {
		return errors.Wrap(err, "hash type")
	}

	var value uint64
	if len(args) == 5 {
		value, err = strconv.ParseUint(args[4], 10, 64)
		if err != nil {
			return errors.Wrap(err, "value")
		}
	}

	hash, err := dash_interpreter.InputSignatureHash(tx, index, subscript, value, hashType,
		cfg.Flags.Has(dash_interpreter.ScriptEnableSigHashForkID), nil)
	if err != nil {
		return err
	}

	fmt.Printf("Sig Hash : %x\n", hash[:])
	return nil
}

func parseTx(s string) (*wire.MsgTx, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "hex")
	}

	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(b)); err != nil {
		return nil, errors.Wrap(err, "deserialize")
	}

	return tx, nil
}

func parseOutput(s string) (*wire.TxOut, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil, errors.New("missing value separator")
	}

	value, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "value")
	}

	lockingScript, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, errors.Wrap(err, "script hex")
	}

	return wire.NewTxOut(value, lockingScript), nil
}
