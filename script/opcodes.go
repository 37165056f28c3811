package script

import (
	"fmt"

	"github.com/tokenized/pkg/bitcoin"
)

// Op codes are taken from the bitcoin package where it names the same slot. The rest are legacy
// slots it doesn't name or names differently.
const (
	OP_0         = byte(bitcoin.OP_0)
	OP_FALSE     = OP_0
	OP_PUSHDATA1 = byte(bitcoin.OP_PUSH_DATA_1)
	OP_PUSHDATA2 = byte(bitcoin.OP_PUSH_DATA_2)
	OP_PUSHDATA4 = byte(0x4e)
	OP_1NEGATE   = byte(bitcoin.OP_1NEGATE)
	OP_RESERVED  = byte(0x50)
	OP_1         = byte(bitcoin.OP_1)
	OP_TRUE      = OP_1
	OP_2         = byte(bitcoin.OP_2)
	OP_3         = byte(bitcoin.OP_3)
	OP_4         = byte(bitcoin.OP_4)
	OP_5         = byte(bitcoin.OP_5)
	OP_6         = byte(bitcoin.OP_6)
	OP_7         = byte(bitcoin.OP_7)
	OP_8         = byte(bitcoin.OP_8)
	OP_9         = byte(bitcoin.OP_9)
	OP_10        = byte(bitcoin.OP_10)
	OP_11        = byte(bitcoin.OP_11)
	OP_12        = byte(bitcoin.OP_12)
	OP_13        = byte(bitcoin.OP_13)
	OP_14        = byte(bitcoin.OP_14)
	OP_15        = byte(bitcoin.OP_15)
	OP_16        = byte(bitcoin.OP_16)

	// Flow control
	OP_NOP      = byte(bitcoin.OP_NOP)
	OP_VER      = byte(bitcoin.OP_VER)
	OP_IF       = byte(bitcoin.OP_IF)
	OP_NOTIF    = byte(bitcoin.OP_NOTIF)
	OP_VERIF    = byte(bitcoin.OP_VERIF)
	OP_VERNOTIF = byte(bitcoin.OP_VERNOTIF)
	OP_ELSE     = byte(bitcoin.OP_ELSE)
	OP_ENDIF    = byte(bitcoin.OP_ENDIF)
	OP_VERIFY   = byte(bitcoin.OP_VERIFY)
	OP_RETURN   = byte(bitcoin.OP_RETURN)

	// Stack
	OP_TOALTSTACK   = byte(bitcoin.OP_TOALTSTACK)
	OP_FROMALTSTACK = byte(bitcoin.OP_FROMALTSTACK)
	OP_2DROP        = byte(bitcoin.OP_2DROP)
	OP_2DUP         = byte(bitcoin.OP_2DUP)
	OP_3DUP         = byte(bitcoin.OP_3DUP)
	OP_2OVER        = byte(bitcoin.OP_2OVER)
	OP_2ROT         = byte(bitcoin.OP_2ROT)
	OP_2SWAP        = byte(bitcoin.OP_2SWAP)
	OP_IFDUP        = byte(bitcoin.OP_IFDUP)
	OP_DEPTH        = byte(bitcoin.OP_DEPTH)
	OP_DROP         = byte(bitcoin.OP_DROP)
	OP_DUP          = byte(bitcoin.OP_DUP)
	OP_NIP          = byte(bitcoin.OP_NIP)
	OP_OVER         = byte(bitcoin.OP_OVER)
	OP_PICK         = byte(bitcoin.OP_PICK)
	OP_ROLL         = byte(bitcoin.OP_ROLL)
	OP_ROT          = byte(bitcoin.OP_ROT)
	OP_SWAP         = byte(bitcoin.OP_SWAP)
	OP_TUCK         = byte(bitcoin.OP_TUCK)

	// Splice
	OP_CAT    = byte(bitcoin.OP_CAT)
	OP_SUBSTR = byte(0x7f)
	OP_LEFT   = byte(0x80)
	OP_RIGHT  = byte(0x81)
	OP_SIZE   = byte(bitcoin.OP_SIZE)

	// Bitwise logic
	OP_INVERT      = byte(bitcoin.OP_INVERT)
	OP_AND         = byte(bitcoin.OP_AND)
	OP_OR          = byte(bitcoin.OP_OR)
	OP_XOR         = byte(bitcoin.OP_XOR)
	OP_EQUAL       = byte(bitcoin.OP_EQUAL)
	OP_EQUALVERIFY = byte(bitcoin.OP_EQUALVERIFY)
	OP_RESERVED1   = byte(0x89)
	OP_RESERVED2   = byte(0x8a)

	// Numeric
	OP_1ADD               = byte(bitcoin.OP_1ADD)
	OP_1SUB               = byte(0x8c)
	OP_2MUL               = byte(bitcoin.OP_2MUL)
	OP_2DIV               = byte(bitcoin.OP_2DIV)
	OP_NEGATE             = byte(bitcoin.OP_NEGATE)
	OP_ABS                = byte(bitcoin.OP_ABS)
	OP_NOT                = byte(bitcoin.OP_NOT)
	OP_0NOTEQUAL          = byte(bitcoin.OP_0NOTEQUAL)
	OP_ADD                = byte(bitcoin.OP_ADD)
	OP_SUB                = byte(bitcoin.OP_SUB)
	OP_MUL                = byte(bitcoin.OP_MUL)
	OP_DIV                = byte(bitcoin.OP_DIV)
	OP_MOD                = byte(bitcoin.OP_MOD)
	OP_LSHIFT             = byte(bitcoin.OP_LSHIFT)
	OP_RSHIFT             = byte(bitcoin.OP_RSHIFT)
	OP_BOOLAND            = byte(bitcoin.OP_BOOLAND)
	OP_BOOLOR             = byte(bitcoin.OP_BOOLOR)
	OP_NUMEQUAL           = byte(bitcoin.OP_NUMEQUAL)
	OP_NUMEQUALVERIFY     = byte(bitcoin.OP_NUMEQUALVERIFY)
	OP_NUMNOTEQUAL        = byte(bitcoin.OP_NUMNOTEQUAL)
	OP_LESSTHAN           = byte(bitcoin.OP_LESSTHAN)
	OP_GREATERTHAN        = byte(bitcoin.OP_GREATERTHAN)
	OP_LESSTHANOREQUAL    = byte(bitcoin.OP_LESSTHANOREQUAL)
	OP_GREATERTHANOREQUAL = byte(bitcoin.OP_GREATERTHANOREQUAL)
	OP_MIN                = byte(bitcoin.OP_MIN)
	OP_MAX                = byte(bitcoin.OP_MAX)
	OP_WITHIN             = byte(bitcoin.OP_WITHIN)

	// Crypto
	OP_RIPEMD160           = byte(bitcoin.OP_RIPEMD160)
	OP_SHA1                = byte(bitcoin.OP_SHA1)
	OP_SHA256              = byte(bitcoin.OP_SHA256)
	OP_HASH160             = byte(bitcoin.OP_HASH160)
	OP_HASH256             = byte(bitcoin.OP_HASH256)
	OP_CODESEPARATOR       = byte(bitcoin.OP_CODESEPARATOR)
	OP_CHECKSIG            = byte(bitcoin.OP_CHECKSIG)
	OP_CHECKSIGVERIFY      = byte(bitcoin.OP_CHECKSIGVERIFY)
	OP_CHECKMULTISIG       = byte(bitcoin.OP_CHECKMULTISIG)
	OP_CHECKMULTISIGVERIFY = byte(bitcoin.OP_CHECKMULTISIGVERIFY)

	// Expansion
	OP_NOP1                = byte(bitcoin.OP_NOP1)
	OP_NOP2                = byte(bitcoin.OP_NOP2)
	OP_CHECKLOCKTIMEVERIFY = OP_NOP2
	OP_NOP3                = byte(bitcoin.OP_NOP3)
	OP_NOP4                = byte(bitcoin.OP_NOP4)
	OP_NOP5                = byte(bitcoin.OP_NOP5)
	OP_NOP6                = byte(bitcoin.OP_NOP6)
	OP_NOP7                = byte(bitcoin.OP_NOP7)
	OP_NOP8                = byte(bitcoin.OP_NOP8)
	OP_NOP9                = byte(bitcoin.OP_NOP9)
	OP_NOP10               = byte(bitcoin.OP_NOP10)

	OP_INVALIDOPCODE = byte(0xff)
)

var (
	opCodeNames [256]string

	// OpCodeByName maps op code names, including aliases like OP_TRUE and OP_NOP2, to op codes.
	OpCodeByName = make(map[string]byte)
)

func init() {
	names := map[byte]string{
		OP_0:                   "OP_0",
		OP_PUSHDATA1:           "OP_PUSHDATA1",
		OP_PUSHDATA2:           "OP_PUSHDATA2",
		OP_PUSHDATA4:           "OP_PUSHDATA4",
		OP_1NEGATE:             "OP_1NEGATE",
		OP_RESERVED:            "OP_RESERVED",
		OP_NOP:                 "OP_NOP",
		OP_VER:                 "OP_VER",
		OP_IF:                  "OP_IF",
		OP_NOTIF:               "OP_NOTIF",
		OP_VERIF:               "OP_VERIF",
		OP_VERNOTIF:            "OP_VERNOTIF",
		OP_ELSE:                "OP_ELSE",
		OP_ENDIF:               "OP_ENDIF",
		OP_VERIFY:              "OP_VERIFY",
		OP_RETURN:              "OP_RETURN",
		OP_TOALTSTACK:          "OP_TOALTSTACK",
		OP_FROMALTSTACK:        "OP_FROMALTSTACK",
		OP_2DROP:               "OP_2DROP",
		OP_2DUP:                "OP_2DUP",
		OP_3DUP:                "OP_3DUP",
		OP_2OVER:               "OP_2OVER",
		OP_2ROT:                "OP_2ROT",
		OP_2SWAP:               "OP_2SWAP",
		OP_IFDUP:               "OP_IFDUP",
		OP_DEPTH:               "OP_DEPTH",
		OP_DROP:                "OP_DROP",
		OP_DUP:                 "OP_DUP",
		OP_NIP:                 "OP_NIP",
		OP_OVER:                "OP_OVER",
		OP_PICK:                "OP_PICK",
		OP_ROLL:                "OP_ROLL",
		OP_ROT:                 "OP_ROT",
		OP_SWAP:                "OP_SWAP",
		OP_TUCK:                "OP_TUCK",
		OP_CAT:                 "OP_CAT",
		OP_SUBSTR:              "OP_SUBSTR",
		OP_LEFT:                "OP_LEFT",
		OP_RIGHT:               "OP_RIGHT",
		OP_SIZE:                "OP_SIZE",
		OP_INVERT:              "OP_INVERT",
		OP_AND:                 "OP_AND",
		OP_OR:                  "OP_OR",
		OP_XOR:                 "OP_XOR",
		OP_EQUAL:               "OP_EQUAL",
		OP_EQUALVERIFY:         "OP_EQUALVERIFY",
		OP_RESERVED1:           "OP_RESERVED1",
		OP_RESERVED2:           "OP_RESERVED2",
		OP_1ADD:                "OP_1ADD",
		OP_1SUB:                "OP_1SUB",
		OP_2MUL:                "OP_2MUL",
		OP_2DIV:                "OP_2DIV",
		OP_NEGATE:              "OP_NEGATE",
		OP_ABS:                 "OP_ABS",
		OP_NOT:                 "OP_NOT",
		OP_0NOTEQUAL:           "OP_0NOTEQUAL",
		OP_ADD:                 "OP_ADD",
		OP_SUB:                 "OP_SUB",
		OP_MUL:                 "OP_MUL",
		OP_DIV:                 "OP_DIV",
		OP_MOD:                 "OP_MOD",
		OP_LSHIFT:              "OP_LSHIFT",
		OP_RSHIFT:              "OP_RSHIFT",
		OP_BOOLAND:             "OP_BOOLAND",
		OP_BOOLOR:              "OP_BOOLOR",
		OP_NUMEQUAL:            "OP_NUMEQUAL",
		OP_NUMEQUALVERIFY:      "OP_NUMEQUALVERIFY",
		OP_NUMNOTEQUAL:         "OP_NUMNOTEQUAL",
		OP_LESSTHAN:            "OP_LESSTHAN",
		OP_GREATERTHAN:         "OP_GREATERTHAN",
		OP_LESSTHANOREQUAL:     "OP_LESSTHANOREQUAL",
		OP_GREATERTHANOREQUAL:  "OP_GREATERTHANOREQUAL",
		OP_MIN:                 "OP_MIN",
		OP_MAX:                 "OP_MAX",
		OP_WITHIN:              "OP_WITHIN",
		OP_RIPEMD160:           "OP_RIPEMD160",
		OP_SHA1:                "OP_SHA1",
		OP_SHA256:              "OP_SHA256",
		OP_HASH160:             "OP_HASH160",
		OP_HASH256:             "OP_HASH256",
		OP_CODESEPARATOR:       "OP_CODESEPARATOR",
		OP_CHECKSIG:            "OP_CHECKSIG",
		OP_CHECKSIGVERIFY:      "OP_CHECKSIGVERIFY",
		OP_CHECKMULTISIG:       "OP_CHECKMULTISIG",
		OP_CHECKMULTISIGVERIFY: "OP_CHECKMULTISIGVERIFY",
		OP_NOP1:                "OP_NOP1",
		OP_CHECKLOCKTIMEVERIFY: "OP_CHECKLOCKTIMEVERIFY",
		OP_NOP3:                "OP_NOP3",
		OP_NOP4:                "OP_NOP4",
		OP_NOP5:                "OP_NOP5",
		OP_NOP6:                "OP_NOP6",
		OP_NOP7:                "OP_NOP7",
		OP_NOP8:                "OP_NOP8",
		OP_NOP9:                "OP_NOP9",
		OP_NOP10:               "OP_NOP10",
		OP_INVALIDOPCODE:       "OP_INVALIDOPCODE",
	}

	for i := OP_1; i <= OP_16; i++ {
		names[i] = fmt.Sprintf("OP_%d", i-OP_1+1)
	}

	for i := 0; i < 256; i++ {
		name, exists := names[byte(i)]
		if !exists {
			if byte(i) > OP_0 && byte(i) < OP_PUSHDATA1 {
				name = fmt.Sprintf("OP_DATA_%d", i)
			} else {
				name = fmt.Sprintf("OP_UNKNOWN%d", i)
			}
		}

		opCodeNames[i] = name
		OpCodeByName[name] = byte(i)
	}

	OpCodeByName["OP_FALSE"] = OP_FALSE
	OpCodeByName["OP_TRUE"] = OP_TRUE
	OpCodeByName["OP_NOP2"] = OP_NOP2
}

// OpCodeName returns the display name of an op code.
func OpCodeName(opCode byte) string {
	return opCodeNames[opCode]
}

// IsSmallInteger returns true for OP_0 and OP_1 through OP_16.
func IsSmallInteger(opCode byte) bool {
	return opCode == OP_0 || (opCode >= OP_1 && opCode <= OP_16)
}

// SmallIntegerValue returns the value pushed by OP_0 or OP_1 through OP_16.
func SmallIntegerValue(opCode byte) int {
	if opCode == OP_0 {
		return 0
	}

	return int(opCode-OP_1) + 1
}

// SmallIntegerOpCode returns the op code that pushes the value. The value must be in [0, 16].
func SmallIntegerOpCode(value int) byte {
	if value == 0 {
		return OP_0
	}

	return OP_1 + byte(value) - 1
}
