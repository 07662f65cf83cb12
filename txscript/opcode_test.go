// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// requireStack ensures the stack holds the expected items, treating empty and
// nil items as equal.
func requireStack(t *testing.T, expected, got [][]byte, msgAndArgs ...interface{}) {
	t.Helper()

	require.Len(t, got, len(expected), msgAndArgs...)
	for i := range expected {
		require.True(t, bytes.Equal(expected[i], got[i]),
			"item %d: got %x want %x %v", i, got[i], expected[i],
			fmt.Sprint(msgAndArgs...))
	}
}

// TestOpcodeNames ensures every opcode name maps back to its opcode and that
// unassigned opcodes are named as unknown.
func TestOpcodeNames(t *testing.T) {
	t.Parallel()

	for i := 0; i < 256; i++ {
		op := &opcodeArray[i]
		require.Equal(t, byte(i), op.value)
		require.Equal(t, byte(i), OpcodeByName[op.name], op.name)
		require.NotNil(t, op.opfunc, op.name)
	}

	aliases := map[string]byte{
		"OP_FALSE": OP_0,
		"OP_TRUE":  OP_1,
		"OP_NOP2":  OP_CHECKLOCKTIMEVERIFY,
		"OP_NOP3":  OP_CHECKSEQUENCEVERIFY,
	}
	for name, value := range aliases {
		require.Equal(t, value, OpcodeByName[name], name)
	}

	require.Equal(t, "OP_UNKNOWN186", opcodeArray[OP_UNKNOWN186].name)
	require.Equal(t, "OP_DATA_20", opcodeArray[OP_DATA_20].name)
	require.Equal(t, "OP_16", opcodeArray[OP_16].name)
	require.Equal(t, 21, opcodeArray[OP_DATA_20].length)
	require.Equal(t, -2, opcodeArray[OP_PUSHDATA2].length)
}

// TestOpcodeClasses ensures the disabled, always illegal and conditional
// opcode sets are as expected.
func TestOpcodeClasses(t *testing.T) {
	t.Parallel()

	disabled := []byte{OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT, OP_INVERT,
		OP_AND, OP_OR, OP_XOR, OP_2MUL, OP_2DIV, OP_MUL, OP_DIV, OP_MOD,
		OP_LSHIFT, OP_RSHIFT}
	conditional := []byte{OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF}

	for i := 0; i < 256; i++ {
		op := &opcodeArray[i]
		require.Equal(t, bytes.IndexByte(disabled, byte(i)) >= 0,
			op.isDisabled(), op.name)
		require.Equal(t, bytes.IndexByte(conditional, byte(i)) >= 0,
			op.isConditional(), op.name)
		require.Equal(t, i == OP_VERIF || i == OP_VERNOTIF,
			op.alwaysIllegal(), op.name)
	}
}

// TestStackOpcodes ensures the stack manipulation, arithmetic, and comparison
// opcodes transform the stack as expected.
func TestStackOpcodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		script  []byte
		stack   [][]byte
		wantErr error
	}{
		{"dup", []byte{OP_1, OP_DUP}, [][]byte{{1}, {1}}, nil},
		{"2dup", []byte{OP_1, OP_2, OP_2DUP},
			[][]byte{{1}, {2}, {1}, {2}}, nil},
		{"3dup", []byte{OP_1, OP_2, OP_3, OP_3DUP},
			[][]byte{{1}, {2}, {3}, {1}, {2}, {3}}, nil},
		{"drop", []byte{OP_1, OP_2, OP_DROP}, [][]byte{{1}}, nil},
		{"2drop", []byte{OP_1, OP_2, OP_3, OP_2DROP}, [][]byte{{1}}, nil},
		{"nip", []byte{OP_1, OP_2, OP_NIP}, [][]byte{{2}}, nil},
		{"over", []byte{OP_1, OP_2, OP_OVER},
			[][]byte{{1}, {2}, {1}}, nil},
		{"2over", []byte{OP_1, OP_2, OP_3, OP_4, OP_2OVER},
			[][]byte{{1}, {2}, {3}, {4}, {1}, {2}}, nil},
		{"pick", []byte{OP_1, OP_2, OP_3, OP_2, OP_PICK},
			[][]byte{{1}, {2}, {3}, {1}}, nil},
		{"roll", []byte{OP_1, OP_2, OP_3, OP_2, OP_ROLL},
			[][]byte{{2}, {3}, {1}}, nil},
		{"pick out of range", []byte{OP_1, OP_5, OP_PICK}, nil,
			ErrInvalidStackOperation},
		{"rot", []byte{OP_1, OP_2, OP_3, OP_ROT},
			[][]byte{{2}, {3}, {1}}, nil},
		{"swap", []byte{OP_1, OP_2, OP_SWAP}, [][]byte{{2}, {1}}, nil},
		{"2swap", []byte{OP_1, OP_2, OP_3, OP_4, OP_2SWAP},
			[][]byte{{3}, {4}, {1}, {2}}, nil},
		{"tuck", []byte{OP_1, OP_2, OP_TUCK},
			[][]byte{{2}, {1}, {2}}, nil},
		{"ifdup true", []byte{OP_1, OP_IFDUP}, [][]byte{{1}, {1}}, nil},
		{"ifdup false", []byte{OP_0, OP_IFDUP}, [][]byte{nil}, nil},
		{"depth", []byte{OP_1, OP_1, OP_DEPTH},
			[][]byte{{1}, {1}, {2}}, nil},
		{"size", []byte{OP_DATA_3, 1, 2, 3, OP_SIZE},
			[][]byte{{1, 2, 3}, {3}}, nil},
		{"1add", []byte{OP_1, OP_1ADD}, [][]byte{{2}}, nil},
		{"1sub", []byte{OP_1, OP_1SUB}, [][]byte{nil}, nil},
		{"negate", []byte{OP_5, OP_NEGATE}, [][]byte{{0x85}}, nil},
		{"abs", []byte{OP_1NEGATE, OP_ABS}, [][]byte{{1}}, nil},
		{"not", []byte{OP_0, OP_NOT}, [][]byte{{1}}, nil},
		{"0notequal", []byte{OP_7, OP_0NOTEQUAL}, [][]byte{{1}}, nil},
		{"sub", []byte{OP_2, OP_5, OP_SUB}, [][]byte{{0x83}}, nil},
		{"booland", []byte{OP_1, OP_0, OP_BOOLAND}, [][]byte{nil}, nil},
		{"boolor", []byte{OP_1, OP_0, OP_BOOLOR}, [][]byte{{1}}, nil},
		{"numequal", []byte{OP_3, OP_3, OP_NUMEQUAL}, [][]byte{{1}}, nil},
		{"numnotequal", []byte{OP_3, OP_3, OP_NUMNOTEQUAL},
			[][]byte{nil}, nil},
		{"lessthan", []byte{OP_2, OP_3, OP_LESSTHAN}, [][]byte{{1}}, nil},
		{"greaterthanorequal", []byte{OP_2, OP_3, OP_GREATERTHANOREQUAL},
			[][]byte{nil}, nil},
		{"min", []byte{OP_2, OP_3, OP_MIN}, [][]byte{{2}}, nil},
		{"max", []byte{OP_2, OP_3, OP_MAX}, [][]byte{{3}}, nil},
		{"equal", []byte{OP_DATA_1, 2, OP_2, OP_EQUAL}, [][]byte{{1}}, nil},
		{"numeric operand too long",
			[]byte{OP_DATA_5, 1, 2, 3, 4, 5, OP_1ADD}, nil,
			ErrNumberTooBig},
		{"altstack underflow", []byte{OP_FROMALTSTACK}, nil,
			ErrInvalidStackOperation},
	}

	for _, test := range tests {
		vm, err := runScript(t, test.script, 0, nil)
		if test.wantErr != nil {
			require.ErrorIs(t, err, test.wantErr, test.name)
			continue
		}
		require.NoError(t, err, test.name)
		requireStack(t, test.stack, vm.GetStack(), test.name)
	}
}

// TestCodeSeparator ensures only the script after the last executed
// OP_CODESEPARATOR is signed.
func TestCodeSeparator(t *testing.T) {
	t.Parallel()

	pubKey := testPubKeys(t, 1)[0]
	sig := fakeSig(3, SigHashAll)
	raw := NewScript().WriteBytes(sig).WriteOp(OP_NOP).
		WriteOp(OP_CODESEPARATOR).WriteBytes(pubKey).
		WriteOp(OP_CHECKSIG).Bytes()

	var subScript *Script
	checker := SignatureCheckerFunc(func(_ context.Context,
		req *SigCheckRequest) (bool, error) {

		subScript = req.SubScript
		return true, nil
	})
	_, err := runScript(t, raw, 0, checker)
	require.NoError(t, err)

	want := NewScript().WriteBytes(pubKey).WriteOp(OP_CHECKSIG)
	require.True(t, want.Equal(subScript), "got %v", subScript)
}

// TestDisasmPCFormats ensures the program counter disassembly includes the
// push lengths of the OP_PUSHDATA opcodes.
func TestDisasmPCFormats(t *testing.T) {
	t.Parallel()

	raw := []byte{OP_PUSHDATA1, 0x02, 0xab, 0xcd, OP_DATA_1, 0x07, OP_NOP}
	vm, err := NewEngine(mustParseScript(t, raw), nil, 0, 0)
	require.NoError(t, err)

	var lines []string
	for vm.State() != ExecDone {
		dis, err := vm.DisasmPC()
		require.NoError(t, err)
		lines = append(lines, dis)
		_, err = vm.Step()
		require.NoError(t, err)
	}

	require.Equal(t, "0000: OP_PUSHDATA1 0x02 0xabcd\n"+
		"0001: OP_DATA_1 0x07\n0002: OP_NOP", strings.Join(lines, "\n"))
}
