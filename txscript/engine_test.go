// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// mustParseScript parses the raw script or fails the test.
func mustParseScript(t *testing.T, raw []byte) *Script {
	t.Helper()

	script, err := ParseScript(raw)
	require.NoError(t, err)
	return script
}

// runScript executes the raw script without a transaction and returns the
// finished engine along with the error returned by Execute.
func runScript(t *testing.T, raw []byte, flags ScriptFlags,
	checker SignatureChecker) (*Engine, error) {

	t.Helper()

	vm, err := NewEngine(mustParseScript(t, raw), nil, 0, flags)
	require.NoError(t, err)
	return vm, vm.Execute(context.Background(), checker)
}

// TestBoolCast ensures byte arrays are interpreted as booleans the way the
// consensus rules require, including negative zero.
func TestBoolCast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data     []byte
		expected bool
	}{
		{nil, false},
		{[]byte{0x00}, false},
		{[]byte{0x00, 0x00, 0x00}, false},
		{[]byte{0x80}, false},
		{[]byte{0x00, 0x80}, false},
		{[]byte{0x80, 0x00}, true},
		{[]byte{0x01}, true},
		{[]byte{0x00, 0x01}, true},
		{[]byte{0x81}, true},
		{[]byte{0x00, 0x00, 0x80, 0x00}, true},
	}

	for i, test := range tests {
		require.Equal(t, test.expected, asBool(test.data), "test #%d %x",
			i, test.data)
	}

	require.Equal(t, []byte{1}, fromBool(true))
	require.Empty(t, fromBool(false))
}

// TestExecuteScripts runs scripts without signature operations to completion
// and checks the resulting stack or the error they fail with.
func TestExecuteScripts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		script  []byte
		flags   ScriptFlags
		stack   [][]byte
		wantErr error
	}{{
		name:   "add",
		script: []byte{OP_2, OP_3, OP_ADD},
		stack:  [][]byte{{0x05}},
	}, {
		name:    "add underflow",
		script:  []byte{OP_1, OP_ADD},
		wantErr: ErrInvalidStackOperation,
	}, {
		name:   "if true branch",
		script: []byte{OP_1, OP_IF, OP_2, OP_ELSE, OP_3, OP_ENDIF},
		stack:  [][]byte{{0x02}},
	}, {
		name:   "if false branch",
		script: []byte{OP_0, OP_IF, OP_2, OP_ELSE, OP_3, OP_ENDIF},
		stack:  [][]byte{{0x03}},
	}, {
		name:   "notif",
		script: []byte{OP_0, OP_NOTIF, OP_4, OP_ENDIF},
		stack:  [][]byte{{0x04}},
	}, {
		name: "nested conditionals",
		script: []byte{OP_1, OP_0, OP_IF, OP_1, OP_IF, OP_5, OP_ENDIF,
			OP_ELSE, OP_6, OP_ENDIF},
		stack: [][]byte{{0x06}},
	}, {
		name:    "unterminated if",
		script:  []byte{OP_1, OP_IF, OP_1},
		wantErr: ErrUnbalancedConditional,
	}, {
		name:    "endif without if",
		script:  []byte{OP_1, OP_ENDIF},
		wantErr: ErrUnbalancedConditional,
	}, {
		name:    "else without if",
		script:  []byte{OP_1, OP_ELSE},
		wantErr: ErrUnbalancedConditional,
	}, {
		name:    "if on empty stack",
		script:  []byte{OP_IF, OP_ENDIF},
		wantErr: ErrInvalidStackOperation,
	}, {
		name:    "op_return",
		script:  []byte{OP_1, OP_RETURN},
		wantErr: ErrEarlyReturn,
	}, {
		name:   "op_return in unexecuted branch",
		script: []byte{OP_0, OP_IF, OP_RETURN, OP_ENDIF, OP_1},
		stack:  [][]byte{{0x01}},
	}, {
		name:    "disabled opcode",
		script:  []byte{OP_1, OP_1, OP_CAT},
		wantErr: ErrDisabledOpcode,
	}, {
		name:    "disabled opcode in unexecuted branch",
		script:  []byte{OP_0, OP_IF, OP_MUL, OP_ENDIF, OP_1},
		wantErr: ErrDisabledOpcode,
	}, {
		name:    "verif in unexecuted branch",
		script:  []byte{OP_0, OP_IF, OP_VERIF, OP_ENDIF, OP_1},
		wantErr: ErrReservedOpcode,
	}, {
		name:   "unknown opcode in unexecuted branch",
		script: []byte{OP_0, OP_IF, OP_UNKNOWN186, OP_ENDIF, OP_1},
		stack:  [][]byte{{0x01}},
	}, {
		name:    "unknown opcode",
		script:  []byte{OP_1, OP_UNKNOWN186},
		wantErr: ErrReservedOpcode,
	}, {
		name:    "reserved opcode",
		script:  []byte{OP_1, OP_RESERVED},
		wantErr: ErrReservedOpcode,
	}, {
		name:    "verify false",
		script:  []byte{OP_0, OP_VERIFY},
		wantErr: ErrVerify,
	}, {
		name:    "equalverify mismatch",
		script:  []byte{OP_1, OP_2, OP_EQUALVERIFY},
		wantErr: ErrEqualVerify,
	}, {
		name:   "alt stack round trip",
		script: []byte{OP_7, OP_TOALTSTACK, OP_8, OP_FROMALTSTACK},
		stack:  [][]byte{{0x08}, {0x07}},
	}, {
		name:   "within",
		script: []byte{OP_3, OP_2, OP_5, OP_WITHIN},
		stack:  [][]byte{{0x01}},
	}, {
		name:   "non-minimal push allowed",
		script: []byte{OP_DATA_1, 0x05},
		stack:  [][]byte{{0x05}},
	}, {
		name:    "non-minimal push with minimal data",
		script:  []byte{OP_DATA_1, 0x05},
		flags:   ScriptVerifyMinimalData,
		wantErr: ErrMinimalData,
	}, {
		name:    "upgradable nop discouraged",
		script:  []byte{OP_NOP5, OP_1},
		flags:   ScriptDiscourageUpgradableNops,
		wantErr: ErrDiscourageUpgradableNOPs,
	}, {
		name:   "upgradable nop",
		script: []byte{OP_NOP5, OP_1},
		stack:  [][]byte{{0x01}},
	}}

	for _, test := range tests {
		vm, err := runScript(t, test.script, test.flags, nil)
		if test.wantErr != nil {
			require.ErrorIs(t, err, test.wantErr, test.name)
			require.Equal(t, ExecDone, vm.State(), test.name)
			require.ErrorIs(t, vm.CheckErrorCondition(), test.wantErr,
				test.name)
			continue
		}
		require.NoError(t, err, test.name)
		require.Equal(t, test.stack, vm.GetStack(), test.name)
	}
}

// TestHashOpcodes ensures the hashing opcodes replace the top stack item with
// its digest.
func TestHashOpcodes(t *testing.T) {
	t.Parallel()

	data := []byte("script")
	single := sha256.Sum256(data)
	double := sha256.Sum256(single[:])

	tests := []struct {
		name     string
		op       byte
		expected []byte
	}{
		{"sha256", OP_SHA256, single[:]},
		{"hash256", OP_HASH256, double[:]},
		{"hash160", OP_HASH160, btcutil.Hash160(data)},
	}

	for _, test := range tests {
		raw := NewScript().WriteBytes(data).WriteOp(test.op).Bytes()
		vm, err := runScript(t, raw, 0, nil)
		require.NoError(t, err, test.name)
		require.Equal(t, [][]byte{test.expected}, vm.GetStack(),
			test.name)
	}
}

// TestResourceLimits ensures the limits on script size, element size, the
// number of operations, and the stack size are enforced.
func TestResourceLimits(t *testing.T) {
	t.Parallel()

	// 1001 pushes overflow the stack once the last one executes.
	vm, err := runScript(t, bytes.Repeat([]byte{OP_1}, MaxStackSize+1), 0,
		nil)
	require.ErrorIs(t, err, ErrStackOverflow)
	require.Equal(t, MaxStackSize+1, len(vm.GetStack()))

	_, err = runScript(t, bytes.Repeat([]byte{OP_1}, MaxStackSize), 0, nil)
	require.NoError(t, err)

	// Pushes do not count toward the operation limit, but every other
	// opcode does.
	ops := append(bytes.Repeat([]byte{OP_NOP}, MaxOpsPerScript), OP_1)
	_, err = runScript(t, ops, 0, nil)
	require.NoError(t, err)

	ops = append(bytes.Repeat([]byte{OP_NOP}, MaxOpsPerScript+1), OP_1)
	_, err = runScript(t, ops, 0, nil)
	require.ErrorIs(t, err, ErrTooManyOperations)

	// Pairs of pushes and duplications run into the operation limit
	// long before the stack limit.
	dups := bytes.Repeat([]byte{OP_1, OP_DUP}, 501)
	_, err = runScript(t, dups, 0, nil)
	require.ErrorIs(t, err, ErrTooManyOperations)

	// An element over the maximum size fails when pushed.
	big := NewScript().WriteBytes(make([]byte, MaxScriptElementSize+1))
	_, err = runScript(t, big.Bytes(), 0, nil)
	require.ErrorIs(t, err, ErrElementTooBig)

	// Scripts over the maximum size are rejected outright.
	tooBig := NewScript()
	for i := 0; i < MaxScriptSize+1; i++ {
		tooBig.WriteOp(OP_NOP)
	}
	_, err = NewEngine(tooBig, nil, 0, 0)
	require.ErrorIs(t, err, ErrScriptTooBig)
}

// TestResult ensures the outcome of a finished script is reported as a boolean
// by Result and as an error by CheckErrorCondition.
func TestResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		script   []byte
		expected bool
		condErr  error
	}{
		{"true", []byte{OP_1}, true, nil},
		{"false", []byte{OP_0}, false, ErrEvalFalse},
		{"negative zero", []byte{OP_DATA_1, 0x80}, false, ErrEvalFalse},
		{"empty script", nil, false, ErrEmptyStack},
		{"only top item counts", []byte{OP_0, OP_1}, true, nil},
	}

	for _, test := range tests {
		vm, err := runScript(t, test.script, 0, nil)
		require.NoError(t, err, test.name)

		result, err := vm.Result()
		require.NoError(t, err, test.name)
		require.Equal(t, test.expected, result, test.name)

		err = vm.CheckErrorCondition()
		if test.condErr == nil {
			require.NoError(t, err, test.name)
		} else {
			require.ErrorIs(t, err, test.condErr, test.name)
		}

		// Checking the condition does not consume the stack.
		again, err := vm.Result()
		require.NoError(t, err, test.name)
		require.Equal(t, result, again, test.name)
	}
}

// TestStepping ensures stepping through a script reports the expected states
// and that finished or unfinished engines refuse inappropriate calls.
func TestStepping(t *testing.T) {
	t.Parallel()

	vm, err := NewEngine(mustParseScript(t, []byte{OP_1, OP_2, OP_ADD}),
		nil, 0, 0)
	require.NoError(t, err)
	require.Equal(t, ExecRunning, vm.State())

	_, err = vm.Result()
	require.ErrorIs(t, err, ErrScriptUnfinished)
	require.ErrorIs(t, vm.CheckErrorCondition(), ErrScriptUnfinished)

	dis, err := vm.DisasmPC()
	require.NoError(t, err)
	require.Equal(t, "0000: OP_1", dis)

	state, err := vm.Step()
	require.NoError(t, err)
	require.Equal(t, ExecRunning, state)

	state, err = vm.Step()
	require.NoError(t, err)
	require.Equal(t, ExecRunning, state)

	dis, err = vm.DisasmPC()
	require.NoError(t, err)
	require.Equal(t, "0002: OP_ADD", dis)

	state, err = vm.Step()
	require.NoError(t, err)
	require.Equal(t, ExecDone, state)
	require.Equal(t, [][]byte{{0x03}}, vm.GetStack())

	_, err = vm.DisasmPC()
	require.ErrorIs(t, err, ErrInvalidProgramCounter)

	state, err = vm.Step()
	require.ErrorIs(t, err, ErrScriptDone)
	require.Equal(t, ExecDone, state)

	_, err = vm.ResumeSigCheck(true, nil)
	require.ErrorIs(t, err, ErrNoPendingSigCheck)

	// A failed engine keeps reporting the failure.
	vm, err = NewEngine(mustParseScript(t, []byte{OP_ADD}), nil, 0, 0)
	require.NoError(t, err)
	_, err = vm.Step()
	require.ErrorIs(t, err, ErrInvalidStackOperation)
	_, err = vm.Step()
	require.ErrorIs(t, err, ErrInvalidStackOperation)

	require.Equal(t, "running", ExecRunning.String())
	require.Equal(t, "suspended", ExecSuspended.String())
	require.Equal(t, "done", ExecDone.String())
	require.Equal(t, "ExecState(9)", ExecState(9).String())
}

// smallIntOp returns the opcode that pushes the small integer n.
func smallIntOp(n int) byte {
	if n == 0 {
		return OP_0
	}
	return OP_1 + byte(n-1)
}

// fakeSig returns a signature that is not DER encoded with the passed hash
// type appended.  It is only usable without the strict encoding flags.
func fakeSig(id byte, hashType SigHashType) []byte {
	return []byte{0xaa, id, 0xbb, id, byte(hashType)}
}

// TestCheckSigSuspension ensures OP_CHECKSIG suspends evaluation with a request
// describing the signature check and resumes with the delivered verdict.
func TestCheckSigSuspension(t *testing.T) {
	t.Parallel()

	pubKey := testPubKeys(t, 1)[0]
	sig := fakeSig(1, SigHashAll)
	raw := NewScript().WriteBytes(sig).WriteBytes(pubKey).
		WriteOp(OP_CHECKSIG).Bytes()

	tx := sigHashTestTx()
	for _, valid := range []bool{true, false} {
		vm, err := NewEngine(mustParseScript(t, raw), tx, 1, 0)
		require.NoError(t, err)

		require.Nil(t, vm.PendingSigCheck())
		_, err = vm.Step()
		require.NoError(t, err)
		_, err = vm.Step()
		require.NoError(t, err)

		state, err := vm.Step()
		require.NoError(t, err)
		require.Equal(t, ExecSuspended, state)

		req := vm.PendingSigCheck()
		require.NotNil(t, req)
		require.Equal(t, sig[:len(sig)-1], req.Signature)
		require.Equal(t, SigHashAll, req.HashType)
		require.Equal(t, pubKey, req.PubKey)
		require.Equal(t, tx, req.Tx)
		require.Equal(t, 1, req.InputIdx)

		// The signature is removed from the script it signs.
		wantSub := NewScript().WriteBytes(pubKey).WriteOp(OP_CHECKSIG)
		require.True(t, wantSub.Equal(req.SubScript), "%v",
			req.SubScript)

		_, err = vm.Step()
		require.ErrorIs(t, err, ErrSigCheckPending)

		state, err = vm.ResumeSigCheck(valid, nil)
		require.NoError(t, err)
		require.Equal(t, ExecDone, state)
		require.Nil(t, vm.PendingSigCheck())

		result, err := vm.Result()
		require.NoError(t, err)
		require.Equal(t, valid, result)
	}

	// A backend error counts as an invalid signature.
	vm, err := NewEngine(mustParseScript(t, raw), nil, 0, 0)
	require.NoError(t, err)
	for vm.State() == ExecRunning {
		_, err := vm.Step()
		require.NoError(t, err)
	}
	state, err := vm.ResumeSigCheck(true, errors.New("backend down"))
	require.NoError(t, err)
	require.Equal(t, ExecDone, state)
	result, err := vm.Result()
	require.NoError(t, err)
	require.False(t, result)
}

// TestCheckSigVariants exercises the signature opcodes against a checker that
// accepts only known signature and public key pairings.
func TestCheckSigVariants(t *testing.T) {
	t.Parallel()

	keys := testPubKeys(t, 3)
	sigs := [][]byte{
		fakeSig(0, SigHashAll),
		fakeSig(1, SigHashAll),
		fakeSig(2, SigHashAll),
	}
	pairedKey := func(sig []byte) []byte {
		for i := range sigs {
			if bytes.Equal(sigs[i][:len(sigs[i])-1], sig) {
				return keys[i]
			}
		}
		return nil
	}

	multiSig := func(dummy byte, sigIdxs ...int) []byte {
		s := NewScript().WriteOp(dummy)
		for _, i := range sigIdxs {
			s.WriteBytes(sigs[i])
		}
		s.WriteOp(smallIntOp(len(sigIdxs)))
		for _, key := range keys {
			s.WriteBytes(key)
		}
		return s.WriteOp(OP_3).WriteOp(OP_CHECKMULTISIG).Bytes()
	}
	noDummy := NewScript().WriteBytes(sigs[0]).WriteBytes(sigs[1]).
		WriteOp(OP_2).WriteBytes(keys[0]).WriteBytes(keys[1]).
		WriteBytes(keys[2]).WriteOp(OP_3).WriteOp(OP_CHECKMULTISIG)

	tests := []struct {
		name    string
		script  []byte
		flags   ScriptFlags
		result  bool
		checks  int
		wantErr error
	}{{
		name: "checksig valid",
		script: NewScript().WriteBytes(sigs[0]).WriteBytes(keys[0]).
			WriteOp(OP_CHECKSIG).Bytes(),
		result: true,
		checks: 1,
	}, {
		name: "checksig wrong key",
		script: NewScript().WriteBytes(sigs[0]).WriteBytes(keys[1]).
			WriteOp(OP_CHECKSIG).Bytes(),
		result: false,
		checks: 1,
	}, {
		name: "checksig empty signature skips checker",
		script: NewScript().WriteOp(OP_0).WriteBytes(keys[0]).
			WriteOp(OP_CHECKSIG).Bytes(),
		result: false,
		checks: 0,
	}, {
		name: "checksigverify failure",
		script: NewScript().WriteBytes(sigs[0]).WriteBytes(keys[1]).
			WriteOp(OP_CHECKSIGVERIFY).WriteOp(OP_1).Bytes(),
		checks:  1,
		wantErr: ErrCheckSigVerify,
	}, {
		// Keys are tried from the last pushed, so the signature for
		// the last key matches at once and the other on the next.
		name:   "multisig in order",
		script: multiSig(OP_0, 1, 2),
		result: true,
		checks: 2,
	}, {
		name:   "multisig skipping a key",
		script: multiSig(OP_0, 0, 1),
		result: true,
		checks: 3,
	}, {
		name:   "multisig out of order",
		script: multiSig(OP_0, 2, 1),
		result: false,
		checks: 3,
	}, {
		name:   "multisig zero of three",
		script: multiSig(OP_0),
		result: true,
		checks: 0,
	}, {
		name:   "multisig non-zero dummy",
		script: multiSig(OP_1, 1, 2),
		result: true,
		checks: 2,
	}, {
		name:    "multisig non-zero dummy strict",
		script:  multiSig(OP_1, 1, 2),
		flags:   ScriptStrictMultiSig,
		wantErr: ErrSigNullDummy,
	}, {
		name:    "multisig missing dummy",
		script:  noDummy.Bytes(),
		wantErr: ErrInvalidStackOperation,
	}, {
		name:    "multisig more sigs than keys",
		script:  []byte{OP_0, OP_0, OP_0, OP_2, OP_0, OP_1, OP_CHECKMULTISIG},
		wantErr: ErrInvalidSignatureCount,
	}}

	for _, test := range tests {
		var checks int
		checker := SignatureCheckerFunc(func(_ context.Context,
			req *SigCheckRequest) (bool, error) {

			checks++
			return bytes.Equal(pairedKey(req.Signature), req.PubKey), nil
		})

		vm, err := runScript(t, test.script, test.flags, checker)
		require.Equal(t, test.checks, checks, test.name)
		if test.wantErr != nil {
			require.ErrorIs(t, err, test.wantErr, test.name)
			continue
		}
		require.NoError(t, err, test.name)

		result, err := vm.Result()
		require.NoError(t, err, test.name)
		require.Equal(t, test.result, result, test.name)
	}
}

// TestExecuteNilChecker ensures a nil checker treats signatures as invalid.
func TestExecuteNilChecker(t *testing.T) {
	t.Parallel()

	raw := NewScript().WriteBytes(fakeSig(0, SigHashAll)).
		WriteBytes(testPubKeys(t, 1)[0]).WriteOp(OP_CHECKSIG).
		WriteOp(OP_NOT).Bytes()
	vm, err := runScript(t, raw, 0, nil)
	require.NoError(t, err)
	require.NoError(t, vm.CheckErrorCondition())
}

// TestExecuteCancel ensures a cancelled context abandons the evaluation.
func TestExecuteCancel(t *testing.T) {
	t.Parallel()

	raw := NewScript().WriteBytes(fakeSig(0, SigHashAll)).
		WriteBytes(testPubKeys(t, 1)[0]).WriteOp(OP_CHECKSIG).Bytes()

	// Cancelled while a signature check is outstanding.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	checker := SignatureCheckerFunc(func(context.Context,
		*SigCheckRequest) (bool, error) {

		cancel()
		return true, nil
	})

	vm, err := NewEngine(mustParseScript(t, raw), nil, 0, 0)
	require.NoError(t, err)
	err = vm.Execute(ctx, checker)
	require.ErrorIs(t, err, ErrEvalAbandoned)
	require.Equal(t, ExecDone, vm.State())

	_, err = vm.Step()
	require.ErrorIs(t, err, ErrEvalAbandoned)
	_, err = vm.Result()
	require.ErrorIs(t, err, ErrEvalAbandoned)

	// Cancelled before evaluation starts.
	vm, err = NewEngine(mustParseScript(t, raw), nil, 0, 0)
	require.NoError(t, err)
	err = vm.Execute(ctx, checker)
	require.ErrorIs(t, err, ErrEvalAbandoned)
	require.Empty(t, vm.GetStack())

	// Abandoning a finished engine has no effect.
	vm, err = runScript(t, []byte{OP_1}, 0, nil)
	require.NoError(t, err)
	vm.Abandon("too late")
	require.NoError(t, vm.CheckErrorCondition())
}

// TestLockTimeOpcodes ensures OP_CHECKLOCKTIMEVERIFY and
// OP_CHECKSEQUENCEVERIFY compare against the transaction when enabled.
func TestLockTimeOpcodes(t *testing.T) {
	t.Parallel()

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{Sequence: 10})
	tx.LockTime = 100

	cltv := func(lockTime int64) []byte {
		return NewScript().WriteBytes(scriptNum(lockTime).Bytes()).
			WriteOp(OP_CHECKLOCKTIMEVERIFY).Bytes()
	}
	csv := func(sequence int64) []byte {
		return NewScript().WriteBytes(scriptNum(sequence).Bytes()).
			WriteOp(OP_CHECKSEQUENCEVERIFY).Bytes()
	}

	tests := []struct {
		name    string
		script  []byte
		flags   ScriptFlags
		wantErr error
	}{
		{"cltv satisfied", cltv(50), ScriptVerifyCheckLockTimeVerify, nil},
		{"cltv equal", cltv(100), ScriptVerifyCheckLockTimeVerify, nil},
		{"cltv in the future", cltv(200), ScriptVerifyCheckLockTimeVerify,
			ErrUnsatisfiedLockTime},
		{"cltv mismatched type", cltv(LockTimeThreshold + 1),
			ScriptVerifyCheckLockTimeVerify, ErrUnsatisfiedLockTime},
		{"cltv negative", cltv(-1), ScriptVerifyCheckLockTimeVerify,
			ErrNegativeLockTime},
		{"cltv disabled", cltv(200), 0, nil},
		{"cltv disabled discouraged", cltv(200),
			ScriptDiscourageUpgradableNops, ErrDiscourageUpgradableNOPs},
		{"csv satisfied", csv(5), ScriptVerifyCheckSequenceVerify, nil},
		{"csv in the future", csv(20), ScriptVerifyCheckSequenceVerify,
			ErrUnsatisfiedLockTime},
		{"csv disabled", csv(20), 0, nil},
	}

	for _, test := range tests {
		vm, err := NewEngine(mustParseScript(t, test.script), tx, 0,
			test.flags)
		require.NoError(t, err, test.name)

		err = vm.Execute(context.Background(), nil)
		if test.wantErr != nil {
			require.ErrorIs(t, err, test.wantErr, test.name)
			continue
		}
		require.NoError(t, err, test.name)
	}

	// Without a transaction there is nothing to compare against.
	_, err := runScript(t, cltv(50), ScriptVerifyCheckLockTimeVerify, nil)
	require.ErrorIs(t, err, ErrUnsatisfiedLockTime)
}

// TestNewEngineIndex ensures the input index must refer to an input of the
// transaction.
func TestNewEngineIndex(t *testing.T) {
	t.Parallel()

	tx := sigHashTestTx()
	script := mustParseScript(t, []byte{OP_1})

	_, err := NewEngine(script, tx, 2, 0)
	require.ErrorIs(t, err, ErrInvalidIndex)
	_, err = NewEngine(script, tx, -1, 0)
	require.ErrorIs(t, err, ErrInvalidIndex)

	vm, err := NewEngine(nil, tx, 1, 0)
	require.NoError(t, err)
	require.NoError(t, vm.Execute(context.Background(), nil))
	require.ErrorIs(t, vm.CheckErrorCondition(), ErrEmptyStack)
}

// TestSetStack ensures the data stack can be seeded before execution.
func TestSetStack(t *testing.T) {
	t.Parallel()

	vm, err := NewEngine(mustParseScript(t, []byte{OP_ADD}), nil, 0, 0)
	require.NoError(t, err)
	vm.SetStack([][]byte{{0x02}, {0x03}})
	require.NoError(t, vm.Execute(context.Background(), nil))
	require.Equal(t, [][]byte{{0x05}}, vm.GetStack())
	require.Empty(t, vm.GetAltStack())
}
