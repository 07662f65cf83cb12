// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType byte

// Hash type bits from the end of a signature.
const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is used
	// to identify which outputs are signed.
	sigHashMask = 0x1f
)

// -----------------------------------------------------------------------------
// A variable length integer (varint) is an encoding for integers up to a max
// value of 2^64-1 that uses a variable number of bytes depending on the value
// being encoded.  It is used within the signature hash preimage to specify the
// number of inputs, outputs, and script bytes that follow it.
//
// The encoding is as follows:
//
//   Value                   Len   Format
//   -----                   ---   ------
//   < 0xfd                  1     val as uint8
//   <= 0xffff               3     0xfd followed by val as little-endian uint16
//   <= 0xffffffff           5     0xfe followed by val as little-endian uint32
//   <= 0xffffffffffffffff   9     0xff followed by val as little-endian uint64
// -----------------------------------------------------------------------------

// varIntSerializeSize returns the number of bytes it would take to serialize
// the provided value as a variable length integer according to the format
// described above.
func varIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= math.MaxUint16:
		return 3
	case val <= math.MaxUint32:
		return 5
	}
	return 9
}

// putVarInt serializes the provided number to a variable-length integer and
// according to the format described above returns the number of bytes of the
// encoded value.  The result is placed directly into the passed byte slice
// which must be at least large enough to handle the number of bytes returned by
// the varIntSerializeSize function or it will panic.
func putVarInt(buf []byte, val uint64) int {
	switch {
	case val < 0xfd:
		buf[0] = uint8(val)
		return 1

	case val <= math.MaxUint16:
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(val))
		return 3

	case val <= math.MaxUint32:
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(val))
		return 5
	}

	buf[0] = 0xff
	binary.LittleEndian.PutUint64(buf[1:], val)
	return 9
}

// putUint32LE writes the provided uint32 as little endian to the provided slice
// and returns 4 to signify the number of bytes written.  The target byte slice
// must be at least large enough to handle the write or it will panic.
func putUint32LE(buf []byte, val uint32) int {
	binary.LittleEndian.PutUint32(buf, val)
	return 4
}

// putUint64LE writes the provided uint64 as little endian to the provided slice
// and returns 8 to signify the number of bytes written.  The target byte slice
// must be at least large enough to handle the write or it will panic.
func putUint64LE(buf []byte, val uint64) int {
	binary.LittleEndian.PutUint64(buf, val)
	return 8
}

// putVarBytes writes the length of data as a varint followed by data itself and
// returns the number of bytes written.
func putVarBytes(buf []byte, data []byte) int {
	offset := putVarInt(buf, uint64(len(data)))
	offset += copy(buf[offset:], data)
	return offset
}

// varBytesSerializeSize returns the number of bytes putVarBytes writes for
// data.
func varBytesSerializeSize(data []byte) int {
	return varIntSerializeSize(uint64(len(data))) + len(data)
}

// sigHashSerializeSize returns the number of bytes the signature hash preimage
// takes for the passed parameters.
func sigHashSerializeSize(hashType SigHashType, tx *wire.MsgTx, idx int,
	signScript []byte) int {

	// 1) 4 bytes version
	// 2) number of inputs varint
	// 3) per input:
	//    a) 32 bytes prevout hash
	//    b) 4 bytes prevout index
	//    c) script varint and bytes (only the input being signed has one)
	//    d) 4 bytes sequence
	// 4) number of outputs varint
	// 5) per output:
	//    a) 8 bytes amount
	//    b) pkscript varint and bytes
	// 6) 4 bytes lock time
	// 7) 4 bytes hash type
	const inputSize = chainhash.HashSize + 4 + 4
	size := 4 + 4 + 4

	numTxIns := len(tx.TxIn)
	if hashType&SigHashAnyOneCanPay != 0 {
		numTxIns = 1
	}
	size += varIntSerializeSize(uint64(numTxIns))
	size += numTxIns*inputSize + (numTxIns - 1)
	size += varBytesSerializeSize(signScript)

	switch hashType & sigHashMask {
	case SigHashNone:
		size += varIntSerializeSize(0)

	case SigHashSingle:
		size += varIntSerializeSize(uint64(idx + 1))
		size += idx * (8 + 1)
		size += 8 + varBytesSerializeSize(tx.TxOut[idx].PkScript)

	default:
		size += varIntSerializeSize(uint64(len(tx.TxOut)))
		for _, txOut := range tx.TxOut {
			size += 8 + varBytesSerializeSize(txOut.PkScript)
		}
	}
	return size
}

// putTxIn writes the outpoint, script and sequence of txIn.
func putTxIn(buf []byte, txIn *wire.TxIn, script []byte, sequence uint32) int {
	offset := copy(buf, txIn.PreviousOutPoint.Hash[:])
	offset += putUint32LE(buf[offset:], txIn.PreviousOutPoint.Index)
	offset += putVarBytes(buf[offset:], script)
	offset += putUint32LE(buf[offset:], sequence)
	return offset
}

// calcSignatureHash computes the signature hash for the specified input of the
// target transaction observing the desired signature hash type.  Any
// OP_CODESEPARATOR opcodes left in the sub-script are removed before hashing.
func calcSignatureHash(subScript *Script, hashType SigHashType,
	tx *wire.MsgTx, idx int) ([]byte, error) {

	if tx == nil || idx < 0 || idx >= len(tx.TxIn) {
		numTxIns := 0
		if tx != nil {
			numTxIns = len(tx.TxIn)
		}
		str := fmt.Sprintf("transaction input index %d is out of "+
			"range for a transaction with %d inputs", idx, numTxIns)
		return nil, scriptError(ErrInvalidIndex, str)
	}

	// The SigHashSingle signature type signs only the corresponding input
	// and output (the output with the same index number as the input).
	//
	// Since transactions can have more inputs than outputs, this means it
	// is improper to use SigHashSingle on input indices that don't have a
	// corresponding output.
	mode := hashType & sigHashMask
	if mode == SigHashSingle && idx >= len(tx.TxOut) {
		str := fmt.Sprintf("attempt to sign single input at index %d "+
			">= %d outputs", idx, len(tx.TxOut))
		return nil, scriptError(ErrInvalidSigHashSingleIndex, str)
	}

	signScript := subScript
	if hasOpcode(subScript.chunks, OP_CODESEPARATOR) {
		signScript = subScript.subScript(0)
		signScript.FindAndDelete(Chunk{Opcode: OP_CODESEPARATOR})
	}
	scriptBytes := signScript.raw

	buf := make([]byte, sigHashSerializeSize(hashType, tx, idx,
		scriptBytes))
	offset := putUint32LE(buf, uint32(tx.Version))

	// Commit to the inputs.  Only the input being signed carries a script
	// and, for the modes that don't commit to the other outputs, the
	// sequence numbers of the other inputs are zeroed so they can be
	// updated freely.
	if hashType&SigHashAnyOneCanPay != 0 {
		txIn := tx.TxIn[idx]
		offset += putVarInt(buf[offset:], 1)
		offset += putTxIn(buf[offset:], txIn, scriptBytes, txIn.Sequence)
	} else {
		offset += putVarInt(buf[offset:], uint64(len(tx.TxIn)))
		for txInIdx, txIn := range tx.TxIn {
			var script []byte
			sequence := txIn.Sequence
			if txInIdx == idx {
				script = scriptBytes
			} else if mode == SigHashNone || mode == SigHashSingle {
				sequence = 0
			}
			offset += putTxIn(buf[offset:], txIn, script, sequence)
		}
	}

	// Commit to the outputs.  Unknown modes commit to every output, the
	// same as SigHashAll.
	switch mode {
	case SigHashNone:
		offset += putVarInt(buf[offset:], 0)

	case SigHashSingle:
		offset += putVarInt(buf[offset:], uint64(idx+1))
		for i := 0; i < idx; i++ {
			offset += putUint64LE(buf[offset:], math.MaxUint64)
			offset += putVarInt(buf[offset:], 0)
		}
		txOut := tx.TxOut[idx]
		offset += putUint64LE(buf[offset:], uint64(txOut.Value))
		offset += putVarBytes(buf[offset:], txOut.PkScript)

	default:
		offset += putVarInt(buf[offset:], uint64(len(tx.TxOut)))
		for _, txOut := range tx.TxOut {
			offset += putUint64LE(buf[offset:], uint64(txOut.Value))
			offset += putVarBytes(buf[offset:], txOut.PkScript)
		}
	}

	offset += putUint32LE(buf[offset:], tx.LockTime)
	putUint32LE(buf[offset:], uint32(hashType))

	return chainhash.DoubleHashB(buf), nil
}

// hasOpcode returns whether any of the chunks is the passed opcode.
func hasOpcode(chunks []Chunk, op byte) bool {
	for _, c := range chunks {
		if c.Opcode == op {
			return true
		}
	}
	return false
}

// CalcSignatureHash computes the legacy signature hash for the specified input
// of the target transaction observing the desired signature hash type.  The
// script is the sub-script the signature commits to, normally the public key
// script being spent or the redeem script of a pay-to-script-hash output.
func CalcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx,
	idx int) ([]byte, error) {

	subScript, err := ParseScript(script)
	if err != nil {
		return nil, err
	}

	return calcSignatureHash(subScript, hashType, tx, idx)
}
