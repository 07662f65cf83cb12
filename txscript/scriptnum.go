// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math"
)

// defaultScriptNumLen is the largest encoding, in bytes, most numeric opcodes
// accept as an operand.
const defaultScriptNumLen = 4

// scriptNum is a number read from or written to a stack.
//
// Stack numbers are little endian with the high bit of the last byte holding
// the sign.  Operands are limited by makeScriptNum, usually to 4 bytes, while
// results are kept as int64 so that an overflowing sum can still be pushed
// and later read as a boolean.  Reading such a result back as a number fails
// the length check.
type scriptNum int64

// checkMinimalDataEncoding returns ErrMinimalData when v has a redundant high
// byte.  A last byte of 0x00 or 0x80 is only needed when the byte below it
// has its high bit set.  This also rejects negative zero.
func checkMinimalDataEncoding(v []byte) error {
	last := len(v) - 1
	if last < 0 || v[last]&0x7f != 0 {
		return nil
	}
	if last > 0 && v[last-1]&0x80 != 0 {
		return nil
	}
	str := fmt.Sprintf("numeric value encoded as %x is not minimally "+
		"encoded", v)
	return scriptError(ErrMinimalData, str)
}

// Bytes returns the minimal stack encoding of the number.
//
// Example encodings:
//
//	   127 -> [0x7f]
//	  -127 -> [0xff]
//	   128 -> [0x80 0x00]
//	  -128 -> [0x80 0x80]
//	   256 -> [0x00 0x01]
//	 32768 -> [0x00 0x80 0x00]
//	-32768 -> [0x00 0x80 0x80]
func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	negative := n < 0
	magnitude := uint64(n)
	if negative {
		magnitude = uint64(-n)
	}

	// Nine bytes cover the magnitude of any int64 plus a sign byte.
	result := make([]byte, 0, 9)
	for ; magnitude > 0; magnitude >>= 8 {
		result = append(result, byte(magnitude))
	}

	// The sign goes in the high bit of the last byte, which needs a byte of
	// its own when the magnitude already uses that bit.
	var sign byte
	if negative {
		sign = 0x80
	}
	if result[len(result)-1]&0x80 != 0 {
		return append(result, sign)
	}
	result[len(result)-1] |= sign
	return result
}

// Int32 returns the number saturated to the int32 range.  Opcodes that take a
// count or index use it rather than a cast, which would wrap.
func (n scriptNum) Int32() int32 {
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	}
	return int32(n)
}

// makeScriptNum decodes v as a stack number.
//
// Encodings longer than scriptNumLen bytes fail with ErrNumberTooBig, which
// bounds a 4 byte operand to [-2^31 + 1, 2^31 - 1].  With requireMinimal set,
// encodings carrying a redundant high byte fail with ErrMinimalData.  Lengths
// above 5 are never passed, so the int64 arithmetic on the result can not
// overflow.
func makeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (scriptNum, error) {
	if len(v) > scriptNumLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes "+
			"which exceeds the max allowed of %d", v, len(v),
			scriptNumLen)
		return 0, scriptError(ErrNumberTooBig, str)
	}
	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}
	if len(v) == 0 {
		return 0, nil
	}

	var magnitude int64
	for i, b := range v {
		magnitude |= int64(b) << (8 * uint(i))
	}

	// Clear the sign bit and apply it.
	signBit := int64(0x80) << (8 * uint(len(v)-1))
	if magnitude&signBit != 0 {
		return scriptNum(-(magnitude &^ signBit)), nil
	}
	return scriptNum(magnitude), nil
}
