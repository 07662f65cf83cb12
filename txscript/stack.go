// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// asBool interprets a stack item as a boolean.  Every encoding of zero is
// false, including the negative zero formed by a trailing 0x80 sign byte.
func asBool(t []byte) bool {
	last := len(t) - 1
	for i, b := range t {
		switch {
		case b == 0:
		case i == last && b == 0x80:
			return false
		default:
			return true
		}
	}
	return false
}

// fromBool returns the canonical stack item for a boolean.
func fromBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return nil
}

// stack is the data or alt stack of an engine.  Items are shared rather than
// copied when they are duplicated, so an item must never be mutated in place.
type stack struct {
	stk               [][]byte
	verifyMinimalData bool
}

// badIndex returns the error for an access to an item that does not exist.
func (s *stack) badIndex(idx int32) error {
	str := fmt.Sprintf("index %d is invalid for stack size %d", idx,
		len(s.stk))
	return scriptError(ErrInvalidStackOperation, str)
}

// checkCount ensures the item count of a multi-item operation is positive.
func checkCount(op string, n int32) error {
	if n < 1 {
		str := fmt.Sprintf("attempt to %s %d stack items", op, n)
		return scriptError(ErrInvalidStackOperation, str)
	}
	return nil
}

// Depth returns the number of items on the stack.
func (s *stack) Depth() int32 {
	return int32(len(s.stk))
}

// PushByteArray pushes so.
func (s *stack) PushByteArray(so []byte) {
	s.stk = append(s.stk, so)
}

// PushInt pushes the minimal encoding of val.
func (s *stack) PushInt(val scriptNum) {
	s.PushByteArray(val.Bytes())
}

// PushBool pushes the canonical encoding of val.
func (s *stack) PushBool(val bool) {
	s.PushByteArray(fromBool(val))
}

// PopByteArray removes and returns the top item.
//
// Stack transformation: [... x1 x2] -> [... x1]
func (s *stack) PopByteArray() ([]byte, error) {
	return s.nipN(0)
}

// PopInt removes the top item and decodes it as a number of at most
// defaultScriptNumLen bytes, honoring the minimal encoding setting of the
// stack.
func (s *stack) PopInt() (scriptNum, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, s.verifyMinimalData, defaultScriptNumLen)
}

// PopBool removes the top item and interprets it as a boolean.
func (s *stack) PopBool() (bool, error) {
	so, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

// PeekByteArray returns the item idx positions below the top, where zero is
// the top item.
func (s *stack) PeekByteArray(idx int32) ([]byte, error) {
	if idx < 0 || idx >= s.Depth() {
		return nil, s.badIndex(idx)
	}
	return s.stk[s.Depth()-idx-1], nil
}

// PeekInt decodes the item idx positions below the top as a number without
// removing it.
func (s *stack) PeekInt(idx int32) (scriptNum, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return 0, err
	}
	return makeScriptNum(so, s.verifyMinimalData, defaultScriptNumLen)
}

// PeekBool interprets the item idx positions below the top as a boolean
// without removing it.
func (s *stack) PeekBool(idx int32) (bool, error) {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return false, err
	}
	return asBool(so), nil
}

// nipN removes the item idx positions below the top and returns it.
//
// Stack transformation:
// nipN(0): [... x1 x2 x3] -> [... x1 x2]
// nipN(2): [... x1 x2 x3] -> [... x2 x3]
func (s *stack) nipN(idx int32) ([]byte, error) {
	if idx < 0 || idx >= s.Depth() {
		return nil, s.badIndex(idx)
	}

	last := len(s.stk) - 1
	pos := last - int(idx)
	so := s.stk[pos]
	copy(s.stk[pos:], s.stk[pos+1:])
	s.stk[last] = nil
	s.stk = s.stk[:last]
	return so, nil
}

// moveToTop moves the item idx positions below the top to the top.
func (s *stack) moveToTop(idx int32) error {
	so, err := s.nipN(idx)
	if err != nil {
		return err
	}
	s.PushByteArray(so)
	return nil
}

// copyToTop pushes a copy of the item idx positions below the top.
func (s *stack) copyToTop(idx int32) error {
	so, err := s.PeekByteArray(idx)
	if err != nil {
		return err
	}
	s.PushByteArray(so)
	return nil
}

// NipN removes the item idx positions below the top.
func (s *stack) NipN(idx int32) error {
	_, err := s.nipN(idx)
	return err
}

// Tuck inserts a copy of the top item below the second item.
//
// Stack transformation: [... x1 x2] -> [... x2 x1 x2]
func (s *stack) Tuck() error {
	if s.Depth() < 2 {
		return s.badIndex(1)
	}
	top := s.stk[len(s.stk)-1]
	s.stk = append(s.stk, top)
	copy(s.stk[len(s.stk)-3:], [][]byte{top, s.stk[len(s.stk)-3], top})
	return nil
}

// DropN removes the top n items.
func (s *stack) DropN(n int32) error {
	if err := checkCount("drop", n); err != nil {
		return err
	}
	if n > s.Depth() {
		return s.badIndex(n - 1)
	}
	for i := len(s.stk) - int(n); i < len(s.stk); i++ {
		s.stk[i] = nil
	}
	s.stk = s.stk[:len(s.stk)-int(n)]
	return nil
}

// DupN pushes copies of the top n items, keeping their order.
//
// Stack transformation:
// DupN(2): [... x1 x2] -> [... x1 x2 x1 x2]
func (s *stack) DupN(n int32) error {
	return s.copyRun("dup", n, n-1)
}

// OverN pushes copies of the n items found below the top n items.
//
// Stack transformation:
// OverN(1): [... x1 x2] -> [... x1 x2 x1]
// OverN(2): [... x1 x2 x3 x4] -> [... x1 x2 x3 x4 x1 x2]
func (s *stack) OverN(n int32) error {
	return s.copyRun("over", n, 2*n-1)
}

// copyRun copies n items to the top starting with the one at idx.  Every copy
// shifts the remaining ones up by one, so idx stays fixed.
func (s *stack) copyRun(op string, n, idx int32) error {
	if err := checkCount(op, n); err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		if err := s.copyToTop(idx); err != nil {
			return err
		}
	}
	return nil
}

// RotN rotates the top 3n items left by n.
//
// Stack transformation:
// RotN(1): [... x1 x2 x3] -> [... x2 x3 x1]
// RotN(2): [... x1 x2 x3 x4 x5 x6] -> [... x3 x4 x5 x6 x1 x2]
func (s *stack) RotN(n int32) error {
	return s.moveRun("rotate", n, 3*n-1)
}

// SwapN exchanges the top n items with the n items below them.
//
// Stack transformation:
// SwapN(1): [... x1 x2] -> [... x2 x1]
// SwapN(2): [... x1 x2 x3 x4] -> [... x3 x4 x1 x2]
func (s *stack) SwapN(n int32) error {
	return s.moveRun("swap", n, 2*n-1)
}

// moveRun moves n items to the top starting with the one at idx.
func (s *stack) moveRun(op string, n, idx int32) error {
	if err := checkCount(op, n); err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		if err := s.moveToTop(idx); err != nil {
			return err
		}
	}
	return nil
}

// PickN pushes a copy of the item n positions below the top.
func (s *stack) PickN(n int32) error {
	return s.copyToTop(n)
}

// RollN moves the item n positions below the top to the top.
func (s *stack) RollN(n int32) error {
	return s.moveToTop(n)
}

// items returns a copy of the stack contents ordered bottom to top.
func (s *stack) items() [][]byte {
	array := make([][]byte, len(s.stk))
	copy(array, s.stk)
	return array
}

// setItems replaces the stack contents with the passed items ordered bottom
// to top.
func (s *stack) setItems(data [][]byte) {
	s.stk = make([][]byte, len(data))
	copy(s.stk, data)
}

// String returns a hex dump of every item from the bottom up.
func (s *stack) String() string {
	var result strings.Builder
	for _, item := range s.stk {
		if len(item) == 0 {
			result.WriteString("00000000  <empty>\n")
			continue
		}
		result.WriteString(hex.Dump(item))
	}
	return result.String()
}
