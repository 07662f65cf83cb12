// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// These are the constants specified for maximums in individual scripts.
const (
	MaxOpsPerScript       = 201   // Max number of non-push operations.
	MaxPubKeysPerMultiSig = 20    // Multisig can't have more sigs than this.
	MaxScriptElementSize  = 520   // Max bytes pushable to the stack.
	MaxScriptSize         = 10000 // Max bytes in a raw script.
	MaxStackSize          = 1000  // Max combined height of stack and alt stack.
)

// Chunk is a single parsed element of a script: an opcode along with the data
// it pushes, if any.  Data pushes remember the exact opcode they were encoded
// with so a parsed script serializes back to the identical bytes.
type Chunk struct {
	Opcode byte
	Data   []byte
}

// IsData returns whether the chunk is a data push carrying its payload inline,
// that is one of OP_DATA_1 through OP_PUSHDATA4.
func (c Chunk) IsData() bool {
	return c.Opcode >= OP_DATA_1 && c.Opcode <= OP_PUSHDATA4
}

// serializedLen returns the number of bytes the chunk occupies in a script.
func (c Chunk) serializedLen() int {
	switch c.Opcode {
	case OP_PUSHDATA1:
		return 2 + len(c.Data)
	case OP_PUSHDATA2:
		return 3 + len(c.Data)
	case OP_PUSHDATA4:
		return 5 + len(c.Data)
	}
	return 1 + len(c.Data)
}

// appendTo appends the serialized chunk to b.
func (c Chunk) appendTo(b []byte) []byte {
	b = append(b, c.Opcode)
	switch c.Opcode {
	case OP_PUSHDATA1:
		b = append(b, byte(len(c.Data)))
	case OP_PUSHDATA2:
		b = binary.LittleEndian.AppendUint16(b, uint16(len(c.Data)))
	case OP_PUSHDATA4:
		b = binary.LittleEndian.AppendUint32(b, uint32(len(c.Data)))
	}
	return append(b, c.Data...)
}

// matches returns whether other serializes to the same bytes as the chunk.
// A push of equal data with a different push opcode is not a match.
func (c Chunk) matches(other Chunk) bool {
	return c.Opcode == other.Opcode && bytes.Equal(c.Data, other.Data)
}

// pushChunk returns a chunk that pushes data using the smallest push opcode
// that can hold it.  Empty data is pushed with OP_0.
func pushChunk(data []byte) Chunk {
	dataLen := len(data)
	switch {
	case dataLen == 0:
		return Chunk{Opcode: OP_0}
	case dataLen <= OP_DATA_75:
		return Chunk{Opcode: byte(dataLen), Data: data}
	case dataLen <= 0xff:
		return Chunk{Opcode: OP_PUSHDATA1, Data: data}
	case dataLen <= 0xffff:
		return Chunk{Opcode: OP_PUSHDATA2, Data: data}
	}
	return Chunk{Opcode: OP_PUSHDATA4, Data: data}
}

// Script is a parsed transaction script.  The chunk list is the canonical
// representation and the serialized form is derived from it on every
// mutation, so a Script that is no longer being written to may be read from
// multiple goroutines.
type Script struct {
	chunks []Chunk
	raw    []byte
}

// NewScript returns an empty script ready to be written to.
func NewScript() *Script {
	return &Script{}
}

// parseChunks parses b into chunks.  On error the chunks parsed up to the
// point of failure are returned along with the error.
func parseChunks(b []byte) ([]Chunk, error) {
	chunks := make([]Chunk, 0, len(b)/2)
	for i := 0; i < len(b); {
		op := &opcodeArray[b[i]]
		switch {
		case op.length == 1:
			chunks = append(chunks, Chunk{Opcode: op.value})
			i++

		case op.length > 1:
			if len(b[i:]) < op.length {
				str := fmt.Sprintf("opcode %s requires %d bytes, "+
					"but script only has %d remaining",
					op.name, op.length, len(b[i:]))
				return chunks, scriptError(ErrMalformedPush, str)
			}
			chunks = append(chunks, Chunk{
				Opcode: op.value,
				Data:   b[i+1 : i+op.length],
			})
			i += op.length

		default:
			prefixLen := -op.length
			off := i + 1
			if len(b[off:]) < prefixLen {
				str := fmt.Sprintf("opcode %s requires %d bytes, "+
					"but script only has %d remaining",
					op.name, prefixLen, len(b[off:]))
				return chunks, scriptError(ErrMalformedPush, str)
			}

			var dataLen uint64
			switch prefixLen {
			case 1:
				dataLen = uint64(b[off])
			case 2:
				dataLen = uint64(binary.LittleEndian.Uint16(b[off:]))
			case 4:
				dataLen = uint64(binary.LittleEndian.Uint32(b[off:]))
			}
			off += prefixLen

			if dataLen > uint64(len(b[off:])) {
				str := fmt.Sprintf("opcode %s pushes %d bytes, "+
					"but script only has %d remaining",
					op.name, dataLen, len(b[off:]))
				return chunks, scriptError(ErrMalformedPush, str)
			}
			end := off + int(dataLen)
			chunks = append(chunks, Chunk{
				Opcode: op.value,
				Data:   b[off:end],
			})
			i = end
		}
	}
	return chunks, nil
}

// ParseScript parses the raw script bytes into a Script.  An error is returned
// when a push opcode claims more data than the script holds.
func ParseScript(b []byte) (*Script, error) {
	raw := make([]byte, len(b))
	copy(raw, b)
	chunks, err := parseChunks(raw)
	if err != nil {
		return nil, err
	}
	return &Script{chunks: chunks, raw: raw}, nil
}

// rebuild recomputes the serialized form from the chunk list.
func (s *Script) rebuild() {
	size := 0
	for _, c := range s.chunks {
		size += c.serializedLen()
	}
	raw := make([]byte, 0, size)
	for _, c := range s.chunks {
		raw = c.appendTo(raw)
	}
	s.raw = raw
}

// Bytes returns a copy of the serialized script.
func (s *Script) Bytes() []byte {
	b := make([]byte, len(s.raw))
	copy(b, s.raw)
	return b
}

// Len returns the size of the serialized script in bytes.
func (s *Script) Len() int {
	return len(s.raw)
}

// Chunks returns the parsed chunks of the script.  The returned slice must not
// be modified.
func (s *Script) Chunks() []Chunk {
	return s.chunks
}

// Equal returns whether both scripts serialize to the same bytes.
func (s *Script) Equal(other *Script) bool {
	return bytes.Equal(s.raw, other.raw)
}

// WriteOp appends a bare opcode to the script.
func (s *Script) WriteOp(op byte) *Script {
	c := Chunk{Opcode: op}
	s.chunks = append(s.chunks, c)
	s.raw = c.appendTo(s.raw)
	return s
}

// WriteBytes appends a push of data to the script using the smallest push
// opcode able to hold it.
func (s *Script) WriteBytes(data []byte) *Script {
	buf := make([]byte, len(data))
	copy(buf, data)
	c := pushChunk(buf)
	s.chunks = append(s.chunks, c)
	s.raw = c.appendTo(s.raw)
	return s
}

// FindAndDelete removes every occurrence of c from the script and returns how
// many were removed.  Chunks are matched on their exact encoding, so a data
// push only matches a push of the same data using the same push opcode.
func (s *Script) FindAndDelete(c Chunk) int {
	kept := s.chunks[:0:0]
	for _, chunk := range s.chunks {
		if c.matches(chunk) {
			continue
		}
		kept = append(kept, chunk)
	}

	removed := len(s.chunks) - len(kept)
	if removed > 0 {
		s.chunks = kept
		s.rebuild()
	}
	return removed
}

// subScript returns a new script made of the chunks from index start onward.
func (s *Script) subScript(start int) *Script {
	chunks := make([]Chunk, len(s.chunks)-start)
	copy(chunks, s.chunks[start:])
	sub := &Script{chunks: chunks}
	sub.rebuild()
	return sub
}

// isPushOnly returns true if the chunks only push data or small integers.
func isPushOnly(chunks []Chunk) bool {
	for _, c := range chunks {
		// All opcodes up to OP_16 are data push instructions.
		// NOTE: This does consider OP_RESERVED to be a data push
		// instruction, but execution of OP_RESERVED will fail anyways
		// and matches the behavior required by consensus.
		if c.Opcode > OP_16 {
			return false
		}
	}
	return true
}

// IsPushOnly returns whether the script only pushes data, which is a
// requirement for a pay-to-script-hash signature script.
func (s *Script) IsPushOnly() bool {
	return isPushOnly(s.chunks)
}

// IsPushOnlyScript returns whether or not the passed script only pushes data.
//
// False will be returned when the script does not parse.
func IsPushOnlyScript(script []byte) bool {
	chunks, err := parseChunks(script)
	if err != nil {
		return false
	}
	return isPushOnly(chunks)
}

// disasm writes the disassembly of chunks into buf.
func disasm(buf *strings.Builder, chunks []Chunk, compact bool) {
	for i, c := range chunks {
		if i > 0 {
			buf.WriteByte(' ')
		}
		disasmOpcode(buf, &opcodeArray[c.Opcode], c.Data, compact)
	}
}

// String returns the one-line disassembly of the script.
func (s *Script) String() string {
	var buf strings.Builder
	disasm(&buf, s.chunks, true)
	return buf.String()
}

// DisasmString formats a disassembled script for one line printing.  When the
// script fails to parse, the returned string will contain the disassembled
// script up to the point the failure occurred along with the string '[error]'
// appended.  In addition, the reason the script failed to parse is returned
// if the caller wants more information about the failure.
func DisasmString(buf []byte) (string, error) {
	var disbuf strings.Builder
	chunks, err := parseChunks(buf)
	disasm(&disbuf, chunks, true)
	if err != nil {
		if len(chunks) > 0 {
			disbuf.WriteByte(' ')
		}
		disbuf.WriteString("[error]")
	}
	return disbuf.String(), err
}

// asSmallInt returns the passed opcode, which must be true according to
// isSmallInt(), as an integer.
func asSmallInt(op byte) int {
	if op == OP_0 {
		return 0
	}

	return int(op - (OP_1 - 1))
}

// isSmallInt returns whether or not the opcode is considered a small integer,
// which is an OP_0, or OP_1 through OP_16.
func isSmallInt(op byte) bool {
	return op == OP_0 || (op >= OP_1 && op <= OP_16)
}

// getSigOpCount is the implementation function for counting the number of
// signature operations in the script provided by chunks.  If precise mode is
// requested then we attempt to count the number of operations for a multisig
// op.  Otherwise we use the maximum.
func getSigOpCount(chunks []Chunk, precise bool) int {
	nSigs := 0
	for i, c := range chunks {
		switch c.Opcode {
		case OP_CHECKSIG, OP_CHECKSIGVERIFY:
			nSigs++

		case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
			// If we are being precise then look for familiar
			// patterns for multisig, for now all we recognize is
			// OP_1 - OP_16 to signify the number of pubkeys.
			// Otherwise, we use the max of 20.
			if precise && i > 0 &&
				chunks[i-1].Opcode >= OP_1 &&
				chunks[i-1].Opcode <= OP_16 {

				nSigs += asSmallInt(chunks[i-1].Opcode)
			} else {
				nSigs += MaxPubKeysPerMultiSig
			}
		}
	}

	return nSigs
}

// GetSigOpCount provides a quick count of the number of signature operations
// in a script. a CHECKSIG operations counts for 1, and a CHECK_MULTISIG for 20.
// If the script fails to parse, then the count up to the point of failure is
// returned.
func GetSigOpCount(script []byte) int {
	chunks, _ := parseChunks(script)
	return getSigOpCount(chunks, false)
}

// GetPreciseSigOpCount returns the number of signature operations in
// scriptPubKey.  If bip16 is true then scriptSig may be searched for the
// Pay-To-Script-Hash script in order to find the precise number of signature
// operations in the transaction.  If the script fails to parse, then the count
// up to the point of failure is returned.
func GetPreciseSigOpCount(scriptSig, scriptPubKey []byte, bip16 bool) int {
	chunks, _ := parseChunks(scriptPubKey)

	// Treat non P2SH transactions as normal.
	if !(bip16 && isScriptHash(chunks)) {
		return getSigOpCount(chunks, true)
	}

	// The public key script is a pay-to-script-hash, so parse the signature
	// script to get the final item.  Scripts that fail to fully parse count
	// as 0 signature operations.
	sigChunks, err := parseChunks(scriptSig)
	if err != nil {
		return 0
	}

	// The signature script must only push data to the stack for P2SH to be
	// a valid pair, so the signature operation count is 0 when that is not
	// the case.
	if !isPushOnly(sigChunks) || len(sigChunks) == 0 {
		return 0
	}

	// The P2SH script is the last item the signature script pushes to the
	// stack.  When the script is empty, there are no signature operations.
	shScript := sigChunks[len(sigChunks)-1].Data
	if len(shScript) == 0 {
		return 0
	}

	shChunks, _ := parseChunks(shScript)
	return getSigOpCount(shChunks, true)
}
