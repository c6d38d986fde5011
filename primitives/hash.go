package primitives

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Hasher maps a sequence of field elements to a word. Implementations must be
// deterministic, every commitment in the protocol is produced through one.
type Hasher interface {
	HashElements(elements []Felt) Word
}

// Blake2bHasher hashes the little-endian element encoding with blake2b-256 and
// reduces each 8-byte lane into the field.
type Blake2bHasher struct{}

func NewBlake2bHasher() Blake2bHasher {
	return Blake2bHasher{}
}

func (Blake2bHasher) HashElements(elements []Felt) Word {
	buf := make([]byte, len(elements)*FeltSize)
	for i, e := range elements {
		binary.LittleEndian.PutUint64(buf[i*FeltSize:], uint64(e))
	}
	digest := blake2b.Sum256(buf)

	var w Word
	for i := range w {
		w[i] = NewFelt(binary.LittleEndian.Uint64(digest[i*FeltSize:]))
	}
	return w
}

// Merge hashes two words.
func Merge(h Hasher, a, b Word) Word {
	return h.HashElements(append(a.Felts(), b.Felts()...))
}

// HashWordWithFelt hashes a word followed by a single element.
func HashWordWithFelt(h Hasher, w Word, f Felt) Word {
	return h.HashElements(append(w.Felts(), f))
}
