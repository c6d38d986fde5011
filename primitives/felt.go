package primitives

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Modulus of the Goldilocks field, 2^64 - 2^32 + 1.
const Modulus uint64 = 0xffffffff00000001

const (
	FeltSize = 8
	WordSize = 4 * FeltSize
	// hex chars of a normalized word, without the 0x prefix
	wordHexLen = 2 * WordSize
)

var ErrInvalidHex = errors.New("invalid hex")

// Felt is a field element in canonical form.
type Felt uint64

// NewFelt reduces v into the field.
func NewFelt(v uint64) Felt {
	if v >= Modulus {
		v -= Modulus
	}
	return Felt(v)
}

func (f Felt) Uint64() uint64 {
	return uint64(f)
}

func (f Felt) IsCanonical() bool {
	return uint64(f) < Modulus
}

type Word [4]Felt

var ZeroWord = Word{}

func (w Word) IsZero() bool {
	return w == ZeroWord
}

// Felts returns the word elements as a slice, in order.
func (w Word) Felts() []Felt {
	return []Felt{w[0], w[1], w[2], w[3]}
}

// Bytes encodes every element as 8 little-endian bytes.
func (w Word) Bytes() []byte {
	out := make([]byte, WordSize)
	for i, f := range w {
		binary.LittleEndian.PutUint64(out[i*FeltSize:], uint64(f))
	}
	return out
}

// Hex returns the normalized 0x-prefixed lowercase hex form.
func (w Word) Hex() string {
	return "0x" + hex.EncodeToString(w.Bytes())
}

func (w Word) String() string {
	return w.Hex()
}

func WordFromBytes(b []byte) (Word, error) {
	var w Word
	if len(b) != WordSize {
		return w, fmt.Errorf("word must be %d bytes, got %d", WordSize, len(b))
	}
	for i := range w {
		v := binary.LittleEndian.Uint64(b[i*FeltSize:])
		if v >= Modulus {
			return w, fmt.Errorf("element %d is not canonical", i)
		}
		w[i] = Felt(v)
	}
	return w, nil
}

// WordFromHex parses any accepted hex spelling of a word.
func WordFromHex(s string) (Word, error) {
	normalized, err := NormalizeHex(s)
	if err != nil {
		return Word{}, err
	}
	b, err := hex.DecodeString(normalized[2:])
	if err != nil {
		return Word{}, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return WordFromBytes(b)
}

// NormalizeHex brings a word hex string into "0x" + 64 lowercase hex chars.
// Missing leading zeros are padded. Commitment comparisons must go through it.
func NormalizeHex(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "0x")
	if len(s) > wordHexLen {
		return "", fmt.Errorf("%w: %d hex chars exceed a word", ErrInvalidHex, len(s))
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: unexpected char %q", ErrInvalidHex, c)
		}
	}
	return "0x" + strings.Repeat("0", wordHexLen-len(s)) + s, nil
}

// MustNormalizeHex is NormalizeHex for values that were validated earlier.
// Invalid input is returned lowercased so that comparisons still fail.
func MustNormalizeHex(s string) string {
	normalized, err := NormalizeHex(s)
	if err != nil {
		return strings.ToLower(s)
	}
	return normalized
}

// EqualHex compares two word hex strings after normalization.
func EqualHex(a, b string) bool {
	na, errA := NormalizeHex(a)
	nb, errB := NormalizeHex(b)
	return errA == nil && errB == nil && na == nb
}
