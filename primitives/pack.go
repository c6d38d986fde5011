package primitives

import (
	"fmt"
	"math"
)

// PackU32Felts packs bytes into elements holding 4 little-endian bytes each.
// A short trailing chunk is zero-extended.
func PackU32Felts(b []byte) []Felt {
	out := make([]Felt, 0, (len(b)+3)/4)
	for i := 0; i < len(b); i += 4 {
		var v uint64
		for j := 0; j < 4 && i+j < len(b); j++ {
			v |= uint64(b[i+j]) << (8 * j)
		}
		out = append(out, Felt(v))
	}
	return out
}

// EncodeEcdsaAdvice builds the advice value for an ECDSA signer: the packed
// public key followed by the packed signature, with the whole sequence reversed.
// The verifier pops elements in that order, so the layout is a wire contract.
func EncodeEcdsaAdvice(publicKey, signature []byte) []Felt {
	felts := append(PackU32Felts(publicKey), PackU32Felts(signature)...)
	for i, j := 0, len(felts)-1; i < j; i, j = i+1, j-1 {
		felts[i], felts[j] = felts[j], felts[i]
	}
	return felts
}

// DecodeEcdsaAdvice reverses EncodeEcdsaAdvice for an r || s || v signature and
// a compressed or uncompressed public key.
func DecodeEcdsaAdvice(felts []Felt) (publicKey, signature []byte, err error) {
	sigFelts := (EcdsaSignatureLen + 3) / 4
	keyFelts := len(felts) - sigFelts

	var keyLen int
	switch keyFelts {
	case (compressedPubKeyLen + 3) / 4:
		keyLen = compressedPubKeyLen
	case (uncompressedPubKeyLen + 3) / 4:
		keyLen = uncompressedPubKeyLen
	default:
		return nil, nil, fmt.Errorf("%w: ecdsa advice of %d elements", ErrMalformedSignature, len(felts))
	}

	ordered := make([]Felt, len(felts))
	for i, f := range felts {
		ordered[len(felts)-1-i] = f
	}
	if publicKey, err = unpackU32Felts(ordered[:keyFelts], keyLen); err != nil {
		return nil, nil, err
	}
	if signature, err = unpackU32Felts(ordered[keyFelts:], EcdsaSignatureLen); err != nil {
		return nil, nil, err
	}
	return publicKey, signature, nil
}

func unpackU32Felts(felts []Felt, n int) ([]byte, error) {
	out := make([]byte, 0, 4*len(felts))
	for _, f := range felts {
		if f > math.MaxUint32 {
			return nil, fmt.Errorf("%w: element %d exceeds 32 bits", ErrMalformedSignature, f)
		}
		out = append(out, byte(f), byte(f>>8), byte(f>>16), byte(f>>24))
	}
	return out[:n], nil
}
